package inventory

import (
	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// IntakeFromRequest adapta el request HTTP a IntakeInput.
// Usar desde handlers HTTP o desde importadores que tengan actor y dto.IntakeRequest.
func IntakeFromRequest(actor, requestID string, in dto.IntakeRequest) IntakeInput {
	return IntakeInput{
		PartCode:    in.PartCode,
		Quantity:    in.Quantity,
		VendorCode:  in.VendorCode,
		Label:       in.Label,
		Reference:   in.Reference,
		Track:       entity.Track(in.Track),
		ScheduledAt: in.ScheduledAt,
		RequestID:   requestID,
		Actor:       actor,
	}
}

// MoveFromRequest adapta el request HTTP a MoveInput validando los nombres de estado.
func MoveFromRequest(actor string, in dto.MoveRequest) (MoveInput, error) {
	from, err := entity.ParseState(in.FromState)
	if err != nil {
		return MoveInput{}, domain.Validation("from_state: %v", err)
	}
	to, err := entity.ParseState(in.ToState)
	if err != nil {
		return MoveInput{}, domain.Validation("to_state: %v", err)
	}
	return MoveInput{
		LotIDs:   in.LotIDs,
		From:     from,
		To:       to,
		Quantity: in.Quantity,
		Actor:    actor,
	}, nil
}

// AdjustFromRequest adapta el request HTTP a AdjustInput.
func AdjustFromRequest(actor, lotID string, in dto.AdjustRequest) (AdjustInput, error) {
	out := AdjustInput{LotID: lotID, Quantity: in.Quantity, Actor: actor}
	if in.QualityFlag != nil {
		flag, err := entity.ParseQualityFlag(*in.QualityFlag)
		if err != nil {
			return AdjustInput{}, domain.Validation("quality_flag: %v", err)
		}
		out.QualityFlag = &flag
	}
	return out, nil
}
