package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// ItemResult resultado por ítem de una operación masiva.
type ItemResult struct {
	Index int
	LotID string
	Lot   *entity.Lot
	Err   error
}

// BulkIntake ingresa cada ítem en su propia transacción. Un ítem inválido no aborta a los demás.
// Si ctx se cancela, los ítems ya confirmados quedan confirmados y el resto se marca como no procesado.
func (e *TransitionEngine) BulkIntake(ctx context.Context, items []IntakeInput) []ItemResult {
	results := make([]ItemResult, len(items))
	for i, in := range items {
		results[i].Index = i
		if err := ctx.Err(); err != nil {
			results[i].Err = domain.Wrap(domain.KindTransient, err, "ítem no procesado: operación cancelada")
			continue
		}
		lot, err := e.Intake(ctx, in)
		results[i].Lot = lot
		results[i].Err = err
		if lot != nil {
			results[i].LotID = lot.ID
		}
	}
	e.logBatch("bulk_intake", results)
	return results
}

// BulkMove mueve cada lote de in.LotIDs en su propia transacción, con la misma transición y cantidad.
func (e *TransitionEngine) BulkMove(ctx context.Context, in MoveInput) []ItemResult {
	results := make([]ItemResult, len(in.LotIDs))
	for i, id := range in.LotIDs {
		results[i].Index = i
		results[i].LotID = id
		if err := ctx.Err(); err != nil {
			results[i].Err = domain.Wrap(domain.KindTransient, err, "ítem no procesado: operación cancelada")
			continue
		}
		single := in
		single.LotIDs = []string{id}
		moved, err := e.Move(ctx, single)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Lot = moved[0].Lot
	}
	e.logBatch("bulk_move", results)
	return results
}

func (e *TransitionEngine) logBatch(op string, results []ItemResult) {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	ev := e.log.Info()
	if failed > 0 {
		ev = e.log.Warn()
	}
	ev.Str("op", op).Int("items", len(results)).Int("failed", failed).Msg("operación masiva")
}
