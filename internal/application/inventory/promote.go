package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// PromoteByTime mueve a ARRIVED los lotes IN_TRANSIT cuya llegada programada ya pasó (<= now).
// Cada lote va en su propia transacción: uno que falla se registra y no bloquea al resto.
// Es idempotente: un lote ya promovido deja de cumplir el predicado de búsqueda.
func (e *TransitionEngine) PromoteByTime(ctx context.Context, now time.Time) (int, error) {
	due, err := e.lots.ListDue(ctx, entity.StateInTransit, now, e.promoteLimit)
	if err != nil {
		e.observe("promote", err)
		return 0, err
	}

	promoted := 0
	for _, lot := range due {
		if ctx.Err() != nil {
			break
		}
		in := MoveInput{
			LotIDs: []string{lot.ID},
			From:   entity.StateInTransit,
			To:     entity.StateArrived,
			Actor:  SystemActor,
		}
		err := WithRetry(ctx, e.retry, func() error {
			_, err := e.move(ctx, in, entity.ActionPromote)
			return err
		})
		if err != nil {
			e.observe("promote", err)
			e.log.Warn().Err(err).Str("lot_id", lot.ID).Msg("no se pudo promover el lote")
			continue
		}
		promoted++
	}

	e.rec.Promoted(promoted)
	if len(due) > 0 {
		e.log.Info().
			Int("due", len(due)).
			Int("promoted", promoted).
			Time("cutoff", now).
			Msg("promoción por tiempo")
	}
	return promoted, nil
}
