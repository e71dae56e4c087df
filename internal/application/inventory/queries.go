package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// LedgerQuery filtros para consultar el ledger. From y To son opcionales.
type LedgerQuery struct {
	PartCode string
	State    entity.State
	From     *time.Time
	To       *time.Time
}

// QueryLedger devuelve los asientos de (parte, estado) en orden de fecha y secuencia.
func (e *TransitionEngine) QueryLedger(ctx context.Context, q LedgerQuery) ([]*entity.LedgerEntry, error) {
	partCode := strings.TrimSpace(q.PartCode)
	if partCode == "" {
		return nil, domain.Validation("part_code es requerido")
	}
	if !q.State.Valid() {
		return nil, domain.Validation("estado es requerido")
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, domain.Validation("rango de fechas inválido")
	}
	return e.ledger.QueryByPartAndState(ctx, partCode, q.State, q.From, q.To)
}

// Lot devuelve un lote (activo o no) por ID.
func (e *TransitionEngine) Lot(ctx context.Context, id string) (*entity.Lot, error) {
	lot, err := e.lots.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.NotFound("lote %s no encontrado", id)
	}
	return lot, nil
}

// Lots lista los lotes de una parte con paginación.
func (e *TransitionEngine) Lots(ctx context.Context, partCode string, limit, offset int) ([]*entity.Lot, error) {
	partCode = strings.TrimSpace(partCode)
	if partCode == "" {
		return nil, domain.Validation("part_code es requerido")
	}
	return e.lots.ListByPart(ctx, partCode, limit, offset)
}

// Counters devuelve los contadores de una parte (solo filas existentes).
func (e *TransitionEngine) Counters(ctx context.Context, partCode string) ([]*entity.StateCounter, error) {
	partCode = strings.TrimSpace(partCode)
	if partCode == "" {
		return nil, domain.Validation("part_code es requerido")
	}
	return e.counters.ListByPart(ctx, partCode)
}

// StateReconciliation contador de un estado frente a la reproducción del ledger.
type StateReconciliation struct {
	State    entity.State
	Counter  int64
	Replayed int64
	// BrokenSeq secuencia del primer asiento cuyo "antes" no coincide con la reproducción (0 = ninguno).
	BrokenSeq int64
}

// ReconcileReport resultado de conciliar una parte.
type ReconcileReport struct {
	PartCode       string
	CounterTotal   int64
	ActiveLotTotal int64
	States         []StateReconciliation
}

// Consistent indica conservación (suma de contadores = suma de lotes activos)
// y reproducción exacta del ledger en cada estado.
func (r ReconcileReport) Consistent() bool {
	if r.CounterTotal != r.ActiveLotTotal {
		return false
	}
	for _, s := range r.States {
		if s.Counter != s.Replayed || s.BrokenSeq != 0 {
			return false
		}
	}
	return true
}

// Reconcile verifica los invariantes de una parte dentro de una transacción de solo lectura.
func (e *TransitionEngine) Reconcile(ctx context.Context, partCode string) (*ReconcileReport, error) {
	partCode = strings.TrimSpace(partCode)
	if partCode == "" {
		return nil, domain.Validation("part_code es requerido")
	}
	report := &ReconcileReport{PartCode: partCode}
	err := e.tx.Run(ctx, func(
		lotRepo repository.LotRepository,
		counterRepo repository.CounterRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		report.States = report.States[:0]
		report.CounterTotal = 0
		total, err := lotRepo.SumActive(ctx, partCode)
		if err != nil {
			return err
		}
		report.ActiveLotTotal = total
		for _, st := range entity.AllStates() {
			c, err := counterRepo.Get(ctx, partCode, st)
			if err != nil {
				return err
			}
			entries, err := ledgerRepo.QueryByPartAndState(ctx, partCode, st, nil, nil)
			if err != nil {
				return err
			}
			entity.SortBySeq(entries)
			replayed, broken := entity.Replay(entries)
			sr := StateReconciliation{State: st, Counter: c.Quantity, Replayed: replayed}
			if broken != nil {
				sr.BrokenSeq = broken.Seq
			}
			report.CounterTotal += c.Quantity
			report.States = append(report.States, sr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !report.Consistent() {
		e.log.Warn().
			Str("part_code", partCode).
			Int64("counters", report.CounterTotal).
			Int64("active_lots", report.ActiveLotTotal).
			Msg("conciliación inconsistente")
	}
	return report, nil
}
