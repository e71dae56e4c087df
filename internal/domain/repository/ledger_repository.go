package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// LedgerRepository puerto del ledger de movimientos. Solo se agrega: no existe
// operación de actualización ni de borrado.
type LedgerRepository interface {
	// Append persiste el asiento y asigna Seq.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// QueryByPartAndState devuelve los asientos ordenados por fecha y luego por Seq.
	// from y to son opcionales (rango cerrado).
	QueryByPartAndState(ctx context.Context, partCode string, state entity.State, from, to *time.Time) ([]*entity.LedgerEntry, error)
	// QueryByLot devuelve los asientos de un lote ordenados por Seq.
	QueryByLot(ctx context.Context, lotID string) ([]*entity.LedgerEntry, error)
}
