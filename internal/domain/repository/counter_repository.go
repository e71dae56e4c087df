package repository

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// CounterRepository define el puerto para los contadores por (parte, estado).
// Usado dentro de transacciones para garantizar consistencia con lotes y ledger.
type CounterRepository interface {
	// Get devuelve un contador en cero si la fila no existe.
	Get(ctx context.Context, partCode string, state entity.State) (*entity.StateCounter, error)
	// GetForUpdate crea la fila si falta y la bloquea (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, partCode string, state entity.State) (*entity.StateCounter, error)
	Upsert(ctx context.Context, counter *entity.StateCounter) error
	ListByPart(ctx context.Context, partCode string) ([]*entity.StateCounter, error)
}
