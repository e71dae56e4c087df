package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes (DIP).
// Las escrituras solo deben usarse con un repositorio atado a una transacción del motor.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	// GetByID devuelve nil, nil si el lote no existe.
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetForUpdate bloquea la fila del lote hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	Update(ctx context.Context, lot *entity.Lot) error
	ListByPart(ctx context.Context, partCode string, limit, offset int) ([]*entity.Lot, error)
	// ListDue devuelve lotes activos en state cuya llegada programada es <= now.
	ListDue(ctx context.Context, state entity.State, now time.Time, limit int) ([]*entity.Lot, error)
	// SumActive suma las cantidades de los lotes activos de una parte.
	SumActive(ctx context.Context, partCode string) (int64, error)
}
