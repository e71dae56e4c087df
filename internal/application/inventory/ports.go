package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de transiciones: si fn devuelve error se hace Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		counterRepo repository.CounterRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// ReferenceResolver colaborador externo que resuelve datos maestros (partes, proveedores, empleados).
// Las fallas de conectividad deben devolverse como domain.KindTransient.
type ReferenceResolver interface {
	// FindPart devuelve nil, nil si la parte no existe.
	FindPart(ctx context.Context, code string) (*entity.Part, error)
	VendorExists(ctx context.Context, code string) (bool, error)
	// ResolveActorID devuelve "" si el nombre no corresponde a ningún empleado.
	ResolveActorID(ctx context.Context, name string) (string, error)
}

// IdempotencyGuard reserva claves de solicitud para evitar ingresos duplicados.
type IdempotencyGuard interface {
	// Claim devuelve false si la clave ya fue reservada.
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Recorder recibe métricas del motor.
type Recorder interface {
	Transition(from, to entity.State, quantity int64)
	Clamped(state entity.State)
	OperationFailed(op string, kind domain.ErrorKind)
	Promoted(count int)
}

type noopRecorder struct{}

func (noopRecorder) Transition(entity.State, entity.State, int64) {}
func (noopRecorder) Clamped(entity.State)                         {}
func (noopRecorder) OperationFailed(string, domain.ErrorKind)      {}
func (noopRecorder) Promoted(int)                                 {}
