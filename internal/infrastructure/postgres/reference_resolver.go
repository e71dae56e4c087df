package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

var _ inventory.ReferenceResolver = (*ReferenceResolver)(nil)

// ReferenceResolver resuelve datos maestros desde las tablas locales parts, vendors y employees.
type ReferenceResolver struct {
	q Querier
}

// NewReferenceResolver construye el resolvedor. Normalmente recibe el pool.
func NewReferenceResolver(q Querier) *ReferenceResolver {
	return &ReferenceResolver{q: q}
}

// FindPart devuelve la parte por código (nil, nil si no existe).
func (r *ReferenceResolver) FindPart(ctx context.Context, code string) (*entity.Part, error) {
	var p entity.Part
	err := r.q.QueryRow(ctx,
		`SELECT code, name, model FROM parts WHERE code = $1`, code,
	).Scan(&p.Code, &p.Name, &p.Model)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("find part", err)
	}
	return &p, nil
}

// VendorExists indica si el proveedor está registrado.
func (r *ReferenceResolver) VendorExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM vendors WHERE code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, mapError("vendor exists", err)
	}
	return exists, nil
}

// ResolveActorID devuelve el ID del empleado activo con ese nombre ("" si no existe).
func (r *ReferenceResolver) ResolveActorID(ctx context.Context, name string) (string, error) {
	var id string
	err := r.q.QueryRow(ctx,
		`SELECT id FROM employees WHERE lower(name) = lower($1) AND active ORDER BY id LIMIT 1`, name,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", mapError("resolve actor", err)
	}
	return id, nil
}
