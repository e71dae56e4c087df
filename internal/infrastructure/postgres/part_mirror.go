package postgres

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

var _ inventory.ReferenceResolver = (*PartMirror)(nil)

// PartMirror resuelve contra un maestro externo (p. ej. el MySQL heredado) y copia cada parte
// encontrada a la tabla local parts, que es la referenciada por lots y state_counters.
// Proveedores y empleados se delegan sin copia: no tienen FK local.
type PartMirror struct {
	source inventory.ReferenceResolver
	q      Querier
}

// NewPartMirror envuelve source; q normalmente es el pool.
func NewPartMirror(source inventory.ReferenceResolver, q Querier) *PartMirror {
	return &PartMirror{source: source, q: q}
}

// FindPart busca en el maestro y deja la parte disponible localmente.
func (m *PartMirror) FindPart(ctx context.Context, code string) (*entity.Part, error) {
	part, err := m.source.FindPart(ctx, code)
	if err != nil || part == nil {
		return part, err
	}
	_, err = m.q.Exec(ctx, `
		INSERT INTO parts (code, name, model) VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, model = EXCLUDED.model
		WHERE parts.name IS DISTINCT FROM EXCLUDED.name OR parts.model IS DISTINCT FROM EXCLUDED.model`,
		part.Code, part.Name, part.Model)
	if err != nil {
		return nil, mapError("mirror part", err)
	}
	return part, nil
}

// VendorExists delega en el maestro.
func (m *PartMirror) VendorExists(ctx context.Context, code string) (bool, error) {
	return m.source.VendorExists(ctx, code)
}

// ResolveActorID delega en el maestro.
func (m *PartMirror) ResolveActorID(ctx context.Context, name string) (string, error) {
	return m.source.ResolveActorID(ctx, name)
}
