package postgres

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo implementación de CounterRepository sobre PostgreSQL (usable con pool o tx).
type CounterRepo struct {
	q Querier
}

// NewCounterRepository construye el adaptador de contadores. Pasar pool o tx (Querier).
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// Get obtiene el contador; si la fila no existe devuelve cantidad cero.
func (r *CounterRepo) Get(ctx context.Context, partCode string, state entity.State) (*entity.StateCounter, error) {
	query := `
		SELECT part_code, state, quantity, updated_at
		FROM state_counters WHERE part_code = $1 AND state = $2`
	c, err := scanCounter(r.q.QueryRow(ctx, query, partCode, state.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StateCounter{PartCode: partCode, State: state}, nil
		}
		return nil, mapError("get counter", err)
	}
	return c, nil
}

// GetForUpdate crea la fila en cero si falta y la bloquea (SELECT FOR UPDATE).
// El INSERT ... ON CONFLICT DO NOTHING hace que dos primeros ingresos concurrentes se serialicen.
func (r *CounterRepo) GetForUpdate(ctx context.Context, partCode string, state entity.State) (*entity.StateCounter, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO state_counters (part_code, state, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (part_code, state) DO NOTHING`,
		partCode, state.String(),
	)
	if err != nil {
		return nil, mapError("ensure counter", err)
	}
	query := `
		SELECT part_code, state, quantity, updated_at
		FROM state_counters WHERE part_code = $1 AND state = $2
		FOR UPDATE`
	c, err := scanCounter(r.q.QueryRow(ctx, query, partCode, state.String()))
	if err != nil {
		return nil, mapError("get counter for update", err)
	}
	return c, nil
}

// Upsert inserta o actualiza la cantidad del contador.
func (r *CounterRepo) Upsert(ctx context.Context, counter *entity.StateCounter) error {
	query := `
		INSERT INTO state_counters (part_code, state, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (part_code, state)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, counter.PartCode, counter.State.String(), counter.Quantity, counter.UpdatedAt)
	if err != nil {
		return mapError("upsert counter", err)
	}
	return nil
}

// ListByPart lista los contadores existentes de una parte en orden canónico de estado.
func (r *CounterRepo) ListByPart(ctx context.Context, partCode string) ([]*entity.StateCounter, error) {
	rows, err := r.q.Query(ctx, `
		SELECT part_code, state, quantity, updated_at
		FROM state_counters WHERE part_code = $1`, partCode)
	if err != nil {
		return nil, mapError("list counters", err)
	}
	defer rows.Close()
	var list []*entity.StateCounter
	for rows.Next() {
		c, err := scanCounter(rows)
		if err != nil {
			return nil, mapError("scan counter", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list counters", err)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].State < list[j].State })
	return list, nil
}

func scanCounter(row rowScanner) (*entity.StateCounter, error) {
	var c entity.StateCounter
	var state string
	if err := row.Scan(&c.PartCode, &state, &c.Quantity, &c.UpdatedAt); err != nil {
		return nil, err
	}
	s, err := entity.ParseState(state)
	if err != nil {
		return nil, err
	}
	c.State = s
	return &c, nil
}
