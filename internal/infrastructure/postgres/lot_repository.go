package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, part_code, quantity, state, quality_flag, vendor_code, label, reference,
	scheduled_at, active, version, created_at, updated_at`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.PartCode, lot.Quantity, lot.State.String(), string(lot.QualityFlag),
		lot.VendorCode, lot.Label, lot.Reference, lot.ScheduledAt,
		lot.Active, lot.Version, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Validation("el lote %s ya existe", lot.ID)
		}
		return mapError("create lot", err)
	}
	return nil
}

// GetByID obtiene un lote por ID (nil, nil si no existe).
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.get(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id, "get lot")
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.get(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id, "get lot for update")
}

func (r *LotRepo) get(ctx context.Context, query, id, op string) (*entity.Lot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	lot, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return lot, nil
}

// Update persiste los campos mutables del lote.
func (r *LotRepo) Update(ctx context.Context, lot *entity.Lot) error {
	query := `
		UPDATE lots
		SET quantity = $2, state = $3, quality_flag = $4, active = $5, version = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		lot.ID, lot.Quantity, lot.State.String(), string(lot.QualityFlag),
		lot.Active, lot.Version, lot.UpdatedAt,
	)
	if err != nil {
		return mapError("update lot", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ConcurrentModification("lote %s no existe", lot.ID)
	}
	return nil
}

// ListByPart lista los lotes de una parte, más recientes primero.
func (r *LotRepo) ListByPart(ctx context.Context, partCode string, limit, offset int) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots WHERE part_code = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	return r.list(ctx, "list lots by part", query, partCode, limit, offset)
}

// ListDue lista lotes activos en state con llegada programada vencida.
func (r *LotRepo) ListDue(ctx context.Context, state entity.State, now time.Time, limit int) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots
		WHERE active AND state = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		ORDER BY scheduled_at, id
		LIMIT $3`
	return r.list(ctx, "list due lots", query, state.String(), now, limit)
}

// SumActive suma las cantidades de los lotes activos de la parte.
func (r *LotRepo) SumActive(ctx context.Context, partCode string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::bigint FROM lots WHERE part_code = $1 AND active`,
		partCode,
	).Scan(&total)
	if err != nil {
		return 0, mapError("sum active lots", err)
	}
	return total, nil
}

func (r *LotRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return list, nil
}

func scanLot(row rowScanner) (*entity.Lot, error) {
	var l entity.Lot
	var state, flag string
	err := row.Scan(
		&l.ID, &l.PartCode, &l.Quantity, &state, &flag, &l.VendorCode, &l.Label, &l.Reference,
		&l.ScheduledAt, &l.Active, &l.Version, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if l.State, err = entity.ParseState(state); err != nil {
		return nil, err
	}
	l.QualityFlag = entity.QualityFlag(flag)
	return &l, nil
}
