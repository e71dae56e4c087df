package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `seq, part_code, direction, state, quantity, quantity_before, quantity_after,
	lot_id, action, transaction_id, actor_id, created_at`

// LedgerRepo implementación del ledger sobre PostgreSQL. Solo INSERT y SELECT.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta el asiento y asigna Seq (bigserial).
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (part_code, direction, state, quantity, quantity_before, quantity_after,
			lot_id, action, transaction_id, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.PartCode, string(e.Direction), e.State.String(), e.Quantity, e.QuantityBefore, e.QuantityAfter,
		e.LotID, e.Action, e.TransactionID, e.ActorID, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return mapError("append ledger entry", err)
	}
	return nil
}

// QueryByPartAndState lista los asientos de (parte, estado) en un rango opcional de fechas.
func (r *LedgerRepo) QueryByPartAndState(ctx context.Context, partCode string, state entity.State, from, to *time.Time) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE part_code = $1 AND state = $2`
	args := []any{partCode, state.String()}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
	}
	query += " ORDER BY created_at, seq"

	return r.query(ctx, "query ledger", query, args...)
}

// QueryByLot lista los asientos de un lote en orden de escritura.
func (r *LedgerRepo) QueryByLot(ctx context.Context, lotID string) ([]*entity.LedgerEntry, error) {
	return r.query(ctx, "query lot ledger", `
		SELECT `+ledgerColumns+`
		FROM ledger_entries WHERE lot_id = $1
		ORDER BY seq`, lotID)
}

func (r *LedgerRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var dir, st string
		if err := rows.Scan(&e.Seq, &e.PartCode, &dir, &st, &e.Quantity, &e.QuantityBefore, &e.QuantityAfter,
			&e.LotID, &e.Action, &e.TransactionID, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Direction = entity.Direction(dir)
		if e.State, err = entity.ParseState(st); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return list, nil
}
