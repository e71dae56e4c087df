package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// mapError traduce errores de PostgreSQL al catálogo del dominio:
// conflictos de bloqueo → ConcurrentModification; timeouts y caídas de conexión → Transient;
// una FK hacia parts inexistente → ReferenceNotFound.
// Los errores que ya son del dominio se devuelven sin cambios.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Wrap(domain.KindTransient, err, op)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return domain.Wrap(domain.KindConcurrentModification, err, op)
		case "57014": // query_canceled (statement/lock timeout)
			return domain.Wrap(domain.KindTransient, err, op)
		case "23503": // foreign_key_violation
			return domain.Wrap(domain.KindReferenceNotFound, err, op)
		}
		if strings.HasPrefix(pgErr.Code, "08") {
			return domain.Wrap(domain.KindTransient, err, op)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return domain.Wrap(domain.KindTransient, err, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
