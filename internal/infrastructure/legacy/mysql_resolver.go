// Package legacy resuelve datos maestros contra la base MySQL del sistema de recepción heredado.
package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

var _ inventory.ReferenceResolver = (*MySQLResolver)(nil)

// MySQLResolver lee part_master, vendor_master y employee de la base heredada.
type MySQLResolver struct {
	db *sql.DB
}

func NewMySQLResolver(db *sql.DB) *MySQLResolver {
	return &MySQLResolver{db: db}
}

// Open abre el pool hacia MySQL y verifica la conexión. El DSN debe incluir parseTime=true.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse legacy dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("legacy connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping legacy mysql: %w", err)
	}
	return db, nil
}

func (r *MySQLResolver) FindPart(ctx context.Context, code string) (*entity.Part, error) {
	var p entity.Part
	err := r.db.QueryRowContext(ctx, `
		SELECT part_no, description, model
		FROM part_master WHERE part_no = ? AND deleted = 0`, code,
	).Scan(&p.Code, &p.Name, &p.Model)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("find part", err)
	}
	return &p, nil
}

func (r *MySQLResolver) VendorExists(ctx context.Context, code string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vendor_master WHERE vendor_code = ?`, code,
	).Scan(&n)
	if err != nil {
		return false, mapError("vendor exists", err)
	}
	return n > 0, nil
}

func (r *MySQLResolver) ResolveActorID(ctx context.Context, name string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT emp_id FROM employee
		WHERE emp_name = ? AND active = 1
		ORDER BY emp_id LIMIT 1`, name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapError("resolve actor", err)
	}
	return id, nil
}

// mapError: si el servidor respondió con un error SQL se propaga tal cual;
// cualquier otra falla (red, timeout, conexión inválida) es transitoria.
func mapError(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return fmt.Errorf("legacy %s: %w", op, err)
	}
	return domain.Wrap(domain.KindTransient, err, "legacy "+op)
}
