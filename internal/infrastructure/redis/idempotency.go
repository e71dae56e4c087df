// Package redis contiene los adaptadores sobre Redis: reserva de claves de
// idempotencia para ingresos y lease distribuido para la promoción por tiempo.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
)

const (
	idempotencyKeyPrefix = "lots:idem:"
	idempotencyKeyTTL    = 24 * time.Hour
)

var _ inventory.IdempotencyGuard = (*IdempotencyGuard)(nil)

// IdempotencyGuard reserva claves con SET NX y TTL de 24 horas.
type IdempotencyGuard struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewIdempotencyGuard(client redis.UniversalClient) *IdempotencyGuard {
	return &IdempotencyGuard{client: client, ttl: idempotencyKeyTTL}
}

// Claim devuelve false si la clave ya estaba reservada.
func (g *IdempotencyGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, g.ttl).Result()
	if err != nil {
		return false, domain.Wrap(domain.KindTransient, err, "redis setnx")
	}
	return ok, nil
}

// Release libera la clave para que la solicitud pueda reintentarse.
func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return domain.Wrap(domain.KindTransient, err, "redis del")
	}
	return nil
}
