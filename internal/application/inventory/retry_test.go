package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
)

func fastPolicy(attempts int) inventory.RetryPolicy {
	return inventory.RetryPolicy{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestWithRetry_RetriesOnlyRetriableErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		attempts int
	}{
		{"modificación concurrente", domain.ConcurrentModification("conflicto"), 3},
		{"falla transitoria", domain.Wrap(domain.KindTransient, assert.AnError, "bd caída"), 3},
		{"validación", domain.Validation("malo"), 1},
		{"transición inválida", domain.InvalidTransition("no"), 1},
		{"no encontrado", domain.NotFound("nada"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			err := inventory.WithRetry(context.Background(), fastPolicy(3), func() error {
				calls++
				return tc.err
			})
			assert.Error(t, err)
			assert.Equal(t, domain.KindOf(tc.err), domain.KindOf(err))
			assert.Equal(t, tc.attempts, calls)
		})
	}
}

func TestWithRetry_SucceedsAfterConflict(t *testing.T) {
	calls := 0
	err := inventory.WithRetry(context.Background(), fastPolicy(3), func() error {
		calls++
		if calls < 2 {
			return domain.ConcurrentModification("conflicto")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_SingleAttempt(t *testing.T) {
	calls := 0
	err := inventory.WithRetry(context.Background(), fastPolicy(1), func() error {
		calls++
		return domain.ConcurrentModification("conflicto")
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, 1, calls)
}

func TestWithTransientRetry_ConflictReachesCaller(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		attempts int
	}{
		{"falla transitoria", domain.Wrap(domain.KindTransient, assert.AnError, "bd caída"), 3},
		{"modificación concurrente", domain.ConcurrentModification("conflicto"), 1},
		{"no encontrado", domain.NotFound("nada"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			err := inventory.WithTransientRetry(context.Background(), fastPolicy(3), func() error {
				calls++
				return tc.err
			})
			assert.Equal(t, domain.KindOf(tc.err), domain.KindOf(err))
			assert.Equal(t, tc.attempts, calls)
		})
	}
}
