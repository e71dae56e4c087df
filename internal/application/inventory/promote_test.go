package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

func TestPromoteByTime_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	t0 := f.clock

	soon := f.intakeEnquiry(t, "P-200", 5, t0.Add(time.Hour))
	later := f.intakeEnquiry(t, "P-200", 8, t0.Add(3*time.Hour))
	f.move(t, soon.ID, entity.StateNew, entity.StateInTransit, nil)
	f.move(t, later.ID, entity.StateNew, entity.StateInTransit, nil)

	n, err := f.engine.PromoteByTime(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nada vence antes de la fecha programada")

	f.clock = t0.Add(time.Hour)
	n, err = f.engine.PromoteByTime(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n, "la fecha exacta ya vence")

	n, err = f.engine.PromoteByTime(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "repetir con el mismo corte no promueve dos veces")

	f.clock = t0.Add(4 * time.Hour)
	n, err = f.engine.PromoteByTime(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, map[entity.State]int64{
		entity.StateNew: 0, entity.StateInTransit: 0, entity.StateArrived: 13,
	}, f.counters(t, "P-200"))
	assert.Equal(t, 2, f.rec.promoted)

	arrived := f.ledger(t, "P-200", entity.StateArrived)
	require.Len(t, arrived, 2)
	for _, e := range arrived {
		assert.Equal(t, entity.ActionPromote, e.Action)
		assert.Equal(t, inventory.SystemActor, e.ActorID)
	}
	f.requireConsistent(t, "P-200")
}

func TestPromoteByTime_IgnoresOtherStates(t *testing.T) {
	f := newFixture(t, nil)
	lot := f.intakeEnquiry(t, "P-200", 5, f.clock.Add(-time.Hour))

	n, err := f.engine.PromoteByTime(context.Background(), f.clock)
	require.NoError(t, err)
	assert.Zero(t, n, "un lote NEW vencido no se promueve")

	current, err := f.engine.Lot(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StateNew, current.State)
}

func TestPromoteByTime_BatchLimit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		l := f.intakeEnquiry(t, "P-200", 1, f.clock)
		f.move(t, l.ID, entity.StateNew, entity.StateInTransit, nil)
	}
	store := f.store
	limited := inventory.NewTransitionEngine(inventory.EngineDeps{
		TxRunner:          store,
		Lots:              store.Lots(),
		Counters:          store.Counters(),
		Ledger:            store.Ledger(),
		Resolver:          f.resolver,
		Now:               func() time.Time { return f.clock },
		PromoteBatchLimit: 2,
	})

	n, err := limited.PromoteByTime(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "cada pasada respeta el límite del lote")

	n, err = limited.PromoteByTime(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "la siguiente pasada toma el resto")
}
