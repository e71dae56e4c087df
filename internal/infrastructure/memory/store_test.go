package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/pkg/config"
)

var now = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func TestStore_RunCommitsOnSuccess(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.Run(ctx, func(l repository.LotRepository, c repository.CounterRepository, g repository.LedgerRepository) error {
		require.NoError(t, l.Create(ctx, &entity.Lot{ID: "a", PartCode: "P-1", Quantity: 5, State: entity.StateOffSystem, Active: true, Version: 1, CreatedAt: now}))
		require.NoError(t, c.Upsert(ctx, &entity.StateCounter{PartCode: "P-1", State: entity.StateOffSystem, Quantity: 5, UpdatedAt: now}))
		return g.Append(ctx, &entity.LedgerEntry{PartCode: "P-1", State: entity.StateOffSystem, Direction: entity.DirectionIn, Quantity: 5, QuantityAfter: 5, CreatedAt: now})
	})
	require.NoError(t, err)

	lot, err := s.Lots().GetByID(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, lot)
	assert.Equal(t, int64(5), lot.Quantity)

	entries, err := s.Ledger().QueryByPartAndState(ctx, "P-1", entity.StateOffSystem, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Seq, "la secuencia se asigna al agregar")
}

func TestStore_RunDiscardsOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(l repository.LotRepository, c repository.CounterRepository, g repository.LedgerRepository) error {
		require.NoError(t, l.Create(ctx, &entity.Lot{ID: "a", PartCode: "P-1", Quantity: 5, Active: true, CreatedAt: now}))
		require.NoError(t, c.Upsert(ctx, &entity.StateCounter{PartCode: "P-1", State: entity.StateOffSystem, Quantity: 5}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	lot, err := s.Lots().GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, lot, "nada de la transacción fallida es visible")
	counters, err := s.Counters().ListByPart(ctx, "P-1")
	require.NoError(t, err)
	assert.Empty(t, counters)
}

func TestStore_RunHonoursCancelledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.Run(ctx, func(repository.LotRepository, repository.CounterRepository, repository.LedgerRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Lots().Create(ctx, &entity.Lot{ID: "a", PartCode: "P-1", Quantity: 5, Active: true, Version: 1}))

	lot, err := s.Lots().GetByID(ctx, "a")
	require.NoError(t, err)
	lot.Quantity = 99

	again, err := s.Lots().GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), again.Quantity, "modificar la copia no altera el estado confirmado")
}

func TestCounterRepo_GetForUpdateDefaultsToZero(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Run(ctx, func(_ repository.LotRepository, c repository.CounterRepository, _ repository.LedgerRepository) error {
		counter, err := c.GetForUpdate(ctx, "P-1", entity.StateHold)
		require.NoError(t, err)
		assert.Equal(t, int64(0), counter.Quantity)
		assert.Equal(t, entity.StateHold, counter.State)
		return nil
	}))
}

func TestLotRepo_ListDue(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	at := func(h int) *time.Time { v := now.Add(time.Duration(h) * time.Hour); return &v }
	for _, l := range []*entity.Lot{
		{ID: "late", State: entity.StateInTransit, ScheduledAt: at(2), Active: true},
		{ID: "due-2", State: entity.StateInTransit, ScheduledAt: at(0), Active: true},
		{ID: "due-1", State: entity.StateInTransit, ScheduledAt: at(-1), Active: true},
		{ID: "inactive", State: entity.StateInTransit, ScheduledAt: at(-1)},
		{ID: "new", State: entity.StateNew, ScheduledAt: at(-1), Active: true},
	} {
		require.NoError(t, s.Lots().Create(ctx, l))
	}

	due, err := s.Lots().ListDue(ctx, entity.StateInTransit, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "due-1", due[0].ID, "primero el más antiguo")
	assert.Equal(t, "due-2", due[1].ID)
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	r := NewResolver().AddPart("P-1", "Parte", "M").AddVendor("V-1").AddEmployee("E-7", "Luis Pérez")

	part, err := r.FindPart(ctx, "P-1")
	require.NoError(t, err)
	require.NotNil(t, part)
	assert.Equal(t, "M", part.Model)

	missing, err := r.FindPart(ctx, "P-2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	id, err := r.ResolveActorID(ctx, "luis pérez")
	require.NoError(t, err)
	assert.Equal(t, "E-7", id, "el nombre se compara sin distinguir mayúsculas")

	r.SetUnavailable(errors.New("sin conexión"))
	_, err = r.VendorExists(ctx, "V-1")
	assert.ErrorIs(t, err, domain.ErrTransient)

	r.SetUnavailable(nil)
	ok, err := r.VendorExists(ctx, "V-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyGuard(t *testing.T) {
	ctx := context.Background()
	g := NewIdempotencyGuard()

	ok, err := g.Claim(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Claim(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "una clave reservada no se reserva dos veces")

	require.NoError(t, g.Release(ctx, "k"))
	ok, err = g.Claim(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLedgerRepo_QueryByLot(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	err := s.Run(ctx, func(_ repository.LotRepository, _ repository.CounterRepository, g repository.LedgerRepository) error {
		for _, e := range []*entity.LedgerEntry{
			{PartCode: "P-1", LotID: "a", State: entity.StateOffSystem, Direction: entity.DirectionIn, Quantity: 50, QuantityAfter: 50, CreatedAt: now},
			{PartCode: "P-1", LotID: "b", State: entity.StateOffSystem, Direction: entity.DirectionIn, Quantity: 5, QuantityBefore: 50, QuantityAfter: 55, CreatedAt: now},
			{PartCode: "P-1", LotID: "a", State: entity.StateOffSystem, Direction: entity.DirectionOut, Quantity: 20, QuantityBefore: 55, QuantityAfter: 35, CreatedAt: now},
			{PartCode: "P-1", LotID: "a", State: entity.StateInspected, Direction: entity.DirectionIn, Quantity: 20, QuantityAfter: 20, CreatedAt: now},
		} {
			require.NoError(t, g.Append(ctx, e))
		}
		return nil
	})
	require.NoError(t, err)

	entries, err := s.Ledger().QueryByLot(ctx, "a")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []int64{1, 3, 4}, []int64{entries[0].Seq, entries[1].Seq, entries[2].Seq})
	assert.Equal(t, map[entity.State]int64{entity.StateOffSystem: 30, entity.StateInspected: 20}, entity.Residuals(entries))

	none, err := s.Ledger().QueryByLot(ctx, "zz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNewResolverFromSeed(t *testing.T) {
	r := NewResolverFromSeed(&config.Seed{
		Parts:     []config.SeedPart{{Code: "P-100", Name: "Parte 100", Model: "M1"}},
		Vendors:   []string{"V-01"},
		Employees: []config.SeedEmployee{{ID: "E-1", Name: "Ana"}},
	})
	ctx := context.Background()

	p, err := r.FindPart(ctx, "P-100")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "M1", p.Model)

	ok, err := r.VendorExists(ctx, "V-01")
	require.NoError(t, err)
	assert.True(t, ok)

	id, err := r.ResolveActorID(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "E-1", id)
}
