package inventory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/memory"
)

const actor = "Ana"

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: motor sobre el almacenamiento en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	resolver *memory.Resolver
	rec      *fakeRecorder
	engine   *inventory.TransitionEngine
	clock    time.Time
}

func newFixture(t *testing.T, wrap func(inventory.TxRunner) inventory.TxRunner) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store: store,
		resolver: memory.NewResolver().
			AddPart("P-100", "Parte 100", "M1").
			AddPart("P-200", "Parte 200", "M2").
			AddVendor("V-01").
			AddEmployee("E-1", actor),
		rec:   &fakeRecorder{},
		clock: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	var runner inventory.TxRunner = store
	if wrap != nil {
		runner = wrap(store)
	}
	f.engine = inventory.NewTransitionEngine(inventory.EngineDeps{
		TxRunner:    runner,
		Lots:        store.Lots(),
		Counters:    store.Counters(),
		Ledger:      store.Ledger(),
		Resolver:    f.resolver,
		Idempotency: memory.NewIdempotencyGuard(),
		Recorder:    f.rec,
		Now:         func() time.Time { return f.clock },
		Retry:       inventory.RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
	})
	return f
}

func qty(n int64) *int64 { return &n }

func (f *fixture) intake(t *testing.T, part string, quantity int64) *entity.Lot {
	t.Helper()
	lot, err := f.engine.Intake(context.Background(), inventory.IntakeInput{
		PartCode: part, Quantity: quantity, VendorCode: "V-01", Actor: actor,
	})
	require.NoError(t, err)
	return lot
}

func (f *fixture) intakeEnquiry(t *testing.T, part string, quantity int64, scheduled time.Time) *entity.Lot {
	t.Helper()
	lot, err := f.engine.Intake(context.Background(), inventory.IntakeInput{
		PartCode: part, Quantity: quantity, Track: entity.TrackEnquiry, ScheduledAt: &scheduled, Actor: actor,
	})
	require.NoError(t, err)
	return lot
}

func (f *fixture) move(t *testing.T, lotID string, from, to entity.State, q *int64) inventory.MoveResult {
	t.Helper()
	res, err := f.engine.Move(context.Background(), inventory.MoveInput{
		LotIDs: []string{lotID}, From: from, To: to, Quantity: q, Actor: actor,
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	return res[0]
}

// lotIn crea un lote de P-100 y lo lleva por aristas legales hasta el estado pedido.
func (f *fixture) lotIn(t *testing.T, s entity.State) *entity.Lot {
	t.Helper()
	switch s {
	case entity.StateOffSystem:
		return f.intake(t, "P-100", 10)
	case entity.StateInspected:
		l := f.lotIn(t, entity.StateOffSystem)
		return f.move(t, l.ID, entity.StateOffSystem, entity.StateInspected, nil).Lot
	case entity.StateHold, entity.StateReleased:
		l := f.lotIn(t, entity.StateInspected)
		return f.move(t, l.ID, entity.StateInspected, s, nil).Lot
	case entity.StateNew:
		return f.intakeEnquiry(t, "P-100", 10, f.clock.Add(time.Hour))
	case entity.StateInTransit:
		l := f.lotIn(t, entity.StateNew)
		return f.move(t, l.ID, entity.StateNew, entity.StateInTransit, nil).Lot
	case entity.StateArrived:
		l := f.lotIn(t, entity.StateInTransit)
		return f.move(t, l.ID, entity.StateInTransit, entity.StateArrived, nil).Lot
	}
	t.Fatalf("estado sin camino: %s", s)
	return nil
}

// counters devuelve los contadores existentes de la parte como mapa.
func (f *fixture) counters(t *testing.T, part string) map[entity.State]int64 {
	t.Helper()
	list, err := f.engine.Counters(context.Background(), part)
	require.NoError(t, err)
	out := make(map[entity.State]int64, len(list))
	for _, c := range list {
		out[c.State] = c.Quantity
	}
	return out
}

func (f *fixture) ledger(t *testing.T, part string, s entity.State) []*entity.LedgerEntry {
	t.Helper()
	entries, err := f.engine.QueryLedger(context.Background(), inventory.LedgerQuery{PartCode: part, State: s})
	require.NoError(t, err)
	return entries
}

func (f *fixture) requireConsistent(t *testing.T, part string) {
	t.Helper()
	report, err := f.engine.Reconcile(context.Background(), part)
	require.NoError(t, err)
	require.Equal(t, report.ActiveLotTotal, report.CounterTotal, "conservación: contadores = lotes activos")
	for _, s := range report.States {
		require.Equal(t, s.Counter, s.Replayed, "reproducción del ledger en %s", s.State)
		require.Zero(t, s.BrokenSeq, "historia del ledger consistente en %s", s.State)
	}
	require.True(t, report.Consistent())
}

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeRecorder struct {
	mu          sync.Mutex
	transitions int
	clamped     []entity.State
	failures    []domain.ErrorKind
	promoted    int
}

func (r *fakeRecorder) Transition(entity.State, entity.State, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions++
}

func (r *fakeRecorder) Clamped(s entity.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clamped = append(r.clamped, s)
}

func (r *fakeRecorder) OperationFailed(_ string, kind domain.ErrorKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, kind)
}

func (r *fakeRecorder) Promoted(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promoted += n
}

var errInjected = errors.New("fallo inyectado")

// faultyRunner hace fallar el N-ésimo Append del ledger dentro de cada transacción (0 = desactivado).
type faultyRunner struct {
	inner  inventory.TxRunner
	failAt atomic.Int32
}

func (r *faultyRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	counterRepo repository.CounterRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	failAt := int(r.failAt.Load())
	return r.inner.Run(ctx, func(l repository.LotRepository, c repository.CounterRepository, g repository.LedgerRepository) error {
		return fn(l, c, &faultyLedger{LedgerRepository: g, failAt: failAt})
	})
}

type faultyLedger struct {
	repository.LedgerRepository
	calls  int
	failAt int
}

func (l *faultyLedger) Append(ctx context.Context, e *entity.LedgerEntry) error {
	l.calls++
	if l.failAt > 0 && l.calls == l.failAt {
		return errInjected
	}
	return l.LedgerRepository.Append(ctx, e)
}

// barrierRunner retiene a los llamadores hasta que todos llegan a Run, para que
// ambos hayan hecho la lectura previa antes de que cualquiera confirme.
type barrierRunner struct {
	inner inventory.TxRunner
	wg    *sync.WaitGroup
	armed atomic.Bool
}

func (r *barrierRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	counterRepo repository.CounterRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	if r.armed.Load() {
		r.wg.Done()
		r.wg.Wait()
	}
	return r.inner.Run(ctx, fn)
}

// gateRunner detiene la primera transacción armada antes de abrirla, para que otra
// escritura confirme mientras tanto.
type gateRunner struct {
	inner   inventory.TxRunner
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGateRunner(inner inventory.TxRunner) *gateRunner {
	return &gateRunner{inner: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (r *gateRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	counterRepo repository.CounterRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	if r.armed.CompareAndSwap(true, false) {
		close(r.entered)
		<-r.release
	}
	return r.inner.Run(ctx, fn)
}
