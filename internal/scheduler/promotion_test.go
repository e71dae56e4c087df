package scheduler_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/scheduler"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakePromoter struct {
	calls   atomic.Int32
	started chan struct{}
	block   chan struct{}
}

func (p *fakePromoter) PromoteByTime(ctx context.Context, _ time.Time) (int, error) {
	p.calls.Add(1)
	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
		}
	}
	return 1, nil
}

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	released int
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return func(context.Context) error { return nil }, false, nil
	}
	l.held = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held = false
		l.released++
		return nil
	}, true, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestNew_RejectsSubSecondInterval(t *testing.T) {
	_, err := scheduler.New(&fakePromoter{}, scheduler.Config{Interval: 10 * time.Millisecond}, nil, zerolog.Nop())
	assert.Error(t, err, "cron no admite intervalos menores a un segundo")
}

func TestStart_RunsInitialTick(t *testing.T) {
	p := &fakePromoter{}
	s, err := scheduler.New(p, scheduler.Config{Interval: time.Hour}, nil, zerolog.Nop())
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond,
		"la promoción inicial se ejecuta al arrancar")
	s.Stop()
}

func TestTrigger_SkipsWhileRunning(t *testing.T) {
	p := &fakePromoter{started: make(chan struct{}, 1), block: make(chan struct{})}
	s, err := scheduler.New(p, scheduler.Config{Interval: time.Hour}, nil, zerolog.Nop())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Trigger()
		close(done)
	}()
	<-p.started

	s.Trigger() // se omite: la primera sigue en curso
	assert.Equal(t, int32(1), p.calls.Load(), "no debe haber ejecuciones solapadas")

	close(p.block)
	<-done
}

func TestTick_RespectsLease(t *testing.T) {
	p := &fakePromoter{}
	locker := &fakeLocker{held: true}
	s, err := scheduler.New(p, scheduler.Config{Interval: time.Hour}, locker, zerolog.Nop())
	require.NoError(t, err)

	s.Trigger()
	assert.Equal(t, int32(0), p.calls.Load(), "sin lease no se promueve")

	locker.mu.Lock()
	locker.held = false
	locker.mu.Unlock()

	s.Trigger()
	assert.Equal(t, int32(1), p.calls.Load())
	assert.Equal(t, 1, locker.released, "el lease se libera al terminar")
}
