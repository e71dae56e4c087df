package inventory

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
)

// RetryPolicy límites del reintento con backoff exponencial.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy 3 intentos, 50ms..1s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialInterval: 50 * time.Millisecond, MaxInterval: time.Second}
}

// WithRetry ejecuta fn y la reintenta solo ante errores reintentables
// (modificación concurrente o falla transitoria). Cualquier otro error se devuelve de inmediato.
func WithRetry(ctx context.Context, p RetryPolicy, fn func() error) error {
	return retryIf(ctx, p, domain.IsRetriable, fn)
}

// WithTransientRetry reintenta solo fallas transitorias del almacenamiento. Un conflicto con
// otra escritura llega al llamador: repetir un Move o un Deactivate ya aplicado por otro
// terminaría en NotFound en lugar del conflicto real.
func WithTransientRetry(ctx context.Context, p RetryPolicy, fn func() error) error {
	return retryIf(ctx, p, func(err error) bool {
		return domain.KindOf(err) == domain.KindTransient
	}, fn)
}

func retryIf(ctx context.Context, p RetryPolicy, retriable func(error) bool, fn func() error) error {
	if p.MaxAttempts <= 1 {
		return fn()
	}
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)

	return backoff.Retry(func() error {
		err := fn()
		if err != nil && !retriable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

// Retry aplica la política de reintento configurada en el motor.
func (e *TransitionEngine) Retry(ctx context.Context, fn func() error) error {
	return WithRetry(ctx, e.retry, fn)
}

// RetryTransient aplica la política del motor reintentando solo fallas transitorias.
func (e *TransitionEngine) RetryTransient(ctx context.Context, fn func() error) error {
	return WithTransientRetry(ctx, e.retry, fn)
}
