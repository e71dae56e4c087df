// Package scheduler dispara la promoción por tiempo de lotes en tránsito.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const leaseName = "promote-by-time"

// Promoter lo implementa *inventory.TransitionEngine.
type Promoter interface {
	PromoteByTime(ctx context.Context, now time.Time) (int, error)
}

// Locker lease distribuido opcional (ver redis.LeaseLocker).
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Config parámetros del disparador.
type Config struct {
	Interval time.Duration // frecuencia; mínimo un segundo
	Timeout  time.Duration // límite de cada ejecución; 0 = Interval
}

// PromotionScheduler ejecuta PromoteByTime cada Interval sin solapar ejecuciones.
type PromotionScheduler struct {
	cron     *cron.Cron
	job      cron.Job
	promoter Promoter
	locker   Locker
	cfg      Config
	now      func() time.Time
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// New construye el scheduler. locker puede ser nil (una sola instancia).
func New(p Promoter, cfg Config, locker Locker, log zerolog.Logger) (*PromotionScheduler, error) {
	if cfg.Interval < time.Second {
		return nil, fmt.Errorf("intervalo de promoción inválido: %s", cfg.Interval)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	s := &PromotionScheduler{
		promoter: p,
		locker:   locker,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("component", "promotion_scheduler").Logger(),
	}
	cl := cronLogger{s.log}
	s.cron = cron.New(cron.WithLogger(cl))
	s.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.tick))
	if _, err := s.cron.AddJob(fmt.Sprintf("@every %s", cfg.Interval), s.job); err != nil {
		return nil, fmt.Errorf("programar promoción: %w", err)
	}
	return s, nil
}

// Start ejecuta una promoción inicial y arranca el cron.
func (s *PromotionScheduler) Start() {
	s.log.Info().Dur("interval", s.cfg.Interval).Msg("iniciando scheduler de promoción")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.job.Run()
	}()
	s.cron.Start()
}

// Stop detiene el cron y espera la ejecución en curso.
func (s *PromotionScheduler) Stop() {
	s.log.Info().Msg("deteniendo scheduler de promoción")
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// Trigger ejecuta una promoción ahora, por el mismo job envuelto: si hay una en curso se omite.
func (s *PromotionScheduler) Trigger() {
	s.job.Run()
}

func (s *PromotionScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, leaseName, s.cfg.Timeout)
		if err != nil {
			s.log.Error().Err(err).Msg("no se pudo tomar el lease de promoción")
			return
		}
		if !ok {
			s.log.Debug().Msg("otra instancia tiene el lease de promoción")
			return
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn().Err(err).Msg("liberar lease de promoción")
			}
		}()
	}

	start := time.Now()
	n, err := s.promoter.PromoteByTime(ctx, s.now())
	if err != nil {
		s.log.Error().Err(err).Msg("promoción por tiempo fallida")
		return
	}
	s.log.Info().Int("promoted", n).Dur("elapsed", time.Since(start)).Msg("promoción por tiempo")
}

// cronLogger adapta zerolog a cron.Logger.
type cronLogger struct {
	zl zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.zl.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.zl.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
