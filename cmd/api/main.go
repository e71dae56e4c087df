package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/legacy"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/metrics"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Inventario-lotes/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Inventario-lotes/internal/interfaces/http"
	"github.com/jhoicas/Inventario-lotes/internal/scheduler"
	"github.com/jhoicas/Inventario-lotes/pkg/config"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	deps := inventory.EngineDeps{
		Logger:            log.Component("transition_engine"),
		PromoteBatchLimit: cfg.Promotion.BatchLimit,
		Retry: inventory.RetryPolicy{
			MaxAttempts:     cfg.Engine.RetryMaxAttempts,
			InitialInterval: 50 * time.Millisecond,
			MaxInterval:     time.Second,
		},
	}

	// Almacenamiento: lotes, contadores y ledger
	var pool *pgxpool.Pool
	switch cfg.App.StoreDriver {
	case "memory":
		store := memory.NewStore()
		deps.TxRunner = store
		deps.Lots, deps.Counters, deps.Ledger = store.Lots(), store.Counters(), store.Ledger()
		if cfg.App.SeedFile != "" {
			seed, err := config.LoadSeed(cfg.App.SeedFile)
			if err != nil {
				log.Fatal().Err(err).Msg("datos maestros en memoria")
			}
			deps.Resolver = memory.NewResolverFromSeed(seed)
			log.Info().Int("parts", len(seed.Parts)).Str("file", cfg.App.SeedFile).Msg("datos maestros cargados")
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		deps.TxRunner = postgres.NewTxRunner(pool, cfg.DB.LockTimeout)
		deps.Lots = postgres.NewLotRepository(pool)
		deps.Counters = postgres.NewCounterRepository(pool)
		deps.Ledger = postgres.NewLedgerRepository(pool)
		deps.Resolver = postgres.NewReferenceResolver(pool)
	}

	// Datos maestros heredados (MySQL) si están configurados. Con PostgreSQL cada parte
	// resuelta se copia a la tabla local parts, que es la que referencian lots y state_counters.
	var legacyDB *sql.DB
	if cfg.Legacy.MySQLDSN != "" {
		legacyDB, err = legacy.Open(ctx, cfg.Legacy.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a MySQL heredado")
		}
		deps.Resolver = legacy.NewMySQLResolver(legacyDB)
		if pool != nil {
			deps.Resolver = postgres.NewPartMirror(deps.Resolver, pool)
		}
		log.Info().Msg("datos maestros desde MySQL heredado")
	}

	// Redis: idempotencia de ingresos y lease de promoción
	var rdb *goredis.Client
	var locker scheduler.Locker
	if cfg.Redis.Enabled() {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		deps.Idempotency = infraredis.NewIdempotencyGuard(rdb)
		locker = infraredis.NewLeaseLocker(rdb)
	} else {
		deps.Idempotency = memory.NewIdempotencyGuard()
	}

	// Métricas
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Recorder = metrics.NewRecorder(registry)

	engine := inventory.NewTransitionEngine(deps)

	promotion, err := scheduler.New(engine, scheduler.Config{
		Interval: cfg.Promotion.Interval,
		Timeout:  cfg.Promotion.Timeout,
	}, locker, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler de promoción")
	}

	loc, _ := cfg.Display.Location()
	presenter := dto.NewPresenter(loc, cfg.Display.DateLayout)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Lot Engine API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:    engine,
		Presenter: presenter,
		Promotion: promotion,
	})

	promotion.Start()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	promotion.Stop()

	if rdb != nil {
		_ = rdb.Close()
	}
	if legacyDB != nil {
		_ = legacyDB.Close()
	}

	log.Info().Msg("aplicación detenida")
}
