// import_lots carga lotes desde el export CSV del sistema de recepción heredado
// (separador ';', ISO-8859-1 o Windows-1252) usando el ingreso masivo del motor.
//
// Uso: go run ./cmd/import_lots -file recepcion.csv -actor "Ana Pérez" [-encoding latin1] [-request-prefix lote-2024-05]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/legacy"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-lotes/pkg/config"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

func main() {
	file := flag.String("file", "", "ruta del CSV")
	enc := flag.String("encoding", "latin1", "codificación del archivo: latin1, cp1252 o utf8")
	actor := flag.String("actor", "", "empleado que registra el ingreso")
	prefix := flag.String("request-prefix", "", "prefijo de idempotencia por fila (vacío = sin idempotencia)")
	flag.Parse()

	if *file == "" || *actor == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "import_lots"})

	decoder, err := decoderFor(*enc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	loc, _ := cfg.Display.Location()
	inputs, lines, rowErrs, err := parseRows(f, decoder, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	for _, re := range rowErrs {
		fmt.Printf("OMITIDA  %v\n", re)
	}
	for i := range inputs {
		inputs[i].Actor = *actor
		if *prefix != "" {
			inputs[i].RequestID = fmt.Sprintf("%s:%d", *prefix, lines[i])
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	deps := inventory.EngineDeps{
		TxRunner: postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
		Lots:     postgres.NewLotRepository(pool),
		Counters: postgres.NewCounterRepository(pool),
		Ledger:   postgres.NewLedgerRepository(pool),
		Resolver: postgres.NewReferenceResolver(pool),
		Logger:   log.Component("transition_engine"),
	}
	if cfg.Legacy.MySQLDSN != "" {
		db, err := legacy.Open(ctx, cfg.Legacy.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a MySQL heredado")
		}
		defer db.Close()
		deps.Resolver = postgres.NewPartMirror(legacy.NewMySQLResolver(db), pool)
	}
	engine := inventory.NewTransitionEngine(deps)

	start := time.Now()
	results := engine.BulkIntake(ctx, inputs)
	failed := 0
	for _, r := range results {
		line := lines[r.Index]
		if r.Err != nil {
			failed++
			fmt.Printf("ERROR    línea %d: %v\n", line, r.Err)
			continue
		}
		fmt.Printf("OK       línea %d: lote %s (%s x %d)\n", line, r.LotID, r.Lot.PartCode, r.Lot.Quantity)
	}
	fmt.Printf("\n%d filas, %d ingresadas, %d con error, %d omitidas (%s)\n",
		len(results)+len(rowErrs), len(results)-failed, failed, len(rowErrs), time.Since(start).Round(time.Millisecond))
	if failed > 0 || len(rowErrs) > 0 {
		os.Exit(1)
	}
}
