package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// SystemActor identidad usada por los procesos automáticos (promoción por tiempo).
const SystemActor = "system"

const defaultPromoteBatchLimit = 500

// EngineDeps dependencias del motor de transiciones.
type EngineDeps struct {
	TxRunner TxRunner
	// Repositorios atados al pool, solo para lecturas fuera de transacción.
	Lots     repository.LotRepository
	Counters repository.CounterRepository
	Ledger   repository.LedgerRepository
	Resolver ReferenceResolver

	Idempotency IdempotencyGuard // opcional
	Recorder    Recorder         // opcional
	Logger      *zerolog.Logger  // opcional, ya etiquetado con su componente
	Now         func() time.Time // opcional, reloj inyectable
	Retry       RetryPolicy

	PromoteBatchLimit int
}

// TransitionEngine es el único dueño de las escrituras sobre lotes, contadores y ledger.
// Cada operación pública se ejecuta en una sola transacción (SELECT FOR UPDATE + Commit/Rollback).
type TransitionEngine struct {
	tx           TxRunner
	lots         repository.LotRepository
	counters     repository.CounterRepository
	ledger       repository.LedgerRepository
	resolver     ReferenceResolver
	idem         IdempotencyGuard
	rec          Recorder
	log          zerolog.Logger
	now          func() time.Time
	retry        RetryPolicy
	promoteLimit int
}

// NewTransitionEngine construye el motor.
func NewTransitionEngine(deps EngineDeps) *TransitionEngine {
	e := &TransitionEngine{
		tx:           deps.TxRunner,
		lots:         deps.Lots,
		counters:     deps.Counters,
		ledger:       deps.Ledger,
		resolver:     deps.Resolver,
		idem:         deps.Idempotency,
		rec:          deps.Recorder,
		now:          deps.Now,
		retry:        deps.Retry,
		promoteLimit: deps.PromoteBatchLimit,
	}
	if e.rec == nil {
		e.rec = noopRecorder{}
	}
	if deps.Logger != nil {
		e.log = *deps.Logger
	} else {
		e.log = zerolog.Nop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.retry.MaxAttempts <= 0 {
		e.retry = DefaultRetryPolicy()
	}
	if e.promoteLimit <= 0 {
		e.promoteLimit = defaultPromoteBatchLimit
	}
	return e
}

// IntakeInput entrada para registrar un lote recibido.
type IntakeInput struct {
	PartCode    string
	Quantity    int64
	VendorCode  string
	Label       string
	Reference   string
	Track       entity.Track // vacío = stock (OFF_SYSTEM)
	ScheduledAt *time.Time
	RequestID   string // opcional, clave de idempotencia
	Actor       string
}

// Intake crea un lote en el estado inicial de su flujo, incrementa el contador
// correspondiente y agrega un asiento IN.
func (e *TransitionEngine) Intake(ctx context.Context, in IntakeInput) (lot *entity.Lot, err error) {
	defer func() { e.observe("intake", err) }()

	partCode := strings.TrimSpace(in.PartCode)
	if partCode == "" {
		return nil, domain.Validation("part_code es requerido")
	}
	if in.Quantity <= 0 {
		return nil, domain.Validation("la cantidad debe ser mayor que cero")
	}
	initial, ok := in.Track.InitialState()
	if !ok {
		return nil, domain.Validation("flujo desconocido %q", in.Track)
	}

	part, err := e.resolver.FindPart(ctx, partCode)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ReferenceNotFound("parte %q no encontrada", partCode)
	}
	vendor := strings.TrimSpace(in.VendorCode)
	if vendor != "" {
		exists, err := e.resolver.VendorExists(ctx, vendor)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ReferenceNotFound("proveedor %q no encontrado", vendor)
		}
	}
	actorID, err := e.resolveActor(ctx, in.Actor)
	if err != nil {
		return nil, err
	}

	if in.RequestID != "" && e.idem != nil {
		key := "intake:" + in.RequestID
		var claimed bool
		claimed, err = e.idem.Claim(ctx, key)
		if err != nil {
			return nil, domain.Wrap(domain.KindTransient, err, "verificar idempotencia")
		}
		if !claimed {
			return nil, domain.Validation("solicitud duplicada %q", in.RequestID)
		}
		defer func() {
			if err != nil {
				if rerr := e.idem.Release(context.WithoutCancel(ctx), key); rerr != nil {
					e.log.Warn().Err(rerr).Str("request_id", in.RequestID).Msg("liberar clave de idempotencia")
				}
			}
		}()
	}

	now := e.now()
	newLot := &entity.Lot{
		ID:          uuid.New().String(),
		PartCode:    part.Code,
		Quantity:    in.Quantity,
		State:       initial,
		QualityFlag: entity.FlagFor(initial),
		VendorCode:  vendor,
		Label:       in.Label,
		Reference:   in.Reference,
		ScheduledAt: in.ScheduledAt,
		Active:      true,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	txID := uuid.New().String()

	err = e.tx.Run(ctx, func(
		lotRepo repository.LotRepository,
		counterRepo repository.CounterRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		if err := lotRepo.Create(ctx, newLot); err != nil {
			return err
		}
		_, err := e.post(ctx, counterRepo, ledgerRepo, posting{
			lot: newLot, state: initial, dir: entity.DirectionIn, qty: in.Quantity,
			action: entity.ActionIntake, txID: txID, actorID: actorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("lot_id", newLot.ID).
		Str("part_code", newLot.PartCode).
		Int64("quantity", newLot.Quantity).
		Stringer("state", initial).
		Msg("lote ingresado")
	return newLot, nil
}

// MoveInput entrada para mover uno o más lotes entre estados.
// Quantity nil mueve la cantidad completa de cada lote.
type MoveInput struct {
	LotIDs   []string
	From     entity.State
	To       entity.State
	Quantity *int64
	Actor    string
}

// MoveResult lote actualizado y sus dos asientos (OUT en origen, IN en destino).
type MoveResult struct {
	Lot     *entity.Lot
	Entries []*entity.LedgerEntry
}

// Move valida y ejecuta la transición de todos los lotes en una sola transacción.
// Los resultados se devuelven en orden de ID de lote.
func (e *TransitionEngine) Move(ctx context.Context, in MoveInput) (results []MoveResult, err error) {
	defer func() { e.observe("move", err) }()
	return e.move(ctx, in, entity.ActionMove)
}

func (e *TransitionEngine) move(ctx context.Context, in MoveInput, action string) ([]MoveResult, error) {
	ids, err := normalizeIDs(in.LotIDs)
	if err != nil {
		return nil, err
	}
	if !in.From.Valid() || !in.To.Valid() {
		return nil, domain.Validation("estado origen y destino son requeridos")
	}
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, domain.Validation("la cantidad debe ser mayor que cero")
	}
	actorID, err := e.resolveActor(ctx, in.Actor)
	if err != nil {
		return nil, err
	}

	// 1. Lectura sin bloqueo: existencia, actividad y estado esperado
	current := make([]*entity.Lot, 0, len(ids))
	for _, id := range ids {
		lot, err := e.lots.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if lot == nil || !lot.Active {
			return nil, domain.NotFound("lote %s no encontrado", id)
		}
		if lot.State != in.From {
			return nil, domain.NotFound("lote %s no está en estado %s", id, in.From)
		}
		// 2. Cantidad parcial: reetiqueta el lote, no lo divide
		if in.Quantity != nil && *in.Quantity > lot.Quantity {
			return nil, domain.Validation("lote %s: cantidad %d supera la del lote (%d)", id, *in.Quantity, lot.Quantity)
		}
		current = append(current, lot)
	}

	// 3. Tabla de adyacencia
	if !inventory.CanTransition(in.From, in.To) {
		return nil, domain.InvalidTransition("transición %s → %s no permitida", in.From, in.To)
	}
	if in.To == entity.StateInTransit {
		for _, lot := range current {
			if lot.ScheduledAt == nil {
				return nil, domain.Validation("lote %s: se requiere fecha de llegada programada", lot.ID)
			}
		}
	}

	txID := uuid.New().String()
	var results []MoveResult

	// 4. Transacción: bloqueo de lotes, revalidación, contadores, lote y ledger
	err = e.tx.Run(ctx, func(
		lotRepo repository.LotRepository,
		counterRepo repository.CounterRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		results = results[:0]
		locked := make([]*entity.Lot, 0, len(ids))
		amounts := make([]int64, 0, len(ids))
		keys := make([]counterKey, 0, 2*len(ids))
		for _, id := range ids {
			lot, err := lotRepo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if lot == nil || !lot.Active || lot.State != in.From {
				return domain.ConcurrentModification("lote %s fue modificado por otra operación", id)
			}
			qty, err := movableQuantity(ctx, ledgerRepo, lot, in.From, in.Quantity)
			if err != nil {
				return err
			}
			locked = append(locked, lot)
			amounts = append(amounts, qty)
			keys = append(keys, counterKey{lot.PartCode, in.From}, counterKey{lot.PartCode, in.To})
		}
		if err := lockCounters(ctx, counterRepo, keys); err != nil {
			return err
		}
		for i, lot := range locked {
			entries, err := e.transfer(ctx, lotRepo, counterRepo, ledgerRepo, transferSpec{
				lot: lot, from: in.From, to: in.To, qty: amounts[i],
				action: action, txID: txID, actorID: actorID,
			})
			if err != nil {
				return err
			}
			results = append(results, MoveResult{Lot: lot, Entries: entries})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		e.rec.Transition(in.From, in.To, r.Entries[1].Quantity)
		e.log.Info().
			Str("lot_id", r.Lot.ID).
			Str("part_code", r.Lot.PartCode).
			Stringer("from", in.From).
			Stringer("to", in.To).
			Int64("quantity", r.Entries[1].Quantity).
			Str("action", action).
			Msg("lote movido")
	}
	return results, nil
}

// AdjustInput corrección de cantidad y/o marca de calidad de un lote.
// Si la marca cambia, Quantity es la cantidad que pasa a (o sale de) HOLD;
// si no, Quantity es la nueva cantidad del lote.
type AdjustInput struct {
	LotID       string
	Quantity    *int64
	QualityFlag *entity.QualityFlag
	Actor       string
}

// Adjust corrige un lote sin cambiar su estado grueso. Un cambio OK↔HOLD se ejecuta
// como un movimiento implícito entre el contador normal y el de HOLD.
func (e *TransitionEngine) Adjust(ctx context.Context, in AdjustInput) (lot *entity.Lot, err error) {
	defer func() { e.observe("adjust", err) }()

	id := strings.TrimSpace(in.LotID)
	if id == "" {
		return nil, domain.Validation("lot_id es requerido")
	}
	if in.Quantity == nil && in.QualityFlag == nil {
		return nil, domain.Validation("se requiere cantidad o marca de calidad")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, domain.Validation("la cantidad no puede ser negativa")
	}
	if in.QualityFlag != nil && *in.QualityFlag != entity.QualityOK && *in.QualityFlag != entity.QualityHold {
		return nil, domain.Validation("marca de calidad desconocida %q", *in.QualityFlag)
	}
	actorID, err := e.resolveActor(ctx, in.Actor)
	if err != nil {
		return nil, err
	}

	current, err := e.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil || !current.Active {
		return nil, domain.NotFound("lote %s no encontrado", id)
	}

	plan, err := planAdjust(current, in)
	if err != nil {
		return nil, err
	}
	if plan.noop {
		return current, nil
	}

	now := e.now()
	txID := uuid.New().String()
	var updated *entity.Lot

	err = e.tx.Run(ctx, func(
		lotRepo repository.LotRepository,
		counterRepo repository.CounterRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		locked, err := lotRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil || !locked.Active || locked.Version != current.Version {
			return domain.ConcurrentModification("lote %s fue modificado por otra operación", id)
		}
		if plan.flagChange {
			var requested *int64
			if plan.qty > 0 {
				requested = &plan.qty
			}
			qty, err := movableQuantity(ctx, ledgerRepo, locked, plan.from, requested)
			if err != nil {
				return err
			}
			plan.qty = qty
			if err := lockCounters(ctx, counterRepo, []counterKey{
				{locked.PartCode, plan.from}, {locked.PartCode, plan.to},
			}); err != nil {
				return err
			}
			if _, err := e.transfer(ctx, lotRepo, counterRepo, ledgerRepo, transferSpec{
				lot: locked, from: plan.from, to: plan.to, qty: plan.qty,
				action: entity.ActionAdjust, txID: txID, actorID: actorID,
			}); err != nil {
				return err
			}
			updated = locked
			return nil
		}

		if plan.delta < 0 {
			residual, err := lotResiduals(ctx, ledgerRepo, locked.ID)
			if err != nil {
				return err
			}
			if -plan.delta > residual[locked.State] {
				return domain.Validation("lote %s: la reducción %d supera su cantidad en %s (%d)",
					locked.ID, -plan.delta, locked.State, residual[locked.State])
			}
		}
		dir, mag := inventory.DirectionFor(plan.delta)
		entry, err := e.post(ctx, counterRepo, ledgerRepo, posting{
			lot: locked, state: locked.State, dir: dir, qty: mag,
			action: entity.ActionAdjust, txID: txID, actorID: actorID,
		})
		if err != nil {
			return err
		}
		// Con recorte el lote baja solo lo que el contador tenía.
		locked.Quantity += entry.QuantityAfter - entry.QuantityBefore
		locked.Version++
		locked.UpdatedAt = now
		if err := lotRepo.Update(ctx, locked); err != nil {
			return err
		}
		updated = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if plan.flagChange {
		e.rec.Transition(plan.from, plan.to, plan.qty)
	}
	e.log.Info().
		Str("lot_id", updated.ID).
		Int64("quantity", updated.Quantity).
		Str("quality_flag", string(updated.QualityFlag)).
		Stringer("state", updated.State).
		Msg("lote ajustado")
	return updated, nil
}

type adjustPlan struct {
	noop       bool
	flagChange bool
	from, to   entity.State
	qty        int64 // 0 = todo lo que el lote tiene en from
	delta      int64
}

func planAdjust(current *entity.Lot, in AdjustInput) (adjustPlan, error) {
	if in.QualityFlag != nil && *in.QualityFlag != current.QualityFlag {
		p := adjustPlan{flagChange: true}
		if *in.QualityFlag == entity.QualityHold {
			p.from, p.to = current.State, entity.StateHold
		} else {
			p.from, p.to = entity.StateHold, inventory.HoldReturnState()
		}
		if current.State != p.from || !inventory.CanTransition(p.from, p.to) {
			return p, domain.InvalidTransition("lote %s: no se puede pasar de %s a %s", current.ID, current.State, p.to)
		}
		if in.Quantity != nil {
			p.qty = *in.Quantity
			if p.qty <= 0 || p.qty > current.Quantity {
				return p, domain.Validation("lote %s: cantidad %d fuera de rango (1..%d)", current.ID, p.qty, current.Quantity)
			}
		}
		return p, nil
	}
	if in.Quantity == nil || *in.Quantity == current.Quantity {
		return adjustPlan{noop: true}, nil
	}
	return adjustPlan{delta: *in.Quantity - current.Quantity}, nil
}

// Deactivate desactiva (borrado lógico) un lote y retira de cada contador lo que el lote
// aporta según sus asientos: tras un movimiento parcial son dos estados, no uno.
func (e *TransitionEngine) Deactivate(ctx context.Context, lotID, actor string) (lot *entity.Lot, err error) {
	defer func() { e.observe("deactivate", err) }()

	id := strings.TrimSpace(lotID)
	if id == "" {
		return nil, domain.Validation("lot_id es requerido")
	}
	actorID, err := e.resolveActor(ctx, actor)
	if err != nil {
		return nil, err
	}
	current, err := e.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil || !current.Active {
		return nil, domain.NotFound("lote %s no encontrado", id)
	}

	now := e.now()
	txID := uuid.New().String()
	var updated *entity.Lot
	err = e.tx.Run(ctx, func(
		lotRepo repository.LotRepository,
		counterRepo repository.CounterRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		locked, err := lotRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil || !locked.Active {
			return domain.ConcurrentModification("lote %s fue modificado por otra operación", id)
		}
		residual, err := lotResiduals(ctx, ledgerRepo, locked.ID)
		if err != nil {
			return err
		}
		keys := make([]counterKey, 0, len(residual))
		for st, q := range residual {
			if q > 0 {
				keys = append(keys, counterKey{locked.PartCode, st})
			}
		}
		if err := lockCounters(ctx, counterRepo, keys); err != nil {
			return err
		}
		// lockCounters deja keys en orden canónico.
		for _, k := range keys {
			if _, err := e.post(ctx, counterRepo, ledgerRepo, posting{
				lot: locked, state: k.state, dir: entity.DirectionOut, qty: residual[k.state],
				action: entity.ActionDeactivate, txID: txID, actorID: actorID,
			}); err != nil {
				return err
			}
		}
		locked.Active = false
		locked.Version++
		locked.UpdatedAt = now
		if err := lotRepo.Update(ctx, locked); err != nil {
			return err
		}
		updated = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("lot_id", id).Msg("lote desactivado")
	return updated, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Escrituras internas (siempre dentro de la transacción del llamador)
// ──────────────────────────────────────────────────────────────────────────────

type posting struct {
	lot     *entity.Lot
	state   entity.State
	dir     entity.Direction
	qty     int64
	action  string
	txID    string
	actorID string
}

// post aplica un delta a un contador y agrega el asiento con las cantidades antes/después.
func (e *TransitionEngine) post(
	ctx context.Context,
	counterRepo repository.CounterRepository,
	ledgerRepo repository.LedgerRepository,
	p posting,
) (*entity.LedgerEntry, error) {
	counter, err := counterRepo.GetForUpdate(ctx, p.lot.PartCode, p.state)
	if err != nil {
		return nil, err
	}
	// Sello tomado con el contador bloqueado: el orden por fecha coincide con el de escritura.
	stamp := e.now()
	before := counter.Quantity
	after, clamped := inventory.ApplyDelta(before, p.dir, p.qty)
	if clamped {
		e.rec.Clamped(p.state)
		e.log.Warn().
			Str("part_code", p.lot.PartCode).
			Stringer("state", p.state).
			Int64("requested", p.qty).
			Int64("available", before).
			Str("lot_id", p.lot.ID).
			Msg("contador recortado a cero: desviación de stock")
	}
	counter.Quantity = after
	counter.UpdatedAt = stamp
	if err := counterRepo.Upsert(ctx, counter); err != nil {
		return nil, err
	}
	entry := &entity.LedgerEntry{
		PartCode:       p.lot.PartCode,
		Direction:      p.dir,
		State:          p.state,
		Quantity:       p.qty,
		QuantityBefore: before,
		QuantityAfter:  after,
		LotID:          p.lot.ID,
		Action:         p.action,
		TransactionID:  p.txID,
		ActorID:        p.actorID,
		CreatedAt:      stamp,
	}
	if err := ledgerRepo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

type transferSpec struct {
	lot      *entity.Lot
	from, to entity.State
	qty      int64
	action   string
	txID     string
	actorID  string
}

// transfer: OUT en origen, IN en destino y actualización del lote; misma transacción.
func (e *TransitionEngine) transfer(
	ctx context.Context,
	lotRepo repository.LotRepository,
	counterRepo repository.CounterRepository,
	ledgerRepo repository.LedgerRepository,
	t transferSpec,
) ([]*entity.LedgerEntry, error) {
	out, err := e.post(ctx, counterRepo, ledgerRepo, posting{
		lot: t.lot, state: t.from, dir: entity.DirectionOut, qty: t.qty,
		action: t.action, txID: t.txID, actorID: t.actorID,
	})
	if err != nil {
		return nil, err
	}
	// El destino recibe lo que realmente salió del origen (menos si hubo recorte).
	moved := out.QuantityBefore - out.QuantityAfter
	in, err := e.post(ctx, counterRepo, ledgerRepo, posting{
		lot: t.lot, state: t.to, dir: entity.DirectionIn, qty: moved,
		action: t.action, txID: t.txID, actorID: t.actorID,
	})
	if err != nil {
		return nil, err
	}
	t.lot.State = t.to
	t.lot.QualityFlag = entity.FlagFor(t.to)
	t.lot.Version++
	t.lot.UpdatedAt = in.CreatedAt
	if err := lotRepo.Update(ctx, t.lot); err != nil {
		return nil, err
	}
	return []*entity.LedgerEntry{out, in}, nil
}

// lotResiduals calcula lo que el lote aporta a cada contador según sus propios asientos.
func lotResiduals(ctx context.Context, ledgerRepo repository.LedgerRepository, lotID string) (map[entity.State]int64, error) {
	entries, err := ledgerRepo.QueryByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	return entity.Residuals(entries), nil
}

// movableQuantity devuelve cuánto del lote puede salir de from: lo pedido, o todo lo que el
// lote tiene en ese estado. Tras un movimiento parcial el resto queda contado en el origen.
func movableQuantity(ctx context.Context, ledgerRepo repository.LedgerRepository, lot *entity.Lot, from entity.State, requested *int64) (int64, error) {
	residual, err := lotResiduals(ctx, ledgerRepo, lot.ID)
	if err != nil {
		return 0, err
	}
	available := residual[from]
	if requested == nil {
		if available <= 0 {
			return 0, domain.Validation("lote %s no tiene cantidad en %s", lot.ID, from)
		}
		return available, nil
	}
	if *requested > available {
		return 0, domain.Validation("lote %s: cantidad %d supera la disponible en %s (%d)", lot.ID, *requested, from, available)
	}
	return *requested, nil
}

type counterKey struct {
	partCode string
	state    entity.State
}

// lockCounters bloquea las filas de contadores en orden canónico (parte, estado)
// para que dos transacciones sobre la misma parte no se bloqueen mutuamente.
func lockCounters(ctx context.Context, counterRepo repository.CounterRepository, keys []counterKey) error {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].partCode != keys[j].partCode {
			return keys[i].partCode < keys[j].partCode
		}
		return keys[i].state < keys[j].state
	})
	var prev *counterKey
	for i := range keys {
		if prev != nil && *prev == keys[i] {
			continue
		}
		if _, err := counterRepo.GetForUpdate(ctx, keys[i].partCode, keys[i].state); err != nil {
			return err
		}
		prev = &keys[i]
	}
	return nil
}

func (e *TransitionEngine) resolveActor(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.Validation("actor es requerido")
	}
	if name == SystemActor {
		return SystemActor, nil
	}
	id, err := e.resolver.ResolveActorID(ctx, name)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", domain.ReferenceNotFound("empleado %q no encontrado", name)
	}
	return id, nil
}

func (e *TransitionEngine) observe(op string, err error) {
	if err == nil {
		return
	}
	kind := domain.KindOf(err)
	if kind == "" {
		kind = "INTERNAL"
	}
	e.rec.OperationFailed(op, kind)
}

// normalizeIDs recorta, deduplica y ordena los IDs (orden de bloqueo estable).
func normalizeIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, domain.Validation("se requiere al menos un lote")
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, domain.Validation("lot_id vacío")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
