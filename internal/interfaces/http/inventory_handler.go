package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

const (
	headerActor          = "X-Actor"
	headerIdempotencyKey = "Idempotency-Key"
)

// LotHandler expone el motor de transiciones por HTTP. No contiene reglas de negocio.
type LotHandler struct {
	engine    *inventory.TransitionEngine
	presenter dto.Presenter
}

// NewLotHandler construye el handler.
func NewLotHandler(engine *inventory.TransitionEngine, presenter dto.Presenter) *LotHandler {
	return &LotHandler{engine: engine, presenter: presenter}
}

func actor(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get(headerActor))
}

// Intake godoc
// @Summary      Ingresar lote
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor          header  string             true   "Nombre del empleado"
// @Param        Idempotency-Key  header  string             false  "Clave para evitar ingresos duplicados"
// @Param        body             body    dto.IntakeRequest  true   "part_code, quantity, track (stock|enquiry)"
// @Success      201  {object}  dto.LotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Intake(c *fiber.Ctx) error {
	var in dto.IntakeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	input := inventory.IntakeFromRequest(actor(c), c.Get(headerIdempotencyKey), in)
	var lot *entity.Lot
	err := h.engine.Retry(c.UserContext(), func() error {
		var err error
		lot, err = h.engine.Intake(c.UserContext(), input)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.presenter.Lot(lot))
}

// BulkIntake godoc
// @Summary      Ingreso masivo de lotes (éxito parcial)
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor  header  string                 true  "Nombre del empleado"
// @Param        body     body    dto.BulkIntakeRequest  true  "items"
// @Success      200  {object}  dto.BulkResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lots/bulk [post]
func (h *LotHandler) BulkIntake(c *fiber.Ctx) error {
	var in dto.BulkIntakeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if len(in.Items) == 0 {
		return writeError(c, domain.Validation("se requiere al menos un ítem"))
	}
	key := c.Get(headerIdempotencyKey)
	inputs := make([]inventory.IntakeInput, len(in.Items))
	for i, item := range in.Items {
		reqID := ""
		if key != "" {
			reqID = key + ":" + strconv.Itoa(i)
		}
		inputs[i] = inventory.IntakeFromRequest(actor(c), reqID, item)
	}
	return c.JSON(h.bulkResponse(h.engine.BulkIntake(c.UserContext(), inputs)))
}

// Move godoc
// @Summary      Mover lotes entre estados (todo o nada)
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor  header  string           true  "Nombre del empleado"
// @Param        body     body    dto.MoveRequest  true  "lot_ids, from_state, to_state, quantity opcional"
// @Success      200  {array}   dto.MoveResultResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lots/move [post]
func (h *LotHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	input, err := inventory.MoveFromRequest(actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	var results []inventory.MoveResult
	err = h.engine.RetryTransient(c.UserContext(), func() error {
		var err error
		results, err = h.engine.Move(c.UserContext(), input)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MoveResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, dto.MoveResultResponse{
			Lot:     h.presenter.Lot(r.Lot),
			Entries: h.presenter.LedgerEntries(r.Entries),
		})
	}
	return c.JSON(out)
}

// BulkMove godoc
// @Summary      Mover lotes uno por uno (éxito parcial)
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor  header  string           true  "Nombre del empleado"
// @Param        body     body    dto.MoveRequest  true  "lot_ids, from_state, to_state"
// @Success      200  {object}  dto.BulkResponse
// @Router       /api/lots/move/bulk [post]
func (h *LotHandler) BulkMove(c *fiber.Ctx) error {
	var in dto.MoveRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	input, err := inventory.MoveFromRequest(actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	if len(input.LotIDs) == 0 {
		return writeError(c, domain.Validation("se requiere al menos un lote"))
	}
	return c.JSON(h.bulkResponse(h.engine.BulkMove(c.UserContext(), input)))
}

// Adjust godoc
// @Summary      Corregir cantidad o marca de calidad de un lote
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        X-Actor  header  string             true  "Nombre del empleado"
// @Param        id       path    string             true  "ID del lote"
// @Param        body     body    dto.AdjustRequest  true  "quantity y/o quality_flag (OK|HOLD)"
// @Success      200  {object}  dto.LotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [patch]
func (h *LotHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	input, err := inventory.AdjustFromRequest(actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	var lot *entity.Lot
	err = h.engine.Retry(c.UserContext(), func() error {
		var err error
		lot, err = h.engine.Adjust(c.UserContext(), input)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.Lot(lot))
}

// Deactivate godoc
// @Summary      Desactivar lote (borrado lógico)
// @Tags         lots
// @Produce      json
// @Param        X-Actor  header  string  true  "Nombre del empleado"
// @Param        id       path    string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [delete]
func (h *LotHandler) Deactivate(c *fiber.Ctx) error {
	var lot *entity.Lot
	err := h.engine.RetryTransient(c.UserContext(), func() error {
		var err error
		lot, err = h.engine.Deactivate(c.UserContext(), c.Params("id"), actor(c))
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.Lot(lot))
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	lot, err := h.engine.Lot(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.Lot(lot))
}

// ListByPart godoc
// @Summary      Listar lotes de una parte
// @Tags         parts
// @Produce      json
// @Param        code    path   string  true   "Código de parte"
// @Param        limit   query  int     false  "Máximo 100"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.LotListResponse
// @Router       /api/parts/{code}/lots [get]
func (h *LotHandler) ListByPart(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.Validation("paginación inválida"))
	}
	page.DefaultPage()
	list, err := h.engine.Lots(c.UserContext(), c.Params("code"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LotListResponse{
		Items: h.presenter.Lots(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Counters godoc
// @Summary      Contadores por estado de una parte
// @Tags         parts
// @Produce      json
// @Param        code  path  string  true  "Código de parte"
// @Success      200  {array}  dto.CounterResponse
// @Router       /api/parts/{code}/counters [get]
func (h *LotHandler) Counters(c *fiber.Ctx) error {
	list, err := h.engine.Counters(c.UserContext(), c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.Counters(list))
}

// Reconcile godoc
// @Summary      Conciliar contadores, lotes y ledger de una parte
// @Tags         parts
// @Produce      json
// @Param        code  path  string  true  "Código de parte"
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/parts/{code}/reconcile [get]
func (h *LotHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.engine.Reconcile(c.UserContext(), c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ReconcileResponse{
		PartCode:       report.PartCode,
		Consistent:     report.Consistent(),
		CounterTotal:   report.CounterTotal,
		ActiveLotTotal: report.ActiveLotTotal,
		States:         make([]dto.StateReconciliationResponse, 0, len(report.States)),
	}
	for _, s := range report.States {
		out.States = append(out.States, dto.StateReconciliationResponse{
			State:     s.State.String(),
			Counter:   s.Counter,
			Replayed:  s.Replayed,
			BrokenSeq: s.BrokenSeq,
		})
	}
	return c.JSON(out)
}

// Ledger godoc
// @Summary      Consultar asientos del ledger por parte y estado
// @Tags         ledger
// @Produce      json
// @Param        part_code  query  string  true   "Código de parte"
// @Param        state      query  string  true   "Estado (OFF_SYSTEM, M136, HOLD, M101, NEW, IN_TRANSIT, ARRIVED)"
// @Param        from       query  string  false  "Desde (RFC3339)"
// @Param        to         query  string  false  "Hasta (RFC3339)"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger [get]
func (h *LotHandler) Ledger(c *fiber.Ctx) error {
	state, err := entity.ParseState(c.Query("state"))
	if err != nil {
		return writeError(c, domain.Validation("state: %v", err))
	}
	q := inventory.LedgerQuery{PartCode: c.Query("part_code"), State: state}
	if q.From, err = parseTimeQuery(c, "from"); err != nil {
		return writeError(c, err)
	}
	if q.To, err = parseTimeQuery(c, "to"); err != nil {
		return writeError(c, err)
	}
	entries, err := h.engine.QueryLedger(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.presenter.LedgerEntries(entries))
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Validation("%s: fecha inválida, se espera RFC3339", key)
	}
	return &t, nil
}

func (h *LotHandler) bulkResponse(results []inventory.ItemResult) dto.BulkResponse {
	out := dto.BulkResponse{Total: len(results), Items: make([]dto.ItemResultResponse, 0, len(results))}
	for _, r := range results {
		item := dto.ItemResultResponse{Index: r.Index, LotID: r.LotID, OK: r.Err == nil}
		if r.Err != nil {
			_, body := errorBody(r.Err)
			item.Error = &body
			out.Failed++
		} else {
			lot := h.presenter.Lot(r.Lot)
			item.Lot = &lot
			out.Succeeded++
		}
		out.Items = append(out.Items, item)
	}
	return out
}
