package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *inventory.TransitionEngine
	Presenter dto.Presenter
	// Promotion opcional; sin él no se registra /api/promotions/run.
	Promotion PromotionTrigger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	h := NewLotHandler(deps.Engine, deps.Presenter)

	lots := api.Group("/lots")
	lots.Post("/", h.Intake)
	lots.Post("/bulk", h.BulkIntake)
	lots.Post("/move", h.Move)
	lots.Post("/move/bulk", h.BulkMove)
	lots.Get("/:id", h.GetByID)
	lots.Patch("/:id", h.Adjust)
	lots.Delete("/:id", h.Deactivate)

	parts := api.Group("/parts")
	parts.Get("/:code/lots", h.ListByPart)
	parts.Get("/:code/counters", h.Counters)
	parts.Get("/:code/reconcile", h.Reconcile)

	api.Get("/ledger", h.Ledger)

	if deps.Promotion != nil {
		api.Post("/promotions/run", NewPromotionHandler(deps.Promotion).Run)
	}
}
