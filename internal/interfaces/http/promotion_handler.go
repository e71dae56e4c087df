package http

import "github.com/gofiber/fiber/v2"

// PromotionTrigger lo implementa *scheduler.PromotionScheduler.
type PromotionTrigger interface {
	Trigger()
}

// PromotionHandler permite a operaciones forzar la promoción por tiempo sin esperar al cron.
type PromotionHandler struct {
	trigger PromotionTrigger
}

// NewPromotionHandler construye el handler.
func NewPromotionHandler(trigger PromotionTrigger) *PromotionHandler {
	return &PromotionHandler{trigger: trigger}
}

// Run godoc
// @Summary      Ejecutar la promoción por tiempo ahora
// @Description  Usa el mismo job que el cron: si hay una ejecución en curso, esta se omite.
// @Tags         ops
// @Success      204
// @Router       /api/promotions/run [post]
func (h *PromotionHandler) Run(c *fiber.Ctx) error {
	h.trigger.Trigger()
	return c.SendStatus(fiber.StatusNoContent)
}
