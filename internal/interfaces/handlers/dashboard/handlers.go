package dashboard

import (
	dashsvc "lokl-mora-backend/internal/application/dashboard"
	"lokl-mora-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *dashsvc.Service
}

// GET /api/dashboard/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats, err := h.Service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Estadísticas del dashboard", stats, nil)
}
