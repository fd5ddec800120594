package subscriptions

import (
	subsvc "lokl-mora-backend/internal/application/subscriptions"
	"lokl-mora-backend/internal/pkg/response"
	"lokl-mora-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *subsvc.Service
}

// GET /api/subscriptions/active
func (h *Handlers) Active(c *fiber.Ctx) error {
	out, err := h.Service.Active(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Suscripciones activas", out, nil)
}

// GET /api/subscriptions?email=&status=&project=&overdueMin=&overdueMax=
func (h *Handlers) List(c *fiber.Ctx) error {
	min, err := validation.ParseOptionalAmount("overdueMin", c.Query("overdueMin"))
	if err != nil {
		return err
	}
	max, err := validation.ParseOptionalAmount("overdueMax", c.Query("overdueMax"))
	if err != nil {
		return err
	}
	f := subsvc.Filter{
		Email:      c.Query("email"),
		Status:     c.Query("status"),
		Project:    c.Query("project"),
		OverdueMin: min,
		OverdueMax: max,
	}
	if err := f.Validate(); err != nil {
		return err
	}
	rows, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return response.Success(c, "Suscripciones", rows, fiber.Map{"total": len(rows)})
}
