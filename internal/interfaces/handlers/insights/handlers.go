package insights

import (
	inssvc "lokl-mora-backend/internal/application/insights"
	"lokl-mora-backend/internal/pkg/response"
	"lokl-mora-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *inssvc.Service
}

// GET /api/insights/customer-segmentation?startDate=&endDate=
func (h *Handlers) CustomerSegmentation(c *fiber.Ctx) error {
	loc := h.Service.Clock.Zone()
	from, err := validation.ParseDate(c.Query("startDate"), loc)
	if err != nil {
		return err
	}
	to, err := validation.ParseDate(c.Query("endDate"), loc)
	if err != nil {
		return err
	}
	out, err := h.Service.CustomerSegmentation(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return response.Success(c, "Segmentación de clientes", out, nil)
}

// GET /api/insights/payment-patterns
func (h *Handlers) PaymentPatterns(c *fiber.Ctx) error {
	out, err := h.Service.PaymentPatterns(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Patrones de pago", out, nil)
}
