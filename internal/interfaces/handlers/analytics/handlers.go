package analytics

import (
	anasvc "lokl-mora-backend/internal/application/analytics"
	"lokl-mora-backend/internal/pkg/response"
	"lokl-mora-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *anasvc.Service
}

func (h *Handlers) year(c *fiber.Ctx) (int, error) {
	return validation.ParseYear(c.Query("year"), h.Service.CurrentYear())
}

// GET /api/analytics/expected-vs-actual?year=
func (h *Handlers) ExpectedVsActual(c *fiber.Ctx) error {
	year, err := h.year(c)
	if err != nil {
		return err
	}
	data, err := h.Service.ExpectedVsActual(c.UserContext(), year)
	if err != nil {
		return err
	}
	return response.Success(c, "Ingresos esperados vs reales", data, fiber.Map{"year": year})
}

// GET /api/analytics/monthly-overdue?year=
func (h *Handlers) MonthlyOverdue(c *fiber.Ctx) error {
	year, err := h.year(c)
	if err != nil {
		return err
	}
	data, err := h.Service.MonthlyOverdue(c.UserContext(), year)
	if err != nil {
		return err
	}
	return response.Success(c, "Mora mensual", data, fiber.Map{"year": year})
}

// GET /api/analytics/overdue-by-project?year=
// Without a year every installment is considered.
func (h *Handlers) OverdueByProject(c *fiber.Ctx) error {
	var year *int
	if c.Query("year") != "" {
		y, err := h.year(c)
		if err != nil {
			return err
		}
		year = &y
	}
	data, err := h.Service.OverdueByProject(c.UserContext(), year)
	if err != nil {
		return err
	}
	meta := fiber.Map{}
	if year != nil {
		meta["year"] = *year
	}
	return response.Success(c, "Mora por proyecto", data, meta)
}
