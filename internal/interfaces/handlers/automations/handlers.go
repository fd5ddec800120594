package automations

import (
	"encoding/json"
	"fmt"

	autosvc "lokl-mora-backend/internal/application/automations"
	"lokl-mora-backend/internal/application/reports"
	"lokl-mora-backend/internal/pkg/apperrors"
	"lokl-mora-backend/internal/pkg/response"
	"lokl-mora-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *autosvc.Service
}

// GET /api/automations/generate-report?format=excel
func (h *Handlers) GenerateReport(c *fiber.Ctx) error {
	format := c.Query("format", reports.FormatExcel)
	report, err := h.Service.GenerateReport(c.UserContext(), format, autosvc.SourceManual)
	if err != nil {
		return err
	}
	return response.Success(c, "Reporte generado exitosamente", report, nil)
}

// POST /api/automations/send-emails
func (h *Handlers) SendEmails(c *fiber.Ctx) error {
	out, err := h.Service.SendEmails(c.UserContext(), autosvc.SourceManual)
	if err != nil {
		return err
	}
	return response.Success(c, fmt.Sprintf("Se enviaron %d de %d correos", out.Count, out.Total), out, nil)
}

// POST /api/automations/update-overdue-table
func (h *Handlers) UpdateOverdueTable(c *fiber.Ctx) error {
	n, err := h.Service.UpdateOverdueTable(c.UserContext(), autosvc.SourceManual)
	if err != nil {
		return err
	}
	return response.Success(c, "Tabla de mora actualizada", fiber.Map{"count": n}, nil)
}

// GET /api/automations/execution-history?limit=
func (h *Handlers) ExecutionHistory(c *fiber.Ctx) error {
	limit, err := validation.ParseOptionalInt("limit", c.Query("limit"))
	if err != nil {
		return err
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	rows, err := h.Service.ExecutionHistory(c.UserContext(), n)
	if err != nil {
		return err
	}
	return response.Success(c, "Historial de ejecuciones", rows, fiber.Map{"total": len(rows)})
}

type frequencyBody struct {
	Frequency string `json:"frequency"`
}

// POST /api/automations/set-email-frequency {"frequency":"daily|weekly|monthly"}
func (h *Handlers) SetEmailFrequency(c *fiber.Ctx) error {
	var body frequencyBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return fmt.Errorf("%w: invalid request body", apperrors.ErrValidation)
	}
	stored, err := h.Service.SetEmailFrequency(c.UserContext(), body.Frequency)
	if err != nil {
		return err
	}
	return response.Success(c, "Frecuencia de correos actualizada", fiber.Map{"frequency": stored}, nil)
}

// GET /api/automations/users-in-mora
func (h *Handlers) UsersInMora(c *fiber.Ctx) error {
	rows, err := h.Service.UsersInMora(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Usuarios en mora", rows, fiber.Map{"total": len(rows)})
}
