package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lokl-mora-backend/internal/application/arrears"
	"lokl-mora-backend/internal/domain/mora"
	"lokl-mora-backend/internal/infrastructure/database"
	"lokl-mora-backend/internal/pkg/apperrors"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Reporte de Mora"
	PublicRoute = "/reports"
	FormatExcel = "excel"
	moneyFormat = `"$"#,##0.00`
	dateFormat  = "dd/mm/yyyy"
)

var headers = []string{"Email", "Proyecto", "Monto en Mora", "Fecha de Inicio", "Días en Mora", "Valor Inversión"}

var widths = []float64{30, 20, 15, 15, 12, 15}

type Service struct {
	Arrears *arrears.Service
	Dir     string
	Clock   clock.Clock
}

// Report describes a written spreadsheet.
type Report struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	URL      string `json:"url"`
	Rows     int    `json:"rows"`
}

// FileName is the report name for the day of now.
func FileName(now time.Time) string {
	return fmt.Sprintf("reporte_mora_%s.xlsx", now.Format("2006-01-02"))
}

// Generate refreshes the arrears snapshot and writes it as an Excel workbook into Dir.
// A report generated twice on the same day overwrites the earlier file.
func (s *Service) Generate(ctx context.Context) (*Report, error) {
	rows, err := s.Arrears.RefreshAndRead(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	f, err := Build(rows, now)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w: %v", apperrors.ErrExternalIO, err)
	}
	name := FileName(now)
	path := filepath.Join(s.Dir, name)
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("write report: %w: %v", apperrors.ErrExternalIO, err)
	}
	log.Info().Str("path", path).Int("rows", len(rows)).Msg("Arrears report generated")
	return &Report{FileName: name, FilePath: path, URL: PublicRoute + "/" + name, Rows: len(rows)}, nil
}

// Build lays out one row per arrears record under a bold header row.
func Build(rows []database.ArrearsRow, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := layout(f, rows, now); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func layout(f *excelize.File, rows []database.ArrearsRow, now time.Time) error {
	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return fmt.Errorf("set width of %s: %w", col, err)
		}
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		start := r.MoraStartDate
		values := []interface{}{
			r.Email,
			r.ProjectName,
			r.MoraAmount.InexactFloat64(),
			time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
			mora.DaysSince(r.MoraStartDate, now),
			r.InvestmentValue.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	moneyFmt, dateFmt := moneyFormat, dateFormat
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return err
	}
	date, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return err
	}
	last := len(rows) + 1
	for col, style := range map[string]int{"C": money, "D": date, "F": money} {
		if err := f.SetCellStyle(SheetName, col+"2", fmt.Sprintf("%s%d", col, last), style); err != nil {
			return fmt.Errorf("style column %s: %w", col, err)
		}
	}
	return nil
}
