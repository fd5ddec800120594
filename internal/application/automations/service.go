package automations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lokl-mora-backend/internal/application/arrears"
	"lokl-mora-backend/internal/application/emails"
	"lokl-mora-backend/internal/application/reports"
	"lokl-mora-backend/internal/application/settings"
	"lokl-mora-backend/internal/domain"
	"lokl-mora-backend/internal/infrastructure/database"
	"lokl-mora-backend/internal/pkg/apperrors"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	SourceManual    = "manual"
	SourceScheduled = "scheduled"

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// FrequencyScheduler applies a new reminder cadence to the running scheduler.
type FrequencyScheduler interface {
	SetEmailFrequency(freq string) error
}

type Service struct {
	Repo        *database.Repository
	Arrears     *arrears.Service
	Reports     *reports.Service
	Sender      emails.Sender
	Settings    *settings.Store
	Scheduler   FrequencyScheduler
	Clock       clock.Clock
	SendTimeout time.Duration
}

// EmailResult summarizes one reminder dispatch.
type EmailResult struct {
	Count        int      `json:"count"`
	Total        int      `json:"total"`
	PreviewLinks []string `json:"previewLinks"`
}

func (s *Service) record(ctx context.Context, typ, source string, runErr error, message string, details interface{}) {
	e := &domain.AutomationExecution{
		Type:      typ,
		Status:    domain.ExecutionSuccess,
		Message:   message,
		Source:    source,
		CreatedAt: s.Clock.Now(),
	}
	if runErr != nil {
		e.Status = domain.ExecutionError
		e.Message = runErr.Error()
	}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			e.Details = datatypes.JSON(b)
		}
	}
	// Audit writes must survive a cancelled request.
	if err := s.Repo.AppendExecution(context.WithoutCancel(ctx), e); err != nil {
		log.Error().Err(err).Str("type", typ).Msg("Failed to record automation execution")
	}
}

// GenerateReport writes today's arrears workbook. Only the excel format exists.
func (s *Service) GenerateReport(ctx context.Context, format, source string) (*reports.Report, error) {
	if format != "" && format != reports.FormatExcel {
		return nil, fmt.Errorf("%w: Formato no soportado. Use excel.", apperrors.ErrValidation)
	}
	rep, err := s.Reports.Generate(ctx)
	if err != nil {
		s.record(ctx, domain.ExecutionReport, source, err, "", nil)
		return nil, err
	}
	s.record(ctx, domain.ExecutionReport, source, nil, "Reporte generado exitosamente", rep)
	return rep, nil
}

// SendEmails refreshes the snapshot and sends one reminder per row. A failed send is logged
// and skipped; each send gets its own timeout.
func (s *Service) SendEmails(ctx context.Context, source string) (*EmailResult, error) {
	rows, err := s.Arrears.RefreshAndRead(ctx)
	if err != nil {
		s.record(ctx, domain.ExecutionEmail, source, err, "", nil)
		return nil, err
	}
	now := s.Clock.Now()
	res := &EmailResult{Total: len(rows), PreviewLinks: []string{}}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			break
		}
		rec, err := s.sendOne(ctx, emails.Reminder{
			Email:       row.Email,
			ProjectName: row.ProjectName,
			Amount:      row.MoraAmount,
			StartDate:   row.MoraStartDate,
			DaysOverdue: row.DaysInArrears,
			SentAt:      now,
		})
		if err != nil {
			log.Warn().Err(err).Str("email", row.Email).Msg("Payment reminder not sent")
			continue
		}
		res.Count++
		if rec.PreviewURL != "" {
			res.PreviewLinks = append(res.PreviewLinks, rec.PreviewURL)
		}
	}
	log.Info().Int("sent", res.Count).Int("total", res.Total).Msg("Payment reminders dispatched")
	s.record(ctx, domain.ExecutionEmail, source, nil, fmt.Sprintf("%d emails enviados exitosamente", res.Count), res)
	return res, nil
}

func (s *Service) sendOne(ctx context.Context, r emails.Reminder) (emails.Receipt, error) {
	timeout := s.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Sender.SendReminder(ctx, r)
}

// UpdateOverdueTable rebuilds the snapshot and returns its row count.
func (s *Service) UpdateOverdueTable(ctx context.Context, source string) (int, error) {
	n, err := s.Arrears.Refresh(ctx)
	if err != nil {
		s.record(ctx, domain.ExecutionTableRefresh, source, err, "", nil)
		return 0, err
	}
	s.record(ctx, domain.ExecutionTableRefresh, source, nil, fmt.Sprintf("Tabla actualizada con %d usuarios en mora", n), map[string]int{"rows": n})
	return n, nil
}

// ExecutionHistory returns the newest audit entries. limit <= 0 selects the default page.
func (s *Service) ExecutionHistory(ctx context.Context, limit int) ([]domain.AutomationExecution, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.Repo.ListExecutions(ctx, limit)
}

// SetEmailFrequency stores the cadence and reschedules the reminder job.
func (s *Service) SetEmailFrequency(ctx context.Context, freq string) (string, error) {
	stored, err := s.Settings.SetEmailFrequency(ctx, freq)
	if err != nil {
		return "", err
	}
	if s.Scheduler != nil {
		if err := s.Scheduler.SetEmailFrequency(stored); err != nil {
			return "", err
		}
	}
	return stored, nil
}

// UsersInMora returns the current snapshot without refreshing it.
func (s *Service) UsersInMora(ctx context.Context) ([]database.ArrearsRow, error) {
	return s.Arrears.Snapshot(ctx)
}

// ReportJob, SnapshotJob and EmailJob adapt the automations to scheduler jobs.
func (s *Service) ReportJob(ctx context.Context) error {
	_, err := s.GenerateReport(ctx, reports.FormatExcel, SourceScheduled)
	return err
}

func (s *Service) SnapshotJob(ctx context.Context) error {
	_, err := s.UpdateOverdueTable(ctx, SourceScheduled)
	return err
}

func (s *Service) EmailJob(ctx context.Context) error {
	_, err := s.SendEmails(ctx, SourceScheduled)
	return err
}
