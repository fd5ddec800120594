package database

import (
	"context"
	"fmt"
	"time"

	"lokl-mora-backend/internal/domain"
	"lokl-mora-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository runs every query the analytics read; it never mutates source tables.
type Repository struct {
	DB *gorm.DB
	// Location is the business zone loaded timestamps are converted to. Nil keeps the driver's zone.
	Location *time.Location
}

// DueWindow restricts preloaded installments to due dates in [From, To). Zero bounds are open.
type DueWindow struct {
	From time.Time
	To   time.Time
}

func inScope(db *gorm.DB) *gorm.DB {
	return db.Where("type = ? AND status <> ?", domain.InvestmentTypeSubscription, domain.InvestmentStatusDeclined)
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrExternalIO, err)
}

// Subscriptions loads in-scope investments with their project, installments in plan order and
// approved transactions only.
func (r *Repository) Subscriptions(ctx context.Context, w DueWindow) ([]domain.Investment, error) {
	return r.subscriptions(ctx, w)
}

// LiveProjectSubscriptions is Subscriptions restricted to investments whose project still exists
// and is not soft-deleted.
func (r *Repository) LiveProjectSubscriptions(ctx context.Context, w DueWindow) ([]domain.Investment, error) {
	return r.subscriptions(ctx, w, r.liveProject)
}

func (r *Repository) liveProject(db *gorm.DB) *gorm.DB {
	return db.Where("project_id IN (?)", r.DB.Model(&domain.Project{}).Select("id"))
}

func (r *Repository) subscriptions(ctx context.Context, w DueWindow, scopes ...func(*gorm.DB) *gorm.DB) ([]domain.Investment, error) {
	var out []domain.Investment
	err := r.DB.WithContext(ctx).
		Scopes(inScope).
		Scopes(scopes...).
		Preload("Project").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			if !w.From.IsZero() {
				db = db.Where("payment_date >= ?", w.From)
			}
			if !w.To.IsZero() {
				db = db.Where("payment_date < ?", w.To)
			}
			return db.Order("installment_number ASC")
		}).
		Preload("Installments.Transactions", "status = ?", domain.TransactionApproved).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, wrap("load subscriptions", err)
	}
	r.localize(out)
	return out, nil
}

// localize moves every loaded timestamp into the business zone so calendar math sees local dates.
func (r *Repository) localize(invs []domain.Investment) {
	if r.Location == nil {
		return
	}
	for i := range invs {
		inv := &invs[i]
		inv.CreatedAt = inv.CreatedAt.In(r.Location)
		for j := range inv.Installments {
			inst := &inv.Installments[j]
			inst.PaymentDate = inst.PaymentDate.In(r.Location)
			for k := range inst.Transactions {
				inst.Transactions[k].CreatedAt = inst.Transactions[k].CreatedAt.In(r.Location)
			}
		}
	}
}

// SubscriptionsBefore loads in-scope investments as they stood at cutoff: installments due
// before it and approved transactions created before it.
func (r *Repository) SubscriptionsBefore(ctx context.Context, cutoff time.Time) ([]domain.Investment, error) {
	var out []domain.Investment
	err := r.DB.WithContext(ctx).
		Scopes(inScope).
		Preload("Installments", "payment_date < ?", cutoff).
		Preload("Installments.Transactions", "status = ? AND created_at < ?", domain.TransactionApproved, cutoff).
		Find(&out).Error
	if err != nil {
		return nil, wrap("load subscriptions before cutoff", err)
	}
	r.localize(out)
	return out, nil
}

// ApprovedIncome sums value minus fee of approved transactions created in [from, to).
// Zero bounds are open.
func (r *Repository) ApprovedIncome(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	q := r.DB.WithContext(ctx).Model(&domain.Transaction{}).Where("status = ?", domain.TransactionApproved)
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	var txs []domain.Transaction
	if err := q.Select("value", "payment_method_fee").Find(&txs).Error; err != nil {
		return decimal.Zero, wrap("sum approved income", err)
	}
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Net())
	}
	return total, nil
}

// CountSubscriptions counts in-scope investments created in [from, to). Zero bounds are open.
func (r *Repository) CountSubscriptions(ctx context.Context, from, to time.Time) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&domain.Investment{}).Scopes(inScope)
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, wrap("count subscriptions", err)
	}
	return n, nil
}

// ReplaceArrears swaps the whole users-in-arrears table for rows inside one transaction.
func (r *Repository) ReplaceArrears(ctx context.Context, rows []domain.ArrearsRecord) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.ArrearsRecord{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return wrap("replace arrears snapshot", err)
	}
	return nil
}

// ArrearsRow is a snapshot row joined with its project name and investment value.
type ArrearsRow struct {
	ID              uuid.UUID       `json:"id"`
	Email           string          `json:"email"`
	ProjectID       uuid.UUID       `json:"projectId"`
	ProjectName     string          `json:"projectName"`
	InvestmentID    uuid.UUID       `json:"investmentId"`
	InvestmentValue decimal.Decimal `json:"investmentValue"`
	MoraAmount      decimal.Decimal `json:"moraAmount"`
	MoraStartDate   time.Time       `json:"moraStartDate"`
	DaysInArrears   int             `json:"daysInArrears"`
}

// ListArrears returns the current snapshot, oldest arrears first.
func (r *Repository) ListArrears(ctx context.Context) ([]ArrearsRow, error) {
	var records []domain.ArrearsRecord
	if err := r.DB.WithContext(ctx).Order("mora_start_date ASC, email ASC").Find(&records).Error; err != nil {
		return nil, wrap("list arrears", err)
	}
	if len(records) == 0 {
		return []ArrearsRow{}, nil
	}

	projIDs := make([]uuid.UUID, 0, len(records))
	invIDs := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		projIDs = append(projIDs, rec.ProjectID)
		invIDs = append(invIDs, rec.InvestmentID)
	}
	var projects []domain.Project
	if err := r.DB.WithContext(ctx).Where("id IN ?", projIDs).Find(&projects).Error; err != nil {
		return nil, wrap("load arrears projects", err)
	}
	var investments []domain.Investment
	if err := r.DB.WithContext(ctx).Where("id IN ?", invIDs).Select("id", "investment_value").Find(&investments).Error; err != nil {
		return nil, wrap("load arrears investments", err)
	}
	projMap := make(map[uuid.UUID]*domain.Project, len(projects))
	for i := range projects {
		projMap[projects[i].ID] = &projects[i]
	}
	invMap := make(map[uuid.UUID]decimal.Decimal, len(investments))
	for _, inv := range investments {
		invMap[inv.ID] = inv.InvestmentValue
	}

	out := make([]ArrearsRow, 0, len(records))
	for _, rec := range records {
		if r.Location != nil {
			rec.MoraStartDate = rec.MoraStartDate.In(r.Location)
		}
		out = append(out, ArrearsRow{
			ID:              rec.ID,
			Email:           rec.Email,
			ProjectID:       rec.ProjectID,
			ProjectName:     projMap[rec.ProjectID].DisplayName(),
			InvestmentID:    rec.InvestmentID,
			InvestmentValue: invMap[rec.InvestmentID],
			MoraAmount:      rec.MoraAmount,
			MoraStartDate:   rec.MoraStartDate,
		})
	}
	return out, nil
}

// AppendExecution adds one automation audit entry.
func (r *Repository) AppendExecution(ctx context.Context, e *domain.AutomationExecution) error {
	if err := r.DB.WithContext(ctx).Create(e).Error; err != nil {
		return wrap("append execution", err)
	}
	return nil
}

// ListExecutions returns the newest audit entries first, at most limit of them.
func (r *Repository) ListExecutions(ctx context.Context, limit int) ([]domain.AutomationExecution, error) {
	var out []domain.AutomationExecution
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, wrap("list executions", err)
	}
	return out, nil
}
