// Package mora holds the arrears rules: when an installment is overdue, how overdue
// money rolls up by month, project and investment, how clients behave and which risk
// segment they fall in. Every function is pure; the reference time is always passed in.
package mora

import (
	"time"

	"lokl-mora-backend/internal/domain"
)

// GraceDay is the day of the month following the due date after which an unpaid
// installment is in arrears.
const GraceDay = 5

// GraceDate returns the 5th of the month after due's month, keeping due's clock and location.
// time.Date normalizes month 13 to January of the next year.
func GraceDate(due time.Time) time.Time {
	y, m, _ := due.Date()
	h, min, s := due.Clock()
	return time.Date(y, m+1, GraceDay, h, min, s, due.Nanosecond(), due.Location())
}

// IsOverdue reports whether inst is in arrears as of ref. A single approved transaction
// cures the installment regardless of when it was posted.
func IsOverdue(inst domain.Installment, ref time.Time) bool {
	if inst.IsPaid() {
		return false
	}
	return ref.After(GraceDate(inst.PaymentDate))
}

// IsOverdueInYear evaluates inst for a yearly analysis. inScope is false when the due date
// falls outside analysisYear; callers drop those installments. When analysisYear is before
// ref's year the books are closed and every unpaid installment of that year is overdue.
func IsOverdueInYear(inst domain.Installment, ref time.Time, analysisYear int) (overdue, inScope bool) {
	if inst.PaymentDate.Year() != analysisYear {
		return false, false
	}
	if inst.IsPaid() {
		return false, true
	}
	if analysisYear < ref.Year() {
		return true, true
	}
	return ref.After(GraceDate(inst.PaymentDate)), true
}

// InstallmentStatus is the per-row status shown in subscription tables.
type InstallmentStatus string

const (
	StatusPaid    InstallmentStatus = "paid"
	StatusOverdue InstallmentStatus = "overdue"
	StatusPending InstallmentStatus = "pending"
)

// StatusOf classifies inst as paid, overdue or pending at ref.
func StatusOf(inst domain.Installment, ref time.Time) InstallmentStatus {
	switch {
	case inst.IsPaid():
		return StatusPaid
	case IsOverdue(inst, ref):
		return StatusOverdue
	default:
		return StatusPending
	}
}

// DaysSince returns whole days elapsed from start to now, never negative.
func DaysSince(start, now time.Time) int {
	if !now.After(start) {
		return 0
	}
	return int(now.Sub(start) / (24 * time.Hour))
}
