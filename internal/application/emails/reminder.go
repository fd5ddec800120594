package emails

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReminderSubject is the subject line of every payment reminder.
const ReminderSubject = "Recordatorio de Pago Pendiente - LOKL"

// Reminder is the data one payment reminder is rendered from.
type Reminder struct {
	Email       string
	ProjectName string
	Amount      decimal.Decimal
	StartDate   time.Time
	DaysOverdue int
	SentAt      time.Time
}

// Receipt reports what a Sender did with a reminder. PreviewURL is set when the message was
// rendered to a file instead of delivered.
type Receipt struct {
	PreviewURL string
}

// Sender delivers payment reminders.
type Sender interface {
	SendReminder(ctx context.Context, r Reminder) (Receipt, error)
}

// FormatCOP renders an amount with Colombian separators: 1.234.567,5
func FormatCOP(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().Round(2).String()
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatDate renders t as d/m/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("2/1/2006")
}

// RenderReminder returns the full HTML body of r.
func RenderReminder(r Reminder) string {
	content := fmt.Sprintf(`
    <h2>Recordatorio de Pago Pendiente</h2>
    <p>Estimado/a inversionista:</p>
    <p>Le informamos que registramos un pago pendiente en su inversión en el proyecto <strong>%s</strong>.</p>
    <div class="panel">
      <p><strong>Monto pendiente:</strong> $%s</p>
      <p><strong>Fecha de inicio de mora:</strong> %s</p>
      <p><strong>Días en mora:</strong> %d</p>
    </div>
    <p>Por favor realice el pago lo antes posible para mantener al día su inversión.</p>
    <p>Saludos cordiales,<br>Equipo LOKL</p>
`, EscapeHTML(r.ProjectName), FormatCOP(r.Amount), FormatDate(r.StartDate), r.DaysOverdue)
	return EmailLayout(content, layoutYear(r.SentAt))
}
