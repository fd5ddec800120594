package emails

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"lokl-mora-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// PreviewSender renders reminders to HTML files under Dir instead of delivering them.
// It is used when no mail provider key is configured.
type PreviewSender struct {
	Dir       string
	URLPrefix string // public prefix Dir is served under, e.g. /reports/previews
}

func (p *PreviewSender) SendReminder(ctx context.Context, r Reminder) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return Receipt{}, fmt.Errorf("create preview dir: %w: %v", apperrors.ErrExternalIO, err)
	}
	name := uuid.NewString() + ".html"
	if err := os.WriteFile(filepath.Join(p.Dir, name), []byte(RenderReminder(r)), 0o644); err != nil {
		return Receipt{}, fmt.Errorf("write preview: %w: %v", apperrors.ErrExternalIO, err)
	}
	return Receipt{PreviewURL: p.URLPrefix + "/" + name}, nil
}
