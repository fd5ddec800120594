package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lokl-mora-backend/internal/pkg/apperrors"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

var defaultClient = &http.Client{Timeout: 15 * time.Second}

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// BrevoClient sends emails via Brevo (Sendinblue) API.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	FromName string
	Endpoint string       // defaults to the Brevo v3 SMTP endpoint
	Client   *http.Client // nil uses a shared client with a 15s timeout
}

func (c *BrevoClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return brevoAPI
}

func (c *BrevoClient) sender() BrevoSender {
	s := BrevoSender{Email: c.MailFrom, Name: c.FromName}
	if s.Email == "" {
		s.Email = "noreply@lokl.life"
	}
	if s.Name == "" {
		s.Name = "LOKL Inversiones"
	}
	return s
}

// send sends one email via Brevo API.
func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	body := BrevoSendRequest{
		Sender:      c.sender(),
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	client := c.Client
	if client == nil {
		client = defaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo send: %w: %v", apperrors.ErrExternalIO, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: %w: status %d", apperrors.ErrExternalIO, resp.StatusCode)
	}
	return nil
}

// SendReminder delivers the payment reminder to r.Email.
func (c *BrevoClient) SendReminder(ctx context.Context, r Reminder) (Receipt, error) {
	if err := c.send(ctx, r.Email, ReminderSubject, RenderReminder(r)); err != nil {
		return Receipt{}, err
	}
	return Receipt{}, nil
}
