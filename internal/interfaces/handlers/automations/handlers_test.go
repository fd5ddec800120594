package automations

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lokl-mora-backend/internal/application/arrears"
	autosvc "lokl-mora-backend/internal/application/automations"
	"lokl-mora-backend/internal/application/emails"
	"lokl-mora-backend/internal/application/reports"
	"lokl-mora-backend/internal/application/settings"
	"lokl-mora-backend/internal/infrastructure/database/dbtest"
	"lokl-mora-backend/internal/middleware"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	Status   string                 `json:"status"`
	Message  string                 `json:"message"`
	Data     json.RawMessage        `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
}

func setupAutomationsTest(t *testing.T) (*fiber.App, string) {
	db := dbtest.Open(t)
	dbtest.SeedPortfolio(t, db)
	dir := t.TempDir()
	c := clock.Fixed(dbtest.Now)
	repo := dbtest.Repository(db)
	arr := &arrears.Service{Repo: repo, Clock: c}
	h := &Handlers{Service: &autosvc.Service{
		Repo:        repo,
		Arrears:     arr,
		Reports:     &reports.Service{Arrears: arr, Dir: dir, Clock: c},
		Sender:      &emails.PreviewSender{Dir: filepath.Join(dir, "previews"), URLPrefix: "/reports/previews"},
		Settings:    &settings.Store{Default: "weekly"},
		Clock:       c,
		SendTimeout: time.Second,
	}}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(nil)})
	app.Get("/generate-report", h.GenerateReport)
	app.Post("/send-emails", h.SendEmails)
	app.Post("/update-overdue-table", h.UpdateOverdueTable)
	app.Get("/execution-history", h.ExecutionHistory)
	app.Post("/set-email-frequency", h.SetEmailFrequency)
	app.Get("/users-in-mora", h.UsersInMora)
	return app, dir
}

func do(t *testing.T, app *fiber.App, method, url string, body []byte) (int, result) {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestGenerateReport(t *testing.T) {
	app, dir := setupAutomationsTest(t)

	code, _ := do(t, app, "GET", "/generate-report?format=pdf", nil)
	assert.Equal(t, 400, code)

	code, out := do(t, app, "GET", "/generate-report", nil)
	require.Equal(t, 200, code)
	var rep reports.Report
	require.NoError(t, json.Unmarshal(out.Data, &rep))
	assert.Equal(t, "reporte_mora_2024-06-10.xlsx", rep.FileName)
	assert.Equal(t, "/reports/reporte_mora_2024-06-10.xlsx", rep.URL)
	assert.Equal(t, 2, rep.Rows)
	_, err := os.Stat(filepath.Join(dir, rep.FileName))
	assert.NoError(t, err)
}

func TestSendEmails_WritesPreviews(t *testing.T) {
	app, dir := setupAutomationsTest(t)
	code, out := do(t, app, "POST", "/send-emails", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, "Se enviaron 2 de 2 correos", out.Message)

	var res autosvc.EmailResult
	require.NoError(t, json.Unmarshal(out.Data, &res))
	assert.Len(t, res.PreviewLinks, 2)
	files, err := os.ReadDir(filepath.Join(dir, "previews"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestUpdateOverdueTableThenHistory(t *testing.T) {
	app, _ := setupAutomationsTest(t)

	code, out := do(t, app, "POST", "/update-overdue-table", nil)
	require.Equal(t, 200, code)
	assert.JSONEq(t, `{"count":2}`, string(out.Data))

	code, out = do(t, app, "GET", "/users-in-mora", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, float64(2), out.Metadata["total"])

	code, out = do(t, app, "GET", "/execution-history?limit=1", nil)
	require.Equal(t, 200, code)
	var hist []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Data, &hist))
	require.Len(t, hist, 1)
	assert.Equal(t, "manual", hist[0]["source"])

	code, _ = do(t, app, "GET", "/execution-history?limit=x", nil)
	assert.Equal(t, 400, code)
}

func TestSetEmailFrequency(t *testing.T) {
	app, _ := setupAutomationsTest(t)

	code, out := do(t, app, "POST", "/set-email-frequency", []byte(`{"frequency":"Daily"}`))
	require.Equal(t, 200, code)
	assert.JSONEq(t, `{"frequency":"daily"}`, string(out.Data))

	code, _ = do(t, app, "POST", "/set-email-frequency", []byte(`{"frequency":"hourly"}`))
	assert.Equal(t, 400, code)

	code, _ = do(t, app, "POST", "/set-email-frequency", []byte(`not json`))
	assert.Equal(t, 400, code)
}
