package router

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	healthsvc "lokl-mora-backend/internal/application/health"
	"lokl-mora-backend/internal/application/settings"
	"lokl-mora-backend/internal/config"
	"lokl-mora-backend/internal/infrastructure/database/dbtest"
	"lokl-mora-backend/internal/pkg/apperrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:              "test",
		Location:         time.UTC,
		ReportsDir:       t.TempDir(),
		EmailSendTimeout: time.Second,
		CronReport:       "0 6 * * *",
		CronSnapshot:     "0 1 * * *",
		EmailFrequency:   "weekly",
		HealthAdminKey:   "secret",
	}
}

func setupApp(t *testing.T) (*App, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, rdb.Set(context.Background(), settings.KeyEmailFrequency, "monthly", 0).Err())

	db := dbtest.Open(t)
	dbtest.SeedPortfolio(t, db)
	app, err := NewApp(testConfig(t), db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return app, rdb
}

func TestCreateApp_RequiresDatabaseURL(t *testing.T) {
	_, err := CreateApp(testConfig(t))
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestNewApp_UsesStoredEmailFrequency(t *testing.T) {
	app, _ := setupApp(t)
	assert.Equal(t, "monthly", app.Scheduler.EmailFrequency())
}

func TestNewApp_Routes(t *testing.T) {
	app, rdb := setupApp(t)

	routes := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/dashboard/stats", 200},
		{"GET", "/api/analytics/expected-vs-actual?year=2024", 200},
		{"GET", "/api/analytics/monthly-overdue", 200},
		{"GET", "/api/analytics/overdue-by-project", 200},
		{"GET", "/api/analytics/monthly-overdue?year=3000", 400},
		{"GET", "/api/subscriptions/active", 200},
		{"GET", "/api/subscriptions?status=active", 200},
		{"GET", "/api/insights/customer-segmentation", 200},
		{"GET", "/api/insights/payment-patterns", 200},
		{"GET", "/api/automations/users-in-mora", 200},
		{"GET", "/api/automations/execution-history", 200},
		{"GET", "/health/json", 200},
		{"GET", "/health/errors", 200},
		{"GET", "/reset", 403},
		{"GET", "/api/unknown", 404},
	}
	for _, r := range routes {
		resp, err := app.Fiber.Test(httptest.NewRequest(r.method, r.path, nil))
		require.NoError(t, err)
		assert.Equal(t, r.status, resp.StatusCode, r.path)
	}

	// Health routes are not counted.
	assert.Equal(t, "12", rdb.Get(context.Background(), healthsvc.KeyReqTotal).Val())
}

func TestNewApp_ReportIsServed(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Fiber.Test(httptest.NewRequest("GET", "/api/automations/generate-report?format=excel", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var out struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Data.URL)

	resp, err = app.Fiber.Test(httptest.NewRequest("GET", out.Data.URL, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestNewApp_SetEmailFrequencyReschedules(t *testing.T) {
	app, rdb := setupApp(t)
	req := httptest.NewRequest("POST", "/api/automations/set-email-frequency", strings.NewReader(`{"frequency":"daily"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Fiber.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "daily", app.Scheduler.EmailFrequency())
	assert.Equal(t, "daily", rdb.Get(context.Background(), settings.KeyEmailFrequency).Val())
}
