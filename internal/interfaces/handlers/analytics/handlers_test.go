package analytics

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	anasvc "lokl-mora-backend/internal/application/analytics"
	"lokl-mora-backend/internal/domain/mora"
	"lokl-mora-backend/internal/infrastructure/database/dbtest"
	"lokl-mora-backend/internal/middleware"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAnalyticsTest(t *testing.T) *fiber.App {
	db := dbtest.Open(t)
	dbtest.SeedPortfolio(t, db)
	h := &Handlers{Service: &anasvc.Service{Repo: dbtest.Repository(db), Clock: clock.Fixed(dbtest.Now)}}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(nil)})
	app.Get("/expected-vs-actual", h.ExpectedVsActual)
	app.Get("/monthly-overdue", h.MonthlyOverdue)
	app.Get("/overdue-by-project", h.OverdueByProject)
	return app
}

type envelope[T any] struct {
	Status   string                 `json:"status"`
	Data     T                      `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
	Error    struct {
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

func get[T any](t *testing.T, app *fiber.App, url string) (int, envelope[T]) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	require.NoError(t, err)
	var out envelope[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestExpectedVsActual_DefaultsToCurrentYear(t *testing.T) {
	app := setupAnalyticsTest(t)
	code, out := get[[]mora.MonthlyFinancials](t, app, "/expected-vs-actual")
	assert.Equal(t, 200, code)
	require.Len(t, out.Data, 12)
	assert.Equal(t, "Ene", out.Data[0].Name)
	assert.Equal(t, 780.0, out.Data[0].Actual)
	assert.Equal(t, float64(2024), out.Metadata["year"])
}

func TestMonthlyOverdue(t *testing.T) {
	app := setupAnalyticsTest(t)
	code, out := get[[]mora.MonthlyOverdue](t, app, "/monthly-overdue?year=2024")
	assert.Equal(t, 200, code)
	require.Len(t, out.Data, 12)
	assert.Equal(t, 1300.0, out.Data[11].Accumulated)
}

func TestYearValidation(t *testing.T) {
	app := setupAnalyticsTest(t)
	for _, url := range []string{
		"/expected-vs-actual?year=abc",
		"/monthly-overdue?year=1999",
		"/overdue-by-project?year=2101",
	} {
		code, out := get[any](t, app, url)
		assert.Equal(t, 400, code, url)
		assert.Equal(t, "error", out.Status, url)
		assert.Equal(t, 400, out.Error.StatusCode, url)
	}
}

func TestOverdueByProject(t *testing.T) {
	app := setupAnalyticsTest(t)
	code, out := get[[]mora.ProjectOverdue](t, app, "/overdue-by-project")
	assert.Equal(t, 200, code)
	require.Len(t, out.Data, 2)
	assert.Equal(t, "Casa Verde", out.Data[0].Name)
	assert.Equal(t, int64(77), out.Data[0].Percentage)
	assert.NotContains(t, out.Metadata, "year")

	code, out = get[[]mora.ProjectOverdue](t, app, "/overdue-by-project?year=2023")
	assert.Equal(t, 200, code)
	assert.Empty(t, out.Data)
}
