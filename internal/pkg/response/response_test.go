package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"lokl-mora-backend/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 400, StatusFor(fmt.Errorf("%w: bad year", apperrors.ErrValidation)))
	assert.Equal(t, 404, StatusFor(apperrors.ErrNotFound))
	assert.Equal(t, 502, StatusFor(fmt.Errorf("send: %w", apperrors.ErrExternalIO)))
	assert.Equal(t, 500, StatusFor(apperrors.ErrComputation))
}

func TestFromError_HidesInternalMessages(t *testing.T) {
	app := fiber.New()
	app.Get("/bad", func(c *fiber.Ctx) error {
		return FromError(c, fmt.Errorf("%w: year 1990 out of range", apperrors.ErrValidation))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return FromError(c, fmt.Errorf("query: %w", apperrors.ErrComputation))
	})
	app.Get("/config", func(c *fiber.Ctx) error {
		return FromError(c, fmt.Errorf("%w: TIMEZONE", apperrors.ErrConfiguration))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/bad", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	var out ErrorBody
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "error", out.Status)
	assert.Contains(t, out.Error.Message, "out of range")

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, MessageInternal, out.Error.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/config", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, MessageConfiguration, out.Error.Message)
}
