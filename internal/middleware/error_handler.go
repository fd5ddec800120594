package middleware

import (
	"encoding/json"
	"errors"
	"time"

	healthsvc "lokl-mora-backend/internal/application/health"
	"lokl-mora-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrorHandler returns the global error handler. Server errors are logged and pushed to
// the Redis error log read by /health/errors.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return response.Error(c, fe.Message, fe.Code, nil)
		}

		code := response.StatusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("trace_id", GetTraceID(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("Request failed")
			recordError(c, rdb, err, code)
		}
		return response.FromError(c, err)
	}
}

func recordError(c *fiber.Ctx, rdb *redis.Client, err error, code int) {
	if rdb == nil {
		return
	}
	entry, _ := json.Marshal(map[string]interface{}{
		"time":       time.Now(),
		"path":       c.OriginalURL(),
		"method":     c.Method(),
		"message":    err.Error(),
		"statusCode": code,
	})
	ctx := c.UserContext()
	pipe := rdb.Pipeline()
	pipe.LPush(ctx, healthsvc.KeyErrorLog, entry)
	pipe.LTrim(ctx, healthsvc.KeyErrorLog, 0, healthsvc.ErrorLogSize-1)
	_, _ = pipe.Exec(ctx)
}
