package middleware

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	healthsvc "lokl-mora-backend/internal/application/health"
	"lokl-mora-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthMarker counts requests and response times in Redis. Health, reset and static
// report paths are not counted.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || skipStats(c.Path()) {
			return c.Next()
		}

		start := time.Now()
		ctx := c.UserContext()
		b, _ := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		pipe := rdb.Pipeline()
		pipe.Set(ctx, healthsvc.KeyLastReq, b, 0)
		pipe.Incr(ctx, healthsvc.KeyReqTotal)
		_, _ = pipe.Exec(ctx)

		err := c.Next()

		status := statusOf(c, err)
		pipe = rdb.Pipeline()
		pipe.Incr(ctx, healthsvc.KeyResCount)
		pipe.IncrByFloat(ctx, healthsvc.KeyResTime, float64(time.Since(start).Milliseconds()))
		if status >= fiber.StatusInternalServerError {
			pipe.Incr(ctx, healthsvc.KeyReqErrors)
		}
		_, _ = pipe.Exec(ctx)
		return err
	}
}

// statusOf is the status the error handler will send for err.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return response.StatusFor(err)
}

func skipStats(path string) bool {
	return path == "/" || path == "/reset" ||
		strings.HasPrefix(path, "/health") ||
		strings.HasPrefix(path, "/favicon") ||
		strings.HasPrefix(path, "/reports/")
}
