package middleware

import (
	"strings"

	"lokl-mora-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds the allowed origin suffix and the dev password.
type CORSConfig struct {
	AllowedSuffix string
	DevPassword   string
}

// CORS allows origins ending with AllowedSuffix, localhost origins outside production, and
// requests carrying the dev-password header. Without a suffix every origin is allowed.
func CORS(cfg CORSConfig, production bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" {
			return c.Next()
		}
		if !allowedOrigin(cfg, origin, production) && !(cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword) {
			return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
		}
		c.Set("Access-Control-Allow-Origin", origin)
		c.Set("Access-Control-Allow-Credentials", "true")
		c.Set("Access-Control-Allow-Headers", "Content-Type, dev-password")
		c.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Vary(fiber.HeaderOrigin)
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func allowedOrigin(cfg CORSConfig, origin string, production bool) bool {
	if cfg.AllowedSuffix == "" {
		return true
	}
	o := strings.ToLower(origin)
	if !production && (strings.HasPrefix(o, "http://localhost:") || strings.HasPrefix(o, "http://127.0.0.1:")) {
		return true
	}
	return strings.HasSuffix(o, strings.ToLower(cfg.AllowedSuffix))
}
