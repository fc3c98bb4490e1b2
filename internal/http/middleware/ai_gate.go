package middleware

import (
	"net/http"

	"vitrine/internal/ai"

	"github.com/labstack/echo/v4"
)

// AIGate rejects AI requests with 503 once the gate is off
func AIGate(gate *ai.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !gate.Enabled() {
				return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
					"error":  (&ai.FlowError{Kind: ai.KindDisabled}).Message(),
					"kind":   ai.KindDisabled,
					"reason": gate.Reason(),
				})
			}
			return next(c)
		}
	}
}
