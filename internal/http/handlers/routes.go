package handlers

import (
	"vitrine/internal/app"
	"vitrine/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	var uploader ImageUploader
	if services.StorageService != nil {
		uploader = services.StorageService
	}

	aiHandler := NewAIHandler(
		services.Flows,
		services.AIGate,
		services.ProductRepo,
		services.SupplierRepo,
		services.SalesRepo,
		uploader,
	)
	RegisterAIRoutes(api.Group("/ai"), aiHandler)
}

// RegisterAIRoutes mounts the AI endpoints. Shopper-facing flows stay reachable
// while the gate is off because they fall back to catalog-only answers.
func RegisterAIRoutes(g *echo.Group, h *AIHandler) {
	g.GET("/status", h.Status)

	// Shopper flows with deterministic fallbacks
	g.POST("/recommendations", h.Recommendations)
	g.POST("/visual-search", h.VisualSearch)
	g.POST("/style-advice", h.StyleAdvice)

	// Operator flows, rejected while AI is off
	gated := g.Group("", middleware.AIGate(h.gate))
	gated.POST("/admin/report", h.AdminReport)
	gated.POST("/products/description", h.ProductDescription)
	gated.POST("/products/price", h.SuggestPrice)
	gated.POST("/products/supplier", h.SuggestSupplier)
	gated.POST("/images/design", h.GraphicDesign)
	gated.POST("/images/try-on", h.VirtualTryOn)
}
