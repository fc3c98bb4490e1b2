package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"vitrine/internal/ai"
	"vitrine/pkg/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// defaultReportWindow is used when an admin report request has no period
const defaultReportWindow = 30 * 24 * time.Hour

// SupplierSource lists the suppliers that can serve a category
type SupplierSource interface {
	ForCategory(ctx context.Context, category string) ([]models.Supplier, error)
}

// SalesSource aggregates sales per product over a period
type SalesSource interface {
	ProductPerformance(ctx context.Context, from, to time.Time) ([]models.ProductPerformance, error)
}

// ImageUploader stores a generated image and returns its public URL
type ImageUploader interface {
	UploadGeneratedImage(ctx context.Context, dataURI, folder string) (string, error)
}

// AIHandler exposes the storefront AI flows over HTTP
type AIHandler struct {
	flows     *ai.Flows
	gate      *ai.Gate
	catalog   ai.Catalog
	suppliers SupplierSource
	sales     SalesSource
	uploader  ImageUploader
	now       func() time.Time
}

// NewAIHandler creates a new AI handler. uploader may be nil.
func NewAIHandler(flows *ai.Flows, gate *ai.Gate, catalog ai.Catalog, suppliers SupplierSource, sales SalesSource, uploader ImageUploader) *AIHandler {
	return &AIHandler{
		flows:     flows,
		gate:      gate,
		catalog:   catalog,
		suppliers: suppliers,
		sales:     sales,
		uploader:  uploader,
		now:       time.Now,
	}
}

// Status reports whether AI features are enabled
func (h *AIHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"enabled": h.gate.Enabled(),
		"reason":  h.gate.Reason(),
	})
}

// Recommendations returns products to show next to a subject product
func (h *AIHandler) Recommendations(c echo.Context) error {
	var req ai.RecommendationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx := c.Request().Context()
	available, err := h.available(ctx, req.AvailableProducts, req.SubjectID)
	if err != nil {
		return h.internalError(c, "Failed to load catalog", err)
	}
	req.AvailableProducts = available

	result, err := h.flows.Recommend(ctx, req)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// VisualSearch returns catalog products similar to a photo
func (h *AIHandler) VisualSearch(c echo.Context) error {
	var req ai.VisualSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx := c.Request().Context()
	available, err := h.available(ctx, req.AvailableProducts, "")
	if err != nil {
		return h.internalError(c, "Failed to load catalog", err)
	}
	req.AvailableProducts = available

	result, err := h.flows.SimilarProducts(ctx, req)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// StyleAdvice answers a shopper's styling question
func (h *AIHandler) StyleAdvice(c echo.Context) error {
	var req ai.StyleAdviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx := c.Request().Context()
	available, err := h.available(ctx, req.AvailableProducts, "")
	if err != nil {
		return h.internalError(c, "Failed to load catalog", err)
	}
	req.AvailableProducts = available

	result, err := h.flows.StyleAdvice(ctx, req)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// AdminReportRequest selects the sales period to report on. Days sets the window
// ending at To when From is not given.
type AdminReportRequest struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
	Days int        `json:"days" validate:"omitempty,min=1,max=366"`
}

// AdminReport summarizes sales performance for the period, last 30 days by default
func (h *AIHandler) AdminReport(c echo.Context) error {
	var req AdminReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	to := h.now().UTC()
	if req.To != nil {
		to = req.To.UTC()
	}
	window := defaultReportWindow
	if req.Days > 0 {
		window = time.Duration(req.Days) * 24 * time.Hour
	}
	from := to.Add(-window)
	if req.From != nil {
		from = req.From.UTC()
	}
	if !from.Before(to) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "from must be before to"})
	}

	ctx := c.Request().Context()
	performance, err := h.sales.ProductPerformance(ctx, from, to)
	if err != nil {
		return h.internalError(c, "Failed to aggregate sales", err)
	}

	report, err := h.flows.AdminReport(ctx, ai.AdminReportRequest{
		Period:      from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		Performance: performance,
	})
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// ProductDescription writes a description and tags for a product
func (h *AIHandler) ProductDescription(c echo.Context) error {
	var req ai.DescriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	result, err := h.flows.ProductDescription(c.Request().Context(), req)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// SuggestPrice proposes a price. Catalog products of the same category are used as
// comparables when the request carries none.
func (h *AIHandler) SuggestPrice(c echo.Context) error {
	var req ai.PriceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx := c.Request().Context()
	if len(req.Comparables) == 0 && req.Category != "" {
		products, err := h.catalog.AllProducts(ctx)
		if err != nil {
			return h.internalError(c, "Failed to load catalog", err)
		}
		req.Comparables = comparables(products, req.Category)
	}

	result, err := h.flows.SuggestPrice(ctx, req)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// SuggestSupplier picks a supplier. Suppliers serving the category are used as
// candidates when the request carries none.
func (h *AIHandler) SuggestSupplier(c echo.Context) error {
	var req ai.SupplierRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx := c.Request().Context()
	if len(req.Suppliers) == 0 {
		suppliers, err := h.suppliers.ForCategory(ctx, req.Category)
		if err != nil {
			return h.internalError(c, "Failed to load suppliers", err)
		}
		req.Suppliers = candidates(suppliers)
	}

	result, err := h.flows.SuggestSupplier(ctx, req)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GraphicDesign generates a marketing image
func (h *AIHandler) GraphicDesign(c echo.Context) error {
	var req ai.GraphicDesignRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	result, err := h.flows.GraphicDesign(c.Request().Context(), req)
	if err != nil {
		return h.flowError(c, err)
	}
	h.upload(c.Request().Context(), result, "designs")
	return c.JSON(http.StatusOK, result)
}

// VirtualTryOn renders a garment on a person
func (h *AIHandler) VirtualTryOn(c echo.Context) error {
	var req ai.TryOnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	result, err := h.flows.VirtualTryOn(c.Request().Context(), req)
	if err != nil {
		return h.flowError(c, err)
	}
	h.upload(c.Request().Context(), result, "try-on")
	return c.JSON(http.StatusOK, result)
}

// upload stores the generated image when storage is configured. A failed upload
// still returns the inline image.
func (h *AIHandler) upload(ctx context.Context, result *ai.ImageGenerationResult, folder string) {
	if h.uploader == nil {
		return
	}
	url, err := h.uploader.UploadGeneratedImage(ctx, result.ImageData, folder)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("folder", folder).Msg("Failed to upload generated image")
		return
	}
	result.ImageURL = url
}

// available returns the catalog products offered to a flow. Candidates sent by the
// client only narrow the catalog; ids the store does not have are dropped.
func (h *AIHandler) available(ctx context.Context, requested []ai.ProductSummary, excludeID string) ([]ai.ProductSummary, error) {
	products, err := h.catalog.AllProducts(ctx)
	if err != nil {
		return nil, err
	}
	summaries := ai.Summarize(products, excludeID)
	if len(requested) == 0 {
		return summaries, nil
	}

	wanted := make(map[string]bool, len(requested))
	for _, p := range requested {
		wanted[p.ID] = true
	}
	out := make([]ai.ProductSummary, 0, len(requested))
	for _, p := range summaries {
		if wanted[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (h *AIHandler) flowError(c echo.Context, err error) error {
	var fe *ai.FlowError
	if !errors.As(err, &fe) {
		return h.internalError(c, "AI request failed", err)
	}
	return c.JSON(statusForKind(fe.Kind), map[string]interface{}{
		"error": fe.Message(),
		"kind":  fe.Kind,
	})
}

func (h *AIHandler) internalError(c echo.Context, message string, err error) error {
	log.Ctx(c.Request().Context()).Error().Err(err).Msg(message)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": message})
}

func statusForKind(kind ai.Kind) int {
	switch kind {
	case ai.KindInvalidInput:
		return http.StatusBadRequest
	case ai.KindNoResult:
		return http.StatusUnprocessableEntity
	case ai.KindInvalidOutput, ai.KindUnavailable:
		return http.StatusBadGateway
	case ai.KindCredential, ai.KindDisabled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func comparables(products []models.Product, category string) []ai.PricedProduct {
	out := []ai.PricedProduct{}
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, ai.PricedProduct{Name: p.Name, Category: p.Category, Price: p.Price})
		}
	}
	return out
}

func candidates(suppliers []models.Supplier) []ai.SupplierCandidate {
	out := make([]ai.SupplierCandidate, 0, len(suppliers))
	for i := range suppliers {
		s := &suppliers[i]
		out = append(out, ai.SupplierCandidate{
			ID:           s.ID.String(),
			Name:         s.Name,
			Categories:   s.CategoryList(),
			Location:     s.Location,
			LeadTimeDays: s.LeadTimeDays,
			Rating:       s.Rating,
		})
	}
	return out
}
