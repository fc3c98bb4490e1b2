package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"vitrine/internal/ai"
	"vitrine/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingModel struct {
	mu       sync.Mutex
	text     string
	media    []ai.Media
	err      error
	requests []*ai.Request
}

func (m *recordingModel) Generate(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &ai.Response{Text: m.text, Media: m.media}, nil
}

func (m *recordingModel) promptText(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sb strings.Builder
	for _, p := range m.requests[i].Prompt.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

type fakeCatalog struct {
	products []models.Product
}

func (c *fakeCatalog) AllProducts(ctx context.Context) ([]models.Product, error) {
	return c.products, nil
}

func (c *fakeCatalog) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	for i := range c.products {
		if c.products[i].ID.String() == id {
			return &c.products[i], nil
		}
	}
	return nil, nil
}

type fakeSuppliers struct {
	suppliers []models.Supplier
	category  string
}

func (s *fakeSuppliers) ForCategory(ctx context.Context, category string) ([]models.Supplier, error) {
	s.category = category
	return s.suppliers, nil
}

type fakeSales struct {
	rows     []models.ProductPerformance
	from, to time.Time
}

func (s *fakeSales) ProductPerformance(ctx context.Context, from, to time.Time) ([]models.ProductPerformance, error) {
	s.from, s.to = from, to
	return s.rows, nil
}

type fakeUploader struct {
	err error
}

func (u *fakeUploader) UploadGeneratedImage(ctx context.Context, dataURI, folder string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	return "https://cdn.example.com/" + folder + "/image.png", nil
}

type testServer struct {
	echo      *echo.Echo
	model     *recordingModel
	gate      *ai.Gate
	catalog   *fakeCatalog
	suppliers *fakeSuppliers
	sales     *fakeSales
}

func newTestServer(t *testing.T, model *recordingModel, uploader ImageUploader) *testServer {
	t.Helper()

	catalog := &fakeCatalog{products: []models.Product{
		catalogProduct("Blue Jeans", "Apparel", 79.9),
		catalogProduct("Black Jeans", "Apparel", 84.9),
		catalogProduct("Leather Sneakers", "Footwear", 119),
		catalogProduct("Ceramic Mug", "Home", 18.5),
		catalogProduct("Linen Shirt", "Apparel", 59.9),
	}}
	gate := ai.NewGate(true)
	flows, err := ai.NewFlows(model, catalog,
		ai.WithGate(gate),
		ai.WithLogger(zerolog.Nop()),
		ai.WithShuffle(func(n int, swap func(i, j int)) {}),
	)
	require.NoError(t, err)

	e := echo.New()
	e.Validator = NewValidator()
	s := &testServer{
		echo:      e,
		model:     model,
		gate:      gate,
		catalog:   catalog,
		suppliers: &fakeSuppliers{},
		sales:     &fakeSales{},
	}
	h := NewAIHandler(flows, gate, catalog, s.suppliers, s.sales, uploader)
	h.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	RegisterAIRoutes(s.echo.Group("/api/v1/ai"), h)
	return s
}

func catalogProduct(name, category string, price float64) models.Product {
	return models.Product{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Name:      name,
		Category:  category,
		Price:     price,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, &recordingModel{}, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/ai/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["enabled"])

	s.gate.Disable("invalid credential")
	body := decodeBody(t, s.do(t, http.MethodGet, "/api/v1/ai/status", ""))
	assert.Equal(t, false, body["enabled"])
	assert.Equal(t, "invalid credential", body["reason"])
}

func TestRecommendations_UsesCatalog(t *testing.T) {
	model := &recordingModel{}
	s := newTestServer(t, model, nil)
	subject := s.catalog.products[0]
	model.text = `{"productIds":["` + s.catalog.products[1].ID.String() + `","unknown-id"]}`

	rec := s.do(t, http.MethodPost, "/api/v1/ai/recommendations", `{"subjectId":"`+subject.ID.String()+`","count":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result ai.RecommendationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []string{s.catalog.products[1].ID.String()}, result.ProductIDs)
	assert.False(t, result.Fallback)

	prompt := model.promptText(0)
	assert.Contains(t, prompt, "Linen Shirt")
	assert.NotContains(t, prompt, subject.ID.String())
}

func TestRecommendations_IgnoresIdsOutsideCatalog(t *testing.T) {
	model := &recordingModel{text: `{"productIds":["forged-id"]}`}
	s := newTestServer(t, model, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/ai/recommendations",
		`{"count":2,"availableProducts":[{"id":"forged-id","name":"Free Laptop","category":"Apparel"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result ai.RecommendationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotContains(t, result.ProductIDs, "forged-id")
	assert.Empty(t, result.ProductIDs)
	assert.Empty(t, model.requests)
}

func TestVisualSearch_ClientListOnlyNarrowsCatalog(t *testing.T) {
	model := &recordingModel{}
	s := newTestServer(t, model, nil)
	known := s.catalog.products[2].ID.String()
	model.text = `{"productIds":["forged-id","` + known + `"]}`
	photo := ai.EncodeDataURI("image/png", []byte("\x89PNG\r\n\x1a\nphoto"))

	rec := s.do(t, http.MethodPost, "/api/v1/ai/visual-search",
		`{"photo":"`+photo+`","availableProducts":[{"id":"forged-id","name":"Free Laptop"},{"id":"`+known+`","name":"renamed"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result ai.RecommendationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []string{known}, result.ProductIDs)

	prompt := model.promptText(0)
	assert.Contains(t, prompt, "Leather Sneakers")
	assert.NotContains(t, prompt, "Free Laptop")
}

func TestRecommendations_FallbackWhileDisabled(t *testing.T) {
	model := &recordingModel{}
	s := newTestServer(t, model, nil)
	s.gate.Disable("no AI credential configured")
	subject := s.catalog.products[0]

	rec := s.do(t, http.MethodPost, "/api/v1/ai/recommendations", `{"subjectId":"`+subject.ID.String()+`","count":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result ai.RecommendationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Fallback)
	assert.Equal(t, []string{s.catalog.products[1].ID.String(), s.catalog.products[4].ID.String()}, result.ProductIDs)
	assert.Empty(t, model.requests)
}

func TestVisualSearch_FallbackOnTimeout(t *testing.T) {
	s := newTestServer(t, &recordingModel{err: ai.ErrUnavailable}, nil)
	photo := ai.EncodeDataURI("image/png", []byte("\x89PNG\r\n\x1a\nphoto"))

	rec := s.do(t, http.MethodPost, "/api/v1/ai/visual-search", `{"photo":"`+photo+`","count":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result ai.RecommendationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Fallback)
	require.Len(t, result.ProductIDs, 3)
	assert.Equal(t, s.catalog.products[0].ID.String(), result.ProductIDs[0])
}

func TestStyleAdvice_DefaultOnFailure(t *testing.T) {
	s := newTestServer(t, &recordingModel{text: "not json"}, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/ai/style-advice", `{"question":"What goes with blue jeans?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, ai.DefaultStyleAdvice, body["advice"])
	assert.Equal(t, true, body["fallback"])
}

func TestAdminReport_DefaultPeriod(t *testing.T) {
	model := &recordingModel{text: `{
		"summary": "Denim leads the month.",
		"topPerforming": [
			{"productName": "Blue Jeans", "insight": "Best seller"},
			{"productName": "Black Jeans", "insight": "Strong repeat buys"},
			{"productName": "Linen Shirt", "insight": "Seasonal lift"}
		],
		"underperforming": [
			{"productName": "Ceramic Mug", "insight": "No sales"},
			{"productName": "Desk Lamp", "insight": "Low traffic"},
			{"productName": "Scented Candle", "insight": "Overstocked"}
		],
		"categoryPerformance": [{"category": "Apparel", "performance": "Up 12%"}],
		"suggestions": ["Bundle denim", "Discount mugs", "Feature lamps"]
	}`}
	s := newTestServer(t, model, nil)
	s.sales.rows = []models.ProductPerformance{{ProductID: uuid.New(), Name: "Blue Jeans", Category: "Apparel", UnitsSold: 12, Revenue: 958.8}}

	rec := s.do(t, http.MethodPost, "/api/v1/ai/admin/report", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report ai.AdminReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.TopPerforming, 3)
	assert.Len(t, report.Suggestions, 3)

	assert.Equal(t, time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC), s.sales.from)
	assert.Equal(t, time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC), s.sales.to)
	assert.Contains(t, model.promptText(0), "2026-09-15 to 2026-10-15")
}

func TestAdminReport_DaysWindow(t *testing.T) {
	s := newTestServer(t, &recordingModel{}, nil)

	// no sales in the window, so the flow rejects the request after the lookup
	rec := s.do(t, http.MethodPost, "/api/v1/ai/admin/report", `{"days":7}`)
	assert.Equal(t, "invalid_input", decodeBody(t, rec)["kind"])
	assert.Equal(t, time.Date(2026, 10, 8, 12, 0, 0, 0, time.UTC), s.sales.from)

	rec = s.do(t, http.MethodPost, "/api/v1/ai/admin/report", `{"days":400}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "Days")
}

func TestAdminReport_RejectsInvertedPeriod(t *testing.T) {
	s := newTestServer(t, &recordingModel{}, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/ai/admin/report", `{"from":"2026-10-01T00:00:00Z","to":"2026-09-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminReport_NoSalesIsInvalidInput(t *testing.T) {
	model := &recordingModel{}
	s := newTestServer(t, model, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/ai/admin/report", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeBody(t, rec)["kind"])
	assert.Empty(t, model.requests)
}

func TestSuggestPrice_UsesCategoryComparables(t *testing.T) {
	model := &recordingModel{text: `{"price": 129.987, "justification": "In line with premium denim."}`}
	s := newTestServer(t, model, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/ai/products/price", `{"name":"Selvedge Jeans","category":"apparel","cost":55}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, 129.99, body["price"])

	prompt := model.promptText(0)
	assert.Contains(t, prompt, "Black Jeans")
	assert.NotContains(t, prompt, "Ceramic Mug")
}

func TestSuggestSupplier_LoadsCandidates(t *testing.T) {
	model := &recordingModel{}
	s := newTestServer(t, model, nil)
	supplier := models.Supplier{BaseModel: models.BaseModel{ID: uuid.New()}, Name: "Indigo Mills", Categories: "Apparel", LeadTimeDays: 14, Rating: 4.7}
	s.suppliers.suppliers = []models.Supplier{supplier}
	model.text = `{"supplierId":"` + supplier.ID.String() + `","justification":"Fastest denim lead time."}`

	rec := s.do(t, http.MethodPost, "/api/v1/ai/products/supplier", `{"productName":"Selvedge Jeans","category":"Apparel"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Apparel", s.suppliers.category)
	assert.Equal(t, supplier.ID.String(), decodeBody(t, rec)["supplierId"])
}

func TestSuggestSupplier_NoCandidates(t *testing.T) {
	s := newTestServer(t, &recordingModel{}, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/ai/products/supplier", `{"productName":"Selvedge Jeans","category":"Garden"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductDescription_CredentialErrorDisablesGate(t *testing.T) {
	model := &recordingModel{err: ai.ErrInvalidCredential}
	s := newTestServer(t, model, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/ai/products/description", `{"name":"Blue Jeans"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "credential", body["kind"])
	assert.Contains(t, body["error"], "API key")
	assert.False(t, s.gate.Enabled())

	rec = s.do(t, http.MethodPost, "/api/v1/ai/products/description", `{"name":"Blue Jeans"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "disabled", decodeBody(t, rec)["kind"])
	assert.Len(t, model.requests, 1)
}

func TestProductDescription_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		model  *recordingModel
		body   string
		status int
		kind   string
	}{
		{"invalid input", &recordingModel{}, `{"name":""}`, http.StatusBadRequest, "invalid_input"},
		{"unavailable", &recordingModel{err: errors.New("dial tcp: timeout")}, `{"name":"Mug"}`, http.StatusBadGateway, "unavailable"},
		{"invalid output", &recordingModel{text: `{"tags":["a"]}`}, `{"name":"Mug"}`, http.StatusBadGateway, "invalid_output"},
		{"empty output", &recordingModel{text: " "}, `{"name":"Mug"}`, http.StatusUnprocessableEntity, "no_result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.model, nil)

			rec := s.do(t, http.MethodPost, "/api/v1/ai/products/description", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.kind, decodeBody(t, rec)["kind"])
		})
	}
}

func TestVirtualTryOn_UploadsImage(t *testing.T) {
	model := &recordingModel{media: []ai.Media{{MIMEType: "image/png", Data: []byte("png-bytes")}}}
	s := newTestServer(t, model, &fakeUploader{})
	person := ai.EncodeDataURI("image/jpeg", []byte("person"))
	garment := ai.EncodeDataURI("image/jpeg", []byte("garment"))

	rec := s.do(t, http.MethodPost, "/api/v1/ai/images/try-on", `{"person":"`+person+`","garment":"`+garment+`","garmentName":"Blue Jeans"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, ai.EncodeDataURI("image/png", []byte("png-bytes")), body["imageData"])
	assert.Equal(t, "https://cdn.example.com/try-on/image.png", body["imageUrl"])
}

func TestGraphicDesign_UploadFailureKeepsInlineImage(t *testing.T) {
	model := &recordingModel{media: []ai.Media{{MIMEType: "image/png", Data: []byte("png-bytes")}}}
	s := newTestServer(t, model, &fakeUploader{err: errors.New("bucket missing")})

	rec := s.do(t, http.MethodPost, "/api/v1/ai/images/design", `{"brief":"Summer sale banner"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["imageData"])
	_, hasURL := body["imageUrl"]
	assert.False(t, hasURL)
}

func TestGraphicDesign_NoImage(t *testing.T) {
	s := newTestServer(t, &recordingModel{text: "I cannot draw that"}, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/ai/images/design", `{"brief":"Summer sale banner"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "no_result", decodeBody(t, rec)["kind"])
}
