package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vitrine/pkg/models"
)

// Flow names, used in logs, spans and errors
const (
	FlowSimilarProducts    = "similar_products"
	FlowRecommendations    = "recommendations"
	FlowStyleAdvice        = "style_advice"
	FlowAdminReport        = "admin_report"
	FlowProductDescription = "product_description"
	FlowPriceSuggestion    = "price_suggestion"
	FlowSupplierSuggestion = "supplier_suggestion"
	FlowGraphicDesign      = "graphic_design"
	FlowVirtualTryOn       = "virtual_try_on"
)

// DefaultCount is the number of products returned when a request does not ask for a count
const DefaultCount = 4

// Catalog is the read-only source of products the flows validate against
type Catalog interface {
	AllProducts(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)
}

// ProductSummary is the projection of a catalog product given to the model
type ProductSummary struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

// Summarize projects products, leaving out excludeID
func Summarize(products []models.Product, excludeID string) []ProductSummary {
	out := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		id := p.ID.String()
		if id == excludeID {
			continue
		}
		out = append(out, ProductSummary{
			ID:          id,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
		})
	}
	return out
}

// Flows orchestrates every AI capability of the storefront. It only holds immutable
// collaborators and is safe for concurrent use.
type Flows struct {
	model    Model
	gate     *Gate
	renderer *Renderer
	catalog  Catalog
	fetcher  *MediaFetcher
	logger   zerolog.Logger
	shuffle  ShuffleFunc
	safety   []SafetySetting
	tracer   trace.Tracer
}

// Option configures Flows
type Option func(*Flows)

// WithLogger sets the logger used for fallback diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Flows) { f.logger = logger }
}

// WithShuffle replaces the shuffle used by the recommendation fallback
func WithShuffle(shuffle ShuffleFunc) Option {
	return func(f *Flows) { f.shuffle = shuffle }
}

// WithRenderer replaces the embedded prompt catalog
func WithRenderer(r *Renderer) Option {
	return func(f *Flows) { f.renderer = r }
}

// WithMediaFetcher lets flows accept image URLs besides data URIs
func WithMediaFetcher(fetcher *MediaFetcher) Option {
	return func(f *Flows) { f.fetcher = fetcher }
}

// WithGate makes the flows skip the model while gate is off and turn it off
// when the provider rejects the credential
func WithGate(gate *Gate) Option {
	return func(f *Flows) { f.gate = gate }
}

// WithSafety overrides the default safety thresholds
func WithSafety(settings []SafetySetting) Option {
	return func(f *Flows) { f.safety = settings }
}

// NewFlows wires the flows around a model and the product catalog
func NewFlows(model Model, catalog Catalog, opts ...Option) (*Flows, error) {
	f := &Flows{
		model:   model,
		catalog: catalog,
		logger:  log.Logger,
		shuffle: rand.Shuffle,
		safety:  DefaultSafety(),
		tracer:  otel.Tracer("vitrine/ai"),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.model == nil {
		return nil, fmt.Errorf("ai flows need a model")
	}
	if f.renderer == nil {
		r, err := NewRenderer()
		if err != nil {
			return nil, err
		}
		f.renderer = r
	}
	return f, nil
}

func (f *Flows) start(ctx context.Context, flow string) (context.Context, trace.Span) {
	return f.tracer.Start(ctx, "ai."+flow, trace.WithAttributes(attribute.String("ai.flow", flow)))
}

// fallback records that a flow is substituting the deterministic result
func (f *Flows) fallback(ctx context.Context, flow string, reason error) {
	f.observe(reason)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Bool("ai.fallback", true),
		attribute.String("ai.fallback.reason", reason.Error()),
	)
	f.logger.Warn().
		Str("flow", flow).
		Str("reason", reason.Error()).
		Msg("AI output unusable, using fallback")
}

// fail records a propagated flow error on the span
func (f *Flows) fail(ctx context.Context, flow string, err error) error {
	f.observe(err)
	err = wrapFlow(flow, err)
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	f.logger.Error().Err(err).Str("flow", flow).Msg("AI flow failed")
	return err
}

// observe turns the gate off on a rejected credential
func (f *Flows) observe(err error) {
	if f.gate != nil && IsCredentialError(err) {
		f.gate.Disable(err.Error())
	}
}

func (f *Flows) generate(ctx context.Context, flow string, id TemplateID, data any, schema *Schema, modalities ...Modality) (*Response, error) {
	if f.gate != nil && !f.gate.Enabled() {
		return nil, ErrDisabled
	}
	prompt, err := f.renderer.Render(id, data, schema)
	if err != nil {
		return nil, invalidInput(flow, err)
	}
	if len(modalities) == 0 {
		modalities = []Modality{ModalityText}
	}

	req := &Request{
		Flow:       flow,
		Prompt:     prompt,
		Schema:     schema,
		Modalities: modalities,
		Safety:     f.safety,
	}
	return f.model.Generate(ctx, req)
}

// generateJSON renders, calls the model and decodes the answer through schema
func generateJSON[T any](ctx context.Context, f *Flows, flow string, id TemplateID, data any, schema *Schema) (*T, error) {
	resp, err := f.generate(ctx, flow, id, data, schema)
	if err != nil {
		return nil, err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, ErrEmptyOutput
	}
	return Decode[T](schema, resp.Text)
}

// validateInput checks the validate tags of a flow request
func validateInput(flow string, req any) error {
	if err := validate.Struct(req); err != nil {
		return invalidInput(flow, errors.New(strings.Join(violations(err), "; ")))
	}
	return nil
}

// inlineImage turns an image reference (data URI or URL) into a data URI
func (f *Flows) inlineImage(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, "data:") {
		if _, err := ParseDataURI(ref); err != nil {
			return "", err
		}
		return ref, nil
	}
	if f.fetcher == nil {
		return "", fmt.Errorf("image must be a data URI")
	}
	return f.fetcher.FetchDataURI(ctx, ref)
}
