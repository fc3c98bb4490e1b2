package ai

import (
	"context"
	"errors"
)

var errNoKnownIDs = errors.New("model returned no ids from the catalog")

var productIDsSchema = &Schema{
	Name: "product_ids",
	Type: TypeObject,
	Properties: map[string]*Schema{
		"productIds": {
			Type:        TypeArray,
			Description: "Catalog ids, best match first",
			Items:       &Schema{Type: TypeString},
		},
	},
	Required: []string{"productIds"},
	Ordering: []string{"productIds"},
}

type productIDsOutput struct {
	ProductIDs []string `json:"productIds" validate:"required"`
}

// HistoryItem is a product the shopper viewed
type HistoryItem struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

// RecommendationRequest asks for products to show next to a subject product.
// AvailableProducts must not contain the subject.
type RecommendationRequest struct {
	SubjectID         string           `json:"subjectId,omitempty"`
	BrowsingHistory   []HistoryItem    `json:"browsingHistory" validate:"dive"`
	Count             int              `json:"count" validate:"gte=0"`
	AvailableProducts []ProductSummary `json:"availableProducts" validate:"dive"`
}

// RecommendationResult lists catalog ids. ProductIDs is never nil.
type RecommendationResult struct {
	ProductIDs []string `json:"productIds"`
	Fallback   bool     `json:"fallback"`
}

type recommendationPrompt struct {
	Count    int
	Subject  *ProductSummary
	History  []HistoryItem
	Products []ProductSummary
}

// Recommend picks products for the shopper. Unusable model output or a failed call
// falls back to products of the subject's category followed by a shuffled remainder.
func (f *Flows) Recommend(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error) {
	ctx, span := f.start(ctx, FlowRecommendations)
	defer span.End()

	if err := validateInput(FlowRecommendations, req); err != nil {
		return nil, f.fail(ctx, FlowRecommendations, err)
	}

	count := req.Count
	if count == 0 {
		count = DefaultCount
	}
	if len(req.AvailableProducts) == 0 {
		return &RecommendationResult{ProductIDs: []string{}}, nil
	}

	subject := f.subject(ctx, req.SubjectID)
	data := recommendationPrompt{
		Count:    count,
		Subject:  subject,
		History:  req.BrowsingHistory,
		Products: req.AvailableProducts,
	}

	out, err := generateJSON[productIDsOutput](ctx, f, FlowRecommendations, TemplateRecommendations, data, productIDsSchema)
	if err == nil {
		ids := filterKnownIDs(out.ProductIDs, req.AvailableProducts)
		if len(ids) > 0 {
			return &RecommendationResult{ProductIDs: capIDs(ids, count)}, nil
		}
		err = errNoKnownIDs
	}

	f.fallback(ctx, FlowRecommendations, err)
	category := ""
	if subject != nil {
		category = subject.Category
	}
	return &RecommendationResult{
		ProductIDs: sameCategoryThenShuffled(req.AvailableProducts, req.SubjectID, category, count, f.shuffle),
		Fallback:   true,
	}, nil
}

// subject looks the subject product up in the catalog, nil when unknown
func (f *Flows) subject(ctx context.Context, id string) *ProductSummary {
	if id == "" || f.catalog == nil {
		return nil
	}

	p, err := f.catalog.ProductByID(ctx, id)
	if err != nil {
		f.logger.Warn().Err(err).Str("product_id", id).Msg("Failed to load subject product")
		return nil
	}
	if p == nil {
		return nil
	}
	return &ProductSummary{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
	}
}
