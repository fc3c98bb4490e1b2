package ai

import "context"

// VisualSearchRequest looks for catalog products resembling a photo.
// AvailableProducts is the full catalog.
type VisualSearchRequest struct {
	Photo             string           `json:"photo" validate:"required"`
	Count             int              `json:"count" validate:"gte=0"`
	AvailableProducts []ProductSummary `json:"availableProducts" validate:"dive"`
}

type visualSearchPrompt struct {
	Count    int
	Photo    string
	Products []ProductSummary
}

// SimilarProducts returns the products that look like the photo. Unusable model output,
// a failed call or an unreadable photo fall back to the first Count catalog products.
func (f *Flows) SimilarProducts(ctx context.Context, req VisualSearchRequest) (*RecommendationResult, error) {
	ctx, span := f.start(ctx, FlowSimilarProducts)
	defer span.End()

	if err := validateInput(FlowSimilarProducts, req); err != nil {
		return nil, f.fail(ctx, FlowSimilarProducts, err)
	}

	count := req.Count
	if count == 0 {
		count = DefaultCount
	}
	if len(req.AvailableProducts) == 0 {
		return &RecommendationResult{ProductIDs: []string{}}, nil
	}

	ids, err := f.searchByPhoto(ctx, req, count)
	if err == nil {
		return &RecommendationResult{ProductIDs: ids}, nil
	}

	f.fallback(ctx, FlowSimilarProducts, err)
	return &RecommendationResult{
		ProductIDs: firstN(req.AvailableProducts, count),
		Fallback:   true,
	}, nil
}

func (f *Flows) searchByPhoto(ctx context.Context, req VisualSearchRequest, count int) ([]string, error) {
	photo, err := f.inlineImage(ctx, req.Photo)
	if err != nil {
		return nil, err
	}

	data := visualSearchPrompt{Count: count, Photo: photo, Products: req.AvailableProducts}
	out, err := generateJSON[productIDsOutput](ctx, f, FlowSimilarProducts, TemplateVisualSearch, data, productIDsSchema)
	if err != nil {
		return nil, err
	}

	ids := filterKnownIDs(out.ProductIDs, req.AvailableProducts)
	if len(ids) == 0 {
		return nil, errNoKnownIDs
	}
	return ids, nil
}
