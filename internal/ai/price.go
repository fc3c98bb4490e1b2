package ai

import (
	"context"
	"math"
)

var priceSuggestionSchema = &Schema{
	Name: "price_suggestion",
	Type: TypeObject,
	Properties: map[string]*Schema{
		"price":         {Type: TypeNumber, Minimum: float64Ptr(0)},
		"justification": {Type: TypeString},
	},
	Required: []string{"price", "justification"},
	Ordering: []string{"price", "justification"},
}

// PricedProduct is a comparable product with its current price
type PricedProduct struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// PriceRequest describes the product to price
type PriceRequest struct {
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Cost        float64         `json:"cost" validate:"gte=0"`
	Comparables []PricedProduct `json:"comparables"`
}

// PriceSuggestion is a suggested retail price, rounded to cents
type PriceSuggestion struct {
	Price         float64 `json:"price"`
	Justification string  `json:"justification"`
}

type priceOutput struct {
	Price         *float64 `json:"price" validate:"required,gte=0,lte=1000000000"`
	Justification string   `json:"justification" validate:"required"`
}

// SuggestPrice asks the model for a price. There is no fallback.
func (f *Flows) SuggestPrice(ctx context.Context, req PriceRequest) (*PriceSuggestion, error) {
	ctx, span := f.start(ctx, FlowPriceSuggestion)
	defer span.End()

	if err := validateInput(FlowPriceSuggestion, req); err != nil {
		return nil, f.fail(ctx, FlowPriceSuggestion, err)
	}
	if req.Comparables == nil {
		req.Comparables = []PricedProduct{}
	}

	out, err := generateJSON[priceOutput](ctx, f, FlowPriceSuggestion, TemplatePriceSuggestion, req, priceSuggestionSchema)
	if err != nil {
		return nil, f.fail(ctx, FlowPriceSuggestion, err)
	}

	return &PriceSuggestion{
		Price:         roundCents(*out.Price),
		Justification: out.Justification,
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
