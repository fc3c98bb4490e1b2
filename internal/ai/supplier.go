package ai

import (
	"context"
	"fmt"
)

var supplierSuggestionSchema = &Schema{
	Name: "supplier_suggestion",
	Type: TypeObject,
	Properties: map[string]*Schema{
		"supplierId":    {Type: TypeString, Description: "One of the listed supplier ids"},
		"justification": {Type: TypeString},
	},
	Required: []string{"supplierId", "justification"},
	Ordering: []string{"supplierId", "justification"},
}

// SupplierCandidate is a supplier the model may choose
type SupplierCandidate struct {
	ID           string   `json:"id" validate:"required"`
	Name         string   `json:"name"`
	Categories   []string `json:"categories"`
	Location     string   `json:"location,omitempty"`
	LeadTimeDays int      `json:"leadTimeDays"`
	Rating       float64  `json:"rating"`
}

// SupplierRequest asks which supplier should provide a product
type SupplierRequest struct {
	ProductName string              `json:"productName" validate:"required"`
	Category    string              `json:"category"`
	Suppliers   []SupplierCandidate `json:"suppliers" validate:"required,min=1,dive"`
}

// SupplierSuggestion names one of the candidate suppliers
type SupplierSuggestion struct {
	SupplierID    string `json:"supplierId" validate:"required"`
	Justification string `json:"justification" validate:"required"`
}

// SuggestSupplier picks a supplier. There is no fallback; an id outside the candidate
// list is reported as invalid output.
func (f *Flows) SuggestSupplier(ctx context.Context, req SupplierRequest) (*SupplierSuggestion, error) {
	ctx, span := f.start(ctx, FlowSupplierSuggestion)
	defer span.End()

	if err := validateInput(FlowSupplierSuggestion, req); err != nil {
		return nil, f.fail(ctx, FlowSupplierSuggestion, err)
	}

	out, err := generateJSON[SupplierSuggestion](ctx, f, FlowSupplierSuggestion, TemplateSupplierSuggestion, req, supplierSuggestionSchema)
	if err != nil {
		return nil, f.fail(ctx, FlowSupplierSuggestion, err)
	}

	for _, s := range req.Suppliers {
		if s.ID == out.SupplierID {
			return out, nil
		}
	}
	return nil, f.fail(ctx, FlowSupplierSuggestion, &SchemaError{
		Schema:     supplierSuggestionSchema.Name,
		Violations: []string{fmt.Sprintf("supplierId: %q is not one of the candidates", out.SupplierID)},
	})
}
