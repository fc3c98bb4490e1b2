package ai

import "context"

var productDescriptionSchema = &Schema{
	Name: "product_description",
	Type: TypeObject,
	Properties: map[string]*Schema{
		"description": {Type: TypeString, Description: "Two short paragraphs"},
		"tags":        {Type: TypeArray, Items: &Schema{Type: TypeString}, MaxItems: int64Ptr(8)},
	},
	Required: []string{"description"},
	Ordering: []string{"description", "tags"},
}

// DescriptionRequest describes the product to write copy for
type DescriptionRequest struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
	Image    string   `json:"image,omitempty"`
}

// ProductDescription is generated marketing copy
type ProductDescription struct {
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags"`
}

// ProductDescription writes a product description. There is no fallback; a rejected
// credential comes back as a *FlowError of KindCredential.
func (f *Flows) ProductDescription(ctx context.Context, req DescriptionRequest) (*ProductDescription, error) {
	ctx, span := f.start(ctx, FlowProductDescription)
	defer span.End()

	if err := validateInput(FlowProductDescription, req); err != nil {
		return nil, f.fail(ctx, FlowProductDescription, err)
	}

	if req.Image != "" {
		image, err := f.inlineImage(ctx, req.Image)
		if err != nil {
			return nil, f.fail(ctx, FlowProductDescription, invalidInput(FlowProductDescription, err))
		}
		req.Image = image
	}

	out, err := generateJSON[ProductDescription](ctx, f, FlowProductDescription, TemplateProductDescription, req, productDescriptionSchema)
	if err != nil {
		return nil, f.fail(ctx, FlowProductDescription, err)
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out, nil
}
