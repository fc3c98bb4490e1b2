package ai

import "context"

// GraphicDesignRequest is a brief for a marketing image
type GraphicDesignRequest struct {
	Brief     string `json:"brief" validate:"required,max=2000"`
	Style     string `json:"style,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// TryOnRequest pairs a shopper photo with a garment image
type TryOnRequest struct {
	Person      string `json:"person" validate:"required"`
	Garment     string `json:"garment" validate:"required"`
	GarmentName string `json:"garmentName"`
}

// ImageGenerationResult carries the generated image as a data URI. ImageURL is set
// by callers that store the image.
type ImageGenerationResult struct {
	ImageData string `json:"imageData"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// GraphicDesign generates a marketing image
func (f *Flows) GraphicDesign(ctx context.Context, req GraphicDesignRequest) (*ImageGenerationResult, error) {
	ctx, span := f.start(ctx, FlowGraphicDesign)
	defer span.End()

	if err := validateInput(FlowGraphicDesign, req); err != nil {
		return nil, f.fail(ctx, FlowGraphicDesign, err)
	}
	if req.Reference != "" {
		ref, err := f.inlineImage(ctx, req.Reference)
		if err != nil {
			return nil, f.fail(ctx, FlowGraphicDesign, invalidInput(FlowGraphicDesign, err))
		}
		req.Reference = ref
	}

	return f.generateImage(ctx, FlowGraphicDesign, TemplateGraphicDesign, req)
}

// VirtualTryOn renders the shopper wearing the garment
func (f *Flows) VirtualTryOn(ctx context.Context, req TryOnRequest) (*ImageGenerationResult, error) {
	ctx, span := f.start(ctx, FlowVirtualTryOn)
	defer span.End()

	if err := validateInput(FlowVirtualTryOn, req); err != nil {
		return nil, f.fail(ctx, FlowVirtualTryOn, err)
	}

	person, err := f.inlineImage(ctx, req.Person)
	if err != nil {
		return nil, f.fail(ctx, FlowVirtualTryOn, invalidInput(FlowVirtualTryOn, err))
	}
	garment, err := f.inlineImage(ctx, req.Garment)
	if err != nil {
		return nil, f.fail(ctx, FlowVirtualTryOn, invalidInput(FlowVirtualTryOn, err))
	}
	req.Person, req.Garment = person, garment

	return f.generateImage(ctx, FlowVirtualTryOn, TemplateVirtualTryOn, req)
}

func (f *Flows) generateImage(ctx context.Context, flow string, id TemplateID, data any) (*ImageGenerationResult, error) {
	resp, err := f.generate(ctx, flow, id, data, nil, ModalityText, ModalityImage)
	if err != nil {
		return nil, f.fail(ctx, flow, err)
	}

	if resp != nil {
		for _, m := range resp.Media {
			if len(m.Data) > 0 {
				return &ImageGenerationResult{ImageData: EncodeDataURI(m.MIMEType, m.Data)}, nil
			}
		}
	}
	return nil, f.fail(ctx, flow, ErrNoImage)
}
