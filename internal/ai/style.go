package ai

import "context"

// DefaultStyleAdvice is returned whenever the model cannot give advice
const DefaultStyleAdvice = "Classic pieces never fail: pair a neutral top with well-fitted jeans and add one accessory in a bold color. Browse our new arrivals for more ideas!"

var styleAdviceSchema = &Schema{
	Name: "style_advice",
	Type: TypeObject,
	Properties: map[string]*Schema{
		"advice": {Type: TypeString, Description: "Two or three short sentences for the shopper"},
	},
	Required: []string{"advice"},
	Ordering: []string{"advice"},
}

// StyleAdviceRequest is a shopper's styling question, optionally with a photo
type StyleAdviceRequest struct {
	Question          string           `json:"question" validate:"required,max=2000"`
	Photo             string           `json:"photo,omitempty"`
	AvailableProducts []ProductSummary `json:"availableProducts" validate:"dive"`
}

// StyleAdvice is the stylist's answer
type StyleAdvice struct {
	Advice   string `json:"advice"`
	Fallback bool   `json:"fallback"`
}

type styleAdviceOutput struct {
	Advice string `json:"advice" validate:"required"`
}

type styleAdvicePrompt struct {
	Question string
	Photo    string
	Products []ProductSummary
}

// StyleAdvice answers a styling question. Any model failure yields DefaultStyleAdvice.
func (f *Flows) StyleAdvice(ctx context.Context, req StyleAdviceRequest) (*StyleAdvice, error) {
	ctx, span := f.start(ctx, FlowStyleAdvice)
	defer span.End()

	if err := validateInput(FlowStyleAdvice, req); err != nil {
		return nil, f.fail(ctx, FlowStyleAdvice, err)
	}

	out, err := f.adviseStyle(ctx, req)
	if err == nil {
		return out, nil
	}

	f.fallback(ctx, FlowStyleAdvice, err)
	return &StyleAdvice{Advice: DefaultStyleAdvice, Fallback: true}, nil
}

func (f *Flows) adviseStyle(ctx context.Context, req StyleAdviceRequest) (*StyleAdvice, error) {
	data := styleAdvicePrompt{Question: req.Question, Products: req.AvailableProducts}
	if req.Photo != "" {
		photo, err := f.inlineImage(ctx, req.Photo)
		if err != nil {
			return nil, err
		}
		data.Photo = photo
	}
	out, err := generateJSON[styleAdviceOutput](ctx, f, FlowStyleAdvice, TemplateStyleAdvice, data, styleAdviceSchema)
	if err != nil {
		return nil, err
	}
	return &StyleAdvice{Advice: out.Advice}, nil
}
