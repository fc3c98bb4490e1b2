package ai

import (
	"context"
	"strings"
)

// Modality is a kind of output the model is asked to produce
type Modality string

const (
	ModalityText  Modality = "TEXT"
	ModalityImage Modality = "IMAGE"
)

// HarmCategory identifies a content-safety category understood by the model providers
type HarmCategory string

const (
	HarmHateSpeech       HarmCategory = "hate_speech"
	HarmDangerousContent HarmCategory = "dangerous_content"
	HarmHarassment       HarmCategory = "harassment"
	HarmSexualContent    HarmCategory = "sexual_content"
)

// BlockThreshold is the probability level from which a category gets blocked
type BlockThreshold string

const (
	BlockNone           BlockThreshold = "block_none"
	BlockOnlyHigh       BlockThreshold = "block_only_high"
	BlockMediumAndAbove BlockThreshold = "block_medium_and_above"
	BlockLowAndAbove    BlockThreshold = "block_low_and_above"
)

// SafetySetting pairs a harm category with its threshold
type SafetySetting struct {
	Category  HarmCategory
	Threshold BlockThreshold
}

// DefaultSafety blocks medium and above for every category
func DefaultSafety() []SafetySetting {
	return []SafetySetting{
		{Category: HarmHateSpeech, Threshold: BlockMediumAndAbove},
		{Category: HarmDangerousContent, Threshold: BlockMediumAndAbove},
		{Category: HarmHarassment, Threshold: BlockMediumAndAbove},
		{Category: HarmSexualContent, Threshold: BlockMediumAndAbove},
	}
}

// Media is inline binary content (an image) sent to or received from the model
type Media struct {
	MIMEType string
	Data     []byte
}

// Part is one piece of prompt content: either text or inline media
type Part struct {
	Text  string
	Media *Media
}

// Prompt is the rendered content sent to the model
type Prompt struct {
	Parts []Part
}

// Text concatenates the text parts of the prompt
func (p Prompt) Text() string {
	var sb strings.Builder
	for _, part := range p.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// MediaCount returns how many inline media parts the prompt carries
func (p Prompt) MediaCount() int {
	n := 0
	for _, part := range p.Parts {
		if part.Media != nil {
			n++
		}
	}
	return n
}

// Request is a single generation call
type Request struct {
	Flow       string
	Prompt     Prompt
	Schema     *Schema // response shape hint, nil for free text or images
	Modalities []Modality
	Safety     []SafetySetting
}

// WantsImage reports whether the request asks for image output
func (r *Request) WantsImage() bool {
	for _, m := range r.Modalities {
		if m == ModalityImage {
			return true
		}
	}
	return false
}

// Response is the raw model output
type Response struct {
	Text  string
	Media []Media
}

// Model is the outbound port to a hosted generative model.
// Implementations must wrap ErrInvalidCredential and ErrUnavailable so callers can use errors.Is.
type Model interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// ModelFunc adapts a function to the Model interface
type ModelFunc func(ctx context.Context, req *Request) (*Response, error)

// Generate calls f
func (f ModelFunc) Generate(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Unconfigured returns a Model that fails every call, used when no credential is set
func Unconfigured() Model {
	return ModelFunc(func(ctx context.Context, req *Request) (*Response, error) {
		return nil, ErrDisabled
	})
}
