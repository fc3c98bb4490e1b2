package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"vitrine/internal/ai"
)

// Config holds the Gemini connection settings
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements ai.Model on top of the Gemini API
type Client struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

// NewClient creates a Gemini model client
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ai.ErrInvalidCredential)
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.0-flash"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "gemini-2.0-flash-preview-image-generation"
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client:     client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}, nil
}

// Generate sends the request to Gemini
func (c *Client) Generate(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	model := c.textModel
	if req.WantsImage() {
		model = c.imageModel
	}

	config := &genai.GenerateContentConfig{
		SafetySettings: safetySettings(req.Safety),
	}
	for _, m := range req.Modalities {
		config.ResponseModalities = append(config.ResponseModalities, string(m))
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = toSchema(req.Schema)
	}

	contents := []*genai.Content{{Role: "user", Parts: toParts(req.Prompt)}}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, classify(err)
	}

	return fromResponse(resp)
}

func toParts(p ai.Prompt) []*genai.Part {
	parts := make([]*genai.Part, 0, len(p.Parts))
	for _, part := range p.Parts {
		if part.Media != nil {
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{
				MIMEType: part.Media.MIMEType,
				Data:     part.Media.Data,
			}})
			continue
		}
		if part.Text != "" {
			parts = append(parts, &genai.Part{Text: part.Text})
		}
	}
	return parts
}

func fromResponse(resp *genai.GenerateContentResponse) (*ai.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("gemini: prompt blocked (%s): %w", resp.PromptFeedback.BlockReason, ai.ErrEmptyOutput)
		}
		return nil, fmt.Errorf("gemini: no candidates: %w", ai.ErrEmptyOutput)
	}

	candidate := resp.Candidates[0]
	out := &ai.Response{}
	if candidate.Content == nil {
		return out, nil
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			out.Media = append(out.Media, ai.Media{
				MIMEType: part.InlineData.MIMEType,
				Data:     part.InlineData.Data,
			})
		}
		sb.WriteString(part.Text)
	}
	out.Text = sb.String()
	return out, nil
}

func toSchema(s *ai.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:             schemaType(s.Type),
		Description:      s.Description,
		Required:         s.Required,
		PropertyOrdering: s.Ordering,
		MinItems:         s.MinItems,
		MaxItems:         s.MaxItems,
		Minimum:          s.Minimum,
		Items:            toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}

func schemaType(t ai.SchemaType) genai.Type {
	switch t {
	case ai.TypeObject:
		return genai.TypeObject
	case ai.TypeArray:
		return genai.TypeArray
	case ai.TypeNumber:
		return genai.TypeNumber
	case ai.TypeInteger:
		return genai.TypeInteger
	case ai.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func safetySettings(settings []ai.SafetySetting) []*genai.SafetySetting {
	out := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		out = append(out, &genai.SafetySetting{
			Category:  harmCategory(s.Category),
			Threshold: threshold(s.Threshold),
		})
	}
	return out
}

func harmCategory(c ai.HarmCategory) genai.HarmCategory {
	switch c {
	case ai.HarmHateSpeech:
		return genai.HarmCategoryHateSpeech
	case ai.HarmDangerousContent:
		return genai.HarmCategoryDangerousContent
	case ai.HarmHarassment:
		return genai.HarmCategoryHarassment
	default:
		return genai.HarmCategorySexuallyExplicit
	}
}

func threshold(t ai.BlockThreshold) genai.HarmBlockThreshold {
	switch t {
	case ai.BlockNone:
		return genai.HarmBlockThresholdBlockNone
	case ai.BlockOnlyHigh:
		return genai.HarmBlockThresholdBlockOnlyHigh
	case ai.BlockLowAndAbove:
		return genai.HarmBlockThresholdBlockLowAndAbove
	default:
		return genai.HarmBlockThresholdBlockMediumAndAbove
	}
}

// classify maps Gemini errors onto the ai error sentinels
func classify(err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return fmt.Errorf("gemini: %w: %v", ai.ErrUnavailable, err)
	}

	if isCredentialError(apiErr) {
		return fmt.Errorf("gemini: %w: %s", ai.ErrInvalidCredential, apiErr.Message)
	}
	return fmt.Errorf("gemini: %w: status %d: %s", ai.ErrUnavailable, apiErr.Code, apiErr.Message)
}

func isCredentialError(e genai.APIError) bool {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return true
	}
	if e.Code == http.StatusBadRequest {
		msg := e.Message + " " + e.Status
		return strings.Contains(msg, "API key not valid") || strings.Contains(msg, "API_KEY_INVALID")
	}
	return false
}
