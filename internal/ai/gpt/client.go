package gpt

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"vitrine/internal/ai"
)

// Config holds the OpenAI connection settings
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements ai.Model on top of the OpenAI API. OpenAI applies its own
// moderation, so per-request safety thresholds are not forwarded.
type Client struct {
	client     *openai.Client
	textModel  string
	imageModel string
}

// NewClient creates an OpenAI model client
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ai.ErrInvalidCredential)
	}
	if cfg.TextModel == "" {
		cfg.TextModel = openai.GPT4o
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = openai.CreateImageModelDallE3
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	return &Client{
		client:     openai.NewClientWithConfig(config),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}, nil
}

// Generate sends the request to OpenAI
func (c *Client) Generate(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	if req.WantsImage() {
		return c.generateImage(ctx, req)
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessage{
			toMessage(req.Prompt),
		},
		Temperature: 0.4,
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices: %w", ai.ErrEmptyOutput)
	}

	return &ai.Response{Text: resp.Choices[0].Message.Content}, nil
}

func toMessage(p ai.Prompt) openai.ChatCompletionMessage {
	if p.MediaCount() == 0 {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: p.Text(),
		}
	}

	parts := make([]openai.ChatMessagePart, 0, len(p.Parts))
	for _, part := range p.Parts {
		if part.Media != nil {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    ai.EncodeDataURI(part.Media.MIMEType, part.Media.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			})
			continue
		}
		if part.Text != "" {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: part.Text,
			})
		}
	}
	return openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	}
}

// generateImage uses the image endpoint, which only takes a text prompt
func (c *Client) generateImage(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	if req.Prompt.MediaCount() > 0 {
		return nil, fmt.Errorf("openai: image generation from input images: %w", ai.ErrUnsupported)
	}

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         strings.TrimSpace(req.Prompt.Text()),
		Model:          c.imageModel,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, classify(err)
	}

	out := &ai.Response{}
	for _, img := range resp.Data {
		if img.B64JSON == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("openai: failed to decode image: %w", err)
		}
		out.Media = append(out.Media, ai.Media{MIMEType: "image/png", Data: data})
	}
	return out, nil
}

// classify maps OpenAI errors onto the ai error sentinels
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.Code == "invalid_api_key" {
			return fmt.Errorf("openai: %w: %s", ai.ErrInvalidCredential, apiErr.Message)
		}
		return fmt.Errorf("openai: %w: status %d: %s", ai.ErrUnavailable, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusUnauthorized {
		return fmt.Errorf("openai: %w: %v", ai.ErrInvalidCredential, reqErr.Err)
	}

	return fmt.Errorf("openai: %w: %v", ai.ErrUnavailable, err)
}
