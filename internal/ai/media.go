package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMediaMaxBytes caps the size of a fetched image
const DefaultMediaMaxBytes int64 = 10 << 20

// ErrMediaTooLarge is returned when a fetched image exceeds the configured limit
var ErrMediaTooLarge = errors.New("media exceeds size limit")

// EncodeDataURI encodes data as data:<mime>;base64,<payload>
func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI decodes a base64 data URI
func ParseDataURI(uri string) (*Media, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI: missing payload")
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, fmt.Errorf("malformed data URI: only base64 payloads are supported")
	}
	if mimeType == "" {
		return nil, fmt.Errorf("malformed data URI: missing MIME type")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data URI: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("malformed data URI: empty payload")
	}
	return &Media{MIMEType: mimeType, Data: data}, nil
}

// MediaFetcher converts image URLs into inline data URIs for prompts
type MediaFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewMediaFetcher creates a fetcher. A nil client gets a 30s timeout client.
func NewMediaFetcher(client *http.Client, maxBytes int64) *MediaFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMediaMaxBytes
	}
	return &MediaFetcher{client: client, maxBytes: maxBytes}
}

// FetchDataURI downloads rawURL and returns it as data:<mime>;base64,<data>.
// Values that already are data URIs are validated and returned unchanged.
func (f *MediaFetcher) FetchDataURI(ctx context.Context, rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, "data:") {
		if _, err := ParseDataURI(rawURL); err != nil {
			return "", err
		}
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid image URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return "", ErrMediaTooLarge
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image at %q is empty", rawURL)
	}

	return EncodeDataURI(detectMIME(data, resp.Header.Get("Content-Type")), data), nil
}

func detectMIME(data []byte, header string) string {
	detected := mimetype.Detect(data)
	if !detected.Is("application/octet-stream") {
		return baseMIME(detected.String())
	}
	if header != "" {
		return baseMIME(header)
	}
	return "application/octet-stream"
}

func baseMIME(m string) string {
	base, _, _ := strings.Cut(m, ";")
	return strings.TrimSpace(base)
}
