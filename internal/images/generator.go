package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrGeneratorDisabled is returned when no generation endpoint is
// configured; the resolver treats it as a silent tier skip.
var ErrGeneratorDisabled = errors.New("image generator disabled")

// Generator produces a brand-new image for a listing via an external
// service. This is the expensive tier of the fallback chain.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest describes the listing the service should illustrate.
type GenerateRequest struct {
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Specialties []string `json:"specialties,omitempty"`
}

type generateResponse struct {
	URL string `json:"url"`
}

// HTTPGenerator calls a JSON-over-HTTP image-generation endpoint.
type HTTPGenerator struct {
	endpoint string
	client   *http.Client
}

// NewHTTPGenerator builds a generator for the given endpoint. An empty
// endpoint yields a generator that always reports ErrGeneratorDisabled.
func NewHTTPGenerator(endpoint string, timeout time.Duration) *HTTPGenerator {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPGenerator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Generate posts the request and returns the generated image URL.
func (g *HTTPGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if g.endpoint == "" {
		return "", ErrGeneratorDisabled
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call image generator: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response fully decoded below
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image generator returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode generator response: %w", err)
	}
	if decoded.URL == "" {
		return "", errors.New("image generator returned empty url")
	}
	return decoded.URL, nil
}
