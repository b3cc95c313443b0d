package images

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Prober checks whether an image URL serves a real asset. Implementations
// must honor ctx and return promptly; the fallback chain provides the
// redundancy, so there is exactly one bounded attempt per URL.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// HTTPProber validates URLs with a lightweight HEAD request.
type HTTPProber struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// NewHTTPProber builds a prober with the given per-probe timeout.
func NewHTTPProber(timeout time.Duration, userAgent string) *HTTPProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProber{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return nil // follow redirects, image hosts use them for CDN routing
			},
		},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Probe issues a HEAD request and reports nil for 2xx responses. Hosts
// that reject HEAD (405) get a single ranged GET instead.
func (p *HTTPProber) Probe(ctx context.Context, url string) error {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status, err := p.do(probeCtx, http.MethodHead, url)
	if err != nil {
		return err
	}
	if status == http.StatusMethodNotAllowed {
		status, err = p.do(probeCtx, http.MethodGet, url)
		if err != nil {
			return err
		}
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("probe %s: unexpected status %d", url, status)
	}
	return nil
}

func (p *HTTPProber) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build probe request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // probe body is discarded
	if resp.StatusCode == http.StatusPartialContent {
		return http.StatusOK, nil
	}
	return resp.StatusCode, nil
}
