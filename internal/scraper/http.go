package scraper

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/williampepple1/classifieds-scraper/internal/config"
	"github.com/williampepple1/classifieds-scraper/internal/proxy"
	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

// HTTPScraper implements HTTP-based fetching
type HTTPScraper struct {
	UserAgent string
	Proxy     *proxy.Manager
	client    *http.Client
}

// NewHTTPScraper creates a new HTTP scraper with the given per-request timeout
func NewHTTPScraper(config *config.AppConfig, timeout time.Duration) *HTTPScraper {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	manager := proxy.NewManager(&config.Proxies)
	manager.ApplyToTransport(transport)

	return &HTTPScraper{
		UserAgent: config.Scraper.UserAgent,
		Proxy:     manager,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Fetch issues a single GET. Non-2xx responses are returned as FetchError; there are no retries.
func (s *HTTPScraper) Fetch(ctx context.Context, url string) (*models.Page, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Type: ErrorTypeInvalidResponse, URL: url, Cause: err}
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classify(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Type: ErrorTypeStatus, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(url, err)
	}

	return &models.Page{
		URL:        url,
		Body:       body,
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
		ProxyUsed:  s.Proxy.LastUsed(),
	}, nil
}
