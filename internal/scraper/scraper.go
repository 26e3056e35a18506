package scraper

import (
	"context"

	"github.com/williampepple1/classifieds-scraper/internal/config"
	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

// Scraper defines the interface for fetching a single URL
type Scraper interface {
	Fetch(ctx context.Context, url string) (*models.Page, error)
}

// New creates the document scraper based on the configuration.
// JSON endpoints and images always go through an HTTPScraper.
func New(config *config.AppConfig) Scraper {
	if config.Browser.Enabled {
		return NewBrowserScraper(config)
	}
	return NewHTTPScraper(config, config.Scraper.Timeout)
}
