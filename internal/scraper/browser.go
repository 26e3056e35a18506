package scraper

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/williampepple1/classifieds-scraper/internal/config"
	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

// BrowserScraper renders documents in a headless browser
type BrowserScraper struct {
	Config *config.AppConfig
}

// NewBrowserScraper creates a new browser scraper
func NewBrowserScraper(config *config.AppConfig) *BrowserScraper {
	return &BrowserScraper{
		Config: config,
	}
}

// Fetch navigates to url and returns the rendered HTML
func (s *BrowserScraper) Fetch(ctx context.Context, url string) (*models.Page, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.Config.Scraper.Timeout+s.Config.Browser.WaitTime)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.Config.Browser.Headless),
		chromedp.UserAgent(s.Config.Scraper.UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(s.Config.Browser.WaitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, classify(url, err)
	}

	return &models.Page{
		URL:        url,
		Body:       []byte(html),
		Duration:   time.Since(start),
		JSRendered: true,
	}, nil
}
