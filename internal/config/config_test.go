package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
crawl:
  urls:
    - https://www.kleinanzeigen.de/s-fahrraeder/fahrrad/k0c217
  max_pages: 4
  min_views: 20
scraper:
  rate_limit: 250ms
site:
  exclusions:
    - xpath: "//span[@class='pro']"
io:
  output_format: csv
  output_file: out.csv
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Crawl.MaxPages != 4 || cfg.Crawl.MinViews != 20 {
		t.Errorf("crawl = %+v", cfg.Crawl)
	}
	if cfg.Crawl.MinPrice != 1 || cfg.Crawl.StartPage != 1 {
		t.Errorf("defaults lost: %+v", cfg.Crawl)
	}
	if cfg.Scraper.RateLimit != 250*time.Millisecond {
		t.Errorf("rate limit = %v", cfg.Scraper.RateLimit)
	}
	if cfg.Scraper.ImageWorkers != 5 || cfg.Scraper.ImageTimeout != 10*time.Second {
		t.Errorf("image defaults lost: %+v", cfg.Scraper)
	}
	if len(cfg.Site.Exclusions) != 1 || cfg.Site.Exclusions[0].XPath == "" {
		t.Errorf("exclusions = %+v", cfg.Site.Exclusions)
	}
	if cfg.Site.Selectors.Item != DefaultSelectors.Item {
		t.Errorf("selectors lost: %+v", cfg.Site.Selectors)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("crawl:\n  max_pages: two\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr bool
	}{
		{"valid", func(c *AppConfig) {}, false},
		{"no urls", func(c *AppConfig) { c.Crawl.URLs = nil }, true},
		{"relative url", func(c *AppConfig) { c.Crawl.URLs = []string{"/s-fahrraeder/k0"} }, true},
		{"start page zero", func(c *AppConfig) { c.Crawl.StartPage = 0 }, true},
		{"max below start", func(c *AppConfig) {
			c.Crawl.StartPage = 3
			c.Crawl.MaxPages = 2
		}, true},
		{"negative price", func(c *AppConfig) { c.Crawl.MinPrice = -1 }, true},
		{"no workers", func(c *AppConfig) { c.Scraper.ImageWorkers = 0 }, true},
		{"empty exclusion", func(c *AppConfig) { c.Site.Exclusions = []ExclusionRule{{}} }, true},
		{"both selectors", func(c *AppConfig) { c.Site.Exclusions = []ExclusionRule{{CSS: "a", XPath: "//a"}} }, true},
		{"bad format", func(c *AppConfig) { c.IO.OutputFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Crawl.URLs = []string{"https://www.kleinanzeigen.de/s-autos/c216"}
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseCrawlParams(t *testing.T) {
	params, err := ParseCrawlParams(" https://a.example/s-x/c1 ,, https://b.example/s-y/k0 ", "3", " 10", "5")
	if err != nil {
		t.Fatalf("ParseCrawlParams() error = %v", err)
	}
	if len(params.URLs) != 2 || params.URLs[1] != "https://b.example/s-y/k0" {
		t.Errorf("urls = %v", params.URLs)
	}
	if params.MaxPages != 3 || params.MinPrice != 10 || params.MinViews != 5 || params.StartPage != 1 {
		t.Errorf("params = %+v", params)
	}

	tests := []struct {
		name                       string
		urls, pages, price, views string
	}{
		{"no urls", " , ", "2", "1", "1"},
		{"pages not numeric", "https://a.example", "two", "1", "1"},
		{"price not numeric", "https://a.example", "2", "1.5", "1"},
		{"views empty", "https://a.example", "2", "1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCrawlParams(tt.urls, tt.pages, tt.price, tt.views)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
