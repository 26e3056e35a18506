package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// AppConfig holds the complete application configuration
type AppConfig struct {
	Crawl    CrawlConfig    `yaml:"crawl"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Site     SiteConfig     `yaml:"site"`
	IO       IOConfig       `yaml:"io"`
	Proxies  ProxyConfig    `yaml:"proxies"`
	Browser  BrowserConfig  `yaml:"browser"`
	Database DatabaseConfig `yaml:"database"`
	Sheets   SheetsConfig   `yaml:"sheets"`
	Log      LogConfig      `yaml:"log"`
}

// CrawlConfig holds the search URLs and filter thresholds
type CrawlConfig struct {
	URLs      []string `yaml:"urls"`
	MaxPages  int      `yaml:"max_pages"`
	StartPage int      `yaml:"start_page"`
	MinPrice  int      `yaml:"min_price"`
	MinViews  int      `yaml:"min_views"`
}

// ScraperConfig holds the network configuration
type ScraperConfig struct {
	RateLimit    time.Duration `yaml:"rate_limit"`
	Timeout      time.Duration `yaml:"timeout"`
	ImageTimeout time.Duration `yaml:"image_timeout"`
	ImageWorkers int           `yaml:"image_workers"`
	UserAgent    string        `yaml:"user_agent"`
}

// SiteConfig describes the target site's endpoints and markup
type SiteConfig struct {
	BaseURL    string          `yaml:"base_url"`
	ViewsPath  string          `yaml:"views_path"`
	Selectors  SelectorConfig  `yaml:"selectors"`
	Exclusions []ExclusionRule `yaml:"exclusions"`
}

// SelectorConfig holds the CSS selectors used by the extractors
type SelectorConfig struct {
	Item        string `yaml:"item"`
	Date        string `yaml:"date"`
	Price       string `yaml:"price"`
	Anchor      string `yaml:"anchor"`
	DetailBox   string `yaml:"detail_box"`
	Title       string `yaml:"title"`
	DetailPrice string `yaml:"detail_price"`
	GalleryImg  string `yaml:"gallery_img"`
}

// ExclusionRule marks a promoted listing. Exactly one of CSS or XPath is set.
type ExclusionRule struct {
	CSS   string `yaml:"css,omitempty"`
	XPath string `yaml:"xpath,omitempty"`
}

// IOConfig holds the input/output configuration
type IOConfig struct {
	InputFile    string `yaml:"input_file"`
	OutputFile   string `yaml:"output_file"`
	OutputFormat string `yaml:"output_format"`
	SheetName    string `yaml:"sheet_name"`
	ProductsDir  string `yaml:"products_dir"`
}

// ProxyConfig holds the proxy configuration
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
	Auth    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// BrowserConfig holds the browser configuration for JavaScript rendering
type BrowserConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Headless bool          `yaml:"headless"`
	WaitTime time.Duration `yaml:"wait_time"`
}

// DatabaseConfig enables the Postgres sink when DSN is set
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SheetsConfig enables the Google Sheets sink when SpreadsheetURL is set
type SheetsConfig struct {
	SpreadsheetURL  string `yaml:"spreadsheet_url"`
	CredentialsPath string `yaml:"credentials_path"`
}

// LogConfig holds the logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads the configuration from a YAML file on top of the defaults
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %v", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Default creates the default configuration
func Default() *AppConfig {
	return &AppConfig{
		Crawl: CrawlConfig{
			MaxPages:  2,
			StartPage: 1,
			MinPrice:  1,
			MinViews:  1,
		},
		Scraper: ScraperConfig{
			RateLimit:    1 * time.Second,
			Timeout:      30 * time.Second,
			ImageTimeout: 10 * time.Second,
			ImageWorkers: 5,
			UserAgent:    DefaultUserAgent,
		},
		Site: SiteConfig{
			BaseURL:    DefaultBaseURL,
			ViewsPath:  DefaultViewsPath,
			Selectors:  DefaultSelectors,
			Exclusions: append([]ExclusionRule(nil), DefaultExclusions...),
		},
		IO: IOConfig{
			OutputFile:   "result.xlsx",
			OutputFormat: "xlsx",
			SheetName:    "Kl Ads",
			ProductsDir:  "products",
		},
		Proxies: ProxyConfig{
			Rotate: true,
			List:   []string{},
		},
		Browser: BrowserConfig{
			Headless: true,
			WaitTime: 3 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration before any network activity starts
func (c *AppConfig) Validate() error {
	if len(c.Crawl.URLs) == 0 {
		return fmt.Errorf("%w: no search URLs supplied", ErrInvalidConfig)
	}
	for _, u := range c.Crawl.URLs {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%w: search URL %q is not absolute", ErrInvalidConfig, u)
		}
	}
	if c.Crawl.StartPage < 1 {
		return fmt.Errorf("%w: start page must be at least 1, got %d", ErrInvalidConfig, c.Crawl.StartPage)
	}
	if c.Crawl.MaxPages < c.Crawl.StartPage {
		return fmt.Errorf("%w: max pages (%d) is below start page (%d)", ErrInvalidConfig, c.Crawl.MaxPages, c.Crawl.StartPage)
	}
	if c.Crawl.MinPrice < 0 || c.Crawl.MinViews < 0 {
		return fmt.Errorf("%w: minimum price and views must not be negative", ErrInvalidConfig)
	}
	if c.Scraper.ImageWorkers < 1 {
		return fmt.Errorf("%w: image workers must be at least 1", ErrInvalidConfig)
	}
	for i, rule := range c.Site.Exclusions {
		if (rule.CSS == "") == (rule.XPath == "") {
			return fmt.Errorf("%w: exclusion %d must set exactly one of css or xpath", ErrInvalidConfig, i)
		}
	}
	switch c.IO.OutputFormat {
	case "xlsx", "csv", "json":
	default:
		return fmt.Errorf("%w: unsupported output format: %s", ErrInvalidConfig, c.IO.OutputFormat)
	}
	return nil
}

// ParseCrawlParams converts raw text fields, as typed into a form, into a CrawlConfig.
// URLs are comma separated. Start page is always 1.
func ParseCrawlParams(rawURLs, pages, minPrice, minViews string) (CrawlConfig, error) {
	var params CrawlConfig
	for _, u := range strings.Split(rawURLs, ",") {
		if u = strings.TrimSpace(u); u != "" {
			params.URLs = append(params.URLs, u)
		}
	}
	if len(params.URLs) == 0 {
		return params, fmt.Errorf("%w: no search URLs supplied", ErrInvalidConfig)
	}

	fields := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"pages", pages, &params.MaxPages},
		{"min price", minPrice, &params.MinPrice},
		{"min views", minViews, &params.MinViews},
	}
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f.raw))
		if err != nil {
			return params, fmt.Errorf("%w: %s must be a whole number, got %q", ErrInvalidConfig, f.name, f.raw)
		}
		*f.dst = n
	}
	params.StartPage = 1

	return params, nil
}
