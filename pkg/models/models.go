package models

import (
	"strconv"
	"strings"
	"time"
)

// DateNotAvailable is used when no posting date was captured for a listing
const DateNotAvailable = "N/A"

// SearchTarget is one base search URL plus the parameters of a crawl pass
type SearchTarget struct {
	URL       string `json:"url"`
	MaxPages  int    `json:"max_pages"`
	StartPage int    `json:"start_page"`
	MinPrice  int    `json:"min_price"`
	MinViews  int    `json:"min_views"`
}

// Candidate is a listing discovered on a results page, not yet enriched
type Candidate struct {
	URL      string `json:"url"`
	PostedAt string `json:"posted_at"`
	Price    int    `json:"price"`
}

// ListingRecord is a fully enriched listing ready for the report
type ListingRecord struct {
	Views       int      `json:"views"`
	PriceText   string   `json:"price"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	PostedAt    string   `json:"date"`
	ImageURLs   []string `json:"images,omitempty"`
	ArchivePath string   `json:"archive"`
}

// Images returns the image URLs joined the way the report expects them
func (r ListingRecord) Images() string {
	return strings.Join(r.ImageURLs, ", ")
}

// Row returns the record in report column order
func (r ListingRecord) Row() []interface{} {
	return []interface{}{r.Views, r.PriceText, r.URL, r.Title, r.PostedAt, r.Images(), r.ArchivePath}
}

// StringRow is Row for writers that only take text
func (r ListingRecord) StringRow() []string {
	return []string{strconv.Itoa(r.Views), r.PriceText, r.URL, r.Title, r.PostedAt, r.Images(), r.ArchivePath}
}

// ReportHeader is the header row matching Row
var ReportHeader = []string{"Views", "Price", "URL", "Title", "Date", "Photos (all)", "Archive"}

// ImageTask is a single image download
type ImageTask struct {
	URL      string
	Dir      string
	Filename string
}

// Page represents a fetched document
type Page struct {
	URL        string        `json:"url"`
	Body       []byte        `json:"-"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration"`
	JSRendered bool          `json:"js_rendered,omitempty"`
	ProxyUsed  string        `json:"proxy_used,omitempty"`
}
