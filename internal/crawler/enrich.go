package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/classifieds-scraper/internal/extraction"
	"github.com/williampepple1/classifieds-scraper/internal/scraper"
	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

var (
	// ErrNoListingID means the candidate URL carries no 10-digit listing id
	ErrNoListingID = errors.New("no listing id in url")
	// ErrMalformedViews means the view counter did not answer with JSON
	ErrMalformedViews = errors.New("malformed view count response")
	// ErrBelowMinViews means the listing has fewer views than required
	ErrBelowMinViews = errors.New("below minimum views")
)

// viewCount is the body of the view counter endpoint
type viewCount struct {
	NumVisits int `json:"numVisits"`
}

// Enriched is a candidate that passed the views filter and has a parsed listing page
type Enriched struct {
	Record   models.ListingRecord
	ID       string
	DirName  string
	Document *goquery.Document
}

// Enricher performs the second round trip for each candidate
type Enricher struct {
	Documents scraper.Scraper
	API       scraper.Scraper
	Extractor *extraction.Extractor
	BaseURL   string
	ViewsPath string
	Delay     time.Duration
}

// ViewsURL returns the view counter URL for a listing id
func (e *Enricher) ViewsURL(id string) string {
	return strings.TrimRight(e.BaseURL, "/") + fmt.Sprintf(e.ViewsPath, id)
}

// Enrich fetches the view count and, if it passes minViews, the listing page.
// Every returned error means the candidate is skipped.
func (e *Enricher) Enrich(ctx context.Context, c models.Candidate, minViews int) (*Enriched, error) {
	id, ok := extraction.ListingID(c.URL)
	if !ok {
		return nil, ErrNoListingID
	}

	if err := sleep(ctx, e.Delay); err != nil {
		return nil, err
	}

	views, err := e.fetchViews(ctx, id)
	if err != nil {
		return nil, err
	}
	if views < minViews {
		return nil, fmt.Errorf("%w: %d < %d", ErrBelowMinViews, views, minViews)
	}

	page, err := e.Documents.Fetch(ctx, c.URL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", extraction.ErrNotListingPage, err)
	}
	detail, err := e.Extractor.ExtractDetail(doc)
	if err != nil {
		return nil, err
	}

	postedAt := c.PostedAt
	if postedAt == "" {
		postedAt = models.DateNotAvailable
	}

	return &Enriched{
		Record: models.ListingRecord{
			Views:     views,
			PriceText: detail.PriceText,
			URL:       c.URL,
			Title:     detail.Title,
			PostedAt:  postedAt,
		},
		ID:       id,
		DirName:  extraction.SanitizeDirName(detail.Title, id),
		Document: doc,
	}, nil
}

func (e *Enricher) fetchViews(ctx context.Context, id string) (int, error) {
	page, err := e.API.Fetch(ctx, e.ViewsURL(id))
	if err != nil {
		return 0, err
	}
	var vc viewCount
	if err := json.Unmarshal(page.Body, &vc); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedViews, err)
	}
	return vc.NumVisits, nil
}
