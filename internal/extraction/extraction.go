package extraction

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/williampepple1/classifieds-scraper/internal/config"
	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

var (
	// ErrNotListingPage means the detail document has no content container
	ErrNotListingPage = errors.New("not a valid listing page")
	// ErrMissingField means a required heading is absent from the detail container
	ErrMissingField = errors.New("required field missing")
)

// Detail holds the fields read from a listing page
type Detail struct {
	Title     string
	PriceText string
}

// Extractor handles data extraction from search result and listing documents
type Extractor struct {
	Config     *config.SiteConfig
	Log        logrus.FieldLogger
	base       *url.URL
	exclusions []Predicate
}

// NewExtractor creates a new data extractor
func NewExtractor(cfg *config.SiteConfig, log logrus.FieldLogger) (*Extractor, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid site base url %q", config.ErrInvalidConfig, cfg.BaseURL)
	}
	exclusions, err := CompileExclusions(cfg.Exclusions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	return &Extractor{
		Config:     cfg,
		Log:        log,
		base:       base,
		exclusions: exclusions,
	}, nil
}

// ExtractListings returns the candidates on a search results page whose price is at least minPrice.
// Promoted items and items without date, price or link are skipped.
func (e *Extractor) ExtractListings(doc *goquery.Document, minPrice int) []models.Candidate {
	sel := e.Config.Selectors
	var candidates []models.Candidate

	doc.Find(sel.Item).Each(func(i int, item *goquery.Selection) {
		if e.excluded(item) {
			e.Log.Debugf("Item %d: promoted listing, skipped", i)
			return
		}

		dateIcon := item.Find(sel.Date).First()
		if dateIcon.Length() == 0 {
			e.Log.Debugf("Item %d: no date marker, skipped", i)
			return
		}
		postedAt := followingText(dateIcon)

		priceTag := item.Find(sel.Price).First()
		if priceTag.Length() == 0 {
			e.Log.Debugf("Item %d: no price marker, skipped", i)
			return
		}
		price, ok := ParsePrice(priceTag.Text())
		if !ok || price < minPrice {
			return
		}

		href, ok := item.Find(sel.Anchor).First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			e.Log.Debugf("Item %d: no link, skipped", i)
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			e.Log.Warnf("Item %d: bad link %q: %v", i, href, err)
			return
		}

		candidates = append(candidates, models.Candidate{
			URL:      e.base.ResolveReference(ref).String(),
			PostedAt: postedAt,
			Price:    price,
		})
	})

	return candidates
}

// ExtractDetail reads title and price label from a listing page
func (e *Extractor) ExtractDetail(doc *goquery.Document) (Detail, error) {
	sel := e.Config.Selectors

	box := doc.Find(sel.DetailBox).First()
	if box.Length() == 0 {
		return Detail{}, ErrNotListingPage
	}

	title := box.Find(sel.Title).First()
	if title.Length() == 0 {
		return Detail{}, fmt.Errorf("%w: title", ErrMissingField)
	}
	price := box.Find(sel.DetailPrice).First()
	if price.Length() == 0 {
		return Detail{}, fmt.Errorf("%w: price", ErrMissingField)
	}

	return Detail{
		Title:     collapseSpace(title.Text()),
		PriceText: collapseSpace(price.Text()),
	}, nil
}

func (e *Extractor) excluded(item *goquery.Selection) bool {
	for _, p := range e.exclusions {
		if p.Match(item) {
			return true
		}
	}
	return false
}

// followingText returns the trimmed text right after the marker element
func followingText(marker *goquery.Selection) string {
	next := marker.Nodes[0].NextSibling
	if next != nil && next.Type == html.TextNode {
		return strings.TrimSpace(next.Data)
	}
	return strings.TrimSpace(marker.Next().Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
