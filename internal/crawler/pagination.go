package crawler

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/williampepple1/classifieds-scraper/internal/extraction"
	"github.com/williampepple1/classifieds-scraper/internal/scraper"
	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

var (
	// /s-<category>/<query>/k0...
	keywordShape = regexp.MustCompile(`(/s-.*?/)(.*?)(/k0)`)
	// /s-<category>[/seite:N]/c<id>
	categoryShape = regexp.MustCompile(`(/seite:\d+)?/c`)
)

// PageURL rewrites a search URL to point at the given page.
// URLs of unknown shape are returned unchanged.
func PageURL(base string, page int) string {
	switch {
	case strings.Contains(base, "/k0"):
		return keywordShape.ReplaceAllString(base, fmt.Sprintf("${1}seite:%d/${2}${3}", page))
	case strings.Contains(base, "/c"):
		return categoryShape.ReplaceAllString(base, fmt.Sprintf("/seite:%d/c", page))
	default:
		return base
	}
}

// Paginator walks the result pages of a search target
type Paginator struct {
	Scraper   scraper.Scraper
	Extractor *extraction.Extractor
	Delay     time.Duration
	Log       logrus.FieldLogger
}

// Collect returns the deduplicated candidates of all pages, in discovery order.
// A page that fails to load or parse is logged and skipped.
func (p *Paginator) Collect(ctx context.Context, target models.SearchTarget) ([]models.Candidate, error) {
	seen := make(map[string]bool)
	var candidates []models.Candidate

	for page := target.StartPage; page <= target.MaxPages; page++ {
		pageURL := PageURL(target.URL, page)
		log := p.Log.WithFields(logrus.Fields{"page": page, "url": pageURL})

		if err := sleep(ctx, p.Delay); err != nil {
			return candidates, err
		}
		log.Info("Fetching results page")

		result, err := p.Scraper.Fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return candidates, ctx.Err()
			}
			log.Warnf("Results page skipped: %v", err)
			continue
		}
		log.WithFields(logrus.Fields{
			"status":      result.StatusCode,
			"duration":    result.Duration,
			"js_rendered": result.JSRendered,
			"proxy":       result.ProxyUsed,
		}).Debug("Results page fetched")

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
		if err != nil {
			log.Warnf("Results page could not be parsed: %v", err)
			continue
		}

		found := p.Extractor.ExtractListings(doc, target.MinPrice)
		added := 0
		for _, c := range found {
			if seen[c.URL] {
				continue
			}
			seen[c.URL] = true
			candidates = append(candidates, c)
			added++
		}
		log.Debugf("%d listings on page, %d new", len(found), added)
	}

	return candidates, nil
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
