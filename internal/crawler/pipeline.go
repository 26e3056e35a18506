package crawler

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/williampepple1/classifieds-scraper/internal/archive"
	"github.com/williampepple1/classifieds-scraper/internal/config"
	"github.com/williampepple1/classifieds-scraper/internal/extraction"
	"github.com/williampepple1/classifieds-scraper/internal/scraper"
	"github.com/williampepple1/classifieds-scraper/internal/worker"
	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

// Pipeline crawls search targets one after another and produces listing records
type Pipeline struct {
	RunID       string
	ProductsDir string
	Paginator   *Paginator
	Enricher    *Enricher
	Images      *worker.Pool
	Log         logrus.FieldLogger
}

// New wires a pipeline from the configuration. Documents are fetched with
// docs; the view counter and images always go over plain HTTP.
func New(cfg *config.AppConfig, docs scraper.Scraper, log logrus.FieldLogger) (*Pipeline, error) {
	extractor, err := extraction.NewExtractor(&cfg.Site, log)
	if err != nil {
		return nil, err
	}
	api := scraper.NewHTTPScraper(cfg, cfg.Scraper.Timeout)
	images := scraper.NewHTTPScraper(cfg, cfg.Scraper.ImageTimeout)

	runID := uuid.NewString()
	log = log.WithField("run_id", runID)

	return &Pipeline{
		RunID:       runID,
		ProductsDir: cfg.IO.ProductsDir,
		Paginator: &Paginator{
			Scraper:   docs,
			Extractor: extractor,
			Delay:     cfg.Scraper.RateLimit,
			Log:       log,
		},
		Enricher: &Enricher{
			Documents: docs,
			API:       api,
			Extractor: extractor,
			BaseURL:   cfg.Site.BaseURL,
			ViewsPath: cfg.Site.ViewsPath,
			Delay:     cfg.Scraper.RateLimit,
		},
		Images: worker.NewPool(images, cfg.Scraper.ImageWorkers, log),
		Log:    log,
	}, nil
}

// Targets builds one SearchTarget per configured URL
func Targets(crawl config.CrawlConfig) []models.SearchTarget {
	targets := make([]models.SearchTarget, 0, len(crawl.URLs))
	for _, u := range crawl.URLs {
		targets = append(targets, models.SearchTarget{
			URL:       u,
			MaxPages:  crawl.MaxPages,
			StartPage: crawl.StartPage,
			MinPrice:  crawl.MinPrice,
			MinViews:  crawl.MinViews,
		})
	}
	return targets
}

// Run returns a stream over the records of all targets. Nothing is fetched
// until the stream is consumed.
func (p *Pipeline) Run(ctx context.Context, targets []models.SearchTarget) *RecordStream {
	s := &RecordStream{dirs: make(map[string]bool)}
	s.seq = func(yield func(models.ListingRecord) bool) {
		for _, target := range targets {
			if !p.crawlTarget(ctx, target, s, yield) {
				return
			}
		}
	}
	return s
}

// crawlTarget runs one target through pagination, enrichment and archiving.
// It returns false when the consumer stopped or the context was cancelled.
func (p *Pipeline) crawlTarget(ctx context.Context, target models.SearchTarget, s *RecordStream, yield func(models.ListingRecord) bool) bool {
	log := p.Log.WithField("target", target.URL)
	log.Info("Processing search target")

	candidates, err := p.Paginator.Collect(ctx, target)
	if err != nil {
		s.setErr(err)
		return false
	}
	log.Infof("Found %d candidate listings", len(candidates))

	emitted := 0
	for _, c := range candidates {
		clog := log.WithFields(logrus.Fields{"url": c.URL, "price": c.Price})

		enriched, err := p.Enricher.Enrich(ctx, c, target.MinViews)
		if err != nil {
			if ctx.Err() != nil {
				s.setErr(ctx.Err())
				return false
			}
			logSkip(clog, err)
			continue
		}

		record, err := p.archive(ctx, enriched, s.dirs)
		if err != nil {
			if ctx.Err() != nil {
				s.setErr(ctx.Err())
				return false
			}
			clog.Errorf("Archiving failed: %v", err)
			continue
		}

		emitted++
		if !yield(record) {
			return false
		}
	}

	log.Infof("Target done, %d listings emitted", emitted)
	return true
}

// archive downloads the listing images into their own directory and zips it.
// used holds the directory names taken earlier in the run.
func (p *Pipeline) archive(ctx context.Context, e *Enriched, used map[string]bool) (models.ListingRecord, error) {
	record := e.Record

	name := e.DirName
	if used[name] {
		name = name + "_" + e.ID
	}
	dir := filepath.Join(p.ProductsDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return record, fmt.Errorf("could not create %s: %w", dir, err)
	}
	used[name] = true

	record.ImageURLs = p.Paginator.Extractor.DiscoverImages(e.Document)
	saved := p.Images.Run(ctx, worker.Tasks(record.ImageURLs, dir))
	p.Log.WithField("url", record.URL).Debugf("Saved %d of %d images", len(saved), len(record.ImageURLs))
	if err := ctx.Err(); err != nil {
		os.RemoveAll(dir)
		return record, err
	}

	zipPath, err := archive.Zip(dir)
	if err != nil {
		os.RemoveAll(dir)
		return record, err
	}
	record.ArchivePath = zipPath
	return record, nil
}

// logSkip logs a skipped candidate at a level matching the cause
func logSkip(log logrus.FieldLogger, err error) {
	var fetchErr *scraper.FetchError
	switch {
	case errors.Is(err, ErrBelowMinViews), errors.Is(err, ErrNoListingID):
		log.Debugf("Listing skipped: %v", err)
	case errors.As(err, &fetchErr):
		log.Warnf("Listing fetch failed: %v", err)
	default:
		log.Warnf("Listing skipped: %v", err)
	}
}

// RecordStream is a single-pass sequence of listing records
type RecordStream struct {
	seq      iter.Seq[models.ListingRecord]
	consumed atomic.Bool
	err      error
	dirs     map[string]bool
}

// Records returns the sequence. The crawl runs while it is ranged over and
// only the first range yields anything.
func (s *RecordStream) Records() iter.Seq[models.ListingRecord] {
	return func(yield func(models.ListingRecord) bool) {
		if s.consumed.Swap(true) {
			return
		}
		s.seq(yield)
	}
}

// Err returns the error that ended the stream early, if any
func (s *RecordStream) Err() error {
	return s.err
}

func (s *RecordStream) setErr(err error) {
	s.err = err
}
