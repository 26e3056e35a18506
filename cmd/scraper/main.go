package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/williampepple1/classifieds-scraper/internal/config"
	"github.com/williampepple1/classifieds-scraper/internal/crawler"
	"github.com/williampepple1/classifieds-scraper/internal/io"
	"github.com/williampepple1/classifieds-scraper/internal/logging"
	"github.com/williampepple1/classifieds-scraper/internal/scraper"
	"github.com/williampepple1/classifieds-scraper/internal/sheets"
	"github.com/williampepple1/classifieds-scraper/internal/storage"
)

func main() {
	// Define command-line flags
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	urls := flag.String("urls", "", "Comma separated search URLs")
	inputFile := flag.String("input", "", "File containing search URLs (one per line)")
	pages := flag.String("pages", "", "Last results page to crawl per URL")
	startPage := flag.Int("start-page", 0, "First results page to crawl per URL")
	minPrice := flag.String("min-price", "", "Minimum price for a listing to be considered")
	minViews := flag.String("min-views", "", "Minimum view count for a listing to be kept")
	outputFile := flag.String("output", "", "Report file")
	format := flag.String("format", "", "Report format: xlsx, csv or json")
	productsDir := flag.String("products", "", "Directory for per-listing image archives")
	enableBrowser := flag.Bool("browser", false, "Render result and listing pages in a headless browser")
	enableProxy := flag.Bool("proxy", false, "Enable proxy support")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Load configuration
	appConfig := config.Default()
	if *configFile != "" {
		var err error
		appConfig, err = config.Load(*configFile)
		if err != nil {
			fatal(err)
		}
	}

	// Override config with the command-line flags that were set
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			appConfig.IO.InputFile = *inputFile
		case "start-page":
			appConfig.Crawl.StartPage = *startPage
		case "output":
			appConfig.IO.OutputFile = *outputFile
		case "format":
			appConfig.IO.OutputFormat = *format
		case "products":
			appConfig.IO.ProductsDir = *productsDir
		case "browser":
			appConfig.Browser.Enabled = *enableBrowser
		case "proxy":
			appConfig.Proxies.Enabled = *enableProxy
		case "log-level":
			appConfig.Log.Level = *logLevel
		}
	})

	log, err := logging.New(appConfig.Log, os.Stderr)
	if err != nil {
		fatal(err)
	}

	// Get URLs to crawl
	urlReader := io.NewURLReader(&appConfig.IO)
	configured := appConfig.Crawl.URLs
	if *urls != "" {
		configured = io.SplitList(*urls)
	}
	merged, err := urlReader.GetURLs(configured)
	if err != nil {
		log.WithError(err).Fatal("Error reading URLs")
	}
	appConfig.Crawl, err = crawlParams(appConfig.Crawl, merged, *pages, *minPrice, *minViews)
	if err != nil {
		log.WithError(err).Fatal("Invalid crawl parameters")
	}

	if err := appConfig.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := crawler.New(appConfig, scraper.New(appConfig), log)
	if err != nil {
		log.WithError(err).Fatal("Error building pipeline")
	}

	sink, err := openSinks(ctx, appConfig, pipeline.RunID, log)
	if err != nil {
		log.WithError(err).Fatal("Error opening report")
	}

	targets := crawler.Targets(appConfig.Crawl)
	log.WithFields(logrus.Fields{
		"run_id":  pipeline.RunID,
		"targets": len(targets),
		"pages":   fmt.Sprintf("%d-%d", appConfig.Crawl.StartPage, appConfig.Crawl.MaxPages),
		"browser": appConfig.Browser.Enabled,
	}).Info("Classifieds scraper starting")

	start := time.Now()
	stream := pipeline.Run(ctx, targets)
	written := 0
	for rec := range stream.Records() {
		if err := sink.Write(rec); err != nil {
			log.WithError(err).WithField("url", rec.URL).Warn("Error writing record")
			continue
		}
		written++
	}

	closeErr := sink.Close()
	runErr := stream.Err()

	log.WithFields(logrus.Fields{
		"records":  written,
		"targets":  len(targets),
		"output":   appConfig.IO.OutputFile,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Run finished")

	if closeErr != nil {
		log.WithError(closeErr).Error("Error saving results")
		os.Exit(1)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.WithError(runErr).Error("Run aborted")
		os.Exit(1)
	}
}

// openSinks opens the report file plus the optional database and spreadsheet sinks
func openSinks(ctx context.Context, cfg *config.AppConfig, runID string, log logrus.FieldLogger) (io.RecordWriter, error) {
	report, err := io.NewResultWriter(&cfg.IO)
	if err != nil {
		return nil, err
	}
	sinks := io.MultiWriter{report}

	if cfg.Database.DSN != "" {
		pg, err := storage.NewPostgresWriter(ctx, cfg.Database.DSN, runID)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, pg)
		log.Info("Writing records to Postgres")
	}

	if cfg.Sheets.SpreadsheetURL != "" {
		id := sheets.ExtractSpreadsheetID(cfg.Sheets.SpreadsheetURL)
		sw, err := sheets.NewWriter(ctx, id, cfg.IO.SheetName, cfg.Sheets.CredentialsPath, log)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, sw)
		log.WithField("spreadsheet", id).Info("Writing records to Google Sheets")
	}

	return sinks, nil
}

// crawlParams parses the crawl numbers as typed on the command line. Values not
// given fall back to the loaded configuration; the start page is kept from it.
func crawlParams(loaded config.CrawlConfig, urls []string, pages, minPrice, minViews string) (config.CrawlConfig, error) {
	crawl, err := config.ParseCrawlParams(
		strings.Join(urls, ","),
		textOr(pages, loaded.MaxPages),
		textOr(minPrice, loaded.MinPrice),
		textOr(minViews, loaded.MinViews),
	)
	if err != nil {
		return loaded, err
	}
	crawl.StartPage = loaded.StartPage
	return crawl, nil
}

func textOr(raw string, fallback int) string {
	if raw == "" {
		return strconv.Itoa(fallback)
	}
	return raw
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
