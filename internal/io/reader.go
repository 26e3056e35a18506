package io

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/williampepple1/classifieds-scraper/internal/config"
)

// URLReader reads search URLs from various sources
type URLReader struct {
	Config *config.IOConfig
}

// NewURLReader creates a new URL reader
func NewURLReader(config *config.IOConfig) *URLReader {
	return &URLReader{
		Config: config,
	}
}

// ReadFromFile reads URLs from a file, one URL per line. Blank lines and # comments are ignored.
func (r *URLReader) ReadFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open url file: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		url := strings.TrimSpace(scanner.Text())
		if url != "" && !strings.HasPrefix(url, "#") {
			urls = append(urls, url)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return urls, nil
}

// SplitList splits a comma separated URL list as typed on the command line
func SplitList(raw string) []string {
	var urls []string
	for _, u := range strings.Split(raw, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// GetURLs merges the configured URLs with those from the input file, dropping duplicates
func (r *URLReader) GetURLs(configured []string) ([]string, error) {
	urls := append([]string(nil), configured...)
	if r.Config.InputFile != "" {
		fromFile, err := r.ReadFromFile(r.Config.InputFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}

	seen := make(map[string]bool, len(urls))
	unique := urls[:0]
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	return unique, nil
}
