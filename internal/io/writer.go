package io

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/williampepple1/classifieds-scraper/internal/config"
	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

// RecordWriter receives listing records one at a time as the crawl produces them
type RecordWriter interface {
	Write(rec models.ListingRecord) error
	Close() error
}

// NewResultWriter creates the file writer for the configured output format
func NewResultWriter(cfg *config.IOConfig) (RecordWriter, error) {
	if dir := filepath.Dir(cfg.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create output dir: %w", err)
		}
	}

	switch cfg.OutputFormat {
	case "xlsx":
		return newXLSXWriter(cfg.OutputFile, cfg.SheetName)
	case "csv":
		return newCSVWriter(cfg.OutputFile)
	case "json":
		return &jsonWriter{path: cfg.OutputFile}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
}

// MultiWriter fans records out to several writers
type MultiWriter []RecordWriter

// Write passes rec to every writer and joins their errors
func (m MultiWriter) Write(rec models.ListingRecord) error {
	var errs []error
	for _, w := range m {
		if err := w.Write(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer and joins their errors
func (m MultiWriter) Close() error {
	var errs []error
	for _, w := range m {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// xlsxWriter builds a workbook with one sheet and saves it on Close
type xlsxWriter struct {
	file  *excelize.File
	path  string
	sheet string
	row   int
}

func newXLSXWriter(path, sheet string) (*xlsxWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not name sheet: %w", err)
	}

	header := make([]interface{}, len(models.ReportHeader))
	for i, h := range models.ReportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not write header: %w", err)
	}

	return &xlsxWriter{file: f, path: path, sheet: sheet, row: 1}, nil
}

func (w *xlsxWriter) Write(rec models.ListingRecord) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	row := rec.Row()
	return w.file.SetSheetRow(w.sheet, cell, &row)
}

func (w *xlsxWriter) Close() error {
	defer w.file.Close()
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("could not save %s: %w", w.path, err)
	}
	return nil
}

// csvWriter flushes after every row so partial runs leave a usable file
type csvWriter struct {
	file   *os.File
	writer *csv.Writer
}

func newCSVWriter(path string) (*csvWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create file: %w", err)
	}
	w := &csvWriter{file: file, writer: csv.NewWriter(file)}
	if err := w.writeRow(models.ReportHeader); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *csvWriter) writeRow(row []string) error {
	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	w.writer.Flush()
	return w.writer.Error()
}

func (w *csvWriter) Write(rec models.ListingRecord) error {
	return w.writeRow(rec.StringRow())
}

func (w *csvWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// jsonWriter collects records and writes them as one indented array
type jsonWriter struct {
	path    string
	records []models.ListingRecord
}

func (w *jsonWriter) Write(rec models.ListingRecord) error {
	w.records = append(w.records, rec)
	return nil
}

func (w *jsonWriter) Close() error {
	records := w.records
	if records == nil {
		records = []models.ListingRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(w.path, data, 0644)
}
