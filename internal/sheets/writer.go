package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/williampepple1/classifieds-scraper/pkg/models"
)

// CredentialsEnv is read when no credentials file is configured
const CredentialsEnv = "GOOGLE_SHEETS_CREDENTIALS"

// Writer appends listing records to a Google Sheets tab
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	log           logrus.FieldLogger

	rows [][]interface{}
}

// NewWriter creates a Google Sheets writer from a service account
func NewWriter(ctx context.Context, spreadsheetID, sheetName, credentialsPath string, log logrus.FieldLogger) (*Writer, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}

	credsJSON, err := readCredentials(credentialsPath)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(ctx, service, spreadsheetID, sheetName, log)
}

// newWriter makes sure the target tab exists before any rows are buffered
func newWriter(ctx context.Context, service *sheets.Service, spreadsheetID, sheetName string, log logrus.FieldLogger) (*Writer, error) {
	w := &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sanitizeSheetName(sheetName),
		log:           log,
	}
	if err := w.ensureSheet(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// ensureSheet adds the tab when the spreadsheet does not have it yet
func (w *Writer) ensureSheet(ctx context.Context) error {
	spreadsheet, err := w.service.Spreadsheets.Get(w.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil && sh.Properties.Title == w.sheetName {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: w.sheetName},
				},
			},
		},
	}
	if _, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", w.sheetName, err)
	}
	w.log.WithField("sheet", w.sheetName).Info("Created sheet")
	return nil
}

// a1Range quotes the tab name so names with spaces or quotes parse
func a1Range(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

func readCredentials(path string) ([]byte, error) {
	var credsJSON []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		credsJSON = data
	} else {
		env := strings.TrimSpace(os.Getenv(CredentialsEnv))
		if env == "" {
			return nil, fmt.Errorf("credentials not found: set a credentials file or %s", CredentialsEnv)
		}
		credsJSON = []byte(env)
	}

	var creds struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if creds.Type != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file, got type %q", creds.Type)
	}
	return credsJSON, nil
}

// Write buffers a row; rows are sent on Close
func (w *Writer) Write(rec models.ListingRecord) error {
	w.rows = append(w.rows, rec.Row())
	return nil
}

// Close appends the buffered rows, adding the header when the tab is empty
func (w *Writer) Close() error {
	if len(w.rows) == 0 {
		return nil
	}

	resp, err := w.service.Spreadsheets.Values.Get(w.spreadsheetID, a1Range(w.sheetName, "A:A")).Do()
	if err != nil {
		return fmt.Errorf("failed to read existing data: %w", err)
	}

	values := w.rows
	if len(resp.Values) == 0 {
		values = append([][]interface{}{headerRow()}, values...)
	}

	_, err = w.service.Spreadsheets.Values.Append(w.spreadsheetID, a1Range(w.sheetName, "A1"), &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheets: %w", err)
	}

	w.log.WithField("rows", len(w.rows)).Info("Appended listings to Google Sheets")
	w.rows = nil
	return nil
}

func headerRow() []interface{} {
	row := make([]interface{}, len(models.ReportHeader))
	for i, h := range models.ReportHeader {
		row[i] = h
	}
	return row
}

// sanitizeSheetName removes characters Google Sheets does not allow in tab names
func sanitizeSheetName(name string) string {
	result := name
	for _, char := range []string{"/", "\\", "?", "*", "[", "]"} {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL.
// A bare ID is returned unchanged.
func ExtractSpreadsheetID(url string) string {
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		if strings.Contains(url, "/") {
			return ""
		}
		return strings.TrimSpace(url)
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}
