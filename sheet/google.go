package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valueInputOption makes Sheets parse values as if typed by a user, so
// timestamps and numbers keep their native cell types.
const valueInputOption = "USER_ENTERED"

// DefaultRequestTimeout bounds each Sheets call when no timeout is given.
const DefaultRequestTimeout = 30 * time.Second

// ErrSpreadsheetNotFound is returned when no spreadsheet has the requested
// name.
var ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

// GoogleStore is a worksheet inside a Google Sheets spreadsheet.
type GoogleStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	timeout       time.Duration
}

// ServiceAccount returns client options that authenticate with a service
// account key file, scoped to edit spreadsheets and find them by name.
func ServiceAccount(credsPath string) []option.ClientOption {
	return []option.ClientOption{
		option.WithCredentialsFile(credsPath),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveMetadataReadonlyScope),
	}
}

// NewGoogleStore returns a store for one worksheet of the spreadsheet.
// Every call is cut off after timeout; zero or less means
// DefaultRequestTimeout.
func NewGoogleStore(ctx context.Context, spreadsheetID, sheetName string, timeout time.Duration, opts ...option.ClientOption) (*GoogleStore, error) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &GoogleStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		timeout:       timeout,
	}, nil
}

// FindSpreadsheet looks up a spreadsheet by its title through the Drive
// API and returns its ID. If several share the title, the most recently
// modified one is used.
func FindSpreadsheet(ctx context.Context, name string, timeout time.Duration, opts ...option.ClientOption) (string, error) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create drive client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), spreadsheetMimeType)
	resp, err := svc.Files.List().
		Q(q).
		OrderBy("modifiedTime desc").
		Fields("files(id, name)").
		PageSize(10).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to look up spreadsheet %q: %w", name, err)
	}
	if len(resp.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, name)
	}
	if len(resp.Files) > 1 {
		log.Warn().Str("name", name).Int("matches", len(resp.Files)).Str("id", resp.Files[0].Id).Msg("several spreadsheets share this name, using the newest")
	}
	return resp.Files[0].Id, nil
}

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// escapeQuery escapes a string literal for a Drive files.list query.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

// ReadColumn returns column col from row 1 to its last non-empty row.
func (g *GoogleStore) ReadColumn(ctx context.Context, col int) ([]string, error) {
	letter := ColumnLetter(col)
	rng := g.rangeName(letter + ":" + letter)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).
		MajorDimension("COLUMNS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read column %s: %w", letter, err)
	}

	if len(resp.Values) == 0 {
		return nil, nil
	}

	values := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		values[i] = FormatCell(v)
	}
	return values, nil
}

// AppendRows writes rows from row after+1 down. The append is anchored on
// that row and overwrites rather than inserts, so Sheets never shifts the
// rows below a blank row. The grid grows when the rows run past its end.
func (g *GoogleStore) AppendRows(ctx context.Context, after int, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if after < 0 {
		return fmt.Errorf("invalid append position: %d", after)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	vr := &sheets.ValueRange{Values: rows}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, g.rangeName(Address(1, after+1)), vr).
		ValueInputOption(valueInputOption).
		InsertDataOption("OVERWRITE").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append %d rows: %w", len(rows), err)
	}
	return nil
}

// BatchUpdate writes every update in one values.batchUpdate request.
func (g *GoogleStore) BatchUpdate(ctx context.Context, updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{
			Range:  g.rangeName(u.Address),
			Values: [][]any{{u.Value}},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data:             data,
	}
	_, err := g.svc.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, req).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update %d cells: %w", len(updates), err)
	}
	return nil
}

func (g *GoogleStore) rangeName(cells string) string {
	return quoteSheetName(g.sheetName) + "!" + cells
}

// quoteSheetName wraps a worksheet name in single quotes for A1 notation.
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
