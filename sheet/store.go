// Package sheet provides the tabular store that persisted articles live in:
// column addressing, the field layout, and SQLite and Google Sheets backends.
package sheet

import (
	"context"
	"fmt"
	"strconv"
)

// CellUpdate is a single value written to an A1 address.
type CellUpdate struct {
	Address string `json:"address"`
	Value   any    `json:"value"`
}

// Store is a worksheet addressed by 1-based rows and columns.
type Store interface {
	// ReadColumn returns every value of column col from row 1 down to the
	// last non-empty row. Empty cells are returned as "".
	ReadColumn(ctx context.Context, col int) ([]string, error)

	// AppendRows writes rows in one call, starting on the row below after.
	// Callers pass the length of the column they last read, so rows below
	// a gap are never shifted or overwritten.
	AppendRows(ctx context.Context, after int, rows [][]any) error

	// BatchUpdate writes every update in one call.
	BatchUpdate(ctx context.Context, updates []CellUpdate) error
}

// EnsureHeader writes the header row when the sheet has nothing in the
// link column yet. It reports whether a header was written.
func EnsureHeader(ctx context.Context, store Store, cols Columns) (bool, error) {
	links, err := store.ReadColumn(ctx, cols.Link)
	if err != nil {
		return false, fmt.Errorf("failed to read link column: %w", err)
	}
	if len(links) > 0 {
		return false, nil
	}

	if err := store.AppendRows(ctx, 0, [][]any{cols.Header()}); err != nil {
		return false, fmt.Errorf("failed to write header: %w", err)
	}
	return true, nil
}

// FormatCell renders a cell value the way a spreadsheet displays it.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
