package sheet

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps a worksheet as sparse cells in a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	sheet string
}

// NewSQLiteStore opens (or creates) the database at dbPath and returns a
// store for the named worksheet.
func NewSQLiteStore(dbPath, sheetName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, sheet: sheetName}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the cells table if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cells (
		sheet TEXT NOT NULL,
		row INTEGER NOT NULL,
		col INTEGER NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (sheet, row, col)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReadColumn returns column col from row 1 to its last non-empty row.
func (s *SQLiteStore) ReadColumn(ctx context.Context, col int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT row, value FROM cells WHERE sheet = ? AND col = ? ORDER BY row",
		s.sheet, col,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query column: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var row int
		var value string
		if err := rows.Scan(&row, &value); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		for len(values) < row-1 {
			values = append(values, "")
		}
		values = append(values, value)
	}

	return values, rows.Err()
}

// AppendRows writes rows starting at row after+1 inside a single
// transaction. Each row replaces whatever its cells held; empty values
// clear the cell.
func (s *SQLiteStore) AppendRows(ctx context.Context, after int, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if after < 0 {
		return fmt.Errorf("invalid append position: %d", after)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, values := range rows {
		row := after + i + 1
		for j, v := range values {
			if err := writeCell(ctx, tx, s.sheet, row, j+1, FormatCell(v)); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", Address(j+1, row), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows: %w", err)
	}
	return nil
}

// writeCell stores value at (row, col), deleting the cell when value is
// empty.
func writeCell(ctx context.Context, tx *sql.Tx, sheet string, row, col int, value string) error {
	if value == "" {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM cells WHERE sheet = ? AND row = ? AND col = ?",
			sheet, row, col,
		)
		return err
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO cells (sheet, row, col, value) VALUES (?, ?, ?, ?)
		ON CONFLICT (sheet, row, col) DO UPDATE SET value = excluded.value
	`, sheet, row, col, value)
	return err
}

// BatchUpdate writes every update inside a single transaction. Writing an
// empty value clears the cell.
func (s *SQLiteStore) BatchUpdate(ctx context.Context, updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		col, row, err := ParseAddress(u.Address)
		if err != nil {
			return err
		}

		if err := writeCell(ctx, tx, s.sheet, row, col, FormatCell(u.Value)); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", u.Address, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit updates: %w", err)
	}
	return nil
}

// ReadRow returns the values of row, one per column up to width.
func (s *SQLiteStore) ReadRow(ctx context.Context, row, width int) ([]string, error) {
	values := make([]string, width)

	rows, err := s.db.QueryContext(ctx,
		"SELECT col, value FROM cells WHERE sheet = ? AND row = ? AND col <= ?",
		s.sheet, row, width,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query row: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var col int
		var value string
		if err := rows.Scan(&col, &value); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		values[col-1] = value
	}

	return values, rows.Err()
}
