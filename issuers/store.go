package issuers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pevans/banknews/classify"
)

// ErrIssuerNotFound is returned when deleting an unknown symbol.
var ErrIssuerNotFound = errors.New("issuer not found")

// Store manages issuer keywords using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new issuer store with the given database path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the issuer_keywords table if it doesn't exist. The
// autoincrement id records insertion order.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS issuer_keywords (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		keyword TEXT NOT NULL,
		UNIQUE (symbol, keyword)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns every issuer in the order its first keyword was added.
func (s *Store) Load(ctx context.Context) (*classify.IssuerMap, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT symbol, keyword FROM issuer_keywords ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query issuers: %w", err)
	}
	defer rows.Close()

	m := classify.NewIssuerMap()
	for rows.Next() {
		var symbol, keyword string
		if err := rows.Scan(&symbol, &keyword); err != nil {
			return nil, fmt.Errorf("failed to scan issuer: %w", err)
		}
		m.Add(symbol, keyword)
	}

	return m, rows.Err()
}

// AddKeywords adds keywords to symbol, creating the issuer if needed.
// Keywords already present are ignored.
func (s *Store) AddKeywords(ctx context.Context, symbol string, keywords ...string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return errors.New("symbol is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO issuer_keywords (symbol, keyword) VALUES (?, ?)",
			symbol, kw,
		)
		if err != nil {
			return fmt.Errorf("failed to insert keyword: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit keywords: %w", err)
	}
	return nil
}

// Import adds every issuer in m, in order.
func (s *Store) Import(ctx context.Context, m *classify.IssuerMap) error {
	for _, symbol := range m.Symbols() {
		if err := s.AddKeywords(ctx, symbol, m.Keywords(symbol)...); err != nil {
			return fmt.Errorf("failed to import %s: %w", symbol, err)
		}
	}
	return nil
}

// DeleteIssuer removes symbol and all its keywords.
func (s *Store) DeleteIssuer(ctx context.Context, symbol string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM issuer_keywords WHERE symbol = ?",
		strings.ToUpper(strings.TrimSpace(symbol)),
	)
	if err != nil {
		return fmt.Errorf("failed to delete issuer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrIssuerNotFound
	}

	return nil
}
