package sheet

import (
	"errors"
	"fmt"
)

// Field names a persisted article column.
type Field string

// Persisted article fields.
const (
	FieldFirstSeenAt Field = "first_seen_at"
	FieldLastSeenAt  Field = "last_seen_at"
	FieldPublishedAt Field = "published_at"
	FieldYear        Field = "year"
	FieldQuarter     Field = "quarter"
	FieldSource      Field = "source"
	FieldTitle       Field = "title"
	FieldSymbol      Field = "issuer_symbol"
	FieldIsNegative  Field = "is_negative"
	FieldNegKeyword  Field = "neg_keyword"
	FieldLink        Field = "link"
)

// Fields lists every persisted field.
var Fields = []Field{
	FieldFirstSeenAt, FieldLastSeenAt, FieldPublishedAt, FieldYear,
	FieldQuarter, FieldSource, FieldTitle, FieldSymbol, FieldIsNegative,
	FieldNegKeyword, FieldLink,
}

// Columns maps each persisted field to a 1-based column index.
type Columns struct {
	FirstSeenAt int `yaml:"first_seen_at" json:"first_seen_at" validate:"min=1"`
	LastSeenAt  int `yaml:"last_seen_at" json:"last_seen_at" validate:"min=1"`
	PublishedAt int `yaml:"published_at" json:"published_at" validate:"min=1"`
	Source      int `yaml:"source" json:"source" validate:"min=1"`
	Year        int `yaml:"year" json:"year" validate:"min=1"`
	Quarter     int `yaml:"quarter" json:"quarter" validate:"min=1"`
	Symbol      int `yaml:"issuer_symbol" json:"issuer_symbol" validate:"min=1"`
	Title       int `yaml:"title" json:"title" validate:"min=1"`
	IsNegative  int `yaml:"is_negative" json:"is_negative" validate:"min=1"`
	NegKeyword  int `yaml:"neg_keyword" json:"neg_keyword" validate:"min=1"`
	Link        int `yaml:"link" json:"link" validate:"min=1"`
}

// DefaultColumns returns the standard sheet layout.
func DefaultColumns() Columns {
	return Columns{
		FirstSeenAt: 1,
		LastSeenAt:  2,
		PublishedAt: 3,
		Source:      4,
		Year:        5,
		Quarter:     6,
		Symbol:      7,
		Title:       8,
		IsNegative:  9,
		NegKeyword:  10,
		Link:        11,
	}
}

// Column returns the column index configured for f, or 0 for an unknown
// field.
func (c Columns) Column(f Field) int {
	switch f {
	case FieldFirstSeenAt:
		return c.FirstSeenAt
	case FieldLastSeenAt:
		return c.LastSeenAt
	case FieldPublishedAt:
		return c.PublishedAt
	case FieldYear:
		return c.Year
	case FieldQuarter:
		return c.Quarter
	case FieldSource:
		return c.Source
	case FieldTitle:
		return c.Title
	case FieldSymbol:
		return c.Symbol
	case FieldIsNegative:
		return c.IsNegative
	case FieldNegKeyword:
		return c.NegKeyword
	case FieldLink:
		return c.Link
	}
	return 0
}

// Validate checks that every field has a column and no two fields share
// one.
func (c Columns) Validate() error {
	var errs []error
	owner := make(map[int]Field, len(Fields))

	for _, f := range Fields {
		col := c.Column(f)
		if col < 1 {
			errs = append(errs, fmt.Errorf("column for %s is missing", f))
			continue
		}
		if prev, ok := owner[col]; ok {
			errs = append(errs, fmt.Errorf("column %s is assigned to both %s and %s", ColumnLetter(col), prev, f))
			continue
		}
		owner[col] = f
	}

	return errors.Join(errs...)
}

// Width returns the highest configured column index.
func (c Columns) Width() int {
	width := 0
	for _, f := range Fields {
		width = max(width, c.Column(f))
	}
	return width
}

// Address returns the A1 address of field f in row.
func (c Columns) Address(f Field, row int) string {
	return Address(c.Column(f), row)
}

// Row lays values out in column order. Fields without a value and gaps in
// the layout are left as empty strings.
func (c Columns) Row(values map[Field]any) []any {
	row := make([]any, c.Width())
	for i := range row {
		row[i] = ""
	}
	for f, v := range values {
		if col := c.Column(f); col > 0 {
			if v == nil {
				v = ""
			}
			row[col-1] = v
		}
	}
	return row
}

// Header returns the header row: each field's name in its column.
func (c Columns) Header() []any {
	values := make(map[Field]any, len(Fields))
	for _, f := range Fields {
		values[f] = string(f)
	}
	return c.Row(values)
}
