package reconcile

import (
	"github.com/pevans/banknews/sheet"
	"github.com/pevans/banknews/temporal"
)

// Article is a scraped article after validation, classification and
// timestamp normalization.
type Article struct {
	Link       string
	Title      string
	Source     string
	Published  *temporal.Stamp
	IsNegative bool
	NegKeyword string
	Symbol     string
}

// Insert is a new sheet row.
type Insert struct {
	FirstSeenAt string
	LastSeenAt  string
	Article     Article
}

// Values returns the row's cell values keyed by field. Year and quarter
// are left empty when the publication time is unknown.
func (in Insert) Values() map[sheet.Field]any {
	a := in.Article
	values := map[sheet.Field]any{
		sheet.FieldFirstSeenAt: in.FirstSeenAt,
		sheet.FieldLastSeenAt:  in.LastSeenAt,
		sheet.FieldPublishedAt: "",
		sheet.FieldYear:        "",
		sheet.FieldQuarter:     "",
		sheet.FieldSource:      a.Source,
		sheet.FieldTitle:       a.Title,
		sheet.FieldSymbol:      a.Symbol,
		sheet.FieldIsNegative:  a.IsNegative,
		sheet.FieldNegKeyword:  a.NegKeyword,
		sheet.FieldLink:        a.Link,
	}
	if a.Published != nil {
		values[sheet.FieldPublishedAt] = a.Published.String()
		values[sheet.FieldYear] = a.Published.Year
		values[sheet.FieldQuarter] = a.Published.Quarter
	}
	return values
}

// Update refreshes an existing row. Only last-seen, published time and
// issuer symbol are ever rewritten; first-seen, title and sentiment keep
// the values from first discovery.
type Update struct {
	Row        int
	Link       string
	LastSeenAt string
	Published  *temporal.Stamp
	Symbol     string
}

// Cells returns the cell writes for the update. The published time is
// left alone when it could not be normalized this time.
func (u Update) Cells(cols sheet.Columns) []sheet.CellUpdate {
	cells := []sheet.CellUpdate{
		{Address: cols.Address(sheet.FieldLastSeenAt, u.Row), Value: u.LastSeenAt},
	}
	if u.Published != nil {
		cells = append(cells, sheet.CellUpdate{
			Address: cols.Address(sheet.FieldPublishedAt, u.Row),
			Value:   u.Published.String(),
		})
	}
	cells = append(cells, sheet.CellUpdate{
		Address: cols.Address(sheet.FieldSymbol, u.Row),
		Value:   u.Symbol,
	})
	return cells
}

// Skip records an article that produced no write.
type Skip struct {
	Position int    `json:"position"`
	Link     string `json:"link,omitempty"`
	Reason   string `json:"reason"`
}

// Plan is the ordered set of writes produced by one reconciliation.
// LastRow is the last row of the link column the plan was built against;
// inserts are written directly below it.
type Plan struct {
	LastRow int
	Inserts []Insert
	Updates []Update
	Skipped []Skip
}

// Empty reports whether the plan writes nothing.
func (p *Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0
}

// Rows lays out every insert in column order.
func (p *Plan) Rows(cols sheet.Columns) [][]any {
	rows := make([][]any, 0, len(p.Inserts))
	for _, in := range p.Inserts {
		rows = append(rows, cols.Row(in.Values()))
	}
	return rows
}

// Cells flattens every update into cell writes, in plan order.
func (p *Plan) Cells(cols sheet.Columns) []sheet.CellUpdate {
	var cells []sheet.CellUpdate
	for _, u := range p.Updates {
		cells = append(cells, u.Cells(cols)...)
	}
	return cells
}
