package reconcile

import "strings"

// LinkIndex maps an article link to its 1-based row in the sheet.
type LinkIndex map[string]int

// BuildIndex indexes the link column as read from the sheet, where
// links[0] is row 1. Blank values are skipped. If a link appears more than
// once, the last row wins.
func BuildIndex(links []string) LinkIndex {
	index := make(LinkIndex, len(links))
	for i, link := range links {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}
		index[link] = i + 1
	}
	return index
}

// Lookup returns the row holding link.
func (idx LinkIndex) Lookup(link string) (int, bool) {
	row, ok := idx[strings.TrimSpace(link)]
	return row, ok
}
