// Package temporal normalizes scraped publication timestamps into a target
// time zone and buckets them by year and quarter.
package temporal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the format used for every timestamp written to the sheet.
const Layout = "2006-01-02 15:04:05"

// ErrEmptyTimestamp is returned when there is no timestamp to normalize.
var ErrEmptyTimestamp = errors.New("timestamp is empty")

// inputLayouts are tried in order. Layouts without an offset are taken as
// UTC.
var inputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Stamp is a normalized publication timestamp.
type Stamp struct {
	Time    time.Time
	Year    int
	Quarter int
}

// String formats the stamp with Layout.
func (s Stamp) String() string {
	return s.Time.Format(Layout)
}

// Normalize parses raw as an ISO-8601 timestamp, converts it to loc and
// derives the year and quarter from the converted value.
func Normalize(raw string, loc *time.Location) (Stamp, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Stamp{}, ErrEmptyTimestamp
	}
	if loc == nil {
		loc = time.UTC
	}

	t, err := parse(raw)
	if err != nil {
		return Stamp{}, err
	}

	local := t.In(loc)
	return Stamp{
		Time:    local,
		Year:    local.Year(),
		Quarter: Quarter(local.Month()),
	}, nil
}

// Quarter returns the calendar quarter (1-4) containing month.
func Quarter(month time.Month) int {
	return (int(month)-1)/3 + 1
}

// Format renders t in loc using Layout.
func Format(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(Layout)
}

func parse(raw string) (time.Time, error) {
	// Lowercase "z" is valid ISO-8601 but rejected by time.Parse
	if strings.HasSuffix(raw, "z") {
		raw = raw[:len(raw)-1] + "Z"
	}

	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
