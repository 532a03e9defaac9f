package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix starts every environment key banknews reads.
const EnvPrefix = "APP_"

// ErrInvalidEnv is returned when an environment value cannot be parsed.
var ErrInvalidEnv = errors.New("invalid value for env")

type lookupFunc func(key string) (string, bool)

// lookupEnv treats empty variables as unset.
func lookupEnv(key string) (string, bool) {
	val := os.Getenv(key)
	return val, val != ""
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if val, ok := lookupEnv(key); ok {
		return val
	}
	return defaultValue
}

// applyEnv overlays APP_ variables onto cfg.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	strs := map[string]*string{
		"TIMEZONE":          &cfg.Timezone,
		"LOG_LEVEL":         &cfg.LogLevel,
		"SCHEDULE":          &cfg.Schedule,
		"SCRAPER_MODE":      &cfg.Scraper.Mode,
		"SEARCH_QUERY":      &cfg.Scraper.Query,
		"SEARCH_URL":        &cfg.Scraper.URL,
		"USER_AGENT":        &cfg.Scraper.UserAgent,
		"STORE_BACKEND":     &cfg.Store.Backend,
		"STORE_DSN":         &cfg.Store.DSN,
		"GOOGLE_CREDS_PATH": &cfg.Store.CredsPath,
		"SPREADSHEET_ID":    &cfg.Store.SpreadsheetID,
		"SPREADSHEET_NAME":  &cfg.Store.SpreadsheetName,
		"SHEET_NAME":        &cfg.Store.SheetName,
		"ISSUERS_TYPE":      &cfg.Issuers.Type,
		"ISSUERS_DSN":       &cfg.Issuers.DSN,
		"HISTORY_DSN":       &cfg.History.DSN,
		"API_ADDR":          &cfg.API.Addr,
	}
	for key, dst := range strs {
		if val, ok := lookup(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(val)
		}
	}

	ints := map[string]*int{
		"SCRAPING_LIMIT":   &cfg.Scraper.Limit,
		"COL_FIRST_SEEN":   &cfg.Columns.FirstSeenAt,
		"COL_LAST_SEEN":    &cfg.Columns.LastSeenAt,
		"COL_PUBLISHED_AT": &cfg.Columns.PublishedAt,
		"COL_SOURCE":       &cfg.Columns.Source,
		"COL_YEAR":         &cfg.Columns.Year,
		"COL_QUARTER":      &cfg.Columns.Quarter,
		"COL_SYMBOL":       &cfg.Columns.Symbol,
		"COL_TITLE":        &cfg.Columns.Title,
		"COL_IS_NEGATIVE":  &cfg.Columns.IsNegative,
		"COL_NEG_KEYWORD":  &cfg.Columns.NegKeyword,
		"COL_LINK":         &cfg.Columns.Link,
	}
	for key, dst := range ints {
		val, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("%w %s%s: %q", ErrInvalidEnv, EnvPrefix, key, val)
		}
		*dst = n
	}

	if val, ok := lookup(EnvPrefix + "TIMEOUT_REQUEST"); ok {
		d, err := parseSeconds(val)
		if err != nil {
			return fmt.Errorf("%w %sTIMEOUT_REQUEST: %q", ErrInvalidEnv, EnvPrefix, val)
		}
		cfg.Scraper.Timeout = d
	}

	if val, ok := lookup(EnvPrefix + "NEGATIVE_KEYWORDS"); ok {
		keywords, err := parseList(val)
		if err != nil {
			return fmt.Errorf("%w %sNEGATIVE_KEYWORDS: %v", ErrInvalidEnv, EnvPrefix, err)
		}
		cfg.NegativeKeywords = keywords
	}

	return nil
}

// parseSeconds accepts a plain number of seconds or a Go duration.
func parseSeconds(val string) (time.Duration, error) {
	val = strings.TrimSpace(val)
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		if secs < 0 {
			return 0, errors.New("negative timeout")
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(val)
}

// parseList accepts a JSON array of strings or a comma-separated list.
func parseList(val string) ([]string, error) {
	val = strings.TrimSpace(val)
	if strings.HasPrefix(val, "[") {
		var list []string
		if err := json.Unmarshal([]byte(val), &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var list []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list, nil
}
