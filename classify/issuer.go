package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// IssuerMap maps issuer symbols to keyword phrases, preserving the order in
// which symbols were added. Symbols are uppercased, keywords lowercased.
type IssuerMap struct {
	symbols  []string
	keywords map[string][]string
}

// NewIssuerMap creates an empty issuer map.
func NewIssuerMap() *IssuerMap {
	return &IssuerMap{keywords: make(map[string][]string)}
}

// Add appends keywords to symbol. A symbol seen for the first time is
// placed after all existing symbols. Blank and repeated keywords are
// ignored.
func (m *IssuerMap) Add(symbol string, keywords ...string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return
	}

	existing, ok := m.keywords[symbol]
	if !ok {
		m.symbols = append(m.symbols, symbol)
	}

	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || containsString(existing, kw) {
			continue
		}
		existing = append(existing, kw)
	}
	m.keywords[symbol] = existing
}

// Symbols returns the issuer symbols in insertion order.
func (m *IssuerMap) Symbols() []string {
	out := make([]string, len(m.symbols))
	copy(out, m.symbols)
	return out
}

// Keywords returns the keywords configured for symbol.
func (m *IssuerMap) Keywords(symbol string) []string {
	kws := m.keywords[strings.ToUpper(symbol)]
	out := make([]string, len(kws))
	copy(out, kws)
	return out
}

// Len returns the number of issuers.
func (m *IssuerMap) Len() int {
	return len(m.symbols)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type issuerPattern struct {
	symbol   string
	patterns []*regexp.Regexp
}

// IssuerMatcher detects which issuer an article is about using whole-word
// keyword matches.
type IssuerMatcher struct {
	issuers []issuerPattern
}

// NewIssuerMatcher compiles one word-bounded pattern per keyword in m.
func NewIssuerMatcher(m *IssuerMap) (*IssuerMatcher, error) {
	matcher := &IssuerMatcher{}
	if m == nil {
		return matcher, nil
	}

	for _, symbol := range m.symbols {
		ip := issuerPattern{symbol: symbol}
		for _, kw := range m.keywords[symbol] {
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(kw) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("failed to compile keyword %q for %s: %w", kw, symbol, err)
			}
			ip.patterns = append(ip.patterns, re)
		}
		matcher.issuers = append(matcher.issuers, ip)
	}

	return matcher, nil
}

// Detect returns the first issuer, in map order, with a keyword occurring
// as a whole word in the lowercased title and source. It returns "" when no
// issuer matches.
func (im *IssuerMatcher) Detect(title, source string) string {
	text := strings.ToLower(strings.TrimSpace(title + " " + source))
	if text == "" {
		return ""
	}

	for _, ip := range im.issuers {
		for _, re := range ip.patterns {
			if re.MatchString(text) {
				return ip.symbol
			}
		}
	}

	return ""
}
