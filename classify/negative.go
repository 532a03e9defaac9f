package classify

import "strings"

// DefaultNegativeKeywords is the built-in lexicon of negative-sentiment
// phrases (Indonesian banking and finance press). Order matters: the first
// matching keyword is the one reported.
var DefaultNegativeKeywords = []string{
	"gagal bayar", "kredit macet", "non performing loan", "npl",
	"likuiditas", "kerugian", "rugi", "penurunan laba",
	"bangkrut", "pailit",
	"fraud", "penipuan", "korupsi", "skandal",
	"pidana", "tersangka", "ditahan", "penyidikan",
	"denda", "sanksi", "dibekukan", "pencabutan izin",
	"penutupan", "tutup", "dihentikan",
	"krisis", "guncangan", "gagal", "masalah",
}

// Lexicon is an immutable, ordered set of lowercase negative keywords.
type Lexicon struct {
	keywords []string
}

// NewLexicon builds a lexicon from the default list followed by any extra
// keywords. Keywords are lowercased and trimmed; blanks and duplicates are
// dropped, keeping the first occurrence.
func NewLexicon(defaults, extra []string) *Lexicon {
	seen := make(map[string]struct{}, len(defaults)+len(extra))
	keywords := make([]string, 0, len(defaults)+len(extra))

	for _, list := range [][]string{defaults, extra} {
		for _, kw := range list {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}

	return &Lexicon{keywords: keywords}
}

// Keywords returns a copy of the lexicon in scan order.
func (l *Lexicon) Keywords() []string {
	out := make([]string, len(l.keywords))
	copy(out, l.keywords)
	return out
}

// Len returns the number of keywords in the lexicon.
func (l *Lexicon) Len() int {
	return len(l.keywords)
}

// Classifier flags titles containing a negative keyword.
type Classifier struct {
	lexicon *Lexicon
}

// NewClassifier creates a classifier over the given lexicon.
func NewClassifier(lexicon *Lexicon) *Classifier {
	return &Classifier{lexicon: lexicon}
}

// Classify reports whether title contains any lexicon keyword as a
// case-insensitive substring, and which keyword matched first in lexicon
// order. No word boundaries are enforced, so "rugi" matches "kerugian".
func (c *Classifier) Classify(title string) (bool, string) {
	if title == "" || c.lexicon == nil {
		return false, ""
	}

	lower := strings.ToLower(title)
	for _, kw := range c.lexicon.keywords {
		if strings.Contains(lower, kw) {
			return true, kw
		}
	}

	return false, ""
}
