package normalize

import (
	"encoding/json"
	"html"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxSections        = 10
	MaxItemsPerSection = 12
	MaxFieldLength     = 400

	maxCustomFields    = 8
	maxCustomKeyLength = 30
	maxSectionTitle    = 60
	maxTitle           = 120
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

func stripPolicy() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		markupPolicy = bluemonday.StrictPolicy()
	})
	return markupPolicy
}

// Token strips diacritics, lower-cases and keeps only ASCII letters and digits.
func Token(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// safeText converts a loose value into a single-line string capped at limit
// runes. Only strings and numbers are accepted; anything else is "".
func safeText(v any, limit int) string {
	var s string
	switch value := v.(type) {
	case string:
		s = value
	case json.Number:
		s = value.String()
	case float64:
		s = strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
	if strings.ContainsRune(s, '<') {
		s = html.UnescapeString(stripPolicy().Sanitize(s))
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return truncate(s, limit)
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// headerText is safeText restricted to strings.
func headerText(v any, limit int) string {
	if _, ok := v.(string); !ok {
		return ""
	}
	return safeText(v, limit)
}

// customKey turns a free-form key into an identifier-safe token.
func customKey(key string) string {
	k := safeText(key, maxCustomKeyLength)
	return strings.Join(strings.Fields(k), "_")
}
