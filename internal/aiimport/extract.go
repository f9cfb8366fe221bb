package aiimport

import (
	"regexp"
	"strings"

	"curriculo/internal/apperror"
	"curriculo/internal/normalize"
)

var (
	leadingJSONFence = regexp.MustCompile("(?i)^```json\\s*")
	leadingFence     = regexp.MustCompile("^```\\s*")
	trailingFence    = regexp.MustCompile("\\s*```$")
)

// ExtractJSON parses the model's answer. Markdown code fences are stripped;
// if the rest still is not JSON, the span from the first '{' to the last '}'
// is tried. Object key order is preserved.
func ExtractJSON(text string) (any, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = leadingJSONFence.ReplaceAllString(cleaned, "")
	cleaned = leadingFence.ReplaceAllString(cleaned, "")
	cleaned = trailingFence.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if v, err := normalize.Decode([]byte(cleaned)); err == nil {
		return v, nil
	}

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first == -1 || last <= first {
		return nil, apperror.Upstream("AI returned an invalid format", nil)
	}
	v, err := normalize.Decode([]byte(cleaned[first : last+1]))
	if err != nil {
		return nil, apperror.Upstream("could not parse the AI JSON", err)
	}
	return v, nil
}
