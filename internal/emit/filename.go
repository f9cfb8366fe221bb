package emit

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"curriculo/internal/resume"
)

const fallbackBaseName = "Curriculo"

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	repeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename keeps ASCII letters, digits, '_' and '-'. Accents are
// folded first so "João" becomes "Joao".
func SanitizeFilename(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	out := unsafeFilenameChars.ReplaceAllString(folded, "_")
	out = repeatedUnderscores.ReplaceAllString(out, "_")
	out = strings.Trim(out, "_")
	if out == "" {
		return fallbackBaseName
	}
	return out
}

// FileBaseName returns Curriculo_<name>_<YYYY-MM-DD> where name is the
// header full name, else the resume title.
func FileBaseName(header resume.HeaderContent, title string, now time.Time) string {
	source := strings.TrimSpace(header.FullName)
	if source == "" {
		source = strings.TrimSpace(title)
	}
	if source == "" {
		source = fallbackBaseName
	}
	return "Curriculo_" + SanitizeFilename(source) + "_" + now.UTC().Format("2006-01-02")
}
