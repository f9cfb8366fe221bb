// Package normalize coerces loosely shaped input, usually the JSON a
// generative model produced from an uploaded résumé, into the strict content
// schema. It never fails on bad shape: every field falls back to the caller's
// current value.
package normalize

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"curriculo/internal/resume"
)

// Current is the state the import falls back to, field by field.
type Current struct {
	Title      string
	TemplateID resume.TemplateID
	Content    resume.Content
	Theme      resume.Theme
}

// Normalizer applies a rule set. The zero value is not usable; use New.
type Normalizer struct {
	rules *Rules
	newID func() string
}

// New returns a Normalizer using rules, or the embedded defaults when nil.
func New(rules *Rules) *Normalizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Normalizer{rules: rules, newID: uuid.NewString}
}

// Normalize runs the default Normalizer.
func Normalize(draft any, current Current) resume.Snapshot {
	return New(nil).Normalize(draft, current)
}

// Normalize maps draft onto a valid snapshot. Header, sections and theme may
// sit at the top level or under a "content" node; top level wins.
func (n *Normalizer) Normalize(draft any, current Current) resume.Snapshot {
	root, _ := asObject(draft)
	contentNode, _ := asObject(root.value("content"))

	rawHeader := firstPresent(root, contentNode, "header")
	rawSections := firstPresent(root, contentNode, "sections")
	rawTheme := firstPresent(root, contentNode, "theme")

	fallbackTheme := sanitizeTheme(current.Theme)
	fallbackTemplate := current.TemplateID
	if !fallbackTemplate.Valid() {
		fallbackTemplate = resume.TemplateMinimal
	}

	fallback := current.Content.Clone()
	fallbackSections := fallback.Sections
	if len(fallbackSections) == 0 {
		fallbackSections = resume.DefaultContent().Sections
	}

	title := safeText(root.value("title"), maxTitle)
	if title == "" {
		title = current.Title
	}

	return resume.Snapshot{
		Title:      title,
		TemplateID: normalizeTemplateID(root.value("templateId"), fallbackTemplate),
		Content: resume.Content{
			Header:   normalizeHeader(rawHeader, fallback.Header),
			Sections: n.normalizeSections(rawSections, fallbackSections),
		},
		Theme: normalizeTheme(rawTheme, fallbackTheme),
	}
}

func firstPresent(primary, secondary Object, key string) any {
	if v, ok := primary.Get(key); ok && v != nil {
		return v
	}
	v, _ := secondary.Get(key)
	return v
}

func normalizeTemplateID(v any, fallback resume.TemplateID) resume.TemplateID {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	id := resume.TemplateID(strings.TrimSpace(s))
	if id.Valid() {
		return id
	}
	return fallback
}

func normalizeHeader(v any, fallback resume.HeaderContent) resume.HeaderContent {
	src, _ := asObject(v)
	pick := func(value string, fb string) string {
		if value != "" {
			return value
		}
		return fb
	}
	linkedIn, ok := src.Get("linkedIn")
	if !ok || linkedIn == nil {
		linkedIn = src.value("linkedin")
	}
	return resume.HeaderContent{
		FullName: pick(headerText(src.value("fullName"), 120), fallback.FullName),
		Role:     pick(headerText(src.value("role"), 120), fallback.Role),
		Email:    pick(headerText(src.value("email"), 120), fallback.Email),
		Phone:    pick(headerText(src.value("phone"), 80), fallback.Phone),
		Location: pick(headerText(src.value("location"), 120), fallback.Location),
		Website:  pick(headerText(src.value("website"), 160), fallback.Website),
		LinkedIn: pick(headerText(linkedIn, 160), fallback.LinkedIn),
		Github:   pick(headerText(src.value("github"), 160), fallback.Github),
	}
}

var (
	hex6 = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	hex3 = regexp.MustCompile(`^#[0-9A-Fa-f]{3}$`)
)

// NormalizeColor accepts 3 or 6 hex digits with or without a leading '#'
// and returns the upper-case 6-digit form, or fallback.
func NormalizeColor(v any, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	token := strings.TrimSpace(s)
	if token == "" {
		return fallback
	}
	if !strings.HasPrefix(token, "#") {
		token = "#" + token
	}
	switch {
	case hex6.MatchString(token):
		return strings.ToUpper(token)
	case hex3.MatchString(token):
		r, g, b := token[1:2], token[2:3], token[3:4]
		return strings.ToUpper("#" + r + r + g + g + b + b)
	default:
		return fallback
	}
}

func normalizeTheme(v any, fallback resume.Theme) resume.Theme {
	src, _ := asObject(v)
	out := resume.Theme{
		PrimaryColor:   NormalizeColor(src.value("primaryColor"), fallback.PrimaryColor),
		SecondaryColor: NormalizeColor(src.value("secondaryColor"), fallback.SecondaryColor),
		TextColor:      NormalizeColor(src.value("textColor"), fallback.TextColor),
		Font:           fallback.Font,
		Spacing:        fallback.Spacing,
		FontSizeLevel:  fallback.FontSizeLevel,
	}
	if s, ok := src.value("font").(string); ok && resume.Font(s).Valid() {
		out.Font = resume.Font(s)
	}
	if s, ok := src.value("spacing").(string); ok && resume.Spacing(s).Valid() {
		out.Spacing = resume.Spacing(s)
	}
	if s, ok := src.value("fontSizeLevel").(string); ok && resume.FontSizeLevel(s).Valid() {
		out.FontSizeLevel = resume.FontSizeLevel(s)
	}
	return out
}

// sanitizeTheme repairs a fallback theme so the result is always valid even
// when the caller's own theme is not.
func sanitizeTheme(t resume.Theme) resume.Theme {
	def := resume.DefaultTheme()
	return resume.Theme{
		PrimaryColor:   NormalizeColor(t.PrimaryColor, def.PrimaryColor),
		SecondaryColor: NormalizeColor(t.SecondaryColor, def.SecondaryColor),
		TextColor:      NormalizeColor(t.TextColor, def.TextColor),
		Font:           validOr(t.Font, def.Font),
		Spacing:        validOr(t.Spacing, def.Spacing),
		FontSizeLevel:  validOr(t.FontSizeLevel, def.FontSizeLevel),
	}
}

func validOr[T interface{ Valid() bool }](v, fallback T) T {
	if v.Valid() {
		return v
	}
	return fallback
}
