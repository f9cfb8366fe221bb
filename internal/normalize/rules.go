package normalize

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"curriculo/internal/resume"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// TypeKeywords maps a section type to the tokens that select it.
type TypeKeywords struct {
	Type     resume.SectionType `yaml:"type"`
	Keywords []string           `yaml:"keywords"`
}

// Rules holds the keyword and alias tables used for inference. Every keyword
// and alias is stored as a normalized token.
type Rules struct {
	SectionKeywords []TypeKeywords      `yaml:"section_keywords"`
	FieldAliases    map[string][]string `yaml:"field_aliases"`
	SidebarHints    []string            `yaml:"sidebar_hints"`
}

var (
	defaultOnce  sync.Once
	defaultRules *Rules
	defaultErr   error
)

// DefaultRules returns the embedded rule set. It panics if the embedded file
// is malformed, which is a build defect.
func DefaultRules() *Rules {
	defaultOnce.Do(func() {
		defaultRules, defaultErr = ParseRules(defaultRulesYAML)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultRules
}

// ParseRules decodes a YAML rule document and tokenizes its entries.
func ParseRules(data []byte) (*Rules, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("normalize: rules document is empty")
	}
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("normalize: parse rules: %w", err)
	}
	for i, tk := range r.SectionKeywords {
		if !tk.Type.Valid() || tk.Type == resume.SectionCustom {
			return nil, fmt.Errorf("normalize: rules entry %d has unusable type %q", i, tk.Type)
		}
		r.SectionKeywords[i].Keywords = tokenizeAll(tk.Keywords)
	}
	for key, aliases := range r.FieldAliases {
		r.FieldAliases[key] = tokenizeAll(aliases)
	}
	r.SidebarHints = tokenizeAll(r.SidebarHints)
	return &r, nil
}

func tokenizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if t := Token(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// InferSectionType picks a section type from a free-form type or title string.
// Anything unmatched is custom.
func (r *Rules) InferSectionType(raw string) resume.SectionType {
	token := Token(raw)
	if token == "" {
		return resume.SectionCustom
	}
	for _, tk := range r.SectionKeywords {
		for _, kw := range tk.Keywords {
			if strings.Contains(token, kw) {
				return tk.Type
			}
		}
	}
	return resume.SectionCustom
}

// Aliases returns the alias tokens for a canonical field key. Unknown keys
// alias only themselves.
func (r *Rules) Aliases(key string) []string {
	if aliases, ok := r.FieldAliases[key]; ok && len(aliases) > 0 {
		return aliases
	}
	return []string{Token(key)}
}

// IsSidebarTitle reports whether a custom section title hints at sidebar
// content such as contact details.
func (r *Rules) IsSidebarTitle(title string) bool {
	token := Token(title)
	if token == "" {
		return false
	}
	for _, hint := range r.SidebarHints {
		if strings.Contains(token, hint) {
			return true
		}
	}
	return false
}
