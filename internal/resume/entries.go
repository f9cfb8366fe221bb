package resume

import "strings"

// Entry is the typed view of a SectionItem. Each section type has its own
// variant; only CustomEntry keeps a free-form field map.
type Entry interface {
	Type() SectionType
}

type SummaryEntry struct {
	Text string
}

type ExperienceEntry struct {
	Role        string
	Company     string
	StartDate   string
	EndDate     string
	Location    string
	Description string
}

type EducationEntry struct {
	Degree      string
	Institution string
	StartDate   string
	EndDate     string
	Description string
}

// SkillsEntry holds a comma, semicolon or newline separated list.
type SkillsEntry struct {
	Name string
}

type ProjectEntry struct {
	Name        string
	Link        string
	Description string
}

type CertificationEntry struct {
	Name   string
	Issuer string
	Year   string
}

type LanguageEntry struct {
	Language string
	Level    string
}

type CustomEntry struct {
	Fields Fields
}

func (SummaryEntry) Type() SectionType       { return SectionSummary }
func (ExperienceEntry) Type() SectionType    { return SectionExperience }
func (EducationEntry) Type() SectionType     { return SectionEducation }
func (SkillsEntry) Type() SectionType        { return SectionSkills }
func (ProjectEntry) Type() SectionType       { return SectionProjects }
func (CertificationEntry) Type() SectionType { return SectionCertifications }
func (LanguageEntry) Type() SectionType      { return SectionLanguages }
func (CustomEntry) Type() SectionType        { return SectionCustom }

// List splits the skill string into trimmed, non-empty names.
func (e SkillsEntry) List() []string {
	parts := strings.FieldsFunc(e.Name, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var fieldKeys = map[SectionType][]string{
	SectionSummary:        {"text"},
	SectionExperience:     {"role", "company", "startDate", "endDate", "location", "description"},
	SectionEducation:      {"degree", "institution", "startDate", "endDate", "description"},
	SectionSkills:         {"name"},
	SectionProjects:       {"name", "link", "description"},
	SectionCertifications: {"name", "issuer", "year"},
	SectionLanguages:      {"language", "level"},
}

// FieldKeys returns the canonical field keys of a typed section, in order.
// Custom sections have no fixed keys and return nil.
func FieldKeys(t SectionType) []string {
	keys := fieldKeys[t]
	if keys == nil {
		return nil
	}
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Decode projects an item onto the variant for the section type.
func Decode(t SectionType, item SectionItem) Entry {
	f := item.Fields
	switch t {
	case SectionSummary:
		return SummaryEntry{Text: f.Get("text")}
	case SectionExperience:
		return ExperienceEntry{
			Role:        f.Get("role"),
			Company:     f.Get("company"),
			StartDate:   f.Get("startDate"),
			EndDate:     f.Get("endDate"),
			Location:    f.Get("location"),
			Description: f.Get("description"),
		}
	case SectionEducation:
		return EducationEntry{
			Degree:      f.Get("degree"),
			Institution: f.Get("institution"),
			StartDate:   f.Get("startDate"),
			EndDate:     f.Get("endDate"),
			Description: f.Get("description"),
		}
	case SectionSkills:
		return SkillsEntry{Name: f.Get("name")}
	case SectionProjects:
		return ProjectEntry{Name: f.Get("name"), Link: f.Get("link"), Description: f.Get("description")}
	case SectionCertifications:
		return CertificationEntry{Name: f.Get("name"), Issuer: f.Get("issuer"), Year: f.Get("year")}
	case SectionLanguages:
		return LanguageEntry{Language: f.Get("language"), Level: f.Get("level")}
	default:
		return CustomEntry{Fields: f.Clone()}
	}
}
