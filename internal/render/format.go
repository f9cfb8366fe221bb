package render

import (
	"strings"

	"curriculo/internal/resume"
)

func joinNonEmpty(sep string, values ...string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

func appendBlock(blocks []Block, kind BlockKind, text string) []Block {
	text = strings.TrimSpace(text)
	if text == "" {
		return blocks
	}
	return append(blocks, Block{Kind: kind, Text: text})
}

// FormatItem renders one item according to its section type. Dense contexts
// (sidebars) draw skills as plain text instead of chips. Empty fields produce
// no blocks.
func FormatItem(st resume.SectionType, item resume.SectionItem, dense bool) Item {
	out := Item{ID: item.ID}
	var b []Block

	switch e := resume.Decode(st, item).(type) {
	case resume.SummaryEntry:
		b = appendBlock(b, BlockParagraph, e.Text)
	case resume.ExperienceEntry:
		b = appendBlock(b, BlockTitle, joinNonEmpty(" - ", e.Role, e.Company))
		period := joinNonEmpty(" - ", e.StartDate, e.EndDate)
		b = appendBlock(b, BlockMeta, joinNonEmpty(" | ", period, e.Location))
		b = appendBlock(b, BlockParagraph, e.Description)
	case resume.EducationEntry:
		b = appendBlock(b, BlockTitle, e.Degree)
		period := joinNonEmpty(" - ", e.StartDate, e.EndDate)
		b = appendBlock(b, BlockMeta, joinNonEmpty(" | ", e.Institution, period))
		b = appendBlock(b, BlockParagraph, e.Description)
	case resume.SkillsEntry:
		skills := e.List()
		if len(skills) > 0 {
			if dense {
				b = append(b, Block{Kind: BlockParagraph, Text: strings.Join(skills, ", ")})
			} else {
				b = append(b, Block{Kind: BlockTags, Tags: skills})
			}
		}
	case resume.ProjectEntry:
		b = appendBlock(b, BlockTitle, e.Name)
		if link := strings.TrimSpace(e.Link); link != "" {
			b = append(b, Block{Kind: BlockLink, Text: link, Href: link})
		}
		b = appendBlock(b, BlockParagraph, e.Description)
	case resume.CertificationEntry:
		b = appendBlock(b, BlockTitle, e.Name)
		b = appendBlock(b, BlockMeta, certificationMeta(e.Issuer, e.Year))
	case resume.LanguageEntry:
		b = appendBlock(b, BlockLine, joinNonEmpty(": ", e.Language, e.Level))
	case resume.CustomEntry:
		for _, f := range e.Fields {
			value := strings.TrimSpace(f.Value)
			if value == "" {
				continue
			}
			b = append(b, Block{Kind: BlockField, Label: f.Key, Text: value})
		}
	}

	out.Blocks = b
	return out
}

func certificationMeta(issuer, year string) string {
	issuer, year = strings.TrimSpace(issuer), strings.TrimSpace(year)
	switch {
	case issuer != "" && year != "":
		return issuer + " (" + year + ")"
	case year != "":
		return "(" + year + ")"
	default:
		return issuer
	}
}

// formatSection formats all items. A section without any visible block is
// flagged as a placeholder.
func formatSection(s resume.Section, dense bool) Section {
	out := Section{
		ID:              s.ID,
		Type:            s.Type,
		Title:           strings.TrimSpace(s.Title),
		PageBreakBefore: s.PageBreakBefore,
		Dense:           dense,
	}
	if out.Title == "" {
		out.Title = resume.DefaultTitle(s.Type)
	}
	for _, item := range s.Items {
		formatted := FormatItem(s.Type, item, dense)
		if len(formatted.Blocks) == 0 {
			continue
		}
		out.Items = append(out.Items, formatted)
	}
	out.Placeholder = len(out.Items) == 0
	return out
}

func formatHeader(h resume.HeaderContent) Header {
	out := Header{
		FullName: strings.TrimSpace(h.FullName),
		Role:     strings.TrimSpace(h.Role),
	}
	for _, v := range []string{h.Email, h.Phone, h.Location, h.Website, h.LinkedIn, h.Github} {
		if v = strings.TrimSpace(v); v != "" {
			out.Contacts = append(out.Contacts, v)
		}
	}
	return out
}
