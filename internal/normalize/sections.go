package normalize

import (
	"curriculo/internal/resume"
)

func (n *Normalizer) normalizeSections(v any, fallback []resume.Section) []resume.Section {
	raw, ok := asArray(v)
	if !ok || len(raw) == 0 {
		return cloneSections(fallback)
	}
	if len(raw) > MaxSections {
		raw = raw[:MaxSections]
	}

	out := make([]resume.Section, 0, len(raw))
	for _, entry := range raw {
		obj, ok := asObject(entry)
		if !ok {
			continue
		}
		out = append(out, n.normalizeSection(obj))
	}
	if len(out) == 0 {
		return cloneSections(fallback)
	}
	return out
}

func (n *Normalizer) normalizeSection(obj Object) resume.Section {
	typeHint, _ := obj.value("type").(string)
	title := safeText(obj.value("title"), maxSectionTitle)
	if Token(typeHint) == "" {
		typeHint = title
	}
	st := n.rules.InferSectionType(typeHint)
	if title == "" {
		title = resume.DefaultTitle(st)
	}

	column := resume.ColumnAuto
	if s, ok := obj.value("layoutColumn").(string); ok {
		column = resume.LayoutColumn(s).Normalize()
	}
	pageBreak, _ := obj.value("pageBreakBefore").(bool)

	return resume.Section{
		ID:              n.newID(),
		Type:            st,
		Title:           title,
		Items:           n.normalizeItems(st, obj.value("items")),
		PageBreakBefore: pageBreak,
		LayoutColumn:    column,
	}
}

func (n *Normalizer) normalizeItems(st resume.SectionType, v any) []resume.SectionItem {
	raw, _ := asArray(v)
	if len(raw) > MaxItemsPerSection {
		raw = raw[:MaxItemsPerSection]
	}

	out := make([]resume.SectionItem, 0, len(raw))
	for _, entry := range raw {
		obj, ok := asObject(entry)
		if !ok {
			continue
		}
		source := obj
		if nested, ok := asObject(obj.value("fields")); ok {
			source = nested
		}

		var fields resume.Fields
		if st == resume.SectionCustom {
			fields = customFields(source)
		} else {
			fields = n.typedFields(st, source)
		}
		if !fields.HasValue() {
			continue
		}
		out = append(out, resume.SectionItem{ID: n.newID(), Fields: fields})
	}

	if len(out) == 0 {
		return []resume.SectionItem{{ID: n.newID(), Fields: resume.EmptyFields(st)}}
	}
	return out
}

// typedFields resolves each canonical key directly, then through the alias
// table against the normalized keys of the source.
func (n *Normalizer) typedFields(st resume.SectionType, source Object) resume.Fields {
	lookup := make(map[string]string, len(source))
	for _, m := range source {
		key := Token(m.Key)
		if key == "" {
			continue
		}
		if value := safeText(m.Value, MaxFieldLength); value != "" {
			lookup[key] = value
		}
	}

	keys := resume.FieldKeys(st)
	fields := make(resume.Fields, 0, len(keys))
	for _, key := range keys {
		value := safeText(source.value(key), MaxFieldLength)
		if value == "" {
			for _, alias := range n.rules.Aliases(key) {
				if hit := lookup[alias]; hit != "" {
					value = hit
					break
				}
			}
		}
		fields = append(fields, resume.Field{Key: key, Value: value})
	}
	return fields
}

// customFields keeps source keys verbatim (sanitized) in source order.
func customFields(source Object) resume.Fields {
	if len(source) > maxCustomFields {
		source = source[:maxCustomFields]
	}
	var fields resume.Fields
	for _, m := range source {
		key := customKey(m.Key)
		value := safeText(m.Value, MaxFieldLength)
		if key == "" || value == "" {
			continue
		}
		fields = fields.Set(key, value)
	}
	return fields
}

func cloneSections(in []resume.Section) []resume.Section {
	return resume.Content{Sections: in}.Clone().Sections
}
