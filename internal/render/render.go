package render

import (
	"curriculo/internal/normalize"
	"curriculo/internal/resume"
)

var defaultRegistry = DefaultRegistry()

// Render lays content out for templateID using the built-in strategies.
// Unknown template ids render as minimal.
func Render(content resume.Content, theme resume.Theme, templateID resume.TemplateID) Layout {
	return RenderWith(defaultRegistry, normalize.DefaultRules(), content, theme, templateID)
}

// RenderWith is Render with an explicit registry and sidebar rules.
func RenderWith(reg *Registry, rules *normalize.Rules, content resume.Content, theme resume.Theme, templateID resume.TemplateID) Layout {
	strategy, err := reg.Get(templateID)
	if err != nil {
		templateID = resume.TemplateMinimal
		strategy, err = reg.Get(templateID)
		if err != nil {
			strategy = minimalStrategy{}
		}
	}

	layout := strategy.Arrange(content.Sections, rules)
	layout.Template = templateID
	layout.Params = ResolveTheme(theme)
	layout.Header = formatHeader(content.Header)
	layout.Flow = inContentOrder(content.Sections, layout.Sections())
	return layout
}

// inContentOrder 按内容中的顺序重排已排版的章节；未被放置的章节跳过。
func inContentOrder(sections []resume.Section, placed []Section) []Section {
	byID := make(map[string][]Section, len(placed))
	for _, s := range placed {
		byID[s.ID] = append(byID[s.ID], s)
	}
	out := make([]Section, 0, len(placed))
	for _, s := range sections {
		if queue := byID[s.ID]; len(queue) > 0 {
			out = append(out, queue[0])
			byID[s.ID] = queue[1:]
		}
	}
	return out
}
