// Package emit turns a rendered layout into deliverable documents: HTML markup
// for previews and printing, PDF through a print engine, and DOCX.
package emit

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"curriculo/internal/apperror"
	"curriculo/internal/render"
)

var markupTmpl = template.Must(template.New("resume").Funcs(template.FuncMap{
	"placeholder": func() string { return render.PlaceholderText },
}).Parse(markupTemplate))

type markupData struct {
	render.Layout
	Title string
	Vars  template.CSS
}

// cssVars 只使用 ResolveTheme 校验过的值。
func cssVars(l render.Layout) template.CSS {
	p := l.Params
	sidebar := l.SidebarPercent
	if sidebar <= 0 {
		sidebar = 30
	}
	vars := []string{
		"--primary: " + p.PrimaryColor,
		"--secondary: " + p.SecondaryColor,
		"--text: " + p.TextColor,
		"--font-family: " + p.FontFamily,
		fmt.Sprintf("--font-size: %dpx", p.FontSizePx),
		fmt.Sprintf("--line-height: %.2f", p.LineHeight),
		fmt.Sprintf("--section-gap: %dpx", p.SectionGapPx),
		fmt.Sprintf("--item-gap: %dpx", p.ItemGapPx),
		fmt.Sprintf("--padding: %dpx", p.PaddingPx),
		fmt.Sprintf("--sidebar-width: %d%%", sidebar),
	}
	return template.CSS(strings.Join(vars, "; ") + ";")
}

// Markup produces a complete, self-contained HTML document for the layout.
// All user text is escaped.
func Markup(l render.Layout, title string) ([]byte, error) {
	if strings.TrimSpace(title) == "" {
		title = l.Header.FullName
	}
	data := markupData{Layout: l, Title: title, Vars: cssVars(l)}

	var buf bytes.Buffer
	if err := markupTmpl.Execute(&buf, data); err != nil {
		return nil, apperror.Internal("failed to build document markup", err)
	}
	return buf.Bytes(), nil
}
