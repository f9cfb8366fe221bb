package emit

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"curriculo/internal/apperror"
	"curriculo/internal/render"
	"curriculo/internal/resume"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

	packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

	wordNamespace = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

	itemLineAfter = 60
	// A4 in twips.
	pageWidthTwips  = 11906
	pageHeightTwips = 16838
	pageMarginTwips = 1134
)

// DocxContentType is the MIME type of DOCX output.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DOCX writes the layout as a WordprocessingML package. The professional
// template becomes a single two-cell table; every other template is one
// flowing column in content order.
func DOCX(l render.Layout) ([]byte, error) {
	w := &docxWriter{params: l.Params}

	if l.Template == resume.TemplateProfessional {
		w.professional(l)
	} else {
		w.header(l.Header)
		for _, s := range l.Flow {
			w.section(s)
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", w.styles()},
		{"word/document.xml", w.document()},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return nil, apperror.Internal("failed to build docx", err)
		}
		if _, err := f.Write([]byte(p.body)); err != nil {
			return nil, apperror.Internal("failed to build docx", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, apperror.Internal("failed to build docx", err)
	}
	return buf.Bytes(), nil
}

type run struct {
	text   string
	bold   bool
	italic bool
	color  string
	size   int
}

type paragraph struct {
	style     string
	after     int
	line      int
	pageBreak bool
	runs      []run
}

type docxWriter struct {
	params render.Params
	body   strings.Builder
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func hexColor(c string) string { return strings.ToUpper(strings.TrimPrefix(c, "#")) }

// docxFont picks the first family of the CSS font stack.
func docxFont(stack string) string {
	first, _, _ := strings.Cut(stack, ",")
	return strings.Trim(strings.TrimSpace(first), `'"`)
}

func (w *docxWriter) write(p paragraph) {
	b := &w.body
	b.WriteString("<w:p><w:pPr>")
	if p.style != "" {
		fmt.Fprintf(b, `<w:pStyle w:val="%s"/>`, p.style)
	}
	if p.pageBreak {
		b.WriteString("<w:pageBreakBefore/>")
	}
	if p.line > 0 {
		fmt.Fprintf(b, `<w:spacing w:after="%d" w:line="%d" w:lineRule="auto"/>`, p.after, p.line)
	} else {
		fmt.Fprintf(b, `<w:spacing w:after="%d"/>`, p.after)
	}
	b.WriteString("</w:pPr>")

	for _, r := range p.runs {
		b.WriteString("<w:r>")
		if r.bold || r.italic || r.color != "" || r.size > 0 {
			b.WriteString("<w:rPr>")
			if r.bold {
				b.WriteString("<w:b/>")
			}
			if r.italic {
				b.WriteString("<w:i/>")
			}
			if r.color != "" {
				fmt.Fprintf(b, `<w:color w:val="%s"/>`, hexColor(r.color))
			}
			if r.size > 0 {
				fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.size, r.size)
			}
			b.WriteString("</w:rPr>")
		}
		for i, line := range strings.Split(r.text, "\n") {
			if i > 0 {
				b.WriteString("<w:br/>")
			}
			fmt.Fprintf(b, `<w:t xml:space="preserve">%s</w:t>`, escape(line))
		}
		b.WriteString("</w:r>")
	}
	b.WriteString("</w:p>")
}

func (w *docxWriter) header(h render.Header) {
	w.write(paragraph{
		style: "Title",
		after: 120,
		runs:  []run{{text: h.FullName, bold: true, color: w.params.SecondaryColor, size: w.params.NameSize}},
	})
	if h.Role != "" {
		w.write(paragraph{after: 120, runs: []run{{text: h.Role}}})
	}
	if len(h.Contacts) > 0 {
		w.write(paragraph{after: w.params.ParagraphAfter, runs: []run{{text: strings.Join(h.Contacts, " | ")}}})
	}
}

func (w *docxWriter) heading(title string, pageBreak bool) {
	w.write(paragraph{
		style:     "Heading2",
		after:     w.params.ParagraphAfter,
		pageBreak: pageBreak,
		runs:      []run{{text: title, bold: true, color: w.params.PrimaryColor}},
	})
}

func blockRuns(b render.Block) []run {
	switch b.Kind {
	case render.BlockTitle:
		return []run{{text: b.Text, bold: true}}
	case render.BlockMeta:
		return []run{{text: b.Text, italic: true, color: "#4F5F72"}}
	case render.BlockTags:
		return []run{{text: strings.Join(b.Tags, ", ")}}
	case render.BlockField:
		return []run{{text: b.Label + ": ", bold: true}, {text: b.Text}}
	default:
		return []run{{text: b.Text}}
	}
}

func (w *docxWriter) section(s render.Section) {
	w.heading(s.Title, s.PageBreakBefore)

	if s.Placeholder {
		w.write(paragraph{after: w.params.ParagraphAfter, runs: []run{{text: render.PlaceholderText, italic: true}}})
		return
	}
	for _, item := range s.Items {
		for i, block := range item.Blocks {
			after := itemLineAfter
			if i == len(item.Blocks)-1 {
				after = w.params.ParagraphAfter
			}
			w.write(paragraph{after: after, line: w.params.LineSpacing, runs: blockRuns(block)})
		}
	}
}

// professional 使用一行两列的表格：左侧 31% 为联系方式与侧栏，右侧 69% 为正文。
func (w *docxWriter) professional(l render.Layout) {
	border := hexColor(l.Params.PrimaryColor)
	b := &w.body

	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/><w:tblLayout w:type="fixed"/>`)
	b.WriteString(`<w:tblBorders><w:top w:val="nil"/><w:left w:val="nil"/><w:bottom w:val="nil"/><w:right w:val="nil"/><w:insideH w:val="nil"/><w:insideV w:val="nil"/></w:tblBorders>`)
	b.WriteString(`</w:tblPr><w:tblGrid><w:gridCol w:w="3183"/><w:gridCol w:w="7085"/></w:tblGrid><w:tr>`)

	fmt.Fprintf(b, `<w:tc><w:tcPr><w:tcW w:w="1550" w:type="pct"/><w:tcBorders><w:right w:val="single" w:sz="6" w:space="0" w:color="%s"/></w:tcBorders></w:tcPr>`, border)
	w.heading("Contato", false)
	for _, c := range l.Header.Contacts {
		w.write(paragraph{after: itemLineAfter, runs: []run{{text: c}}})
	}
	for _, s := range l.Sidebar {
		w.section(s)
	}
	b.WriteString("</w:tc>")

	b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="3450" w:type="pct"/></w:tcPr>`)
	w.header(l.Header)
	for _, s := range l.Main {
		w.section(s)
	}
	b.WriteString("</w:tc></w:tr></w:tbl>")
	// A body must end with a paragraph after a table.
	w.write(paragraph{})
}

func (w *docxWriter) document() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	fmt.Fprintf(&b, `<w:document %s><w:body>`, wordNamespace)
	b.WriteString(w.body.String())
	fmt.Fprintf(&b, `<w:sectPr><w:pgSz w:w="%d" w:h="%d"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="0" w:footer="0" w:gutter="0"/></w:sectPr>`,
		pageWidthTwips, pageHeightTwips, pageMarginTwips, pageMarginTwips, pageMarginTwips, pageMarginTwips)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func (w *docxWriter) styles() string {
	font := escape(docxFont(w.params.FontFamily))
	size := w.params.FontSizePx * 3 / 2
	text := hexColor(w.params.TextColor)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	fmt.Fprintf(&b, `<w:styles %s>`, wordNamespace)
	fmt.Fprintf(&b, `<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/><w:color w:val="%s"/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr></w:rPrDefault></w:docDefaults>`,
		font, font, font, text, size, size)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>`)
	b.WriteString(`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/><w:pPr><w:outlineLvl w:val="0"/></w:pPr></w:style>`)
	fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/><w:pPr><w:keepNext/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="%d"/></w:rPr></w:style>`, size+4)
	b.WriteString(`</w:styles>`)
	return b.String()
}
