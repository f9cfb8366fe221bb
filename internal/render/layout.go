// Package render lays résumé content out for a template. Rendering is a pure
// function of (content, theme, template): no I/O, no clock, no randomness.
package render

import "curriculo/internal/resume"

// PlaceholderText is shown for sections that have nothing to display.
const PlaceholderText = "Sem conteúdo."

// BlockKind identifies how a block is drawn.
type BlockKind string

const (
	BlockTitle     BlockKind = "title"
	BlockMeta      BlockKind = "meta"
	BlockParagraph BlockKind = "paragraph"
	BlockLink      BlockKind = "link"
	BlockTags      BlockKind = "tags"
	BlockLine      BlockKind = "line"
	BlockField     BlockKind = "field"
)

// Block is one visual line of an item.
type Block struct {
	Kind  BlockKind
	Text  string
	Label string   // BlockField only
	Href  string   // BlockLink only
	Tags  []string // BlockTags only
}

type Item struct {
	ID     string
	Blocks []Block
}

// Section is a section ready to draw.
type Section struct {
	ID              string
	Type            resume.SectionType
	Title           string
	Items           []Item
	Placeholder     bool
	PageBreakBefore bool
	Dense           bool
}

// Header 是抬头区域的渲染结果。
type Header struct {
	FullName string
	Role     string
	Contacts []string
}

// HeaderStyle selects the header treatment.
type HeaderStyle string

const (
	HeaderPlain   HeaderStyle = "plain"
	HeaderHero    HeaderStyle = "hero"
	HeaderBanner  HeaderStyle = "banner"
	HeaderSidebar HeaderStyle = "sidebar"
)

// ColumnMode is the body structure of a layout.
type ColumnMode string

const (
	ColumnsSingle ColumnMode = "single"
	ColumnsSplit  ColumnMode = "split"
	ColumnsGrid   ColumnMode = "grid"
)

// Row is one line of the creative grid. Either slot may be empty.
type Row struct {
	Left  *Section
	Right *Section
}

// Layout is the renderer output consumed by the emitters.
type Layout struct {
	Template    resume.TemplateID
	Params      Params
	Header      Header
	HeaderStyle HeaderStyle
	Columns     ColumnMode
	Cards       bool

	// SidebarPercent is the sidebar width for split layouts.
	SidebarPercent int

	Main    []Section
	Sidebar []Section
	Rows    []Row

	// Flow holds every placed section in content order, for single-column output.
	Flow []Section
}

// Sections returns every section of the layout in reading order: sidebar
// first for split layouts, row by row for grids.
func (l Layout) Sections() []Section {
	switch l.Columns {
	case ColumnsGrid:
		var out []Section
		for _, row := range l.Rows {
			if row.Left != nil {
				out = append(out, *row.Left)
			}
			if row.Right != nil {
				out = append(out, *row.Right)
			}
		}
		return out
	case ColumnsSplit:
		out := make([]Section, 0, len(l.Sidebar)+len(l.Main))
		out = append(out, l.Sidebar...)
		return append(out, l.Main...)
	default:
		return append([]Section(nil), l.Main...)
	}
}
