package render

import (
	"curriculo/internal/normalize"
	"curriculo/internal/resume"
)

// Params are the concrete drawing parameters resolved from a theme.
type Params struct {
	PrimaryColor   string
	SecondaryColor string
	TextColor      string
	FontFamily     string
	FontSizePx     int
	LineHeight     float64
	SectionGapPx   int
	ItemGapPx      int
	PaddingPx      int

	// Word-processor units: spacing in twentieths of a point, name size in
	// half points.
	ParagraphAfter int
	LineSpacing    int
	NameSize       int
}

var fontStacks = map[resume.Font]string{
	resume.FontSourceSans:   "'Source Sans 3', Arial, sans-serif",
	resume.FontMerriweather: "'Merriweather', Georgia, serif",
	resume.FontMontserrat:   "'Montserrat', Helvetica, sans-serif",
}

// ResolveTheme turns theme scalars into drawing parameters. Invalid values
// resolve as the default theme would.
func ResolveTheme(t resume.Theme) Params {
	def := resume.DefaultTheme()
	p := Params{
		PrimaryColor:   normalize.NormalizeColor(t.PrimaryColor, def.PrimaryColor),
		SecondaryColor: normalize.NormalizeColor(t.SecondaryColor, def.SecondaryColor),
		TextColor:      normalize.NormalizeColor(t.TextColor, def.TextColor),
	}

	font := t.Font
	if !font.Valid() {
		font = def.Font
	}
	p.FontFamily = fontStacks[font]

	if t.FontSizeLevel == resume.FontSizeLarge {
		p.FontSizePx = 16
		p.NameSize = 42
	} else {
		p.FontSizePx = 14
		p.NameSize = 36
	}

	if t.Spacing == resume.SpacingCompact {
		p.SectionGapPx, p.ItemGapPx, p.PaddingPx = 10, 6, 20
		p.LineHeight = 1.35
		p.ParagraphAfter, p.LineSpacing = 120, 260
	} else {
		p.SectionGapPx, p.ItemGapPx, p.PaddingPx = 16, 12, 28
		p.LineHeight = 1.5
		p.ParagraphAfter, p.LineSpacing = 190, 300
	}
	return p
}
