package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"curriculo/internal/normalize"
	"curriculo/internal/resume"
)

func section(id string, st resume.SectionType, title string, col resume.LayoutColumn, fields ...string) resume.Section {
	return resume.Section{
		ID:           id,
		Type:         st,
		Title:        title,
		LayoutColumn: col,
		Items:        []resume.SectionItem{{ID: id + "-1", Fields: resume.NewFields(fields...)}},
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	content := resume.DefaultContent()
	theme := resume.DefaultTheme()
	for _, id := range resume.TemplateIDs {
		first := Render(content, theme, id)
		second := Render(content, theme, id)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("%s: render not deterministic (-first +second):\n%s", id, diff)
		}
	}
}

func TestUnknownTemplateRendersMinimal(t *testing.T) {
	l := Render(resume.DefaultContent(), resume.DefaultTheme(), "brutalist")
	if l.Template != resume.TemplateMinimal || l.Columns != ColumnsSingle {
		t.Fatalf("expected minimal single column, got %s/%s", l.Template, l.Columns)
	}
}

func TestSidebarClassification(t *testing.T) {
	rules := normalize.DefaultRules()
	cases := []struct {
		section resume.Section
		want    bool
	}{
		{section("s", resume.SectionSkills, "Tudo", resume.ColumnAuto), true},
		{section("l", resume.SectionLanguages, "Idiomas", resume.ColumnAuto), true},
		{section("c", resume.SectionCertifications, "", resume.ColumnAuto), true},
		{section("x", resume.SectionCustom, "Contato", resume.ColumnAuto), true},
		{section("p", resume.SectionCustom, "Dados Pessoais", resume.ColumnAuto), true},
		{section("a", resume.SectionCustom, "Prêmios", resume.ColumnAuto), false},
		{section("e", resume.SectionExperience, "Contato", resume.ColumnAuto), false},
	}
	for _, tc := range cases {
		if got := IsSidebar(tc.section, rules); got != tc.want {
			t.Fatalf("%s %q: got %v want %v", tc.section.Type, tc.section.Title, got, tc.want)
		}
	}
}

func TestProfessionalSplitsSidebar(t *testing.T) {
	content := resume.Content{Sections: []resume.Section{
		section("exp", resume.SectionExperience, "Experiência", resume.ColumnAuto, "role", "Dev"),
		section("sk", resume.SectionSkills, "Habilidades", resume.ColumnAuto, "name", "Go, SQL"),
	}}
	l := Render(content, resume.DefaultTheme(), resume.TemplateProfessional)
	if l.SidebarPercent != 30 || len(l.Sidebar) != 1 || len(l.Main) != 1 {
		t.Fatalf("unexpected split: %d%% sidebar=%d main=%d", l.SidebarPercent, len(l.Sidebar), len(l.Main))
	}
	sk := l.Sidebar[0]
	if !sk.Dense || sk.Items[0].Blocks[0].Kind != BlockParagraph || sk.Items[0].Blocks[0].Text != "Go, SQL" {
		t.Fatalf("sidebar skills should be dense text, got %+v", sk.Items[0].Blocks)
	}
}

func TestExecutiveWithoutSidebarIsSingleColumn(t *testing.T) {
	content := resume.Content{Sections: []resume.Section{
		section("sum", resume.SectionSummary, "Resumo", resume.ColumnAuto, "text", "Olá"),
	}}
	l := Render(content, resume.DefaultTheme(), resume.TemplateExecutive)
	if l.Columns != ColumnsSingle || len(l.Sidebar) != 0 {
		t.Fatalf("expected single column, got %s with %d sidebar sections", l.Columns, len(l.Sidebar))
	}

	content.Sections = append(content.Sections, section("lang", resume.SectionLanguages, "Idiomas", resume.ColumnAuto, "language", "Inglês"))
	l = Render(content, resume.DefaultTheme(), resume.TemplateExecutive)
	if l.Columns != ColumnsSplit || l.SidebarPercent != 34 {
		t.Fatalf("expected 34%% split, got %s %d", l.Columns, l.SidebarPercent)
	}
}

func rowIDs(rows []Row) [][2]string {
	out := make([][2]string, len(rows))
	for i, r := range rows {
		if r.Left != nil {
			out[i][0] = r.Left.ID
		}
		if r.Right != nil {
			out[i][1] = r.Right.ID
		}
	}
	return out
}

func TestPackRows(t *testing.T) {
	cases := []struct {
		name string
		cols []resume.LayoutColumn
		want [][2]string
	}{
		{"all auto", []resume.LayoutColumn{"", "", ""}, [][2]string{{"A", "B"}, {"C", ""}}},
		{"explicit left resumes pairing", []resume.LayoutColumn{"", "", resume.ColumnLeft, ""}, [][2]string{{"A", "B"}, {"C", "D"}}},
		{"right then auto", []resume.LayoutColumn{resume.ColumnRight, ""}, [][2]string{{"B", "A"}}},
		{"two rights", []resume.LayoutColumn{resume.ColumnRight, resume.ColumnRight}, [][2]string{{"", "A"}, {"", "B"}}},
		{"left after left", []resume.LayoutColumn{resume.ColumnLeft, resume.ColumnLeft, ""}, [][2]string{{"A", ""}, {"B", "C"}}},
	}
	for _, tc := range cases {
		var sections []resume.Section
		for i, col := range tc.cols {
			id := string(rune('A' + i))
			sections = append(sections, section(id, resume.SectionSummary, id, col, "text", id))
		}
		if diff := cmp.Diff(tc.want, rowIDs(PackRows(sections))); diff != "" {
			t.Fatalf("%s: rows mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestPackRowsEmpty(t *testing.T) {
	rows := PackRows(nil)
	if len(rows) != 1 || rows[0].Left != nil || rows[0].Right != nil {
		t.Fatalf("expected one empty row, got %+v", rows)
	}
}

func TestEmptySectionsArePlaceholders(t *testing.T) {
	content := resume.Content{Sections: []resume.Section{
		section("e", resume.SectionExperience, "Experiência", resume.ColumnAuto, "role", "", "company", " "),
		section("c", resume.SectionCustom, "", resume.ColumnAuto, "field_1", ""),
	}}
	for _, id := range resume.TemplateIDs {
		l := Render(content, resume.DefaultTheme(), id)
		sections := l.Sections()
		if len(sections) != 2 {
			t.Fatalf("%s: expected 2 sections, got %d", id, len(sections))
		}
		for _, s := range sections {
			if !s.Placeholder || len(s.Items) != 0 {
				t.Fatalf("%s: section %s should be a placeholder", id, s.ID)
			}
			if s.Title == "" {
				t.Fatalf("%s: section %s lost its title", id, s.ID)
			}
		}
	}
}

func TestFormatItem(t *testing.T) {
	exp := FormatItem(resume.SectionExperience, resume.SectionItem{Fields: resume.NewFields(
		"role", "Dev", "company", "Acme", "startDate", "2020", "endDate", "", "location", "SP",
	)}, false)
	want := []Block{
		{Kind: BlockTitle, Text: "Dev - Acme"},
		{Kind: BlockMeta, Text: "2020 | SP"},
	}
	if diff := cmp.Diff(want, exp.Blocks); diff != "" {
		t.Fatalf("experience blocks (-want +got):\n%s", diff)
	}

	cert := FormatItem(resume.SectionCertifications, resume.SectionItem{Fields: resume.NewFields(
		"name", "CKA", "issuer", "CNCF", "year", "2023",
	)}, false)
	if cert.Blocks[1].Text != "CNCF (2023)" {
		t.Fatalf("unexpected certification meta %q", cert.Blocks[1].Text)
	}

	skills := FormatItem(resume.SectionSkills, resume.SectionItem{Fields: resume.NewFields("name", "Go; SQL\nDocker")}, false)
	if diff := cmp.Diff([]string{"Go", "SQL", "Docker"}, skills.Blocks[0].Tags); diff != "" {
		t.Fatalf("skills tags (-want +got):\n%s", diff)
	}
}

func TestHeaderContactsOrder(t *testing.T) {
	h := formatHeader(resume.HeaderContent{
		FullName: "Ana",
		Github:   "github.com/ana",
		Email:    "ana@example.com",
		Phone:    " ",
	})
	if diff := cmp.Diff([]string{"ana@example.com", "github.com/ana"}, h.Contacts); diff != "" {
		t.Fatalf("contacts (-want +got):\n%s", diff)
	}
}

func TestCompactIsTighter(t *testing.T) {
	theme := resume.DefaultTheme()
	comfortable := ResolveTheme(theme)
	theme.Spacing = resume.SpacingCompact
	compact := ResolveTheme(theme)
	if compact.SectionGapPx >= comfortable.SectionGapPx ||
		compact.ItemGapPx >= comfortable.ItemGapPx ||
		compact.ParagraphAfter >= comfortable.ParagraphAfter {
		t.Fatalf("compact %+v not tighter than comfortable %+v", compact, comfortable)
	}
}

func TestInvalidThemeResolvesToDefault(t *testing.T) {
	got := ResolveTheme(resume.Theme{PrimaryColor: "red", Font: "comic"})
	want := ResolveTheme(resume.DefaultTheme())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("params (-want +got):\n%s", diff)
	}
}

func TestPageBreakCarried(t *testing.T) {
	s := section("sum", resume.SectionSummary, "Resumo", resume.ColumnAuto, "text", "x")
	s.PageBreakBefore = true
	for _, id := range resume.TemplateIDs {
		l := Render(resume.Content{Sections: []resume.Section{s}}, resume.DefaultTheme(), id)
		if got := l.Sections(); len(got) != 1 || !got[0].PageBreakBefore {
			t.Fatalf("%s: page break lost", id)
		}
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(minimalStrategy{})
	if err := reg.Register(minimalStrategy{}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := reg.Get(resume.TemplateCreative); err == nil {
		t.Fatal("expected not found error")
	}
	if diff := cmp.Diff([]resume.TemplateID{resume.TemplateMinimal}, reg.List()); diff != "" {
		t.Fatalf("list (-want +got):\n%s", diff)
	}
}

func TestFlowKeepsContentOrder(t *testing.T) {
	content := resume.Content{Sections: []resume.Section{
		section("sum", resume.SectionSummary, "Resumo", resume.ColumnRight, "text", "Backend"),
		section("exp", resume.SectionExperience, "Experiência", resume.ColumnAuto, "role", "Dev"),
		section("sk", resume.SectionSkills, "Habilidades", resume.ColumnAuto, "name", "Go"),
	}}
	want := []string{"sum", "exp", "sk"}
	for _, id := range resume.TemplateIDs {
		l := Render(content, resume.DefaultTheme(), id)
		var got []string
		for _, s := range l.Flow {
			got = append(got, s.ID)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s: flow order mismatch (-want +got):\n%s", id, diff)
		}
	}
}
