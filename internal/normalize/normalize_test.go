package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"curriculo/internal/resume"
)

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	v, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func currentState() Current {
	return Current{
		Title:      "Meu currículo",
		TemplateID: resume.TemplateModern,
		Content:    resume.DefaultContent(),
		Theme:      resume.DefaultTheme(),
	}
}

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"abc", "#AABBCC"},
		{"1a2b3c", "#1A2B3C"},
		{"#0a66c2", "#0A66C2"},
		{"  #fff ", "#FFFFFF"},
		{"not-a-color", "#123456"},
		{"#12345", "#123456"},
		{"", "#123456"},
		{42, "#123456"},
		{nil, "#123456"},
	}
	for _, tc := range cases {
		if got := NormalizeColor(tc.in, "#123456"); got != tc.want {
			t.Errorf("NormalizeColor(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInferSectionType(t *testing.T) {
	rules := DefaultRules()
	cases := map[string]resume.SectionType{
		"Work Experience":       resume.SectionExperience,
		"Formação Acadêmica":    resume.SectionEducation,
		"Histórico de Trabalho": resume.SectionExperience,
		"Perfil Profissional":   resume.SectionSummary,
		"Competências":          resume.SectionSkills,
		"Certificações":         resume.SectionCertifications,
		"IDIOMAS":               resume.SectionLanguages,
		"Projetos pessoais":     resume.SectionProjects,
		"Prêmios":               resume.SectionCustom,
		"":                      resume.SectionCustom,
	}
	for in, want := range cases {
		if got := rules.InferSectionType(in); got != want {
			t.Errorf("InferSectionType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSidebarHints(t *testing.T) {
	rules := DefaultRules()
	if !rules.IsSidebarTitle("Contato") {
		t.Fatal("expected Contato to be a sidebar title")
	}
	if !rules.IsSidebarTitle("Informações Pessoais") {
		t.Fatal("expected Informações Pessoais to be a sidebar title")
	}
	if rules.IsSidebarTitle("Prêmios") {
		t.Fatal("did not expect Prêmios to be a sidebar title")
	}
}

func TestItemSurvival(t *testing.T) {
	draft := mustDecode(t, `{
		"sections": [
			{"type": "experience", "items": [
				{"empresa": "Acme"},
				{"role": "", "foo": "bar"},
				"not an item"
			]},
			{"type": "skills", "items": [{"role": "ignored"}, {}]}
		]
	}`)

	got := Normalize(draft, currentState())
	if len(got.Content.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got.Content.Sections))
	}

	exp := got.Content.Sections[0]
	if len(exp.Items) != 1 {
		t.Fatalf("expected 1 surviving item, got %d", len(exp.Items))
	}
	wantKeys := []string{"role", "company", "startDate", "endDate", "location", "description"}
	if diff := cmp.Diff(wantKeys, exp.Items[0].Fields.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if exp.Items[0].Fields.Get("company") != "Acme" {
		t.Fatalf("expected company alias to resolve, got %+v", exp.Items[0].Fields)
	}

	skills := got.Content.Sections[1]
	if len(skills.Items) != 1 || skills.Items[0].Fields.HasValue() {
		t.Fatalf("expected one synthesized empty item, got %+v", skills.Items)
	}
	if diff := cmp.Diff([]string{"name"}, skills.Items[0].Fields.Keys()); diff != "" {
		t.Fatalf("synthesized keys mismatch (-want +got):\n%s", diff)
	}
}

func TestAliasResolutionUsesNormalizedKeys(t *testing.T) {
	draft := mustDecode(t, `{"sections":[{"type":"Educação","items":[
		{"fields": {"Curso": "Engenharia", "Instituição": "USP", "Início": "2015", "Fim": "2019"}}
	]}]}`)

	got := Normalize(draft, currentState())
	item := got.Content.Sections[0].Items[0].Fields
	want := resume.Fields{
		{Key: "degree", Value: "Engenharia"},
		{Key: "institution", Value: "USP"},
		{Key: "startDate", Value: "2015"},
		{Key: "endDate", Value: "2019"},
		{Key: "description", Value: ""},
	}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if got.Content.Sections[0].Title != "Educação" {
		t.Fatalf("expected default title, got %q", got.Content.Sections[0].Title)
	}
}

func TestCustomFieldsKeepOrderAndCap(t *testing.T) {
	draft := mustDecode(t, `{"sections":[{"type":"Prêmios","title":"Prêmios","items":[
		{"Nome do prêmio": "Melhor Dev", "ano": 2023, "b":"1","c":"2","d":"3","e":"4","f":"5","g":"6","h":"7"},
		{"vazio": "   "}
	]}]}`)

	got := Normalize(draft, currentState())
	section := got.Content.Sections[0]
	if section.Type != resume.SectionCustom {
		t.Fatalf("expected custom, got %q", section.Type)
	}
	if len(section.Items) != 1 {
		t.Fatalf("expected empty custom item to be dropped, got %d items", len(section.Items))
	}
	want := []string{"Nome_do_prêmio", "ano", "b", "c", "d", "e", "f", "g"}
	if diff := cmp.Diff(want, section.Items[0].Fields.Keys()); diff != "" {
		t.Fatalf("custom keys mismatch (-want +got):\n%s", diff)
	}
	if section.Items[0].Fields.Get("ano") != "2023" {
		t.Fatalf("expected numeric value to be kept, got %q", section.Items[0].Fields.Get("ano"))
	}
}

func TestCustomSectionWithoutItemsGetsPlaceholder(t *testing.T) {
	draft := mustDecode(t, `{"sections":[{"type":"outros","items":[]}]}`)
	got := Normalize(draft, currentState())
	want := resume.Fields{{Key: "field_1", Value: ""}}
	if diff := cmp.Diff(want, got.Content.Sections[0].Items[0].Fields); diff != "" {
		t.Fatalf("placeholder mismatch (-want +got):\n%s", diff)
	}
	if got.Content.Sections[0].Title != "Nova seção" {
		t.Fatalf("unexpected title %q", got.Content.Sections[0].Title)
	}
}

func TestCapsSectionsAndItems(t *testing.T) {
	sections := make([]any, 0, 15)
	for i := 0; i < 15; i++ {
		items := make([]any, 0, 20)
		for j := 0; j < 20; j++ {
			items = append(items, map[string]any{"text": "linha"})
		}
		sections = append(sections, map[string]any{"type": "summary", "items": items})
	}

	got := Normalize(map[string]any{"sections": sections}, currentState())
	if len(got.Content.Sections) != MaxSections {
		t.Fatalf("expected %d sections, got %d", MaxSections, len(got.Content.Sections))
	}
	for _, s := range got.Content.Sections {
		if len(s.Items) != MaxItemsPerSection {
			t.Fatalf("expected %d items, got %d", MaxItemsPerSection, len(s.Items))
		}
	}
}

func TestHeaderFallbackAndCaps(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	draft := map[string]any{
		"content": map[string]any{
			"header": map[string]any{
				"fullName": "  Ana   Souza ",
				"phone":    string(long),
				"email":    123,
				"linkedin": "linkedin.com/in/ana",
			},
		},
	}
	cur := currentState()
	got := Normalize(draft, cur).Content.Header

	if got.FullName != "Ana Souza" {
		t.Fatalf("expected collapsed name, got %q", got.FullName)
	}
	if len(got.Phone) != 80 {
		t.Fatalf("expected phone capped at 80, got %d", len(got.Phone))
	}
	if got.Email != cur.Content.Header.Email {
		t.Fatalf("expected email fallback, got %q", got.Email)
	}
	if got.LinkedIn != "linkedin.com/in/ana" {
		t.Fatalf("expected lowercase linkedin alias, got %q", got.LinkedIn)
	}
	if got.Role != cur.Content.Header.Role {
		t.Fatalf("expected role fallback, got %q", got.Role)
	}
}

func TestMarkupIsStripped(t *testing.T) {
	draft := mustDecode(t, `{"title":"<b>Novo</b> &amp; melhor","sections":[{"type":"summary","items":[{"text":"<script>x()</script>Olá <i>mundo</i>"}]}]}`)
	got := Normalize(draft, currentState())
	if got.Title != "Novo & melhor" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if text := got.Content.Sections[0].Items[0].Fields.Get("text"); text != "Olá mundo" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestThemeAndTemplate(t *testing.T) {
	draft := mustDecode(t, `{"templateId":"creative","theme":{"primaryColor":"abc","secondaryColor":"zzz","font":"comic","spacing":"compact","fontSizeLevel":"large"}}`)
	cur := currentState()
	got := Normalize(draft, cur)

	if got.TemplateID != resume.TemplateCreative {
		t.Fatalf("unexpected template %q", got.TemplateID)
	}
	want := resume.Theme{
		PrimaryColor:   "#AABBCC",
		SecondaryColor: cur.Theme.SecondaryColor,
		TextColor:      cur.Theme.TextColor,
		Font:           cur.Theme.Font,
		Spacing:        resume.SpacingCompact,
		FontSizeLevel:  resume.FontSizeLarge,
	}
	if diff := cmp.Diff(want, got.Theme); diff != "" {
		t.Fatalf("theme mismatch (-want +got):\n%s", diff)
	}

	got = Normalize(mustDecode(t, `{"templateId":"fancy"}`), cur)
	if got.TemplateID != resume.TemplateModern {
		t.Fatalf("expected fallback template, got %q", got.TemplateID)
	}
}

func TestTotalDefaulting(t *testing.T) {
	inputs := []any{
		nil,
		"just text",
		[]any{1, 2, 3},
		mustDecode(t, `{"title": 5, "templateId": [], "theme": "dark", "header": [1], "sections": {"a": 1}}`),
		mustDecode(t, `{"sections": [null, 1, "x", [], {"items": "nope"}]}`),
	}
	broken := Current{Theme: resume.Theme{PrimaryColor: "red"}}

	for i, in := range inputs {
		for _, cur := range []Current{currentState(), broken} {
			got := Normalize(in, cur)
			if !got.TemplateID.Valid() {
				t.Fatalf("input %d: invalid template %q", i, got.TemplateID)
			}
			th := got.Theme
			if !th.Font.Valid() || !th.Spacing.Valid() || !th.FontSizeLevel.Valid() {
				t.Fatalf("input %d: invalid theme enums %+v", i, th)
			}
			for _, c := range []string{th.PrimaryColor, th.SecondaryColor, th.TextColor} {
				if !hex6.MatchString(c) {
					t.Fatalf("input %d: invalid color %q", i, c)
				}
			}
			if len(got.Content.Sections) == 0 {
				t.Fatalf("input %d: no sections", i)
			}
			for _, s := range got.Content.Sections {
				if !s.Type.Valid() || len(s.Items) == 0 {
					t.Fatalf("input %d: invalid section %+v", i, s)
				}
			}
		}
	}
}

func TestFallbackSectionsAreCopies(t *testing.T) {
	cur := currentState()
	got := Normalize(map[string]any{}, cur)
	got.Content.Sections[0].Items[0].Fields[0].Value = "changed"
	if cur.Content.Sections[0].Items[0].Fields[0].Value == "changed" {
		t.Fatal("normalized output aliases the current content")
	}
}

func TestDecodeKeepsOrder(t *testing.T) {
	v := mustDecode(t, `{"b":1,"a":{"z":true,"y":null}}`)
	obj, ok := v.(Object)
	if !ok {
		t.Fatalf("expected Object, got %T", v)
	}
	if obj[0].Key != "b" || obj[1].Key != "a" {
		t.Fatalf("unexpected order %+v", obj)
	}
	inner := obj[1].Value.(Object)
	if inner[0].Key != "z" || inner[1].Key != "y" {
		t.Fatalf("unexpected nested order %+v", inner)
	}

	if _, err := Decode([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Fatal("expected trailing data error")
	}
}
