package resume

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFieldsKeepSourceOrder(t *testing.T) {
	var f Fields
	if err := json.Unmarshal([]byte(`{"zeta":"1","alpha":2,"mid":null,"flag":true}`), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Fields{{"zeta", "1"}, {"alpha", "2"}, {"mid", ""}, {"flag", "true"}}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(data); got != `{"zeta":"1","alpha":"2","mid":"","flag":"true"}` {
		t.Fatalf("unexpected encoding %s", got)
	}
}

func TestFieldsRejectNestedValues(t *testing.T) {
	var f Fields
	if err := json.Unmarshal([]byte(`{"a":{"b":"c"}}`), &f); err == nil {
		t.Fatal("expected error for nested value")
	}
}

func TestFieldsSetReplacesInPlace(t *testing.T) {
	f := NewFields("a", "1", "b", "2")
	f = f.Set("a", "3")
	f = f.Set("c", "4")
	if diff := cmp.Diff([]string{"a", "b", "c"}, f.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if f.Get("a") != "3" {
		t.Fatalf("expected replaced value, got %q", f.Get("a"))
	}
}

func TestDecodeExperience(t *testing.T) {
	item := SectionItem{Fields: NewFields("company", "Acme", "role", "Dev")}
	got, ok := Decode(SectionExperience, item).(ExperienceEntry)
	if !ok {
		t.Fatalf("expected ExperienceEntry, got %T", Decode(SectionExperience, item))
	}
	if got.Role != "Dev" || got.Company != "Acme" || got.Location != "" {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestSkillsList(t *testing.T) {
	e := SkillsEntry{Name: "Go, SQL;  Docker\n\nKubernetes ,"}
	if diff := cmp.Diff([]string{"Go", "SQL", "Docker", "Kubernetes"}, e.List()); diff != "" {
		t.Fatalf("skills mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSectionSeedsOneItem(t *testing.T) {
	for _, st := range SectionTypes {
		s := NewSection(st)
		if len(s.Items) != 1 {
			t.Fatalf("%s: expected 1 item, got %d", st, len(s.Items))
		}
		if s.Items[0].Fields.HasValue() {
			t.Fatalf("%s: expected empty fields", st)
		}
		if s.LayoutColumn != ColumnAuto || s.PageBreakBefore {
			t.Fatalf("%s: unexpected layout defaults", st)
		}
	}
	if got := NewSection(SectionCustom).Items[0].Fields.Keys(); !cmp.Equal(got, []string{"field_1"}) {
		t.Fatalf("unexpected custom keys %v", got)
	}
}

func TestReorderSections(t *testing.T) {
	sections := []Section{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	ids := func(in []Section) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = s.ID
		}
		return out
	}

	if diff := cmp.Diff([]string{"b", "c", "a", "d"}, ids(ReorderSections(sections, "a", "c"))); diff != "" {
		t.Fatalf("forward move (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d", "a", "b", "c"}, ids(ReorderSections(sections, "d", "a"))); diff != "" {
		t.Fatalf("backward move (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, ids(ReorderSections(sections, "x", "a"))); diff != "" {
		t.Fatalf("unknown id (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, ids(sections)); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := DefaultContent()
	clone := c.Clone()
	clone.Sections[0].Items[0].Fields[0].Value = "changed"
	if c.Sections[0].Items[0].Fields[0].Value == "changed" {
		t.Fatal("clone shares field storage")
	}
}
