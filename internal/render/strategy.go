package render

import (
	"fmt"
	"sort"
	"sync"

	"curriculo/internal/normalize"
	"curriculo/internal/resume"
)

// Strategy arranges formatted sections for one template.
type Strategy interface {
	Template() resume.TemplateID
	Arrange(sections []resume.Section, rules *normalize.Rules) Layout
}

// Registry stores strategies by template id.
type Registry struct {
	mu         sync.RWMutex
	strategies map[resume.TemplateID]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[resume.TemplateID]Strategy)}
}

// Register adds a strategy. Duplicate ids return an error.
func (r *Registry) Register(s Strategy) error {
	if s == nil {
		return fmt.Errorf("render: strategy is required")
	}
	id := s.Template()
	if id == "" {
		return fmt.Errorf("render: strategy template id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[id]; exists {
		return fmt.Errorf("render: strategy %q already registered", id)
	}
	r.strategies[id] = s
	return nil
}

func (r *Registry) MustRegister(s Strategy) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(id resume.TemplateID) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[id]
	if !ok {
		return nil, fmt.Errorf("render: strategy %q not found", id)
	}
	return s, nil
}

// List returns registered template ids, sorted.
func (r *Registry) List() []resume.TemplateID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]resume.TemplateID, 0, len(r.strategies))
	for id := range r.strategies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DefaultRegistry returns a registry holding the five built-in templates.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(minimalStrategy{})
	r.MustRegister(modernStrategy{})
	r.MustRegister(professionalStrategy{})
	r.MustRegister(executiveStrategy{})
	r.MustRegister(creativeStrategy{})
	return r
}

// IsSidebar is the fixed classification used by two-column templates.
func IsSidebar(s resume.Section, rules *normalize.Rules) bool {
	switch s.Type {
	case resume.SectionSkills, resume.SectionLanguages, resume.SectionCertifications:
		return true
	case resume.SectionCustom:
		return rules.IsSidebarTitle(s.Title)
	default:
		return false
	}
}

func splitSidebar(sections []resume.Section, rules *normalize.Rules) (side, main []Section) {
	for _, s := range sections {
		if IsSidebar(s, rules) {
			side = append(side, formatSection(s, true))
		} else {
			main = append(main, formatSection(s, false))
		}
	}
	return side, main
}

func formatAll(sections []resume.Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, formatSection(s, false))
	}
	return out
}

type minimalStrategy struct{}

func (minimalStrategy) Template() resume.TemplateID { return resume.TemplateMinimal }

func (minimalStrategy) Arrange(sections []resume.Section, _ *normalize.Rules) Layout {
	return Layout{HeaderStyle: HeaderPlain, Columns: ColumnsSingle, Main: formatAll(sections)}
}

type modernStrategy struct{}

func (modernStrategy) Template() resume.TemplateID { return resume.TemplateModern }

func (modernStrategy) Arrange(sections []resume.Section, _ *normalize.Rules) Layout {
	return Layout{HeaderStyle: HeaderHero, Columns: ColumnsSingle, Cards: true, Main: formatAll(sections)}
}

type professionalStrategy struct{}

func (professionalStrategy) Template() resume.TemplateID { return resume.TemplateProfessional }

func (professionalStrategy) Arrange(sections []resume.Section, rules *normalize.Rules) Layout {
	side, main := splitSidebar(sections, rules)
	return Layout{
		HeaderStyle:    HeaderSidebar,
		Columns:        ColumnsSplit,
		SidebarPercent: 30,
		Sidebar:        side,
		Main:           main,
	}
}

type executiveStrategy struct{}

func (executiveStrategy) Template() resume.TemplateID { return resume.TemplateExecutive }

// Arrange drops the aside entirely when nothing classifies as sidebar.
func (executiveStrategy) Arrange(sections []resume.Section, rules *normalize.Rules) Layout {
	side, main := splitSidebar(sections, rules)
	l := Layout{HeaderStyle: HeaderBanner, Main: main}
	if len(side) == 0 {
		l.Columns = ColumnsSingle
		return l
	}
	l.Columns = ColumnsSplit
	l.SidebarPercent = 34
	l.Sidebar = side
	return l
}

type creativeStrategy struct{}

func (creativeStrategy) Template() resume.TemplateID { return resume.TemplateCreative }

func (creativeStrategy) Arrange(sections []resume.Section, _ *normalize.Rules) Layout {
	return Layout{HeaderStyle: HeaderHero, Columns: ColumnsGrid, Cards: true, Rows: PackRows(sections)}
}
