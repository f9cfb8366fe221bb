package resume

import "github.com/google/uuid"

// DefaultTheme 返回新简历使用的主题。
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:   "#0A66C2",
		SecondaryColor: "#1A3A5F",
		TextColor:      "#1C1E21",
		Font:           FontSourceSans,
		Spacing:        SpacingComfortable,
		FontSizeLevel:  FontSizeNormal,
	}
}

// DefaultTitle returns the label a section of type t gets when untitled.
func DefaultTitle(t SectionType) string {
	switch t {
	case SectionSummary:
		return "Resumo"
	case SectionExperience:
		return "Experiência"
	case SectionEducation:
		return "Educação"
	case SectionSkills:
		return "Habilidades"
	case SectionProjects:
		return "Projetos"
	case SectionCertifications:
		return "Certificações"
	case SectionLanguages:
		return "Idiomas"
	case SectionCustom:
		return "Nova seção"
	default:
		return "Seção"
	}
}

// EmptyFields returns the all-empty field set for a section type.
func EmptyFields(t SectionType) Fields {
	keys := FieldKeys(t)
	if keys == nil {
		return NewFields("field_1", "")
	}
	out := make(Fields, 0, len(keys))
	for _, k := range keys {
		out = append(out, Field{Key: k})
	}
	return out
}

// NewItem 创建一条空条目。
func NewItem(t SectionType) SectionItem {
	return SectionItem{ID: uuid.NewString(), Fields: EmptyFields(t)}
}

// NewSection creates a section seeded with exactly one empty item.
func NewSection(t SectionType) Section {
	if !t.Valid() {
		t = SectionCustom
	}
	return Section{
		ID:           uuid.NewString(),
		Type:         t,
		Title:        DefaultTitle(t),
		Items:        []SectionItem{NewItem(t)},
		LayoutColumn: ColumnAuto,
	}
}

func seededSection(t SectionType, items ...Fields) Section {
	s := Section{
		ID:           uuid.NewString(),
		Type:         t,
		Title:        DefaultTitle(t),
		LayoutColumn: ColumnAuto,
	}
	for _, f := range items {
		s.Items = append(s.Items, SectionItem{ID: uuid.NewString(), Fields: f})
	}
	return s
}

// DefaultContent 返回新建简历时的示例内容。
func DefaultContent() Content {
	return Content{
		Header: HeaderContent{
			FullName: "Nome Completo",
			Role:     "Cargo desejado",
			Email:    "email@exemplo.com",
			Phone:    "(11) 99999-9999",
			Location: "Cidade, Estado",
			LinkedIn: "linkedin.com/in/seuperfil",
			Github:   "github.com/seuusuario",
		},
		Sections: []Section{
			seededSection(SectionSummary,
				NewFields("text", "Profissional com foco em resultados, colaboração e melhoria contínua."),
			),
			seededSection(SectionExperience,
				NewFields(
					"role", "Desenvolvedor Full Stack",
					"company", "Empresa Exemplo",
					"startDate", "2022-01",
					"endDate", "Atual",
					"location", "Remoto",
					"description", "Atuação em APIs, frontend React e automações internas.",
				),
			),
			seededSection(SectionEducation,
				NewFields(
					"degree", "Bacharelado em Ciência da Computação",
					"institution", "Universidade Exemplo",
					"startDate", "2018",
					"endDate", "2021",
					"description", "Foco em engenharia de software e estruturas de dados.",
				),
			),
			seededSection(SectionSkills,
				NewFields("name", "TypeScript, React, Node.js, PostgreSQL"),
			),
			seededSection(SectionProjects,
				NewFields(
					"name", "Gerador de Currículos",
					"link", "https://github.com/exemplo",
					"description", "Aplicação web com exportação em PDF/DOCX.",
				),
			),
			seededSection(SectionCertifications,
				NewFields("name", "AWS Cloud Practitioner", "issuer", "Amazon", "year", "2024"),
			),
			seededSection(SectionLanguages,
				NewFields("language", "Português", "level", "Nativo"),
				NewFields("language", "Inglês", "level", "Avançado"),
			),
		},
	}
}

// ReorderSections moves the section with sourceID to the position currently
// held by targetID. Unknown ids leave the order unchanged.
func ReorderSections(sections []Section, sourceID, targetID string) []Section {
	from, to := -1, -1
	for i, s := range sections {
		if s.ID == sourceID {
			from = i
		}
		if s.ID == targetID {
			to = i
		}
	}
	out := make([]Section, len(sections))
	copy(out, sections)
	if from < 0 || to < 0 || from == to {
		return out
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]Section{moved}, out[to:]...)...)
	return out
}
