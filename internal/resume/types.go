package resume

// TemplateID 标识一种版式策略。
type TemplateID string

const (
	TemplateMinimal      TemplateID = "minimal"
	TemplateModern       TemplateID = "modern"
	TemplateProfessional TemplateID = "professional"
	TemplateExecutive    TemplateID = "executive"
	TemplateCreative     TemplateID = "creative"
)

// TemplateIDs lists every known template in display order.
var TemplateIDs = []TemplateID{
	TemplateMinimal,
	TemplateModern,
	TemplateProfessional,
	TemplateExecutive,
	TemplateCreative,
}

// Valid reports whether t is a known template identifier.
func (t TemplateID) Valid() bool {
	for _, known := range TemplateIDs {
		if t == known {
			return true
		}
	}
	return false
}

// SectionType 决定条目的字段集合。
type SectionType string

const (
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionProjects       SectionType = "projects"
	SectionCertifications SectionType = "certifications"
	SectionLanguages      SectionType = "languages"
	SectionCustom         SectionType = "custom"
)

var SectionTypes = []SectionType{
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
	SectionLanguages,
	SectionCustom,
}

func (t SectionType) Valid() bool {
	for _, known := range SectionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// LayoutColumn 是 creative 模板中的列偏好。
type LayoutColumn string

const (
	ColumnAuto  LayoutColumn = "auto"
	ColumnLeft  LayoutColumn = "left"
	ColumnRight LayoutColumn = "right"
)

// Normalize maps anything other than left/right to auto.
func (c LayoutColumn) Normalize() LayoutColumn {
	if c == ColumnLeft || c == ColumnRight {
		return c
	}
	return ColumnAuto
}

type Font string

const (
	FontSourceSans   Font = "sourceSans"
	FontMerriweather Font = "merriweather"
	FontMontserrat   Font = "montserrat"
)

func (f Font) Valid() bool {
	return f == FontSourceSans || f == FontMerriweather || f == FontMontserrat
}

type Spacing string

const (
	SpacingCompact     Spacing = "compact"
	SpacingComfortable Spacing = "comfortable"
)

func (s Spacing) Valid() bool {
	return s == SpacingCompact || s == SpacingComfortable
}

type FontSizeLevel string

const (
	FontSizeNormal FontSizeLevel = "normal"
	FontSizeLarge  FontSizeLevel = "large"
)

func (l FontSizeLevel) Valid() bool {
	return l == FontSizeNormal || l == FontSizeLarge
}

// HeaderContent 是简历抬头的固定字段。
type HeaderContent struct {
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Website  string `json:"website"`
	LinkedIn string `json:"linkedIn"`
	Github   string `json:"github"`
}

// SectionItem 是分区内的一条记录。
type SectionItem struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// Section 是带类型与标题的内容块。
type Section struct {
	ID              string        `json:"id"`
	Type            SectionType   `json:"type"`
	Title           string        `json:"title"`
	Items           []SectionItem `json:"items"`
	PageBreakBefore bool          `json:"pageBreakBefore"`
	LayoutColumn    LayoutColumn  `json:"layoutColumn,omitempty"`
}

// Theme 描述配色、字体与间距。
type Theme struct {
	PrimaryColor   string        `json:"primaryColor"`
	SecondaryColor string        `json:"secondaryColor"`
	TextColor      string        `json:"textColor"`
	Font           Font          `json:"font"`
	Spacing        Spacing       `json:"spacing"`
	FontSizeLevel  FontSizeLevel `json:"fontSizeLevel"`
}

// Content 是渲染器消费的单位。
type Content struct {
	Header   HeaderContent `json:"header"`
	Sections []Section     `json:"sections"`
}

// Clone returns a deep copy so callers can mutate sections freely.
func (c Content) Clone() Content {
	out := Content{Header: c.Header, Sections: make([]Section, len(c.Sections))}
	for i, section := range c.Sections {
		copied := section
		copied.Items = make([]SectionItem, len(section.Items))
		for j, item := range section.Items {
			copied.Items[j] = SectionItem{ID: item.ID, Fields: item.Fields.Clone()}
		}
		out.Sections[i] = copied
	}
	return out
}

// Snapshot 是版本中保存的完整副本。
type Snapshot struct {
	Title      string     `json:"title"`
	TemplateID TemplateID `json:"templateId"`
	Content    Content    `json:"content"`
	Theme      Theme      `json:"theme"`
}
