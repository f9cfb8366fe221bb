package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"curriculo/internal/emit"
	"curriculo/internal/normalize"
	"curriculo/internal/render"
	"curriculo/internal/resume"
)

// TemplateHandler 暴露内置模板的元数据与示例预览。
type TemplateHandler struct {
	registry *render.Registry
	rules    *normalize.Rules
}

func NewTemplateHandler(registry *render.Registry) *TemplateHandler {
	if registry == nil {
		registry = render.DefaultRegistry()
	}
	return &TemplateHandler{registry: registry, rules: normalize.DefaultRules()}
}

type templateListItem struct {
	ID             resume.TemplateID  `json:"id"`
	HeaderStyle    render.HeaderStyle `json:"headerStyle"`
	Columns        render.ColumnMode  `json:"columns"`
	SidebarPercent int                `json:"sidebarPercent,omitempty"`
	Cards          bool               `json:"cards"`
}

// GET /v1/templates
// 按展示顺序列出模板及其版式特征。
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	registered := make(map[resume.TemplateID]bool)
	for _, id := range h.registry.List() {
		registered[id] = true
	}

	sample := resume.DefaultContent()
	theme := resume.DefaultTheme()

	items := make([]templateListItem, 0, len(registered))
	for _, id := range resume.TemplateIDs {
		if !registered[id] {
			continue
		}
		l := render.RenderWith(h.registry, h.rules, sample, theme, id)
		items = append(items, templateListItem{
			ID:             id,
			HeaderStyle:    l.HeaderStyle,
			Columns:        l.Columns,
			SidebarPercent: l.SidebarPercent,
			Cards:          l.Cards,
		})
	}
	c.JSON(http.StatusOK, items)
}

// GET /v1/templates/:id/preview
// 用示例内容渲染模板，返回打印 HTML。
func (h *TemplateHandler) PreviewTemplate(c *gin.Context) {
	id := resume.TemplateID(c.Param("id"))
	if _, err := h.registry.Get(id); err != nil {
		NotFound(c, "template not found")
		return
	}

	l := render.RenderWith(h.registry, h.rules, resume.DefaultContent(), resume.DefaultTheme(), id)
	markup, err := emit.Markup(l, string(id))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", markup)
}
