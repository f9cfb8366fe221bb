package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"curriculo/internal/api/middleware"
	"curriculo/internal/apperror"
	"curriculo/internal/export"
	"curriculo/internal/metrics"
	"curriculo/internal/resume"
	"curriculo/internal/storage"
	"curriculo/internal/store"
	"curriculo/internal/tasks"
)

const (
	defaultResumeTitle = "Meu Currículo"
	duplicateSuffix    = " (Copia)"
	defaultLinkTTL     = 15 * time.Minute
)

// DocumentExporter 同步生成 PDF/DOCX。
type DocumentExporter interface {
	Export(ctx context.Context, snap resume.Snapshot, format export.Format) (export.Artifact, error)
}

// TaskEnqueuer is the subset of *asynq.Client used by the handler.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ExportFiles 是导出文件在对象存储上的操作。
type ExportFiles interface {
	PresignDownload(ctx context.Context, objectKey, filename string, ttl time.Duration) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// ResumeHandlerOptions 汇总 ResumeHandler 的依赖；Enqueuer 与 Files 可以为空。
type ResumeHandlerOptions struct {
	Store       store.Store
	Exporter    DocumentExporter
	Enqueuer    TaskEnqueuer
	Files       ExportFiles
	MaxResumes  int
	MaxRetry    int
	LinkTTL     time.Duration
	ClockNowUTC func() time.Time
}

// ResumeHandler 负责处理与简历相关的 API 请求。
type ResumeHandler struct {
	store      store.Store
	exporter   DocumentExporter
	enqueuer   TaskEnqueuer
	files      ExportFiles
	maxResumes int
	maxRetry   int
	linkTTL    time.Duration
	now        func() time.Time
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(opts ResumeHandlerOptions) *ResumeHandler {
	h := &ResumeHandler{
		store:      opts.Store,
		exporter:   opts.Exporter,
		enqueuer:   opts.Enqueuer,
		files:      opts.Files,
		maxResumes: opts.MaxResumes,
		maxRetry:   opts.MaxRetry,
		linkTTL:    opts.LinkTTL,
		now:        opts.ClockNowUTC,
	}
	if h.linkTTL <= 0 {
		h.linkTTL = defaultLinkTTL
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

var (
	errInvalidResumeID  = apperror.Validation("invalid resume id")
	errInvalidVersionID = apperror.Validation("invalid version id")
)

type resumeResponse struct {
	ID         uint              `json:"id"`
	UserID     uint              `json:"userId"`
	Title      string            `json:"title"`
	TemplateID resume.TemplateID `json:"templateId"`
	Content    resume.Content    `json:"content"`
	Theme      resume.Theme      `json:"theme"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type resumeListItem struct {
	ID         uint              `json:"id"`
	Title      string            `json:"title"`
	TemplateID resume.TemplateID `json:"templateId"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type versionResponse struct {
	ID        uint            `json:"id"`
	ResumeID  uint            `json:"resumeId"`
	Name      string          `json:"name"`
	Snapshot  resume.Snapshot `json:"snapshot"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newResumeResponse(rec store.Record) resumeResponse {
	return resumeResponse{
		ID:         rec.ID,
		UserID:     rec.OwnerID,
		Title:      rec.Snapshot.Title,
		TemplateID: rec.Snapshot.TemplateID,
		Content:    rec.Snapshot.Content,
		Theme:      rec.Snapshot.Theme,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func newVersionResponse(v store.Version) versionResponse {
	return versionResponse{
		ID:        v.ID,
		ResumeID:  v.ResumeID,
		Name:      v.Name,
		Snapshot:  v.Snapshot,
		CreatedAt: v.CreatedAt,
	}
}

type themeRequest struct {
	PrimaryColor   string               `json:"primaryColor" binding:"required,hexcolor6"`
	SecondaryColor string               `json:"secondaryColor" binding:"required,hexcolor6"`
	TextColor      string               `json:"textColor" binding:"required,hexcolor6"`
	Font           resume.Font          `json:"font" binding:"required,known"`
	Spacing        resume.Spacing       `json:"spacing" binding:"required,known"`
	FontSizeLevel  resume.FontSizeLevel `json:"fontSizeLevel" binding:"required,known"`
}

func (t themeRequest) theme() resume.Theme {
	return resume.Theme{
		PrimaryColor:   strings.ToUpper(t.PrimaryColor),
		SecondaryColor: strings.ToUpper(t.SecondaryColor),
		TextColor:      strings.ToUpper(t.TextColor),
		Font:           t.Font,
		Spacing:        t.Spacing,
		FontSizeLevel:  t.FontSizeLevel,
	}
}

type createResumeRequest struct {
	Title      string            `json:"title" binding:"omitempty,max=255"`
	TemplateID resume.TemplateID `json:"templateId" binding:"omitempty,known"`
}

// updateResumeRequest 为部分更新：缺省字段保持原值。
type updateResumeRequest struct {
	Title      *string            `json:"title" binding:"omitempty,min=1,max=255"`
	TemplateID *resume.TemplateID `json:"templateId" binding:"omitempty,known"`
	Content    *resume.Content    `json:"content"`
	Theme      *themeRequest      `json:"theme"`
}

type createVersionRequest struct {
	Name string `json:"name" binding:"required,min=2,max=120"`
}

type enqueueExportRequest struct {
	Format string `json:"format" binding:"required"`
}

// ListResumes 列出用户全部简历，最近更新的在前。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	records, err := h.store.ListResumes(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}

	items := make([]resumeListItem, 0, len(records))
	for _, r := range records {
		items = append(items, resumeListItem{
			ID:         r.ID,
			Title:      r.Snapshot.Title,
			TemplateID: r.Snapshot.TemplateID,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, items)
}

// CreateResume 以示例内容与默认主题新建简历，超过限额返回 403。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	// 空请求体使用默认标题与模板
	var req createResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		BindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.maxResumes > 0 {
		count, err := h.store.CountResumes(ctx, userID)
		if err != nil {
			RespondError(c, err)
			return
		}
		if count >= int64(h.maxResumes) {
			Forbidden(c, "resume limit reached")
			return
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultResumeTitle
	}
	templateID := req.TemplateID
	if templateID == "" {
		templateID = resume.TemplateMinimal
	}

	rec, err := h.store.CreateResume(ctx, userID, resume.Snapshot{
		Title:      title,
		TemplateID: templateID,
		Content:    resume.DefaultContent(),
		Theme:      resume.DefaultTheme(),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newResumeResponse(rec))
}

// GetResume 返回指定 ID 的简历。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	_, rec, ok := h.loadResume(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newResumeResponse(rec))
}

// UpdateResume 合并请求中出现的字段后整体保存。
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	var req updateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	if req.Content != nil {
		if err := validateContent(req.Content); err != nil {
			RespondError(c, err)
			return
		}
	}

	userID, rec, ok := h.loadResume(c)
	if !ok {
		return
	}

	snap := rec.Snapshot
	if req.Title != nil {
		snap.Title = strings.TrimSpace(*req.Title)
	}
	if req.TemplateID != nil {
		snap.TemplateID = *req.TemplateID
	}
	if req.Content != nil {
		snap.Content = *req.Content
	}
	if req.Theme != nil {
		snap.Theme = req.Theme.theme()
	}

	updated, err := h.store.UpdateResume(c.Request.Context(), userID, rec.ID, snap)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newResumeResponse(updated))
}

// DeleteResume 删除简历、版本，并尽力清理对象存储中的导出文件。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	resumeID, err := parseUintParam(c, "id", errInvalidResumeID)
	if err != nil {
		RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.store.DeleteResume(ctx, userID, resumeID); err != nil {
		RespondError(c, err)
		return
	}

	if h.files != nil {
		if err := h.files.DeletePrefix(ctx, storage.ResumePrefix(userID, resumeID)); err != nil {
			middleware.LoggerFromContext(c).Warn("delete resume exports failed", "resume_id", resumeID, "error", err)
		}
	}
	c.Status(http.StatusNoContent)
}

// DuplicateResume 复制当前状态，标题追加 " (Copia)"。
func (h *ResumeHandler) DuplicateResume(c *gin.Context) {
	userID, rec, ok := h.loadResume(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if h.maxResumes > 0 {
		count, err := h.store.CountResumes(ctx, userID)
		if err != nil {
			RespondError(c, err)
			return
		}
		if count >= int64(h.maxResumes) {
			Forbidden(c, "resume limit reached")
			return
		}
	}

	snap := rec.Snapshot
	snap.Title = rec.Snapshot.Title + duplicateSuffix
	snap.Content = rec.Snapshot.Content.Clone()

	dup, err := h.store.CreateResume(ctx, userID, snap)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newResumeResponse(dup))
}

// ListVersions 返回简历的版本列表，最新在前。
func (h *ResumeHandler) ListVersions(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	resumeID, err := parseUintParam(c, "id", errInvalidResumeID)
	if err != nil {
		RespondError(c, err)
		return
	}

	versions, err := h.store.ListVersions(c.Request.Context(), userID, resumeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]versionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, newVersionResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

// CreateVersion 以当前状态创建一个命名版本。
func (h *ResumeHandler) CreateVersion(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	resumeID, err := parseUintParam(c, "id", errInvalidResumeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req createVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	v, err := h.store.CreateVersion(c.Request.Context(), userID, resumeID, strings.TrimSpace(req.Name))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newVersionResponse(v))
}

// RestoreVersion 用版本快照覆盖简历当前状态。
func (h *ResumeHandler) RestoreVersion(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	resumeID, err := parseUintParam(c, "id", errInvalidResumeID)
	if err != nil {
		RespondError(c, err)
		return
	}
	versionID, err := parseUintParam(c, "versionId", errInvalidVersionID)
	if err != nil {
		RespondError(c, err)
		return
	}

	rec, err := h.store.RestoreVersion(c.Request.Context(), userID, resumeID, versionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newResumeResponse(rec))
}

// PreviewResume 返回与 PDF 相同的打印 HTML。
func (h *ResumeHandler) PreviewResume(c *gin.Context) {
	_, rec, ok := h.loadResume(c)
	if !ok {
		return
	}
	markup, err := export.Preview(rec.Snapshot)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", markup)
}

// ExportResume 同步生成并直接下载 PDF 或 DOCX。
func (h *ResumeHandler) ExportResume(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		RespondError(c, err)
		return
	}
	_, rec, ok := h.loadResume(c)
	if !ok {
		return
	}

	art, err := h.exporter.Export(c.Request.Context(), rec.Snapshot, format)
	metrics.ObserveExport(string(format), "sync", err)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

// EnqueueExport 将导出任务入队并立即返回 202，结果经 WebSocket 推送。
func (h *ResumeHandler) EnqueueExport(c *gin.Context) {
	if h.enqueuer == nil {
		Error(c, http.StatusServiceUnavailable, "export queue is not configured")
		return
	}
	var req enqueueExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		RespondError(c, err)
		return
	}
	userID, rec, ok := h.loadResume(c)
	if !ok {
		return
	}

	task, err := tasks.NewResumeExportTask(tasks.ResumeExportPayload{
		ResumeID:      rec.ID,
		OwnerID:       userID,
		Format:        string(format),
		CorrelationID: middleware.GetCorrelationID(c),
	}, h.maxRetry)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.enqueuer.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		middleware.LoggerFromContext(c).Error("enqueue export failed", "error", err)
		Internal(c, "failed to enqueue export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "export request accepted",
		"task_id": info.ID,
	})
}

// GetExportLink 为最近一次异步导出生成预签名下载链接。
func (h *ResumeHandler) GetExportLink(c *gin.Context) {
	if h.files == nil {
		Error(c, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		RespondError(c, err)
		return
	}
	userID, rec, ok := h.loadResume(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	exp, err := h.store.LatestExport(ctx, userID, rec.ID, string(format))
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			Conflict(c, "export not ready")
			return
		}
		RespondError(c, err)
		return
	}
	if !storage.OwnsKey(exp.ObjectKey, userID, rec.ID) {
		Internal(c, "export key mismatch")
		return
	}

	filename := export.Filename(rec.Snapshot, format, exp.CreatedAt)
	signedURL, err := h.files.PresignDownload(ctx, exp.ObjectKey, filename, h.linkTTL)
	if err != nil {
		middleware.LoggerFromContext(c).Error("presign export failed", "error", err)
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        signedURL,
		"filename":   filename,
		"expires_at": h.now().Add(h.linkTTL).UTC(),
	})
}

// loadResume 解析 :id 并读取当前用户的简历，失败时已写入响应。
func (h *ResumeHandler) loadResume(c *gin.Context) (uint, store.Record, bool) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return 0, store.Record{}, false
	}
	resumeID, err := parseUintParam(c, "id", errInvalidResumeID)
	if err != nil {
		RespondError(c, err)
		return 0, store.Record{}, false
	}
	rec, err := h.store.GetResume(c.Request.Context(), userID, resumeID)
	if err != nil {
		RespondError(c, err)
		return 0, store.Record{}, false
	}
	return userID, rec, true
}

func parseUintParam(c *gin.Context, name string, invalid error) (uint, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, invalid
	}
	return uint(id), nil
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), v != 0
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
