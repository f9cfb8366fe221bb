package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"curriculo/internal/aiimport"
	"curriculo/internal/api/middleware"
	"curriculo/internal/apperror"
	"curriculo/internal/metrics"
	"curriculo/internal/normalize"
	"curriculo/internal/store"
)

// ResumeImporter 将上传的简历模型转换为规范化快照。
type ResumeImporter interface {
	Import(ctx context.Context, in aiimport.Input) (aiimport.Result, error)
}

// ImportHandler 处理 AI 模板导入。
type ImportHandler struct {
	store           store.Store
	importer        ResumeImporter
	limiter         redisRateCounter
	defaultProvider string
	importsPerHour  int
	maxUploadBytes  int64
}

// NewImportHandler 构造导入处理器；limiter 为空时不做频率限制。
func NewImportHandler(st store.Store, importer ResumeImporter, limiter redisRateCounter, defaultProvider string, importsPerHour int, maxUploadBytes int64) *ImportHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = aiimport.MaxFileBytes
	}
	return &ImportHandler{
		store:           st,
		importer:        importer,
		limiter:         limiter,
		defaultProvider: defaultProvider,
		importsPerHour:  importsPerHour,
		maxUploadBytes:  maxUploadBytes,
	}
}

// ImportTemplate 读取 multipart 的 file / llmProvider / llmModel，分析后覆盖简历当前状态。
func (h *ImportHandler) ImportTemplate(c *gin.Context) {
	if h.importer == nil {
		RespondError(c, apperror.Unavailable("ai import is not configured"))
		return
	}
	userID, rec, ok := h.loadResume(c)
	if !ok {
		return
	}
	logger := middleware.LoggerFromContext(c).With(
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("resume_id", uint64(rec.ID)),
	)

	// 预留 multipart 包装开销
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(c, apperror.TooLarge("file exceeds the upload limit"))
			return
		}
		BadRequest(c, "file is required")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		RespondError(c, apperror.TooLarge("file exceeds the upload limit"))
		return
	}

	providerRaw := strings.TrimSpace(c.PostForm("llmProvider"))
	if providerRaw == "" {
		providerRaw = h.defaultProvider
	}
	provider, err := aiimport.ResolveProvider(providerRaw)
	if err != nil {
		RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.limiter != nil && h.importsPerHour > 0 {
		key := fmt.Sprintf("rate:import:%d:%s", userID, time.Now().UTC().Format("2006010215"))
		count, err := incrWithTTL(ctx, h.limiter, key, time.Hour)
		if err != nil {
			logger.Warn("import rate counter unavailable", slog.Any("error", err))
		} else if count > int64(h.importsPerHour) {
			TooManyRequests(c, "import rate limit exceeded")
			return
		}
	}

	data, err := readFormFile(fileHeader, h.maxUploadBytes)
	if err != nil {
		RespondError(c, err)
		return
	}

	started := time.Now()
	result, err := h.importer.Import(ctx, aiimport.Input{
		File: aiimport.File{
			Name:     fileHeader.Filename,
			MimeType: fileHeader.Header.Get("Content-Type"),
			Data:     data,
		},
		Provider: provider,
		Model:    c.PostForm("llmModel"),
		Current: normalize.Current{
			Title:      rec.Snapshot.Title,
			TemplateID: rec.Snapshot.TemplateID,
			Content:    rec.Snapshot.Content,
			Theme:      rec.Snapshot.Theme,
		},
	})
	metrics.ObserveImport(provider, started, err)
	if err != nil {
		logger.Info("template import failed",
			slog.String("provider", provider),
			slog.String("kind", apperror.KindOf(err).String()),
			slog.Any("error", err),
		)
		RespondError(c, err)
		return
	}

	updated, err := h.store.UpdateResume(ctx, userID, rec.ID, result.Snapshot)
	if err != nil {
		RespondError(c, err)
		return
	}

	logger.Info("template imported", slog.String("provider", result.Provider), slog.String("model", result.Model))
	c.JSON(http.StatusOK, newResumeResponse(updated))
}

func (h *ImportHandler) loadResume(c *gin.Context) (uint, store.Record, bool) {
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

func readFormFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Validation("cannot read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, apperror.Validation("cannot read uploaded file")
	}
	if int64(len(data)) > limit {
		return nil, apperror.TooLarge("file exceeds the upload limit")
	}
	if len(data) == 0 {
		return nil, apperror.Validation("empty file")
	}
	return data, nil
}
