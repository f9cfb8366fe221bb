package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"curriculo/internal/apperror"
	"curriculo/internal/errcode"
	"curriculo/internal/export"
	"curriculo/internal/metrics"
	"curriculo/internal/resume"
	"curriculo/internal/storage"
	"curriculo/internal/store"
	"curriculo/internal/tasks"
)

// Uploader 是导出文件上传所需的对象存储能力。
type Uploader interface {
	PutObject(ctx context.Context, objectKey string, data []byte, contentType string) error
}

// Exporter produces the document bytes for a snapshot.
type Exporter interface {
	Export(ctx context.Context, snap resume.Snapshot, format export.Format) (export.Artifact, error)
}

// ExportTaskHandler 负责消费 resume:export 任务。
type ExportTaskHandler struct {
	store    store.Store
	exporter Exporter
	storage  Uploader
	notifier Publisher
	logger   *slog.Logger
}

// NewExportTaskHandler 创建任务处理器。
func NewExportTaskHandler(st store.Store, exporter Exporter, uploader Uploader, notifier Publisher, logger *slog.Logger) *ExportTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportTaskHandler{
		store:    st,
		exporter: exporter,
		storage:  uploader,
		notifier: notifier,
		logger:   logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	payload, err := tasks.ParseResumeExportPayload(t.Payload())
	if err != nil {
		log.Error("invalid export payload", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("resume_id", uint64(payload.ResumeID)),
		slog.Uint64("user_id", uint64(payload.OwnerID)),
		slog.String("format", payload.Format),
	)
	log.Info("export task started")

	final := false
	defer func() {
		metrics.ObserveExport(payload.Format, "async", retErr)
		if retErr == nil {
			return
		}
		if !final && !isFinalAsynqAttempt(ctx) {
			return
		}
		notify := ExportNotifyMessage{
			Status:        notifyStatusError,
			ResumeID:      payload.ResumeID,
			Format:        payload.Format,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.FromError(retErr),
			ErrorMessage:  apperror.Message(retErr),
		}
		if err := publishNotify(ctx, h.notifier, payload.OwnerID, notify); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}()

	format, err := export.ParseFormat(payload.Format)
	if err != nil {
		final = true
		return skipRetry(err)
	}

	rec, err := h.store.GetResume(ctx, payload.OwnerID, payload.ResumeID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			log.Warn("resume not found, skipping task")
			return nil
		}
		log.Error("load resume failed", slog.Any("error", err))
		return err
	}

	art, err := h.exporter.Export(ctx, rec.Snapshot, format)
	if err != nil {
		log.Error("export document failed", slog.Any("error", err))
		if !errcode.Retryable(errcode.FromError(err)) {
			final = true
			return skipRetry(err)
		}
		return err
	}

	key := storage.ExportKey(payload.OwnerID, payload.ResumeID, string(format))
	if err := h.storage.PutObject(ctx, key, art.Data, art.ContentType); err != nil {
		log.Error("upload export failed", slog.Any("error", err))
		return err
	}

	exp, err := h.store.RecordExport(ctx, payload.OwnerID, payload.ResumeID, string(format), key, int64(len(art.Data)))
	if err != nil {
		log.Error("record export failed", slog.Any("error", err))
		return err
	}

	notify := ExportNotifyMessage{
		Status:        notifyStatusCompleted,
		ResumeID:      payload.ResumeID,
		Format:        string(format),
		ExportID:      exp.ID,
		Filename:      art.Filename,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if err := publishNotify(ctx, h.notifier, payload.OwnerID, notify); err != nil {
		// 文件已经上传，通知失败不重试整个任务。
		log.Error("publish redis notification failed", slog.Any("error", err))
	}

	log.Info("export task completed", slog.String("object_key", key), slog.Int("size", len(art.Data)))
	return nil
}

func skipRetry(err error) error {
	return errors.Join(err, asynq.SkipRetry)
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
