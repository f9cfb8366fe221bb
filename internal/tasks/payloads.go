package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeResumeExport = "resume:export"
)

// QueueExports 是导出任务使用的队列。
const QueueExports = "exports"

// ResumeExportPayload 描述一次异步导出所需的最小信息；内容在 worker 中重新读取。
type ResumeExportPayload struct {
	ResumeID      uint   `json:"resume_id"`
	OwnerID       uint   `json:"owner_id"`
	Format        string `json:"format"`
	CorrelationID string `json:"correlation_id"`
}

// NewResumeExportTask 构造一个导出任务。
func NewResumeExportTask(p ResumeExportPayload, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal export payload: %w", err)
	}
	return asynq.NewTask(TypeResumeExport, payload,
		asynq.Queue(QueueExports),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(2*time.Minute),
	), nil
}

// ParseResumeExportPayload decodes and checks a task payload.
func ParseResumeExportPayload(data []byte) (ResumeExportPayload, error) {
	var p ResumeExportPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return ResumeExportPayload{}, fmt.Errorf("unmarshal export payload: %w", err)
	}
	if p.ResumeID == 0 || p.OwnerID == 0 {
		return ResumeExportPayload{}, fmt.Errorf("export payload missing ids")
	}
	return p, nil
}

// NotifyChannel 是某个用户的 Redis Pub/Sub 推送频道，WebSocket 处理器订阅同一频道。
func NotifyChannel(userID uint) string {
	return fmt.Sprintf("user_notify:%d", userID)
}
