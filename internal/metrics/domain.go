package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"curriculo/internal/apperror"
)

const namespace = "curriculo"

var (
	importsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "requests_total",
			Help:      "模板导入次数，按模型提供方与结果分类。",
		},
		[]string{"provider", "outcome"},
	)

	importDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "模板导入耗时（秒）。",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 90},
		},
		[]string{"provider"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "documents_total",
			Help:      "导出文档数量，按格式、方式（sync/async）与结果分类。",
		},
		[]string{"format", "mode", "outcome"},
	)
)

// Outcome 把错误归类为指标标签。
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperror.KindOf(err).String()
}

// ObserveImport 记录一次模板导入。
func ObserveImport(provider string, started time.Time, err error) {
	if provider == "" {
		provider = "unknown"
	}
	importsTotal.WithLabelValues(provider, Outcome(err)).Inc()
	importDuration.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}

// ObserveExport 记录一次文档导出。
func ObserveExport(format, mode string, err error) {
	exportsTotal.WithLabelValues(format, mode, Outcome(err)).Inc()
}
