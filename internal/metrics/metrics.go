// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordStudyUpload()
	RecordStudyUploadFailure(reason string)
	RecordStudyDehydration(duration time.Duration)
	RecordResultUpload()
	RecordImageUpload()
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	studyUploads       prometheus.Counter
	studyUploadFail    *prometheus.CounterVec
	dehydrationLatency prometheus.Histogram
	resultUploads      prometheus.Counter
	imageUploads       prometheus.Counter
	httpStatus         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		studyUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "misinfogame_study_uploads_total",
			Help: "スタディアップロード成功の合計数",
		}),
		studyUploadFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "misinfogame_study_upload_fail_total",
			Help: "スタディアップロード失敗の合計数（理由別）",
		}, []string{"reason"}),
		dehydrationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "misinfogame_study_dehydration_seconds",
			Help:    "スタディのデハイドレーション（取得から組み立てまで）のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		resultUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "misinfogame_result_uploads_total",
			Help: "結果アップロード成功の合計数",
		}),
		imageUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "misinfogame_image_uploads_total",
			Help: "画像アップロード成功の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "misinfogame_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.studyUploads,
		c.studyUploadFail,
		c.dehydrationLatency,
		c.resultUploads,
		c.imageUploads,
		c.httpStatus,
	)

	return c
}

// RecordStudyUpload はスタディアップロード成功を記録する。
func (c *Collector) RecordStudyUpload() {
	c.studyUploads.Inc()
}

// RecordStudyUploadFailure はスタディアップロード失敗を理由付きで記録する。
func (c *Collector) RecordStudyUploadFailure(reason string) {
	c.studyUploadFail.WithLabelValues(reason).Inc()
}

// RecordStudyDehydration はスタディ組み立てのレイテンシを記録する。
func (c *Collector) RecordStudyDehydration(duration time.Duration) {
	c.dehydrationLatency.Observe(duration.Seconds())
}

// RecordResultUpload は結果アップロード成功を記録する。
func (c *Collector) RecordResultUpload() {
	c.resultUploads.Inc()
}

// RecordImageUpload は画像アップロード成功を記録する。
func (c *Collector) RecordImageUpload() {
	c.imageUploads.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーターが/metricsにマウントする。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
