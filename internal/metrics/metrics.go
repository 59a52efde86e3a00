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
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordTransactionCreated()
	RecordProfileProvisioned(source string)
	RecordProvisioningConflict()
	RecordSessionsCleaned(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus           *prometheus.CounterVec
	requestLatency       prometheus.Histogram
	transactionsCreated  prometheus.Counter
	profilesProvisioned  *prometheus.CounterVec
	provisioningConflict prometheus.Counter
	sessionsCleaned      prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aether_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aether_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		transactionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aether_transactions_created_total",
			Help: "台帳に追記された取引の合計数",
		}),
		profilesProvisioned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aether_profiles_provisioned_total",
			Help: "作成されたプロフィールの合計数（経路別）",
		}, []string{"source"}),
		provisioningConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aether_provisioning_conflicts_total",
			Help: "一意制約違反で失敗したプロフィール作成の合計数",
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aether_sessions_cleaned_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.transactionsCreated,
		c.profilesProvisioned,
		c.provisioningConflict,
		c.sessionsCleaned,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordTransactionCreated は取引の追記を記録する。
func (c *Collector) RecordTransactionCreated() {
	c.transactionsCreated.Inc()
}

// RecordProfileProvisioned はプロフィール作成を経路（signup / oauth）別に記録する。
func (c *Collector) RecordProfileProvisioned(source string) {
	c.profilesProvisioned.WithLabelValues(source).Inc()
}

// RecordProvisioningConflict は一意制約違反によるプロフィール作成失敗を記録する。
func (c *Collector) RecordProvisioningConflict() {
	c.provisioningConflict.Inc()
}

// RecordSessionsCleaned は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int) {
	c.sessionsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
