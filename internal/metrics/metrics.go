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
// APIクライアントやサービス層から利用する。
type MetricsCollector interface {
	RecordUpstreamRequest(method string, statusCode int)
	RecordUpstreamLatency(duration time.Duration)
	RecordUpstreamRetry()
	RecordCacheHit(resource string)
	RecordCacheMiss(resource string)
	RecordCacheInvalidation(resource string)
	RecordAuthAttempt(outcome string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	upstreamRequests  *prometheus.CounterVec
	upstreamLatency   prometheus.Histogram
	upstreamRetries   prometheus.Counter
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	cacheInvalidation *prometheus.CounterVec
	authAttempts      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentgate_upstream_requests_total",
			Help: "レンタルAPIへのリクエスト数（メソッド・ステータス別）",
		}, []string{"method", "status_code"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentgate_upstream_latency_seconds",
			Help:    "レンタルAPIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		upstreamRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentgate_upstream_retries_total",
			Help: "レンタルAPIへのGETリトライ回数",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentgate_cache_hits_total",
			Help: "クエリキャッシュのヒット数（リソース別）",
		}, []string{"resource"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentgate_cache_misses_total",
			Help: "クエリキャッシュのミス数（リソース別）",
		}, []string{"resource"}),
		cacheInvalidation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentgate_cache_invalidations_total",
			Help: "クエリキャッシュの無効化回数（リソース別）",
		}, []string{"resource"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentgate_auth_attempts_total",
			Help: "認証試行数（結果別）",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.upstreamRequests,
		c.upstreamLatency,
		c.upstreamRetries,
		c.cacheHits,
		c.cacheMisses,
		c.cacheInvalidation,
		c.authAttempts,
	)

	return c
}

// RecordUpstreamRequest はレンタルAPIへのリクエスト結果を記録する。
func (c *Collector) RecordUpstreamRequest(method string, statusCode int) {
	c.upstreamRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// RecordUpstreamLatency はレンタルAPIリクエストのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(duration time.Duration) {
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordUpstreamRetry はGETリトライを記録する。
func (c *Collector) RecordUpstreamRetry() {
	c.upstreamRetries.Inc()
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit(resource string) {
	c.cacheHits.WithLabelValues(resource).Inc()
}

// RecordCacheMiss はキャッシュミスを記録する。
func (c *Collector) RecordCacheMiss(resource string) {
	c.cacheMisses.WithLabelValues(resource).Inc()
}

// RecordCacheInvalidation はキャッシュ無効化を記録する。
func (c *Collector) RecordCacheInvalidation(resource string) {
	c.cacheInvalidation.WithLabelValues(resource).Inc()
}

// RecordAuthAttempt は認証試行の結果を記録する。outcomeは"success"または"failure"。
func (c *Collector) RecordAuthAttempt(outcome string) {
	c.authAttempts.WithLabelValues(outcome).Inc()
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
