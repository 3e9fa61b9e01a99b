package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Metrics 应用指标集合，使用独立 Registry
// 所有记录方法对 nil 接收者安全，测试中可直接传 nil
type Metrics struct {
	registry *prometheus.Registry

	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	quotaSubmitted     *prometheus.CounterVec
	quotaDecisions     *prometheus.CounterVec
	affiliationChanges *prometheus.CounterVec
}

// New 创建并注册全部指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "computing",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "computing",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		quotaSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "computing",
			Subsystem: "quota",
			Name:      "requests_submitted_total",
			Help:      "Quota requests submitted, by quota type",
		}, []string{"quota_type"}),
		quotaDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "computing",
			Subsystem: "quota",
			Name:      "decisions_total",
			Help:      "Quota request decisions, by quota type and outcome",
		}, []string{"quota_type", "outcome"}),
		affiliationChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "computing",
			Subsystem: "affiliation",
			Name:      "changes_total",
			Help:      "Project affiliation changes, by trigger",
		}, []string{"trigger"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestTotal,
		m.requestLatency,
		m.quotaSubmitted,
		m.quotaDecisions,
		m.affiliationChanges,
	)
	return m
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 暴露底层 Registry，便于测试采集
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest 记录一次 HTTP 请求
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(duration.Seconds())
}

// QuotaSubmitted 记录一次配额申请提交
func (m *Metrics) QuotaSubmitted(quotaType string) {
	if m == nil {
		return
	}
	m.quotaSubmitted.WithLabelValues(quotaType).Inc()
}

// QuotaDecided 记录一次审批结果，outcome 取 approved / rejected / conflict / error
func (m *Metrics) QuotaDecided(quotaType, outcome string) {
	if m == nil {
		return
	}
	m.quotaDecisions.WithLabelValues(quotaType, outcome).Inc()
}

// AffiliationChanged 记录一次项目挂靠变更，trigger 取 approval / voluntary
func (m *Metrics) AffiliationChanged(trigger string) {
	if m == nil {
		return
	}
	m.affiliationChanges.WithLabelValues(trigger).Inc()
}
