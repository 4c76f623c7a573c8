package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 业务指标
var (
	// LeadsCaptured 成功捕获的订阅者总数
	LeadsCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadpage_leads_captured_total",
			Help: "Total number of leads captured",
		},
	)

	// LeadsDeleted 被删除的订阅者总数
	LeadsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadpage_leads_deleted_total",
			Help: "Total number of leads deleted",
		},
	)

	// CampaignsSent 已群发的活动总数
	CampaignsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadpage_campaigns_sent_total",
			Help: "Total number of campaigns sent",
		},
	)

	// CampaignEmailsSent 活动群发中成功发出的邮件总数
	CampaignEmailsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadpage_campaign_emails_sent_total",
			Help: "Total number of campaign emails delivered",
		},
	)

	// AutomationEmailsSent 自动化规则触发并发出的邮件总数
	AutomationEmailsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadpage_automation_emails_sent_total",
			Help: "Total number of automation emails delivered",
		},
	)

	// StorageFallbacks 远端存储降级次数
	StorageFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadpage_storage_fallbacks_total",
			Help: "Total number of remote storage fallbacks",
		},
	)
)

// HTTP 请求指标
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadpage_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadpage_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	rateLimitBlocks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadpage_rate_limit_blocks_total",
			Help: "Total number of requests blocked by rate limiting",
		},
	)
)

// RecordHTTPRequest 记录一次 HTTP 请求
func RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitBlock 记录一次限流拦截
func RecordRateLimitBlock() {
	rateLimitBlocks.Inc()
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func HTTPHandler() http.Handler {
	return promhttp.Handler()
}
