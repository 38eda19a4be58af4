package observability

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge
	apiRejected *prometheus.CounterVec

	storeLatency   *prometheus.HistogramVec
	storeConflicts *prometheus.CounterVec

	tenantProvisioned *prometheus.CounterVec
	registrations     *prometheus.CounterVec

	dbPool *prometheus.GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return true
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

// Init creates the process-wide metrics once. It returns nil when metrics are disabled.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		if !Enabled() {
			if log != nil {
				log.Info("metrics disabled")
			}
			return
		}
		instance = New()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

// New builds metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agencycrm",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agencycrm",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "agencycrm",
			Name:      "http_inflight_requests",
			Help:      "Requests currently being served.",
		}),
		apiRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agencycrm",
			Name:      "http_rejections_total",
			Help:      "Rejected requests by CRM resource and error code.",
		}, []string{"resource", "code"}),
		storeLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agencycrm",
			Name:      "store_operation_duration_seconds",
			Help:      "Latency of transactional store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		storeConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agencycrm",
			Name:      "store_conflicts_total",
			Help:      "Unique constraint conflicts by operation.",
		}, []string{"operation"}),
		tenantProvisioned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agencycrm",
			Name:      "tenant_provision_total",
			Help:      "Ensure-tenant outcomes: created, joined or existing.",
		}, []string{"outcome"}),
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agencycrm",
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		dbPool: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "agencycrm",
			Name:      "db_pool",
			Help:      "database/sql pool statistics.",
		}, []string{"stat"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) IncAPIRejection(resource, code string) {
	if m == nil {
		return
	}
	m.apiRejected.WithLabelValues(resource, code).Inc()
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveStoreOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if name == "" {
		name = "unknown"
	}
	m.storeLatency.WithLabelValues(name, status).Observe(dur.Seconds())
}

func (m *Metrics) IncStoreConflict(name string) {
	if m == nil {
		return
	}
	if name == "" {
		name = "unknown"
	}
	m.storeConflicts.WithLabelValues(name).Inc()
}

func (m *Metrics) IncTenantProvision(outcome string) {
	if m == nil {
		return
	}
	m.tenantProvisioned.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncRegistration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

func scrapeInterval() time.Duration {
	raw := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL"))
	if raw == "" {
		return 15 * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// StartDBCollector samples connection pool stats until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbPool.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.dbPool.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.dbPool.WithLabelValues("idle").Set(float64(stats.Idle))
				m.dbPool.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.dbPool.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
				m.dbPool.WithLabelValues("max_open_connections").Set(float64(stats.MaxOpenConnections))
			}
		}
	}()
}
