package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sadopc/newlife/internal/structures"
)

type MetricsProviderInterface interface {
	IncCategorization(outcome string)
	ObserveGatewayDuration(op string, duration time.Duration)
	ObservePersistenceDuration(duration time.Duration)
	SetCheckInsTotal(count int)
	IncCacheHits()
	IncCacheMisses()
	Handler() http.Handler
}

type MetricsProvider struct {
	registry            *prometheus.Registry
	categorizations     *prometheus.CounterVec
	gatewayDuration     *prometheus.HistogramVec
	persistenceDuration prometheus.Histogram
	checkInsTotal       prometheus.Gauge
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
}

func (m *MetricsProvider) IncCategorization(outcome string) {
	m.categorizations.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveGatewayDuration(op string, duration time.Duration) {
	m.gatewayDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetCheckInsTotal(count int) {
	m.checkInsTotal.Set(float64(count))
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NewMetricsProvider registers collectors on a private registry so several
// providers can coexist in one process (tests, the CLI).
func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &MetricsProvider{
		registry: reg,

		categorizations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newlife_categorizations_total",
			Help: "Categorization outcomes by branch",
		}, []string{"outcome"}),

		gatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newlife_gateway_duration_seconds",
			Help:    "Duration of classifier calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),

		persistenceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "newlife_persistence_duration_seconds",
			Help:    "Duration of blob writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		checkInsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "newlife_checkins_total",
			Help: "Number of stored check-ins",
		}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "newlife_cache_hits_total",
			Help: "Total number of blob cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "newlife_cache_misses_total",
			Help: "Total number of blob cache misses",
		}),
	}
}

// MetricsServer is the running /metrics endpoint. Addr is empty when
// metrics are disabled.
type MetricsServer struct {
	Addr string
}

// NewMetricsServer exposes /metrics on conf.Metrics.Listen until cleanup
// runs. It does nothing when metrics are disabled.
func NewMetricsServer(conf *structures.Config, metrics MetricsProviderInterface, logger Logger) (*MetricsServer, func(), error) {
	if !conf.Metrics.Enabled || conf.Metrics.Listen == "" {
		return &MetricsServer{}, func() {}, nil
	}

	ln, err := net.Listen("tcp", conf.Metrics.Listen)
	if err != nil {
		return nil, nil, fmt.Errorf("listen metrics on %s: %w", conf.Metrics.Listen, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Infof(TypeApp, "Serving metrics on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(TypeApp, "Metrics server: %s", err)
		}
	}()

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return &MetricsServer{Addr: ln.Addr().String()}, cleanup, nil
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncCategorization(_ string)                       {}
func (n *noopMetrics) ObserveGatewayDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) SetCheckInsTotal(_ int)                           {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
