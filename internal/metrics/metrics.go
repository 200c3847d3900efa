package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "politrades"

// Collectors groups the process metrics on a private registry.
type Collectors struct {
	registry        *prometheus.Registry
	mutations       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	alertsSent      *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Effective store mutations by store.",
		}, []string{"store"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_persist_failures_total",
			Help:      "Failed durable writes by store.",
		}, []string{"store"}),
		alertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_sent_total",
			Help:      "Trade alerts dispatched by channel.",
		}, []string{"channel"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	c.registry.MustRegister(
		c.mutations,
		c.persistFailures,
		c.alertsSent,
		c.requests,
		c.requestDuration,
		collectors.NewGoCollector(),
	)
	return c
}

// Mutated counts an effective store mutation.
func (c *Collectors) Mutated(store string) {
	if c == nil {
		return
	}
	c.mutations.WithLabelValues(store).Inc()
}

// PersistFailed counts a failed durable write.
func (c *Collectors) PersistFailed(store string) {
	if c == nil {
		return
	}
	c.persistFailures.WithLabelValues(store).Inc()
}

// AlertSent counts a dispatched alert.
func (c *Collectors) AlertSent(channel string) {
	if c == nil {
		return
	}
	c.alertsSent.WithLabelValues(channel).Inc()
}

// ObserveRequest records one API request.
func (c *Collectors) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}
