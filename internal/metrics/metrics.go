// Package metrics exposes prometheus counters/histograms for the
// negotiation lifecycle, grounded on wallet-core/pkg/monitor's
// BusinessMetrics, plus an HTTP middleware grounded on
// wallet-core-monolith/pkg/monitor's request instrumentation.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Negotiation holds every counter/histogram the C5 driver touches.
type Negotiation struct {
	InvitationsSent       prometheus.Counter
	CompletionsTotal      prometheus.Counter
	FailuresTotal          *prometheus.CounterVec
	KernelConfirmDuration prometheus.Histogram
	ActiveNegotiations    prometheus.Gauge
}

var Business *Negotiation

func Init() {
	Business = &Negotiation{
		InvitationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_negotiation_invitations_sent_total",
			Help: "Invitations sent to initiate a two-party negotiation.",
		}),
		CompletionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_negotiation_completions_total",
			Help: "Negotiations that reached Completed.",
		}),
		FailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_negotiation_failures_total",
			Help: "Negotiations that reached Failed, by reason.",
		}, []string{"reason"}),
		KernelConfirmDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wallet_negotiation_kernel_confirm_seconds",
			Help:    "Time from transaction registration to kernel proof.",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveNegotiations: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wallet_negotiation_active",
			Help: "Negotiations currently neither Completed nor Failed.",
		}),
	}
}

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallet_http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: []float64{0.05, 0.1, 0.3, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration)
}

func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		if path == "" {
			return
		}
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}
