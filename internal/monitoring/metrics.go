package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_purchases_total",
			Help: "Ticket purchase attempts by outcome",
		},
		[]string{"status"},
	)

	transfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transfers_total",
			Help: "Ticket transfer attempts by outcome",
		},
		[]string{"status"},
	)

	changeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "change_events_published_total",
			Help: "Realtime change events published per collection",
		},
		[]string{"collection", "op"},
	)
)

// RequestMetrics records count and latency per route template.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		requestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func TrackPurchase(status string) {
	purchasesTotal.WithLabelValues(status).Inc()
}

func TrackTransfer(status string) {
	transfersTotal.WithLabelValues(status).Inc()
}

func TrackChangeEvent(collection, op string) {
	changeEventsTotal.WithLabelValues(collection, op).Inc()
}
