// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Catalog Metrics
	CategoryTraversalDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_category_traversal_depth",
			Help:    "Number of tree levels below the starting category visited per resolution",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 13},
		},
	)

	CategoryTraversalSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_category_traversal_categories",
			Help:    "Number of categories collected per resolution, including the starting one",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// Review Metrics
	RatingRecomputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_rating_recomputations_total",
			Help: "Total number of product rating recomputations by trigger",
		},
		[]string{"trigger"}, // "review_created", "review_deleted"
	)

	RatingRecomputationsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_rating_recomputations_skipped_total",
			Help: "Recomputations that left the rating unchanged because no active review remained",
		},
	)
)

// Middleware records request counts and latency per chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
