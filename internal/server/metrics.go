package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platescan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platescan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	estimateRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platescan_estimate_requests_total",
			Help: "Total number of estimate requests",
		},
		[]string{"source", "status"}, // source: barcode, label, reference, color
	)

	estimateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platescan_estimate_duration_seconds",
			Help:    "Estimation cascade duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 25},
		},
		[]string{"source"},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "platescan_upload_size_bytes",
			Help:    "Size of uploaded photos in bytes",
			Buckets: []float64{10 * 1024, 100 * 1024, 512 * 1024, 1024 * 1024, 4 * 1024 * 1024, 16 * 1024 * 1024},
		},
	)
)
