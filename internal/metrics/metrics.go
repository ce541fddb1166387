// Package metrics defines Prometheus instrumentation for the streaming server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counter metrics (monotonically increasing)
var (
	// StreamsTotal counts video stream deliveries by outcome
	// (completed, aborted, failed)
	StreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streaming_streams_total",
			Help: "Total number of video streams served",
		},
		[]string{"status"},
	)

	// RangeRequestsTotal counts range requests by outcome
	// (partial, full, malformed, unsatisfiable)
	RangeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streaming_range_requests_total",
			Help: "Total number of Range header evaluations",
		},
		[]string{"result"},
	)

	// ChunksTotal counts individual upload chunks by status (success, failure)
	ChunksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streaming_upload_chunks_total",
			Help: "Total number of upload chunks received",
		},
		[]string{"status"},
	)

	// FinalizesTotal counts finalize attempts by outcome
	// (success, incomplete, size_mismatch, conflict, failure)
	FinalizesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streaming_finalizes_total",
			Help: "Total number of upload finalize attempts",
		},
		[]string{"status"},
	)

	// SessionsReapedTotal counts abandoned upload sessions removed
	SessionsReapedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "streaming_sessions_reaped_total",
			Help: "Total number of abandoned upload sessions reaped",
		},
	)

	// HTTPRequestsTotal counts total HTTP requests by method, path, and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streaming_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// Histogram metrics (distributions)
var (
	// HTTPRequestDuration tracks HTTP request latency by method and path
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streaming_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// StreamBytesSent tracks distribution of bytes delivered per stream
	StreamBytesSent = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "streaming_stream_bytes_sent",
			Help: "Distribution of bytes delivered per stream",
			Buckets: []float64{
				102400,       // 100 KB
				1048576,      // 1 MB
				10485760,     // 10 MB
				104857600,    // 100 MB
				1073741824,   // 1 GB
				10737418240,  // 10 GB
				107374182400, // 100 GB
			},
		},
	)

	// ChunkSizeBytes tracks distribution of uploaded chunk sizes
	ChunkSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "streaming_chunk_size_bytes",
			Help: "Distribution of uploaded chunk sizes in bytes",
			Buckets: []float64{
				1024,     // 1 KB
				102400,   // 100 KB
				1048576,  // 1 MB
				4194304,  // 4 MB
				8388608,  // 8 MB
				16777216, // 16 MB
			},
		},
	)

	// AssemblyDuration tracks how long chunk reassembly takes
	AssemblyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streaming_assembly_duration_seconds",
			Help:    "Chunk reassembly duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)
