package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newschat_chat_requests_total",
		Help: "Chat requests received.",
	})
	chatFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newschat_chat_failures_total",
		Help: "Chat requests that failed to produce an answer.",
	})
	chatDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newschat_chat_duration_seconds",
		Help:    "End-to-end answer generation latency.",
		Buckets: prometheus.DefBuckets,
	})
	ingestedChunks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newschat_ingested_chunks_total",
		Help: "Chunks produced by feed ingestion for indexing.",
	})
)
