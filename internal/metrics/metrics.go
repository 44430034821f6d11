package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snagaudit",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "snagaudit",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snagaudit",
		Name:      "submissions_total",
		Help:      "Audio and text submissions by source and outcome.",
	}, []string{"source", "outcome"})

	SnagsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snagaudit",
		Name:      "snags_extracted_total",
		Help:      "Snags stored from extraction.",
	})

	MediaUploaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snagaudit",
		Name:      "media_uploaded_total",
		Help:      "Media files stored, by kind.",
	}, []string{"kind"})

	TaskSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snagaudit",
		Name:      "task_syncs_total",
		Help:      "Snag to task tracker sync results.",
	}, []string{"status"})

	AttachmentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snagaudit",
		Name:      "task_attachment_failures_total",
		Help:      "Media attachments that could not be uploaded to the task tracker.",
	})
)
