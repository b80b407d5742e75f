package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	namespace = "gura_langid"
)

type MetricConfig struct {
	// Optional. Dedicated listen address for /metrics, the API server
	// exposes it as well.
	Listen string `yaml:"listen"`
}

var (
	// States: "pending" (in bot's worker queue), "processing" (actively handled),
	//         "unauthorized" (terminal state for disallowed messages),
	//         "failed" (terminal state for error occurred while handling messages),
	//         "processed" (terminal state for successfully handled messages).
	MetricMessages = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Current number of messages being processed by the bot.",
		},
		[]string{"state", "chat_type"},
	)

	// States: "pending" (waiting for rate limiter),
	//         "processing" (waiting for detector response),
	//         "success" (language detected),
	//         "rejected" (text gave no acceptable language),
	//         "failed" (detector error).
	MetricDetectorTasks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "detector_tasks_total",
			Help:      "Total number of detection tasks, by state.",
		},
		[]string{"state", "detector_name"},
	)

	// Value is 1 if the detector is up, 0 if it is disabled.
	MetricDetectorUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "detector_up",
			Help:      "Indicates if a detector is currently up and operational. 1 for up, 0 for disabled.",
		},
		[]string{"detector_name"},
	)

	MetricDetectorSelectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detector_selection_total",
			Help:      "Times of detector instance was chosen.",
		},
		[]string{"detector_name"},
	)

	MetricDetectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detection_duration_seconds",
			Help:      "Time spent by a detector instance on one detection.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"detector_name"},
	)

	MetricHTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Handled API requests, by route and status code.",
		},
		[]string{"route", "code"},
	)

	MetricStreamConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_connections",
			Help:      "Currently open streaming detection connections.",
		},
	)
)

func InitMetricServer(conf MetricConfig) {
	if conf.Listen == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logrus.Infof("Metrics server listening on %s", conf.Listen)
		if err := http.ListenAndServe(conf.Listen, mux); err != nil {
			logrus.Fatalf("Failed to start metrics server: %v", err)
		}
	}()
}
