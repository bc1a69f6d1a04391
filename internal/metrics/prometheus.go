package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Frame durations are a few milliseconds to a few tens of milliseconds.
var defaultBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.02, 0.033, 0.05, 0.1, 0.25}

// Manager owns the pipeline collectors. All Record methods are safe for
// concurrent use and are no-ops when metrics are disabled or m is nil.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	frames          *prometheus.CounterVec
	frameDuration   prometheus.Histogram
	filterVerdicts  *prometheus.CounterVec
	segmentsDrawn   prometheus.Counter
	uiActions       *prometheus.CounterVec
	commands        *prometheus.CounterVec
	saves           *prometheus.CounterVec
	detectorErrors  prometheus.Counter
	detectSkipped   prometheus.Counter
	streamClients   prometheus.Gauge
	statusListeners prometheus.Gauge
}

// NewManager creates a manager on a private registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fingerpaint",
		subsystem:        "pipeline",
		histogramBuckets: defaultBuckets,
		enabled:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.frames = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_total",
		Help:      "Frames processed, by classified intent and resulting status",
	}, []string{"intent", "status"})

	m.frameDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frame_duration_seconds",
		Help:      "Wall time of one pipeline step, capture to publish",
		Buckets:   m.histogramBuckets,
	})

	m.filterVerdicts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "filter_verdicts_total",
		Help:      "Outlier guard decisions for drawing frames",
	}, []string{"verdict"})

	m.segmentsDrawn = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "segments_drawn_total",
		Help:      "Stroke segments and dots committed to the canvas",
	})

	m.uiActions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ui_actions_total",
		Help:      "Toolbar actions triggered by the selection gesture",
	}, []string{"action"})

	m.commands = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commands_total",
		Help:      "Control commands applied, by kind and source",
	}, []string{"command", "source"})

	m.saves = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "saves_total",
		Help:      "Canvas save attempts by result",
	}, []string{"result"})

	m.detectorErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detector_errors_total",
		Help:      "Frames skipped because hand detection failed",
	})

	m.detectSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detections_skipped_total",
		Help:      "Frames where detection was skipped because the scene was still and no hand was tracked",
	})

	m.streamClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "stream_clients",
		Help:      "Connected MJPEG stream clients",
	})

	m.statusListeners = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "status_listeners",
		Help:      "Connected status WebSocket clients",
	})
}

// Registry returns the registry the collectors live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordFrame counts one processed frame and observes its duration.
func (m *Manager) RecordFrame(intent, status string, d time.Duration) {
	if m == nil || !m.enabled {
		return
	}
	m.frames.WithLabelValues(intent, status).Inc()
	m.frameDuration.Observe(d.Seconds())
}

// RecordVerdict counts one outlier guard decision.
func (m *Manager) RecordVerdict(verdict string) {
	if m == nil || !m.enabled {
		return
	}
	m.filterVerdicts.WithLabelValues(verdict).Inc()
}

// RecordSegment counts one committed stroke segment.
func (m *Manager) RecordSegment() {
	if m == nil || !m.enabled {
		return
	}
	m.segmentsDrawn.Inc()
}

// RecordAction counts one toolbar action.
func (m *Manager) RecordAction(action string) {
	if m == nil || !m.enabled {
		return
	}
	m.uiActions.WithLabelValues(action).Inc()
}

// RecordCommand counts one applied control command.
func (m *Manager) RecordCommand(command, source string) {
	if m == nil || !m.enabled {
		return
	}
	m.commands.WithLabelValues(command, source).Inc()
}

// RecordSave counts one save attempt.
func (m *Manager) RecordSave(err error) {
	if m == nil || !m.enabled {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.saves.WithLabelValues(result).Inc()
}

// RecordDetectorError counts one failed detection.
func (m *Manager) RecordDetectorError() {
	if m == nil || !m.enabled {
		return
	}
	m.detectorErrors.Inc()
}

// RecordDetectSkipped counts one frame the motion gate kept from the detector.
func (m *Manager) RecordDetectSkipped() {
	if m == nil || !m.enabled {
		return
	}
	m.detectSkipped.Inc()
}

// AddStreamClients adjusts the MJPEG client gauge by delta.
func (m *Manager) AddStreamClients(delta int) {
	if m == nil || !m.enabled {
		return
	}
	m.streamClients.Add(float64(delta))
}

// AddStatusListeners adjusts the WebSocket client gauge by delta.
func (m *Manager) AddStatusListeners(delta int) {
	if m == nil || !m.enabled {
		return
	}
	m.statusListeners.Add(float64(delta))
}
