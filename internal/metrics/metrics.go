// Package metrics exposes Prometheus collectors for the drawing pipeline.
//
// A nil *Metrics is valid and records nothing, so components can take one
// optionally.
package metrics

import (
	"time"

	"github.com/ayusman/scribbly/internal/interact"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scribbly"

// Metrics holds the pipeline collectors.
type Metrics struct {
	Frames         prometheus.Counter
	HandsDetected  prometheus.Counter
	DetectErrors   prometheus.Counter
	StrokesStarted prometheus.Counter
	Points         prometheus.Counter
	Actions        *prometheus.CounterVec
	Strokes        prometheus.Gauge
	StateClients   prometheus.Gauge
	FrameDuration  prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames processed by the pipeline.",
		}),
		HandsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hand_frames_total",
			Help:      "Frames in which a hand was detected.",
		}),
		DetectErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detect_errors_total",
			Help:      "Frames skipped because hand detection failed.",
		}),
		StrokesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strokes_started_total",
			Help:      "Strokes opened by the finger-up gesture.",
		}),
		Points: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_total",
			Help:      "Points appended to strokes.",
		}),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Panel actions fired, by button.",
			},
			[]string{"button"},
		),
		Strokes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "strokes",
			Help:      "Strokes currently on the canvas.",
		}),
		StateClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_clients",
			Help:      "Connected state feed clients.",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent processing one frame.",
			Buckets:   []float64{.005, .01, .02, .033, .05, .1, .25, .5},
		}),
	}

	reg.MustRegister(
		m.Frames,
		m.HandsDetected,
		m.DetectErrors,
		m.StrokesStarted,
		m.Points,
		m.Actions,
		m.Strokes,
		m.StateClients,
		m.FrameDuration,
	)
	return m
}

// ObserveStep records the outcome of one processed frame.
func (m *Metrics) ObserveStep(res interact.Result, strokes int, d time.Duration) {
	if m == nil {
		return
	}
	m.Frames.Inc()
	if res.HasCursor {
		m.HandsDetected.Inc()
	}
	if res.StrokeStarted {
		m.StrokesStarted.Inc()
	}
	if res.PointAdded {
		m.Points.Inc()
	}
	m.Strokes.Set(float64(strokes))
	m.FrameDuration.Observe(d.Seconds())
}

// ObserveAction counts a fired panel action.
func (m *Metrics) ObserveAction(b interact.Button) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(b.String()).Inc()
}

// DetectFailed counts a frame dropped by a detector error.
func (m *Metrics) DetectFailed() {
	if m == nil {
		return
	}
	m.DetectErrors.Inc()
}

// ClientConnected tracks state feed subscribers.
func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.StateClients.Inc()
}

// ClientDisconnected is the counterpart of ClientConnected.
func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.StateClients.Dec()
}
