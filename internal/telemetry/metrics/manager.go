package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// timer event label values
const (
	TimerEventStarted      = "started"
	TimerEventPaused       = "paused"
	TimerEventResumed      = "resumed"
	TimerEventStopped      = "stopped"
	TimerEventCompleted    = "completed"
	TimerEventRestStarted  = "rest_started"
	TimerEventRestFinished = "rest_finished"
	TimerEventRestStopped  = "rest_stopped"
	TimerEventCleared      = "cleared"
)

// auto-save result label values
const (
	AutoSaveSaved      = "saved"
	AutoSaveUnresolved = "unresolved"
	AutoSaveInvalid    = "invalid"
	AutoSaveFailed     = "failed"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter
	CounterTimerEvents         *prometheus.CounterVec
	CounterAutoSaves           *prometheus.CounterVec
	CounterPersistenceErrors   prometheus.Counter

	// gauges
	GaugeRequests       prometheus.Gauge
	GaugeLifeSignal     prometheus.Gauge
	GaugeActiveTimers   prometheus.Gauge
	GaugeRestTimers     prometheus.Gauge
	GaugeSubscribers    prometheus.Gauge
	GaugeTotalActiveSec prometheus.Gauge

	// histograms
	HistogramRequestDuration  *prometheus.HistogramVec
	HistogramAutoSaveDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("gymtimers", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("gymtimers", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterTimerEvents := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "timer_events",
		Help:      "The total number of timer lifecycle events",
	}, []string{"event"})
	counterAutoSaves := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "autosave",
		Help:      "The total number of auto-save attempts, by result",
	}, []string{"result"})
	counterPersistenceErrors := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "timers_persistence_errors",
		Help:      "The total number of failed timer state reads/writes",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})
	gaugeActiveTimers := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "active_timers",
		Help:      "Current number of active exercise timers",
	})
	gaugeRestTimers := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rest_timers",
		Help:      "Current number of running rest timers",
	})
	gaugeSubscribers := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "timer_subscribers",
		Help:      "Current number of timer state subscribers",
	})
	gaugeTotalActiveSec := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "daily_active_seconds",
		Help:      "Exercise time accumulated today, in seconds",
	})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "status_code"})
	histogramAutoSaveDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "autosave_duration_seconds",
		Help:      "Duration of a single auto-save run in seconds",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	return &Manager{
		CounterRequests:            counterRequests,
		CounterHandleRequestPanic:  counterHandleRequestPanic,
		CounterRateLimitedRequests: counterRateLimitedRequests,
		CounterTimerEvents:         counterTimerEvents,
		CounterAutoSaves:           counterAutoSaves,
		CounterPersistenceErrors:   counterPersistenceErrors,
		GaugeRequests:              gaugeRequests,
		GaugeLifeSignal:            gaugeLifeSignal,
		GaugeActiveTimers:          gaugeActiveTimers,
		GaugeRestTimers:            gaugeRestTimers,
		GaugeSubscribers:           gaugeSubscribers,
		GaugeTotalActiveSec:        gaugeTotalActiveSec,
		HistogramRequestDuration:   histogramRequestDuration,
		HistogramAutoSaveDuration:  histogramAutoSaveDuration,
	}
}

// TimerEvent counts a timer lifecycle event. Safe to call on a nil manager.
func (m *Manager) TimerEvent(event string) {
	if m == nil {
		return
	}
	m.CounterTimerEvents.WithLabelValues(event).Inc()
}

// AutoSave counts an auto-save outcome. Safe to call on a nil manager.
func (m *Manager) AutoSave(result string, durationSec float64) {
	if m == nil {
		return
	}
	m.CounterAutoSaves.WithLabelValues(result).Inc()
	m.HistogramAutoSaveDuration.Observe(durationSec)
}

// TimersState updates the timer gauges. Safe to call on a nil manager.
func (m *Manager) TimersState(active, rest, totalActiveSec int) {
	if m == nil {
		return
	}
	m.GaugeActiveTimers.Set(float64(active))
	m.GaugeRestTimers.Set(float64(rest))
	m.GaugeTotalActiveSec.Set(float64(totalActiveSec))
}

// PersistenceError counts a failed timer state read/write. Safe to call on a nil manager.
func (m *Manager) PersistenceError() {
	if m == nil {
		return
	}
	m.CounterPersistenceErrors.Inc()
}
