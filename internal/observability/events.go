package observability

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event names emitted by the query pipeline.
const (
	EventProviderFetch       = "provider.fetch"
	EventAggregation         = "aggregation.complete"
	EventIntentResolved      = "intent.resolved"
	EventSynthesisTierFailed = "synthesis.tier_failed"
	EventSynthesis           = "synthesis.complete"
	EventSupplementaryFailed = "orchestrator.supplementary_failed"
	EventQueryCompleted      = "query.completed"
	EventQueryFailed         = "query.failed"
)

// Event is one structured observation. Only the fields relevant to Name are set.
type Event struct {
	Name       string
	Component  string
	Category   string
	Kind       string
	Provider   string
	Outcome    string
	Provenance string
	Path       string
	Tier       string
	Count      int
	Duration   time.Duration
	Err        error
}

// Sink receives pipeline events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(Event)
}

// Nop discards every event.
type Nop struct{}

// Emit implements Sink.
func (Nop) Emit(Event) {}

// OrNop returns s, or a Nop sink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

// Multi fans an event out to several sinks.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// LogSink renders events as structured logrus entries.
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit implements Sink.
func (s *LogSink) Emit(e Event) {
	fields := logrus.Fields{"event": e.Name}
	if e.Component != "" {
		fields["component"] = e.Component
	}
	add := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	add("category", e.Category)
	add("kind", e.Kind)
	add("provider", e.Provider)
	add("outcome", e.Outcome)
	add("provenance", e.Provenance)
	add("path", e.Path)
	add("tier", e.Tier)
	if e.Count > 0 {
		fields["count"] = e.Count
	}
	if e.Duration > 0 {
		fields["duration_ms"] = e.Duration.Milliseconds()
	}

	entry := s.logger.WithFields(fields)
	switch {
	case e.Name == EventQueryFailed:
		entry.WithError(e.Err).Error("query failed")
	case e.Err != nil:
		entry.WithError(e.Err).Warn(e.Name)
	case e.Name == EventProviderFetch:
		entry.Debug(e.Name)
	default:
		entry.Info(e.Name)
	}
}

// MetricsSink translates events into Prometheus metrics.
type MetricsSink struct {
	metrics *Metrics
}

// NewMetricsSink creates a sink updating m; nil uses DefaultMetrics.
func NewMetricsSink(m *Metrics) *MetricsSink {
	if m == nil {
		m = DefaultMetrics
	}
	return &MetricsSink{metrics: m}
}

// Emit implements Sink.
func (s *MetricsSink) Emit(e Event) {
	switch e.Name {
	case EventProviderFetch:
		s.metrics.ProviderFetchTotal.WithLabelValues(e.Provider, e.Outcome).Inc()
		s.metrics.ProviderFetchDuration.WithLabelValues(e.Provider).Observe(e.Duration.Seconds())
	case EventAggregation:
		s.metrics.AggregationsTotal.WithLabelValues(e.Kind, e.Provenance).Inc()
	case EventIntentResolved:
		s.metrics.IntentResolutions.WithLabelValues(e.Path).Inc()
	case EventSynthesis:
		s.metrics.SynthesisTotal.WithLabelValues(e.Tier).Inc()
	case EventSupplementaryFailed:
		s.metrics.SupplementaryFailures.WithLabelValues(e.Category).Inc()
	case EventQueryCompleted:
		s.metrics.QueriesTotal.WithLabelValues("ok").Inc()
		s.metrics.QueryDuration.WithLabelValues(e.Category).Observe(e.Duration.Seconds())
	case EventQueryFailed:
		s.metrics.QueriesTotal.WithLabelValues("error").Inc()
	}
}

// Recorder keeps events in memory. Used by tests to assert on pipeline behaviour.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements Sink.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Named returns recorded events with the given name.
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
