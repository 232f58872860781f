package progress

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink exports crawl progress via Prometheus. It owns collectors
// for run lifecycle, frontier iterations, and page-level failures.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runDuration   prometheus.Histogram

	iterations    prometheus.Counter
	leavesFound   prometheus.Gauge
	pendingLinks  prometheus.Gauge
	pageErrors    prometheus.Counter
	recordsClosed prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
// A nil registerer falls back to the default one.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webbook_runs_started_total",
			Help: "Total crawl runs that have started.",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webbook_runs_completed_total",
			Help: "Total crawl runs completed partitioned by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "webbook_run_duration_seconds",
			Help:    "Wall time per completed crawl run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webbook_frontier_iterations_total",
			Help: "Frontier expansion rounds executed.",
		}),
		leavesFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "webbook_leaves_discovered",
			Help: "Cumulative leaf links discovered by the current run.",
		}),
		pendingLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "webbook_frontier_pending",
			Help: "Links awaiting expansion in the next round.",
		}),
		pageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webbook_page_errors_total",
			Help: "Pages that failed to fetch or parse.",
		}),
		recordsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webbook_records_extracted_total",
			Help: "Chemical records successfully extracted.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runDuration,
		s.iterations,
		s.leavesFound,
		s.pendingLinks,
		s.pageErrors,
		s.recordsClosed,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors from the batch. Safe for concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, batch []Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt Event) {
	switch evt.Stage {
	case StageRunStart:
		s.runsStarted.Inc()
	case StageIteration:
		s.iterations.Inc()
		s.leavesFound.Set(float64(evt.Leaves))
		s.pendingLinks.Set(float64(evt.Pending))
	case StagePageError:
		s.pageErrors.Inc()
	case StageRunDone:
		result := "success"
		if evt.Note != "" {
			result = "truncated"
		}
		s.runsCompleted.WithLabelValues(result).Inc()
		s.leavesFound.Set(float64(evt.Leaves))
		s.pendingLinks.Set(float64(evt.Pending))
		if evt.Dur > 0 {
			s.runDuration.Observe(evt.Dur.Seconds())
		}
	case StageRecordsDone:
		s.recordsClosed.Add(float64(evt.Records))
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
