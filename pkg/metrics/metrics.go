// Package metrics turns walk outcomes into Prometheus counters that can be
// written in the node_exporter textfile format after a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"igposts/pkg/walker"
)

// Run holds the counters of one igposts invocation
type Run struct {
	registry *prometheus.Registry

	downloaded  *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	walks       *prometheus.CounterVec
	duration    prometheus.Gauge
	succeededAt prometheus.Gauge
}

// New creates a Run with its own registry
func New() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Run{
		registry: reg,
		downloaded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "igposts_posts_downloaded_total",
			Help: "Posts fetched, by profile and walk kind",
		}, []string{"username", "kind"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "igposts_posts_skipped_total",
			Help: "Posts skipped, by profile, walk kind and reason",
		}, []string{"username", "kind", "reason"}),
		walks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "igposts_walks_total",
			Help: "Walks run, by walk kind and outcome",
		}, []string{"kind", "outcome"}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "igposts_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		// registered by Observe only when every walk succeeded
		succeededAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "igposts_run_success_timestamp_seconds",
			Help: "Unix time at which this run finished, present only when every walk succeeded",
		}),
	}
}

// Observe adds the outcomes of a run
func (r *Run) Observe(outcomes []walker.Outcome, took time.Duration, finished time.Time) {
	ok := true
	for _, o := range outcomes {
		kind := o.Options.Filter.String()
		if o.Result != nil {
			r.downloaded.WithLabelValues(o.Options.Username, kind).Add(float64(o.Result.Downloaded))
			r.skipped.WithLabelValues(o.Options.Username, kind, "start").Add(float64(o.Result.SkippedStart))
			r.skipped.WithLabelValues(o.Options.Username, kind, "kind").Add(float64(o.Result.SkippedMedia))
		}

		outcome := "success"
		if o.Err != nil {
			outcome = "failure"
			ok = false
		}
		r.walks.WithLabelValues(kind, outcome).Inc()
	}

	r.duration.Set(took.Seconds())
	if ok {
		r.succeededAt.Set(float64(finished.Unix()))
		// a second Observe on the same Run finds the gauge already registered
		_ = r.registry.Register(r.succeededAt)
	}
}

// Registry exposes the underlying registry
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the counters to path atomically
func (r *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
