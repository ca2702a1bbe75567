// Package metrics exposes reconciliation counters for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the planner counters. A nil *Metrics is a no-op.
type Metrics struct {
	registry    *prometheus.Registry
	ticks       prometheus.Counter
	skipped     prometheus.Counter
	completions prometheus.Counter
	grants      prometheus.Counter
	levelUps    prometheus.Counter
	failures    *prometheus.CounterVec
	tickSeconds prometheus.Histogram
}

// New registers the planner collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "planner", Name: "reconcile_ticks_total",
			Help: "Reconciliation ticks that ran.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "planner", Name: "reconcile_ticks_skipped_total",
			Help: "Ticks skipped because the previous tick was still running.",
		}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "planner", Name: "schedule_completions_total",
			Help: "Schedules persisted as done by the reconciler.",
		}),
		grants: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "planner", Name: "reward_grants_total",
			Help: "Reward grants written.",
		}),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "planner", Name: "level_ups_total",
			Help: "Levels gained by users.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner", Name: "reconcile_failures_total",
			Help: "Failed store operations during reconciliation.",
		}, []string{"stage"}),
		tickSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "planner", Name: "reconcile_tick_seconds",
			Help:    "Duration of reconciliation ticks.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.ticks, m.skipped, m.completions, m.grants, m.levelUps, m.failures, m.tickSeconds)
	return m
}

func (m *Metrics) TickRan(d time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickSeconds.Observe(d.Seconds())
}

func (m *Metrics) TickSkipped() {
	if m == nil {
		return
	}
	m.skipped.Inc()
}

func (m *Metrics) Completed() {
	if m == nil {
		return
	}
	m.completions.Inc()
}

func (m *Metrics) Granted(levels int) {
	if m == nil {
		return
	}
	m.grants.Inc()
	m.levelUps.Add(float64(levels))
}

// Failed counts a failure at a stage such as "refresh", "mark_done" or "reward".
func (m *Metrics) Failed(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
