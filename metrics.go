package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	jobs     *prometheus.CounterVec
	skipped  prometheus.Counter
	running  prometheus.Gauge
	duration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rqbench",
			Name:      "jobs_total",
			Help:      "Finished jobs by outcome.",
		}, []string{"outcome"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rqbench",
			Name:      "jobs_skipped_total",
			Help:      "Queries skipped because the run already recorded them.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rqbench",
			Name:      "jobs_running",
			Help:      "Jobs currently executing.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rqbench",
			Name:      "job_duration_seconds",
			Help:      "Wall-clock duration of completed jobs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16),
		}),
	}
	reg.MustRegister(m.jobs, m.skipped, m.running, m.duration)
	return m
}

func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.running.Inc()
}

func (m *Metrics) JobFinished(result JobResult) {
	if m == nil {
		return
	}
	m.running.Dec()
	m.jobs.WithLabelValues(result.Outcome.String()).Inc()
	if result.Outcome == OutcomeCompleted {
		m.duration.Observe(result.Elapsed.Seconds())
	}
}

func (m *Metrics) JobSkipped() {
	if m == nil {
		return
	}
	m.skipped.Inc()
}

// MetricsServer exposes the registry for scraping while a long batch is running.
type MetricsServer struct {
	server *http.Server
}

func NewMetricsServer(addr string, gatherer prometheus.Gatherer) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return &MetricsServer{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (s *MetricsServer) Start() {
	Logger.Infof("serving metrics at %v", s.server.Addr)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("metrics server failed: %v", err)
		}
	}()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
