package deploy

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/newtron-network/gns3lab/pkg/util"
)

// Metrics collects controller call and stage timings for one deploy.
// A nil *Metrics discards everything.
type Metrics struct {
	Registry *prometheus.Registry

	apiCalls     *prometheus.CounterVec
	apiDuration  *prometheus.HistogramVec
	stageRuns    *prometheus.CounterVec
	stageSeconds *prometheus.GaugeVec
}

// NewMetrics creates metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gns3lab",
			Name:      "api_requests_total",
			Help:      "GNS3 controller requests by call and HTTP status (0 = transport error).",
		}, []string{"call", "status"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gns3lab",
			Name:      "api_request_duration_seconds",
			Help:      "GNS3 controller request latency by call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"call"}),
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gns3lab",
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by stage and result.",
		}, []string{"stage", "result"}),
		stageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gns3lab",
			Name:      "stage_duration_seconds",
			Help:      "Duration of the last execution of each pipeline stage.",
		}, []string{"stage"}),
	}
	m.Registry.MustRegister(m.apiCalls, m.apiDuration, m.stageRuns, m.stageSeconds)
	return m
}

// ObserveCall records one controller request. Its signature matches
// gns3.Observer.
func (m *Metrics) ObserveCall(call string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.apiCalls.WithLabelValues(call, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(call).Observe(elapsed.Seconds())
}

func (m *Metrics) observeStage(stage string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.stageRuns.WithLabelValues(stage, result).Inc()
	m.stageSeconds.WithLabelValues(stage).Set(elapsed.Seconds())
}

// WriteTextfile writes all metrics in the Prometheus text format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}

// metricsStage writes the metrics textfile.
type metricsStage struct{}

func (metricsStage) Name() string { return StageMetrics }

func (metricsStage) Run(_ context.Context, d *Deployer) error {
	if d.opts.MetricsFile == "" || d.metrics == nil {
		util.WithStage(StageMetrics).Debugf("No metrics file configured")
		return nil
	}
	if err := d.metrics.WriteTextfile(d.opts.MetricsFile); err != nil {
		return fmt.Errorf("deploy: write metrics: %w", err)
	}
	d.artifacts = append(d.artifacts, d.opts.MetricsFile)
	return nil
}
