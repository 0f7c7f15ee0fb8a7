package api

import (
	"context"
	"errors"
	"time"

	"lintang/routedescription/domain"
	"lintang/routedescription/pkg/guidance"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics implements guidance.StageObserver.
type PipelineMetrics struct {
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	routes        *prometheus.CounterVec
	routeNodes    prometheus.Histogram
	descriptions  *prometheus.CounterVec
}

var _ guidance.StageObserver = (*PipelineMetrics)(nil)

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "postprocessor_duration_seconds",
			Help:      "The duration of one postprocessor run",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"postprocessor"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "postprocessor_failures_total",
			Help:      "The total number of failed postprocessor runs",
		}, []string{"postprocessor"}),
		routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "routes_total",
			Help:      "The total number of postprocessed routes by result",
		}, []string{"result"}),
		routeNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "route_nodes",
			Help:      "The number of nodes of postprocessed routes",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 12),
		}),
		descriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "descriptions_total",
			Help:      "The total number of descriptions attached by kind",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.stageDuration, m.stageFailures, m.routes, m.routeNodes, m.descriptions)
	return m
}

func (m *PipelineMetrics) StageDone(name string, elapsed time.Duration, err error) {
	m.stageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		m.stageFailures.WithLabelValues(name).Inc()
	}
}

func (m *PipelineMetrics) RouteDone(description *guidance.RouteDescription, err error) {
	m.routes.WithLabelValues(ResultLabel(err)).Inc()
	if err != nil {
		return
	}
	m.routeNodes.Observe(float64(description.Len()))
	for i := range description.Nodes() {
		for _, d := range description.Node(i).Descriptions() {
			m.descriptions.WithLabelValues(d.Kind().String()).Inc()
		}
	}
}

// ResultLabel is the routes_total label of a pipeline result.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case domain.IsCode(err, domain.ErrResolution):
		return "resolution"
	case domain.IsCode(err, domain.ErrPostprocessor):
		return "postprocessor"
	case domain.IsCode(err, domain.ErrInternal):
		return "internal"
	}
	return "unknown"
}
