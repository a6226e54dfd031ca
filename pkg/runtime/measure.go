package runtime

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/sauron/pkg/vdom"
)

// Measurements is the record assembled after a commit pass that opted
// into logging (§4.7 step 4): node count, the three phase durations,
// their total, and RetainCount, which holds the number of patches in the
// batch just applied (not a count of retained DOM nodes).
type Measurements struct {
	Name           string
	NodeCount      int
	DiffTime       time.Duration
	PatchBuildTime time.Duration
	DOMApplyTime   time.Duration
	Total          time.Duration
	RetainCount    int
}

// MeasurementsSink receives a Measurements record for every commit that
// requested logging, in addition to whatever the Application's own
// Measurements hook does with it.
type MeasurementsSink interface {
	Observe(m Measurements)
}

// PrometheusSink records each commit's node count and phase durations
// as histogram observations.
type PrometheusSink struct {
	nodeCount  prometheus.Histogram
	diff       prometheus.Histogram
	patchBuild prometheus.Histogram
	domApply   prometheus.Histogram
	total      prometheus.Histogram
}

// NewPrometheusSink registers one histogram per phase under namespace
// "vdom_commit" and returns a sink ready to pass to WithMeasurementsSink.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	mk := func(name string) prometheus.Histogram {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vdom",
			Subsystem: "commit",
			Name:      name,
			Buckets:   prometheus.DefBuckets,
		})
		reg.MustRegister(h)
		return h
	}
	return &PrometheusSink{
		nodeCount:  mk("node_count"),
		diff:       mk("diff_seconds"),
		patchBuild: mk("patch_build_seconds"),
		domApply:   mk("dom_apply_seconds"),
		total:      mk("total_seconds"),
	}
}

// Observe implements MeasurementsSink.
func (s *PrometheusSink) Observe(m Measurements) {
	s.nodeCount.Observe(float64(m.NodeCount))
	s.diff.Observe(m.DiffTime.Seconds())
	s.patchBuild.Observe(m.PatchBuildTime.Seconds())
	s.domApply.Observe(m.DOMApplyTime.Seconds())
	s.total.Observe(m.Total.Seconds())
}

// OTelSink records each commit as a span carrying the same figures as
// attributes, for deployments that already ship traces rather than
// scrape metrics.
type OTelSink struct {
	tracer trace.Tracer
}

// NewOTelSink resolves a tracer named tracerName from the global
// provider (otel.SetTracerProvider is the host application's concern).
func NewOTelSink(tracerName string) *OTelSink {
	return &OTelSink{tracer: otel.Tracer(tracerName)}
}

// Observe implements MeasurementsSink.
func (s *OTelSink) Observe(m Measurements) {
	_, span := s.tracer.Start(context.Background(), "vdom.commit", trace.WithAttributes(
		attribute.Int("vdom.node_count", m.NodeCount),
		attribute.Int64("vdom.diff_ns", m.DiffTime.Nanoseconds()),
		attribute.Int64("vdom.patch_build_ns", m.PatchBuildTime.Nanoseconds()),
		attribute.Int64("vdom.dom_apply_ns", m.DOMApplyTime.Nanoseconds()),
		attribute.Int64("vdom.total_ns", m.Total.Nanoseconds()),
		attribute.String("vdom.measurement_name", m.Name),
	))
	span.End()
}

// countNodes counts every Element/Leaf reachable in a rendered tree, the
// "node count" figure of a Measurements record. Component/TemplatedView
// leaves count their rendered output, not themselves, since only the
// latter ever reaches the DOM.
func countNodes[MSG any](n *vdom.Node[MSG]) int {
	if n == nil {
		return 0
	}
	if n.Kind == vdom.KindElement {
		total := 1
		for _, c := range n.Children {
			total += countNodes(c)
		}
		return total
	}
	switch n.Leaf {
	case vdom.LeafFragment, vdom.LeafNodeList:
		total := 0
		for _, c := range n.List {
			total += countNodes(c)
		}
		return total
	case vdom.LeafTemplatedView:
		return countNodes(n.View)
	case vdom.LeafStatelessComponent, vdom.LeafStatefulComponent:
		return countNodes(n.Comp.Render())
	default:
		return 1
	}
}
