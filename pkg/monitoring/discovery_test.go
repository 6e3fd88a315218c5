package monitoring

import (
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"context"
	"github.com/gke-samples/gke-metrics-exporter/pkg/metrics"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/sets"
	"strings"
	"testing"
	"time"
)

func namespaceSpec(t *testing.T) metrics.QuerySpec {
	spec, err := metrics.NewQuerySpec(
		"kubernetes.io/container/cpu/core_usage_time", time.Hour, 10*time.Minute,
		metrics.AlignNone, metrics.ReduceCount, metrics.ValueFloat, []string{`resource.label."namespace_name"`})
	if err != nil {
		t.Fatal(err)
	}

	return spec
}

func TestDiscoverNamespaces(t *testing.T) {
	lister := &fakeLister{series: []*monitoringpb.TimeSeries{
		newSeries("ns-a"),
		newSeries("ns-b"),
		newSeries("ns-a"),
		newSeries("kube-system"),
		newSeries("gke-mcs"),
		newSeries(""),
	}}

	d := NewDiscoverer(lister, "my-project", namespaceSpec(t), metrics.ExcludedNamespaces, testLogger(t))
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	got := d.DiscoverNamespaces(context.Background(), start)
	if want := sets.New("ns-a", "ns-b"); !got.Equal(want) {
		t.Errorf("got %v, wanted %v", sets.List(got), sets.List(want))
	}

	if len(lister.requests) != 1 {
		t.Fatalf("got %d requests, wanted 1", len(lister.requests))
	}

	req := lister.requests[0]
	if req.GetView() != monitoringpb.ListTimeSeriesRequest_HEADERS {
		t.Errorf("got view %s, wanted HEADERS", req.GetView())
	}
	if req.GetName() != "projects/my-project" {
		t.Errorf("got name %q", req.GetName())
	}
	for _, ns := range metrics.ExcludedNamespaces {
		if !strings.Contains(req.GetFilter(), `NOT resource.label.namespace_name = "`+ns+`"`) {
			t.Errorf("filter %q does not exclude %s", req.GetFilter(), ns)
		}
	}
	if got := req.GetInterval().GetEndTime().AsTime(); !got.Equal(start) {
		t.Errorf("got interval end %s, wanted %s", got, start)
	}
	if got := req.GetInterval().GetStartTime().AsTime(); !got.Equal(start.Add(-time.Hour)) {
		t.Errorf("got interval start %s, wanted %s", got, start.Add(-time.Hour))
	}
}

func TestDiscoverNamespacesNeverReturnsExcluded(t *testing.T) {
	var series []*monitoringpb.TimeSeries
	for _, ns := range metrics.ExcludedNamespaces {
		series = append(series, newSeries(ns))
	}

	d := NewDiscoverer(&fakeLister{series: series}, "p", namespaceSpec(t), metrics.ExcludedNamespaces, testLogger(t))

	if got := d.DiscoverNamespaces(context.Background(), time.Now()); got.Len() != 0 {
		t.Errorf("got %v, wanted no namespaces", sets.List(got))
	}
}

func TestDiscoverNamespacesPartialOnError(t *testing.T) {
	lister := &fakeLister{
		series: []*monitoringpb.TimeSeries{newSeries("ns-a")},
		err:    errors.New("unavailable"),
	}

	d := NewDiscoverer(lister, "p", namespaceSpec(t), metrics.ExcludedNamespaces, testLogger(t))

	if got := d.DiscoverNamespaces(context.Background(), time.Now()); !got.Equal(sets.New("ns-a")) {
		t.Errorf("got %v, wanted the partial set [ns-a]", sets.List(got))
	}

	lister = &fakeLister{err: errors.New("permission denied")}
	d = NewDiscoverer(lister, "p", namespaceSpec(t), metrics.ExcludedNamespaces, testLogger(t))

	if got := d.DiscoverNamespaces(context.Background(), time.Now()); got.Len() != 0 {
		t.Errorf("got %v, wanted no namespaces", sets.List(got))
	}
}
