package monitoring

import (
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"context"
	"github.com/icinga/icinga-go-library/logging"
	"go.uber.org/zap/zaptest"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"testing"
	"time"
)

// fakeLister replays series and records the requests it receives.
// If err is set, it is returned after all series have been passed on.
type fakeLister struct {
	series   []*monitoringpb.TimeSeries
	err      error
	requests []*monitoringpb.ListTimeSeriesRequest
}

func (l *fakeLister) ListTimeSeries(
	_ context.Context, req *monitoringpb.ListTimeSeriesRequest, fn func(*monitoringpb.TimeSeries) error,
) error {
	l.requests = append(l.requests, req)

	for _, ts := range l.series {
		if err := fn(ts); err != nil {
			return err
		}
	}

	return l.err
}

func testLogger(t *testing.T) *logging.Logger {
	return logging.NewLogger(zaptest.NewLogger(t).Sugar(), time.Second)
}

type seriesOption func(*monitoringpb.TimeSeries)

func withMetricLabels(labels map[string]string) seriesOption {
	return func(ts *monitoringpb.TimeSeries) {
		ts.Metric.Labels = labels
	}
}

func withSystemLabels(t *testing.T, labels map[string]any) seriesOption {
	return func(ts *monitoringpb.TimeSeries) {
		s, err := structpb.NewStruct(labels)
		if err != nil {
			t.Fatal(err)
		}

		ts.Metadata = &monitoredres.MonitoredResourceMetadata{SystemLabels: s}
	}
}

func withResourceLabels(labels map[string]string) seriesOption {
	return func(ts *monitoringpb.TimeSeries) {
		for k, v := range labels {
			ts.Resource.Labels[k] = v
		}
	}
}

func withDoublePoints(points ...point) seriesOption {
	return func(ts *monitoringpb.TimeSeries) {
		for _, p := range points {
			ts.Points = append(ts.Points, &monitoringpb.Point{
				Interval: &monitoringpb.TimeInterval{StartTime: timestamppb.New(p.at), EndTime: timestamppb.New(p.at)},
				Value:    &monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_DoubleValue{DoubleValue: p.value}},
			})
		}
	}
}

type point struct {
	at    time.Time
	value float64
}

func newSeries(namespace string, opts ...seriesOption) *monitoringpb.TimeSeries {
	ts := &monitoringpb.TimeSeries{
		Metric: &metricpb.Metric{Labels: map[string]string{}},
		Resource: &monitoredres.MonitoredResource{
			Type: "k8s_container",
			Labels: map[string]string{
				"project_id":     "my-project",
				"location":       "us-central1",
				"cluster_name":   "cluster-1",
				"namespace_name": namespace,
			},
		},
	}

	for _, opt := range opts {
		opt(ts)
	}

	return ts
}
