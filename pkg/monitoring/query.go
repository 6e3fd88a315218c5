package monitoring

import (
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"fmt"
	"github.com/gke-samples/gke-metrics-exporter/pkg/metrics"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"strings"
	"time"
)

// ProjectName returns the resource name queries are scoped to.
func ProjectName(projectId string) string {
	return "projects/" + projectId
}

// Interval returns the closed interval [end-window, end].
func Interval(end time.Time, window time.Duration) *monitoringpb.TimeInterval {
	return &monitoringpb.TimeInterval{
		StartTime: timestamppb.New(end.Add(-window)),
		EndTime:   timestamppb.New(end),
	}
}

// Aggregation returns the aggregation descriptor of spec.
func Aggregation(spec metrics.QuerySpec) *monitoringpb.Aggregation {
	return &monitoringpb.Aggregation{
		AlignmentPeriod:    durationpb.New(spec.SampleInterval),
		PerSeriesAligner:   aligner(spec.Aligner),
		CrossSeriesReducer: reducer(spec.Reducer),
		GroupByFields:      spec.GroupBy,
	}
}

func aligner(a metrics.Aligner) monitoringpb.Aggregation_Aligner {
	switch a {
	case metrics.AlignRate:
		return monitoringpb.Aggregation_ALIGN_RATE
	case metrics.AlignMean:
		return monitoringpb.Aggregation_ALIGN_MEAN
	case metrics.AlignMax:
		return monitoringpb.Aggregation_ALIGN_MAX
	default:
		return monitoringpb.Aggregation_ALIGN_NONE
	}
}

func reducer(r metrics.Reducer) monitoringpb.Aggregation_Reducer {
	switch r {
	case metrics.ReduceMean:
		return monitoringpb.Aggregation_REDUCE_MEAN
	case metrics.ReduceMax:
		return monitoringpb.Aggregation_REDUCE_MAX
	case metrics.ReducePercentile95:
		return monitoringpb.Aggregation_REDUCE_PERCENTILE_95
	default:
		return monitoringpb.Aggregation_REDUCE_COUNT
	}
}

// MetricFilter restricts a query to a metric type.
func MetricFilter(metricId string) string {
	return fmt.Sprintf(`metric.type = %q`, metricId)
}

// NamespaceFilter restricts a query to a single namespace.
func NamespaceFilter(metricId, namespace string) string {
	return fmt.Sprintf(`%s AND resource.label.namespace_name = %q`, MetricFilter(metricId), namespace)
}

// ExcludeNamespacesFilter excludes the given namespaces from a query.
func ExcludeNamespacesFilter(metricId string, excluded []string) string {
	clauses := make([]string, 0, len(excluded)+1)
	clauses = append(clauses, MetricFilter(metricId))
	for _, ns := range excluded {
		clauses = append(clauses, fmt.Sprintf(`NOT resource.label.namespace_name = %q`, ns))
	}

	return strings.Join(clauses, " AND ")
}

func newRequest(
	projectId, filter string, end time.Time, spec metrics.QuerySpec, view monitoringpb.ListTimeSeriesRequest_TimeSeriesView,
) *monitoringpb.ListTimeSeriesRequest {
	return &monitoringpb.ListTimeSeriesRequest{
		Name:        ProjectName(projectId),
		Filter:      filter,
		Interval:    Interval(end, spec.Window),
		Aggregation: Aggregation(spec),
		View:        view,
	}
}
