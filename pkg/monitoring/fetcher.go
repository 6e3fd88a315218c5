package monitoring

import (
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"context"
	"fmt"
	"github.com/gke-samples/gke-metrics-exporter/pkg/metrics"
	schemav1 "github.com/gke-samples/gke-metrics-exporter/pkg/schema/v1"
	"github.com/icinga/icinga-go-library/logging"
	"go.uber.org/zap"
	"slices"
	"time"
)

// Fetcher queries metrics of a namespace and normalizes them into rows.
type Fetcher struct {
	client    TimeSeriesLister
	projectId string
	logger    *logging.Logger
}

// NewFetcher creates a new Fetcher.
func NewFetcher(client TimeSeriesLister, projectId string, logger *logging.Logger) *Fetcher {
	return &Fetcher{
		client:    client,
		projectId: projectId,
		logger:    logger,
	}
}

// FetchMetric queries the metric name with spec in namespace for the window ending at runAt.
// It returns one row per time series with at least one point.
// Failures are logged and result in no rows.
func (f *Fetcher) FetchMetric(
	ctx context.Context, name string, spec metrics.QuerySpec, namespace string, runAt time.Time,
) (rows []schemav1.MetricRow) {
	logger := f.logger.With(zap.String("metric", name), zap.String("namespace", namespace))

	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("Unexpected error while building rows", zap.String("error", fmt.Sprint(r)))
			rows = nil
		}
	}()

	family := metrics.FamilyOf(name)
	req := newRequest(f.projectId, NamespaceFilter(spec.MetricId, namespace), runAt, spec, monitoringpb.ListTimeSeriesRequest_FULL)

	err := f.client.ListTimeSeries(ctx, req, func(ts *monitoringpb.TimeSeries) error {
		points := Points(ts)
		if len(points) == 0 {
			return nil
		}

		rows = append(rows, schemav1.MetricRow{
			Identity:     ExtractIdentity(family, ts),
			RunTimestamp: runAt,
			MetricName:   name,
			Points:       points,
		})

		return nil
	})
	if err != nil {
		logger.Errorw("Can't fetch metric", zap.Error(err))

		return nil
	}

	logger.Debugw("Built rows", zap.Int("rows", len(rows)))

	return rows
}

// Points returns the points of ts in chronological order.
func Points(ts *monitoringpb.TimeSeries) []schemav1.MetricPoint {
	points := make([]schemav1.MetricPoint, 0, len(ts.GetPoints()))
	for _, p := range ts.GetPoints() {
		at := p.GetInterval().GetStartTime()
		if at == nil {
			at = p.GetInterval().GetEndTime()
		}

		points = append(points, schemav1.MetricPoint{
			Timestamp: at.AsTime(),
			Value:     Value(p.GetValue()),
		})
	}

	// The API returns the newest point first.
	slices.SortStableFunc(points, func(a, b schemav1.MetricPoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return points
}

// Value returns the double value of v, or its int64 value if the double value is zero.
// A genuine double 0.0 therefore reads the int64 field, which is zero as well for double typed metrics.
func Value(v *monitoringpb.TypedValue) float64 {
	if d := v.GetDoubleValue(); d != 0 {
		return d
	}

	return float64(v.GetInt64Value())
}
