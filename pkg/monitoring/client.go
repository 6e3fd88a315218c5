package monitoring

import (
	cloudmonitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"context"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

// TimeSeriesLister executes time series queries against the monitoring backend
// and passes every returned series to fn.
// Iteration stops at the first error returned by the backend or by fn.
type TimeSeriesLister interface {
	ListTimeSeries(ctx context.Context, req *monitoringpb.ListTimeSeriesRequest, fn func(*monitoringpb.TimeSeries) error) error
}

// MetricClient is a read-only Cloud Monitoring client.
type MetricClient struct {
	client *cloudmonitoring.MetricClient
}

// NewMetricClient creates a Cloud Monitoring client using the ambient credentials.
func NewMetricClient(ctx context.Context) (*MetricClient, error) {
	client, err := cloudmonitoring.NewMetricClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "can't create Cloud Monitoring client")
	}

	return &MetricClient{client: client}, nil
}

// ListTimeSeries implements the TimeSeriesLister interface.
func (c *MetricClient) ListTimeSeries(
	ctx context.Context, req *monitoringpb.ListTimeSeriesRequest, fn func(*monitoringpb.TimeSeries) error,
) error {
	it := c.client.ListTimeSeries(ctx, req)
	for {
		ts, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "can't list time series")
		}

		if err := fn(ts); err != nil {
			return err
		}
	}
}

// Close closes the underlying connection.
func (c *MetricClient) Close() error {
	return c.client.Close()
}

// Assert interface compliance.
var _ TimeSeriesLister = (*MetricClient)(nil)
