package monitoring

import (
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"context"
	"github.com/gke-samples/gke-metrics-exporter/pkg/metrics"
	"github.com/icinga/icinga-go-library/logging"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/sets"
	"time"
)

// Discoverer enumerates the namespaces that reported metrics recently.
type Discoverer struct {
	client    TimeSeriesLister
	projectId string
	spec      metrics.QuerySpec
	excluded  sets.Set[string]
	logger    *logging.Logger
}

// NewDiscoverer creates a new Discoverer that runs spec and ignores the namespaces in excluded.
func NewDiscoverer(
	client TimeSeriesLister, projectId string, spec metrics.QuerySpec, excluded []string, logger *logging.Logger,
) *Discoverer {
	return &Discoverer{
		client:    client,
		projectId: projectId,
		spec:      spec,
		excluded:  sets.New(excluded...),
		logger:    logger,
	}
}

// DiscoverNamespaces returns the namespaces with time series in the window ending at start.
// Errors are logged and the namespaces collected so far are returned.
func (d *Discoverer) DiscoverNamespaces(ctx context.Context, start time.Time) sets.Set[string] {
	namespaces := sets.New[string]()

	req := newRequest(
		d.projectId,
		ExcludeNamespacesFilter(d.spec.MetricId, sets.List(d.excluded)),
		start,
		d.spec,
		monitoringpb.ListTimeSeriesRequest_HEADERS,
	)

	d.logger.Debugw("Discovering namespaces", zap.String("filter", req.GetFilter()))

	err := d.client.ListTimeSeries(ctx, req, func(ts *monitoringpb.TimeSeries) error {
		ns := ts.GetResource().GetLabels()["namespace_name"]
		if ns != "" && !d.excluded.Has(ns) {
			namespaces.Insert(ns)
		}

		return nil
	})
	if err != nil {
		d.logger.Errorw("Can't discover namespaces", zap.Error(err), zap.Int("partial", namespaces.Len()))
	}

	return namespaces
}
