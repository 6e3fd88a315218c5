package monitoring

import (
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/gke-samples/gke-metrics-exporter/pkg/metrics"
	schemav1 "github.com/gke-samples/gke-metrics-exporter/pkg/schema/v1"
)

// identityExtractor reads the workload identity of a time series.
type identityExtractor func(ts *monitoringpb.TimeSeries) schemav1.Identity

var identityExtractors = map[metrics.Family]identityExtractor{
	// Autoscaler trigger metrics name their scale target in the metric labels.
	metrics.HorizontalAutoscaler: func(ts *monitoringpb.TimeSeries) schemav1.Identity {
		id := resourceIdentity(ts)
		labels := ts.GetMetric().GetLabels()
		id.ControllerName = labels["targetref_name"]
		id.ControllerType = labels["targetref_kind"]
		id.ContainerName = labels["container_name"]

		return id
	},
	// Autoscaler recommendations are reported against the controller resource.
	metrics.VerticalAutoscaler: func(ts *monitoringpb.TimeSeries) schemav1.Identity {
		id := resourceIdentity(ts)
		resource := ts.GetResource().GetLabels()
		id.ControllerName = resource["controller_name"]
		id.ControllerType = resource["controller_kind"]
		id.ContainerName = ts.GetMetric().GetLabels()["container_name"]

		return id
	},
	metrics.Controller: func(ts *monitoringpb.TimeSeries) schemav1.Identity {
		id := resourceIdentity(ts)
		system := ts.GetMetadata().GetSystemLabels().GetFields()
		id.ControllerName = system["top_level_controller_name"].GetStringValue()
		id.ControllerType = system["top_level_controller_type"].GetStringValue()
		id.ContainerName = ts.GetResource().GetLabels()["container_name"]

		return id
	},
}

// ExtractIdentity returns the identity of ts according to the label layout of the metric family.
func ExtractIdentity(family metrics.Family, ts *monitoringpb.TimeSeries) schemav1.Identity {
	extract, ok := identityExtractors[family]
	if !ok {
		extract = identityExtractors[metrics.Controller]
	}

	return extract(ts)
}

func resourceIdentity(ts *monitoringpb.TimeSeries) schemav1.Identity {
	labels := ts.GetResource().GetLabels()

	return schemav1.Identity{
		ProjectId:     labels["project_id"],
		Location:      labels["location"],
		ClusterName:   labels["cluster_name"],
		NamespaceName: labels["namespace_name"],
	}
}
