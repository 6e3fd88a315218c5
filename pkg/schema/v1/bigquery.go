package v1

import (
	"cloud.google.com/go/bigquery"
)

// Schema is the warehouse table schema rows are written with.
// Timestamps are sent in their canonical string form, which DATETIME columns accept.
var Schema = bigquery.Schema{
	{Name: "run_date", Type: bigquery.StringFieldType, Required: true},
	{Name: "metric_name", Type: bigquery.StringFieldType, Required: true},
	{Name: "project_id", Type: bigquery.StringFieldType},
	{Name: "location", Type: bigquery.StringFieldType},
	{Name: "cluster_name", Type: bigquery.StringFieldType},
	{Name: "namespace_name", Type: bigquery.StringFieldType},
	{Name: "controller_name", Type: bigquery.StringFieldType},
	{Name: "controller_type", Type: bigquery.StringFieldType},
	{Name: "container_name", Type: bigquery.StringFieldType},
	{
		Name:     "points_array",
		Type:     bigquery.RecordFieldType,
		Repeated: true,
		Schema: bigquery.Schema{
			{Name: "metric_timestamp", Type: bigquery.StringFieldType},
			{Name: "metric_value", Type: bigquery.FloatFieldType},
		},
	},
}

// InsertRow adapts a MetricRow to the buffered insert API.
type InsertRow struct {
	Row      MetricRow
	InsertId string
}

// Save implements the bigquery.ValueSaver interface.
func (r InsertRow) Save() (map[string]bigquery.Value, string, error) {
	points := make([]bigquery.Value, 0, len(r.Row.Points))
	for _, p := range r.Row.Points {
		points = append(points, map[string]bigquery.Value{
			"metric_timestamp": p.MetricTimestamp(),
			"metric_value":     p.Value,
		})
	}

	return map[string]bigquery.Value{
		"run_date":        r.Row.RunDate(),
		"metric_name":     r.Row.MetricName,
		"project_id":      r.Row.ProjectId,
		"location":        r.Row.Location,
		"cluster_name":    r.Row.ClusterName,
		"namespace_name":  r.Row.NamespaceName,
		"controller_name": r.Row.ControllerName,
		"controller_type": r.Row.ControllerType,
		"container_name":  r.Row.ContainerName,
		"points_array":    points,
	}, r.InsertId, nil
}

// Assert interface compliance.
var _ bigquery.ValueSaver = InsertRow{}
