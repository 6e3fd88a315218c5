package v1

import (
	"encoding/json"
	"github.com/pkg/errors"
)

// SqlColumns are the columns of the gke_metrics table, in insert order.
var SqlColumns = []string{
	"run_date",
	"metric_name",
	"project_id",
	"location",
	"cluster_name",
	"namespace_name",
	"controller_name",
	"controller_type",
	"container_name",
	"points_array",
}

// SqlRow is the flat representation of a MetricRow in a relational table.
// The points are stored as a JSON array.
type SqlRow struct {
	RunDate        string `db:"run_date"`
	MetricName     string `db:"metric_name"`
	ProjectId      string `db:"project_id"`
	Location       string `db:"location"`
	ClusterName    string `db:"cluster_name"`
	NamespaceName  string `db:"namespace_name"`
	ControllerName string `db:"controller_name"`
	ControllerType string `db:"controller_type"`
	ContainerName  string `db:"container_name"`
	PointsArray    string `db:"points_array"`
}

// TableName implements the database.TableNamer interface.
func (SqlRow) TableName() string {
	return "gke_metrics"
}

type sqlPoint struct {
	MetricTimestamp string  `json:"metric_timestamp"`
	MetricValue     float64 `json:"metric_value"`
}

// NewSqlRow flattens r.
func NewSqlRow(r MetricRow) (SqlRow, error) {
	points := make([]sqlPoint, 0, len(r.Points))
	for _, p := range r.Points {
		points = append(points, sqlPoint{MetricTimestamp: p.MetricTimestamp(), MetricValue: p.Value})
	}

	encoded, err := json.Marshal(points)
	if err != nil {
		return SqlRow{}, errors.Wrapf(err, "can't encode points of %s", r.MetricName)
	}

	return SqlRow{
		RunDate:        r.RunDate(),
		MetricName:     r.MetricName,
		ProjectId:      r.ProjectId,
		Location:       r.Location,
		ClusterName:    r.ClusterName,
		NamespaceName:  r.NamespaceName,
		ControllerName: r.ControllerName,
		ControllerType: r.ControllerType,
		ContainerName:  r.ContainerName,
		PointsArray:    string(encoded),
	}, nil
}
