package v1

import (
	"time"
)

const (
	// RunDateLayout formats MetricRow.RunTimestamp on the wire.
	RunDateLayout = "2006-01-02 15:04:05"
	// PointTimestampLayout formats MetricPoint.Timestamp on the wire.
	PointTimestampLayout = "2006-01-02 15:04:05.000000"
)

// MetricPoint is a single sample of a time series.
type MetricPoint struct {
	Timestamp time.Time
	Value     float64
}

// Identity are the labels identifying the workload a time series belongs to.
type Identity struct {
	ProjectId      string
	Location       string
	ClusterName    string
	NamespaceName  string
	ControllerName string
	ControllerType string
	ContainerName  string
}

// MetricRow is one normalized time series of one metric in one namespace for one run.
type MetricRow struct {
	Identity
	RunTimestamp time.Time
	MetricName   string
	Points       []MetricPoint
}

// RunDate returns the wire representation of the run timestamp.
func (r MetricRow) RunDate() string {
	return r.RunTimestamp.Local().Format(RunDateLayout)
}

// MetricTimestamp returns the wire representation of the point's timestamp.
func (p MetricPoint) MetricTimestamp() string {
	return p.Timestamp.UTC().Format(PointTimestampLayout)
}
