package warehouse

import (
	schemav1 "github.com/gke-samples/gke-metrics-exporter/pkg/schema/v1"
	"github.com/icinga/icinga-go-library/logging"
	"go.uber.org/zap/zaptest"
	"testing"
	"time"
)

func testLogger(t *testing.T) *logging.Logger {
	return logging.NewLogger(zaptest.NewLogger(t).Sugar(), time.Second)
}

func testRows(n int) []schemav1.MetricRow {
	runAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := make([]schemav1.MetricRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, schemav1.MetricRow{
			Identity: schemav1.Identity{
				ProjectId:      "demo-project",
				Location:       "europe-west1",
				ClusterName:    "demo",
				NamespaceName:  "ns-a",
				ControllerName: "frontend",
				ControllerType: "Deployment",
				ContainerName:  "app",
			},
			RunTimestamp: runAt,
			MetricName:   "cpu_usage",
			Points: []schemav1.MetricPoint{
				{Timestamp: runAt.Add(-20 * time.Minute), Value: 0.42},
				{Timestamp: runAt.Add(-10 * time.Minute), Value: float64(i)},
			},
		})
	}

	return rows
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"stream", Config{Mode: ModeStream, Dataset: "d", Table: "t"}, false},
		{"insert", Config{Mode: ModeInsert, Dataset: "d", Table: "t"}, false},
		{"sql-without-table", Config{Mode: ModeSql}, false},
		{"unknown-mode", Config{Mode: "bulk", Dataset: "d", Table: "t"}, true},
		{"missing-table", Config{Mode: ModeInsert, Dataset: "d"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_TableId(t *testing.T) {
	c := Config{Dataset: "gke_metrics_dataset", Table: "gke_metrics"}
	if got, want := c.TableId("demo-project"), "demo-project.gke_metrics_dataset.gke_metrics"; got != want {
		t.Errorf("got %q, wanted %q", got, want)
	}
}
