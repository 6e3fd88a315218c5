package daemon

import (
	"github.com/gke-samples/gke-metrics-exporter/pkg/metrics"
	"github.com/gke-samples/gke-metrics-exporter/pkg/telemetry"
	"github.com/gke-samples/gke-metrics-exporter/pkg/warehouse"
	"github.com/icinga/icinga-go-library/database"
	"github.com/icinga/icinga-go-library/logging"
	"go.uber.org/zap/zapcore"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Metrics: metrics.Config{
			RecommendationWindow:   2592000,
			LatestWindow:           300,
			MetricWindow:           259200,
			MetricDistance:         600,
			RecommendationDistance: 86400,
		},
		Warehouse: warehouse.Config{Mode: warehouse.ModeStream, Dataset: "gke_metrics_dataset", Table: "gke_metrics"},
		Logging:   logging.Config{Level: zapcore.InfoLevel, Output: logging.CONSOLE, Interval: 20 * time.Second},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "schedule", modify: func(c *Config) { c.Schedule = "*/15 * * * *" }},
		{name: "invalid-schedule", modify: func(c *Config) { c.Schedule = "every hour" }, wantErr: true},
		{name: "invalid-metrics", modify: func(c *Config) { c.Metrics.MetricDistance = 0 }, wantErr: true},
		{name: "invalid-mode", modify: func(c *Config) { c.Warehouse.Mode = "copy" }, wantErr: true},
		{
			// The database is only used by the SQL writer.
			name:   "database-ignored",
			modify: func(c *Config) { c.Database = database.Config{} },
		},
		{
			name: "database-required",
			modify: func(c *Config) {
				c.Warehouse.Mode = warehouse.ModeSql
				c.Database = database.Config{}
			},
			wantErr: true,
		},
		{
			name:    "invalid-pushgateway",
			modify:  func(c *Config) { c.Pushgateway = telemetry.Config{Url: "localhost:9091"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.modify(&c)

			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFlagGlue(t *testing.T) {
	var f ConfigFlagGlue
	if f.IsExplicitConfigPath() {
		t.Errorf("got explicit config path, wanted none")
	}
	if got := f.GetConfigPath(); got != DefaultConfigPath {
		t.Errorf("got %q, wanted %q", got, DefaultConfigPath)
	}

	f.Config = "/etc/gke-metrics-exporter/config.yml"
	if !f.IsExplicitConfigPath() {
		t.Errorf("got implicit config path, wanted explicit")
	}
	if got := f.GetConfigPath(); got != f.Config {
		t.Errorf("got %q, wanted %q", got, f.Config)
	}
}
