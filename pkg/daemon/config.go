package daemon

import (
	"github.com/gke-samples/gke-metrics-exporter/pkg/metrics"
	"github.com/gke-samples/gke-metrics-exporter/pkg/telemetry"
	"github.com/gke-samples/gke-metrics-exporter/pkg/warehouse"
	"github.com/go-co-op/gocron"
	"github.com/icinga/icinga-go-library/database"
	"github.com/icinga/icinga-go-library/logging"
	"github.com/pkg/errors"
	"time"
)

// DefaultConfigPath specifies the default location of the exporter's config.yml.
const DefaultConfigPath = "./config.yml"

// Config defines GKE metrics exporter config.
type Config struct {
	// ProjectId is resolved from the environment of the process if empty.
	ProjectId string `yaml:"project_id" env:"PROJECT_ID"`
	// Schedule is a cron expression. The exporter runs once and exits if it is empty.
	Schedule    string           `yaml:"schedule" env:"SCHEDULE"`
	Metrics     metrics.Config   `yaml:"metrics"`
	Warehouse   warehouse.Config `yaml:"warehouse"`
	Database    database.Config  `yaml:"database" envPrefix:"DATABASE_"`
	Logging     logging.Config   `yaml:"logging" envPrefix:"LOGGING_"`
	Pushgateway telemetry.Config `yaml:"pushgateway" envPrefix:"PUSHGATEWAY_"`
}

// Validate checks constraints in the supplied configuration and returns an error if they are violated.
func (c *Config) Validate() error {
	if c.Schedule != "" {
		if _, err := gocron.NewScheduler(time.UTC).Cron(c.Schedule).Do(func() {}); err != nil {
			return errors.Wrapf(err, "invalid schedule %q", c.Schedule)
		}
	}

	if err := c.Metrics.Validate(); err != nil {
		return err
	}

	if err := c.Warehouse.Validate(); err != nil {
		return err
	}

	if c.Warehouse.Mode == warehouse.ModeSql {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}

	if err := c.Logging.Validate(); err != nil {
		return err
	}

	return c.Pushgateway.Validate()
}

// ConfigFlagGlue provides a glue struct for the CLI config flag.
type ConfigFlagGlue struct {
	// Config is the path to the config file
	Config string `short:"c" long:"config" description:"path to config file (default: ./config.yml)"`
}

// GetConfigPath retrieves the path to the configuration file.
// It returns the path specified via the command line, or DefaultConfigPath if none is provided.
func (f ConfigFlagGlue) GetConfigPath() string {
	if f.Config == "" {
		return DefaultConfigPath
	}

	return f.Config
}

// IsExplicitConfigPath indicates whether the configuration file path was explicitly set.
func (f ConfigFlagGlue) IsExplicitConfigPath() bool {
	return f.Config != ""
}
