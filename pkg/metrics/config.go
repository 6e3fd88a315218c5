package metrics

import (
	"github.com/pkg/errors"
	"time"
)

// Config defines the lookback windows and sampling distances of the metric queries.
// All values are in seconds.
type Config struct {
	RecommendationWindow   int      `yaml:"recommendation_window_seconds" env:"RECOMMENDATION_WINDOW_SECONDS" default:"2592000"`
	LatestWindow           int      `yaml:"latest_window_seconds" env:"LATEST_WINDOW_SECONDS" default:"300"`
	MetricWindow           int      `yaml:"metric_window" env:"METRIC_WINDOW" default:"259200"`
	MetricDistance         int      `yaml:"metric_distance" env:"METRIC_DISTANCE" default:"600"`
	RecommendationDistance int      `yaml:"recommendation_distance" env:"RECOMMENDATION_DISTANCE" default:"86400"`
	Include                []string `yaml:"include" env:"METRICS_INCLUDE"`
}

// Validate checks constraints in the supplied metrics configuration and returns an error if they are violated.
func (c *Config) Validate() error {
	for name, v := range map[string]int{
		"recommendation_window_seconds": c.RecommendationWindow,
		"latest_window_seconds":         c.LatestWindow,
		"metric_window":                 c.MetricWindow,
		"metric_distance":               c.MetricDistance,
		"recommendation_distance":       c.RecommendationDistance,
	} {
		if v <= 0 {
			return errors.Errorf("%s must be greater than zero, got %d", name, v)
		}
	}

	if c.MetricWindow < c.MetricDistance {
		return errors.Errorf(
			"metric_window (%d) must not be smaller than metric_distance (%d)", c.MetricWindow, c.MetricDistance)
	}

	if c.RecommendationWindow < c.RecommendationDistance {
		return errors.Errorf(
			"recommendation_window_seconds (%d) must not be smaller than recommendation_distance (%d)",
			c.RecommendationWindow, c.RecommendationDistance)
	}

	for _, name := range c.Include {
		if !isRegistered(name) {
			return errors.Errorf("unknown metric %q in include list", name)
		}
	}

	return nil
}

func seconds(s int) time.Duration {
	return time.Duration(s) * time.Second
}
