package telemetry

import (
	"github.com/pkg/errors"
	"net/url"
)

// Config defines Pushgateway configuration.
type Config struct {
	Url      string `yaml:"url" env:"URL"`
	Job      string `yaml:"job" env:"JOB" default:"gke-metrics-exporter"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
	Insecure bool   `yaml:"insecure" env:"INSECURE"`
}

// Validate checks constraints in the supplied Pushgateway configuration and returns an error if they are violated.
func (c *Config) Validate() error {
	if (c.Username == "") != (c.Password == "") {
		return errors.New("'username' must be set, if password is provided and vice versa")
	}

	if c.Url == "" {
		if c.Username != "" {
			return errors.New("Pushgateway 'url' must be provided, if username and password are set")
		}

		return nil
	}

	u, err := url.Parse(c.Url)
	if err != nil {
		return errors.Wrapf(err, "cannot parse Pushgateway URL: %q", c.Url)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("Pushgateway URL must use http or https, got %q", c.Url)
	}

	if c.Job == "" {
		return errors.New("Pushgateway job must be set")
	}

	return nil
}
