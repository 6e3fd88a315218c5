package telemetry

import (
	"context"
	"github.com/icinga/icinga-go-library/logging"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

// Pusher pushes the metrics of a Recorder to a Pushgateway.
type Pusher struct {
	pusher *push.Pusher
	url    string
	logger *logging.Logger
}

// NewPusher returns a Pusher for r, or nil if no Pushgateway is configured.
// Push is a no-op on a nil *Pusher.
func NewPusher(c Config, r *Recorder, logger *logging.Logger) *Pusher {
	if c.Url == "" {
		return nil
	}

	pusher := push.New(c.Url, c.Job).Gatherer(r.Gatherer()).Client(newHTTPClient(c))
	if c.Username != "" {
		pusher = pusher.BasicAuth(c.Username, c.Password)
	}

	return &Pusher{
		pusher: pusher,
		url:    c.Url,
		logger: logger,
	}
}

// Push replaces the metrics of the job on the Pushgateway.
// Errors are logged only.
func (p *Pusher) Push(ctx context.Context) {
	if p == nil {
		return
	}

	if err := p.pusher.PushContext(ctx); err != nil {
		p.logger.Warnw("Can't push metrics", zap.String("url", p.url), zap.Error(err))

		return
	}

	p.logger.Debugw("Pushed metrics", zap.String("url", p.url))
}
