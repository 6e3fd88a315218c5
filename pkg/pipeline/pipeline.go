package pipeline

import (
	"context"
	"github.com/gke-samples/gke-metrics-exporter/pkg/metrics"
	schemav1 "github.com/gke-samples/gke-metrics-exporter/pkg/schema/v1"
	"github.com/gke-samples/gke-metrics-exporter/pkg/telemetry"
	"github.com/gke-samples/gke-metrics-exporter/pkg/warehouse"
	"github.com/icinga/icinga-go-library/logging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/sets"
	"time"
)

// NamespaceDiscoverer returns the namespaces with recent activity.
type NamespaceDiscoverer interface {
	DiscoverNamespaces(ctx context.Context, start time.Time) sets.Set[string]
}

// MetricFetcher returns the rows of a metric in a namespace.
type MetricFetcher interface {
	FetchMetric(
		ctx context.Context, name string, spec metrics.QuerySpec, namespace string, runAt time.Time,
	) []schemav1.MetricRow
}

// Pipeline exports the metrics of all active namespaces in one run.
type Pipeline struct {
	registry   *metrics.Registry
	discoverer NamespaceDiscoverer
	fetcher    MetricFetcher
	writer     warehouse.Writer
	recorder   *telemetry.Recorder
	logger     *logging.Logger
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock replaces time.Now as the source of run timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithRecorder records the outcome of runs in r.
func WithRecorder(r *telemetry.Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// NewPipeline creates a new Pipeline.
func NewPipeline(
	registry *metrics.Registry,
	discoverer NamespaceDiscoverer,
	fetcher MetricFetcher,
	writer warehouse.Writer,
	logger *logging.Logger,
	options ...Option,
) *Pipeline {
	p := &Pipeline{
		registry:   registry,
		discoverer: discoverer,
		fetcher:    fetcher,
		writer:     writer,
		logger:     logger,
		now:        time.Now,
	}

	for _, option := range options {
		option(p)
	}

	return p
}

// Run discovers the active namespaces, fetches every registered metric for each of them
// and writes the rows. Metrics without data are skipped.
// The first write error ends the run and is returned.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	start := p.now()
	defer func() {
		p.recorder.RunFinished(start, err)

		fields := []any{zap.Duration("took", p.now().Sub(start))}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		p.logger.Infow("Run completed", fields...)
	}()

	namespaces := p.discoverer.DiscoverNamespaces(ctx, start)
	p.recorder.NamespacesDiscovered(namespaces.Len())

	if namespaces.Len() == 0 {
		p.logger.Infow("No active namespaces found")

		return nil
	}

	p.logger.Infow("Discovered namespaces", zap.Int("namespaces", namespaces.Len()))

	queries := p.registry.Queries()
	for _, namespace := range sets.List(namespaces) {
		for _, q := range queries {
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, "run canceled")
			}

			if err := p.export(ctx, q, namespace, start); err != nil {
				return err
			}
		}
	}

	return nil
}

func (p *Pipeline) export(ctx context.Context, q metrics.Query, namespace string, runAt time.Time) error {
	logger := p.logger.With(zap.String("metric", q.Name), zap.String("namespace", namespace))

	rows := p.fetcher.FetchMetric(ctx, q.Name, q.Spec, namespace, runAt)
	if len(rows) == 0 {
		logger.Infow("Metric unavailable, skipped")
		p.recorder.MetricSkipped(q.Name)

		return nil
	}

	if err := p.writer.Write(ctx, rows); err != nil {
		p.recorder.WriteFailed(q.Name)

		return errors.Wrapf(err, "can't write %s of namespace %s", q.Name, namespace)
	}

	logger.Debugw("Exported metric", zap.Int("rows", len(rows)))
	p.recorder.RowsWritten(q.Name, len(rows))

	return nil
}
