package main

import (
	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/bigquery/storage/managedwriter"
	"context"
	"fmt"
	"github.com/gke-samples/gke-metrics-exporter/internal"
	"github.com/gke-samples/gke-metrics-exporter/pkg/daemon"
	"github.com/gke-samples/gke-metrics-exporter/pkg/gcp"
	"github.com/gke-samples/gke-metrics-exporter/pkg/metrics"
	"github.com/gke-samples/gke-metrics-exporter/pkg/monitoring"
	"github.com/gke-samples/gke-metrics-exporter/pkg/pipeline"
	"github.com/gke-samples/gke-metrics-exporter/pkg/telemetry"
	"github.com/gke-samples/gke-metrics-exporter/pkg/warehouse"
	"github.com/go-co-op/gocron"
	"github.com/icinga/icinga-go-library/config"
	"github.com/icinga/icinga-go-library/database"
	"github.com/icinga/icinga-go-library/logging"
	"github.com/okzk/sdnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// fatal reports err and exits before logging is configured.
func fatal(err error) {
	_, _ = fmt.Fprintf(stderr, "%+v\n", err)
	exit(1)
}

func main() {
	var flags internal.Flags
	if err := config.ParseFlags(&flags); err != nil {
		fatal(errors.Wrap(err, "can't parse flags"))
	}

	if flags.Version {
		internal.Version.Print("GKE Metrics Exporter")
		os.Exit(0)
	}

	var cfg daemon.Config
	if err := config.Load(&cfg, config.LoadOptions{Flags: flags}); err != nil {
		if errors.Is(err, config.ErrInvalidArgument) {
			panic(err)
		}

		fatal(errors.Wrap(err, "can't load config"))
	}

	logs, err := logging.NewLoggingFromConfig("GKE Metrics Exporter", cfg.Logging)
	if err != nil {
		fatal(errors.Wrap(err, "can't configure logging"))
	}

	log := logs.GetLogger()
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	projectId, err := gcp.NewProjectResolver().Resolve(ctx, cfg.ProjectId)
	if err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "can't determine project"))
	}

	log.Infow("Starting GKE metrics exporter",
		zap.String("project", projectId), zap.String("mode", string(cfg.Warehouse.Mode)))

	registry, err := metrics.NewRegistry(cfg.Metrics)
	if err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "can't build metric registry"))
	}

	metricClient, err := monitoring.NewMetricClient(ctx)
	if err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "can't create monitoring client"))
	}
	defer func() { _ = metricClient.Close() }()

	writer, closer, err := newWriter(ctx, cfg, projectId, logs)
	if err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "can't create warehouse writer"))
	}
	defer func() { _ = closer.Close() }()

	recorder := telemetry.NewRecorder()
	pusher := telemetry.NewPusher(cfg.Pushgateway, recorder, logs.GetChildLogger("telemetry"))

	p := pipeline.NewPipeline(
		registry,
		monitoring.NewDiscoverer(
			metricClient, projectId, registry.Namespaces(), metrics.ExcludedNamespaces, logs.GetChildLogger("discovery")),
		monitoring.NewFetcher(metricClient, projectId, logs.GetChildLogger("fetcher")),
		writer,
		logs.GetChildLogger("pipeline"),
		pipeline.WithRecorder(recorder),
	)

	run := func() error {
		err := p.Run(ctx)
		pusher.Push(ctx)

		return err
	}

	if cfg.Schedule == "" {
		if err := run(); err != nil {
			log.Fatalf("%+v", errors.Wrap(err, "run failed"))
		}

		return
	}

	scheduler := gocron.NewScheduler(time.Local)
	scheduler.SingletonModeAll()

	if _, err := scheduler.Cron(cfg.Schedule).Do(func() {
		if err := run(); err != nil {
			log.Errorw("Run failed", zap.Error(err))
		}
	}); err != nil {
		log.Fatalf("%+v", errors.Wrapf(err, "can't schedule runs with %q", cfg.Schedule))
	}

	scheduler.StartAsync()
	_ = sdnotify.Ready()
	log.Infow("Scheduled runs", zap.String("schedule", cfg.Schedule))

	<-ctx.Done()

	_ = sdnotify.Stopping()
	log.Info("Stopping")
	scheduler.Stop()
}

// newWriter creates the warehouse writer for the configured write mode.
// The returned io.Closer releases the writer's client.
func newWriter(
	ctx context.Context, cfg daemon.Config, projectId string, logs *logging.Logging,
) (warehouse.Writer, io.Closer, error) {
	logger := logs.GetChildLogger("writer")

	switch cfg.Warehouse.Mode {
	case warehouse.ModeInsert:
		client, err := bigquery.NewClient(ctx, projectId)
		if err != nil {
			return nil, nil, errors.Wrap(err, "can't create BigQuery client")
		}

		return warehouse.NewInsertWriter(client, cfg.Warehouse, logger), client, nil
	case warehouse.ModeStream:
		client, err := managedwriter.NewClient(ctx, projectId)
		if err != nil {
			return nil, nil, errors.Wrap(err, "can't create BigQuery write client")
		}

		w, err := warehouse.NewStreamWriter(client, projectId, cfg.Warehouse, logger)
		if err != nil {
			_ = client.Close()

			return nil, nil, err
		}

		return w, client, nil
	case warehouse.ModeSql:
		db, err := database.NewDbFromConfig(
			&cfg.Database, logs.GetChildLogger("database"), database.RetryConnectorCallbacks{})
		if err != nil {
			return nil, nil, errors.Wrap(err, "can't create database connection pool from config")
		}

		if err := warehouse.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()

			return nil, nil, err
		}

		return warehouse.NewSqlWriter(db, logger), db, nil
	default:
		return nil, nil, errors.Errorf("unknown write mode %q", cfg.Warehouse.Mode)
	}
}
