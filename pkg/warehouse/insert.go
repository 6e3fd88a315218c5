package warehouse

import (
	"cloud.google.com/go/bigquery"
	"context"
	schemav1 "github.com/gke-samples/gke-metrics-exporter/pkg/schema/v1"
	"github.com/google/uuid"
	"github.com/icinga/icinga-go-library/logging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// inserter is the buffered insert API of a table, as implemented by *bigquery.Inserter.
type inserter interface {
	Put(ctx context.Context, src interface{}) error
}

// InsertWriter writes rows with a single buffered insert call per batch.
// The warehouse may keep the rows that succeeded even if others of the batch failed.
type InsertWriter struct {
	inserter inserter
	tableId  string
	logger   *logging.Logger
}

// NewInsertWriter creates an InsertWriter for the table configured in c.
func NewInsertWriter(client *bigquery.Client, c Config, logger *logging.Logger) *InsertWriter {
	return &InsertWriter{
		inserter: client.Dataset(c.Dataset).Table(c.Table).Inserter(),
		tableId:  c.TableId(client.Project()),
		logger:   logger,
	}
}

// Write implements the Writer interface.
func (w *InsertWriter) Write(ctx context.Context, rows []schemav1.MetricRow) error {
	savers := make([]schemav1.InsertRow, 0, len(rows))
	for _, r := range rows {
		savers = append(savers, schemav1.InsertRow{Row: r, InsertId: uuid.NewString()})
	}

	if err := w.inserter.Put(ctx, savers); err != nil {
		var multi bigquery.PutMultiError
		if errors.As(err, &multi) {
			errs := make([]error, 0, len(multi))
			for i := range multi {
				errs = append(errs, &multi[i])
			}

			return writeError(ModeInsert, len(rows), errs...)
		}

		return writeError(ModeInsert, len(rows), errors.Wrapf(err, "can't insert rows into %s", w.tableId))
	}

	w.logger.Infow("Successfully wrote rows", zap.Int("rows", len(rows)), zap.String("table", w.tableId))

	return nil
}

// Assert interface compliance.
var _ Writer = (*InsertWriter)(nil)
