package warehouse

import (
	"context"
	"fmt"
	schemav1 "github.com/gke-samples/gke-metrics-exporter/pkg/schema/v1"
	"github.com/gke-samples/gke-metrics-exporter/schema/mysql"
	"github.com/gke-samples/gke-metrics-exporter/schema/pgsql"
	"github.com/icinga/icinga-go-library/database"
	"github.com/icinga/icinga-go-library/logging"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"strings"
)

// txExecutor runs a function within a transaction, as implemented by *database.DB.
type txExecutor interface {
	ExecTx(ctx context.Context, fn func(context.Context, *sqlx.Tx) error) error
}

// SqlWriter inserts each batch into a relational table within a single transaction.
type SqlWriter struct {
	db        txExecutor
	batchSize int
	logger    *logging.Logger
}

// NewSqlWriter creates a SqlWriter that writes to db.
// Each INSERT statement carries as many rows as fit into the placeholder limit of db.
func NewSqlWriter(db *database.DB, logger *logging.Logger) *SqlWriter {
	return &SqlWriter{
		db:        db,
		batchSize: db.BatchSizeByPlaceholders(len(schemav1.SqlColumns)),
		logger:    logger,
	}
}

// Write implements the Writer interface.
func (w *SqlWriter) Write(ctx context.Context, rows []schemav1.MetricRow) error {
	entities := make([]schemav1.SqlRow, 0, len(rows))
	for _, r := range rows {
		e, err := schemav1.NewSqlRow(r)
		if err != nil {
			return writeError(ModeSql, len(rows), err)
		}

		entities = append(entities, e)
	}

	stmt := insertStmt()
	err := w.db.ExecTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		for start := 0; start < len(entities); start += w.batchSize {
			end := min(start+w.batchSize, len(entities))

			if _, err := tx.NamedExecContext(ctx, stmt, entities[start:end]); err != nil {
				return errors.Wrapf(err, "can't perform %q", stmt)
			}
		}

		return nil
	})
	if err != nil {
		return writeError(ModeSql, len(rows), err)
	}

	w.logger.Infow("Successfully wrote rows", zap.Int("rows", len(rows)), zap.String("table", schemav1.SqlRow{}.TableName()))

	return nil
}

// insertStmt returns the INSERT statement for SqlRow with named placeholders.
func insertStmt() string {
	return fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s)`,
		schemav1.SqlRow{}.TableName(),
		strings.Join(schemav1.SqlColumns, ", "),
		":"+strings.Join(schemav1.SqlColumns, ", :"),
	)
}

// Assert interface compliance.
var (
	_ Writer     = (*SqlWriter)(nil)
	_ txExecutor = (*database.DB)(nil)
)

// EnsureSchema creates the table SqlWriter writes to, unless it already exists.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	var ddl string
	switch db.DriverName() {
	case database.MySQL:
		ddl = mysql.Schema
	case database.PostgreSQL:
		ddl = pgsql.Schema
	default:
		return errors.Errorf("unsupported database driver %q", db.DriverName())
	}

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, "can't import schema")
	}

	return nil
}
