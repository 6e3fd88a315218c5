package warehouse

import (
	"context"
	"fmt"
	schemav1 "github.com/gke-samples/gke-metrics-exporter/pkg/schema/v1"
	"github.com/pkg/errors"
	"strings"
)

// Writer commits rows to the warehouse.
// Write either succeeds or returns a *WriteError, which must be treated as fatal for the run.
type Writer interface {
	Write(ctx context.Context, rows []schemav1.MetricRow) error
}

// Mode selects the delivery strategy of a Writer.
type Mode string

const (
	// ModeInsert submits rows with a single buffered insert call.
	ModeInsert Mode = "insert"
	// ModeStream stages rows in a pending write stream that is committed atomically.
	ModeStream Mode = "stream"
	// ModeSql inserts rows in a single SQL transaction.
	ModeSql Mode = "sql"
)

// Config defines the warehouse table and delivery strategy.
type Config struct {
	Mode    Mode   `yaml:"mode" env:"WRITE_MODE" default:"stream"`
	Dataset string `yaml:"dataset" env:"BIGQUERY_DATASET" default:"gke_metrics_dataset"`
	Table   string `yaml:"table" env:"BIGQUERY_TABLE" default:"gke_metrics"`
}

// Validate checks constraints in the supplied warehouse configuration and returns an error if they are violated.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeInsert, ModeStream, ModeSql:
	default:
		return errors.Errorf("unknown write mode %q, must be one of %q, %q or %q", c.Mode, ModeInsert, ModeStream, ModeSql)
	}

	if c.Mode != ModeSql && (c.Dataset == "" || c.Table == "") {
		return errors.New("dataset and table must be set")
	}

	return nil
}

// TableId returns the fully qualified table identifier.
func (c *Config) TableId(projectId string) string {
	return fmt.Sprintf("%s.%s.%s", projectId, c.Dataset, c.Table)
}

// WriteError reports that rows could not be committed.
type WriteError struct {
	// Mode is the strategy that failed.
	Mode Mode
	// Rows is the number of rows of the failed batch.
	Rows int
	// Errs are all errors reported for the batch.
	Errs []error
}

func (e *WriteError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Sprintf(
		"encountered %d error(s) while writing %d rows (%s): %s", len(e.Errs), e.Rows, e.Mode, strings.Join(msgs, "; "))
}

// Unwrap returns all errors reported for the batch.
func (e *WriteError) Unwrap() []error {
	return e.Errs
}

func writeError(mode Mode, rows int, errs ...error) *WriteError {
	return &WriteError{Mode: mode, Rows: rows, Errs: errs}
}
