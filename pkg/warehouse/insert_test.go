package warehouse

import (
	"cloud.google.com/go/bigquery"
	"context"
	schemav1 "github.com/gke-samples/gke-metrics-exporter/pkg/schema/v1"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type fakeInserter struct {
	calls int
	got   []schemav1.InsertRow
	err   error
}

func (f *fakeInserter) Put(_ context.Context, src interface{}) error {
	f.calls++
	f.got = src.([]schemav1.InsertRow)

	return f.err
}

func TestInsertWriter_Write(t *testing.T) {
	f := &fakeInserter{}
	w := &InsertWriter{inserter: f, tableId: "p.d.t", logger: testLogger(t)}

	require.NoError(t, w.Write(context.Background(), testRows(3)))
	require.Equal(t, 1, f.calls)
	require.Len(t, f.got, 3)

	ids := map[string]struct{}{}
	for _, r := range f.got {
		assert.NotEmpty(t, r.InsertId)
		ids[r.InsertId] = struct{}{}
	}
	assert.Len(t, ids, 3, "insert ids must be unique")
}

func TestInsertWriter_Write_RowErrors(t *testing.T) {
	f := &fakeInserter{err: bigquery.PutMultiError{
		{InsertID: "a", RowIndex: 0, Errors: bigquery.MultiError{errors.New("invalid value")}},
		{InsertID: "c", RowIndex: 2, Errors: bigquery.MultiError{errors.New("no such field")}},
	}}
	w := &InsertWriter{inserter: f, tableId: "p.d.t", logger: testLogger(t)}

	err := w.Write(context.Background(), testRows(3))
	require.Error(t, err)

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, ModeInsert, writeErr.Mode)
	assert.Equal(t, 3, writeErr.Rows)
	require.Len(t, writeErr.Errs, 2)
	assert.Contains(t, err.Error(), "invalid value")
	assert.Contains(t, err.Error(), "no such field")

	var rowErr *bigquery.RowInsertionError
	require.True(t, errors.As(writeErr.Errs[1], &rowErr))
	assert.Equal(t, 2, rowErr.RowIndex)
}

func TestInsertWriter_Write_CallError(t *testing.T) {
	cause := errors.New("permission denied")
	w := &InsertWriter{inserter: &fakeInserter{err: cause}, tableId: "p.d.t", logger: testLogger(t)}

	err := w.Write(context.Background(), testRows(1))

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	require.Len(t, writeErr.Errs, 1)
	assert.Equal(t, cause, errors.Cause(writeErr.Errs[0]))
}
