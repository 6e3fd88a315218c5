package warehouse

import (
	"context"
	schemav1 "github.com/gke-samples/gke-metrics-exporter/pkg/schema/v1"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// fakeStreams keeps appended rows pending until their stream is committed.
type fakeStreams struct {
	openErr     error
	appendErr   error
	finalizeErr error
	commitErr   error

	opened    []*fakeStream
	committed []string
	visible   [][]byte
}

func (f *fakeStreams) OpenPending(context.Context) (stagedStream, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}

	s := &fakeStream{parent: f, name: "streams/" + string(rune('a'+len(f.opened)))}
	f.opened = append(f.opened, s)

	return s, nil
}

func (f *fakeStreams) Commit(_ context.Context, streams ...string) error {
	if f.commitErr != nil {
		return f.commitErr
	}

	for _, name := range streams {
		for _, s := range f.opened {
			if s.name == name {
				if !s.finalized {
					return errors.Errorf("stream %s not finalized", name)
				}

				f.visible = append(f.visible, s.pending...)
			}
		}

		f.committed = append(f.committed, name)
	}

	return nil
}

type fakeStream struct {
	parent    *fakeStreams
	name      string
	offset    int64
	pending   [][]byte
	finalized bool
	closes    int
}

func (s *fakeStream) Name() string {
	return s.name
}

func (s *fakeStream) Append(_ context.Context, rows [][]byte, offset int64) error {
	if s.parent.appendErr != nil {
		return s.parent.appendErr
	}

	s.offset = offset
	s.pending = append(s.pending, rows...)

	return nil
}

func (s *fakeStream) Finalize(context.Context) error {
	if s.parent.finalizeErr != nil {
		return s.parent.finalizeErr
	}

	s.finalized = true

	return nil
}

func (s *fakeStream) Close() error {
	s.closes++

	return nil
}

func newTestStreamWriter(t *testing.T, f *fakeStreams) *StreamWriter {
	codec, err := schemav1.NewProtoCodec()
	require.NoError(t, err)

	return &StreamWriter{streams: f, codec: codec, logger: testLogger(t)}
}

func TestStreamWriter_Write(t *testing.T) {
	f := &fakeStreams{}
	w := newTestStreamWriter(t, f)

	require.NoError(t, w.Write(context.Background(), testRows(2)))

	require.Len(t, f.opened, 1)
	s := f.opened[0]
	assert.Equal(t, int64(0), s.offset)
	assert.True(t, s.finalized)
	assert.Equal(t, 1, s.closes)
	assert.Equal(t, []string{s.name}, f.committed)
	assert.Len(t, f.visible, 2)
}

func TestStreamWriter_Write_Failures(t *testing.T) {
	tests := []struct {
		name   string
		fake   *fakeStreams
		opened bool
	}{
		{"open", &fakeStreams{openErr: errors.New("quota exceeded")}, false},
		{"append", &fakeStreams{appendErr: errors.New("schema mismatch")}, true},
		{"finalize", &fakeStreams{finalizeErr: errors.New("connection reset")}, true},
		{"commit", &fakeStreams{commitErr: errors.New("deadline exceeded")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestStreamWriter(t, tt.fake)

			err := w.Write(context.Background(), testRows(2))

			var writeErr *WriteError
			require.True(t, errors.As(err, &writeErr), "got %v, wanted *WriteError", err)
			assert.Equal(t, ModeStream, writeErr.Mode)
			assert.Equal(t, 2, writeErr.Rows)

			assert.Empty(t, tt.fake.visible, "no row may become visible")
			assert.Empty(t, tt.fake.committed)

			if tt.opened {
				require.Len(t, tt.fake.opened, 1)
				assert.Equal(t, 1, tt.fake.opened[0].closes, "stream must be closed exactly once")
			}
		})
	}
}
