package warehouse

import (
	"cloud.google.com/go/bigquery/storage/apiv1/storagepb"
	"cloud.google.com/go/bigquery/storage/managedwriter"
	"context"
	schemav1 "github.com/gke-samples/gke-metrics-exporter/pkg/schema/v1"
	"github.com/icinga/icinga-go-library/logging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/descriptorpb"
)

// stagedStream is an open pending write stream.
type stagedStream interface {
	// Name returns the stream's resource name.
	Name() string
	// Append sends serialized rows at offset and waits until the warehouse acknowledged them.
	Append(ctx context.Context, rows [][]byte, offset int64) error
	// Finalize seals the stream. No rows can be appended afterwards.
	Finalize(ctx context.Context) error
	// Close releases the stream's connection.
	Close() error
}

// stagedStreams is the staged write-stream protocol of the warehouse.
type stagedStreams interface {
	// OpenPending creates a pending stream whose rows are invisible until committed.
	OpenPending(ctx context.Context) (stagedStream, error)
	// Commit atomically makes the rows of the finalized streams visible.
	Commit(ctx context.Context, streams ...string) error
}

// StreamWriter writes each batch through its own pending write stream,
// so that a batch becomes visible completely or not at all.
type StreamWriter struct {
	streams stagedStreams
	codec   *schemav1.ProtoCodec
	logger  *logging.Logger
}

// NewStreamWriter creates a StreamWriter for the table configured in c.
func NewStreamWriter(client *managedwriter.Client, projectId string, c Config, logger *logging.Logger) (*StreamWriter, error) {
	codec, err := schemav1.NewProtoCodec()
	if err != nil {
		return nil, err
	}

	return &StreamWriter{
		streams: &managedStreams{
			client:     client,
			parent:     managedwriter.TableParentFromParts(projectId, c.Dataset, c.Table),
			descriptor: codec.Descriptor(),
		},
		codec:  codec,
		logger: logger,
	}, nil
}

// Write implements the Writer interface.
func (w *StreamWriter) Write(ctx context.Context, rows []schemav1.MetricRow) error {
	serialized, err := w.codec.MarshalRows(rows)
	if err != nil {
		return writeError(ModeStream, len(rows), err)
	}

	stream, err := w.streams.OpenPending(ctx)
	if err != nil {
		return writeError(ModeStream, len(rows), err)
	}

	closed := false
	defer func() {
		if !closed {
			_ = stream.Close()
		}
	}()

	if err := stream.Append(ctx, serialized, 0); err != nil {
		return writeError(ModeStream, len(rows), err)
	}

	if err := stream.Finalize(ctx); err != nil {
		return writeError(ModeStream, len(rows), err)
	}

	closed = true
	if err := stream.Close(); err != nil {
		w.logger.Warnw("Can't close write stream", zap.String("stream", stream.Name()), zap.Error(err))
	}

	if err := w.streams.Commit(ctx, stream.Name()); err != nil {
		return writeError(ModeStream, len(rows), err)
	}

	w.logger.Infow("Writes to stream have been committed", zap.String("stream", stream.Name()), zap.Int("rows", len(rows)))

	return nil
}

// managedStreams implements stagedStreams with the BigQuery Storage Write API.
type managedStreams struct {
	client     *managedwriter.Client
	parent     string
	descriptor *descriptorpb.DescriptorProto
}

func (m *managedStreams) OpenPending(ctx context.Context) (stagedStream, error) {
	pending, err := m.client.CreateWriteStream(ctx, &storagepb.CreateWriteStreamRequest{
		Parent:      m.parent,
		WriteStream: &storagepb.WriteStream{Type: storagepb.WriteStream_PENDING},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "can't create pending write stream for %s", m.parent)
	}

	ms, err := m.client.NewManagedStream(
		ctx,
		managedwriter.WithStreamName(pending.GetName()),
		managedwriter.WithSchemaDescriptor(m.descriptor),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open write stream %s", pending.GetName())
	}

	return &managedStream{stream: ms}, nil
}

func (m *managedStreams) Commit(ctx context.Context, streams ...string) error {
	resp, err := m.client.BatchCommitWriteStreams(ctx, &storagepb.BatchCommitWriteStreamsRequest{
		Parent:       m.parent,
		WriteStreams: streams,
	})
	if err != nil {
		return errors.Wrap(err, "can't commit write streams")
	}

	if streamErrs := resp.GetStreamErrors(); len(streamErrs) > 0 {
		return errors.Errorf("write streams not committed: %v", streamErrs)
	}

	return nil
}

type managedStream struct {
	stream *managedwriter.ManagedStream
}

func (m *managedStream) Name() string {
	return m.stream.StreamName()
}

func (m *managedStream) Append(ctx context.Context, rows [][]byte, offset int64) error {
	result, err := m.stream.AppendRows(ctx, rows, managedwriter.WithOffset(offset))
	if err != nil {
		return errors.Wrapf(err, "can't append rows to %s", m.Name())
	}

	if _, err := result.GetResult(ctx); err != nil {
		return errors.Wrapf(err, "rows not appended to %s", m.Name())
	}

	return nil
}

func (m *managedStream) Finalize(ctx context.Context) error {
	if _, err := m.stream.Finalize(ctx); err != nil {
		return errors.Wrapf(err, "can't finalize %s", m.Name())
	}

	return nil
}

func (m *managedStream) Close() error {
	return m.stream.Close()
}

// Assert interface compliance.
var (
	_ Writer        = (*StreamWriter)(nil)
	_ stagedStreams = (*managedStreams)(nil)
	_ stagedStream  = (*managedStream)(nil)
)
