package v1

import (
	"cloud.google.com/go/bigquery/storage/managedwriter/adapt"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ProtoCodec serializes rows into the proto2 wire format of the write stream.
type ProtoCodec struct {
	message    protoreflect.MessageDescriptor
	descriptor *descriptorpb.DescriptorProto
}

// NewProtoCodec derives the row message from Schema.
func NewProtoCodec() (*ProtoCodec, error) {
	storageSchema, err := adapt.BQSchemaToStorageTableSchema(Schema)
	if err != nil {
		return nil, errors.Wrap(err, "can't convert table schema")
	}

	d, err := adapt.StorageSchemaToProto2Descriptor(storageSchema, "root")
	if err != nil {
		return nil, errors.Wrap(err, "can't build proto descriptor")
	}

	md, ok := d.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, errors.Errorf("expected message descriptor, got %T", d)
	}

	dp, err := adapt.NormalizeDescriptor(md)
	if err != nil {
		return nil, errors.Wrap(err, "can't normalize proto descriptor")
	}

	return &ProtoCodec{message: md, descriptor: dp}, nil
}

// Descriptor returns the self-contained descriptor to bind a write stream to.
func (c *ProtoCodec) Descriptor() *descriptorpb.DescriptorProto {
	return c.descriptor
}

// Message returns the descriptor serialized rows are built from.
func (c *ProtoCodec) Message() protoreflect.MessageDescriptor {
	return c.message
}

// Marshal serializes a single row.
func (c *ProtoCodec) Marshal(r MetricRow) ([]byte, error) {
	fields := c.message.Fields()
	m := dynamicpb.NewMessage(c.message)

	for _, f := range []struct {
		name  string
		value string
	}{
		{"run_date", r.RunDate()},
		{"metric_name", r.MetricName},
		{"project_id", r.ProjectId},
		{"location", r.Location},
		{"cluster_name", r.ClusterName},
		{"namespace_name", r.NamespaceName},
		{"controller_name", r.ControllerName},
		{"controller_type", r.ControllerType},
		{"container_name", r.ContainerName},
	} {
		fd := fields.ByName(protoreflect.Name(f.name))
		if fd == nil {
			return nil, errors.Errorf("field %s missing in row descriptor", f.name)
		}

		m.Set(fd, protoreflect.ValueOfString(f.value))
	}

	pointsField := fields.ByName("points_array")
	if pointsField == nil {
		return nil, errors.New("field points_array missing in row descriptor")
	}

	pointFields := pointsField.Message().Fields()
	ts := pointFields.ByName("metric_timestamp")
	value := pointFields.ByName("metric_value")

	points := m.Mutable(pointsField).List()
	for _, p := range r.Points {
		e := points.NewElement()
		e.Message().Set(ts, protoreflect.ValueOfString(p.MetricTimestamp()))
		e.Message().Set(value, protoreflect.ValueOfFloat64(p.Value))
		points.Append(e)
	}

	b, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(err, "can't marshal %s row", r.MetricName)
	}

	return b, nil
}

// MarshalRows serializes rows in order.
func (c *ProtoCodec) MarshalRows(rows []MetricRow) ([][]byte, error) {
	serialized := make([][]byte, 0, len(rows))
	for _, r := range rows {
		b, err := c.Marshal(r)
		if err != nil {
			return nil, err
		}

		serialized = append(serialized, b)
	}

	return serialized, nil
}
