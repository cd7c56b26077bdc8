package schema

import (
	"context"
	"strconv"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}

// A SchemaIdentifier returns the registry id of the schema text under
// the subject.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject, schemaText string) (int, error)
}

type SchemaRegistry interface {
	CreateSchema(
		ctx context.Context, subject string, s sr.Schema,
	) (sr.SubjectSchema, error)
}

// A SchemaCreater registers avro schemas, registering an existing
// schema returns its id.
type SchemaCreater struct {
	registry SchemaRegistry
}

func NewSchemaCreater(registry SchemaRegistry) SchemaCreater {
	return SchemaCreater{registry}
}

func (c SchemaCreater) DetermineID(
	ctx context.Context, subject, schemaText string,
) (int, error) {
	ss, err := c.registry.CreateSchema(
		ctx, subject, sr.Schema{Type: sr.TypeAvro, Schema: schemaText},
	)
	if err != nil {
		return 0, err
	}
	return ss.ID, nil
}

// ValueSubject returns the registry subject of the topic values.
func ValueSubject(topic string) string {
	return topic + "-value"
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
