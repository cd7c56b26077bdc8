package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/sr"
)

var (
	ErrTooFewOpts = errors.New("too few options")
)

type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

type serde struct {
	srSerde *sr.Serde
}

func (s serde) Encode(v any) ([]byte, error) {
	return s.srSerde.Encode(v)
}

func (s serde) Decode(data []byte, v any) error {
	return s.srSerde.Decode(data, v)
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(sc SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if sc == nil {
			return errors.New("schema identifier is nil")
		}
		so.si = sc
		return nil
	}
}

// NewSerdeMenuChangeV1 registers [MenuChangeSchemaTextV1] under the
// subject and returns a serde framing values with the registry id.
// Both [SubjectOpt] and [SchemaIdentifierOpt] are required.
func NewSerdeMenuChangeV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeMenuChangeV1"

	var so serdeOpts
	for _, o := range opts {
		if err := o(&so); err != nil {
			return serde{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	if so.subject == "" || so.si == nil {
		return serde{}, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}

	avroSchema := MenuChangeV1Avro()

	id, err := so.si.DetermineID(ctx, so.subject, MenuChangeSchemaTextV1)
	if err != nil {
		return serde{}, fmt.Errorf("%s: %w", op, err)
	}

	var srSerde sr.Serde
	srSerde.Register(
		id,
		MenuChangeV1{},
		sr.EncodeFn(AvroEncodeFn(avroSchema)),
		sr.DecodeFn(AvroDecodeFn(avroSchema)),
	)
	return serde{&srSerde}, nil
}
