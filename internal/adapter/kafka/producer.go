package kafka

import (
	"context"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/port"
	"github.com/niksmo/menu-admin/pkg/schema"
)

var _ port.MenuChangesProducer = (*MenuChangesProducer)(nil)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// A MenuChangesProducer used for produce [domain.MenuChange]
type MenuChangesProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewMenuChangesProducer(
	opts ...ProducerOpt,
) (MenuChangesProducer, error) {
	const op = "NewMenuChangesProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return MenuChangesProducer{}, opErr(err, op)
		}
	}

	opPrefix := "MenuChangesProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return MenuChangesProducer{
		producer: p,
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p MenuChangesProducer) Close() {
	p.producer.close()
}

func (p MenuChangesProducer) ProduceChange(
	ctx context.Context, v domain.MenuChange,
) error {
	const op = "ProduceChange"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(v)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	return nil
}

func (p MenuChangesProducer) createRecord(
	v domain.MenuChange,
) (*kgo.Record, error) {
	const op = "createRecord"

	s := p.toSchema(v)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(s.Key()), Value: b}, nil
}

func (MenuChangesProducer) toSchema(v domain.MenuChange) schema.MenuChangeV1 {
	return changeToSchemaV1(v)
}
