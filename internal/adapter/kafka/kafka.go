package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/lovoo/goka"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/pkg/retry"
	"github.com/niksmo/menu-admin/pkg/schema"
)

const recordDeliveryTimeout = 5 * time.Second

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt connects to the seed brokers and pings them with
// retries before the producer is handed out.
func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string,
) ProducerOpt {
	return func(opts *producerOpts) error {
		cl, err := kgo.NewClient(
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
			kgo.RecordDeliveryTimeout(recordDeliveryTimeout),
		)
		if err != nil {
			return err
		}

		err = retry.Do(ctx, retry.Config{
			MaxAttempts: 5,
			Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
			MaxDelay:    2 * time.Second,
		}, func() error {
			return cl.Ping(ctx)
		})
		if err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

// ProducerRawClientOpt uses the given client as is.
func ProducerRawClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func changeToSchemaV1(v domain.MenuChange) (s schema.MenuChangeV1) {
	s.Kind = string(v.Kind)
	s.Action = string(v.Action)
	s.EntityID = v.EntityID
	s.Name = v.Name
	s.OccurredAt = v.OccurredAt.UTC()
	return
}

func schemaV1ToChange(s schema.MenuChangeV1) (v domain.MenuChange) {
	v.Kind = domain.EntityKind(s.Kind)
	v.Action = domain.ChangeAction(s.Action)
	v.EntityID = s.EntityID
	v.Name = s.Name
	v.OccurredAt = s.OccurredAt.UTC()
	return
}
