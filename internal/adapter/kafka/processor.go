package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"

	"github.com/niksmo/menu-admin/internal/core/port"
	"github.com/niksmo/menu-admin/pkg/schema"
)

var _ port.MenuChangesProcessor = (*MenuChangesProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
		return
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A menuChangeCodec used for serde [schema.MenuChangeV1]
type menuChangeCodec struct {
	serde Serde
}

func newMenuChangeCodec(s Serde) menuChangeCodec {
	return menuChangeCodec{s}
}

func (c menuChangeCodec) Encode(v any) ([]byte, error) {
	const op = "menuChangeCodec.Encode"
	if _, ok := v.(schema.MenuChangeV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c menuChangeCodec) Decode(data []byte) (any, error) {
	const op = "menuChangeCodec.Decode"
	var s schema.MenuChangeV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A MenuChangesProcessor keeps the last change of every menu entity
// in the group table.
type MenuChangesProcessor struct {
	opPrefix string
	proc     processor
}

func NewMenuChangesProc(
	seedBrokers []string,
	inputStream string,
	groupTable string,
	menuChangeSerde Serde,
) (*MenuChangesProcessor, error) {
	const op = "NewMenuChangesProc"

	p := &MenuChangesProcessor{opPrefix: "MenuChangesProcessor"}
	codec := newMenuChangeCodec(menuChangeSerde)

	gg := goka.DefineGroup(goka.Group(groupTable),
		goka.Input(goka.Stream(inputStream), codec, p.processFn),
		goka.Persist(codec),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}
	return p, nil
}

func (p *MenuChangesProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *MenuChangesProcessor) Close() {
	p.proc.close()
}

func (p *MenuChangesProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op))

	change, ok := msg.(schema.MenuChangeV1)
	if !ok {
		log.Error("unexpected message", "key", ctx.Key())
		return
	}

	prev, _ := ctx.Value().(schema.MenuChangeV1)
	if !prev.OccurredAt.IsZero() && change.OccurredAt.Before(prev.OccurredAt) {
		log.Debug("stale change skipped", "key", ctx.Key())
		return
	}

	ctx.SetValue(change)
	log.Info(
		"set last change",
		"key", ctx.Key(),
		"action", change.Action,
	)
}
