package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/port"
	"github.com/niksmo/menu-admin/pkg/schema"
)

var _ port.MenuChangesReader = (*MenuChangesView)(nil)

// A TableGetter reads a key from a goka table.
type TableGetter interface {
	Get(key string) (any, error)
}

// A MenuChangesView serves the last change per entity from the group
// table of [MenuChangesProcessor].
type MenuChangesView struct {
	gv     *goka.View
	getter TableGetter
}

func NewMenuChangesView(
	seedBrokers []string, groupTable string, menuChangeSerde Serde,
) (*MenuChangesView, error) {
	const op = "NewMenuChangesView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(groupTable)),
		newMenuChangeCodec(menuChangeSerde),
	)
	if err != nil {
		return nil, opErr(err, op)
	}
	return &MenuChangesView{gv: gv, getter: gv}, nil
}

// NewMenuChangesViewFrom serves changes from any table getter.
func NewMenuChangesViewFrom(getter TableGetter) *MenuChangesView {
	return &MenuChangesView{getter: getter}
}

func (v *MenuChangesView) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "MenuChangesView.Run"
	log := slog.With("op", op)

	defer wg.Done()
	if v.gv == nil {
		return
	}

	go func() {
		defer stopFn()
		if err := v.gv.Run(ctx); err != nil {
			log.Error("unexpected fail on run", "err", err)
			return
		}
		log.Info("stopped")
	}()
	log.Info("running")
}

func (v *MenuChangesView) LastChange(
	kind domain.EntityKind, id int64,
) (domain.MenuChange, error) {
	const op = "MenuChangesView.LastChange"

	key := schema.MenuChangeKey(string(kind), id)
	value, err := v.getter.Get(key)
	if err != nil {
		return domain.MenuChange{}, opErr(err, op)
	}
	if value == nil {
		return domain.MenuChange{}, fmt.Errorf(
			"%s: %s: %w", op, key, domain.ErrNotFound,
		)
	}

	s, ok := value.(schema.MenuChangeV1)
	if !ok {
		return domain.MenuChange{}, fmt.Errorf(
			"%s: %w: %T", op, ErrInvalidValueType, value,
		)
	}
	return schemaV1ToChange(s), nil
}
