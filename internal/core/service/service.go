package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/niksmo/menu-admin/internal/core/catalog"
	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/port"
)

var _ port.MenuAdmin = (*Service)(nil)

const DefaultSideEffectTimeout = 5 * time.Second

type flow struct {
	form      domain.Phase
	editing   bool
	editingID int64
	del       domain.Phase
	deleteID  int64
}

func newFlow() flow {
	return flow{form: domain.PhaseIdle, del: domain.PhaseIdle}
}

func (f flow) state() domain.FlowState {
	s := domain.FlowState{Form: f.form, Delete: f.del}
	if f.form != domain.PhaseIdle && f.editing {
		id := f.editingID
		s.EditingID = &id
	}
	if f.del != domain.PhaseIdle {
		id := f.deleteID
		s.DeleteTarget = &id
	}
	return s
}

type opts struct {
	changes       port.MenuChangesProducer
	mirror        port.CatalogMirror
	maxImageBytes int64
	sideTimeout   time.Duration
	now           func() time.Time
}

type Opt func(*opts) error

// ChangesProducerOpt publishes every committed mutation.
func ChangesProducerOpt(p port.MenuChangesProducer) Opt {
	return func(o *opts) error {
		if p == nil {
			return errors.New("nil changes producer")
		}
		o.changes = p
		return nil
	}
}

// CatalogMirrorOpt stores every successful reload.
func CatalogMirrorOpt(m port.CatalogMirror) Opt {
	return func(o *opts) error {
		if m == nil {
			return errors.New("nil catalog mirror")
		}
		o.mirror = m
		return nil
	}
}

func MaxImageBytesOpt(n int64) Opt {
	return func(o *opts) error {
		if n <= 0 {
			return errors.New("max image bytes should be positive")
		}
		o.maxImageBytes = n
		return nil
	}
}

// SideEffectTimeoutOpt bounds publishing a change and mirroring the
// catalog. Both run detached from the caller's cancellation.
func SideEffectTimeoutOpt(d time.Duration) Opt {
	return func(o *opts) error {
		if d <= 0 {
			return errors.New("side effect timeout should be positive")
		}
		o.sideTimeout = d
		return nil
	}
}

func ClockOpt(now func() time.Time) Opt {
	return func(o *opts) error {
		if now == nil {
			return errors.New("nil clock")
		}
		o.now = now
		return nil
	}
}

// Service drives the add, edit, delete and toggle flows of menu items
// and categories against the backend and keeps the local store in sync.
//
// Only one mutation runs at a time. The mutex is never held across a
// network call.
type Service struct {
	remote port.CatalogRemote
	store  *catalog.Store
	opts   opts

	mu         sync.Mutex
	items      flow
	categories flow
	inFlight   bool
}

func New(
	remote port.CatalogRemote, store *catalog.Store, opts ...Opt,
) (*Service, error) {
	const op = "service.New"

	if remote == nil {
		return nil, fmt.Errorf("%s: nil remote", op)
	}
	if store == nil {
		store = catalog.NewStore()
	}

	options := defaultOpts()
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &Service{
		remote:     remote,
		store:      store,
		opts:       options,
		items:      newFlow(),
		categories: newFlow(),
	}, nil
}

func defaultOpts() opts {
	return opts{
		maxImageBytes: DefaultMaxImageBytes,
		sideTimeout:   DefaultSideEffectTimeout,
		now:           time.Now,
	}
}

// Store returns the list store the service keeps in sync.
func (s *Service) Store() *catalog.Store {
	return s.store
}

// Reload fetches both collections concurrently and replaces the store
// contents only when both calls succeed.
func (s *Service) Reload(ctx context.Context) error {
	const op = "Service.Reload"
	log := slog.With("op", op)

	var (
		items      []domain.MenuItem
		categories []domain.Category
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.remote.ListItems(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.remote.ListCategories(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.store.Replace(items, categories)
	log.Debug(
		"catalog reloaded",
		"nItems", len(items), "nCategories", len(categories),
	)

	if s.opts.mirror != nil {
		mCtx, cancel := s.sideEffectContext(ctx)
		err := s.opts.mirror.StoreCatalog(
			mCtx, s.store.Categories(), s.store.Items(),
		)
		cancel()
		if err != nil {
			log.Warn("failed to mirror catalog", "err", err)
		}
	}
	return nil
}

func (s *Service) SetFilter(f domain.Filter) {
	s.store.SetFilter(f)
}

func (s *Service) SetSearch(term string) {
	s.store.SetSearch(term)
}

func (s *Service) SetCategoryFilter(value string) {
	s.store.SetCategory(value)
}

func (s *Service) View() []domain.MenuItem {
	return s.store.View()
}

func (s *Service) State() domain.AdminState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.AdminState{
		Items:      s.items.state(),
		Categories: s.categories.state(),
		InFlight:   s.inFlight,
	}
}

// Snapshot returns everything the admin screen renders.
func (s *Service) Snapshot() domain.Menu {
	view := s.store.View()
	cats := s.store.Categories()
	rows := make([]domain.CategoryRow, len(cats))
	for i, c := range cats {
		rows[i] = domain.CategoryRow{
			Category:  c,
			ItemCount: s.store.CountByCategory(c.ID),
		}
	}
	return domain.Menu{
		View:       view,
		Total:      len(s.store.Items()),
		Categories: rows,
		Filter:     s.store.Filter(),
		State:      s.State(),
	}
}

func (s *Service) OpenItemForm(id *int64) (domain.ItemForm, error) {
	const op = "Service.OpenItemForm"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items.form == domain.PhaseSubmitting {
		return domain.ItemForm{}, fmt.Errorf("%s: %w", op, domain.ErrBusy)
	}

	if id == nil {
		s.openForm(&s.items, nil)
		return domain.NewItemForm(s.defaultCategoryValue()), nil
	}

	item, ok := s.store.Item(*id)
	if !ok {
		return domain.ItemForm{}, fmt.Errorf(
			"%s: item %d: %w", op, *id, domain.ErrNotFound,
		)
	}
	s.openForm(&s.items, id)
	return domain.ItemFormFrom(item), nil
}

func (s *Service) SubmitItemForm(ctx context.Context, f domain.ItemForm) error {
	const op = "Service.SubmitItemForm"
	log := slog.With("op", op)

	s.mu.Lock()
	if err := s.checkSubmit(&s.items); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	draft, err := ValidateItemForm(
		f, s.store.Categories(), s.opts.maxImageBytes,
	)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	editing, id := s.items.editing, s.items.editingID
	s.items.form = domain.PhaseSubmitting
	s.inFlight = true
	s.mu.Unlock()

	var (
		item   domain.MenuItem
		action domain.ChangeAction
	)
	if editing {
		item, err = s.remote.UpdateItem(ctx, id, draft)
		item.ID = id
		action = domain.ActionUpdated
	} else {
		item, err = s.remote.CreateItem(ctx, draft)
		action = domain.ActionCreated
	}
	if err != nil {
		s.failSubmit(&s.items)
		log.Warn("failed to submit item", "editing", editing, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	reloadErr := s.Reload(ctx)
	s.publish(ctx, domain.KindItem, action, item.ID, draft.Name)
	s.finishSubmit(&s.items)

	log.Info("item saved", "id", item.ID, "action", action)
	if reloadErr != nil {
		return fmt.Errorf("%s: %w", op, reloadErr)
	}
	return nil
}

func (s *Service) CloseItemForm() error {
	const op = "Service.CloseItemForm"
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.closeForm(&s.items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ToggleItemAvailability flips the availability of the item. The store
// is only updated by the reload that follows a successful patch.
func (s *Service) ToggleItemAvailability(ctx context.Context, id int64) error {
	const op = "Service.ToggleItemAvailability"
	log := slog.With("op", op)

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, domain.ErrBusy)
	}
	item, ok := s.store.Item(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s: item %d: %w", op, id, domain.ErrNotFound)
	}
	s.inFlight = true
	s.mu.Unlock()

	available := !item.Available
	if _, err := s.remote.SetItemAvailability(ctx, id, available); err != nil {
		s.release()
		log.Warn("failed to toggle availability", "id", id, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	action := domain.ActionAvailabilityOff
	if available {
		action = domain.ActionAvailabilityOn
	}
	err := s.Reload(ctx)
	s.publish(ctx, domain.KindItem, action, id, item.Name)
	s.release()

	log.Info("availability toggled", "id", id, "available", available)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) RequestItemDelete(id int64) error {
	const op = "Service.RequestItemDelete"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items.del == domain.PhaseSubmitting {
		return fmt.Errorf("%s: %w", op, domain.ErrBusy)
	}
	if _, ok := s.store.Item(id); !ok {
		return fmt.Errorf("%s: item %d: %w", op, id, domain.ErrNotFound)
	}
	s.items.del = domain.PhaseConfirmingDelete
	s.items.deleteID = id
	return nil
}

func (s *Service) ConfirmItemDelete(ctx context.Context) error {
	const op = "Service.ConfirmItemDelete"
	log := slog.With("op", op)

	id, err := s.beginDelete(&s.items)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	item, _ := s.store.Item(id)

	if err := s.remote.DeleteItem(ctx, id); err != nil {
		s.finishDelete(&s.items)
		log.Warn("failed to delete item", "id", id, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.Reload(ctx)
	s.publish(ctx, domain.KindItem, domain.ActionDeleted, id, item.Name)
	s.finishDelete(&s.items)

	log.Info("item deleted", "id", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) CancelItemDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelDelete(&s.items)
}

func (s *Service) OpenCategoryForm(id *int64) (domain.CategoryForm, error) {
	const op = "Service.OpenCategoryForm"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categories.form == domain.PhaseSubmitting {
		return domain.CategoryForm{}, fmt.Errorf("%s: %w", op, domain.ErrBusy)
	}

	if id == nil {
		s.openForm(&s.categories, nil)
		return domain.NewCategoryForm(), nil
	}

	c, ok := s.store.Category(*id)
	if !ok {
		return domain.CategoryForm{}, fmt.Errorf(
			"%s: category %d: %w", op, *id, domain.ErrNotFound,
		)
	}
	s.openForm(&s.categories, id)
	return domain.CategoryFormFrom(c), nil
}

func (s *Service) SubmitCategoryForm(
	ctx context.Context, f domain.CategoryForm,
) error {
	const op = "Service.SubmitCategoryForm"
	log := slog.With("op", op)

	s.mu.Lock()
	if err := s.checkSubmit(&s.categories); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	editing, id := s.categories.editing, s.categories.editingID
	var editingID int64
	if editing {
		editingID = id
	}
	draft, err := ValidateCategoryForm(
		f, s.store.Categories(), editingID, s.opts.maxImageBytes,
	)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	s.categories.form = domain.PhaseSubmitting
	s.inFlight = true
	s.mu.Unlock()

	var (
		c      domain.Category
		action domain.ChangeAction
	)
	if editing {
		c, err = s.remote.UpdateCategory(ctx, id, draft)
		c.ID = id
		action = domain.ActionUpdated
	} else {
		c, err = s.remote.CreateCategory(ctx, draft)
		action = domain.ActionCreated
	}
	if err != nil {
		s.failSubmit(&s.categories)
		log.Warn("failed to submit category", "editing", editing, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	reloadErr := s.Reload(ctx)
	s.publish(ctx, domain.KindCategory, action, c.ID, draft.Label)
	s.finishSubmit(&s.categories)

	log.Info("category saved", "id", c.ID, "action", action)
	if reloadErr != nil {
		return fmt.Errorf("%s: %w", op, reloadErr)
	}
	return nil
}

func (s *Service) CloseCategoryForm() error {
	const op = "Service.CloseCategoryForm"
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.closeForm(&s.categories); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RequestCategoryDelete runs the delete guard first. A blocked category
// is reported through the result and never awaits confirmation.
func (s *Service) RequestCategoryDelete(id int64) (domain.GuardResult, error) {
	const op = "Service.RequestCategoryDelete"
	log := slog.With("op", op)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categories.del == domain.PhaseSubmitting {
		return domain.GuardResult{}, fmt.Errorf("%s: %w", op, domain.ErrBusy)
	}
	if _, ok := s.store.Category(id); !ok {
		return domain.GuardResult{}, fmt.Errorf(
			"%s: category %d: %w", op, id, domain.ErrNotFound,
		)
	}

	res := catalog.GuardCategoryDelete(s.store, id)
	if !res.Allowed {
		log.Info("category delete blocked", "id", id, "reason", res.Reason)
		return res, nil
	}
	s.categories.del = domain.PhaseConfirmingDelete
	s.categories.deleteID = id
	return res, nil
}

func (s *Service) ConfirmCategoryDelete(ctx context.Context) error {
	const op = "Service.ConfirmCategoryDelete"
	log := slog.With("op", op)

	id, err := s.beginDelete(&s.categories)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c, _ := s.store.Category(id)

	if res := catalog.GuardCategoryDelete(s.store, id); !res.Allowed {
		s.finishDelete(&s.categories)
		log.Info("category delete blocked", "id", id, "reason", res.Reason)
		return fmt.Errorf(
			"%s: %w: %s", op, domain.ErrDeleteBlocked, res.Reason,
		)
	}

	if err := s.remote.DeleteCategory(ctx, id); err != nil {
		s.finishDelete(&s.categories)
		log.Warn("failed to delete category", "id", id, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.Reload(ctx)
	s.publish(ctx, domain.KindCategory, domain.ActionDeleted, id, c.Label)
	s.finishDelete(&s.categories)

	log.Info("category deleted", "id", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) CancelCategoryDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelDelete(&s.categories)
}

// openForm must be called with s.mu held.
func (s *Service) openForm(f *flow, id *int64) {
	f.form = domain.PhaseFormOpen
	f.editing = id != nil
	f.editingID = 0
	if id != nil {
		f.editingID = *id
	}
}

func (s *Service) closeForm(f *flow) error {
	switch f.form {
	case domain.PhaseSubmitting:
		return domain.ErrBusy
	case domain.PhaseIdle:
		return domain.ErrNoFormOpen
	}
	f.form = domain.PhaseIdle
	f.editing = false
	f.editingID = 0
	return nil
}

func (s *Service) checkSubmit(f *flow) error {
	switch {
	case f.form == domain.PhaseSubmitting || s.inFlight:
		return domain.ErrBusy
	case f.form != domain.PhaseFormOpen:
		return domain.ErrNoFormOpen
	}
	return nil
}

func (s *Service) failSubmit(f *flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.form = domain.PhaseFormOpen
	s.inFlight = false
}

func (s *Service) finishSubmit(f *flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.form = domain.PhaseIdle
	f.editing = false
	f.editingID = 0
	s.inFlight = false
}

func (s *Service) beginDelete(f *flow) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case f.del == domain.PhaseSubmitting || s.inFlight:
		return 0, domain.ErrBusy
	case f.del != domain.PhaseConfirmingDelete:
		return 0, domain.ErrNoPendingDelete
	}
	f.del = domain.PhaseSubmitting
	s.inFlight = true
	return f.deleteID, nil
}

func (s *Service) finishDelete(f *flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.del = domain.PhaseIdle
	f.deleteID = 0
	s.inFlight = false
}

func (s *Service) cancelDelete(f *flow) {
	if f.del == domain.PhaseConfirmingDelete {
		f.del = domain.PhaseIdle
		f.deleteID = 0
	}
}

func (s *Service) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

func (s *Service) defaultCategoryValue() string {
	cats := s.store.Categories()
	if len(cats) == 0 {
		return ""
	}
	return cats[0].Value()
}

// sideEffectContext keeps the caller's values but not its deadline.
func (s *Service) sideEffectContext(
	ctx context.Context,
) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opts.sideTimeout)
}

func (s *Service) publish(
	ctx context.Context,
	kind domain.EntityKind,
	action domain.ChangeAction,
	id int64,
	name string,
) {
	const op = "Service.publish"

	if s.opts.changes == nil {
		return
	}
	change := domain.MenuChange{
		Kind:       kind,
		Action:     action,
		EntityID:   id,
		Name:       name,
		OccurredAt: s.opts.now().UTC(),
	}
	pCtx, cancel := s.sideEffectContext(ctx)
	defer cancel()
	if err := s.opts.changes.ProduceChange(pCtx, change); err != nil {
		slog.Warn(
			"failed to publish menu change",
			"op", op, "kind", kind, "id", id, "err", err,
		)
	}
}
