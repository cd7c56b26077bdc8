package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/niksmo/menu-admin/internal/core/catalog"
	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/service"
)

type MockCatalogRemote struct {
	mock.Mock
}

func (m *MockCatalogRemote) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.MenuItem), args.Error(1)
}

func (m *MockCatalogRemote) CreateItem(
	ctx context.Context, d domain.ItemDraft,
) (domain.MenuItem, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(domain.MenuItem), args.Error(1)
}

func (m *MockCatalogRemote) UpdateItem(
	ctx context.Context, id int64, d domain.ItemDraft,
) (domain.MenuItem, error) {
	args := m.Called(ctx, id, d)
	return args.Get(0).(domain.MenuItem), args.Error(1)
}

func (m *MockCatalogRemote) DeleteItem(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogRemote) SetItemAvailability(
	ctx context.Context, id int64, available bool,
) (domain.MenuItem, error) {
	args := m.Called(ctx, id, available)
	return args.Get(0).(domain.MenuItem), args.Error(1)
}

func (m *MockCatalogRemote) ListCategories(
	ctx context.Context,
) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCatalogRemote) CreateCategory(
	ctx context.Context, d domain.CategoryDraft,
) (domain.Category, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCatalogRemote) UpdateCategory(
	ctx context.Context, id int64, d domain.CategoryDraft,
) (domain.Category, error) {
	args := m.Called(ctx, id, d)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCatalogRemote) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockChangesProducer struct {
	mock.Mock
}

func (m *MockChangesProducer) ProduceChange(
	ctx context.Context, c domain.MenuChange,
) error {
	return m.Called(ctx, c).Error(0)
}

func fries() domain.MenuItem {
	return domain.MenuItem{
		ID:          1,
		Name:        "Fries",
		CategoryID:  3,
		Price:       decimal.RequireFromString("6.00"),
		Description: "Crispy",
		Available:   true,
	}
}

func sides() domain.Category {
	return domain.Category{ID: 3, Label: "Sides"}
}

func drinks() domain.Category {
	return domain.Category{ID: 4, Label: "Drinks"}
}

func newLoadedService(
	t *testing.T, remote *MockCatalogRemote, opts ...service.Opt,
) *service.Service {
	t.Helper()
	store := catalog.NewStore()
	store.Replace(
		[]domain.MenuItem{fries()},
		[]domain.Category{sides(), drinks()},
	)
	s, err := service.New(remote, store, opts...)
	require.NoError(t, err)
	return s
}

func expectReload(remote *MockCatalogRemote) {
	remote.On("ListItems", mock.Anything).
		Return([]domain.MenuItem{fries()}, nil)
	remote.On("ListCategories", mock.Anything).
		Return([]domain.Category{sides(), drinks()}, nil)
}

func validItemForm() domain.ItemForm {
	f := domain.NewItemForm("3")
	f.Name = "Onion rings"
	f.Price = "4.50"
	f.Description = "Battered"
	return f
}

func TestNew(t *testing.T) {
	t.Run("NilRemote", func(t *testing.T) {
		_, err := service.New(nil, nil)
		require.Error(t, err)
	})

	t.Run("BadOpt", func(t *testing.T) {
		_, err := service.New(
			new(MockCatalogRemote), nil, service.MaxImageBytesOpt(0),
		)
		require.Error(t, err)
	})
}

func TestReload(t *testing.T) {
	t.Run("ReplacesStore", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s, err := service.New(remote, nil)
		require.NoError(t, err)
		s.SetSearch("fri")
		expectReload(remote)

		require.NoError(t, s.Reload(t.Context()))

		menu := s.Snapshot()
		assert.Len(t, menu.View, 1)
		assert.Equal(t, 1, menu.Total)
		assert.Equal(t, "fri", menu.Filter.Search)
		require.Len(t, menu.Categories, 2)
		assert.Equal(t, 1, menu.Categories[0].ItemCount)
		assert.Equal(t, 0, menu.Categories[1].ItemCount)
	})

	t.Run("PartialFailureKeepsStore", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)
		remote.On("ListItems", mock.Anything).
			Return([]domain.MenuItem{}, nil)
		remote.On("ListCategories", mock.Anything).
			Return([]domain.Category(nil), &domain.HTTPError{Status: 500})

		err := s.Reload(t.Context())
		var httpErr *domain.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, 500, httpErr.Status)
		assert.Len(t, s.View(), 1)
	})
}

func TestSubmitItemForm(t *testing.T) {
	t.Run("NoFormOpen", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		err := s.SubmitItemForm(t.Context(), validItemForm())
		assert.ErrorIs(t, err, domain.ErrNoFormOpen)
	})

	t.Run("ZeroPrice", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		_, err := s.OpenItemForm(nil)
		require.NoError(t, err)

		f := validItemForm()
		f.Price = "0"
		err = s.SubmitItemForm(t.Context(), f)

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.True(t, vErr.Has(service.FieldPrice))
		remote.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
		assert.Equal(t, domain.PhaseFormOpen, s.State().Items.Form)
	})

	t.Run("Create", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		producer := new(MockChangesProducer)
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		s := newLoadedService(
			t, remote,
			service.ChangesProducerOpt(producer),
			service.ClockOpt(func() time.Time { return now }),
		)

		form, err := s.OpenItemForm(nil)
		require.NoError(t, err)
		assert.Equal(t, "3", form.CategoryID)
		assert.True(t, form.Available)

		created := domain.MenuItem{ID: 2, Name: "Onion rings", CategoryID: 3}
		remote.On("CreateItem", mock.Anything, mock.MatchedBy(
			func(d domain.ItemDraft) bool {
				return d.Name == "Onion rings" && d.CategoryID == 3 &&
					d.Price.Equal(decimal.RequireFromString("4.5"))
			},
		)).Return(created, nil).Once()
		producer.On("ProduceChange", mock.Anything, domain.MenuChange{
			Kind:       domain.KindItem,
			Action:     domain.ActionCreated,
			EntityID:   2,
			Name:       "Onion rings",
			OccurredAt: now,
		}).Return(nil).Once()
		expectReload(remote)

		require.NoError(t, s.SubmitItemForm(t.Context(), validItemForm()))

		remote.AssertExpectations(t)
		producer.AssertExpectations(t)
		remote.AssertNumberOfCalls(t, "ListItems", 1)
		remote.AssertNumberOfCalls(t, "ListCategories", 1)
		st := s.State()
		assert.Equal(t, domain.PhaseIdle, st.Items.Form)
		assert.Nil(t, st.Items.EditingID)
		assert.False(t, st.InFlight)
	})

	t.Run("EditPrepopulates", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		id := int64(1)
		form, err := s.OpenItemForm(&id)
		require.NoError(t, err)
		assert.Equal(t, "Fries", form.Name)
		assert.Equal(t, "6.00", form.Price)
		assert.Equal(t, "3", form.CategoryID)
		st := s.State()
		require.NotNil(t, st.Items.EditingID)
		assert.Equal(t, id, *st.Items.EditingID)

		form.Price = "6.50"
		remote.On("UpdateItem", mock.Anything, id, mock.Anything).
			Return(fries(), nil).Once()
		expectReload(remote)

		require.NoError(t, s.SubmitItemForm(t.Context(), form))
		remote.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		s := newLoadedService(t, new(MockCatalogRemote))
		id := int64(99)
		_, err := s.OpenItemForm(&id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, domain.PhaseIdle, s.State().Items.Form)
	})

	t.Run("RemoteFailureKeepsFormOpen", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)
		_, err := s.OpenItemForm(nil)
		require.NoError(t, err)

		remote.On("CreateItem", mock.Anything, mock.Anything).Return(
			domain.MenuItem{},
			&domain.HTTPError{Status: 422, Body: `{"message":"invalid"}`},
		)

		err = s.SubmitItemForm(t.Context(), validItemForm())
		var httpErr *domain.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, domain.PhaseFormOpen, s.State().Items.Form)
		remote.AssertNotCalled(t, "ListItems", mock.Anything)
	})

	t.Run("ReloadFailureStillCloses", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)
		_, err := s.OpenItemForm(nil)
		require.NoError(t, err)

		connErr := &domain.ConnectivityError{
			BaseURL: "http://localhost:8000/api", Err: errors.New("refused"),
		}
		remote.On("CreateItem", mock.Anything, mock.Anything).
			Return(domain.MenuItem{ID: 2}, nil)
		remote.On("ListItems", mock.Anything).
			Return([]domain.MenuItem(nil), connErr)
		remote.On("ListCategories", mock.Anything).
			Return([]domain.Category{sides()}, nil)

		err = s.SubmitItemForm(t.Context(), validItemForm())
		var cErr *domain.ConnectivityError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, domain.PhaseIdle, s.State().Items.Form)
	})

	t.Run("Busy", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)
		_, err := s.OpenItemForm(nil)
		require.NoError(t, err)

		started := make(chan struct{})
		release := make(chan struct{})
		remote.On("CreateItem", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(domain.MenuItem{ID: 2}, nil).Once()
		expectReload(remote)

		done := make(chan error, 1)
		go func() {
			done <- s.SubmitItemForm(context.Background(), validItemForm())
		}()
		<-started

		assert.Equal(t, domain.PhaseSubmitting, s.State().Items.Form)
		err = s.SubmitItemForm(t.Context(), validItemForm())
		assert.ErrorIs(t, err, domain.ErrBusy)
		err = s.ToggleItemAvailability(t.Context(), 1)
		assert.ErrorIs(t, err, domain.ErrBusy)
		_, err = s.OpenItemForm(nil)
		assert.ErrorIs(t, err, domain.ErrBusy)
		assert.ErrorIs(t, s.CloseItemForm(), domain.ErrBusy)

		close(release)
		require.NoError(t, <-done)
		remote.AssertNumberOfCalls(t, "CreateItem", 1)
	})
}

func TestToggleItemAvailability(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		remote.On("SetItemAvailability", mock.Anything, int64(1), false).
			Return(domain.MenuItem{}, nil).Once()
		expectReload(remote)

		require.NoError(t, s.ToggleItemAvailability(t.Context(), 1))
		remote.AssertExpectations(t)
	})

	t.Run("FailureLeavesStore", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		remote.On("SetItemAvailability", mock.Anything, int64(1), false).
			Return(domain.MenuItem{}, &domain.HTTPError{Status: 500})

		err := s.ToggleItemAvailability(t.Context(), 1)
		var httpErr *domain.HTTPError
		require.ErrorAs(t, err, &httpErr)

		item, ok := s.Store().Item(1)
		require.True(t, ok)
		assert.True(t, item.Available)
		assert.False(t, s.State().InFlight)
		remote.AssertNotCalled(t, "ListItems", mock.Anything)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		s := newLoadedService(t, new(MockCatalogRemote))
		err := s.ToggleItemAvailability(t.Context(), 42)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestItemDelete(t *testing.T) {
	t.Run("ConfirmWithoutRequest", func(t *testing.T) {
		s := newLoadedService(t, new(MockCatalogRemote))
		err := s.ConfirmItemDelete(t.Context())
		assert.ErrorIs(t, err, domain.ErrNoPendingDelete)
	})

	t.Run("Cancel", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		require.NoError(t, s.RequestItemDelete(1))
		st := s.State()
		assert.Equal(t, domain.PhaseConfirmingDelete, st.Items.Delete)
		require.NotNil(t, st.Items.DeleteTarget)
		assert.Equal(t, int64(1), *st.Items.DeleteTarget)

		s.CancelItemDelete()
		assert.Equal(t, domain.PhaseIdle, s.State().Items.Delete)
		remote.AssertNotCalled(t, "DeleteItem", mock.Anything, mock.Anything)
	})

	t.Run("Confirm", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		require.NoError(t, s.RequestItemDelete(1))
		remote.On("DeleteItem", mock.Anything, int64(1)).Return(nil).Once()
		remote.On("ListItems", mock.Anything).
			Return([]domain.MenuItem{}, nil)
		remote.On("ListCategories", mock.Anything).
			Return([]domain.Category{sides()}, nil)

		require.NoError(t, s.ConfirmItemDelete(t.Context()))
		assert.Empty(t, s.View())
		assert.Equal(t, domain.PhaseIdle, s.State().Items.Delete)
	})

	t.Run("FailureReturnsToIdle", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		require.NoError(t, s.RequestItemDelete(1))
		remote.On("DeleteItem", mock.Anything, int64(1)).
			Return(&domain.HTTPError{Status: 404, Body: "gone"})

		err := s.ConfirmItemDelete(t.Context())
		var httpErr *domain.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, domain.PhaseIdle, s.State().Items.Delete)
		assert.Len(t, s.View(), 1)
	})
}

func TestCategoryForm(t *testing.T) {
	t.Run("OversizedFile", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		_, err := s.OpenCategoryForm(nil)
		require.NoError(t, err)

		f := domain.NewCategoryForm()
		f.Label = "Desserts"
		f.SetImageMode(domain.ImageModeFile)
		f.ImageFile = &domain.UploadFile{
			Name:        "big.png",
			ContentType: "image/png",
			Data:        bytes.Repeat([]byte{0x1}, 6<<20),
		}

		err = s.SubmitCategoryForm(t.Context(), f)
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.True(t, vErr.Has(service.FieldImage))
		remote.AssertNotCalled(t, "CreateCategory", mock.Anything, mock.Anything)
		assert.Equal(t, domain.PhaseFormOpen, s.State().Categories.Form)
	})

	t.Run("DuplicateLabel", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		_, err := s.OpenCategoryForm(nil)
		require.NoError(t, err)

		f := domain.NewCategoryForm()
		f.Label = "Drinks"
		err = s.SubmitCategoryForm(t.Context(), f)
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.True(t, vErr.Has(service.FieldLabel))
	})

	t.Run("EditKeepsOwnLabel", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		id := int64(4)
		f, err := s.OpenCategoryForm(&id)
		require.NoError(t, err)
		assert.Equal(t, "Drinks", f.Label)

		remote.On("UpdateCategory", mock.Anything, id, domain.CategoryDraft{
			Label: "Drinks",
		}).Return(drinks(), nil).Once()
		expectReload(remote)

		require.NoError(t, s.SubmitCategoryForm(t.Context(), f))
		remote.AssertExpectations(t)
	})

	t.Run("Close", func(t *testing.T) {
		s := newLoadedService(t, new(MockCatalogRemote))
		assert.ErrorIs(t, s.CloseCategoryForm(), domain.ErrNoFormOpen)

		_, err := s.OpenCategoryForm(nil)
		require.NoError(t, err)
		require.NoError(t, s.CloseCategoryForm())
		assert.Equal(t, domain.PhaseIdle, s.State().Categories.Form)
	})
}

func TestCategoryDelete(t *testing.T) {
	t.Run("Blocked", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		res, err := s.RequestCategoryDelete(3)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Contains(t, res.Reason, "1 menu item(s)")
		assert.Equal(t, domain.PhaseIdle, s.State().Categories.Delete)

		err = s.ConfirmCategoryDelete(t.Context())
		assert.ErrorIs(t, err, domain.ErrNoPendingDelete)
		remote.AssertNotCalled(t, "DeleteCategory", mock.Anything, mock.Anything)
	})

	t.Run("Allowed", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		s := newLoadedService(t, remote)

		res, err := s.RequestCategoryDelete(4)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, domain.PhaseConfirmingDelete, s.State().Categories.Delete)

		remote.On("DeleteCategory", mock.Anything, int64(4)).Return(nil).Once()
		remote.On("ListItems", mock.Anything).
			Return([]domain.MenuItem{fries()}, nil)
		remote.On("ListCategories", mock.Anything).
			Return([]domain.Category{sides()}, nil)

		require.NoError(t, s.ConfirmCategoryDelete(t.Context()))
		assert.Len(t, s.Snapshot().Categories, 1)
	})

	t.Run("Unknown", func(t *testing.T) {
		s := newLoadedService(t, new(MockCatalogRemote))
		_, err := s.RequestCategoryDelete(77)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

type stalledProducer struct {
	calls int
}

func (p *stalledProducer) ProduceChange(
	ctx context.Context, _ domain.MenuChange,
) error {
	p.calls++
	<-ctx.Done()
	return ctx.Err()
}

type stalledMirror struct {
	calls int
}

func (m *stalledMirror) StoreCatalog(
	ctx context.Context, _ []domain.Category, _ []domain.MenuItem,
) error {
	m.calls++
	<-ctx.Done()
	return ctx.Err()
}

func TestStalledSideEffects(t *testing.T) {
	t.Run("ProducerKeepsMutation", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		producer := new(stalledProducer)
		s := newLoadedService(
			t, remote,
			service.ChangesProducerOpt(producer),
			service.SideEffectTimeoutOpt(50*time.Millisecond),
		)
		_, err := s.OpenItemForm(nil)
		require.NoError(t, err)

		rings := domain.MenuItem{ID: 2, Name: "Onion rings", CategoryID: 3}
		remote.On("CreateItem", mock.Anything, mock.Anything).
			Return(rings, nil).Once()
		remote.On("ListItems", mock.Anything).
			Return([]domain.MenuItem{fries(), rings}, nil)
		remote.On("ListCategories", mock.Anything).
			Return([]domain.Category{sides(), drinks()}, nil)

		ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
		defer cancel()
		start := time.Now()
		require.NoError(t, s.SubmitItemForm(ctx, validItemForm()))

		assert.Less(t, time.Since(start), 250*time.Millisecond)
		assert.Equal(t, 1, producer.calls)
		assert.Len(t, s.Store().Items(), 2)
		st := s.State()
		assert.Equal(t, domain.PhaseIdle, st.Items.Form)
		assert.False(t, st.InFlight)
	})

	t.Run("MirrorKeepsReload", func(t *testing.T) {
		remote := new(MockCatalogRemote)
		mirror := new(stalledMirror)
		s := newLoadedService(
			t, remote,
			service.CatalogMirrorOpt(mirror),
			service.SideEffectTimeoutOpt(50*time.Millisecond),
		)
		expectReload(remote)

		ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
		defer cancel()
		start := time.Now()
		require.NoError(t, s.Reload(ctx))

		assert.Less(t, time.Since(start), 250*time.Millisecond)
		assert.Equal(t, 1, mirror.calls)
	})

	t.Run("BadTimeout", func(t *testing.T) {
		_, err := service.New(
			new(MockCatalogRemote), nil, service.SideEffectTimeoutOpt(0),
		)
		require.Error(t, err)
	})
}

func TestConfirmCategoryDeleteRechecksGuard(t *testing.T) {
	remote := new(MockCatalogRemote)
	s := newLoadedService(t, remote)

	res, err := s.RequestCategoryDelete(4)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	cola := domain.MenuItem{ID: 5, Name: "Cola", CategoryID: 4, Available: true}
	remote.On("ListItems", mock.Anything).
		Return([]domain.MenuItem{fries(), cola}, nil)
	remote.On("ListCategories", mock.Anything).
		Return([]domain.Category{sides(), drinks()}, nil)
	require.NoError(t, s.Reload(t.Context()))

	err = s.ConfirmCategoryDelete(t.Context())
	assert.ErrorIs(t, err, domain.ErrDeleteBlocked)
	remote.AssertNotCalled(t, "DeleteCategory", mock.Anything, mock.Anything)
	st := s.State()
	assert.Equal(t, domain.PhaseIdle, st.Categories.Delete)
	assert.False(t, st.InFlight)
}
