package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/motofleet/internal/client/session"
	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
)

type stubAPI struct {
	motos     []models.Moto
	err       error
	created   models.MotoInput
	calls     int
	deletedID string
}

func (s *stubAPI) ListMotos(context.Context, string) ([]models.Moto, error) {
	s.calls++
	return s.motos, s.err
}

func (s *stubAPI) CreateMoto(_ context.Context, _ string, in models.MotoInput) (*models.Moto, error) {
	s.calls++
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &models.Moto{ID: "new", Title: in.Title, SubTitle: in.SubTitle, Plate: in.Plate}, nil
}

func (s *stubAPI) UpdateMoto(_ context.Context, _, id string, ch models.MotoChanges) (*models.Moto, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.Moto{ID: id, Title: *ch.Title, SubTitle: "eletrica", Plate: "ABC1234"}, nil
}

func (s *stubAPI) DeleteMoto(_ context.Context, _, id string) error {
	s.calls++
	s.deletedID = id
	return s.err
}

func (s *stubAPI) ListStocks(context.Context, string) ([]models.Stock, error) { return nil, nil }
func (s *stubAPI) CreateStock(context.Context, string, models.StockInput) (*models.Stock, error) {
	return nil, nil
}
func (s *stubAPI) UpdateStock(context.Context, string, string, models.StockInput) (*models.Stock, error) {
	return nil, nil
}
func (s *stubAPI) DeleteStock(context.Context, string, string) error { return nil }

func TestServiceListHydrates(t *testing.T) {
	api := &stubAPI{motos: []models.Moto{{ID: "1", Title: "A", SubTitle: "mottu sport 160"}}}
	motos, err := NewService(api, i18n.New("pt"), nil).List(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, motos, 1)
	assert.Equal(t, string(models.CategorySport), motos[0].SubTitle)
	assert.Equal(t, "mottu-sport.png", motos[0].Image)
}

func TestServiceErrorsAreLocalized(t *testing.T) {
	tr := i18n.New("pt")
	api := &stubAPI{err: errors.New("502")}
	svc := NewService(api, tr, nil)
	ctx := context.Background()

	_, err := svc.List(ctx, "tok")
	assertMessage(t, err, tr.T("inventory.errors.load"))

	_, err = svc.Create(ctx, "tok", models.MotoInput{Title: "Pop", SubTitle: "Pop", Plate: "ABC1234"})
	assertMessage(t, err, tr.T("moto.errors.generic"))

	_, err = svc.Update(ctx, "tok", "1", models.MotoChanges{Title: models.StringPtr("X")})
	assertMessage(t, err, tr.T("moto.errors.generic"))

	err = svc.Delete(ctx, "tok", "1")
	assertMessage(t, err, tr.T("inventory.errors.delete"))
}

func TestServiceValidatesBeforeCalling(t *testing.T) {
	api := &stubAPI{}
	svc := NewService(api, i18n.New("pt"), nil)

	_, err := svc.Create(context.Background(), "tok", models.MotoInput{Title: " ", SubTitle: "Sport", Plate: "AB1"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Informe o título", appErr.Fields["title"])
	assert.Equal(t, "Mínimo 6 caracteres", appErr.Fields["plate"])

	_, err = svc.Update(context.Background(), "tok", "1", models.MotoChanges{Plate: models.StringPtr("X")})
	require.Error(t, err)
	assert.Zero(t, api.calls)
}

func TestServiceCreateSendsCanonicalCategory(t *testing.T) {
	api := &stubAPI{}
	created, err := NewService(api, nil, nil).Create(context.Background(), "tok",
		models.MotoInput{Title: " Nova ", SubTitle: "Mottu E", Plate: "ABC1234"})
	require.NoError(t, err)
	assert.Equal(t, string(models.CategoryE), api.created.SubTitle)
	assert.Equal(t, "Nova", api.created.Title)
	assert.Equal(t, "mottu-e.png", created.Image)
}

func assertMessage(t *testing.T, err error, want string) {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected app error, got %v", err)
	assert.Equal(t, want, appErr.Message)
}

type stubMotos struct {
	list      []models.Moto
	listErr   error
	createErr error
	deleteErr error
}

func (s *stubMotos) List(context.Context, string) ([]models.Moto, error) {
	return s.list, s.listErr
}

func (s *stubMotos) Create(_ context.Context, _ string, in models.MotoInput) (*models.Moto, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.Moto{ID: "new", Title: in.Title, SubTitle: in.SubTitle, Plate: in.Plate}, nil
}

func (s *stubMotos) Update(_ context.Context, _, id string, ch models.MotoChanges) (*models.Moto, error) {
	return &models.Moto{ID: id, Title: *ch.Title, SubTitle: string(models.CategoryPop), Plate: "ABC1234"}, nil
}

func (s *stubMotos) Delete(context.Context, string, string) error {
	return s.deleteErr
}

func fleet() []models.Moto {
	return []models.Moto{
		{ID: "1", Title: "Entrega Centro", SubTitle: string(models.CategorySport), Plate: "ABC1234"},
		{ID: "2", Title: "Reserva", SubTitle: string(models.CategoryPop), Plate: "XYZ9876"},
		{ID: "3", Title: "Entrega Sul", SubTitle: string(models.CategorySport), Plate: "QWE4567"},
	}
}

func TestControllerWithoutTokenIsNoop(t *testing.T) {
	c := NewController(&stubMotos{list: fleet()}, "")
	assert.ErrorIs(t, c.Reload(context.Background()), session.ErrNotLoggedIn)
	_, err := c.Add(context.Background(), models.MotoInput{})
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
	assert.ErrorIs(t, c.Remove(context.Background(), "1"), session.ErrNotLoggedIn)
	assert.Empty(t, c.Items())
}

func TestControllerFilters(t *testing.T) {
	c := NewController(&stubMotos{list: fleet()}, "tok")
	require.NoError(t, c.Reload(context.Background()))

	assert.Equal(t, []string{"All", "Mottu Sport", "Mottu Pop"}, c.Categories())
	assert.Len(t, c.Filtered(), 3)

	c.SetCategory("sport")
	assert.Equal(t, "Mottu Sport", c.Category())
	assert.Len(t, c.Filtered(), 2)

	c.SetSearch("  SUL ")
	got := c.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)

	c.SetCategory("all")
	c.SetSearch("xyz")
	got = c.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestControllerReloadFailureKeepsItems(t *testing.T) {
	svc := &stubMotos{list: fleet()}
	c := NewController(svc, "tok")
	require.NoError(t, c.Reload(context.Background()))

	svc.listErr = apperrors.ExternalError("Erro ao carregar o inventário.", errors.New("down"))
	require.Error(t, c.Reload(context.Background()))
	assert.Len(t, c.Items(), 3)
	assert.Equal(t, "Erro ao carregar o inventário.", c.Err())
	assert.False(t, c.Loading())
}

func TestControllerAddEdit(t *testing.T) {
	svc := &stubMotos{list: fleet()}
	c := NewController(svc, "tok")
	require.NoError(t, c.Reload(context.Background()))

	created, err := c.Add(context.Background(), models.MotoInput{Title: "Nova", SubTitle: "Mottu Pop", Plate: "NEW0001"})
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)
	assert.Equal(t, "new", c.Items()[0].ID)
	assert.False(t, c.Busy())

	_, err = c.Edit(context.Background(), "2", models.MotoChanges{Title: models.StringPtr("Renomeada")})
	require.NoError(t, err)
	assert.Equal(t, "Renomeada", c.Items()[2].Title)

	svc.createErr = apperrors.FieldsError(map[string]string{"plate": "Mínimo 6 caracteres"})
	_, err = c.Add(context.Background(), models.MotoInput{Title: "X"})
	require.Error(t, err)
	assert.Empty(t, c.Err())
	assert.Len(t, c.Items(), 4)
}

func TestControllerRemoveRollsBack(t *testing.T) {
	svc := &stubMotos{list: fleet()}
	c := NewController(svc, "tok")
	require.NoError(t, c.Reload(context.Background()))

	require.NoError(t, c.Remove(context.Background(), "2"))
	assert.Len(t, c.Items(), 2)

	svc.deleteErr = apperrors.ExternalError("Erro ao excluir a moto.", errors.New("down"))
	require.Error(t, c.Remove(context.Background(), "1"))
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "Erro ao excluir a moto.", c.Err())
}

func TestControllerViewMode(t *testing.T) {
	c := NewController(&stubMotos{}, "tok")
	assert.Equal(t, ViewGrid, c.ViewMode())
	c.SetViewMode(ViewList)
	assert.Equal(t, ViewList, c.ViewMode())
	c.SetViewMode("table")
	assert.Equal(t, ViewGrid, c.ViewMode())
}
