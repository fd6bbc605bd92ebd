package fleet

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/repository"
)

type memStore struct {
	motos  []models.Moto
	stocks []models.Stock
	seq    int
}

func (m *memStore) nextID() string {
	m.seq++
	return fmt.Sprintf("id-%d", m.seq)
}

func (m *memStore) ListMotos(_ context.Context, stockID string) ([]models.Moto, error) {
	var out []models.Moto
	for _, moto := range m.motos {
		if stockID == "" || (moto.StockID != nil && *moto.StockID == stockID) {
			out = append(out, moto)
		}
	}
	return out, nil
}

func (m *memStore) GetMoto(_ context.Context, id string) (*models.Moto, error) {
	for _, moto := range m.motos {
		if moto.ID == id {
			return &moto, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) CreateMoto(_ context.Context, moto models.Moto) (*models.Moto, error) {
	for _, existing := range m.motos {
		if existing.Plate == moto.Plate {
			return nil, repository.ErrDuplicate
		}
	}
	moto.ID = m.nextID()
	m.motos = append(m.motos, moto)
	return &moto, nil
}

func (m *memStore) ReplaceMoto(_ context.Context, moto models.Moto) (*models.Moto, error) {
	for i := range m.motos {
		if m.motos[i].ID == moto.ID {
			m.motos[i] = moto
			return &moto, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) DeleteMoto(_ context.Context, id string) error {
	for i := range m.motos {
		if m.motos[i].ID == id {
			m.motos = append(m.motos[:i], m.motos[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) CountMotos(ctx context.Context, stockID string) (int, error) {
	motos, _ := m.ListMotos(ctx, stockID)
	return len(motos), nil
}

func (m *memStore) ListStocks(context.Context) ([]models.Stock, error) {
	return m.stocks, nil
}

func (m *memStore) GetStock(_ context.Context, id string) (*models.Stock, error) {
	for _, s := range m.stocks {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) CreateStock(_ context.Context, s models.Stock) (*models.Stock, error) {
	s.ID = m.nextID()
	m.stocks = append(m.stocks, s)
	return &s, nil
}

func (m *memStore) ReplaceStock(_ context.Context, s models.Stock) (*models.Stock, error) {
	for i := range m.stocks {
		if m.stocks[i].ID == s.ID {
			m.stocks[i] = s
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) DeleteStock(_ context.Context, id string) error {
	for i := range m.stocks {
		if m.stocks[i].ID == id {
			m.stocks = append(m.stocks[:i], m.stocks[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func TestCreateMotoCanonicalizesAndHydrates(t *testing.T) {
	svc := NewService(&memStore{}, nil)

	moto, err := svc.CreateMoto(context.Background(), models.MotoInput{Title: "  Frota 1 ", SubTitle: "eletrica", Plate: "ABC1D23"})
	require.NoError(t, err)

	assert.Equal(t, "Frota 1", moto.Title)
	assert.Equal(t, string(models.CategoryE), moto.SubTitle)
	assert.Equal(t, "mottu-e.png", moto.Image)
	assert.Nil(t, moto.StockID)
}

func TestCreateMotoValidation(t *testing.T) {
	svc := NewService(&memStore{}, nil)

	_, err := svc.CreateMoto(context.Background(), models.MotoInput{Title: " ", Plate: "AB1"})
	structured, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.TypeValidation, structured.Type)
	assert.Equal(t, map[string]string{
		"title":    "validation.title.required",
		"subTitle": "validation.subTitle.required",
		"plate":    "validation.plate.min",
	}, structured.Fields)
}

func TestCreateMotoRejectsUnknownStockAndDuplicatePlate(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil)
	ctx := context.Background()

	_, err := svc.CreateMoto(ctx, models.MotoInput{Title: "A", SubTitle: "Pop", Plate: "ABC1D23", StockID: models.StringPtr("nope")})
	structured, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "validation.stockId.exists", structured.Fields["stockId"])

	_, err = svc.CreateMoto(ctx, models.MotoInput{Title: "A", SubTitle: "Pop", Plate: "ABC1D23"})
	require.NoError(t, err)
	_, err = svc.CreateMoto(ctx, models.MotoInput{Title: "B", SubTitle: "Pop", Plate: "ABC1D23"})
	assert.True(t, apperrors.IsType(err, apperrors.TypeConflict))
}

func TestUpdateMoto(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil)
	ctx := context.Background()

	stock, err := svc.CreateStock(ctx, models.StockInput{Name: "Pátio Sul", Quantity: models.IntPtr(10)})
	require.NoError(t, err)
	moto, err := svc.CreateMoto(ctx, models.MotoInput{Title: "A", SubTitle: "Sport", Plate: "ABC1D23"})
	require.NoError(t, err)

	updated, err := svc.UpdateMoto(ctx, moto.ID, models.MotoChanges{StockID: &stock.ID, Title: models.StringPtr("B")})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Title)
	require.NotNil(t, updated.StockID)
	assert.Equal(t, stock.ID, *updated.StockID)
	assert.Equal(t, string(models.CategorySport), updated.SubTitle)

	cleared, err := svc.UpdateMoto(ctx, moto.ID, models.MotoChanges{ClearStock: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.StockID)

	_, err = svc.UpdateMoto(ctx, moto.ID, models.MotoChanges{Plate: models.StringPtr("X")})
	assert.True(t, apperrors.IsType(err, apperrors.TypeValidation))

	_, err = svc.UpdateMoto(ctx, "missing", models.MotoChanges{Title: models.StringPtr("C")})
	assert.True(t, apperrors.IsType(err, apperrors.TypeNotFound))
}

func TestListMotosFiltersByStock(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil)
	ctx := context.Background()

	stock, err := svc.CreateStock(ctx, models.StockInput{Name: "Norte", Quantity: models.IntPtr(2)})
	require.NoError(t, err)
	_, err = svc.CreateMoto(ctx, models.MotoInput{Title: "A", SubTitle: "Pop", Plate: "AAA1A11", StockID: &stock.ID})
	require.NoError(t, err)
	_, err = svc.CreateMoto(ctx, models.MotoInput{Title: "B", SubTitle: "Pop", Plate: "BBB1B11"})
	require.NoError(t, err)

	all, err := svc.ListMotos(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inStock, err := svc.ListMotos(ctx, stock.ID)
	require.NoError(t, err)
	require.Len(t, inStock, 1)
	assert.Equal(t, "mottu-pop.png", inStock[0].Image)
}

func TestDeleteStockInUseIsConflict(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, nil)
	ctx := context.Background()

	stock, err := svc.CreateStock(ctx, models.StockInput{Name: "Norte", Quantity: models.IntPtr(2)})
	require.NoError(t, err)
	moto, err := svc.CreateMoto(ctx, models.MotoInput{Title: "A", SubTitle: "Pop", Plate: "AAA1A11", StockID: &stock.ID})
	require.NoError(t, err)

	err = svc.DeleteStock(ctx, stock.ID)
	assert.True(t, apperrors.IsType(err, apperrors.TypeConflict))

	require.NoError(t, svc.DeleteMoto(ctx, moto.ID))
	require.NoError(t, svc.DeleteStock(ctx, stock.ID))
	assert.True(t, apperrors.IsType(svc.DeleteStock(ctx, stock.ID), apperrors.TypeNotFound))
}

func TestStockValidationAndUpdate(t *testing.T) {
	svc := NewService(&memStore{}, nil)
	ctx := context.Background()

	_, err := svc.CreateStock(ctx, models.StockInput{Name: "Sul", Quantity: models.IntPtr(-1)})
	structured, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "validation.quantity.min", structured.Fields["quantity"])

	_, err = svc.CreateStock(ctx, models.StockInput{Name: "Sul"})
	structured, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "validation.quantity.required", structured.Fields["quantity"])

	stock, err := svc.CreateStock(ctx, models.StockInput{Name: "Sul", Quantity: models.IntPtr(0)})
	require.NoError(t, err)

	updated, err := svc.UpdateStock(ctx, stock.ID, models.StockInput{Name: " Sul 2 ", Quantity: models.IntPtr(7), Location: "SP"})
	require.NoError(t, err)
	assert.Equal(t, "Sul 2", updated.Name)
	assert.Equal(t, 7, updated.Quantity)
	assert.Equal(t, "SP", updated.Location)
}
