// Package fleet manages the moto and stock inventory.
package fleet

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/repository"
	"github.com/mamadbah2/motofleet/internal/validation"
)

// API messages.
const (
	MessageMotoNotFound  = "Moto não encontrada"
	MessageStockNotFound = "Estoque não encontrado"
	MessagePlateTaken    = "Placa já cadastrada"
	MessageStockInUse    = "Estoque possui motos vinculadas"
	keyStockMissing      = "validation.stockId.exists"
)

// Store is the inventory persistence the service needs.
type Store interface {
	ListMotos(ctx context.Context, stockID string) ([]models.Moto, error)
	GetMoto(ctx context.Context, id string) (*models.Moto, error)
	CreateMoto(ctx context.Context, m models.Moto) (*models.Moto, error)
	ReplaceMoto(ctx context.Context, m models.Moto) (*models.Moto, error)
	DeleteMoto(ctx context.Context, id string) error
	CountMotos(ctx context.Context, stockID string) (int, error)

	ListStocks(ctx context.Context) ([]models.Stock, error)
	GetStock(ctx context.Context, id string) (*models.Stock, error)
	CreateStock(ctx context.Context, s models.Stock) (*models.Stock, error)
	ReplaceStock(ctx context.Context, s models.Stock) (*models.Stock, error)
	DeleteStock(ctx context.Context, id string) error
}

// Service implements the inventory operations.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a fleet service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// ListMotos returns the motos, optionally those of one stock.
func (s *Service) ListMotos(ctx context.Context, stockID string) ([]models.Moto, error) {
	motos, err := s.store.ListMotos(ctx, stockID)
	if err != nil {
		return nil, apperrors.InternalError("failed to list motos", err)
	}
	out := make([]models.Moto, 0, len(motos))
	for _, m := range motos {
		out = append(out, m.Hydrate())
	}
	return out, nil
}

// GetMoto returns one moto.
func (s *Service) GetMoto(ctx context.Context, id string) (*models.Moto, error) {
	m, err := s.store.GetMoto(ctx, id)
	if err != nil {
		return nil, storeError(err, MessageMotoNotFound, "failed to load moto")
	}
	hydrated := m.Hydrate()
	return &hydrated, nil
}

// CreateMoto validates and stores a new moto.
func (s *Service) CreateMoto(ctx context.Context, in models.MotoInput) (*models.Moto, error) {
	in = in.Normalize()
	if err := validation.Validate(in); err != nil {
		return nil, err
	}
	if err := s.checkStockRef(ctx, in.StockID); err != nil {
		return nil, err
	}

	created, err := s.store.CreateMoto(ctx, models.Moto{
		Title:    in.Title,
		SubTitle: in.SubTitle,
		Plate:    in.Plate,
		StockID:  in.StockID,
	})
	if err != nil {
		return nil, storeError(err, MessageMotoNotFound, "failed to create moto")
	}

	s.logger.Info("moto created", zap.String("id", created.ID), zap.String("plate", created.Plate))
	hydrated := created.Hydrate()
	return &hydrated, nil
}

// UpdateMoto merges the changes into an existing moto.
func (s *Service) UpdateMoto(ctx context.Context, id string, changes models.MotoChanges) (*models.Moto, error) {
	if err := validation.Validate(changes.ValidationView()); err != nil {
		return nil, err
	}

	current, err := s.store.GetMoto(ctx, id)
	if err != nil {
		return nil, storeError(err, MessageMotoNotFound, "failed to load moto")
	}
	if changes.Empty() {
		hydrated := current.Hydrate()
		return &hydrated, nil
	}

	next := changes.Apply(*current)
	if changes.StockID != nil {
		if err := s.checkStockRef(ctx, next.StockID); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.ReplaceMoto(ctx, next)
	if err != nil {
		return nil, storeError(err, MessageMotoNotFound, "failed to update moto")
	}
	hydrated := updated.Hydrate()
	return &hydrated, nil
}

// DeleteMoto removes a moto.
func (s *Service) DeleteMoto(ctx context.Context, id string) error {
	if err := s.store.DeleteMoto(ctx, id); err != nil {
		return storeError(err, MessageMotoNotFound, "failed to delete moto")
	}
	s.logger.Info("moto deleted", zap.String("id", id))
	return nil
}

// ListStocks returns every stock.
func (s *Service) ListStocks(ctx context.Context) ([]models.Stock, error) {
	stocks, err := s.store.ListStocks(ctx)
	if err != nil {
		return nil, apperrors.InternalError("failed to list stocks", err)
	}
	if stocks == nil {
		stocks = []models.Stock{}
	}
	return stocks, nil
}

// GetStock returns one stock.
func (s *Service) GetStock(ctx context.Context, id string) (*models.Stock, error) {
	stock, err := s.store.GetStock(ctx, id)
	if err != nil {
		return nil, storeError(err, MessageStockNotFound, "failed to load stock")
	}
	return stock, nil
}

// CreateStock validates and stores a new stock.
func (s *Service) CreateStock(ctx context.Context, in models.StockInput) (*models.Stock, error) {
	in = in.Normalize()
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	created, err := s.store.CreateStock(ctx, in.Apply(models.Stock{}))
	if err != nil {
		return nil, storeError(err, MessageStockNotFound, "failed to create stock")
	}
	s.logger.Info("stock created", zap.String("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// UpdateStock replaces the mutable fields of a stock.
func (s *Service) UpdateStock(ctx context.Context, id string, in models.StockInput) (*models.Stock, error) {
	in = in.Normalize()
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	current, err := s.store.GetStock(ctx, id)
	if err != nil {
		return nil, storeError(err, MessageStockNotFound, "failed to load stock")
	}

	updated, err := s.store.ReplaceStock(ctx, in.Apply(*current))
	if err != nil {
		return nil, storeError(err, MessageStockNotFound, "failed to update stock")
	}
	return updated, nil
}

// DeleteStock removes a stock that no moto references.
func (s *Service) DeleteStock(ctx context.Context, id string) error {
	if _, err := s.store.GetStock(ctx, id); err != nil {
		return storeError(err, MessageStockNotFound, "failed to load stock")
	}

	n, err := s.store.CountMotos(ctx, id)
	if err != nil {
		return apperrors.InternalError("failed to count motos", err)
	}
	if n > 0 {
		return apperrors.ConflictError(MessageStockInUse)
	}

	if err := s.store.DeleteStock(ctx, id); err != nil {
		return storeError(err, MessageStockNotFound, "failed to delete stock")
	}
	s.logger.Info("stock deleted", zap.String("id", id))
	return nil
}

func (s *Service) checkStockRef(ctx context.Context, stockID *string) error {
	if stockID == nil {
		return nil
	}
	_, err := s.store.GetStock(ctx, *stockID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.FieldsError(map[string]string{"stockId": keyStockMissing})
	case err != nil:
		return apperrors.InternalError("failed to load stock", err)
	}
	return nil
}

func storeError(err error, notFound, internal string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFoundError(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.ConflictError(MessagePlateTaken)
	default:
		return apperrors.InternalError(internal, err)
	}
}
