// Package stocks drives the storage yards on the operator side.
package stocks

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
	"github.com/mamadbah2/motofleet/internal/validation"
	"github.com/mamadbah2/motofleet/pkg/clients/fleetapi"
)

// StockService is the stock side of the inventory API.
type StockService interface {
	List(ctx context.Context, token string) ([]models.Stock, error)
	Create(ctx context.Context, token string, in models.StockInput) (*models.Stock, error)
	Update(ctx context.Context, token, id string, in models.StockInput) (*models.Stock, error)
	Delete(ctx context.Context, token, id string) error
}

type stockService struct {
	api    fleetapi.Client
	tr     *i18n.Translator
	logger *zap.Logger
}

// NewService builds a StockService on top of the fleet API client.
func NewService(api fleetapi.Client, tr *i18n.Translator, logger *zap.Logger) StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tr == nil {
		tr = i18n.New("")
	}
	return &stockService{api: api, tr: tr, logger: logger}
}

func (s *stockService) List(ctx context.Context, token string) ([]models.Stock, error) {
	stocks, err := s.api.ListStocks(ctx, token)
	if err != nil {
		s.logger.Warn("list stocks failed", zap.Error(err))
		return nil, apperrors.ExternalError(s.tr.T("stock.errors.load"), err)
	}
	if stocks == nil {
		stocks = []models.Stock{}
	}
	return stocks, nil
}

func (s *stockService) Create(ctx context.Context, token string, in models.StockInput) (*models.Stock, error) {
	in = in.Normalize()
	if fields := validation.Struct(in); fields != nil {
		return nil, apperrors.FieldsError(s.tr.Fields(fields))
	}

	created, err := s.api.CreateStock(ctx, token, in)
	if err != nil {
		s.logger.Warn("create stock failed", zap.String("name", in.Name), zap.Error(err))
		return nil, apperrors.ExternalError(s.tr.T("stock.errors.create"), err)
	}
	return created, nil
}

func (s *stockService) Update(ctx context.Context, token, id string, in models.StockInput) (*models.Stock, error) {
	in = in.Normalize()
	if fields := validation.Struct(in); fields != nil {
		return nil, apperrors.FieldsError(s.tr.Fields(fields))
	}

	updated, err := s.api.UpdateStock(ctx, token, id, in)
	if err != nil {
		s.logger.Warn("update stock failed", zap.String("stock_id", id), zap.Error(err))
		return nil, apperrors.ExternalError(s.tr.T("stock.errors.update"), err)
	}
	return updated, nil
}

func (s *stockService) Delete(ctx context.Context, token, id string) error {
	if err := s.api.DeleteStock(ctx, token, id); err != nil {
		s.logger.Warn("delete stock failed", zap.String("stock_id", id), zap.Error(err))
		return apperrors.ExternalError(s.tr.T("stock.errors.delete"), err)
	}
	return nil
}
