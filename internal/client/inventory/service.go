// Package inventory drives the moto inventory on the operator side: API calls with
// localized errors, and the list state the CLI works on.
package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
	"github.com/mamadbah2/motofleet/internal/validation"
	"github.com/mamadbah2/motofleet/pkg/clients/fleetapi"
)

// MotoService is the moto side of the inventory API.
type MotoService interface {
	List(ctx context.Context, token string) ([]models.Moto, error)
	Create(ctx context.Context, token string, in models.MotoInput) (*models.Moto, error)
	Update(ctx context.Context, token, id string, changes models.MotoChanges) (*models.Moto, error)
	Delete(ctx context.Context, token, id string) error
}

type motoService struct {
	api    fleetapi.Client
	tr     *i18n.Translator
	logger *zap.Logger
}

// NewService builds a MotoService on top of the fleet API client.
func NewService(api fleetapi.Client, tr *i18n.Translator, logger *zap.Logger) MotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tr == nil {
		tr = i18n.New("")
	}
	return &motoService{api: api, tr: tr, logger: logger}
}

func (s *motoService) List(ctx context.Context, token string) ([]models.Moto, error) {
	motos, err := s.api.ListMotos(ctx, token)
	if err != nil {
		s.logger.Warn("list motos failed", zap.Error(err))
		return nil, apperrors.ExternalError(s.tr.T("inventory.errors.load"), err)
	}

	out := make([]models.Moto, 0, len(motos))
	for _, m := range motos {
		out = append(out, m.Hydrate())
	}
	return out, nil
}

func (s *motoService) Create(ctx context.Context, token string, in models.MotoInput) (*models.Moto, error) {
	in = in.Normalize()
	if fields := validation.Struct(in); fields != nil {
		return nil, apperrors.FieldsError(s.tr.Fields(fields))
	}

	created, err := s.api.CreateMoto(ctx, token, in)
	if err != nil {
		s.logger.Warn("create moto failed", zap.String("plate", in.Plate), zap.Error(err))
		return nil, apperrors.ExternalError(s.tr.T("moto.errors.generic"), err)
	}
	hydrated := created.Hydrate()
	return &hydrated, nil
}

func (s *motoService) Update(ctx context.Context, token, id string, changes models.MotoChanges) (*models.Moto, error) {
	if fields := validation.Struct(changes.ValidationView()); fields != nil {
		return nil, apperrors.FieldsError(s.tr.Fields(fields))
	}

	updated, err := s.api.UpdateMoto(ctx, token, id, changes)
	if err != nil {
		s.logger.Warn("update moto failed", zap.String("moto_id", id), zap.Error(err))
		return nil, apperrors.ExternalError(s.tr.T("moto.errors.generic"), err)
	}
	hydrated := updated.Hydrate()
	return &hydrated, nil
}

func (s *motoService) Delete(ctx context.Context, token, id string) error {
	if err := s.api.DeleteMoto(ctx, token, id); err != nil {
		s.logger.Warn("delete moto failed", zap.String("moto_id", id), zap.Error(err))
		return apperrors.ExternalError(s.tr.T("inventory.errors.delete"), err)
	}
	return nil
}
