// Package account implements sign-in, sign-up and profile management for operators.
package account

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
	"github.com/mamadbah2/motofleet/internal/validation"
	"github.com/mamadbah2/motofleet/pkg/clients/identity"
)

// Login is the outcome of a successful sign-in or sign-up.
type Login struct {
	Token string
	Email string
}

// Service wraps the identity API with input validation and localized errors.
type Service struct {
	identity identity.Client
	tr       *i18n.Translator
	logger   *zap.Logger
}

// NewService builds an account service.
func NewService(client identity.Client, tr *i18n.Translator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tr == nil {
		tr = i18n.New("")
	}
	return &Service{identity: client, tr: tr, logger: logger}
}

// Login signs an operator in.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (*Login, error) {
	return s.authenticate(ctx, creds, s.identity.SignIn)
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, creds models.Credentials) (*Login, error) {
	return s.authenticate(ctx, creds, s.identity.SignUp)
}

func (s *Service) authenticate(ctx context.Context, creds models.Credentials, call func(context.Context, string, string) (*identity.AuthResponse, error)) (*Login, error) {
	creds = creds.Normalize()
	if fields := validation.Struct(creds); fields != nil {
		return nil, apperrors.FieldsError(s.tr.Fields(fields))
	}

	resp, err := call(ctx, creds.Email, creds.Password)
	if err != nil {
		s.logger.Debug("identity call failed", zap.String("email", creds.Email), zap.Error(err))
		return nil, s.authError(err)
	}

	email := resp.Email
	if email == "" {
		email = creds.Email
	}
	return &Login{Token: resp.IDToken, Email: email}, nil
}

func (s *Service) authError(err error) error {
	switch identity.ErrorCode(err) {
	case identity.CodeEmailExists:
		return &apperrors.Error{Type: apperrors.TypeConflict, Message: s.tr.T("auth.errors.emailExists"), Cause: err}
	case identity.CodeInvalidCredentials, identity.CodeInvalidPassword, identity.CodeEmailNotFound:
		return &apperrors.Error{Type: apperrors.TypeUnauthorized, Message: s.tr.T("auth.errors.invalidCredentials"), Cause: err}
	case identity.CodeTooManyAttempts:
		return &apperrors.Error{Type: apperrors.TypeRateLimited, Message: s.tr.T("auth.errors.tooManyAttempts"), Cause: err}
	default:
		return apperrors.ExternalError(s.tr.T("auth.errors.generic"), err)
	}
}

// GetProfile returns the profile of the signed-in operator.
func (s *Service) GetProfile(ctx context.Context, token string) (*models.Profile, error) {
	resp, err := s.identity.Lookup(ctx, token)
	if err != nil {
		return nil, apperrors.ExternalError(s.tr.T("user.errors.load"), err)
	}
	if resp == nil || len(resp.Users) == 0 {
		return nil, apperrors.NotFoundError(s.tr.T("user.errors.notFound"))
	}

	u := resp.Users[0]
	return &models.Profile{Email: u.Email, Name: u.DisplayName}, nil
}

// UpdateProfile changes the display name.
func (s *Service) UpdateProfile(ctx context.Context, token, name string) error {
	profile := models.Profile{Name: name}.Normalize()
	if fields := validation.Struct(profile); fields != nil {
		msg := s.tr.T("user.errors.invalidName")
		if key, ok := fields["nome"]; ok {
			msg = s.tr.T(key)
		}
		return apperrors.ValidationError(msg).WithField("nome", msg)
	}

	if _, err := s.identity.UpdateProfile(ctx, token, profile.Name); err != nil {
		return apperrors.ExternalError(s.tr.T("user.errors.update"), err)
	}
	return nil
}
