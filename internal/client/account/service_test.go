package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
	"github.com/mamadbah2/motofleet/pkg/clients/identity"
)

type stubIdentity struct {
	auth      *identity.AuthResponse
	lookup    *identity.LookupResponse
	err       error
	calls     int
	lastName  string
	lastEmail string
}

func (s *stubIdentity) SignIn(_ context.Context, email, _ string) (*identity.AuthResponse, error) {
	s.calls++
	s.lastEmail = email
	return s.auth, s.err
}

func (s *stubIdentity) SignUp(ctx context.Context, email, password string) (*identity.AuthResponse, error) {
	return s.SignIn(ctx, email, password)
}

func (s *stubIdentity) Lookup(context.Context, string) (*identity.LookupResponse, error) {
	s.calls++
	return s.lookup, s.err
}

func (s *stubIdentity) UpdateProfile(_ context.Context, _, name string) (*identity.UpdateResponse, error) {
	s.calls++
	s.lastName = name
	return &identity.UpdateResponse{DisplayName: name}, s.err
}

func TestLoginReturnsTokenAndEmail(t *testing.T) {
	stub := &stubIdentity{auth: &identity.AuthResponse{IDToken: "id-token", Email: "ana@mottu.com"}}
	svc := NewService(stub, i18n.New("pt"), nil)

	login, err := svc.Login(context.Background(), models.Credentials{Email: " ana@mottu.com ", Password: "12345"})
	require.NoError(t, err)
	assert.Equal(t, &Login{Token: "id-token", Email: "ana@mottu.com"}, login)
	assert.Equal(t, "ana@mottu.com", stub.lastEmail)
}

func TestLoginValidatesBeforeCalling(t *testing.T) {
	stub := &stubIdentity{}
	svc := NewService(stub, i18n.New("pt"), nil)

	_, err := svc.Login(context.Background(), models.Credentials{Email: "not-an-email", Password: "123"})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.TypeValidation, appErr.Type)
	assert.Equal(t, "E-mail inválido", appErr.Fields["email"])
	assert.Equal(t, "Mínimo de 5 caracteres", appErr.Fields["senha"])
	assert.Zero(t, stub.calls)
}

func TestAuthErrorCodes(t *testing.T) {
	tr := i18n.New("pt")
	cases := []struct {
		code string
		key  string
		typ  apperrors.ErrorType
	}{
		{identity.CodeEmailExists, "auth.errors.emailExists", apperrors.TypeConflict},
		{identity.CodeInvalidCredentials, "auth.errors.invalidCredentials", apperrors.TypeUnauthorized},
		{identity.CodeInvalidPassword, "auth.errors.invalidCredentials", apperrors.TypeUnauthorized},
		{identity.CodeEmailNotFound, "auth.errors.invalidCredentials", apperrors.TypeUnauthorized},
		{identity.CodeTooManyAttempts + " : Access disabled", "auth.errors.tooManyAttempts", apperrors.TypeRateLimited},
		{"WEAK_PASSWORD", "auth.errors.generic", apperrors.TypeExternal},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			stub := &stubIdentity{err: &identity.APIError{Status: 400, Message: tc.code}}
			svc := NewService(stub, tr, nil)

			_, err := svc.Register(context.Background(), models.Credentials{Email: "ana@mottu.com", Password: "12345"})
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tc.typ, appErr.Type)
			assert.Equal(t, tr.T(tc.key), appErr.Message)
		})
	}

	t.Run("transport failure", func(t *testing.T) {
		svc := NewService(&stubIdentity{err: errors.New("dial tcp: refused")}, tr, nil)
		_, err := svc.Login(context.Background(), models.Credentials{Email: "ana@mottu.com", Password: "12345"})
		assert.True(t, apperrors.IsType(err, apperrors.TypeExternal))
	})
}

func TestGetProfile(t *testing.T) {
	tr := i18n.New("pt")

	t.Run("first user", func(t *testing.T) {
		stub := &stubIdentity{lookup: &identity.LookupResponse{Users: []identity.User{
			{Email: "ana@mottu.com", DisplayName: "Ana"},
			{Email: "other@mottu.com"},
		}}}
		profile, err := NewService(stub, tr, nil).GetProfile(context.Background(), "token")
		require.NoError(t, err)
		assert.Equal(t, &models.Profile{Email: "ana@mottu.com", Name: "Ana"}, profile)
	})

	t.Run("no users", func(t *testing.T) {
		stub := &stubIdentity{lookup: &identity.LookupResponse{}}
		_, err := NewService(stub, tr, nil).GetProfile(context.Background(), "token")
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.TypeNotFound, appErr.Type)
		assert.Equal(t, tr.T("user.errors.notFound"), appErr.Message)
	})

	t.Run("lookup failure", func(t *testing.T) {
		stub := &stubIdentity{err: errors.New("boom")}
		_, err := NewService(stub, tr, nil).GetProfile(context.Background(), "token")
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, tr.T("user.errors.load"), appErr.Message)
	})
}

func TestUpdateProfile(t *testing.T) {
	tr := i18n.New("pt")

	stub := &stubIdentity{}
	require.NoError(t, NewService(stub, tr, nil).UpdateProfile(context.Background(), "token", "  Ana  "))
	assert.Equal(t, "Ana", stub.lastName)

	stub = &stubIdentity{}
	err := NewService(stub, tr, nil).UpdateProfile(context.Background(), "token", " A ")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.TypeValidation, appErr.Type)
	assert.Equal(t, "Mínimo de 2 caracteres", appErr.Message)
	assert.Zero(t, stub.calls)

	stub = &stubIdentity{err: errors.New("boom")}
	err = NewService(stub, tr, nil).UpdateProfile(context.Background(), "token", "Ana")
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, tr.T("user.errors.update"), appErr.Message)
}
