package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/server/handlers"
	"github.com/mamadbah2/motofleet/pkg/clients/identity"
)

const maxCachedTokens = 1024

// TokenVerifier resolves an ID token to its account.
type TokenVerifier interface {
	Lookup(ctx context.Context, idToken string) (*identity.LookupResponse, error)
}

type cachedToken struct {
	email   string
	expires time.Time
}

// Auth checks bearer tokens against the identity API and caches positive answers.
type Auth struct {
	verifier TokenVerifier
	ttl      time.Duration
	clock    clockwork.Clock
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[string]cachedToken
}

// NewAuth builds the bearer token middleware.
func NewAuth(verifier TokenVerifier, ttl time.Duration, clock clockwork.Clock, logger *zap.Logger) *Auth {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Auth{
		verifier: verifier,
		ttl:      ttl,
		clock:    clock,
		logger:   logger,
		cache:    map[string]cachedToken{},
	}
}

// Handler rejects requests without a valid bearer token and stores the caller email.
func (a *Auth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			abort(c, apperrors.UnauthorizedError("missing bearer token"))
			return
		}

		email, err := a.verify(c.Request.Context(), token)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(handlers.UserEmailKey, email)
		c.Next()
	}
}

func (a *Auth) verify(ctx context.Context, token string) (string, error) {
	now := a.clock.Now()

	a.mu.Lock()
	entry, hit := a.cache[token]
	a.mu.Unlock()
	if hit && now.Before(entry.expires) {
		return entry.email, nil
	}

	resp, err := a.verifier.Lookup(ctx, token)
	if err != nil {
		var apiErr *identity.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return "", apperrors.UnauthorizedError("invalid token")
		}
		a.logger.Warn("token lookup failed", zap.Error(err))
		return "", apperrors.ExternalError("identity service unavailable", err)
	}
	if resp == nil || len(resp.Users) == 0 {
		return "", apperrors.UnauthorizedError("invalid token")
	}

	email := resp.Users[0].Email
	a.mu.Lock()
	if len(a.cache) >= maxCachedTokens {
		for k, v := range a.cache {
			if !now.Before(v.expires) {
				delete(a.cache, k)
			}
		}
	}
	if len(a.cache) < maxCachedTokens {
		a.cache[token] = cachedToken{email: email, expires: now.Add(a.ttl)}
	}
	a.mu.Unlock()

	return email, nil
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abort(c *gin.Context, err error) {
	structured := apperrors.AsStructuredError(err)
	if structured.Type == apperrors.TypeUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(structured.HTTPStatus(), structured.ToResponse())
}
