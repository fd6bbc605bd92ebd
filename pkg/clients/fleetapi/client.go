// Package fleetapi is the HTTP client of the fleet inventory API (/motos and /stocks).
package fleetapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
)

// Client exposes the CRUD operations of the inventory API.
type Client interface {
	ListMotos(ctx context.Context, token string) ([]models.Moto, error)
	CreateMoto(ctx context.Context, token string, in models.MotoInput) (*models.Moto, error)
	UpdateMoto(ctx context.Context, token, id string, changes models.MotoChanges) (*models.Moto, error)
	DeleteMoto(ctx context.Context, token, id string) error

	ListStocks(ctx context.Context, token string) ([]models.Stock, error)
	CreateStock(ctx context.Context, token string, in models.StockInput) (*models.Stock, error)
	UpdateStock(ctx context.Context, token, id string, in models.StockInput) (*models.Stock, error)
	DeleteStock(ctx context.Context, token, id string) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a fleet API client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

// StatusError is a non-2xx answer of the fleet API.
type StatusError struct {
	Status int
	Body   apperrors.Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fleet api error: status=%d, message=%s", e.Status, e.Body.Error)
}

// IsStatus reports whether err is a StatusError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == status
}

func (c *APIClient) ListMotos(ctx context.Context, token string) ([]models.Moto, error) {
	var motos []models.Moto
	if err := c.do(ctx, token, http.MethodGet, "/motos", nil, &motos); err != nil {
		return nil, fmt.Errorf("list motos: %w", err)
	}
	return motos, nil
}

func (c *APIClient) CreateMoto(ctx context.Context, token string, in models.MotoInput) (*models.Moto, error) {
	moto := new(models.Moto)
	if err := c.do(ctx, token, http.MethodPost, "/motos", in, moto); err != nil {
		return nil, fmt.Errorf("create moto: %w", err)
	}
	return moto, nil
}

func (c *APIClient) UpdateMoto(ctx context.Context, token, id string, changes models.MotoChanges) (*models.Moto, error) {
	moto := new(models.Moto)
	if err := c.do(ctx, token, http.MethodPut, "/motos/"+id, changes, moto); err != nil {
		return nil, fmt.Errorf("update moto %s: %w", id, err)
	}
	return moto, nil
}

func (c *APIClient) DeleteMoto(ctx context.Context, token, id string) error {
	if err := c.do(ctx, token, http.MethodDelete, "/motos/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete moto %s: %w", id, err)
	}
	return nil
}

func (c *APIClient) ListStocks(ctx context.Context, token string) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := c.do(ctx, token, http.MethodGet, "/stocks", nil, &stocks); err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	return stocks, nil
}

func (c *APIClient) CreateStock(ctx context.Context, token string, in models.StockInput) (*models.Stock, error) {
	stock := new(models.Stock)
	if err := c.do(ctx, token, http.MethodPost, "/stocks", in, stock); err != nil {
		return nil, fmt.Errorf("create stock: %w", err)
	}
	return stock, nil
}

func (c *APIClient) UpdateStock(ctx context.Context, token, id string, in models.StockInput) (*models.Stock, error) {
	stock := new(models.Stock)
	if err := c.do(ctx, token, http.MethodPut, "/stocks/"+id, in, stock); err != nil {
		return nil, fmt.Errorf("update stock %s: %w", id, err)
	}
	return stock, nil
}

func (c *APIClient) DeleteStock(ctx context.Context, token, id string) error {
	if err := c.do(ctx, token, http.MethodDelete, "/stocks/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete stock %s: %w", id, err)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, token, method, path string, body, result any) error {
	apiErr := new(apperrors.Response)

	req := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr)
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return &StatusError{Status: resp.StatusCode(), Body: *apiErr}
	}
	return nil
}
