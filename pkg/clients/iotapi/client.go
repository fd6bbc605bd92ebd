// Package iotapi is the HTTP client of the IoT telemetry API.
package iotapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
)

// Client exposes the dashboard operations of the IoT API.
type Client interface {
	Health(ctx context.Context) error
	Sensors(ctx context.Context, limit int) ([]models.MotoStatus, error)
	LatestTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error)
	LatestEvents(ctx context.Context, limit int) ([]models.Event, error)
	AllStatus(ctx context.Context) ([]models.MotoStatus, error)
	Status(ctx context.Context, motoID string) (*models.MotoStatus, error)
	SendCommand(ctx context.Context, motoID string, req models.CommandRequest) (*models.CommandResult, error)
	SendAlert(ctx context.Context, motoID, message string) (*models.AlertResult, error)
	RegisterDevice(ctx context.Context, token string, device models.Device) error
}

// ErrMotoNotFound is returned when the API has no status for the moto.
var ErrMotoNotFound = errors.New("moto not found")

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an IoT API client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

// StatusError is a non-2xx answer of the IoT API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("iot api error: status=%d, message=%s", e.Status, e.Message)
}

func (c *APIClient) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return nil
}

func (c *APIClient) Sensors(ctx context.Context, limit int) ([]models.MotoStatus, error) {
	var out []models.MotoStatus
	if err := c.do(ctx, http.MethodGet, withLimit("/api/sensors", limit), nil, &out); err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}
	return out, nil
}

func (c *APIClient) LatestTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error) {
	var out []models.Telemetry
	if err := c.do(ctx, http.MethodGet, withLimit("/api/telemetry/latest", limit), nil, &out); err != nil {
		return nil, fmt.Errorf("latest telemetry: %w", err)
	}
	return out, nil
}

func (c *APIClient) LatestEvents(ctx context.Context, limit int) ([]models.Event, error) {
	var out []models.Event
	if err := c.do(ctx, http.MethodGet, withLimit("/api/events/latest", limit), nil, &out); err != nil {
		return nil, fmt.Errorf("latest events: %w", err)
	}
	return out, nil
}

func (c *APIClient) AllStatus(ctx context.Context) ([]models.MotoStatus, error) {
	var out []models.MotoStatus
	if err := c.do(ctx, http.MethodGet, "/api/status/all", nil, &out); err != nil {
		return nil, fmt.Errorf("list status: %w", err)
	}
	return out, nil
}

func (c *APIClient) Status(ctx context.Context, motoID string) (*models.MotoStatus, error) {
	out := new(models.MotoStatus)
	if err := c.do(ctx, http.MethodGet, "/api/status/"+url.PathEscape(motoID), nil, out); err != nil {
		return nil, fmt.Errorf("status %s: %w", motoID, err)
	}
	return out, nil
}

func (c *APIClient) SendCommand(ctx context.Context, motoID string, req models.CommandRequest) (*models.CommandResult, error) {
	out := new(models.CommandResult)
	if err := c.do(ctx, http.MethodPost, "/api/motos/"+url.PathEscape(motoID)+"/command", req, out); err != nil {
		return nil, fmt.Errorf("send command to %s: %w", motoID, err)
	}
	return out, nil
}

func (c *APIClient) SendAlert(ctx context.Context, motoID, message string) (*models.AlertResult, error) {
	out := new(models.AlertResult)
	body := models.AlertRequest{Message: message}
	if err := c.do(ctx, http.MethodPost, "/api/motos/"+url.PathEscape(motoID)+"/alert", body, out); err != nil {
		return nil, fmt.Errorf("send alert to %s: %w", motoID, err)
	}
	return out, nil
}

func (c *APIClient) RegisterDevice(ctx context.Context, token string, device models.Device) error {
	if err := c.doAs(ctx, token, http.MethodPost, "/api/devices", device, nil); err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	return nil
}

func withLimit(path string, limit int) string {
	if limit <= 0 {
		return path
	}
	return path + "?limit=" + strconv.Itoa(limit)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, result any) error {
	return c.doAs(ctx, "", method, path, body, result)
}

// doAs sends the request with token as bearer when it is set.
func (c *APIClient) doAs(ctx context.Context, token, method, path string, body, result any) error {
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

	switch {
	case resp.StatusCode() == http.StatusNotFound && strings.HasPrefix(path, "/api/"):
		return fmt.Errorf("%w: %s", ErrMotoNotFound, apiErr.Error)
	case resp.StatusCode() >= http.StatusBadRequest:
		return &StatusError{Status: resp.StatusCode(), Message: apiErr.Error}
	}
	return nil
}
