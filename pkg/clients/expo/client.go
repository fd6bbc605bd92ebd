// Package expo sends push notifications through the Expo push service.
package expo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/motofleet/internal/domain/models"
)

// DefaultURL is the Expo push endpoint.
const DefaultURL = "https://exp.host/--/api/v2/push/send"

// Client delivers push messages.
type Client interface {
	Send(ctx context.Context, msg models.PushMessage) []Result
}

// Result is the delivery outcome for one recipient.
type Result struct {
	To       string
	TicketID string
	Err      error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds an Expo push client. An empty url selects DefaultURL.
func NewClient(url string, timeout time.Duration) *APIClient {
	if url == "" {
		url = DefaultURL
	}

	restyClient := resty.New()
	restyClient.
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient, url: url}
}

type pushRequest struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data"`
	Sound *string        `json:"sound"`
}

type pushTicket struct {
	Data struct {
		Status  string `json:"status"`
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"data"`
}

// Send posts one request per recipient, in order. A failed recipient does not stop the rest.
func (c *APIClient) Send(ctx context.Context, msg models.PushMessage) []Result {
	results := make([]Result, 0, len(msg.To))
	for _, to := range msg.To {
		id, err := c.sendOne(ctx, to, msg)
		results = append(results, Result{To: to, TicketID: id, Err: err})
	}
	return results
}

func (c *APIClient) sendOne(ctx context.Context, to string, msg models.PushMessage) (string, error) {
	data := msg.Data
	if data == nil {
		data = map[string]any{}
	}

	ticket := new(pushTicket)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(pushRequest{To: to, Title: msg.Title, Body: msg.Body, Data: data}).
		SetResult(ticket).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("send push to %s: %w", to, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return "", fmt.Errorf("expo push error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}
	if ticket.Data.Status == "error" {
		return "", fmt.Errorf("expo push rejected for %s: %s", to, ticket.Data.Message)
	}
	return ticket.Data.ID, nil
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
