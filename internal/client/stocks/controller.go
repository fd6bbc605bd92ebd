package stocks

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/client/session"
	"github.com/mamadbah2/motofleet/internal/config"
	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
	"github.com/mamadbah2/motofleet/internal/i18n"
	"github.com/mamadbah2/motofleet/pkg/clients/expo"
)

// Notifier announces a new stock on the operator's device.
type Notifier struct {
	push   expo.Client
	cfg    config.PushConfig
	tr     *i18n.Translator
	logger *zap.Logger
}

// NewNotifier returns a notifier, or nil when push is off or no device token is set.
func NewNotifier(push expo.Client, cfg config.PushConfig, tr *i18n.Translator, logger *zap.Logger) *Notifier {
	if push == nil || !cfg.Enabled() || strings.TrimSpace(cfg.DeviceToken) == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tr == nil {
		tr = i18n.New("")
	}
	return &Notifier{push: push, cfg: cfg, tr: tr, logger: logger}
}

// NewStock sends the push.newStock notification. Failures are logged only.
func (n *Notifier) NewStock(ctx context.Context, stock models.Stock) {
	if n == nil {
		return
	}
	results := n.push.Send(ctx, models.PushMessage{
		To:    []string{n.cfg.DeviceToken},
		Title: n.tr.T("push.newStock.title"),
		Body:  n.tr.T("push.newStock.body", stock.Name),
		Data:  map[string]any{"screen": "Stocks", "params": map[string]any{}},
	})
	for _, r := range expo.Failed(results) {
		n.logger.Warn("new stock push failed", zap.String("stock_id", stock.ID), zap.Error(r.Err))
	}
}

// Controller holds the stock list of one signed-in operator.
type Controller struct {
	svc      StockService
	notifier *Notifier
	token    string

	mu      sync.Mutex
	items   []models.Stock
	loading bool
	busy    bool
	errMsg  string
	search  string
}

// NewController returns an empty controller. notifier may be nil.
func NewController(svc StockService, notifier *Notifier, token string) *Controller {
	return &Controller{svc: svc, notifier: notifier, token: token}
}

// Reload replaces the list with the API's.
func (c *Controller) Reload(ctx context.Context) error {
	if c.token == "" {
		return session.ErrNotLoggedIn
	}

	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	stocks, err := c.svc.List(ctx, c.token)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.errMsg = message(err)
		return err
	}
	c.items = stocks
	c.errMsg = ""
	return nil
}

// Add creates a stock, puts it first and announces it.
func (c *Controller) Add(ctx context.Context, in models.StockInput) (*models.Stock, error) {
	if c.token == "" {
		return nil, session.ErrNotLoggedIn
	}

	c.setBusy(true)
	created, err := c.svc.Create(ctx, c.token, in)

	c.mu.Lock()
	c.busy = false
	c.errMsg = message(err)
	if err == nil {
		c.items = append([]models.Stock{*created}, c.items...)
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	c.notifier.NewStock(ctx, *created)
	return created, nil
}

// Edit replaces a stock's fields, merging the API answer over the loaded copy.
func (c *Controller) Edit(ctx context.Context, id string, in models.StockInput) (*models.Stock, error) {
	if c.token == "" {
		return nil, session.ErrNotLoggedIn
	}

	c.setBusy(true)
	updated, err := c.svc.Update(ctx, c.token, id, in)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.errMsg = message(err)
	if err != nil {
		return nil, err
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i] = merge(c.items[i], *updated)
		}
	}
	return updated, nil
}

// Remove drops the stock before the API confirms and restores the list on failure.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if c.token == "" {
		return session.ErrNotLoggedIn
	}

	c.mu.Lock()
	snapshot := c.items
	kept := make([]models.Stock, 0, len(snapshot))
	for _, s := range snapshot {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.items = kept
	c.mu.Unlock()

	if err := c.svc.Delete(ctx, c.token, id); err != nil {
		c.mu.Lock()
		c.items = snapshot
		c.errMsg = message(err)
		c.mu.Unlock()
		return err
	}
	return nil
}

// Items returns every loaded stock.
func (c *Controller) Items() []models.Stock {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Stock(nil), c.items...)
}

// Filtered applies the search, case-insensitive over name and location.
func (c *Controller) Filtered() []models.Stock {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(c.search))
	out := make([]models.Stock, 0, len(c.items))
	for _, s := range c.items {
		if q == "" || strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Location), q) {
			out = append(out, s)
		}
	}
	return out
}

// SetSearch sets the free-text filter.
func (c *Controller) SetSearch(q string) {
	c.mu.Lock()
	c.search = q
	c.mu.Unlock()
}

// Loading reports whether a reload is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Busy reports whether a create or update is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Err returns the last general error message, or "".
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Controller) setBusy(v bool) {
	c.mu.Lock()
	c.busy = v
	c.mu.Unlock()
}

func merge(old, updated models.Stock) models.Stock {
	out := updated
	if out.ID == "" {
		out.ID = old.ID
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = old.CreatedAt
	}
	return out
}

func message(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
