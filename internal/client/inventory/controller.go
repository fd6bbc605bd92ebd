package inventory

import (
	"context"
	"strings"
	"sync"

	"github.com/mamadbah2/motofleet/internal/client/session"
	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
)

// ViewMode selects how motos are listed.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// Controller holds the inventory list of one signed-in operator.
type Controller struct {
	svc   MotoService
	token string

	mu       sync.Mutex
	items    []models.Moto
	loading  bool
	busy     bool
	errMsg   string
	search   string
	category string
	view     ViewMode
}

// NewController returns an empty controller; call Reload to fill it.
func NewController(svc MotoService, token string) *Controller {
	return &Controller{svc: svc, token: token, category: models.CategoryAll, view: ViewGrid}
}

// Reload replaces the list with the API's.
func (c *Controller) Reload(ctx context.Context) error {
	if c.token == "" {
		return session.ErrNotLoggedIn
	}

	c.setLoading(true)
	motos, err := c.svc.List(ctx, c.token)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.errMsg = message(err)
		return err
	}
	c.items = motos
	c.errMsg = ""
	return nil
}

// Add creates a moto and puts it first.
func (c *Controller) Add(ctx context.Context, in models.MotoInput) (*models.Moto, error) {
	if c.token == "" {
		return nil, session.ErrNotLoggedIn
	}

	c.setBusy(true)
	created, err := c.svc.Create(ctx, c.token, in)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.errMsg = message(err)
	if err != nil {
		return nil, err
	}
	c.items = append([]models.Moto{*created}, c.items...)
	return created, nil
}

// Edit updates a moto and replaces it in place.
func (c *Controller) Edit(ctx context.Context, id string, changes models.MotoChanges) (*models.Moto, error) {
	if c.token == "" {
		return nil, session.ErrNotLoggedIn
	}

	c.setBusy(true)
	updated, err := c.svc.Update(ctx, c.token, id, changes)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.errMsg = message(err)
	if err != nil {
		return nil, err
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i] = *updated
		}
	}
	return updated, nil
}

// Remove drops the moto from the list before the API confirms, and puts the list
// back if the delete fails.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if c.token == "" {
		return session.ErrNotLoggedIn
	}

	c.mu.Lock()
	snapshot := c.items
	kept := make([]models.Moto, 0, len(snapshot))
	for _, m := range snapshot {
		if m.ID != id {
			kept = append(kept, m)
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

// Items returns every loaded moto.
func (c *Controller) Items() []models.Moto {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Moto(nil), c.items...)
}

// Filtered applies the category and search filters. Search is case-insensitive over
// title and plate.
func (c *Controller) Filtered() []models.Moto {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(c.search))
	out := make([]models.Moto, 0, len(c.items))
	for _, m := range c.items {
		if c.category != models.CategoryAll && string(models.CanonicalCategory(m.SubTitle)) != c.category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(m.Title), q) && !strings.Contains(strings.ToLower(m.Plate), q) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Categories lists "All" followed by the categories present, in first-seen order.
func (c *Controller) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := []string{models.CategoryAll}
	seen := make(map[models.MotoCategory]struct{})
	for _, m := range c.items {
		cat := models.CanonicalCategory(m.SubTitle)
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, string(cat))
	}
	return out
}

// SetSearch sets the free-text filter.
func (c *Controller) SetSearch(q string) {
	c.mu.Lock()
	c.search = q
	c.mu.Unlock()
}

// SetCategory sets the category filter. Anything other than "All" is canonicalized.
func (c *Controller) SetCategory(category string) {
	if !strings.EqualFold(strings.TrimSpace(category), models.CategoryAll) && strings.TrimSpace(category) != "" {
		category = string(models.CanonicalCategory(category))
	} else {
		category = models.CategoryAll
	}
	c.mu.Lock()
	c.category = category
	c.mu.Unlock()
}

// Category returns the active category filter.
func (c *Controller) Category() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category
}

// SetViewMode switches between grid and list.
func (c *Controller) SetViewMode(mode ViewMode) {
	if mode != ViewList {
		mode = ViewGrid
	}
	c.mu.Lock()
	c.view = mode
	c.mu.Unlock()
}

// ViewMode returns the current view mode.
func (c *Controller) ViewMode() ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
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

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

func (c *Controller) setBusy(v bool) {
	c.mu.Lock()
	c.busy = v
	c.mu.Unlock()
}

// message is the general error shown above the list. Field errors carry none.
func message(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
