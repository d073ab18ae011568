// Package notifications keeps the local copy of the user's notification
// panel in step with the backend. Unlike order actions, mutations here are
// not optimistic: the list changes only after the backend confirms.
package notifications

import (
	"context"
	"sync"

	"github.com/parcel-ng/parcel-client/internal/client/models"
	"github.com/parcel-ng/parcel-client/internal/logging"
)

// Backend is the remote surface the controller needs.
type Backend interface {
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

// Controller reconciles the local notification list against the backend.
type Controller struct {
	backend Backend
	log     logging.Logger

	mu       sync.Mutex
	list     []models.Notification
	deleting map[string]bool
}

func NewController(backend Backend, log logging.Logger) *Controller {
	return &Controller{
		backend:  backend,
		log:      log.With("component", "notifications"),
		deleting: make(map[string]bool),
	}
}

// Fetch replaces the local list with the backend's current list.
func (c *Controller) Fetch(ctx context.Context) error {
	docs, err := c.backend.Notifications(ctx)
	if err != nil {
		c.log.Warn(ctx, "notification fetch failed", "error", err)
		return err
	}

	c.mu.Lock()
	c.list = docs
	c.mu.Unlock()
	return nil
}

// MarkAllRead asks the backend first and marks the local items read only
// after it confirms. On failure the local list is untouched.
func (c *Controller) MarkAllRead(ctx context.Context) error {
	if err := c.backend.MarkNotificationsRead(ctx); err != nil {
		c.log.Warn(ctx, "mark-all-read failed", "error", err)
		return err
	}

	c.mu.Lock()
	for i := range c.list {
		c.list[i].IsRead = true
	}
	c.mu.Unlock()
	return nil
}

// Delete removes one notification after backend confirmation. A second
// delete for the same id while the first is outstanding, or for an id no
// longer in the list, is a no-op.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.deleting[id] || c.indexOf(id) < 0 {
		c.mu.Unlock()
		return nil
	}
	c.deleting[id] = true
	c.mu.Unlock()

	err := c.backend.DeleteNotification(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.deleting, id)

	if err != nil {
		c.log.Warn(ctx, "notification delete failed", "id", id, "error", err)
		return err
	}

	if idx := c.indexOf(id); idx >= 0 {
		c.list = append(c.list[:idx], c.list[idx+1:]...)
	}
	return nil
}

func (c *Controller) indexOf(id string) int {
	for i := range c.list {
		if c.list[i].ID == id {
			return i
		}
	}
	return -1
}

// List returns a copy of the cached notifications.
func (c *Controller) List() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Notification, len(c.list))
	copy(out, c.list)
	return out
}

// UnreadCount returns how many cached notifications are unread.
func (c *Controller) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for i := range c.list {
		if !c.list[i].IsRead {
			n++
		}
	}
	return n
}
