// Package orders maintains the rider's read-through order cache: paginated
// fetches of the wallet/orders dashboard, optimistic accept/complete
// transitions, and reconciliation against the next authoritative fetch.
package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/parcel-ng/parcel-client/internal/client/models"
	"github.com/parcel-ng/parcel-client/internal/common"
	"github.com/parcel-ng/parcel-client/internal/logging"
	"github.com/parcel-ng/parcel-client/internal/validate"
)

// ErrFetchInFlight is returned when a page fetch is already outstanding.
var ErrFetchInFlight = errors.New("order fetch already in progress")

// Backend is the remote surface the controller needs.
type Backend interface {
	WalletPage(ctx context.Context, page, limit int) (*models.WalletPage, error)
	AcceptOrder(ctx context.Context, orderID string) error
	CompleteOrder(ctx context.Context, orderID, pin string) error
}

// pendingOp tags an optimistic local transition awaiting server confirmation.
// The next authoritative fetch clears it, replacing the optimistic copy with
// the server's version whichever way the backend decided.
type pendingOp struct {
	Action string // "accept" | "complete"
	At     time.Time
}

// Controller caches one rider's order list alongside the wallet snapshot
// and the dashboard counters. Methods are safe for concurrent use, but
// responses apply last-writer-wins: only the newest completed fetch
// replaces the cache.
type Controller struct {
	backend Backend
	log     logging.Logger

	mu         sync.Mutex
	orders     []models.Order
	wallet     models.Wallet
	completed  int
	notDeliv   int
	hasMore    bool
	inFlight   bool
	issueSeq   uint64
	appliedSeq uint64
	pendingOps map[string]pendingOp

	// now is a test seam.
	now func() time.Time
}

func NewController(backend Backend, log logging.Logger) *Controller {
	return &Controller{
		backend:    backend,
		log:        log.With("component", "orders"),
		hasMore:    true,
		pendingOps: make(map[string]pendingOp),
		now:        time.Now,
	}
}

// FetchPage retrieves one page, most recent first. Once the backend reports
// hasMore=false, further calls return immediately without a network request
// until Reset is called. Only one fetch may be outstanding at a time.
func (c *Controller) FetchPage(ctx context.Context, page, limit int) error {
	c.mu.Lock()
	if !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrFetchInFlight
	}
	c.inFlight = true
	c.issueSeq++
	seq := c.issueSeq
	c.mu.Unlock()

	result, err := c.backend.WalletPage(ctx, page, limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if err != nil {
		c.log.Warn(ctx, "order page fetch failed", "page", page, "error", err)
		return err
	}
	if seq < c.appliedSeq {
		// A newer fetch already landed; this response is stale.
		c.log.Debug(ctx, "discarding stale order page", "seq", seq)
		return nil
	}
	c.appliedSeq = seq

	c.orders = result.Orders
	c.wallet = result.Wallet
	c.completed = result.CompletedOrders
	c.notDeliv = result.NotDeliveredOrders
	c.hasMore = result.HasMore

	// The server's copies are authoritative; optimistic markers for orders
	// it returned are settled either way.
	for _, o := range result.Orders {
		delete(c.pendingOps, o.ID)
	}

	c.log.Debug(ctx, "order page applied", "page", page, "orders", len(result.Orders), "hasMore", result.HasMore)
	return nil
}

// AcceptOrder optimistically moves a pending order to accepted with a
// client-recorded acceptance time, then informs the backend. The local copy
// stays until the next authoritative fetch reconciles it. Orders not in
// pending status are rejected locally.
func (c *Controller) AcceptOrder(ctx context.Context, orderID string) error {
	c.mu.Lock()
	idx := c.indexOf(orderID)
	if idx < 0 {
		c.mu.Unlock()
		return common.ErrNotFound
	}
	if c.orders[idx].Status != models.OrderPending {
		c.mu.Unlock()
		return common.ErrInvalidTransition
	}

	acceptedAt := c.now()
	c.orders[idx].Status = models.OrderAccepted
	c.orders[idx].AcceptedAt = &acceptedAt
	c.pendingOps[orderID] = pendingOp{Action: "accept", At: acceptedAt}
	c.mu.Unlock()

	if err := c.backend.AcceptOrder(ctx, orderID); err != nil {
		// The optimistic copy stays; the marker keeps it flagged until the
		// next fetch replaces it with the server's verdict.
		c.log.Warn(ctx, "accept not confirmed", "order", orderID, "error", err)
		return err
	}

	c.mu.Lock()
	delete(c.pendingOps, orderID)
	c.mu.Unlock()
	return nil
}

// CompleteOrder optimistically delivers an accepted order once the 4-digit
// pin passes the local check, adjusting the dashboard counters, then
// informs the backend.
func (c *Controller) CompleteOrder(ctx context.Context, orderID, pin string) error {
	if !validate.PIN(pin) {
		return common.ErrInvalidPINFormat
	}

	c.mu.Lock()
	idx := c.indexOf(orderID)
	if idx < 0 {
		c.mu.Unlock()
		return common.ErrNotFound
	}
	if c.orders[idx].Status != models.OrderAccepted {
		c.mu.Unlock()
		return common.ErrInvalidTransition
	}

	deliveredAt := c.now()
	c.orders[idx].Status = models.OrderDelivered
	c.orders[idx].DeliveredAt = &deliveredAt
	c.completed++
	if c.notDeliv > 0 {
		c.notDeliv--
	}
	c.pendingOps[orderID] = pendingOp{Action: "complete", At: deliveredAt}
	c.mu.Unlock()

	if err := c.backend.CompleteOrder(ctx, orderID, pin); err != nil {
		c.log.Warn(ctx, "completion not confirmed", "order", orderID, "error", err)
		return err
	}

	c.mu.Lock()
	delete(c.pendingOps, orderID)
	c.mu.Unlock()
	return nil
}

// Overdue reports whether an accepted order has outrun its estimated
// delivery window. Display-only; it never changes order state.
func Overdue(o models.Order, now time.Time) bool {
	if o.Status != models.OrderAccepted || o.AcceptedAt == nil || o.EstimatedDeliveryHours <= 0 {
		return false
	}
	elapsed := now.Sub(*o.AcceptedAt).Hours()
	return elapsed > o.EstimatedDeliveryHours
}

// Reset clears pagination state so the next FetchPage starts over, e.g.
// after pull-to-refresh.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasMore = true
}

func (c *Controller) indexOf(orderID string) int {
	for i := range c.orders {
		if c.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

// Orders returns a copy of the cached list.
func (c *Controller) Orders() []models.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Order, len(c.orders))
	copy(out, c.orders)
	return out
}

// Unconfirmed reports whether an order has an optimistic transition still
// awaiting server confirmation.
func (c *Controller) Unconfirmed(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pendingOps[orderID]
	return ok
}

// Wallet returns the latest wallet snapshot.
func (c *Controller) Wallet() models.Wallet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wallet
}

// Counters returns the completed and not-delivered order counts shown on
// the dashboard, including optimistic adjustments.
func (c *Controller) Counters() (completed, notDelivered int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed, c.notDeliv
}

// HasMore reports whether further pages may be fetched.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}
