package orders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parcel-ng/parcel-client/internal/client/models"
	"github.com/parcel-ng/parcel-client/internal/common"
	"github.com/parcel-ng/parcel-client/internal/logging"
)

// ---- fake backend ----

type fakeBackend struct {
	mu sync.Mutex

	PageRet *models.WalletPage
	PageErr error
	// PageFn, when set, overrides PageRet/PageErr.
	PageFn func(page, limit int) (*models.WalletPage, error)

	AcceptErr   error
	CompleteErr error

	PageCalls     int
	AcceptCalls   int
	CompleteCalls int

	LastPin string
}

func (b *fakeBackend) WalletPage(ctx context.Context, page, limit int) (*models.WalletPage, error) {
	b.mu.Lock()
	b.PageCalls++
	fn := b.PageFn
	ret, err := b.PageRet, b.PageErr
	b.mu.Unlock()
	if fn != nil {
		return fn(page, limit)
	}
	return ret, err
}

func (b *fakeBackend) AcceptOrder(ctx context.Context, orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.AcceptCalls++
	return b.AcceptErr
}

func (b *fakeBackend) CompleteOrder(ctx context.Context, orderID, pin string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CompleteCalls++
	b.LastPin = pin
	return b.CompleteErr
}

func newController(t *testing.T, b *fakeBackend) *Controller {
	t.Helper()
	return NewController(b, logging.NewDefault(io.Discard, slog.LevelDebug))
}

func page(orders []models.Order, hasMore bool) *models.WalletPage {
	return &models.WalletPage{
		Wallet:             models.Wallet{Balance: 100},
		Orders:             orders,
		HasMore:            hasMore,
		CompletedOrders:    3,
		NotDeliveredOrders: 2,
	}
}

func pendingOrder(id string) models.Order {
	return models.Order{ID: id, OrderID: "ORD-" + id, Status: models.OrderPending}
}

// ---- tests ----

func TestFetchPage_AppliesSnapshot(t *testing.T) {
	b := &fakeBackend{PageRet: page([]models.Order{pendingOrder("o1")}, true)}
	c := newController(t, b)

	require.NoError(t, c.FetchPage(context.Background(), 1, 10))

	require.Len(t, c.Orders(), 1)
	require.Equal(t, 100.0, c.Wallet().Balance)
	completed, notDelivered := c.Counters()
	require.Equal(t, 3, completed)
	require.Equal(t, 2, notDelivered)
	require.True(t, c.HasMore())
}

func TestFetchPage_HasMoreFalse_StopsIssuingRequests(t *testing.T) {
	b := &fakeBackend{PageRet: page(nil, false)}
	c := newController(t, b)
	ctx := context.Background()

	require.NoError(t, c.FetchPage(ctx, 1, 10))
	require.NoError(t, c.FetchPage(ctx, 2, 10))
	require.NoError(t, c.FetchPage(ctx, 3, 10))

	require.Equal(t, 1, b.PageCalls)
	require.False(t, c.HasMore())

	c.Reset()
	require.NoError(t, c.FetchPage(ctx, 1, 10))
	require.Equal(t, 2, b.PageCalls)
}

func TestFetchPage_InFlightGuard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	b := &fakeBackend{}
	b.PageFn = func(pageNum, limit int) (*models.WalletPage, error) {
		close(started)
		<-release
		return page(nil, true), nil
	}
	c := newController(t, b)

	done := make(chan error, 1)
	go func() { done <- c.FetchPage(context.Background(), 1, 10) }()

	<-started
	err := c.FetchPage(context.Background(), 1, 10)
	require.ErrorIs(t, err, ErrFetchInFlight)

	close(release)
	require.NoError(t, <-done)
}

func TestFetchPage_Error_KeepsPriorState(t *testing.T) {
	b := &fakeBackend{PageRet: page([]models.Order{pendingOrder("o1")}, true)}
	c := newController(t, b)
	ctx := context.Background()

	require.NoError(t, c.FetchPage(ctx, 1, 10))

	b.mu.Lock()
	b.PageErr = errors.New("boom")
	b.PageRet = nil
	b.mu.Unlock()

	require.Error(t, c.FetchPage(ctx, 2, 10))
	require.Len(t, c.Orders(), 1)
	require.True(t, c.HasMore())
}

func TestAcceptOrder_OnlyFromPending(t *testing.T) {
	b := &fakeBackend{PageRet: page([]models.Order{
		pendingOrder("o1"),
		{ID: "o2", Status: models.OrderInTransit},
	}, true)}
	c := newController(t, b)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx, 1, 10))

	require.ErrorIs(t, c.AcceptOrder(ctx, "o2"), common.ErrInvalidTransition)
	require.ErrorIs(t, c.AcceptOrder(ctx, "missing"), common.ErrNotFound)
	require.Zero(t, b.AcceptCalls)

	require.NoError(t, c.AcceptOrder(ctx, "o1"))
	require.Equal(t, 1, b.AcceptCalls)

	got := c.Orders()[0]
	require.Equal(t, models.OrderAccepted, got.Status)
	require.NotNil(t, got.AcceptedAt)
	require.False(t, c.Unconfirmed("o1"))

	// Accepting again is rejected: no longer pending.
	require.ErrorIs(t, c.AcceptOrder(ctx, "o1"), common.ErrInvalidTransition)
}

func TestAcceptOrder_BackendFailure_KeepsOptimisticCopyTagged(t *testing.T) {
	b := &fakeBackend{
		PageRet:   page([]models.Order{pendingOrder("o1")}, true),
		AcceptErr: errors.New("already taken"),
	}
	c := newController(t, b)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx, 1, 10))

	err := c.AcceptOrder(ctx, "o1")
	require.EqualError(t, err, "already taken")

	require.Equal(t, models.OrderAccepted, c.Orders()[0].Status)
	require.True(t, c.Unconfirmed("o1"))

	// The next authoritative fetch settles the marker with the server copy.
	b.mu.Lock()
	b.PageRet = page([]models.Order{pendingOrder("o1")}, true)
	b.mu.Unlock()
	require.NoError(t, c.FetchPage(ctx, 1, 10))
	require.Equal(t, models.OrderPending, c.Orders()[0].Status)
	require.False(t, c.Unconfirmed("o1"))
}

func TestCompleteOrder_PinGate(t *testing.T) {
	b := &fakeBackend{PageRet: page([]models.Order{
		{ID: "o1", Status: models.OrderAccepted},
	}, true)}
	c := newController(t, b)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx, 1, 10))

	for _, pin := range []string{"", "123", "12345", "12a4"} {
		require.ErrorIs(t, c.CompleteOrder(ctx, "o1", pin), common.ErrInvalidPINFormat, "pin %q", pin)
	}
	require.Zero(t, b.CompleteCalls)
}

func TestCompleteOrder_Success_AdjustsCounters(t *testing.T) {
	b := &fakeBackend{PageRet: page([]models.Order{
		{ID: "o1", Status: models.OrderAccepted},
	}, true)}
	c := newController(t, b)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx, 1, 10))

	require.NoError(t, c.CompleteOrder(ctx, "o1", "1234"))
	require.Equal(t, "1234", b.LastPin)

	got := c.Orders()[0]
	require.Equal(t, models.OrderDelivered, got.Status)
	require.NotNil(t, got.DeliveredAt)

	completed, notDelivered := c.Counters()
	require.Equal(t, 4, completed)
	require.Equal(t, 1, notDelivered)
}

func TestCompleteOrder_OnlyFromAccepted(t *testing.T) {
	b := &fakeBackend{PageRet: page([]models.Order{pendingOrder("o1")}, true)}
	c := newController(t, b)
	ctx := context.Background()
	require.NoError(t, c.FetchPage(ctx, 1, 10))

	require.ErrorIs(t, c.CompleteOrder(ctx, "o1", "1234"), common.ErrInvalidTransition)
	require.Zero(t, b.CompleteCalls)
}

func TestOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	accepted := now.Add(-3 * time.Hour)

	o := models.Order{Status: models.OrderAccepted, AcceptedAt: &accepted, EstimatedDeliveryHours: 2}
	require.True(t, Overdue(o, now))

	o.EstimatedDeliveryHours = 4
	require.False(t, Overdue(o, now))

	o.Status = models.OrderDelivered
	require.False(t, Overdue(o, now))

	o = models.Order{Status: models.OrderAccepted, EstimatedDeliveryHours: 1}
	require.False(t, Overdue(o, now), "no acceptance time recorded")
}

func TestFetchPage_StaleResponseDiscarded(t *testing.T) {
	// Two overlapping fetches resolve out of issue order; the older
	// response must not clobber the newer one.
	b := &fakeBackend{}
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	call := 0
	var callMu sync.Mutex

	b.PageFn = func(pageNum, limit int) (*models.WalletPage, error) {
		callMu.Lock()
		call++
		mine := call
		callMu.Unlock()
		if mine == 1 {
			close(firstStarted)
			<-releaseFirst
			return page([]models.Order{pendingOrder("old")}, true), nil
		}
		return page([]models.Order{pendingOrder("new")}, true), nil
	}

	c := newController(t, b)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.FetchPage(ctx, 1, 10) }()
	<-firstStarted

	// The guard refuses an overlapping fetch; simulate the race by
	// resetting the in-flight flag the way a cancelled view would.
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()

	require.NoError(t, c.FetchPage(ctx, 2, 10)) // newer fetch lands first
	close(releaseFirst)
	require.NoError(t, <-done) // older response arrives late

	require.Len(t, c.Orders(), 1)
	require.Equal(t, "new", c.Orders()[0].ID)
}
