package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/parcel-ng/parcel-client/internal/client/orders"
)

const pageSize = 10

// Orders refreshes the first page and prints the list.
func (a *App) Orders(ctx context.Context) error {
	a.page = 1
	a.orders.Reset()
	if err := a.orders.FetchPage(ctx, a.page, pageSize); err != nil {
		if errors.Is(err, orders.ErrFetchInFlight) {
			fmt.Println("Still loading, one moment...")
			return nil
		}
		reportErr(err)
		return err
	}
	a.printOrders()
	return nil
}

// More fetches the next page, if the backend reported one.
func (a *App) More(ctx context.Context) error {
	if !a.orders.HasMore() {
		fmt.Println("No more orders.")
		return nil
	}
	a.page++
	if err := a.orders.FetchPage(ctx, a.page, pageSize); err != nil {
		reportErr(err)
		return err
	}
	a.printOrders()
	return nil
}

func (a *App) printOrders() {
	list := a.orders.Orders()
	if len(list) == 0 {
		fmt.Println("No orders yet.")
		return
	}

	now := time.Now()
	for _, o := range list {
		line := fmt.Sprintf("%-12s %-10s %-8s %s -> %s (%s)",
			o.OrderID, o.Status, o.PaymentStatus, o.Address, o.ReceiverAddress, o.Cost)
		if orders.Overdue(o, now) {
			line += "  [OVERDUE]"
		}
		if a.orders.Unconfirmed(o.ID) {
			line += "  [unconfirmed]"
		}
		fmt.Println(line)
	}

	completed, notDelivered := a.orders.Counters()
	fmt.Printf("Completed: %d  Pending: %d", completed, notDelivered)
	if a.orders.HasMore() {
		fmt.Print("  (type 'more' for the next page)")
	}
	fmt.Println()
}

// Accept takes a pending order.
func (a *App) Accept(ctx context.Context, orderID string) error {
	if err := a.orders.AcceptOrder(ctx, orderID); err != nil {
		reportErr(err)
		return err
	}
	fmt.Println("Order accepted.")
	return nil
}

// Complete marks an accepted order delivered after the receiver's 4-digit
// pin is entered.
func (a *App) Complete(ctx context.Context, orderID string) error {
	pin, err := getSimpleText(a.reader, "Enter the receiver's 4-digit pin", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.orders.CompleteOrder(ctx, orderID, pin); err != nil {
		reportErr(err)
		return err
	}
	fmt.Println("Delivery confirmed.")
	return nil
}

// WalletSummary prints the wallet snapshot from the latest fetch.
func (a *App) WalletSummary(ctx context.Context) error {
	if len(a.orders.Orders()) == 0 {
		a.orders.Reset()
		if err := a.orders.FetchPage(ctx, 1, pageSize); err != nil {
			reportErr(err)
			return err
		}
	}

	w := a.orders.Wallet()
	fmt.Printf("Balance: %.2f\nTotal earnings: %.2f\nTotal penalties: %.2f\n",
		w.Balance, w.TotalEarnings, w.TotalPenalties)

	completed, _ := a.orders.Counters()
	printTargetProgress(completed, 10)
	return nil
}

// printTargetProgress renders the rider's progress toward the order target.
func printTargetProgress(completed, target int) {
	if target <= 0 {
		return
	}
	pct := completed * 100 / target
	if pct > 100 {
		pct = 100
	}
	fmt.Printf("Target progress: %d/%d orders (%d%%)\n", completed, target, pct)
	if completed >= target {
		fmt.Println("Target achieved!")
	}
}
