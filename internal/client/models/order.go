package models

import "time"

// OrderStatus is the backend's order lifecycle state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderInTransit OrderStatus = "in_transit"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// PaymentStatus of an order.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)

// Order is a read-through cached copy of a backend order. The backend owns
// the record; local accept/complete transitions are provisional until the
// next authoritative fetch replaces them.
type Order struct {
	ID              string        `json:"_id"`
	OrderID         string        `json:"orderId"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	ReceiverName    string        `json:"receiverName"`
	ReceiverPhone   string        `json:"receiverPhone"`
	ReceiverAddress string        `json:"receiversAddress"`
	Description     string        `json:"descr"`
	Address         string        `json:"address"`
	Cost            string        `json:"cost"`

	// AcceptedAt is set by the client when the rider accepts; the server's
	// value wins on reconciliation.
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`

	// EstimatedDeliveryHours is the window the rider has to deliver after
	// acceptance. Zero means no estimate.
	EstimatedDeliveryHours float64 `json:"estimatedDeliveryTime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Wallet is a read-only snapshot refreshed alongside the order list.
type Wallet struct {
	Balance        float64   `json:"balance"`
	TotalEarnings  float64   `json:"totalEarnings"`
	TotalPenalties float64   `json:"totalPenalties"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// WalletPage is one page of the combined wallet/orders dashboard response.
type WalletPage struct {
	Wallet             Wallet  `json:"wallet"`
	Orders             []Order `json:"orders"`
	HasMore            bool    `json:"hasMore"`
	CompletedOrders    int     `json:"completedOrders"`
	NotDeliveredOrders int     `json:"notDeliveredOrders"`
}
