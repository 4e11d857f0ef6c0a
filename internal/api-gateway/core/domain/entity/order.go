package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const PaymentMethodCashOnDelivery = "cash_on_delivery"

type OrderStatus string

const (
	StatusPending  OrderStatus = "pending"
	StatusReceived OrderStatus = "received"
)

type Order struct {
	ID              string
	CartID          string
	Lines           []CartLine
	ShippingDetails json.RawMessage
	Total           float64
	PaymentMethod   string
	Status          OrderStatus
	CreatedAt       time.Time
}

// CheckoutItem is a line submitted directly to /api/checkout, without a cart.
type CheckoutItem struct {
	ItemID   string
	Name     string
	Price    float64
	Quantity int
}

// CheckoutAck acknowledges a direct checkout submission. Nothing is stored.
type CheckoutAck struct {
	Reference     string
	Total         float64
	ItemCount     int
	Status        OrderStatus
	PaymentMethod string
	CustomerInfo  json.RawMessage
	CreatedAt     time.Time
}

func (l CartLine) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total sums price x quantity over lines using decimal arithmetic, so a cart
// of [(10,2),(5,1)] is exactly 25 and not an accumulated float.
func Total(lines []CartLine) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum.InexactFloat64()
}
