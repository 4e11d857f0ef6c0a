package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/ports"
)

var _ ports.OrderService = (*OrderService)(nil)

// OrderService turns carts into cash-on-delivery orders. Orders are not
// persisted and nothing is submitted upstream.
type OrderService struct {
	store ports.CartStore
	locks *KeyedMutex
	now   func() time.Time
}

// NewOrderService must share locks with the CartService operating on the same
// store, otherwise consuming a cart is not atomic with respect to adds.
func NewOrderService(store ports.CartStore, locks *KeyedMutex) *OrderService {
	return &OrderService{
		store: store,
		locks: locks,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder snapshots the cart into an order and deletes the cart while
// holding the cart's lock.
func (s *OrderService) CreateOrder(ctx context.Context, cartID string, shippingDetails json.RawMessage) (*entity.Order, error) {
	if cartID == "" {
		return nil, fmt.Errorf("%w: cartId is required", entity.ErrValidation)
	}

	unlock, err := s.locks.Lock(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("lock cart %s: %w", cartID, err)
	}
	defer unlock()

	cart, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("cart %s: %w", cartID, err)
	}
	if len(cart.Lines) == 0 {
		return nil, fmt.Errorf("%w: cart %s is empty", entity.ErrValidation, cartID)
	}

	order := &entity.Order{
		ID:              uuid.NewString(),
		CartID:          cart.ID,
		Lines:           cart.Clone().Lines,
		ShippingDetails: shippingDetails,
		Total:           entity.Total(cart.Lines),
		PaymentMethod:   entity.PaymentMethodCashOnDelivery,
		Status:          entity.StatusPending,
		CreatedAt:       s.now(),
	}

	if err := s.store.Delete(ctx, cartID); err != nil {
		return nil, fmt.Errorf("consume cart %s: %w", cartID, err)
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"cart_id", cartID,
		"total", order.Total,
		"lines", len(order.Lines),
	)
	return order, nil
}

// Checkout acknowledges a cart-less submission of items and customer info.
func (s *OrderService) Checkout(ctx context.Context, items []entity.CheckoutItem, customerInfo json.RawMessage) (*entity.CheckoutAck, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: items are required", entity.ErrValidation)
	}

	lines := make([]entity.CartLine, 0, len(items))
	count := 0
	for i, it := range items {
		if it.ItemID == "" || it.Quantity <= 0 || it.Price < 0 {
			return nil, fmt.Errorf("%w: item %d must have an id, a positive quantity and a non-negative price", entity.ErrValidation, i)
		}
		if it.Quantity > entity.MaxQuantity {
			return nil, fmt.Errorf("%w: item %d quantity must not exceed %d", entity.ErrValidation, i, entity.MaxQuantity)
		}
		lines = append(lines, entity.CartLine{
			ItemID:   it.ItemID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
		count += it.Quantity
	}

	ack := &entity.CheckoutAck{
		Reference:     uuid.NewString(),
		Total:         entity.Total(lines),
		ItemCount:     count,
		Status:        entity.StatusReceived,
		PaymentMethod: entity.PaymentMethodCashOnDelivery,
		CustomerInfo:  customerInfo,
		CreatedAt:     s.now(),
	}

	slog.InfoContext(ctx, "checkout received", "reference", ack.Reference, "total", ack.Total, "items", count)
	return ack, nil
}
