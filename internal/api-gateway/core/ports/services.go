package ports

import (
	"context"
	"encoding/json"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
)

type CartService interface {
	CreateCart(ctx context.Context) (*entity.Cart, error)
	AddItem(ctx context.Context, cartID, itemID string, quantity int) (*entity.Cart, error)
	GetCart(ctx context.Context, cartID string) (*entity.Cart, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, cartID string, shippingDetails json.RawMessage) (*entity.Order, error)
	Checkout(ctx context.Context, items []entity.CheckoutItem, customerInfo json.RawMessage) (*entity.CheckoutAck, error)
}
