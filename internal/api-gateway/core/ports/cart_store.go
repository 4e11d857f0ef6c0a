package ports

import (
	"context"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
)

// CartStore is the persistence port for carts. The services depend on this
// abstraction so the in-memory map can be swapped for Redis, SQLite or Mongo
// without touching callers.
type CartStore interface {
	// Get returns a copy of the cart or entity.ErrNotFound.
	Get(ctx context.Context, id string) (*entity.Cart, error)

	// Put creates or replaces the cart.
	Put(ctx context.Context, cart *entity.Cart) error

	// Update replaces an existing cart. It returns entity.ErrNotFound when the
	// cart is gone, so an expired or consumed cart is never recreated.
	Update(ctx context.Context, cart *entity.Cart) error

	// Delete removes the cart or returns entity.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
