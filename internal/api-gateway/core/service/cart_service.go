package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/ports"
)

var _ ports.CartService = (*CartService)(nil)

// CartService creates carts and merges upstream items into them. Every
// mutation of a cart runs under that cart's lock, including the upstream
// lookup, so concurrent adds of the same item never lose an update.
type CartService struct {
	store   ports.CartStore
	catalog ports.Catalog
	locks   *KeyedMutex
	now     func() time.Time
}

func NewCartService(store ports.CartStore, catalog ports.Catalog, locks *KeyedMutex) *CartService {
	return &CartService{
		store:   store,
		catalog: catalog,
		locks:   locks,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *CartService) CreateCart(ctx context.Context) (*entity.Cart, error) {
	now := s.now()
	cart := &entity.Cart{
		ID:        uuid.NewString(),
		Lines:     []entity.CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(ctx, cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	slog.InfoContext(ctx, "cart created", "cart_id", cart.ID)
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, cartID, itemID string, quantity int) (*entity.Cart, error) {
	switch {
	case cartID == "":
		return nil, fmt.Errorf("%w: cartId is required", entity.ErrValidation)
	case itemID == "":
		return nil, fmt.Errorf("%w: itemId is required", entity.ErrValidation)
	case quantity <= 0:
		return nil, fmt.Errorf("%w: quantity must be a positive integer", entity.ErrValidation)
	case quantity > entity.MaxQuantity:
		return nil, fmt.Errorf("%w: quantity must not exceed %d", entity.ErrValidation, entity.MaxQuantity)
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

	item, err := s.catalog.FetchItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("resolve item %s: %w", itemID, err)
	}
	if item.ID == "" {
		item.ID = itemID
	}
	if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price < 0 {
		return nil, &entity.UpstreamError{Message: fmt.Sprintf("malformed response: invalid price for item %s", itemID)}
	}

	if err := cart.Merge(item, quantity); err != nil {
		return nil, fmt.Errorf("cart %s: %w", cartID, err)
	}
	cart.UpdatedAt = s.now()

	if err := s.store.Update(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart %s: %w", cartID, err)
	}
	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, cartID string) (*entity.Cart, error) {
	if cartID == "" {
		return nil, fmt.Errorf("%w: cartId is required", entity.ErrValidation)
	}

	cart, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("cart %s: %w", cartID, err)
	}
	return cart, nil
}
