package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/ports"
	"github.com/jcmexdev/storefront-gateway/internal/pkg/cache"
)

var _ ports.CartStore = (*RedisStore)(nil)

const redisOperation = "cart"

// RedisStore keeps carts as JSON documents in Redis. A zero ttl keeps carts
// until they are consumed by an order.
type RedisStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewRedisStore(c cache.Cache, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, ttl: ttl}
}

type cartDocument struct {
	ID        string         `json:"id"`
	Lines     []lineDocument `json:"lines"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type lineDocument struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (s *RedisStore) Get(ctx context.Context, id string) (*entity.Cart, error) {
	raw, err := s.cache.Get(ctx, s.cache.GenerateKey(redisOperation, id))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc cartDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return doc.toEntity(), nil
}

func (s *RedisStore) Put(ctx context.Context, cart *entity.Cart) error {
	data, err := json.Marshal(newCartDocument(cart))
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.ID, err)
	}
	return s.cache.Set(ctx, s.cache.GenerateKey(redisOperation, cart.ID), string(data), s.ttl)
}

// Update uses SET XX so a cart that expired while it was being modified
// stays gone.
func (s *RedisStore) Update(ctx context.Context, cart *entity.Cart) error {
	data, err := json.Marshal(newCartDocument(cart))
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.ID, err)
	}
	ok, err := s.cache.SetExisting(ctx, s.cache.GenerateKey(redisOperation, cart.ID), string(data), s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	existed, err := s.cache.Delete(ctx, s.cache.GenerateKey(redisOperation, id))
	if err != nil {
		return err
	}
	if !existed {
		return entity.ErrNotFound
	}
	return nil
}

func newCartDocument(c *entity.Cart) cartDocument {
	lines := make([]lineDocument, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = lineDocument(l)
	}
	return cartDocument{
		ID:        c.ID,
		Lines:     lines,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d cartDocument) toEntity() *entity.Cart {
	lines := make([]entity.CartLine, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = entity.CartLine(l)
	}
	return &entity.Cart{
		ID:        d.ID,
		Lines:     lines,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
