package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/ports"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/infra/adapters/cartstore"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/infra/adapters/cartstore/mongo"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/infra/adapters/cartstore/sqlite"
	"github.com/jcmexdev/storefront-gateway/internal/pkg/cache"
	"github.com/jcmexdev/storefront-gateway/internal/pkg/config"
)

// openStore builds the cart store selected by CART_STORE. The returned
// close function releases the backing connection.
func openStore(ctx context.Context, cfg config.Config) (ports.CartStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.CartStore {
	case config.StoreRedis:
		client := cache.NewRedisClient(cfg.RedisAddr)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		slog.Info("cart store: redis", "addr", cfg.RedisAddr, "ttl", cfg.CartTTL)
		return cartstore.NewRedisStore(cache.NewRedisCache(client, "gateway"), cfg.CartTTL), client.Close, nil

	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("cart store: sqlite", "path", cfg.SQLitePath)
		return repo, repo.Close, nil

	case config.StoreMongo:
		db, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("cart store: mongo", "database", cfg.MongoDatabase)
		return mongo.NewRepository(db), func() error {
			return db.Client().Disconnect(context.Background())
		}, nil

	default:
		slog.Warn("cart store: memory, carts are lost on restart")
		return cartstore.NewMemoryStore(), noop, nil
	}
}
