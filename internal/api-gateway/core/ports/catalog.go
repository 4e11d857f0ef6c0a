package ports

import (
	"context"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
)

// Catalog resolves items against the upstream product API.
type Catalog interface {
	FetchItem(ctx context.Context, id string) (*entity.Item, error)
	FetchItems(ctx context.Context, limit int) ([]entity.Item, error)
}
