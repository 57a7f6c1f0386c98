// internal/domain/product/repository_port.go
package product

import (
	"context"

	"coplace/internal/domain/common"
)

// Repository is the persistence port for products.
//
// Storage (Firestore):
// - collection: products
// - docId: product id (store-assigned)
// - createdAt: server timestamp
type Repository interface {
	GetByID(ctx context.Context, id string) (Product, error)

	// Create assigns ID and CreatedAt.
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id string, patch Patch) (Product, error)
	Delete(ctx context.Context, id string) error

	ListByOwner(ctx context.Context, ownerID string) ([]Product, error)
	ListByOrigin(ctx context.Context, origin string) ([]Product, error)

	// WatchAll streams the whole collection ordered by createdAt desc.
	// onSnapshot receives the full ordered snapshot on every change.
	WatchAll(ctx context.Context, onSnapshot func([]Product), onError common.ErrorHandler) (*common.Subscription, error)
}
