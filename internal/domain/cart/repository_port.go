// internal/domain/cart/repository_port.go
package cart

import (
	"context"

	"coplace/internal/domain/common"
)

// Repository is a persistence port for Cart.
//
// Storage (Firestore):
// - collection: carts
// - docId: uid
// - fields: items (ordered array of {product fields..., quantity}), updatedAt
//
// Save always overwrites the whole document; there is no merge and no
// version check (last write wins).
type Repository interface {
	// Get returns (nil, nil) when the user has no cart document yet.
	Get(ctx context.Context, uid string) (*Cart, error)

	Save(ctx context.Context, c *Cart) error

	// Watch streams the cart document. onSnapshot receives nil while the
	// document does not exist.
	Watch(ctx context.Context, uid string, onSnapshot func(*Cart), onError common.ErrorHandler) (*common.Subscription, error)
}
