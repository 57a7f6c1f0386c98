// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "coplace/internal/domain/cart"
	"coplace/internal/domain/common"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// - collection: carts
// - docId: uid (docId is the source of truth)
// - fields: items (array of product fields + quantity), updatedAt
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// Get returns (nil, nil) if not found.
func (r *CartRepositoryFS) Get(ctx context.Context, uid string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errors.New("cart_repository_fs: uid is empty")
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return cartFromSnapshot(snap)
}

// Save overwrites the full document. No merge, no precondition.
func (r *CartRepositoryFS) Save(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}
	uid := strings.TrimSpace(c.UserID)
	if uid == "" {
		return errors.New("cart_repository_fs: Save requires cart.UserID as docId")
	}

	_, err := r.col().Doc(uid).Set(ctx, cartToDoc(c))
	return err
}

func (r *CartRepositoryFS) Watch(ctx context.Context, uid string, onSnapshot func(*cartdom.Cart), onError common.ErrorHandler) (*common.Subscription, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errors.New("cart_repository_fs: uid is empty")
	}

	return watchDoc(ctx, r.col().Doc(uid), "carts/"+uid, cartFromSnapshot, func(c *cartdom.Cart, ok bool) {
		if !ok {
			onSnapshot(nil)
			return
		}
		onSnapshot(c)
	}, onError), nil
}

// -----------------------------------------
// Firestore mapping
// -----------------------------------------

// cartFromSnapshot parses snap.Data() by hand so that malformed lines
// (missing id, quantity <= 0) are dropped instead of failing the whole cart.
func cartFromSnapshot(snap *firestore.DocumentSnapshot) (*cartdom.Cart, error) {
	if snap == nil {
		return nil, errors.New("cart_repository_fs: snapshot is nil")
	}
	data := snap.Data()

	var items []cartdom.Entry
	if raw, ok := data["items"].([]any); ok {
		items = make([]cartdom.Entry, 0, len(raw))
		for _, x := range raw {
			m := asMap(x)
			if m == nil {
				continue
			}
			p := productFromMap(m)
			if p.ID == "" {
				continue
			}
			items = append(items, cartdom.Entry{Product: p, Quantity: asInt(m["quantity"])})
		}
	}

	c := cartdom.FromItems(snap.Ref.ID, items, snap.UpdateTime.UTC())
	if t, ok := asTime(data["updatedAt"]); ok {
		c.UpdatedAt = t
	}
	return c, nil
}

func cartToDoc(c *cartdom.Cart) map[string]any {
	items := make([]map[string]any, 0, len(c.Items))
	for _, it := range c.Items {
		m := productToDoc(it.Product)
		m["id"] = it.Product.ID
		if !it.Product.CreatedAt.IsZero() {
			m["createdAt"] = it.Product.CreatedAt.UTC()
		}
		m["quantity"] = it.Quantity
		items = append(items, m)
	}
	return map[string]any{
		"items":     items,
		"updatedAt": c.UpdatedAt.UTC(),
	}
}
