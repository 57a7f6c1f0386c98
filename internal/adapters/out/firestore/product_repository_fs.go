// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"coplace/internal/domain/common"
	productdom "coplace/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
//
// - collection: products
// - docId: auto id
// - createdAt: server timestamp
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

var errProductClientNil = errors.New("product_repository_fs: firestore client is nil")

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errProductClientNil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}
	return docToProduct(snap)
}

// Create inserts a new product under an auto id and reads it back so the
// resolved server timestamp is returned.
func (r *ProductRepositoryFS) Create(ctx context.Context, v productdom.Product) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errProductClientNil
	}

	docRef := r.col().NewDoc()
	data := productToDoc(v)
	data["createdAt"] = firestore.ServerTimestamp

	if _, err := docRef.Create(ctx, data); err != nil {
		return productdom.Product{}, err
	}

	snap, err := docRef.Get(ctx)
	if err != nil {
		return productdom.Product{}, err
	}
	return docToProduct(snap)
}

// Update applies patch inside a transaction so validation runs against the
// stored document.
func (r *ProductRepositoryFS) Update(ctx context.Context, id string, patch productdom.Patch) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errProductClientNil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}

	docRef := r.col().Doc(id)
	var out productdom.Product
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return productdom.ErrNotFound
			}
			return err
		}
		cur, err := docToProduct(snap)
		if err != nil {
			return err
		}
		next, err := patch.Apply(cur)
		if err != nil {
			return err
		}

		updates := []firestore.Update{
			{Path: "name", Value: next.Name},
			{Path: "origin", Value: next.Origin},
			{Path: "roastLevel", Value: string(next.RoastLevel)},
			{Path: "price", Value: next.Price},
			{Path: "description", Value: next.Description},
			{Path: "imageUrl", Value: next.ImageURL},
		}
		if err := tx.Update(docRef, updates); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return productdom.Product{}, err
	}
	return out, nil
}

func (r *ProductRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errProductClientNil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.ErrInvalidID
	}
	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

// ListByOwner sorts client-side so no composite index is needed.
func (r *ProductRepositoryFS) ListByOwner(ctx context.Context, ownerID string) ([]productdom.Product, error) {
	return r.listWhere(ctx, "createdBy", strings.TrimSpace(ownerID))
}

func (r *ProductRepositoryFS) ListByOrigin(ctx context.Context, origin string) ([]productdom.Product, error) {
	return r.listWhere(ctx, "origin", strings.TrimSpace(origin))
}

func (r *ProductRepositoryFS) listWhere(ctx context.Context, field, value string) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errProductClientNil
	}
	if value == "" {
		return []productdom.Product{}, nil
	}

	docs, err := r.col().Where(field, "==", value).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	out := make([]productdom.Product, 0, len(docs))
	for _, d := range docs {
		p, err := docToProduct(d)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ProductRepositoryFS) WatchAll(ctx context.Context, onSnapshot func([]productdom.Product), onError common.ErrorHandler) (*common.Subscription, error) {
	if r == nil || r.Client == nil {
		return nil, errProductClientNil
	}
	q := r.col().OrderBy("createdAt", firestore.Desc)
	return watchQuery(ctx, q, "products", docToProduct, onSnapshot, onError), nil
}

func docToProduct(doc *firestore.DocumentSnapshot) (productdom.Product, error) {
	data := doc.Data()
	if data == nil {
		return productdom.Product{}, fmt.Errorf("empty product document: %s", doc.Ref.ID)
	}
	p := productFromMap(data)
	p.ID = doc.Ref.ID
	return p, nil
}

// productFromMap is shared with cart items, which embed product fields.
func productFromMap(data map[string]any) productdom.Product {
	p := productdom.Product{
		ID:          asString(data["id"]),
		Name:        asString(data["name"]),
		Origin:      asString(data["origin"]),
		RoastLevel:  productdom.RoastLevel(asString(data["roastLevel"])),
		Price:       asInt64(data["price"]),
		Description: asString(data["description"]),
		ImageURL:    asString(data["imageUrl"]),
		CreatedBy:   asString(data["createdBy"]),
	}
	if t, ok := asTime(data["createdAt"]); ok {
		p.CreatedAt = t
	}
	return p
}

func productToDoc(v productdom.Product) map[string]any {
	m := map[string]any{
		"name":        strings.TrimSpace(v.Name),
		"origin":      strings.TrimSpace(v.Origin),
		"roastLevel":  string(v.RoastLevel),
		"price":       v.Price,
		"description": strings.TrimSpace(v.Description),
		"createdBy":   strings.TrimSpace(v.CreatedBy),
	}
	if s := strings.TrimSpace(v.ImageURL); s != "" {
		m["imageUrl"] = s
	}
	return m
}
