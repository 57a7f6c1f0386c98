// internal/application/usecase/product_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"regexp"
	"strings"

	"coplace/internal/domain/common"
	productdom "coplace/internal/domain/product"
)

var (
	ErrForbidden            = errors.New("product_usecase: forbidden")
	ErrProductInvalidUpload = errors.New("product_usecase: invalid image upload")
)

// ImageStore is the object store for product photos.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// ImageUpload is an optional photo attached to a create/update request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProductUsecase is the seller-side product management.
type ProductUsecase struct {
	repo   productdom.Repository
	images ImageStore
	clock  common.Clock
}

func NewProductUsecase(repo productdom.Repository, images ImageStore, clock common.Clock) *ProductUsecase {
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &ProductUsecase{repo: repo, images: images, clock: clock}
}

func (uc *ProductUsecase) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	return uc.repo.GetByID(ctx, id)
}

// ListMine lists the seller's own products, newest first.
func (uc *ProductUsecase) ListMine(ctx context.Context, sess Session) ([]productdom.Product, error) {
	if strings.TrimSpace(sess.UID) == "" {
		return nil, ErrForbidden
	}
	return uc.repo.ListByOwner(ctx, sess.UID)
}

// Create validates the draft before touching the object store or the
// database, uploads the optional image, then stores the product.
func (uc *ProductUsecase) Create(ctx context.Context, sess Session, d productdom.Draft, img *ImageUpload) (productdom.Product, error) {
	if !sess.IsSeller() {
		return productdom.Product{}, ErrForbidden
	}
	p, err := productdom.New(d, sess.UID)
	if err != nil {
		return productdom.Product{}, err
	}

	uploaded := ""
	if img != nil {
		u, err := uc.upload(ctx, img)
		if err != nil {
			return productdom.Product{}, err
		}
		p.ImageURL = u
		uploaded = u
	}

	created, err := uc.repo.Create(ctx, p)
	if err != nil {
		if uploaded != "" {
			uc.dropImage(ctx, uploaded)
		}
		return productdom.Product{}, fmt.Errorf("product_usecase: create: %w", err)
	}
	log.Printf("[product] created id=%s owner=%s", created.ID, created.CreatedBy)
	return created, nil
}

// Update applies patch to a product the caller owns.
func (uc *ProductUsecase) Update(ctx context.Context, sess Session, id string, patch productdom.Patch, img *ImageUpload) (productdom.Product, error) {
	cur, err := uc.owned(ctx, sess, id)
	if err != nil {
		return productdom.Product{}, err
	}
	if _, err := patch.Apply(cur); err != nil {
		return productdom.Product{}, err
	}

	if img != nil {
		u, err := uc.upload(ctx, img)
		if err != nil {
			return productdom.Product{}, err
		}
		patch.ImageURL = &u
	}
	if patch.IsEmpty() {
		return cur, nil
	}

	next, err := uc.repo.Update(ctx, cur.ID, patch)
	if err != nil {
		if img != nil {
			uc.dropImage(ctx, *patch.ImageURL)
		}
		return productdom.Product{}, err
	}
	if img != nil && cur.ImageURL != "" && cur.ImageURL != next.ImageURL {
		uc.dropImage(ctx, cur.ImageURL)
	}
	return next, nil
}

// Delete removes a product the caller owns, then its image (best effort).
func (uc *ProductUsecase) Delete(ctx context.Context, sess Session, id string) error {
	cur, err := uc.owned(ctx, sess, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, cur.ID); err != nil {
		return err
	}
	if cur.ImageURL != "" {
		uc.dropImage(ctx, cur.ImageURL)
	}
	log.Printf("[product] deleted id=%s owner=%s", cur.ID, cur.CreatedBy)
	return nil
}

func (uc *ProductUsecase) owned(ctx context.Context, sess Session, id string) (productdom.Product, error) {
	if !sess.IsSeller() {
		return productdom.Product{}, ErrForbidden
	}
	cur, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return productdom.Product{}, err
	}
	if cur.CreatedBy != sess.UID {
		return productdom.Product{}, ErrForbidden
	}
	return cur, nil
}

func (uc *ProductUsecase) upload(ctx context.Context, img *ImageUpload) (string, error) {
	if uc.images == nil {
		return "", errors.New("product_usecase: image store is not configured")
	}
	if img.Body == nil {
		return "", ErrProductInvalidUpload
	}
	obj := ImageObjectPath(uc.clock.Now().UnixMilli(), img.Filename)
	u, err := uc.images.Upload(ctx, obj, img.ContentType, img.Body)
	if err != nil {
		return "", fmt.Errorf("product_usecase: upload image: %w", err)
	}
	return u, nil
}

func (uc *ProductUsecase) dropImage(ctx context.Context, url string) {
	if uc.images == nil {
		return
	}
	if err := uc.images.DeleteByURL(ctx, url); err != nil {
		log.Printf("[product] image cleanup failed url=%s: %v", url, err)
	}
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ImageObjectPath is products/<unix-ms>_<filename>, with the filename reduced
// to a safe base name.
func ImageObjectPath(unixMilli int64, filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	name = unsafeFilename.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "/" || name == "_" {
		name = "image"
	}
	return fmt.Sprintf("products/%d_%s", unixMilli, name)
}
