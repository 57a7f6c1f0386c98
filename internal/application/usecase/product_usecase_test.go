package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coplace/internal/adapters/out/memory"
	productdom "coplace/internal/domain/product"
	userdom "coplace/internal/domain/user"
)

var (
	seller  = Session{UID: "s1", DisplayName: "Toko Kopi", Role: userdom.RoleSeller}
	rival   = Session{UID: "s2", Role: userdom.RoleSeller}
	shopper = Session{UID: "b1", Role: userdom.RoleBuyer}
)

func draft() productdom.Draft {
	return productdom.Draft{Name: "Sapan", Origin: "Toraja", RoastLevel: productdom.RoastMedium, Price: 150000, Description: "fruity"}
}

func photo(name string) *ImageUpload {
	return &ImageUpload{Filename: name, ContentType: "image/png", Body: strings.NewReader("png")}
}

func TestProductUsecase_Create(t *testing.T) {
	ctx := context.Background()
	images := newFakeImages()
	uc := NewProductUsecase(memory.NewProductRepository(testClock), images, testClock)

	_, err := uc.Create(ctx, shopper, draft(), nil)
	assert.ErrorIs(t, err, ErrForbidden)

	bad := draft()
	bad.RoastLevel = "blonde"
	_, err = uc.Create(ctx, seller, bad, photo("a.png"))
	assert.ErrorIs(t, err, productdom.ErrInvalidRoastLevel)
	assert.Zero(t, images.uploads.Load())

	p, err := uc.Create(ctx, seller, draft(), photo("a.png"))
	require.NoError(t, err)
	assert.Equal(t, "s1", p.CreatedBy)
	assert.Equal(t, "https://img.test/products/1729069200000_a.png", p.ImageURL)

	mine, err := uc.ListMine(ctx, seller)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestProductUsecase_OnlyOwnerMutates(t *testing.T) {
	ctx := context.Background()
	uc := NewProductUsecase(memory.NewProductRepository(testClock), newFakeImages(), testClock)
	p, err := uc.Create(ctx, seller, draft(), nil)
	require.NoError(t, err)

	price := int64(1)
	_, err = uc.Update(ctx, rival, p.ID, productdom.Patch{Price: &price}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, uc.Delete(ctx, rival, p.ID), ErrForbidden)
	assert.ErrorIs(t, uc.Delete(ctx, shopper, p.ID), ErrForbidden)

	_, err = uc.Update(ctx, seller, "missing", productdom.Patch{Price: &price}, nil)
	assert.ErrorIs(t, err, productdom.ErrNotFound)
}

func TestProductUsecase_UpdateReplacesImage(t *testing.T) {
	ctx := context.Background()
	images := newFakeImages()
	uc := NewProductUsecase(memory.NewProductRepository(testClock), images, testClock)
	p, err := uc.Create(ctx, seller, draft(), photo("old.png"))
	require.NoError(t, err)

	price := int64(175000)
	next, err := uc.Update(ctx, seller, p.ID, productdom.Patch{Price: &price}, photo("new.png"))
	require.NoError(t, err)
	assert.Equal(t, int64(175000), next.Price)
	assert.Contains(t, next.ImageURL, "_new.png")
	assert.Equal(t, []string{p.ImageURL}, images.deleted)

	empty := ""
	_, err = uc.Update(ctx, seller, p.ID, productdom.Patch{Name: &empty}, photo("x.png"))
	assert.ErrorIs(t, err, productdom.ErrInvalidName)
	assert.Equal(t, int32(2), images.uploads.Load())
}

func TestProductUsecase_DeleteDropsImage(t *testing.T) {
	ctx := context.Background()
	images := newFakeImages()
	repo := memory.NewProductRepository(testClock)
	uc := NewProductUsecase(repo, images, testClock)
	p, err := uc.Create(ctx, seller, draft(), photo("a.png"))
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, seller, p.ID))
	assert.Equal(t, []string{p.ImageURL}, images.deleted)
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, productdom.ErrNotFound)
}

func TestImageObjectPath(t *testing.T) {
	cases := map[string]string{
		"a.png":         "products/7_a.png",
		"my photo!.png": "products/7_my_photo_.png",
		"../etc/passwd": "products/7_passwd",
		`C:\pics\b.jpg`: "products/7_b.jpg",
		"":              "products/7_image",
		"   ":           "products/7_image",
	}
	for in, want := range cases {
		assert.Equal(t, want, ImageObjectPath(7, in), in)
	}
}

// failingProductRepo fails writes after they pass validation.
type failingProductRepo struct {
	*memory.ProductRepository
	failCreate bool
	failUpdate bool
}

func (r *failingProductRepo) Create(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if r.failCreate {
		return productdom.Product{}, errBoom
	}
	return r.ProductRepository.Create(ctx, p)
}

func (r *failingProductRepo) Update(ctx context.Context, id string, patch productdom.Patch) (productdom.Product, error) {
	if r.failUpdate {
		return productdom.Product{}, errBoom
	}
	return r.ProductRepository.Update(ctx, id, patch)
}

func TestProductUsecase_FailedWriteDropsUpload(t *testing.T) {
	ctx := context.Background()
	images := newFakeImages()
	repo := &failingProductRepo{ProductRepository: memory.NewProductRepository(testClock)}
	uc := NewProductUsecase(repo, images, testClock)

	p, err := uc.Create(ctx, seller, draft(), photo("keep.png"))
	require.NoError(t, err)

	repo.failCreate = true
	_, err = uc.Create(ctx, seller, draft(), photo("lost.png"))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"https://img.test/products/1729069200000_lost.png"}, images.deleted)

	repo.failUpdate = true
	price := int64(99000)
	_, err = uc.Update(ctx, seller, p.ID, productdom.Patch{Price: &price}, photo("new.png"))
	assert.ErrorIs(t, err, errBoom)
	require.Len(t, images.deleted, 2)
	assert.Contains(t, images.deleted[1], "_new.png")
	assert.NotContains(t, images.deleted, p.ImageURL)

	cur, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ImageURL, cur.ImageURL)
}
