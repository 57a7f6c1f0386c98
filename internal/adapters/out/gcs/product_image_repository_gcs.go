// internal/adapters/out/gcs/product_image_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"cloud.google.com/go/storage"
)

// ProductImageRepositoryGCS stores product photos.
//
// - bucket: one bucket for all product images
// - objectPath: products/<unix-ms>_<filename>
//
// Public access is expected to come from bucket IAM ("allUsers: Storage
// Object Viewer", uniform access); no per-object ACL is set.
type ProductImageRepositoryGCS struct {
	Client *storage.Client
	Bucket string
	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string
}

func NewProductImageRepositoryGCS(client *storage.Client, bucket string) *ProductImageRepositoryGCS {
	return &ProductImageRepositoryGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: defaultPublicBaseURL,
	}
}

func (r *ProductImageRepositoryGCS) bucket() (*storage.BucketHandle, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_image_repository_gcs: storage client is nil")
	}
	if strings.TrimSpace(r.Bucket) == "" {
		return nil, errors.New("product_image_repository_gcs: bucket is empty")
	}
	return r.Client.Bucket(r.Bucket), nil
}

// Upload streams r into objectPath and returns its public URL.
func (r *ProductImageRepositoryGCS) Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	bh, err := r.bucket()
	if err != nil {
		return "", err
	}
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	if obj == "" {
		return "", errors.New("product_image_repository_gcs: objectPath is empty")
	}

	w := bh.Object(obj).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	w.CacheControl = "public, max-age=3600"

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	u := PublicURL(r.PublicBaseURL, r.Bucket, obj)
	log.Printf("[gcs] uploaded object=%s", obj)
	return u, nil
}

// DeleteByURL removes an image previously returned by Upload.
// URLs outside this bucket and already-missing objects are ignored.
func (r *ProductImageRepositoryGCS) DeleteByURL(ctx context.Context, imageURL string) error {
	bh, err := r.bucket()
	if err != nil {
		return err
	}
	b, obj, ok := ParseURL(imageURL)
	if !ok || b != r.Bucket {
		return nil
	}
	if err := bh.Object(obj).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}
