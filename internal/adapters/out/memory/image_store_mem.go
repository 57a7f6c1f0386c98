// internal/adapters/out/memory/image_store_mem.go
package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ImageStore keeps uploaded blobs in memory and serves fake public URLs.
type ImageStore struct {
	mu      sync.Mutex
	BaseURL string
	objects map[string][]byte
	types   map[string]string
}

func NewImageStore(baseURL string) *ImageStore {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "memory://images"
	}
	return &ImageStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: map[string][]byte{},
		types:   map[string]string{},
	}
}

func (s *ImageStore) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	if obj == "" {
		return "", errors.New("image_store_mem: objectPath is empty")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[obj] = b
	s.types[obj] = contentType
	return s.BaseURL + "/" + obj, nil
}

// Object returns a stored blob (tests).
func (s *ImageStore) Object(objectPath string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[objectPath]
	return b, s.types[objectPath], ok
}

// DeleteByURL removes an object previously returned by Upload.
func (s *ImageStore) DeleteByURL(_ context.Context, url string) error {
	obj, ok := strings.CutPrefix(url, s.BaseURL+"/")
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, obj)
	delete(s.types, obj)
	return nil
}
