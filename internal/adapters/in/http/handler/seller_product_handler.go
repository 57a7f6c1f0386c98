// internal/adapters/in/http/handler/seller_product_handler.go
package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"coplace/internal/adapters/in/http/middleware"
	usecase "coplace/internal/application/usecase"
	productdom "coplace/internal/domain/product"
)

const maxUploadBytes = 10 << 20

// SellerProductHandler is the seller dashboard API. Mounted behind
// AuthMiddleware + RequireSeller.
//
// - GET    /seller/products
// - POST   /seller/products        JSON, or multipart with an optional "image" file
// - PATCH  /seller/products/{id}   same encodings; absent fields are untouched
// - DELETE /seller/products/{id}
type SellerProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewSellerProductHandler(uc *usecase.ProductUsecase) *SellerProductHandler {
	return &SellerProductHandler{uc: uc}
}

func (h *SellerProductHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.CurrentSession(r)
	if !ok {
		unauthorized(w)
		return
	}
	ps, err := h.uc.ListMine(r.Context(), sess)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": toProductViews(ps)})
}

func (h *SellerProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.CurrentSession(r)
	if !ok {
		unauthorized(w)
		return
	}
	patch, img, closeImg, err := readProductRequest(w, r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	defer closeImg()

	p, err := h.uc.Create(r.Context(), sess, draftFromPatch(patch), img)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductView(p))
}

func (h *SellerProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.CurrentSession(r)
	if !ok {
		unauthorized(w)
		return
	}
	patch, img, closeImg, err := readProductRequest(w, r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	defer closeImg()

	p, err := h.uc.Update(r.Context(), sess, chi.URLParam(r, "id"), patch, img)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductView(p))
}

func (h *SellerProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.CurrentSession(r)
	if !ok {
		unauthorized(w)
		return
	}
	if err := h.uc.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func draftFromPatch(p productdom.Patch) productdom.Draft {
	var d productdom.Draft
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Origin != nil {
		d.Origin = *p.Origin
	}
	if p.RoastLevel != nil {
		d.RoastLevel = *p.RoastLevel
	}
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.ImageURL != nil {
		d.ImageURL = *p.ImageURL
	}
	return d
}

// readProductRequest decodes a JSON or multipart product body into a Patch
// (nil = field absent) and the optional image part.
func readProductRequest(w http.ResponseWriter, r *http.Request) (productdom.Patch, *usecase.ImageUpload, func(), error) {
	noop := func() {}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		var p productdom.Patch
		if err := decodeJSON(r, &p); err != nil {
			return productdom.Patch{}, nil, noop, err
		}
		return p, nil, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return productdom.Patch{}, nil, noop, errors.New("invalid multipart body")
	}

	var p productdom.Patch
	form := r.MultipartForm.Value
	str := func(key string) *string {
		if vs, ok := form[key]; ok && len(vs) > 0 {
			s := vs[0]
			return &s
		}
		return nil
	}
	p.Name = str("name")
	p.Origin = str("origin")
	p.Description = str("description")
	if s := str("roastLevel"); s != nil {
		rl := productdom.RoastLevel(*s)
		p.RoastLevel = &rl
	}
	if s := str("price"); s != nil {
		n, err := strconv.ParseInt(strings.TrimSpace(*s), 10, 64)
		if err != nil {
			return productdom.Patch{}, nil, noop, errors.New("price must be an integer")
		}
		p.Price = &n
	}

	file, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return p, nil, func() { _ = r.MultipartForm.RemoveAll() }, nil
	}
	if err != nil {
		return productdom.Patch{}, nil, noop, errors.New("invalid image part")
	}
	img := &usecase.ImageUpload{
		Filename:    hdr.Filename,
		ContentType: partContentType(hdr),
		Body:        file,
	}
	return p, img, func() {
		_ = file.Close()
		_ = r.MultipartForm.RemoveAll()
	}, nil
}

func partContentType(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
