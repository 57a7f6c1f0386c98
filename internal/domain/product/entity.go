// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"
	"time"
)

// RoastLevel is the roast profile of a coffee product.
type RoastLevel string

const (
	RoastLight  RoastLevel = "light"
	RoastMedium RoastLevel = "medium"
	RoastDark   RoastLevel = "dark"
)

func (r RoastLevel) Valid() bool {
	switch r {
	case RoastLight, RoastMedium, RoastDark:
		return true
	}
	return false
}

// Label is the display label ("Medium Roast"). Unknown levels fall back to medium.
func (r RoastLevel) Label() string {
	switch r {
	case RoastLight:
		return "Light Roast"
	case RoastDark:
		return "Dark Roast"
	default:
		return "Medium Roast"
	}
}

// AllOrigins is the origin filter value meaning "no origin restriction".
const AllOrigins = "Semua"

// Origins are the growing regions offered by the seller form.
// Origin stays an open string; products with other origins are accepted.
var Origins = []string{
	"Aceh Gayo",
	"Toraja",
	"Bali Kintamani",
	"Flores Bajawa",
	"Jawa Barat",
	"Papua Wamena",
	"Lampung",
	"Bengkulu",
}

// MaxPrice is the highest accepted unit price in rupiah.
const MaxPrice int64 = 1_000_000_000

var (
	ErrNotFound           = errors.New("product: not found")
	ErrInvalidID          = errors.New("product: invalid id")
	ErrInvalidName        = errors.New("product: name is required")
	ErrInvalidOrigin      = errors.New("product: origin is required")
	ErrInvalidRoastLevel  = errors.New("product: roastLevel must be light, medium or dark")
	ErrInvalidPrice       = errors.New("product: price must be between 0 and 1.000.000.000")
	ErrInvalidDescription = errors.New("product: description is required")
	ErrInvalidOwner       = errors.New("product: createdBy is required")
)

// Product is a catalog entry (Firestore: products/{id}).
// Only the owning seller mutates it; identity is ID.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Origin      string     `json:"origin"`
	RoastLevel  RoastLevel `json:"roastLevel"`
	Price       int64      `json:"price"` // rupiah
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Draft is the seller-provided part of a product.
type Draft struct {
	Name        string     `json:"name"`
	Origin      string     `json:"origin"`
	RoastLevel  RoastLevel `json:"roastLevel"`
	Price       int64      `json:"price"`
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl,omitempty"`
}

// Normalize trims every text field.
func (d Draft) Normalize() Draft {
	return Draft{
		Name:        strings.TrimSpace(d.Name),
		Origin:      strings.TrimSpace(d.Origin),
		RoastLevel:  RoastLevel(strings.ToLower(strings.TrimSpace(string(d.RoastLevel)))),
		Price:       d.Price,
		Description: strings.TrimSpace(d.Description),
		ImageURL:    strings.TrimSpace(d.ImageURL),
	}
}

// Validate checks the required fields of a (normalized) draft.
func (d Draft) Validate() error {
	if d.Name == "" {
		return ErrInvalidName
	}
	if d.Origin == "" {
		return ErrInvalidOrigin
	}
	if !d.RoastLevel.Valid() {
		return ErrInvalidRoastLevel
	}
	if d.Price < 0 || d.Price > MaxPrice {
		return ErrInvalidPrice
	}
	if d.Description == "" {
		return ErrInvalidDescription
	}
	return nil
}

// New builds a product from a draft. ID and CreatedAt are assigned by the store.
func New(d Draft, ownerID string) (Product, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return Product{}, err
	}
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return Product{}, ErrInvalidOwner
	}
	return Product{
		Name:        d.Name,
		Origin:      d.Origin,
		RoastLevel:  d.RoastLevel,
		Price:       d.Price,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		CreatedBy:   owner,
	}, nil
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name        *string     `json:"name,omitempty"`
	Origin      *string     `json:"origin,omitempty"`
	RoastLevel  *RoastLevel `json:"roastLevel,omitempty"`
	Price       *int64      `json:"price,omitempty"`
	Description *string     `json:"description,omitempty"`
	ImageURL    *string     `json:"imageUrl,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Origin == nil && p.RoastLevel == nil &&
		p.Price == nil && p.Description == nil && p.ImageURL == nil
}

// Apply returns a copy of prod with the patch applied and validated.
func (p Patch) Apply(prod Product) (Product, error) {
	d := Draft{
		Name:        prod.Name,
		Origin:      prod.Origin,
		RoastLevel:  prod.RoastLevel,
		Price:       prod.Price,
		Description: prod.Description,
		ImageURL:    prod.ImageURL,
	}
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
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return Product{}, err
	}

	out := prod
	out.Name = d.Name
	out.Origin = d.Origin
	out.RoastLevel = d.RoastLevel
	out.Price = d.Price
	out.Description = d.Description
	out.ImageURL = d.ImageURL
	return out, nil
}
