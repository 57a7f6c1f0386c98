// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coplace/internal/domain/product"
)

// Line and quantity limits. Together with product.MaxPrice they keep
// Total and Count far inside int64 / int range.
const (
	MaxQuantity = 999
	MaxLines    = 100
)

var (
	ErrInvalidCart     = errors.New("cart: invalid")
	ErrInvalidProduct  = errors.New("cart: product id is required")
	ErrInvalidPrice    = errors.New("cart: product price out of range")
	ErrInvalidQuantity = fmt.Errorf("cart: quantity must be between 1 and %d", MaxQuantity)
	ErrCartFull        = fmt.Errorf("cart: at most %d different products", MaxLines)
)

// Entry is one cart line: a snapshot of the product taken when it was first
// added (later catalog edits do not flow into it) plus a quantity >= 1.
type Entry struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price x quantity.
func (e Entry) Subtotal() int64 {
	return e.Product.Price * int64(e.Quantity)
}

// Cart is the per-user cart document.
//   - docId = uid (Firestore: carts/{uid})
//   - Items keep insertion order and are unique by product id
//   - checkout empties Items; the document itself is never deleted
type Cart struct {
	UserID    string    `json:"userId"`
	Items     []Entry   `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCart returns an empty cart for uid.
func NewCart(uid string, now time.Time) (*Cart, error) {
	c := &Cart{
		UserID:    strings.TrimSpace(uid),
		Items:     []Entry{},
		UpdatedAt: now,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromItems rebuilds a cart from stored items, dropping lines with
// quantity <= 0 and merging duplicate product ids (first position wins).
func FromItems(uid string, items []Entry, updatedAt time.Time) *Cart {
	return &Cart{
		UserID:    strings.TrimSpace(uid),
		Items:     normalizeAndMerge(items),
		UpdatedAt: updatedAt,
	}
}

// Add increments the quantity of an existing line, keeping its original
// snapshot, or appends a copy of p.
func (c *Cart) Add(p product.Product, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return ErrInvalidProduct
	}
	if qty <= 0 || qty > MaxQuantity {
		return ErrInvalidQuantity
	}

	if idx := c.indexOf(id); idx >= 0 {
		if c.Items[idx].Quantity+qty > MaxQuantity {
			return ErrInvalidQuantity
		}
		c.Items[idx].Quantity += qty
	} else {
		if !priceInRange(p.Price) {
			return ErrInvalidPrice
		}
		if len(c.Items) >= MaxLines {
			return ErrCartFull
		}
		snap := p
		snap.ID = id
		c.Items = append(c.Items, Entry{Product: snap, Quantity: qty})
	}

	c.touch(now)
	return c.validate()
}

// SetQty overwrites a line's quantity. qty <= 0 removes the line;
// qty > MaxQuantity is rejected.
// Setting the quantity of a product that is not in the cart is a no-op.
func (c *Cart) SetQty(productID string, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	id := strings.TrimSpace(productID)
	if id == "" {
		return ErrInvalidProduct
	}
	if qty > MaxQuantity {
		return ErrInvalidQuantity
	}

	idx := c.indexOf(id)
	switch {
	case qty <= 0:
		if idx >= 0 {
			c.Items = removeIndex(c.Items, idx)
		}
	case idx >= 0:
		c.Items[idx].Quantity = qty
	}

	c.touch(now)
	return c.validate()
}

// Remove deletes a line. Missing lines are not an error.
func (c *Cart) Remove(productID string, now time.Time) error {
	return c.SetQty(productID, 0, now)
}

// Clear empties the cart and returns the removed lines.
func (c *Cart) Clear(now time.Time) ([]Entry, error) {
	if c == nil {
		return nil, ErrInvalidCart
	}
	snap := cloneItems(c.Items)
	c.Items = []Entry{}
	c.touch(now)
	return snap, c.validate()
}

// Total is the sum of price x quantity.
func (c *Cart) Total() int64 {
	if c == nil {
		return 0
	}
	var sum int64
	for _, it := range c.Items {
		sum += it.Subtotal()
	}
	return sum
}

// Count is the sum of quantities.
func (c *Cart) Count() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Find returns the line for productID.
func (c *Cart) Find(productID string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	if idx := c.indexOf(strings.TrimSpace(productID)); idx >= 0 {
		return c.Items[idx], true
	}
	return Entry{}, false
}

// Clone returns a deep copy.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	return &Cart{
		UserID:    c.UserID,
		Items:     cloneItems(c.Items),
		UpdatedAt: c.UpdatedAt,
	}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
}

func (c *Cart) validate() error {
	if c == nil {
		return ErrInvalidCart
	}
	if c.UserID == "" {
		return ErrInvalidCart
	}
	if c.Items == nil {
		c.Items = []Entry{}
	}
	if len(c.Items) > MaxLines {
		return ErrInvalidCart
	}
	seen := make(map[string]struct{}, len(c.Items))
	for _, it := range c.Items {
		if it.Product.ID == "" || !lineInRange(it) {
			return ErrInvalidCart
		}
		if _, dup := seen[it.Product.ID]; dup {
			return ErrInvalidCart
		}
		seen[it.Product.ID] = struct{}{}
	}
	return nil
}

// ----------------------------
// Helpers
// ----------------------------

func removeIndex(items []Entry, idx int) []Entry {
	if idx < 0 || idx >= len(items) {
		return items
	}
	out := make([]Entry, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}

func priceInRange(p int64) bool {
	return p >= 0 && p <= product.MaxPrice
}

func lineInRange(e Entry) bool {
	return e.Quantity >= 1 && e.Quantity <= MaxQuantity && priceInRange(e.Product.Price)
}

// normalizeAndMerge drops lines that are out of range, merges duplicates
// (capped at MaxQuantity) and keeps at most MaxLines lines.
func normalizeAndMerge(src []Entry) []Entry {
	out := make([]Entry, 0, len(src))
	pos := map[string]int{}
	for _, it := range src {
		id := strings.TrimSpace(it.Product.ID)
		if id == "" || !lineInRange(it) {
			continue
		}
		if i, ok := pos[id]; ok {
			out[i].Quantity = min(out[i].Quantity+it.Quantity, MaxQuantity)
			continue
		}
		if len(out) >= MaxLines {
			continue
		}
		it.Product.ID = id
		pos[id] = len(out)
		out = append(out, it)
	}
	return out
}

func cloneItems(src []Entry) []Entry {
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}
