// internal/domain/cart/receipt.go
package cart

import (
	"errors"
	"time"
)

var ErrEmptyCart = errors.New("cart: cart is empty")

// Receipt is the snapshot taken at checkout, before the cart is emptied.
type Receipt struct {
	UserID    string    `json:"userId"`
	Lines     []Entry   `json:"lines"`
	Total     int64     `json:"total"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewReceipt captures the current lines of c. An empty cart has no receipt.
func NewReceipt(c *Cart, now time.Time) (Receipt, error) {
	if c == nil || len(c.Items) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	return Receipt{
		UserID:    c.UserID,
		Lines:     cloneItems(c.Items),
		Total:     c.Total(),
		Count:     c.Count(),
		CreatedAt: now,
	}, nil
}
