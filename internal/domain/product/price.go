// internal/domain/product/price.go
package product

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatRupiah renders a price the way the storefront shows it: "Rp 150.000".
func FormatRupiah(amount int64) string {
	p := message.NewPrinter(language.Indonesian)
	if amount < 0 {
		return p.Sprintf("-Rp %d", -amount)
	}
	return p.Sprintf("Rp %d", amount)
}

// PriceLabel is FormatRupiah(p.Price).
func (p Product) PriceLabel() string { return FormatRupiah(p.Price) }
