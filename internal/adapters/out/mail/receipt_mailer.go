// internal/adapters/out/mail/receipt_mailer.go
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cartdom "coplace/internal/domain/cart"
	productdom "coplace/internal/domain/product"
)

// ReceiptMailer sends the checkout receipt through an EmailClient.
type ReceiptMailer struct {
	client      EmailClient
	fromAddress string
}

func NewReceiptMailer(client EmailClient, fromAddress string) *ReceiptMailer {
	return &ReceiptMailer{client: client, fromAddress: strings.TrimSpace(fromAddress)}
}

func (m *ReceiptMailer) SendReceipt(ctx context.Context, toEmail, displayName string, r cartdom.Receipt) error {
	if m == nil || m.client == nil {
		return errors.New("receipt_mailer: email client is nil")
	}
	to := strings.TrimSpace(toEmail)
	if to == "" {
		return errors.New("receipt_mailer: recipient is empty")
	}
	subject := fmt.Sprintf("Pesanan Anda (%d item) - %s", r.Count, productdom.FormatRupiah(r.Total))
	return m.client.Send(ctx, m.fromAddress, to, subject, ReceiptBody(displayName, r))
}

// ReceiptBody renders the plain-text receipt.
func ReceiptBody(displayName string, r cartdom.Receipt) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "Pelanggan"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Halo %s,\n\nTerima kasih sudah berbelanja. Ringkasan pesanan:\n\n", name)
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "- %s (%s) x%d = %s\n",
			l.Product.Name, l.Product.Origin, l.Quantity, productdom.FormatRupiah(l.Subtotal()))
	}
	fmt.Fprintf(&b, "\nTotal (%d item): %s\n", r.Count, productdom.FormatRupiah(r.Total))
	fmt.Fprintf(&b, "Waktu: %s\n", r.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	return b.String()
}
