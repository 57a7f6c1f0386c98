package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "coplace/internal/domain/cart"
	productdom "coplace/internal/domain/product"
)

type capturedMail struct {
	from, to, subject, body string
}

type captureClient struct {
	sent []capturedMail
}

func (c *captureClient) Send(_ context.Context, from, to, subject, body string) error {
	c.sent = append(c.sent, capturedMail{from, to, subject, body})
	return nil
}

func receipt() cartdom.Receipt {
	return cartdom.Receipt{
		UserID: "u1",
		Lines: []cartdom.Entry{
			{Product: productdom.Product{ID: "p1", Name: "Sapan", Origin: "Toraja", Price: 15000}, Quantity: 2},
			{Product: productdom.Product{ID: "p2", Name: "Wine", Origin: "Aceh Gayo", Price: 5000}, Quantity: 1},
		},
		Total:     35000,
		Count:     3,
		CreatedAt: time.Date(2024, 10, 16, 9, 30, 0, 0, time.UTC),
	}
}

func TestReceiptBody(t *testing.T) {
	body := ReceiptBody("Budi", receipt())
	assert.Contains(t, body, "Halo Budi,")
	assert.Contains(t, body, "- Sapan (Toraja) x2 = Rp 30.000\n")
	assert.Contains(t, body, "- Wine (Aceh Gayo) x1 = Rp 5.000\n")
	assert.Contains(t, body, "Total (3 item): Rp 35.000")
	assert.Contains(t, body, "2024-10-16 09:30 UTC")

	assert.Contains(t, ReceiptBody(" ", receipt()), "Halo Pelanggan,")
}

func TestReceiptMailer_SendReceipt(t *testing.T) {
	client := &captureClient{}
	m := NewReceiptMailer(client, " toko@example.com ")

	require.NoError(t, m.SendReceipt(context.Background(), "budi@example.com", "Budi", receipt()))
	require.Len(t, client.sent, 1)
	got := client.sent[0]
	assert.Equal(t, "toko@example.com", got.from)
	assert.Equal(t, "budi@example.com", got.to)
	assert.Equal(t, "Pesanan Anda (3 item) - Rp 35.000", got.subject)

	assert.Error(t, m.SendReceipt(context.Background(), "  ", "Budi", receipt()))
	assert.Error(t, NewReceiptMailer(nil, "x").SendReceipt(context.Background(), "a@b.c", "", receipt()))
}

func TestSendGridClient_RejectsMissingFields(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, NewSendGridClient("", "").Send(ctx, "a@b.c", "d@e.f", "s", "b"))
	assert.Error(t, NewSendGridClient("key", "").Send(ctx, "", "d@e.f", "s", "b"))
	assert.Error(t, NewSendGridClient("key", "").Send(ctx, "a@b.c", "", "s", "b"))
}
