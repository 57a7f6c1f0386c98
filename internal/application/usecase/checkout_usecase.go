// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	cartdom "coplace/internal/domain/cart"
	"coplace/internal/domain/common"
)

// ReceiptMailer delivers the checkout receipt (SendGrid in production).
type ReceiptMailer interface {
	SendReceipt(ctx context.Context, toEmail, displayName string, r cartdom.Receipt) error
}

type CheckoutUsecase struct {
	mailer ReceiptMailer
	clock  common.Clock
}

// NewCheckoutUsecase accepts a nil mailer (receipts are then not mailed).
func NewCheckoutUsecase(mailer ReceiptMailer, clock common.Clock) *CheckoutUsecase {
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &CheckoutUsecase{mailer: mailer, clock: clock}
}

// Checkout snapshots the cart into a receipt, empties the cart and mails
// the receipt. Mail failures are logged only.
func (uc *CheckoutUsecase) Checkout(ctx context.Context, agg *CartAggregate) (cartdom.Receipt, error) {
	if agg == nil {
		return cartdom.Receipt{}, ErrCartInvalidArgument
	}
	now := uc.clock.Now()
	if _, err := cartdom.NewReceipt(agg.Snapshot(), now); err != nil {
		return cartdom.Receipt{}, err
	}

	// the receipt is built from what clear actually removed, so a remote
	// snapshot landing between the check above and the clear is respected
	removed, err := agg.clear(ctx)
	if err != nil {
		return cartdom.Receipt{}, fmt.Errorf("checkout: clear cart: %w", err)
	}
	sess := agg.Session()
	receipt, err := cartdom.NewReceipt(cartdom.FromItems(sess.UID, removed, now), now)
	if err != nil {
		return cartdom.Receipt{}, err
	}

	log.Printf("[checkout] uid=%s items=%d total=%d", sess.UID, receipt.Count, receipt.Total)

	if uc.mailer != nil && strings.TrimSpace(sess.Email) != "" {
		if err := uc.mailer.SendReceipt(ctx, sess.Email, sess.DisplayName, receipt); err != nil {
			log.Printf("[checkout] receipt mail failed uid=%s: %v", sess.UID, err)
		}
	}
	return receipt, nil
}
