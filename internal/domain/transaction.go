/**
 * @description
 * This file defines the purchase-side domain models for the credits-service.
 * A CreditTransaction is the ledger record minted for every order; its
 * `settled` flag is the idempotency gate that keeps a payment from crediting
 * a balance more than once.
 *
 * @notes
 * - `Amount` is the plan price in whole currency units; the gateway order
 *   carries the subunit amount (price multiplied by the configured factor).
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// CreditTransaction is the ledger record for one credit purchase attempt.
// This struct maps directly to the `credit_transactions` table.
type CreditTransaction struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Plan      string    `json:"plan"`
	Credits   int64     `json:"credits"`
	Amount    int64     `json:"amount"`
	Settled   bool      `json:"settled"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateOrderRequest is the DTO for incoming purchase API requests.
type CreateOrderRequest struct {
	PlanID string `json:"planId"`
}

// VerifyPaymentRequest is the DTO for incoming payment verification requests.
// The order id is the gateway-side identifier returned at order creation.
type VerifyPaymentRequest struct {
	OrderID string `json:"razorpay_order_id"`
}
