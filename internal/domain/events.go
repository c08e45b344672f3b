package domain

import "github.com/google/uuid"

// CreditsSettledEvent is the message payload published after a payment is
// confirmed and the purchased credits have been applied to the balance.
type CreditsSettledEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	UserID        uuid.UUID `json:"user_id"`
	Plan          string    `json:"plan"`
	Credits       int64     `json:"credits"`
}
