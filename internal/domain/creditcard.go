/**
 * @description
 * This file defines the credit card domain models. Cards are stored masked;
 * the service never persists a full PAN, only the last four digits.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// CreditCard is a user's registered card, stored masked.
type CreditCard struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	HolderName   string    `json:"holder_name"`
	NumberMasked string    `json:"number_masked"`
	Brand        string    `json:"brand"`
	ExpiryMonth  int       `json:"expiry_month"`
	ExpiryYear   int       `json:"expiry_year"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateCreditCardRequest is the DTO for registering a card. The full number
// is accepted at the boundary, masked immediately, and never stored.
type CreateCreditCardRequest struct {
	HolderName  string `json:"holder_name"`
	Number      string `json:"number"`
	Brand       string `json:"brand"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
}
