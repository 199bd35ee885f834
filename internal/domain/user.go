/**
 * @description
 * This file defines the user and account domain models. A user owns exactly
 * one account; the account carries the authoritative balance. All balance
 * mutation funnels through the transfer engine; no other component writes it.
 *
 * @dependencies
 * - time: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - github.com/shopspring/decimal: For exact money values.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a registered user of the payments system.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account is a user's wallet. Balance is the authoritative value: the sum of
// all settled entry effects on this account, maintained by the transfer engine
// under the same atomic unit that writes the entries.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// RegisterRequest is the DTO for user registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the DTO for user authentication.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
