/**
 * @description
 * This file defines the pix key domain models. A pix key is a user-chosen
 * identifier (email, phone, random token) used to address transfers to an
 * account without exposing the account's primary key.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// PixKey links a user-chosen identifier to an account owner.
// Keys are globally unique across all users.
type PixKey struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	KeyTypeID int32     `json:"key_type_id"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// PixKeyType categorizes keys (e.g. "email", "phone", "random").
type PixKeyType struct {
	ID          int32  `json:"id"`
	Description string `json:"description"`
}

// CreatePixKeyRequest is the DTO for registering a new pix key.
type CreatePixKeyRequest struct {
	KeyTypeID int32  `json:"key_type_id"`
	Key       string `json:"key"`
}

// CreatePixKeyTypeRequest is the DTO for registering a new pix key type.
type CreatePixKeyTypeRequest struct {
	Description string `json:"description"`
}

// PixKeyOwner is the public view returned when resolving a pix key:
// just enough for a sender to confirm who they are paying.
type PixKeyOwner struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}
