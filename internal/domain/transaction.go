/**
 * @description
 * This file defines the core ledger domain models for pygamentos.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Using distinct types for API requests, database models, and event
 *   payloads ensures clear separation of concerns and type safety.
 * - Amounts use `decimal.Decimal` rounded to 2 decimal places, the ledger's
 *   minor-unit precision, which avoids floating-point drift with financial data.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositTransactionTypeID is the seeded zero-tax transaction type used for deposits.
const DepositTransactionTypeID = 1

// TransactionEntry is the immutable ledger record for any settled money movement.
// A nil SourceAccountID marks an external deposit: money entering the system
// with no account debited. Entries are append-only; nothing in the service
// updates or deletes them once written.
type TransactionEntry struct {
	ID                   uuid.UUID       `json:"id"`
	SourceAccountID      *uuid.UUID      `json:"source_account_id,omitempty"`
	DestinationAccountID uuid.UUID       `json:"destination_account_id"`
	TransactionTypeID    int32           `json:"transaction_type_id"`
	Amount               decimal.Decimal `json:"amount"` // settled, tax-inclusive
	Description          string          `json:"description"`
	CreatedAt            time.Time       `json:"created_at"`
}

// TransactionType maps a transfer category to its tax rate.
// Rates are fractions (0.02 = 2%). Historical entries store the already-taxed
// amount, so changing a rate never rewrites history.
type TransactionType struct {
	ID          int32           `json:"id"`
	Description string          `json:"description"`
	Tax         decimal.Decimal `json:"tax"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransferRequest is the DTO for incoming transfer API requests.
// The receiver is addressed by pix key, never by account ID.
type TransferRequest struct {
	ReceiverPixKey    string          `json:"receiver_pix_key"`
	Amount            decimal.Decimal `json:"amount"`
	TransactionTypeID int32           `json:"transaction_type_id"`
	Description       string          `json:"description"`
}

// DepositRequest is the DTO for incoming deposit API requests.
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// CreateTransactionTypeRequest is the DTO for registering a new transfer category.
type CreateTransactionTypeRequest struct {
	Description string          `json:"description"`
	Tax         decimal.Decimal `json:"tax"`
}

// HistoryEntry is one row of an account's statement. Amount carries the
// viewer's sign: negative when the account paid, positive when it received.
// Counterparty is the other side's username, or "external" for deposits.
type HistoryEntry struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty"`
	CreatedAt    time.Time       `json:"created_at"`
}
