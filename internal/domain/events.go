/**
 * @description
 * This file defines the event payloads published to RabbitMQ after a money
 * movement settles. Events are fired after commit: a publish failure never
 * unwinds a settled ledger entry.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferCompletedEvent is published after a transfer settles.
// TotalCharged is the tax-inclusive amount debited from the sender;
// Amount is what the receiver was credited.
type TransferCompletedEvent struct {
	EntryID           uuid.UUID       `json:"entry_id"`
	SenderAccountID   uuid.UUID       `json:"sender_account_id"`
	ReceiverAccountID uuid.UUID       `json:"receiver_account_id"`
	TransactionTypeID int32           `json:"transaction_type_id"`
	Amount            decimal.Decimal `json:"amount"`
	TotalCharged      decimal.Decimal `json:"total_charged"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// DepositCompletedEvent is published after a deposit settles.
type DepositCompletedEvent struct {
	EntryID    uuid.UUID       `json:"entry_id"`
	AccountID  uuid.UUID       `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}
