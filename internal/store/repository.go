/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by pygamentos. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * SettleTransfer and SettleDeposit are the only paths that mutate balances.
 * Each executes as a single atomic unit: either every balance change and the
 * ledger entry land together, or nothing does.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - github.com/shopspring/decimal: For exact money values.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BarrosRichard/pygamentos/internal/domain"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUsernameTaken           = errors.New("username already registered")
	ErrAccountNotFound         = errors.New("account not found")
	ErrPixKeyNotFound          = errors.New("pix key not found")
	ErrPixKeyTaken             = errors.New("pix key already registered")
	ErrTransactionTypeNotFound = errors.New("transaction type not found")
	ErrCreditCardNotFound      = errors.New("credit card not found")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	// ErrCommitConflict marks a transient serialization or lock-ordering
	// failure. The failed call left no partial state; callers may retry.
	ErrCommitConflict = errors.New("commit conflict")
)

// SettleTransferParams carries everything the store needs to commit a transfer
// as one atomic unit. TotalCharged (amount plus tax) is debited from the
// sender; Amount alone is credited to the receiver. The tax difference is
// retained by the system. The entry records TotalCharged.
type SettleTransferParams struct {
	EntryID           uuid.UUID
	SenderAccountID   uuid.UUID
	ReceiverAccountID uuid.UUID
	TransactionTypeID int32
	Amount            decimal.Decimal
	TotalCharged      decimal.Decimal
	Description       string
}

// SettleDepositParams carries everything the store needs to commit a deposit.
// The entry's source account is the external sentinel (nil).
type SettleDepositParams struct {
	EntryID           uuid.UUID
	AccountID         uuid.UUID
	TransactionTypeID int32
	Amount            decimal.Decimal
	Description       string
}

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User and account methods
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	CreateAccount(ctx context.Context, account *domain.Account) error
	FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)

	// Pix key methods
	CreatePixKey(ctx context.Context, key *domain.PixKey) error
	FindPixKeysByUserID(ctx context.Context, userID uuid.UUID) ([]domain.PixKey, error)
	ResolveAccountByPixKey(ctx context.Context, key string) (*domain.Account, error)
	FindPixKeyOwner(ctx context.Context, key string) (*domain.PixKeyOwner, error)
	CreatePixKeyType(ctx context.Context, keyType *domain.PixKeyType) error
	ListPixKeyTypes(ctx context.Context) ([]domain.PixKeyType, error)

	// Credit card methods
	CreateCreditCard(ctx context.Context, card *domain.CreditCard) error
	FindCreditCardsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CreditCard, error)
	DeleteCreditCard(ctx context.Context, cardID uuid.UUID, userID uuid.UUID) error

	// Tax catalog methods
	CreateTransactionType(ctx context.Context, txType *domain.TransactionType) error
	GetTransactionType(ctx context.Context, typeID int32) (*domain.TransactionType, error)
	ListTransactionTypes(ctx context.Context) ([]domain.TransactionType, error)

	// Ledger methods. SettleTransfer re-checks funds under the row locks and
	// returns ErrInsufficientFunds without mutating anything when the sender's
	// locked balance no longer covers TotalCharged.
	SettleTransfer(ctx context.Context, params SettleTransferParams) (*domain.TransactionEntry, error)
	SettleDeposit(ctx context.Context, params SettleDepositParams) (*domain.TransactionEntry, error)

	// Query methods
	FindEntriesByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.HistoryEntry, error)
}
