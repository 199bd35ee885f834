/**
 * @description
 * This file contains the core business logic for pygamentos. The `Service`
 * struct orchestrates all money movement operations, coordinating between the
 * database repository and the message broker.
 *
 * Key features:
 * - Implements the main use cases: pix transfers and deposits.
 * - Validates amounts and tax rates before touching the store.
 * - Delegates the atomic debit/credit/append unit to the repository, which is
 *   the only balance writer in the system.
 * - Publishes events to RabbitMQ for asynchronous processing after settlement.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For event publication.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BarrosRichard/pygamentos/internal/domain"
	"github.com/BarrosRichard/pygamentos/internal/store"
	"github.com/BarrosRichard/pygamentos/pkg/rabbitmq"
)

// Service provides the core business logic for the payments ledger.
type Service struct {
	repo          store.Repository
	eventProducer rabbitmq.Publisher
	jwtSecret     []byte
	tokenTTL      time.Duration
}

// NewService creates a new service instance.
func NewService(repo store.Repository, producer rabbitmq.Publisher, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:          repo,
		eventProducer: producer,
		jwtSecret:     []byte(jwtSecret),
		tokenTTL:      tokenTTL,
	}
}

// Transfer moves money from the authenticated sender to the account behind a
// pix key, charging the tax of the chosen transaction type on top. The tax is
// retained by the system: the receiver is credited the requested amount only.
// Returns the ledger entry created for the settled transfer.
func (s *Service) Transfer(ctx context.Context, senderUserID uuid.UUID, req domain.TransferRequest) (*domain.TransactionEntry, error) {
	// 1. Reject bad amounts before any store I/O.
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	// 2. Resolve the sender's account.
	senderAccount, err := s.repo.FindAccountByUserID(ctx, senderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find sender account: %w", err)
	}

	// 3. Resolve the receiver via the pix key collaborator.
	receiverAccount, err := s.repo.ResolveAccountByPixKey(ctx, strings.TrimSpace(req.ReceiverPixKey))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receiver: %w", err)
	}
	if receiverAccount.ID == senderAccount.ID {
		return nil, ErrInvalidReceiver
	}

	// 4. Resolve the transaction type and its tax.
	txType, err := s.repo.GetTransactionType(ctx, req.TransactionTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve transaction type: %w", err)
	}

	// 5. Compute the tax-inclusive total the sender will be charged.
	totalCharged, err := ComputeTotalCharged(req.Amount, txType.Tax)
	if err != nil {
		return nil, err
	}

	// 6. Cheap pre-check on the last known balance. The settle operation
	// re-checks under the row locks, which is the authoritative decision.
	if senderAccount.Balance.LessThan(totalCharged) {
		return nil, store.ErrInsufficientFunds
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "TRANSFERENCIA"
	}

	// 7. Commit debit, credit, and entry as one atomic unit.
	entry, err := s.repo.SettleTransfer(ctx, store.SettleTransferParams{
		EntryID:           uuid.New(),
		SenderAccountID:   senderAccount.ID,
		ReceiverAccountID: receiverAccount.ID,
		TransactionTypeID: txType.ID,
		Amount:            req.Amount.Round(ledgerPrecision),
		TotalCharged:      totalCharged,
		Description:       description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle transfer: %w", err)
	}

	// 8. Publish after settlement; a publish failure never unwinds the entry.
	if s.eventProducer != nil {
		event := domain.TransferCompletedEvent{
			EntryID:           entry.ID,
			SenderAccountID:   senderAccount.ID,
			ReceiverAccountID: receiverAccount.ID,
			TransactionTypeID: txType.ID,
			Amount:            req.Amount.Round(ledgerPrecision),
			TotalCharged:      totalCharged,
			OccurredAt:        entry.CreatedAt,
		}
		if pubErr := s.eventProducer.PublishTransferCompleted(ctx, event); pubErr != nil {
			log.Printf("level=warn component=app msg=\"transfer event publish failed\" entry_id=%s err=%v", entry.ID, pubErr)
		}
	}

	return entry, nil
}

// Deposit credits an account from the external source. Deposits never fail on
// funds; the only validation is a strictly positive amount.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, req domain.DepositRequest) (*domain.TransactionEntry, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	account, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "DEPOSITO"
	}

	entry, err := s.repo.SettleDeposit(ctx, store.SettleDepositParams{
		EntryID:           uuid.New(),
		AccountID:         account.ID,
		TransactionTypeID: domain.DepositTransactionTypeID,
		Amount:            req.Amount.Round(ledgerPrecision),
		Description:       description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle deposit: %w", err)
	}

	if s.eventProducer != nil {
		event := domain.DepositCompletedEvent{
			EntryID:    entry.ID,
			AccountID:  account.ID,
			Amount:     entry.Amount,
			OccurredAt: entry.CreatedAt,
		}
		if pubErr := s.eventProducer.PublishDepositCompleted(ctx, event); pubErr != nil {
			log.Printf("level=warn component=app msg=\"deposit event publish failed\" entry_id=%s err=%v", entry.ID, pubErr)
		}
	}

	return entry, nil
}

// CreateTransactionType registers a new transfer category in the tax catalog.
func (s *Service) CreateTransactionType(ctx context.Context, req domain.CreateTransactionTypeRequest) (*domain.TransactionType, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidTransactionType)
	}
	if req.Tax.IsNegative() {
		return nil, ErrInvalidTaxRate
	}

	txType := &domain.TransactionType{
		Description: description,
		Tax:         req.Tax,
	}
	if err := s.repo.CreateTransactionType(ctx, txType); err != nil {
		return nil, fmt.Errorf("failed to create transaction type: %w", err)
	}
	return txType, nil
}

// ListTransactionTypes returns all transfer categories.
func (s *Service) ListTransactionTypes(ctx context.Context) ([]domain.TransactionType, error) {
	return s.repo.ListTransactionTypes(ctx)
}

// GetTransactionTax returns the tax rate for one transaction type.
func (s *Service) GetTransactionTax(ctx context.Context, typeID int32) (decimal.Decimal, error) {
	txType, err := s.repo.GetTransactionType(ctx, typeID)
	if err != nil {
		return decimal.Zero, err
	}
	return txType.Tax, nil
}
