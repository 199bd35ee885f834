package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BarrosRichard/pygamentos/internal/domain"
	"github.com/BarrosRichard/pygamentos/internal/store"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	transfers []domain.TransferCompletedEvent
	deposits  []domain.DepositCompletedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return nil
}

func (p *recordingPublisher) PublishTransferCompleted(ctx context.Context, event domain.TransferCompletedEvent) error {
	p.transfers = append(p.transfers, event)
	return nil
}

func (p *recordingPublisher) PublishDepositCompleted(ctx context.Context, event domain.DepositCompletedEvent) error {
	p.deposits = append(p.deposits, event)
	return nil
}

func (p *recordingPublisher) Close() {}

type testAccount struct {
	userID    uuid.UUID
	accountID uuid.UUID
	pixKey    string
}

// seedAccount creates a user, an account with the given balance, and a pix key
// pointing at it.
func seedAccount(t *testing.T, repo *store.MemoryRepository, username, pixKey, balance string) testAccount {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{ID: uuid.New(), Username: username, PasswordHash: "x"}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}

	account := &domain.Account{ID: uuid.New(), UserID: user.ID, Balance: decimal.RequireFromString(balance)}
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("failed to create account for %s: %v", username, err)
	}

	if pixKey != "" {
		key := &domain.PixKey{ID: uuid.New(), UserID: user.ID, KeyTypeID: 1, Key: pixKey}
		if err := repo.CreatePixKey(ctx, key); err != nil {
			t.Fatalf("failed to create pix key for %s: %v", username, err)
		}
	}

	return testAccount{userID: user.ID, accountID: account.ID, pixKey: pixKey}
}

const defaultTestTTL = time.Hour

func newTestService(repo *store.MemoryRepository, publisher *recordingPublisher) *Service {
	return NewService(repo, publisher, "test-secret", defaultTestTTL)
}

func TestTransferSuccess(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	publisher := &recordingPublisher{}
	service := newTestService(repo, publisher)

	sender := seedAccount(t, repo, "alice", "alice@pix", "200.00")
	receiver := seedAccount(t, repo, "bob", "bob@pix", "10.00")

	txType, err := service.CreateTransactionType(ctx, domain.CreateTransactionTypeRequest{
		Description: "pix",
		Tax:         decimal.RequireFromString("0.05"),
	})
	if err != nil {
		t.Fatalf("failed to create transaction type: %v", err)
	}

	entry, err := service.Transfer(ctx, sender.userID, domain.TransferRequest{
		ReceiverPixKey:    receiver.pixKey,
		Amount:            decimal.RequireFromString("100.00"),
		TransactionTypeID: txType.ID,
	})
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if !entry.Amount.Equal(decimal.RequireFromString("105.00")) {
		t.Errorf("expected settled amount 105.00, got %s", entry.Amount)
	}
	if entry.SourceAccountID == nil || *entry.SourceAccountID != sender.accountID {
		t.Errorf("expected source account %s, got %v", sender.accountID, entry.SourceAccountID)
	}
	if entry.Description != "TRANSFERENCIA" {
		t.Errorf("expected default description TRANSFERENCIA, got %q", entry.Description)
	}

	senderAccount, err := repo.FindAccountByID(ctx, sender.accountID)
	if err != nil {
		t.Fatalf("failed to reload sender account: %v", err)
	}
	if !senderAccount.Balance.Equal(decimal.RequireFromString("95.00")) {
		t.Errorf("expected sender balance 95.00, got %s", senderAccount.Balance)
	}

	receiverAccount, err := repo.FindAccountByID(ctx, receiver.accountID)
	if err != nil {
		t.Fatalf("failed to reload receiver account: %v", err)
	}
	if !receiverAccount.Balance.Equal(decimal.RequireFromString("110.00")) {
		t.Errorf("expected receiver balance 110.00, got %s", receiverAccount.Balance)
	}

	if len(publisher.transfers) != 1 {
		t.Fatalf("expected 1 transfer event, got %d", len(publisher.transfers))
	}
	if !publisher.transfers[0].TotalCharged.Equal(decimal.RequireFromString("105.00")) {
		t.Errorf("expected event total 105.00, got %s", publisher.transfers[0].TotalCharged)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	publisher := &recordingPublisher{}
	service := newTestService(repo, publisher)

	sender := seedAccount(t, repo, "alice", "alice@pix", "100.00")
	receiver := seedAccount(t, repo, "bob", "bob@pix", "10.00")

	txType, err := service.CreateTransactionType(ctx, domain.CreateTransactionTypeRequest{
		Description: "pix",
		Tax:         decimal.RequireFromString("0.05"),
	})
	if err != nil {
		t.Fatalf("failed to create transaction type: %v", err)
	}

	// 100.00 * 1.05 = 105.00 exceeds the 100.00 balance.
	_, err = service.Transfer(ctx, sender.userID, domain.TransferRequest{
		ReceiverPixKey:    receiver.pixKey,
		Amount:            decimal.RequireFromString("100.00"),
		TransactionTypeID: txType.ID,
	})
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Neither balance may move on a rejected transfer.
	senderAccount, _ := repo.FindAccountByID(ctx, sender.accountID)
	if !senderAccount.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("expected sender balance unchanged at 100.00, got %s", senderAccount.Balance)
	}
	receiverAccount, _ := repo.FindAccountByID(ctx, receiver.accountID)
	if !receiverAccount.Balance.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected receiver balance unchanged at 10.00, got %s", receiverAccount.Balance)
	}
	if len(publisher.transfers) != 0 {
		t.Errorf("expected no events on rejected transfer, got %d", len(publisher.transfers))
	}

	history, err := repo.FindEntriesByAccount(ctx, sender.accountID)
	if err != nil {
		t.Fatalf("failed to load history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected no ledger entries on rejected transfer, got %d", len(history))
	}
}

func TestTransferExactBalanceSucceeds(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	service := newTestService(repo, &recordingPublisher{})

	sender := seedAccount(t, repo, "alice", "alice@pix", "105.00")
	receiver := seedAccount(t, repo, "bob", "bob@pix", "0.00")

	txType, err := service.CreateTransactionType(ctx, domain.CreateTransactionTypeRequest{
		Description: "pix",
		Tax:         decimal.RequireFromString("0.05"),
	})
	if err != nil {
		t.Fatalf("failed to create transaction type: %v", err)
	}

	_, err = service.Transfer(ctx, sender.userID, domain.TransferRequest{
		ReceiverPixKey:    receiver.pixKey,
		Amount:            decimal.RequireFromString("100.00"),
		TransactionTypeID: txType.ID,
	})
	if err != nil {
		t.Fatalf("transfer at exact balance should succeed: %v", err)
	}

	senderAccount, _ := repo.FindAccountByID(ctx, sender.accountID)
	if !senderAccount.Balance.Equal(decimal.Zero) {
		t.Errorf("expected sender balance 0, got %s", senderAccount.Balance)
	}
}

func TestTransferToSelfRejected(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	service := newTestService(repo, &recordingPublisher{})

	sender := seedAccount(t, repo, "alice", "alice@pix", "100.00")

	txType, err := service.CreateTransactionType(ctx, domain.CreateTransactionTypeRequest{
		Description: "pix",
		Tax:         decimal.Zero,
	})
	if err != nil {
		t.Fatalf("failed to create transaction type: %v", err)
	}

	_, err = service.Transfer(ctx, sender.userID, domain.TransferRequest{
		ReceiverPixKey:    sender.pixKey,
		Amount:            decimal.RequireFromString("10.00"),
		TransactionTypeID: txType.ID,
	})
	if !errors.Is(err, ErrInvalidReceiver) {
		t.Fatalf("expected ErrInvalidReceiver, got %v", err)
	}
}

func TestTransferValidationErrors(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	service := newTestService(repo, &recordingPublisher{})

	sender := seedAccount(t, repo, "alice", "alice@pix", "100.00")
	seedAccount(t, repo, "bob", "bob@pix", "0.00")

	txType, err := service.CreateTransactionType(ctx, domain.CreateTransactionTypeRequest{
		Description: "pix",
		Tax:         decimal.Zero,
	})
	if err != nil {
		t.Fatalf("failed to create transaction type: %v", err)
	}

	testCases := []struct {
		name    string
		req     domain.TransferRequest
		wantErr error
	}{
		{
			name: "Zero amount",
			req: domain.TransferRequest{
				ReceiverPixKey:    "bob@pix",
				Amount:            decimal.Zero,
				TransactionTypeID: txType.ID,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "Negative amount",
			req: domain.TransferRequest{
				ReceiverPixKey:    "bob@pix",
				Amount:            decimal.RequireFromString("-1.00"),
				TransactionTypeID: txType.ID,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "Unknown pix key",
			req: domain.TransferRequest{
				ReceiverPixKey:    "nobody@pix",
				Amount:            decimal.RequireFromString("10.00"),
				TransactionTypeID: txType.ID,
			},
			wantErr: store.ErrPixKeyNotFound,
		},
		{
			name: "Unknown transaction type",
			req: domain.TransferRequest{
				ReceiverPixKey:    "bob@pix",
				Amount:            decimal.RequireFromString("10.00"),
				TransactionTypeID: 999,
			},
			wantErr: store.ErrTransactionTypeNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Transfer(ctx, sender.userID, tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestMoneyConservation runs a mixed sequence of deposits and taxed transfers
// and checks the conservation law: the sum of all account balances plus the
// tax retained by the system equals everything ever deposited.
func TestMoneyConservation(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	service := newTestService(repo, &recordingPublisher{})

	alice := seedAccount(t, repo, "alice", "alice@pix", "0.00")
	bob := seedAccount(t, repo, "bob", "bob@pix", "0.00")
	carol := seedAccount(t, repo, "carol", "carol@pix", "0.00")

	txType, err := service.CreateTransactionType(ctx, domain.CreateTransactionTypeRequest{
		Description: "pix",
		Tax:         decimal.RequireFromString("0.05"),
	})
	if err != nil {
		t.Fatalf("failed to create transaction type: %v", err)
	}

	deposited := decimal.Zero
	for _, d := range []struct {
		who    testAccount
		amount string
	}{
		{alice, "1000.00"},
		{bob, "250.00"},
		{alice, "33.33"},
	} {
		if _, err := service.Deposit(ctx, d.who.userID, domain.DepositRequest{Amount: decimal.RequireFromString(d.amount)}); err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
		deposited = deposited.Add(decimal.RequireFromString(d.amount))
	}

	taxRetained := decimal.Zero
	for _, tr := range []struct {
		from   testAccount
		toKey  string
		amount string
	}{
		{alice, "bob@pix", "100.00"},
		{bob, "carol@pix", "40.00"},
		{alice, "carol@pix", "17.50"},
		{carol, "alice@pix", "10.00"},
	} {
		amount := decimal.RequireFromString(tr.amount)
		entry, err := service.Transfer(ctx, tr.from.userID, domain.TransferRequest{
			ReceiverPixKey:    tr.toKey,
			Amount:            amount,
			TransactionTypeID: txType.ID,
		})
		if err != nil {
			t.Fatalf("transfer of %s failed: %v", tr.amount, err)
		}
		taxRetained = taxRetained.Add(entry.Amount.Sub(amount))
	}

	total := decimal.Zero
	for _, acct := range []testAccount{alice, bob, carol} {
		balance, err := service.GetBalance(ctx, acct.userID)
		if err != nil {
			t.Fatalf("balance read failed: %v", err)
		}
		total = total.Add(balance)
	}

	if !total.Add(taxRetained).Equal(deposited) {
		t.Errorf("money not conserved: balances %s + tax %s != deposits %s", total, taxRetained, deposited)
	}
}

func TestDepositSuccess(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	publisher := &recordingPublisher{}
	service := newTestService(repo, publisher)

	holder := seedAccount(t, repo, "alice", "alice@pix", "10.00")

	entry, err := service.Deposit(ctx, holder.userID, domain.DepositRequest{
		Amount: decimal.RequireFromString("50.00"),
	})
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	if entry.SourceAccountID != nil {
		t.Errorf("expected external source, got %v", entry.SourceAccountID)
	}
	if entry.Description != "DEPOSITO" {
		t.Errorf("expected default description DEPOSITO, got %q", entry.Description)
	}
	if entry.TransactionTypeID != domain.DepositTransactionTypeID {
		t.Errorf("expected deposit transaction type, got %d", entry.TransactionTypeID)
	}

	account, _ := repo.FindAccountByID(ctx, holder.accountID)
	if !account.Balance.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("expected balance 60.00, got %s", account.Balance)
	}

	if len(publisher.deposits) != 1 {
		t.Fatalf("expected 1 deposit event, got %d", len(publisher.deposits))
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	service := newTestService(repo, &recordingPublisher{})

	holder := seedAccount(t, repo, "alice", "alice@pix", "10.00")

	_, err := service.Deposit(ctx, holder.userID, domain.DepositRequest{Amount: decimal.Zero})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreateTransactionTypeValidation(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	service := newTestService(repo, &recordingPublisher{})

	_, err := service.CreateTransactionType(ctx, domain.CreateTransactionTypeRequest{Description: "  "})
	if !errors.Is(err, ErrInvalidTransactionType) {
		t.Fatalf("expected ErrInvalidTransactionType, got %v", err)
	}

	_, err = service.CreateTransactionType(ctx, domain.CreateTransactionTypeRequest{
		Description: "pix",
		Tax:         decimal.RequireFromString("-0.01"),
	})
	if !errors.Is(err, ErrInvalidTaxRate) {
		t.Fatalf("expected ErrInvalidTaxRate, got %v", err)
	}
}

func TestGetTransactionTax(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	service := newTestService(repo, &recordingPublisher{})

	txType, err := service.CreateTransactionType(ctx, domain.CreateTransactionTypeRequest{
		Description: "ted",
		Tax:         decimal.RequireFromString("0.02"),
	})
	if err != nil {
		t.Fatalf("failed to create transaction type: %v", err)
	}

	tax, err := service.GetTransactionTax(ctx, txType.ID)
	if err != nil {
		t.Fatalf("failed to get tax: %v", err)
	}
	if !tax.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("expected tax 0.02, got %s", tax)
	}

	if _, err := service.GetTransactionTax(ctx, 999); !errors.Is(err, store.ErrTransactionTypeNotFound) {
		t.Fatalf("expected ErrTransactionTypeNotFound, got %v", err)
	}
}
