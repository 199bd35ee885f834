/**
 * @description
 * This file provides an in-memory implementation of the `Repository` interface.
 * It backs the unit tests and local development without a database. The settle
 * operations hold per-account mutexes acquired in ascending account-ID order,
 * mirroring the row-lock ordering of the PostgreSQL implementation, so the
 * same concurrency properties hold.
 */

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BarrosRichard/pygamentos/internal/domain"
)

// MemoryRepository is a thread-safe in-memory implementation of Repository.
type MemoryRepository struct {
	mu           sync.Mutex
	users        map[uuid.UUID]domain.User
	accounts     map[uuid.UUID]domain.Account
	pixKeys      map[string]domain.PixKey
	pixKeyTypes  []domain.PixKeyType
	creditCards  map[uuid.UUID]domain.CreditCard
	txTypes      map[int32]domain.TransactionType
	nextTxTypeID int32
	entries      []domain.TransactionEntry

	lockMu       sync.Mutex
	accountLocks map[uuid.UUID]*sync.Mutex
}

// NewMemoryRepository creates an empty in-memory repository with the deposit
// transaction type seeded, matching the Postgres migration seed.
func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{
		users:        make(map[uuid.UUID]domain.User),
		accounts:     make(map[uuid.UUID]domain.Account),
		pixKeys:      make(map[string]domain.PixKey),
		creditCards:  make(map[uuid.UUID]domain.CreditCard),
		txTypes:      make(map[int32]domain.TransactionType),
		nextTxTypeID: domain.DepositTransactionTypeID,
		accountLocks: make(map[uuid.UUID]*sync.Mutex),
	}
	deposit := domain.TransactionType{Description: "deposit", Tax: decimal.Zero}
	_ = r.CreateTransactionType(context.Background(), &deposit)
	return r
}

func (r *MemoryRepository) accountLock(accountID uuid.UUID) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	if _, ok := r.accountLocks[accountID]; !ok {
		r.accountLocks[accountID] = &sync.Mutex{}
	}
	return r.accountLocks[accountID]
}

// lockAccounts acquires the per-account mutexes in ascending ID order and
// returns an unlock function. Fixed ordering prevents deadlock between two
// concurrent transfers that reference each other.
func (r *MemoryRepository) lockAccounts(ids ...uuid.UUID) func() {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	locks := make([]*sync.Mutex, 0, len(sorted))
	for _, id := range sorted {
		l := r.accountLock(id)
		l.Lock()
		locks = append(locks, l)
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := u
	return &found, nil
}

func (r *MemoryRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	r.accounts[account.ID] = *account
	return nil
}

func (r *MemoryRepository) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.UserID == userID {
			found := a
			return &found, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (r *MemoryRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	found := a
	return &found, nil
}

func (r *MemoryRepository) CreatePixKey(ctx context.Context, key *domain.PixKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pixKeys[key.Key]; exists {
		return ErrPixKeyTaken
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	r.pixKeys[key.Key] = *key
	return nil
}

func (r *MemoryRepository) FindPixKeysByUserID(ctx context.Context, userID uuid.UUID) ([]domain.PixKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []domain.PixKey
	for _, k := range r.pixKeys {
		if k.UserID == userID {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].CreatedAt.Before(keys[j].CreatedAt) })
	return keys, nil
}

func (r *MemoryRepository) ResolveAccountByPixKey(ctx context.Context, key string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pk, ok := r.pixKeys[key]
	if !ok {
		return nil, ErrPixKeyNotFound
	}
	for _, a := range r.accounts {
		if a.UserID == pk.UserID {
			found := a
			return &found, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (r *MemoryRepository) FindPixKeyOwner(ctx context.Context, key string) (*domain.PixKeyOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pk, ok := r.pixKeys[key]
	if !ok {
		return nil, ErrPixKeyNotFound
	}
	u, ok := r.users[pk.UserID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &domain.PixKeyOwner{UserID: u.ID, Username: u.Username}, nil
}

func (r *MemoryRepository) CreatePixKeyType(ctx context.Context, keyType *domain.PixKeyType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	keyType.ID = int32(len(r.pixKeyTypes) + 1)
	r.pixKeyTypes = append(r.pixKeyTypes, *keyType)
	return nil
}

func (r *MemoryRepository) ListPixKeyTypes(ctx context.Context) ([]domain.PixKeyType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]domain.PixKeyType, len(r.pixKeyTypes))
	copy(types, r.pixKeyTypes)
	return types, nil
}

func (r *MemoryRepository) CreateCreditCard(ctx context.Context, card *domain.CreditCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}
	r.creditCards[card.ID] = *card
	return nil
}

func (r *MemoryRepository) FindCreditCardsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CreditCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cards []domain.CreditCard
	for _, c := range r.creditCards {
		if c.UserID == userID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CreatedAt.Before(cards[j].CreatedAt) })
	return cards, nil
}

func (r *MemoryRepository) DeleteCreditCard(ctx context.Context, cardID uuid.UUID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.creditCards[cardID]
	if !ok || c.UserID != userID {
		return ErrCreditCardNotFound
	}
	delete(r.creditCards, cardID)
	return nil
}

func (r *MemoryRepository) CreateTransactionType(ctx context.Context, txType *domain.TransactionType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	txType.ID = r.nextTxTypeID
	r.nextTxTypeID++
	if txType.CreatedAt.IsZero() {
		txType.CreatedAt = time.Now().UTC()
	}
	r.txTypes[txType.ID] = *txType
	return nil
}

func (r *MemoryRepository) GetTransactionType(ctx context.Context, typeID int32) (*domain.TransactionType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txTypes[typeID]
	if !ok {
		return nil, ErrTransactionTypeNotFound
	}
	found := t
	return &found, nil
}

func (r *MemoryRepository) ListTransactionTypes(ctx context.Context) ([]domain.TransactionType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]domain.TransactionType, 0, len(r.txTypes))
	for _, t := range r.txTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].ID < types[j].ID })
	return types, nil
}

// SettleTransfer applies the debit, credit, and entry append while holding
// both account locks, matching the Postgres implementation's atomic unit.
func (r *MemoryRepository) SettleTransfer(ctx context.Context, params SettleTransferParams) (*domain.TransactionEntry, error) {
	unlock := r.lockAccounts(params.SenderAccountID, params.ReceiverAccountID)
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	sender, ok := r.accounts[params.SenderAccountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	receiver, ok := r.accounts[params.ReceiverAccountID]
	if !ok {
		return nil, ErrAccountNotFound
	}

	if sender.Balance.LessThan(params.TotalCharged) {
		return nil, ErrInsufficientFunds
	}

	sender.Balance = sender.Balance.Sub(params.TotalCharged)
	receiver.Balance = receiver.Balance.Add(params.Amount)
	r.accounts[sender.ID] = sender
	r.accounts[receiver.ID] = receiver

	source := params.SenderAccountID
	entry := domain.TransactionEntry{
		ID:                   params.EntryID,
		SourceAccountID:      &source,
		DestinationAccountID: params.ReceiverAccountID,
		TransactionTypeID:    params.TransactionTypeID,
		Amount:               params.TotalCharged,
		Description:          params.Description,
		CreatedAt:            time.Now().UTC(),
	}
	r.entries = append(r.entries, entry)
	return &entry, nil
}

// SettleDeposit credits the account and appends the entry with the external
// source sentinel under the account lock.
func (r *MemoryRepository) SettleDeposit(ctx context.Context, params SettleDepositParams) (*domain.TransactionEntry, error) {
	unlock := r.lockAccounts(params.AccountID)
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[params.AccountID]
	if !ok {
		return nil, ErrAccountNotFound
	}

	account.Balance = account.Balance.Add(params.Amount)
	r.accounts[account.ID] = account

	entry := domain.TransactionEntry{
		ID:                   params.EntryID,
		DestinationAccountID: params.AccountID,
		TransactionTypeID:    params.TransactionTypeID,
		Amount:               params.Amount,
		Description:          params.Description,
		CreatedAt:            time.Now().UTC(),
	}
	r.entries = append(r.entries, entry)
	return &entry, nil
}

func (r *MemoryRepository) FindEntriesByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var history []domain.HistoryEntry
	for _, e := range r.entries {
		isSource := e.SourceAccountID != nil && *e.SourceAccountID == accountID
		if !isSource && e.DestinationAccountID != accountID {
			continue
		}

		amount := e.Amount
		counterparty := "external"
		if isSource {
			amount = amount.Neg()
			if u := r.usernameForAccount(e.DestinationAccountID); u != "" {
				counterparty = u
			}
		} else if e.SourceAccountID != nil {
			if u := r.usernameForAccount(*e.SourceAccountID); u != "" {
				counterparty = u
			}
		}

		typeDesc := ""
		if t, ok := r.txTypes[e.TransactionTypeID]; ok {
			typeDesc = t.Description
		}

		history = append(history, domain.HistoryEntry{
			ID:           e.ID,
			Type:         typeDesc,
			Description:  e.Description,
			Amount:       amount,
			Counterparty: counterparty,
			CreatedAt:    e.CreatedAt,
		})
	}

	sort.SliceStable(history, func(i, j int) bool { return history[i].CreatedAt.After(history[j].CreatedAt) })
	return history, nil
}

func (r *MemoryRepository) usernameForAccount(accountID uuid.UUID) string {
	a, ok := r.accounts[accountID]
	if !ok {
		return ""
	}
	u, ok := r.users[a.UserID]
	if !ok {
		return ""
	}
	return u.Username
}

// Compile-time check: ensure MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)
