/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * related to users, accounts, pix keys, credit cards, transaction types, and the
 * append-only transactions ledger.
 *
 * The settle operations run inside a single database transaction and lock both
 * account rows with SELECT ... FOR UPDATE, always in ascending account-ID order
 * so two concurrent transfers referencing each other cannot deadlock.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/BarrosRichard/pygamentos/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// translateCommitError converts transient Postgres failure codes into the
// retryable ErrCommitConflict sentinel. 40001 is serialization_failure,
// 40P01 is deadlock_detected.
func translateCommitError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return ErrCommitConflict
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateUser inserts a new user row.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, NOW())`
	_, err := r.db.Exec(ctx, query, user.ID, user.Username, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

// FindUserByUsername retrieves a user from the database by their username.
func (r *PostgresRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, btrim(username), password_hash, created_at FROM users WHERE lower(btrim(username)) = lower(btrim($1))`
	err := r.db.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID retrieves a user from the database by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, btrim(username), password_hash, created_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateAccount inserts a new account row with a zero opening balance.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `INSERT INTO accounts (id, user_id, balance, created_at) VALUES ($1, $2, $3, NOW())`
	_, err := r.db.Exec(ctx, query, account.ID, account.UserID, account.Balance)
	return err
}

// FindAccountByUserID retrieves the account owned by a user.
func (r *PostgresRepository) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, user_id, balance, created_at FROM accounts WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&account.ID, &account.UserID, &account.Balance, &account.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAccountByID retrieves an account by its primary key.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, user_id, balance, created_at FROM accounts WHERE id = $1`
	err := r.db.QueryRow(ctx, query, accountID).Scan(&account.ID, &account.UserID, &account.Balance, &account.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// CreatePixKey registers a new pix key. Keys are globally unique.
func (r *PostgresRepository) CreatePixKey(ctx context.Context, key *domain.PixKey) error {
	query := `INSERT INTO pix_keys (id, user_id, key_type_id, key, created_at) VALUES ($1, $2, $3, $4, NOW())`
	_, err := r.db.Exec(ctx, query, key.ID, key.UserID, key.KeyTypeID, key.Key)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPixKeyTaken
		}
		return err
	}
	return nil
}

// FindPixKeysByUserID lists every pix key registered by a user.
func (r *PostgresRepository) FindPixKeysByUserID(ctx context.Context, userID uuid.UUID) ([]domain.PixKey, error) {
	query := `SELECT id, user_id, key_type_id, key, created_at FROM pix_keys WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []domain.PixKey
	for rows.Next() {
		var k domain.PixKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.KeyTypeID, &k.Key, &k.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ResolveAccountByPixKey maps a pix key to its owner's account.
// This is the receiver lookup consumed by the transfer engine.
func (r *PostgresRepository) ResolveAccountByPixKey(ctx context.Context, key string) (*domain.Account, error) {
	var account domain.Account
	query := `
		SELECT a.id, a.user_id, a.balance, a.created_at
		FROM pix_keys pk
		JOIN accounts a ON a.user_id = pk.user_id
		WHERE pk.key = $1
	`
	err := r.db.QueryRow(ctx, query, key).Scan(&account.ID, &account.UserID, &account.Balance, &account.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPixKeyNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindPixKeyOwner returns the public owner view for a pix key lookup.
func (r *PostgresRepository) FindPixKeyOwner(ctx context.Context, key string) (*domain.PixKeyOwner, error) {
	var owner domain.PixKeyOwner
	query := `
		SELECT u.id, btrim(u.username)
		FROM pix_keys pk
		JOIN users u ON u.id = pk.user_id
		WHERE pk.key = $1
	`
	err := r.db.QueryRow(ctx, query, key).Scan(&owner.UserID, &owner.Username)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPixKeyNotFound
		}
		return nil, err
	}
	return &owner, nil
}

// CreatePixKeyType registers a new key type and fills in the generated ID.
func (r *PostgresRepository) CreatePixKeyType(ctx context.Context, keyType *domain.PixKeyType) error {
	query := `INSERT INTO pix_key_types (description) VALUES ($1) RETURNING id`
	return r.db.QueryRow(ctx, query, keyType.Description).Scan(&keyType.ID)
}

// ListPixKeyTypes returns all registered key types.
func (r *PostgresRepository) ListPixKeyTypes(ctx context.Context) ([]domain.PixKeyType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, description FROM pix_key_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []domain.PixKeyType
	for rows.Next() {
		var t domain.PixKeyType
		if err := rows.Scan(&t.ID, &t.Description); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// CreateCreditCard stores a masked card record.
func (r *PostgresRepository) CreateCreditCard(ctx context.Context, card *domain.CreditCard) error {
	query := `
		INSERT INTO credit_cards (id, user_id, holder_name, number_masked, brand, expiry_month, expiry_year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, card.ID, card.UserID, card.HolderName, card.NumberMasked, card.Brand, card.ExpiryMonth, card.ExpiryYear)
	return err
}

// FindCreditCardsByUserID lists a user's registered cards.
func (r *PostgresRepository) FindCreditCardsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CreditCard, error) {
	query := `
		SELECT id, user_id, holder_name, number_masked, brand, expiry_month, expiry_year, created_at
		FROM credit_cards WHERE user_id = $1 ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []domain.CreditCard
	for rows.Next() {
		var c domain.CreditCard
		if err := rows.Scan(&c.ID, &c.UserID, &c.HolderName, &c.NumberMasked, &c.Brand, &c.ExpiryMonth, &c.ExpiryYear, &c.CreatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// DeleteCreditCard removes a card, scoped to its owner.
func (r *PostgresRepository) DeleteCreditCard(ctx context.Context, cardID uuid.UUID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM credit_cards WHERE id = $1 AND user_id = $2`, cardID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCreditCardNotFound
	}
	return nil
}

// CreateTransactionType registers a new transfer category and fills in the generated ID.
func (r *PostgresRepository) CreateTransactionType(ctx context.Context, txType *domain.TransactionType) error {
	query := `INSERT INTO transaction_types (description, tax, created_at) VALUES ($1, $2, NOW()) RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, txType.Description, txType.Tax).Scan(&txType.ID, &txType.CreatedAt)
}

// GetTransactionType retrieves a transaction type by ID.
func (r *PostgresRepository) GetTransactionType(ctx context.Context, typeID int32) (*domain.TransactionType, error) {
	var t domain.TransactionType
	query := `SELECT id, description, tax, created_at FROM transaction_types WHERE id = $1`
	err := r.db.QueryRow(ctx, query, typeID).Scan(&t.ID, &t.Description, &t.Tax, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListTransactionTypes returns all transfer categories.
func (r *PostgresRepository) ListTransactionTypes(ctx context.Context) ([]domain.TransactionType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, description, tax, created_at FROM transaction_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []domain.TransactionType
	for rows.Next() {
		var t domain.TransactionType
		if err := rows.Scan(&t.ID, &t.Description, &t.Tax, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// SettleTransfer commits a transfer as one atomic unit: lock both account
// rows, re-check the sender's funds, move the money, and append the ledger
// entry. Rows are locked in ascending account-ID order regardless of which
// side pays, so concurrent transfers between the same pair cannot deadlock.
func (r *PostgresRepository) SettleTransfer(ctx context.Context, params SettleTransferParams) (*domain.TransactionEntry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, translateCommitError(err)
	}
	defer tx.Rollback(ctx)

	first, second := params.SenderAccountID, params.ReceiverAccountID
	if second.String() < first.String() {
		first, second = second, first
	}

	balances := make(map[uuid.UUID]decimal.Decimal, 2)
	for _, id := range []uuid.UUID{first, second} {
		var balance decimal.Decimal
		err = tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&balance)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, ErrAccountNotFound
			}
			return nil, translateCommitError(err)
		}
		balances[id] = balance
	}

	if balances[params.SenderAccountID].LessThan(params.TotalCharged) {
		return nil, ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx, `UPDATE accounts SET balance = balance - $1 WHERE id = $2`, params.TotalCharged, params.SenderAccountID)
	if err != nil {
		return nil, translateCommitError(err)
	}
	_, err = tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1 WHERE id = $2`, params.Amount, params.ReceiverAccountID)
	if err != nil {
		return nil, translateCommitError(err)
	}

	entry := &domain.TransactionEntry{
		ID:                   params.EntryID,
		SourceAccountID:      &params.SenderAccountID,
		DestinationAccountID: params.ReceiverAccountID,
		TransactionTypeID:    params.TransactionTypeID,
		Amount:               params.TotalCharged,
		Description:          params.Description,
	}
	insert := `
		INSERT INTO transactions (id, source_account_id, destination_account_id, transaction_type_id, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, insert, entry.ID, entry.SourceAccountID, entry.DestinationAccountID, entry.TransactionTypeID, entry.Amount, entry.Description).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, translateCommitError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, translateCommitError(err)
	}
	return entry, nil
}

// SettleDeposit commits a deposit as one atomic unit: lock the account row,
// credit it, and append the ledger entry with the external source sentinel.
func (r *PostgresRepository) SettleDeposit(ctx context.Context, params SettleDepositParams) (*domain.TransactionEntry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, translateCommitError(err)
	}
	defer tx.Rollback(ctx)

	var balance decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, params.AccountID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, translateCommitError(err)
	}

	_, err = tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1 WHERE id = $2`, params.Amount, params.AccountID)
	if err != nil {
		return nil, translateCommitError(err)
	}

	entry := &domain.TransactionEntry{
		ID:                   params.EntryID,
		DestinationAccountID: params.AccountID,
		TransactionTypeID:    params.TransactionTypeID,
		Amount:               params.Amount,
		Description:          params.Description,
	}
	insert := `
		INSERT INTO transactions (id, source_account_id, destination_account_id, transaction_type_id, amount, description, created_at)
		VALUES ($1, NULL, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, insert, entry.ID, entry.DestinationAccountID, entry.TransactionTypeID, entry.Amount, entry.Description).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, translateCommitError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, translateCommitError(err)
	}
	return entry, nil
}

// FindEntriesByAccount returns the account's statement, newest first.
// The sign and counterparty are computed in SQL: entries the account paid are
// negated, deposits show the "external" counterparty.
func (r *PostgresRepository) FindEntriesByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.HistoryEntry, error) {
	query := `
		SELECT
			t.id,
			tt.description,
			t.description,
			CASE WHEN t.source_account_id = $1 THEN -t.amount ELSE t.amount END,
			CASE
				WHEN t.source_account_id IS NULL THEN 'external'
				WHEN t.source_account_id = $1 THEN du.username
				ELSE su.username
			END,
			t.created_at
		FROM transactions t
		JOIN transaction_types tt ON tt.id = t.transaction_type_id
		LEFT JOIN accounts sa ON sa.id = t.source_account_id
		LEFT JOIN users su ON su.id = sa.user_id
		JOIN accounts da ON da.id = t.destination_account_id
		JOIN users du ON du.id = da.user_id
		WHERE t.source_account_id = $1 OR t.destination_account_id = $1
		ORDER BY t.created_at DESC, t.id DESC
	`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Description, &e.Amount, &e.Counterparty, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Compile-time check: ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
