/**
 * @description
 * This file contains the read-only query operations: current balance and
 * account history. Balance reads the authoritative stored value on the
 * account (O(1)); it is never recomputed from entries. History reconstructs
 * the statement from the append-only ledger, newest first, with each row
 * signed from the account's perspective.
 */

package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BarrosRichard/pygamentos/internal/domain"
)

// GetBalance returns the authoritative balance of the user's account.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find account: %w", err)
	}
	return account.Balance, nil
}

// GetHistory returns the user's statement: every entry where their account is
// source or destination, ordered by creation time descending, each annotated
// with the viewer's sign and the counterparty's username.
func (s *Service) GetHistory(ctx context.Context, userID uuid.UUID) ([]domain.HistoryEntry, error) {
	account, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	entries, err := s.repo.FindEntriesByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return entries, nil
}
