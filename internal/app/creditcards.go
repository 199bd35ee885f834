/**
 * @description
 * This file contains credit card record-keeping. The full card number is
 * accepted at the boundary only to derive the masked form; the service never
 * stores or logs the full PAN.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BarrosRichard/pygamentos/internal/domain"
)

var ErrInvalidCreditCard = errors.New("invalid credit card data")

// maskCardNumber keeps only the last four digits.
func maskCardNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) < 4 {
		return ""
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

// RegisterCreditCard validates and stores a masked card record.
func (s *Service) RegisterCreditCard(ctx context.Context, userID uuid.UUID, req domain.CreateCreditCardRequest) (*domain.CreditCard, error) {
	holder := strings.TrimSpace(req.HolderName)
	masked := maskCardNumber(req.Number)
	if holder == "" || masked == "" {
		return nil, ErrInvalidCreditCard
	}
	if req.ExpiryMonth < 1 || req.ExpiryMonth > 12 {
		return nil, ErrInvalidCreditCard
	}
	if req.ExpiryYear < time.Now().UTC().Year() {
		return nil, ErrInvalidCreditCard
	}

	card := &domain.CreditCard{
		ID:           uuid.New(),
		UserID:       userID,
		HolderName:   holder,
		NumberMasked: masked,
		Brand:        strings.TrimSpace(req.Brand),
		ExpiryMonth:  req.ExpiryMonth,
		ExpiryYear:   req.ExpiryYear,
	}
	if err := s.repo.CreateCreditCard(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create credit card: %w", err)
	}
	return card, nil
}

// ListCreditCards returns the user's registered cards.
func (s *Service) ListCreditCards(ctx context.Context, userID uuid.UUID) ([]domain.CreditCard, error) {
	return s.repo.FindCreditCardsByUserID(ctx, userID)
}

// DeleteCreditCard removes one of the user's cards.
func (s *Service) DeleteCreditCard(ctx context.Context, userID uuid.UUID, cardID uuid.UUID) error {
	return s.repo.DeleteCreditCard(ctx, cardID, userID)
}
