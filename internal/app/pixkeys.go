/**
 * @description
 * This file contains pix key management: key type catalog, key registration,
 * listing, and resolution. Resolution is the public lookup a sender uses to
 * confirm who owns a key before transferring.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/BarrosRichard/pygamentos/internal/domain"
)

var (
	ErrInvalidPixKey     = errors.New("pix key is required")
	ErrInvalidPixKeyType = errors.New("pix key type description is required")
)

// RegisterPixKey registers a new pix key for the user. Keys are globally
// unique; the store rejects duplicates with ErrPixKeyTaken.
func (s *Service) RegisterPixKey(ctx context.Context, userID uuid.UUID, req domain.CreatePixKeyRequest) (*domain.PixKey, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, ErrInvalidPixKey
	}

	pixKey := &domain.PixKey{
		ID:        uuid.New(),
		UserID:    userID,
		KeyTypeID: req.KeyTypeID,
		Key:       key,
	}
	if err := s.repo.CreatePixKey(ctx, pixKey); err != nil {
		return nil, fmt.Errorf("failed to create pix key: %w", err)
	}
	return pixKey, nil
}

// ListPixKeys returns every pix key registered by the user.
func (s *Service) ListPixKeys(ctx context.Context, userID uuid.UUID) ([]domain.PixKey, error) {
	return s.repo.FindPixKeysByUserID(ctx, userID)
}

// ResolvePixKey maps a key to its owner's public view.
func (s *Service) ResolvePixKey(ctx context.Context, key string) (*domain.PixKeyOwner, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrInvalidPixKey
	}
	return s.repo.FindPixKeyOwner(ctx, key)
}

// CreatePixKeyType registers a new key type (e.g. "email", "phone").
func (s *Service) CreatePixKeyType(ctx context.Context, req domain.CreatePixKeyTypeRequest) (*domain.PixKeyType, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrInvalidPixKeyType
	}

	keyType := &domain.PixKeyType{Description: description}
	if err := s.repo.CreatePixKeyType(ctx, keyType); err != nil {
		return nil, fmt.Errorf("failed to create pix key type: %w", err)
	}
	return keyType, nil
}

// ListPixKeyTypes returns all registered key types.
func (s *Service) ListPixKeyTypes(ctx context.Context) ([]domain.PixKeyType, error) {
	return s.repo.ListPixKeyTypes(ctx)
}
