/**
 * @description
 * This file contains registration and login logic. Registration creates the
 * user and their zero-balance account; login verifies the bcrypt password
 * hash and issues an HS256 session token carrying the user ID.
 *
 * @dependencies
 * - context, errors, fmt, strings, time: Standard Go libraries.
 * - github.com/golang-jwt/jwt/v5: Session token issuance.
 * - golang.org/x/crypto/bcrypt: Password hashing.
 * - internal/domain, internal/store: Domain models and data access.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/BarrosRichard/pygamentos/internal/domain"
	"github.com/BarrosRichard/pygamentos/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username is required")
	ErrInvalidPassword    = errors.New("password must be at least 8 characters")
)

// Register creates the user and their account in one flow. The account opens
// with a zero balance; only deposits and transfers move it afterwards.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, ErrInvalidUsername
	}
	if len(req.Password) < 8 {
		return nil, ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	account := &domain.Account{
		ID:      uuid.New(),
		UserID:  user.ID,
		Balance: decimal.Zero,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a signed session token.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().UTC().Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"usr": user.Username,
		"exp": expiresAt.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &domain.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// VerifySessionToken validates a session token and returns the user ID it
// carries. Used by the API auth middleware.
func (s *Service) VerifySessionToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return userID, nil
}
