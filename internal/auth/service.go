// Package auth registers users and verifies their passwords.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/paper-trader/internal/apperror"
	"github.com/trogers1052/paper-trader/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines the credential operations the service needs
type UserRepository interface {
	CreateUser(ctx context.Context, username, hash string, cash decimal.Decimal) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetCash(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// Service is the credential store
type Service struct {
	repo         UserRepository
	startingCash decimal.Decimal
	cost         int
	logger       *zap.Logger
}

// NewService creates a credential service. New users receive startingCash.
func NewService(repo UserRepository, startingCash decimal.Decimal, cost int, logger *zap.Logger) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		repo:         repo,
		startingCash: startingCash,
		cost:         cost,
		logger:       logger,
	}
}

// Register creates a user and returns its ID
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, apperror.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		// bcrypt refuses passwords longer than 72 bytes
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return 0, apperror.ErrInvalidInput
		}
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.repo.CreateUser(ctx, username, string(hash), s.startingCash)
	if err != nil {
		return 0, err
	}

	s.logger.Info("registered user", zap.Int64("user_id", u.ID), zap.String("username", username))
	return u.ID, nil
}

// Verify checks a password against the stored hash and returns the user ID
func (s *Service) Verify(ctx context.Context, username, password string) (int64, error) {
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return 0, apperror.ErrBadPassword
	}
	return u.ID, nil
}

// Cash returns the user's current cash balance
func (s *Service) Cash(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.repo.GetCash(ctx, userID)
}
