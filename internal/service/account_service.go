package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sol-audit-service/internal/domain"
	"sol-audit-service/internal/repository"
)

var (
	ErrInvalidQuantity      = errors.New("purchase quantity must be a positive integer")
	ErrFreeCreditsExhausted = errors.New("free credits already claimed")
)

// FreeCreditGrant is the one-shot signup bonus.
const FreeCreditGrant = 2

// AccountService handles user registration and credit balance changes that
// do not go through the submission pipeline.
type AccountService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewAccountService(users repository.UserRepository, logger *slog.Logger) *AccountService {
	return &AccountService{users: users, logger: logger}
}

// Register returns the user for a Telegram id, creating it on first contact.
func (s *AccountService) Register(ctx context.Context, telegramID int64, profile repository.UserProfile) (*domain.User, error) {
	return s.users.GetOrCreate(ctx, telegramID, profile)
}

// GrantFreeCredits applies the signup bonus and returns the new balance.
func (s *AccountService) GrantFreeCredits(ctx context.Context, telegramID int64, profile repository.UserProfile) (int, error) {
	user, err := s.users.GetOrCreate(ctx, telegramID, profile)
	if err != nil {
		return 0, err
	}
	if err := s.users.GrantFreeCredits(ctx, user.ID, FreeCreditGrant); err != nil {
		if errors.Is(err, repository.ErrFreeCreditsNotGranted) {
			return user.AvailableCredits, ErrFreeCreditsExhausted
		}
		return 0, fmt.Errorf("grant free credits: %w", err)
	}
	s.logger.InfoContext(ctx, "free credits granted", "user_id", user.ID, "amount", FreeCreditGrant)
	return s.balance(ctx, user.ID)
}

// ConfirmPurchase credits purchased audits. The payment itself is a stub
// with no verification; only the ledger update is real.
func (s *AccountService) ConfirmPurchase(ctx context.Context, telegramID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return 0, err
	}
	if err := s.users.Credit(ctx, user.ID, quantity); err != nil {
		return 0, fmt.Errorf("credit purchase: %w", err)
	}
	s.logger.InfoContext(ctx, "purchase confirmed", "user_id", user.ID, "quantity", quantity)
	return s.balance(ctx, user.ID)
}

func (s *AccountService) balance(ctx context.Context, userID uint) (int, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.AvailableCredits, nil
}
