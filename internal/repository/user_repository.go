package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"sol-audit-service/internal/domain"
	"sol-audit-service/internal/observability"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInsufficientCredits   = errors.New("insufficient credits")
	ErrFreeCreditsNotGranted = errors.New("free credits already claimed or balance not zero")
)

// UserProfile carries the optional display fields supplied by the messaging
// front-end on first contact.
type UserProfile struct {
	FirstName string
	LastName  string
	Username  string
}

// UserRepository stores users and owns the credit ledger. Debit and Credit
// are single conditional updates so concurrent submissions and purchase
// confirmations for the same user cannot lose an update.
type UserRepository interface {
	GetOrCreate(ctx context.Context, telegramID int64, profile UserProfile) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)

	// Debit removes n credits; it fails with ErrInsufficientCredits and no
	// side effect when the balance is below n.
	Debit(ctx context.Context, userID uint, n int) error
	// Credit adds n credits.
	Credit(ctx context.Context, userID uint, n int) error
	// GrantFreeCredits applies the one-shot signup bonus. It only succeeds
	// when the user has never claimed it and the balance is zero.
	GrantFreeCredits(ctx context.Context, userID uint, n int) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetOrCreate(ctx context.Context, telegramID int64, profile UserProfile) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if err == nil {
		observability.RecordRepositoryOperation(ctx, "user", "get_or_create", "found")
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		observability.RecordRepositoryOperation(ctx, "user", "get_or_create", "error")
		return nil, err
	}

	user = domain.User{
		TelegramID: telegramID,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Username:   profile.Username,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Lost a creation race with a concurrent first contact.
		if ferr := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; ferr == nil {
			observability.RecordRepositoryOperation(ctx, "user", "get_or_create", "found")
			return &user, nil
		}
		observability.RecordRepositoryOperation(ctx, "user", "get_or_create", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "get_or_create", "created")
	return &user, nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "success")
	return &user, nil
}

func (r *GormUserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", "find_by_telegram_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", "find_by_telegram_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "find_by_telegram_id", "success")
	return &user, nil
}

func (r *GormUserRepository) Debit(ctx context.Context, userID uint, n int) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND available_credits >= ?", userID, n).
		UpdateColumn("available_credits", gorm.Expr("available_credits - ?", n))
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", "debit", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", "debit", "insufficient")
		return ErrInsufficientCredits
	}
	observability.RecordRepositoryOperation(ctx, "user", "debit", "success")
	return nil
}

func (r *GormUserRepository) Credit(ctx context.Context, userID uint, n int) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		UpdateColumn("available_credits", gorm.Expr("available_credits + ?", n))
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", "credit", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", "credit", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(ctx, "user", "credit", "success")
	return nil
}

func (r *GormUserRepository) GrantFreeCredits(ctx context.Context, userID uint, n int) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND available_credits = 0 AND free_credits_at IS NULL", userID).
		UpdateColumns(map[string]any{
			"available_credits": gorm.Expr("available_credits + ?", n),
			"free_credits_at":   now,
		})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", "grant_free_credits", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", "grant_free_credits", "rejected")
		return ErrFreeCreditsNotGranted
	}
	observability.RecordRepositoryOperation(ctx, "user", "grant_free_credits", "success")
	return nil
}
