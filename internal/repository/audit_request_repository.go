package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sol-audit-service/internal/domain"
	"sol-audit-service/internal/observability"
)

var (
	ErrAuditRequestNotFound = errors.New("audit request not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrStatusConflict       = errors.New("audit request status changed concurrently")
)

// AuditRequestRepository is the durable record of every submitted job and the
// single source of truth for status transitions.
type AuditRequestRepository interface {
	Create(ctx context.Context, req *domain.AuditRequest) error
	FindByID(ctx context.Context, id uint) (*domain.AuditRequest, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.AuditRequest, error)

	// UpdateStatus advances a request from -> to. The update is guarded on
	// the current status, so a transition raced by another writer fails
	// with ErrStatusConflict instead of clobbering it.
	UpdateStatus(ctx context.Context, id uint, from, to domain.Status) error
}

type GormAuditRequestRepository struct{ db *gorm.DB }

func NewAuditRequestRepository(db *gorm.DB) AuditRequestRepository {
	return &GormAuditRequestRepository{db: db}
}

func (r *GormAuditRequestRepository) Create(ctx context.Context, req *domain.AuditRequest) error {
	if req.Status == "" {
		req.Status = domain.StatusQueued
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "audit_request", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "audit_request", "create", "success")
	return nil
}

func (r *GormAuditRequestRepository) FindByID(ctx context.Context, id uint) (*domain.AuditRequest, error) {
	var req domain.AuditRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "audit_request", "find_by_id", "not_found")
			return nil, ErrAuditRequestNotFound
		}
		observability.RecordRepositoryOperation(ctx, "audit_request", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "audit_request", "find_by_id", "success")
	return &req, nil
}

func (r *GormAuditRequestRepository) ListByUser(ctx context.Context, userID uint) ([]domain.AuditRequest, error) {
	var reqs []domain.AuditRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&reqs).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "audit_request", "list_by_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "audit_request", "list_by_user", "success")
	return reqs, nil
}

func (r *GormAuditRequestRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.Status) error {
	if !from.CanTransitionTo(to) {
		observability.RecordRepositoryOperation(ctx, "audit_request", "update_status", "invalid")
		return ErrInvalidTransition
	}
	res := r.db.WithContext(ctx).Model(&domain.AuditRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "audit_request", "update_status", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "audit_request", "update_status", "conflict")
		return ErrStatusConflict
	}
	observability.RecordRepositoryOperation(ctx, "audit_request", "update_status", "success")
	return nil
}
