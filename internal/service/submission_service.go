package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"sol-audit-service/internal/domain"
	"sol-audit-service/internal/observability"
	"sol-audit-service/internal/queue"
	"sol-audit-service/internal/repository"
)

var (
	ErrInvalidExtension = errors.New("only .sol files are accepted")
	ErrNoCredits        = errors.New("no audit credits available")
)

const auditCost = 1

// SubmissionService validates an incoming audit request, debits the user's
// credits, persists the request and enqueues it for the worker.
type SubmissionService struct {
	users      repository.UserRepository
	requests   repository.AuditRequestRepository
	queue      queue.AuditQueue
	uploadsDir string
	reportsDir string
	logger     *slog.Logger
}

func NewSubmissionService(
	users repository.UserRepository,
	requests repository.AuditRequestRepository,
	q queue.AuditQueue,
	uploadsDir, reportsDir string,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		users:      users,
		requests:   requests,
		queue:      q,
		uploadsDir: uploadsDir,
		reportsDir: reportsDir,
		logger:     logger,
	}
}

// Submission is the accepted-submission receipt. QueuePosition is read right
// after enqueueing and is advisory only; concurrent submissions can make it
// stale immediately, and a zero position means the length read failed.
type Submission struct {
	Request       *domain.AuditRequest
	QueuePosition int64
}

// Submit runs the submission pipeline: extension check, credit debit,
// request creation, enqueue. Validation failures happen before any state
// mutation; a failed creation returns the debited credit.
func (s *SubmissionService) Submit(ctx context.Context, user *domain.User, fileName, fileID string) (*Submission, error) {
	if strings.ToLower(filepath.Ext(fileName)) != ".sol" {
		return nil, ErrInvalidExtension
	}

	if err := s.users.Debit(ctx, user.ID, auditCost); err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return nil, ErrNoCredits
		}
		return nil, fmt.Errorf("debit credits: %w", err)
	}

	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		s.refund(ctx, user.ID)
		return nil, fmt.Errorf("prepare uploads dir: %w", err)
	}
	if err := os.MkdirAll(s.reportsDir, 0o755); err != nil {
		s.refund(ctx, user.ID)
		return nil, fmt.Errorf("prepare reports dir: %w", err)
	}

	key := strings.ReplaceAll(uuid.NewString(), "-", "")
	req := &domain.AuditRequest{
		UserID:     user.ID,
		FileName:   fileName,
		FileID:     fileID,
		SourcePath: filepath.Join(s.uploadsDir, key+".sol"),
		ReportPath: filepath.Join(s.reportsDir, key+"_report.html"),
		Status:     domain.StatusQueued,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		s.refund(ctx, user.ID)
		return nil, fmt.Errorf("create audit request: %w", err)
	}

	if err := s.queue.Enqueue(ctx, req.ID); err != nil {
		// The request record exists but will never be picked up; surface
		// the failure to the caller rather than pretending it is queued.
		return nil, fmt.Errorf("enqueue audit request %d: %w", req.ID, err)
	}

	position, err := s.queue.Len(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "queue position unavailable", "request_id", req.ID, "error", err)
		position = 0
	} else {
		observability.SetQueueDepth(position)
	}

	s.logger.InfoContext(ctx, "audit request queued",
		"request_id", req.ID,
		"user_id", user.ID,
		"file_name", fileName,
		"queue_position", position,
	)
	return &Submission{Request: req, QueuePosition: position}, nil
}

func (s *SubmissionService) refund(ctx context.Context, userID uint) {
	if err := s.users.Credit(ctx, userID, auditCost); err != nil {
		s.logger.ErrorContext(ctx, "credit refund after failed submission", "user_id", userID, "error", err)
	}
}
