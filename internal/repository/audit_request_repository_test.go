package repository

import (
	"context"
	"errors"
	"testing"

	"sol-audit-service/internal/domain"
)

func createRequestForTest(t *testing.T, repo AuditRequestRepository, userID uint) *domain.AuditRequest {
	t.Helper()
	req := &domain.AuditRequest{
		UserID:     userID,
		FileName:   "contract.sol",
		FileID:     "remote-file-ref",
		SourcePath: "uploads/abc.sol",
		ReportPath: "reports/abc_report.html",
	}
	if err := repo.Create(context.Background(), req); err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

func TestAuditRequestCreateDefaultsToQueued(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewAuditRequestRepository(db)
	user := createUserForTest(t, db, 2001, 1)

	req := createRequestForTest(t, repo, user.ID)
	if req.Status != domain.StatusQueued {
		t.Fatalf("new request must be queued, got %s", req.Status)
	}

	loaded, err := repo.FindByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if loaded.FileName != "contract.sol" || loaded.Status != domain.StatusQueued {
		t.Fatalf("unexpected loaded request: %+v", loaded)
	}
}

func TestAuditRequestFindByIDNotFound(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewAuditRequestRepository(db)

	if _, err := repo.FindByID(context.Background(), 12345); !errors.Is(err, ErrAuditRequestNotFound) {
		t.Fatalf("expected ErrAuditRequestNotFound, got %v", err)
	}
}

func TestAuditRequestListByUser(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewAuditRequestRepository(db)
	u1 := createUserForTest(t, db, 2002, 5)
	u2 := createUserForTest(t, db, 2003, 5)

	createRequestForTest(t, repo, u1.ID)
	createRequestForTest(t, repo, u1.ID)
	createRequestForTest(t, repo, u2.ID)

	reqs, err := repo.ListByUser(context.Background(), u1.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests for user, got %d", len(reqs))
	}
}

func TestUpdateStatusWalksForward(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewAuditRequestRepository(db)
	user := createUserForTest(t, db, 2004, 1)
	req := createRequestForTest(t, repo, user.ID)
	ctx := context.Background()

	if err := repo.UpdateStatus(ctx, req.ID, domain.StatusQueued, domain.StatusProcessing); err != nil {
		t.Fatalf("queued -> processing: %v", err)
	}
	if err := repo.UpdateStatus(ctx, req.ID, domain.StatusProcessing, domain.StatusCompleted); err != nil {
		t.Fatalf("processing -> completed: %v", err)
	}

	loaded, _ := repo.FindByID(ctx, req.ID)
	if loaded.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", loaded.Status)
	}
}

func TestUpdateStatusRejectsIllegalTransitions(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewAuditRequestRepository(db)
	user := createUserForTest(t, db, 2005, 1)
	req := createRequestForTest(t, repo, user.ID)
	ctx := context.Background()

	// Skipping processing is illegal.
	if err := repo.UpdateStatus(ctx, req.ID, domain.StatusQueued, domain.StatusCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("queued -> completed must be invalid, got %v", err)
	}
	// Failure is not reachable from queued.
	if err := repo.UpdateStatus(ctx, req.ID, domain.StatusQueued, domain.StatusFailed); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("queued -> failed must be invalid, got %v", err)
	}
	// Backward transitions never persist.
	if err := repo.UpdateStatus(ctx, req.ID, domain.StatusCompleted, domain.StatusProcessing); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completed -> processing must be invalid, got %v", err)
	}

	loaded, _ := repo.FindByID(ctx, req.ID)
	if loaded.Status != domain.StatusQueued {
		t.Fatalf("illegal transitions must not persist, got %s", loaded.Status)
	}
}

func TestUpdateStatusGuardDetectsConcurrentChange(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewAuditRequestRepository(db)
	user := createUserForTest(t, db, 2006, 1)
	req := createRequestForTest(t, repo, user.ID)
	ctx := context.Background()

	if err := repo.UpdateStatus(ctx, req.ID, domain.StatusQueued, domain.StatusProcessing); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	// A second consumer replaying the same transition loses the guard.
	if err := repo.UpdateStatus(ctx, req.ID, domain.StatusQueued, domain.StatusProcessing); !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
}
