// Package worker runs the single consumer that advances audit requests
// through their lifecycle.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sol-audit-service/internal/domain"
	"sol-audit-service/internal/observability"
	"sol-audit-service/internal/queue"
	"sol-audit-service/internal/renderer"
	"sol-audit-service/internal/report"
	"sol-audit-service/internal/repository"
	"sol-audit-service/internal/telegram"
)

const (
	msgProcessingStarted = "Starting the audit of your smart contract: %s"
	msgReportCaption     = "Your smart contract audit report is ready! You can review it below."
	msgAuditCompleted    = "Audit completed successfully!"
	msgAuditFailed       = "An error occurred while running the audit. Please try again later."
)

// Worker is the single queue consumer. Exactly one instance may run per
// queue; the dequeue-and-claim path assumes no competing Worker.
type Worker struct {
	users    repository.UserRepository
	requests repository.AuditRequestRepository
	queue    queue.AuditQueue
	fetcher  telegram.FileFetcher
	renderer renderer.Renderer
	notifier telegram.Notifier

	pollInterval time.Duration
	callTimeout  time.Duration
	logger       *slog.Logger
}

func New(
	users repository.UserRepository,
	requests repository.AuditRequestRepository,
	q queue.AuditQueue,
	fetcher telegram.FileFetcher,
	rend renderer.Renderer,
	notifier telegram.Notifier,
	pollInterval, callTimeout time.Duration,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		users:        users,
		requests:     requests,
		queue:        q,
		fetcher:      fetcher,
		renderer:     rend,
		notifier:     notifier,
		pollInterval: pollInterval,
		callTimeout:  callTimeout,
		logger:       logger,
	}
}

// Run polls the queue until ctx is cancelled. A job failure never stops the
// loop; the per-job boundary lives in RunOnce.
func (w *Worker) Run(ctx context.Context) {
	w.logger.InfoContext(ctx, "audit worker started", "poll_interval", w.pollInterval)
	for {
		processed, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.ErrorContext(ctx, "dequeue failed", "error", err)
		}
		if processed && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			w.logger.Info("audit worker stopped")
			return
		case <-time.After(w.pollInterval):
		}
	}
}

// RunOnce pops and handles at most one queue entry. It reports whether an
// entry was consumed; stale or duplicate entries count as consumed no-ops.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	id, ok, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if n, err := w.queue.Len(ctx); err == nil {
		observability.SetQueueDepth(n)
	}
	w.handle(ctx, id)
	return true, nil
}

func (w *Worker) handle(ctx context.Context, id uint) {
	req, err := w.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAuditRequestNotFound) {
			// Stale queue entry; drop it.
			w.logger.DebugContext(ctx, "discarding unknown queue entry", "request_id", id)
			return
		}
		w.logger.ErrorContext(ctx, "load audit request", "request_id", id, "error", err)
		return
	}
	if req.Status != domain.StatusQueued {
		// Duplicate delivery of an id already claimed; at-least-once
		// semantics make this a no-op, not an error.
		w.logger.DebugContext(ctx, "discarding non-queued entry", "request_id", id, "status", req.Status)
		return
	}

	if err := w.requests.UpdateStatus(ctx, req.ID, domain.StatusQueued, domain.StatusProcessing); err != nil {
		w.logger.ErrorContext(ctx, "claim audit request", "request_id", req.ID, "error", err)
		return
	}
	w.logger.InfoContext(ctx, "audit started", "request_id", req.ID, "file_name", req.FileName)

	user, err := w.users.FindByID(ctx, req.UserID)
	if err != nil {
		w.fail(ctx, req, 0, fmt.Errorf("load submitter %d: %w", req.UserID, err))
		return
	}

	finalPath, err := w.process(ctx, req, user)
	if err != nil {
		w.fail(ctx, req, user.TelegramID, err)
		return
	}

	w.cleanup(ctx, req, finalPath)
	w.notifyText(ctx, user.TelegramID, msgAuditCompleted)
	observability.RecordJobOutcome("completed")
	w.logger.InfoContext(ctx, "audit completed", "request_id", req.ID)
}

// process runs the fallible span of the job: fetch, generate, render,
// deliver, complete. Returning an error leaves the request in processing for
// the caller to fail.
func (w *Worker) process(ctx context.Context, req *domain.AuditRequest, user *domain.User) (string, error) {
	w.notifyText(ctx, user.TelegramID, fmt.Sprintf(msgProcessingStarted, req.FileName))

	fetchCtx, cancel := w.callCtx(ctx)
	source, err := w.fetcher.Fetch(fetchCtx, req.FileID)
	cancel()
	if err != nil {
		return "", fmt.Errorf("fetch contract source: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(req.SourcePath), 0o755); err != nil {
		return "", fmt.Errorf("prepare source dir: %w", err)
	}
	if err := os.WriteFile(req.SourcePath, source, 0o644); err != nil {
		return "", fmt.Errorf("write contract source: %w", err)
	}

	body := report.GenerateHTML(req.FileName, time.Now().UTC())
	if err := os.MkdirAll(filepath.Dir(req.ReportPath), 0o755); err != nil {
		return "", fmt.Errorf("prepare report dir: %w", err)
	}
	if err := os.WriteFile(req.ReportPath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	renderCtx, cancel := w.callCtx(ctx)
	finalPath, err := w.renderer.Render(renderCtx, req.ReportPath)
	cancel()
	if err != nil {
		// Degrade to the HTML document rather than failing the job.
		w.logger.ErrorContext(ctx, "pdf render failed, delivering html report", "request_id", req.ID, "error", err)
		finalPath = req.ReportPath
	}

	deliverCtx, cancel := w.callCtx(ctx)
	err = w.notifier.SendFile(deliverCtx, user.TelegramID, finalPath, msgReportCaption)
	cancel()
	if err != nil {
		return "", fmt.Errorf("deliver report: %w", err)
	}

	if err := w.requests.UpdateStatus(ctx, req.ID, domain.StatusProcessing, domain.StatusCompleted); err != nil {
		return "", fmt.Errorf("mark completed: %w", err)
	}
	return finalPath, nil
}

func (w *Worker) fail(ctx context.Context, req *domain.AuditRequest, telegramID int64, cause error) {
	w.logger.ErrorContext(ctx, "audit failed", "request_id", req.ID, "error", cause)
	if err := w.requests.UpdateStatus(ctx, req.ID, domain.StatusProcessing, domain.StatusFailed); err != nil {
		w.logger.ErrorContext(ctx, "mark failed", "request_id", req.ID, "error", err)
	}
	observability.RecordJobOutcome("failed")
	if telegramID != 0 {
		w.notifyText(ctx, telegramID, msgAuditFailed)
	}
}

// cleanup removes the job's temporary files. Failures are logged and never
// change the job outcome.
func (w *Worker) cleanup(ctx context.Context, req *domain.AuditRequest, finalPath string) {
	paths := []string{req.SourcePath, req.ReportPath}
	if finalPath != "" && finalPath != req.ReportPath {
		paths = append(paths, finalPath)
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			w.logger.WarnContext(ctx, "temp file cleanup failed", "request_id", req.ID, "path", p, "error", err)
		}
	}
}

func (w *Worker) notifyText(ctx context.Context, telegramID int64, text string) {
	sendCtx, cancel := w.callCtx(ctx)
	defer cancel()
	if err := w.notifier.SendText(sendCtx, telegramID, text); err != nil {
		w.logger.WarnContext(ctx, "notification failed", "telegram_id", telegramID, "error", err)
	}
}

// callCtx bounds a single external call so a hung collaborator cannot stall
// the sole worker indefinitely.
func (w *Worker) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, w.callTimeout)
}
