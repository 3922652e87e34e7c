package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sol-audit-service/internal/http/response"
	"sol-audit-service/internal/queue"
	"sol-audit-service/internal/repository"
)

// AuditHandler exposes the read-only operational API: request lookups and
// queue introspection. All writes go through the bot front-end.
type AuditHandler struct {
	users    repository.UserRepository
	requests repository.AuditRequestRepository
	queue    queue.AuditQueue
}

func NewAuditHandler(users repository.UserRepository, requests repository.AuditRequestRepository, q queue.AuditQueue) *AuditHandler {
	return &AuditHandler{users: users, requests: requests, queue: q}
}

func (h *AuditHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request id")
		return
	}

	req, err := h.requests.FindByID(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrAuditRequestNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "audit request not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load audit request")
		return
	}
	response.JSON(w, r, http.StatusOK, req)
}

func (h *AuditHandler) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "telegram_id")
	telegramID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid telegram id")
		return
	}

	user, err := h.users.FindByTelegramID(r.Context(), telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load user")
		return
	}

	requests, err := h.requests.ListByUser(r.Context(), user.ID)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list audit requests")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"telegram_id":       user.TelegramID,
		"available_credits": user.AvailableCredits,
		"requests":          requests,
	})
}

func (h *AuditHandler) QueueStats(w http.ResponseWriter, r *http.Request) {
	depth, err := h.queue.Len(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to read queue length")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]int64{"depth": depth})
}

func (h *AuditHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
