// Package http assembles the operational HTTP surface: health, metrics and
// the read-only audit API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sol-audit-service/internal/http/handler"
)

func NewRouter(audits *handler.AuditHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", audits.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/requests/{id}", audits.GetRequest)
		r.Get("/users/{telegram_id}/requests", audits.ListUserRequests)
		r.Get("/queue", audits.QueueStats)
	})

	return r
}
