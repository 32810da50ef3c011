// Package httpapi exposes the minibook imposition over HTTP.
package httpapi

import (
	"net/http"

	"github.com/a3tai/mcp-pdf-minibook/internal/pdf"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// multipartOverhead leaves room for form boundaries and headers around the file.
const multipartOverhead = 64 * 1024

// NewRouter wires the API routes against svc.
func NewRouter(svc *pdf.Service) http.Handler {
	h := &handler{
		svc:     svc,
		maxBody: svc.GetMaxFileSize() + multipartOverhead,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/layout", h.layout)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestSize(h.maxBody))
			r.Post("/minibook", h.impose)
			r.Post("/minibook/plan", h.plan)
		})
	})

	return r
}
