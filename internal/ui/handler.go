// Package ui renders the console's server-side HTML pages.
package ui

import (
	"errors"
	"log/slog"
	"net/http"

	gomponents "maragu.dev/gomponents"

	"catalog-console/internal/domain"
	"catalog-console/internal/service"
)

type Handler struct {
	Tree        *service.TreeResolver
	Access      *service.AccessService
	Grants      *service.GrantService
	SampleLimit int
	Logger      *slog.Logger
}

func NewHandler(tree *service.TreeResolver, access *service.AccessService, grants *service.GrantService, sampleLimit int, logger *slog.Logger) *Handler {
	return &Handler{
		Tree:        tree,
		Access:      access,
		Grants:      grants,
		SampleLimit: sampleLimit,
		Logger:      logger,
	}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func (h *Handler) renderServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	title := "Something went wrong"

	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		title = "Not found"
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		title = "Invalid request"
	default:
		h.Logger.Error("page render failed", "error", err)
	}
	renderHTML(w, status, errorPage(title, err.Error()))
}
