package ui

import (
	"github.com/go-chi/chi/v5"
)

func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Overview)
	r.Post("/stats/refresh", h.RefreshStats)
	r.Get("/browse", h.Browse)
	r.Post("/browse/expand", h.BrowseExpand)
	r.Post("/browse/collapse", h.BrowseCollapse)
	r.Get("/access", h.AccessReport)
	r.Get("/roles", h.RoleGrants)
	r.Post("/roles/revoke", h.RevokeGrant)
}
