package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"catalog-console/internal/domain"
	"catalog-console/internal/service"
)

type catalogRoleRefJSON struct {
	Catalog string `json:"catalog"`
	Role    string `json:"role"`
}

type resolvedGrantJSON struct {
	Grant   grantJSON            `json:"grant"`
	Sources []catalogRoleRefJSON `json:"sources"`
}

type principalRoleJSON struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

func rolesToJSON(roles []domain.PrincipalRole) []principalRoleJSON {
	out := make([]principalRoleJSON, len(roles))
	for i, role := range roles {
		out[i] = principalRoleJSON{Name: role.Name, Properties: role.Properties}
	}
	return out
}

func refsToJSON(refs []domain.CatalogRoleRef) []catalogRoleRefJSON {
	out := make([]catalogRoleRefJSON, len(refs))
	for i, ref := range refs {
		out[i] = catalogRoleRefJSON{Catalog: ref.Catalog, Role: ref.Role}
	}
	return out
}

func resolvedToJSON(grants []service.ResolvedGrant) []resolvedGrantJSON {
	out := make([]resolvedGrantJSON, len(grants))
	for i, rg := range grants {
		out[i] = resolvedGrantJSON{Grant: grantToJSON(rg.Grant), Sources: refsToJSON(rg.Sources)}
	}
	return out
}

// PrincipalRoles lists the principal roles assigned to a principal.
func (h *Handler) PrincipalRoles(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")
	roles, err := h.access.RolesOf(r.Context(), principal)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"roles": rolesToJSON(roles)})
}

// PrincipalAccess resolves a principal's full reachable-privilege report.
func (h *Handler) PrincipalAccess(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")
	report, err := h.access.PrincipalAccess(r.Context(), principal)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"principal":    report.Principal,
		"roles":        rolesToJSON(report.Roles),
		"catalogRoles": refsToJSON(report.CatalogRoles),
		"grants":       resolvedToJSON(report.Grants),
	})
}

// CatalogRolesReachable lists the catalog roles a principal role reaches
// across every catalog.
func (h *Handler) CatalogRolesReachable(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	refs, err := h.access.CatalogRolesReachableFrom(r.Context(), role)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"catalogRoles": refsToJSON(refs)})
}

// RoleGrants lists the grants attached to one catalog role.
func (h *Handler) RoleGrants(w http.ResponseWriter, r *http.Request) {
	catalog := chi.URLParam(r, "catalog")
	role := chi.URLParam(r, "role")
	grants, err := h.access.GrantsOf(r.Context(), catalog, role)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"grants": grantsToJSON(grants)})
}
