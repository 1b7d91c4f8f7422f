package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"catalog-console/internal/domain"
)

// RoleGrants lists the grants on one catalog role with revoke controls.
// Without catalog/role query parameters it renders just the lookup form.
func (h *Handler) RoleGrants(w http.ResponseWriter, r *http.Request) {
	catalog := strings.TrimSpace(r.URL.Query().Get("catalog"))
	role := strings.TrimSpace(r.URL.Query().Get("role"))

	body := []Node{roleLookupForm(catalog, role)}
	if catalog != "" && role != "" {
		grants, err := h.Access.GrantsOf(r.Context(), catalog, role)
		if err != nil {
			h.renderServiceError(w, err)
			return
		}
		body = append(body, grantsCard(catalog, role, grants))
	}

	renderHTML(w, http.StatusOK, appPage("Role grants", "roles", body...))
}

// RevokeGrant revokes the grant described by the form fields and returns to
// the role page. Cascade failures are partial by design, so the outcome is
// shown rather than treated as a request error.
func (h *Handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	catalog := r.FormValue("catalog")
	role := r.FormValue("role")
	cascade := r.FormValue("cascade") == "on"

	g, err := domain.BuildGrant(
		domain.SecurableKind(r.FormValue("securable")),
		domain.DecodeNamespace(r.FormValue("path")),
		r.FormValue("entity"),
		domain.Privilege(r.FormValue("privilege")),
	)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}

	outcome, err := h.Grants.Revoke(r.Context(), catalog, role, g, cascade)
	if err != nil {
		var partial *domain.PartialRevokeError
		if !errors.As(err, &partial) {
			h.renderServiceError(w, err)
			return
		}
		h.Logger.Warn("cascade revoke left grants behind",
			"catalog", catalog, "catalogRole", role,
			"revoked", len(outcome.Revoked), "failed", len(outcome.Failed))
	}

	q := url.Values{"catalog": {catalog}, "role": {role}}
	http.Redirect(w, r, "/ui/roles?"+q.Encode(), http.StatusSeeOther)
}

func roleLookupForm(catalog, role string) Node {
	return Div(
		Class(cardClass()),
		Form(
			Method("get"),
			Action("/ui/roles"),
			Label(For("catalog"), Text("Catalog ")),
			Input(Type("text"), ID("catalog"), Name("catalog"), Value(catalog)),
			Label(For("role"), Text(" Catalog role ")),
			Input(Type("text"), ID("role"), Name("role"), Value(role)),
			Button(Type("submit"), Text("Show grants")),
		),
	)
}

func grantsCard(catalog, role string, grants []domain.Grant) Node {
	rows := make([]Node, 0, len(grants))
	for _, g := range grants {
		rows = append(rows, Tr(
			Td(Text(string(g.Securable()))),
			Td(Text(domain.FormatGrantPath(g))),
			Td(Text(string(g.Privilege()))),
			Td(revokeForm(catalog, role, g)),
		))
	}

	return Div(
		Class(cardClass()),
		H2(Text(catalog+" / "+role)),
		tableOrEmpty(rows, []string{"Securable", "Path", "Privilege", ""}, "This role has no grants."),
	)
}

func revokeForm(catalog, role string, g domain.Grant) Node {
	return Form(
		Method("post"),
		Action("/ui/roles/revoke"),
		Input(Type("hidden"), Name("catalog"), Value(catalog)),
		Input(Type("hidden"), Name("role"), Value(role)),
		Input(Type("hidden"), Name("securable"), Value(string(g.Securable()))),
		Input(Type("hidden"), Name("path"), Value(g.Path().Encode())),
		Input(Type("hidden"), Name("entity"), Value(g.EntityName())),
		Input(Type("hidden"), Name("privilege"), Value(string(g.Privilege()))),
		Label(Input(Type("checkbox"), Name("cascade")), Text(" cascade")),
		Button(Type("submit"), Class("danger"), Text("Revoke")),
	)
}
