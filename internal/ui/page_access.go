package ui

import (
	"net/http"
	"net/url"
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"catalog-console/internal/domain"
	"catalog-console/internal/service"
)

// AccessReport shows everything a principal can reach through its role
// memberships. Without a principal query parameter it renders just the
// lookup form.
func (h *Handler) AccessReport(w http.ResponseWriter, r *http.Request) {
	principal := strings.TrimSpace(r.URL.Query().Get("principal"))

	body := []Node{accessLookupForm(principal)}
	if principal != "" {
		report, err := h.Access.PrincipalAccess(r.Context(), principal)
		if err != nil {
			h.renderServiceError(w, err)
			return
		}
		body = append(body, accessReportCards(report)...)
	}

	renderHTML(w, http.StatusOK, appPage("Access", "access", body...))
}

func accessLookupForm(principal string) Node {
	return Div(
		Class(cardClass()),
		Form(
			Method("get"),
			Action("/ui/access"),
			Label(For("principal"), Text("Principal ")),
			Input(Type("text"), ID("principal"), Name("principal"), Value(principal)),
			Button(Type("submit"), Text("Look up")),
		),
	)
}

func accessReportCards(report *service.AccessReport) []Node {
	roleRows := make([]Node, 0, len(report.Roles))
	for _, role := range report.Roles {
		roleRows = append(roleRows, Tr(Td(Text(role.Name))))
	}

	refRows := make([]Node, 0, len(report.CatalogRoles))
	for _, ref := range report.CatalogRoles {
		refRows = append(refRows, Tr(
			Td(Text(ref.Catalog)),
			Td(A(Href(roleGrantsHref(ref)), Text(ref.Role))),
		))
	}

	grantRows := make([]Node, 0, len(report.Grants))
	for _, rg := range report.Grants {
		sources := make([]string, 0, len(rg.Sources))
		for _, ref := range rg.Sources {
			sources = append(sources, ref.Catalog+"/"+ref.Role)
		}
		grantRows = append(grantRows, Tr(
			Td(Text(string(rg.Grant.Securable()))),
			Td(Text(domain.FormatGrantPath(rg.Grant))),
			Td(Text(string(rg.Grant.Privilege()))),
			Td(Text(strings.Join(sources, ", "))),
		))
	}

	return []Node{
		Div(
			Class(cardClass()),
			H2(Text("Principal roles")),
			tableOrEmpty(roleRows, []string{"Role"}, "No principal roles assigned."),
		),
		Div(
			Class(cardClass()),
			H2(Text("Catalog roles")),
			tableOrEmpty(refRows, []string{"Catalog", "Role"}, "No catalog roles reachable."),
		),
		Div(
			Class(cardClass()),
			H2(Text("Grants")),
			tableOrEmpty(grantRows, []string{"Securable", "Path", "Privilege", "Via"}, "No grants reachable."),
		),
	}
}

func roleGrantsHref(ref domain.CatalogRoleRef) string {
	q := url.Values{"catalog": {ref.Catalog}, "role": {ref.Role}}
	return "/ui/roles?" + q.Encode()
}

func tableOrEmpty(rows []Node, headers []string, emptyMessage string) Node {
	if len(rows) == 0 {
		return P(Class(mutedClass()), Text(emptyMessage))
	}
	ths := make([]Node, 0, len(headers))
	for _, header := range headers {
		ths = append(ths, Th(Text(header)))
	}
	return Table(
		THead(Tr(Group(ths))),
		TBody(Group(rows)),
	)
}
