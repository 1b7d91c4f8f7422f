package ui

import (
	"fmt"
	"net/http"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"catalog-console/internal/service"
)

// Overview shows the console landing page with the aggregated statistics.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Access.CollectStats(r.Context(), h.SampleLimit)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}

	renderHTML(w, http.StatusOK, appPage(
		"Overview",
		"home",
		Div(
			Class(cardClass()),
			H2(Text("Authorization graph")),
			Table(
				TBody(
					statRow("Principals", fmt.Sprintf("%d", stats.TotalPrincipals)),
					statRow("Principal roles", fmt.Sprintf("%d", stats.TotalPrincipalRoles)),
					statRow("Catalog roles", fmt.Sprintf("%d", stats.TotalCatalogRoles)),
					statRow("Privileges granted", fmt.Sprintf("%d", stats.TotalPrivileges)),
					statRow("Catalog roles without privileges", fmt.Sprintf("%d", stats.CatalogRolesWithNoPrivileges)),
					statRow("Principals without roles", orphanLabel(stats.PrincipalsWithNoRoles)),
				),
			),
		),
		Div(
			Class(cardClass()),
			Form(
				Method("post"),
				Action("/ui/stats/refresh"),
				Button(Type("submit"), Text("Refresh statistics")),
			),
			P(Class(mutedClass()), Text("Statistics are cached briefly and refreshed in the background.")),
		),
	))
}

// RefreshStats recomputes the statistics and returns to the overview.
func (h *Handler) RefreshStats(w http.ResponseWriter, r *http.Request) {
	h.Access.InvalidateStats()
	if _, err := h.Access.CollectStats(r.Context(), h.SampleLimit); err != nil {
		h.renderServiceError(w, err)
		return
	}
	http.Redirect(w, r, "/ui", http.StatusSeeOther)
}

func statRow(label, value string) Node {
	return Tr(Th(Text(label)), Td(Text(value)))
}

// orphanLabel renders a sampled count as a sample, never as an exact total.
func orphanLabel(c service.SampledCount) string {
	if c.Sampled {
		return fmt.Sprintf("%d of first %d checked", c.Count, c.SampleSize)
	}
	return fmt.Sprintf("%d", c.Count)
}
