package api

import (
	"net/http"

	"catalog-console/internal/service"
)

type sampledCountJSON struct {
	Count      int  `json:"count"`
	SampleSize int  `json:"sampleSize,omitempty"`
	Sampled    bool `json:"sampled"`
}

type statsJSON struct {
	TotalPrincipals              int              `json:"totalPrincipals"`
	TotalPrincipalRoles          int              `json:"totalPrincipalRoles"`
	TotalCatalogRoles            int              `json:"totalCatalogRoles"`
	TotalPrivileges              int              `json:"totalPrivileges"`
	CatalogRolesWithNoPrivileges int              `json:"catalogRolesWithNoPrivileges"`
	PrincipalsWithNoRoles        sampledCountJSON `json:"principalsWithNoRoles"`
}

func statsToJSON(stats *service.Stats) statsJSON {
	return statsJSON{
		TotalPrincipals:              stats.TotalPrincipals,
		TotalPrincipalRoles:          stats.TotalPrincipalRoles,
		TotalCatalogRoles:            stats.TotalCatalogRoles,
		TotalPrivileges:              stats.TotalPrivileges,
		CatalogRolesWithNoPrivileges: stats.CatalogRolesWithNoPrivileges,
		PrincipalsWithNoRoles: sampledCountJSON{
			Count:      stats.PrincipalsWithNoRoles.Count,
			SampleSize: stats.PrincipalsWithNoRoles.SampleSize,
			Sampled:    stats.PrincipalsWithNoRoles.Sampled,
		},
	}
}

// OverviewStats returns the console overview statistics, recomputing them if
// the cached copy has expired.
func (h *Handler) OverviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.access.CollectStats(r.Context(), h.sampleLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statsToJSON(stats))
}

// RefreshStats drops the cached statistics and recomputes them now.
func (h *Handler) RefreshStats(w http.ResponseWriter, r *http.Request) {
	h.access.InvalidateStats()
	stats, err := h.access.CollectStats(r.Context(), h.sampleLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statsToJSON(stats))
}
