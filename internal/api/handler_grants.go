package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"catalog-console/internal/domain"
	"catalog-console/internal/service"
)

type grantFailureJSON struct {
	Grant grantJSON `json:"grant"`
	Error string    `json:"error"`
}

type revokeOutcomeJSON struct {
	Revoked []grantJSON        `json:"revoked"`
	Failed  []grantFailureJSON `json:"failed,omitempty"`
}

func outcomeToJSON(outcome *service.RevokeOutcome) revokeOutcomeJSON {
	out := revokeOutcomeJSON{Revoked: grantsToJSON(outcome.Revoked)}
	for _, f := range outcome.Failed {
		out.Failed = append(out.Failed, grantFailureJSON{
			Grant: grantToJSON(f.Grant),
			Error: f.Err.Error(),
		})
	}
	return out
}

// AddGrant attaches a grant to a catalog role.
func (h *Handler) AddGrant(w http.ResponseWriter, r *http.Request) {
	catalog := chi.URLParam(r, "catalog")
	role := chi.URLParam(r, "role")

	var body struct {
		Grant grantJSON `json:"grant"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	g, err := body.Grant.toGrant()
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.grants.Add(r.Context(), catalog, role, g); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"grant": grantToJSON(g)})
}

// RevokeGrant removes a grant, optionally cascading to grants on descendant
// entities. A partial cascade failure still reports everything that was
// removed alongside everything that was not.
func (h *Handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	catalog := chi.URLParam(r, "catalog")
	role := chi.URLParam(r, "role")

	cascade := false
	if v := r.URL.Query().Get("cascade"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, domain.ErrValidation("cascade must be a boolean, got %q", v))
			return
		}
		cascade = parsed
	}

	var body struct {
		Grant grantJSON `json:"grant"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	g, err := body.Grant.toGrant()
	if err != nil {
		h.writeError(w, err)
		return
	}

	outcome, err := h.grants.Revoke(r.Context(), catalog, role, g, cascade)
	if err != nil {
		var partial *domain.PartialRevokeError
		if errors.As(err, &partial) {
			h.writeJSON(w, http.StatusMultiStatus, outcomeToJSON(outcome))
			return
		}
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcomeToJSON(outcome))
}
