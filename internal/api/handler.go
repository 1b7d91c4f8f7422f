// Package api provides HTTP handlers for the console REST API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"catalog-console/internal/domain"
	"catalog-console/internal/service"
)

// Handler bundles the console services behind the REST surface.
type Handler struct {
	tree        *service.TreeResolver
	access      *service.AccessService
	grants      *service.GrantService
	sampleLimit int
	logger      *slog.Logger
}

// NewHandler creates a Handler. sampleLimit caps the orphan-principal walk
// in the stats endpoint.
func NewHandler(tree *service.TreeResolver, access *service.AccessService, grants *service.GrantService, sampleLimit int, logger *slog.Logger) *Handler {
	return &Handler{
		tree:        tree,
		access:      access,
		grants:      grants,
		sampleLimit: sampleLimit,
		logger:      logger,
	}
}

// MountRoutes registers all API routes on r.
func MountRoutes(r chi.Router, h *Handler) {
	r.Route("/tree", func(r chi.Router) {
		r.Get("/catalogs", h.TreeCatalogs)
		r.Post("/expand", h.TreeExpand)
		r.Post("/collapse", h.TreeCollapse)
		r.Get("/node", h.TreeNode)
		r.Get("/expanded", h.TreeExpanded)
	})
	r.Route("/principals", func(r chi.Router) {
		r.Get("/{principal}/roles", h.PrincipalRoles)
		r.Get("/{principal}/access", h.PrincipalAccess)
	})
	r.Get("/principal-roles/{role}/catalog-roles", h.CatalogRolesReachable)
	r.Route("/catalogs/{catalog}/roles/{role}/grants", func(r chi.Router) {
		r.Get("/", h.RoleGrants)
		r.Post("/", h.AddGrant)
		r.Post("/revoke", h.RevokeGrant)
	})
	r.Get("/stats", h.OverviewStats)
	r.Post("/stats/refresh", h.RefreshStats)
}

// --- wire shapes ---

type nodeJSON struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Catalog   string   `json:"catalog"`
	Namespace []string `json:"namespace,omitempty"`
	Name      string   `json:"name"`
}

func nodeToJSON(n domain.TreeNode) nodeJSON {
	return nodeJSON{
		ID:        n.ID(),
		Kind:      string(n.Kind),
		Catalog:   n.Catalog,
		Namespace: n.Parent,
		Name:      n.Name,
	}
}

func nodesToJSON(nodes []domain.TreeNode) []nodeJSON {
	out := make([]nodeJSON, len(nodes))
	for i, n := range nodes {
		out[i] = nodeToJSON(n)
	}
	return out
}

func (n nodeJSON) toNode() (domain.TreeNode, error) {
	switch domain.NodeKind(n.Kind) {
	case domain.NodeCatalog:
		if n.Catalog == "" {
			return domain.TreeNode{}, domain.ErrValidation("catalog name is required")
		}
		return domain.CatalogNode(n.Catalog), nil
	case domain.NodeNamespace:
		path := append(domain.Namespace(nil), n.Namespace...)
		path = path.Child(n.Name)
		if n.Catalog == "" || n.Name == "" {
			return domain.TreeNode{}, domain.ErrValidation("namespace nodes need a catalog and a name")
		}
		return domain.NamespaceNode(n.Catalog, path), nil
	case domain.NodeTable:
		if n.Catalog == "" || n.Name == "" {
			return domain.TreeNode{}, domain.ErrValidation("table nodes need a catalog and a name")
		}
		return domain.TableNode(n.Catalog, domain.Namespace(n.Namespace), n.Name), nil
	default:
		return domain.TreeNode{}, domain.ErrValidation("unknown node kind %q", n.Kind)
	}
}

type grantJSON struct {
	Securable string   `json:"securable"`
	Namespace []string `json:"namespace,omitempty"`
	Name      string   `json:"name,omitempty"`
	Privilege string   `json:"privilege"`
}

func grantToJSON(g domain.Grant) grantJSON {
	return grantJSON{
		Securable: string(g.Securable()),
		Namespace: g.Path(),
		Name:      g.EntityName(),
		Privilege: string(g.Privilege()),
	}
}

func grantsToJSON(grants []domain.Grant) []grantJSON {
	out := make([]grantJSON, len(grants))
	for i, g := range grants {
		out[i] = grantToJSON(g)
	}
	return out
}

func (g grantJSON) toGrant() (domain.Grant, error) {
	return domain.BuildGrant(
		domain.SecurableKind(g.Securable),
		domain.Namespace(g.Namespace),
		g.Name,
		domain.Privilege(g.Privilege),
	)
}

// --- response helpers ---

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("encoding response failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := httpStatusFromError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	h.writeJSON(w, status, map[string]any{"code": status, "message": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.ErrValidation("malformed request body: %v", err)
	}
	return nil
}
