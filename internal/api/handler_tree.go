package api

import (
	"net/http"

	"catalog-console/internal/domain"
	"catalog-console/internal/service"
)

type nodeStateJSON struct {
	Node     nodeJSON   `json:"node"`
	Expanded bool       `json:"expanded"`
	Loading  bool       `json:"loading"`
	Children []nodeJSON `json:"children"`
	Error    string     `json:"error,omitempty"`
}

func stateToJSON(st service.NodeState) nodeStateJSON {
	out := nodeStateJSON{
		Node:     nodeToJSON(st.Node),
		Expanded: st.Expanded,
		Loading:  st.Loading,
		Children: nodesToJSON(st.Children),
	}
	if st.Err != nil {
		out.Error = st.Err.Error()
	}
	return out
}

// TreeCatalogs lists the browse tree roots.
func (h *Handler) TreeCatalogs(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.tree.Catalogs(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"catalogs": nodesToJSON(nodes)})
}

// TreeExpand expands a node and returns its resulting state. A child fetch
// failure is part of the node's state, not a request failure.
func (h *Handler) TreeExpand(w http.ResponseWriter, r *http.Request) {
	var body nodeJSON
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	node, err := body.toNode()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.tree.Expand(r.Context(), node)

	st, ok := h.tree.State(node.ID())
	if !ok {
		h.writeError(w, domain.ErrNotFound("node %q is not tracked", node.ID()))
		return
	}
	h.writeJSON(w, http.StatusOK, stateToJSON(st))
}

// TreeCollapse removes a node from the expansion set.
func (h *Handler) TreeCollapse(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	if body.ID == "" {
		h.writeError(w, domain.ErrValidation("node id is required"))
		return
	}
	h.tree.Collapse(body.ID)
	w.WriteHeader(http.StatusNoContent)
}

// TreeNode returns the tracked state of a single node.
func (h *Handler) TreeNode(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, domain.ErrValidation("node id is required"))
		return
	}
	st, ok := h.tree.State(id)
	if !ok {
		h.writeError(w, domain.ErrNotFound("node %q is not tracked", id))
		return
	}
	h.writeJSON(w, http.StatusOK, stateToJSON(st))
}

// TreeExpanded lists the ids currently in the expansion set.
func (h *Handler) TreeExpanded(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ids": h.tree.ExpandedIDs()})
}
