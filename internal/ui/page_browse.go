package ui

import (
	"net/http"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"catalog-console/internal/domain"
)

// Browse renders the lazy catalog tree from the resolver's current expansion
// state. Only expanded nodes have children in the page; everything else is a
// single row with an expand control.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	roots, err := h.Tree.Catalogs(r.Context())
	if err != nil {
		h.renderServiceError(w, err)
		return
	}

	items := make([]Node, 0, len(roots))
	for _, root := range roots {
		items = append(items, h.treeItem(root))
	}

	renderHTML(w, http.StatusOK, appPage(
		"Browse",
		"browse",
		Div(
			Class(cardClass("tree")),
			Ul(Group(items)),
		),
	))
}

// BrowseExpand expands the node described by the form fields and returns to
// the browse page.
func (h *Handler) BrowseExpand(w http.ResponseWriter, r *http.Request) {
	node, err := nodeFromForm(r)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	h.Tree.Expand(r.Context(), node)
	http.Redirect(w, r, "/ui/browse", http.StatusSeeOther)
}

// BrowseCollapse collapses the node named by the form's id field.
func (h *Handler) BrowseCollapse(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if id == "" {
		h.renderServiceError(w, domain.ErrValidation("node id is required"))
		return
	}
	h.Tree.Collapse(id)
	http.Redirect(w, r, "/ui/browse", http.StatusSeeOther)
}

// treeItem renders one node row plus, when the node is expanded, its subtree.
// Table nodes are leaves and get a plain label; everything else gets an
// expand or collapse control depending on the resolver's state.
func (h *Handler) treeItem(node domain.TreeNode) Node {
	label := node.Name + " (" + string(node.Kind) + ")"
	if node.Kind == domain.NodeTable {
		return Li(Span(Text(label)))
	}

	st, tracked := h.Tree.State(node.ID())
	if !tracked || !st.Expanded {
		return Li(expandForm(node, label))
	}

	row := []Node{collapseForm(node.ID(), label)}
	switch {
	case st.Loading:
		row = append(row, Span(Class(mutedClass()), Text(" loading...")))
	case st.Err != nil:
		row = append(row, Span(Class("error"), Text(" "+st.Err.Error())))
	case len(st.Children) == 0:
		row = append(row, Span(Class(mutedClass()), Text(" (empty)")))
	default:
		children := make([]Node, 0, len(st.Children))
		for _, child := range st.Children {
			children = append(children, h.treeItem(child))
		}
		row = append(row, Ul(Group(children)))
	}
	return Li(Group(row))
}

func expandForm(node domain.TreeNode, label string) Node {
	return Form(
		Method("post"),
		Action("/ui/browse/expand"),
		Input(Type("hidden"), Name("kind"), Value(string(node.Kind))),
		Input(Type("hidden"), Name("catalog"), Value(node.Catalog)),
		Input(Type("hidden"), Name("path"), Value(node.Path().Encode())),
		Button(Type("submit"), Text("+ "+label)),
	)
}

func collapseForm(id, label string) Node {
	return Form(
		Method("post"),
		Action("/ui/browse/collapse"),
		Input(Type("hidden"), Name("id"), Value(id)),
		Button(Type("submit"), Text("- "+label)),
	)
}

// nodeFromForm rebuilds a tree node from the browse form fields. The path
// field carries the full namespace path in its encoded form.
func nodeFromForm(r *http.Request) (domain.TreeNode, error) {
	kind := domain.NodeKind(r.FormValue("kind"))
	catalog := r.FormValue("catalog")
	if catalog == "" {
		return domain.TreeNode{}, domain.ErrValidation("catalog is required")
	}

	switch kind {
	case domain.NodeCatalog:
		return domain.CatalogNode(catalog), nil
	case domain.NodeNamespace:
		path := domain.DecodeNamespace(r.FormValue("path"))
		if path.IsRoot() {
			return domain.TreeNode{}, domain.ErrValidation("namespace path is required")
		}
		return domain.NamespaceNode(catalog, path), nil
	default:
		return domain.TreeNode{}, domain.ErrValidation("cannot expand a %q node", string(kind))
	}
}
