// Package service implements the console's domain services: the namespace
// tree resolver, the authorization graph aggregator, the statistics reducer,
// and the revocation cascade policy.
package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"catalog-console/internal/domain"
)

// treeBackend is the slice of the backend client the tree resolver needs.
type treeBackend interface {
	ListCatalogs(ctx context.Context) ([]domain.Catalog, error)
	ListNamespaces(ctx context.Context, catalog string, parent domain.Namespace) ([]domain.Namespace, error)
	ListTables(ctx context.Context, catalog string, ns domain.Namespace) ([]domain.TableIdent, error)
}

// NodeState is a point-in-time snapshot of one tree node's view state.
type NodeState struct {
	Node     domain.TreeNode
	Expanded bool
	Loading  bool
	Children []domain.TreeNode
	Err      error
}

// nodeState is the mutable record behind a snapshot. The generation counter
// increments on every expand and collapse; a fetch completion only applies
// if its generation still matches, so late responses for collapsed or
// re-expanded nodes are discarded rather than applied.
type nodeState struct {
	node       domain.TreeNode
	generation uint64
	expanded   bool
	loading    bool
	children   []domain.TreeNode
	err        error
}

// TreeResolver materializes the catalog/namespace/table tree incrementally:
// children are fetched only when a node is expanded, and never more of the
// tree than that. Expansion state is an explicit arena owned by the resolver
// so it can be exercised without any UI harness.
type TreeResolver struct {
	backend treeBackend
	logger  *slog.Logger

	mu    sync.Mutex
	nodes map[string]*nodeState
}

// NewTreeResolver creates a TreeResolver.
func NewTreeResolver(backend treeBackend, logger *slog.Logger) *TreeResolver {
	return &TreeResolver{
		backend: backend,
		logger:  logger,
		nodes:   make(map[string]*nodeState),
	}
}

// Catalogs lists the tree roots, one node per catalog.
func (r *TreeResolver) Catalogs(ctx context.Context) ([]domain.TreeNode, error) {
	catalogs, err := r.backend.ListCatalogs(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make([]domain.TreeNode, len(catalogs))
	for i, cat := range catalogs {
		nodes[i] = domain.CatalogNode(cat.Name)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes, nil
}

// Expand marks the node expanded and loads its children. The node enters its
// loading state immediately; children are published only once every call for
// this node has completed, and only if the node has not been collapsed or
// re-expanded in the meantime. A failed fetch leaves the node in an
// empty-with-error state without touching any other node.
func (r *TreeResolver) Expand(ctx context.Context, node domain.TreeNode) {
	id := node.ID()

	r.mu.Lock()
	st, ok := r.nodes[id]
	if !ok {
		st = &nodeState{node: node}
		r.nodes[id] = st
	}
	st.generation++
	gen := st.generation
	st.expanded = true
	st.loading = true
	st.err = nil
	r.mu.Unlock()

	children, err := r.fetchChildren(ctx, node)

	r.mu.Lock()
	defer r.mu.Unlock()
	if st.generation != gen {
		r.logger.Debug("discarding stale children response", "node", id, "generation", gen)
		return
	}
	st.loading = false
	st.children = children
	st.err = err
	if err != nil {
		r.logger.Warn("expand failed", "node", id, "error", err)
	}
}

// Collapse removes the node from the expansion set. Any in-flight children
// fetch for it becomes stale and will be discarded on completion.
func (r *TreeResolver) Collapse(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.nodes[nodeID]
	if !ok {
		return
	}
	st.generation++
	st.expanded = false
	st.loading = false
	st.children = nil
	st.err = nil
}

// State returns a snapshot of the node's view state.
func (r *TreeResolver) State(nodeID string) (NodeState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.nodes[nodeID]
	if !ok {
		return NodeState{}, false
	}
	children := make([]domain.TreeNode, len(st.children))
	copy(children, st.children)
	return NodeState{
		Node:     st.node,
		Expanded: st.expanded,
		Loading:  st.loading,
		Children: children,
		Err:      st.err,
	}, true
}

// ExpandedIDs returns the ids currently in the expansion set.
func (r *TreeResolver) ExpandedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.nodes))
	for id, st := range r.nodes {
		if st.expanded {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// fetchChildren resolves the direct children of a node, dispatching on kind.
func (r *TreeResolver) fetchChildren(ctx context.Context, node domain.TreeNode) ([]domain.TreeNode, error) {
	switch node.Kind {
	case domain.NodeCatalog:
		return r.catalogChildren(ctx, node)
	case domain.NodeNamespace:
		return r.namespaceChildren(ctx, node)
	default:
		return nil, nil
	}
}

// catalogChildren lists top-level namespaces. The backend may over-return
// deeper namespaces; only depth-1 results become children here, so a deep
// result can never surface as a false top-level node.
func (r *TreeResolver) catalogChildren(ctx context.Context, node domain.TreeNode) ([]domain.TreeNode, error) {
	namespaces, err := r.backend.ListNamespaces(ctx, node.Catalog, domain.Namespace{})
	if err != nil {
		return nil, err
	}
	children := make([]domain.TreeNode, 0, len(namespaces))
	seen := make(map[string]bool)
	for _, ns := range namespaces {
		if len(ns) != 1 {
			continue
		}
		child := domain.NamespaceNode(node.Catalog, ns)
		if seen[child.ID()] {
			continue
		}
		seen[child.ID()] = true
		children = append(children, child)
	}
	sortChildren(children)
	return children, nil
}

// namespaceChildren lists nested namespaces and tables under the node's
// path. The two listing calls are independent and run concurrently; children
// are only assembled after both complete. Namespace results that are not a
// strict extension of the parent path are dropped — guards against a backend
// that ignores or mis-applies the parent filter.
func (r *TreeResolver) namespaceChildren(ctx context.Context, node domain.TreeNode) ([]domain.TreeNode, error) {
	parent := node.Path()

	var (
		namespaces []domain.Namespace
		tables     []domain.TableIdent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		namespaces, err = r.backend.ListNamespaces(gctx, node.Catalog, parent)
		return err
	})
	g.Go(func() error {
		var err error
		tables, err = r.backend.ListTables(gctx, node.Catalog, parent)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	children := make([]domain.TreeNode, 0, len(namespaces)+len(tables))
	seen := make(map[string]bool)
	for _, ns := range namespaces {
		if len(ns) <= len(parent) || !ns.HasPrefix(parent) {
			continue
		}
		child := domain.NamespaceNode(node.Catalog, parent.Child(ns[len(parent)]))
		if seen[child.ID()] {
			continue
		}
		seen[child.ID()] = true
		children = append(children, child)
	}
	for _, ident := range tables {
		child := domain.TableNode(node.Catalog, parent, ident.Name)
		if seen[child.ID()] {
			continue
		}
		seen[child.ID()] = true
		children = append(children, child)
	}
	sortChildren(children)
	return children, nil
}

// sortChildren orders namespaces before tables, then by name, so repeated
// expansions of an unchanged node yield an identical children list.
func sortChildren(children []domain.TreeNode) {
	sort.Slice(children, func(i, j int) bool {
		if children[i].Kind != children[j].Kind {
			return children[i].Kind == domain.NodeNamespace
		}
		return children[i].Name < children[j].Name
	})
}
