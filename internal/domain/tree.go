package domain

import "strings"

// NodeKind discriminates the three tree node variants.
type NodeKind string

const (
	NodeCatalog   NodeKind = "catalog"
	NodeNamespace NodeKind = "namespace"
	NodeTable     NodeKind = "table"
)

// TreeNode is one node in the catalog browse tree: a catalog, a namespace
// under a catalog, or a table under a namespace. Nodes are pure view state,
// created lazily when an ancestor is expanded; identity is derived entirely
// from lineage so the same lineage always yields the same ID.
type TreeNode struct {
	Kind    NodeKind
	Catalog string // owning catalog name
	Parent  Namespace
	Name    string // the node's own last path segment
}

// CatalogNode returns the root node for a catalog.
func CatalogNode(name string) TreeNode {
	return TreeNode{Kind: NodeCatalog, Catalog: name, Name: name}
}

// NamespaceNode returns the node for the namespace at path ns in the catalog.
// ns must be non-empty.
func NamespaceNode(catalog string, ns Namespace) TreeNode {
	return TreeNode{
		Kind:    NodeNamespace,
		Catalog: catalog,
		Parent:  ns.Parent(),
		Name:    ns[len(ns)-1],
	}
}

// TableNode returns the node for a table named name under namespace ns.
func TableNode(catalog string, ns Namespace, name string) TreeNode {
	return TreeNode{Kind: NodeTable, Catalog: catalog, Parent: ns, Name: name}
}

// Path returns the full namespace path the node denotes. For catalog nodes
// this is the root namespace; for table nodes it is the containing namespace.
func (n TreeNode) Path() Namespace {
	switch n.Kind {
	case NodeNamespace:
		return n.Parent.Child(n.Name)
	case NodeTable:
		return n.Parent
	default:
		return Namespace{}
	}
}

// ID returns the node's stable identifier: the kind tag plus the lineage
// (catalog name, namespace segments, table name) joined with the namespace
// separator, which is disjoint from segment content. Identical lineage gives
// identical IDs; siblings always differ.
func (n TreeNode) ID() string {
	parts := make([]string, 0, len(n.Parent)+3)
	parts = append(parts, n.Catalog)
	parts = append(parts, n.Parent...)
	if n.Kind != NodeCatalog {
		parts = append(parts, n.Name)
	}
	return string(n.Kind) + ":" + strings.Join(parts, NamespaceSeparator)
}
