package client

import (
	"context"
	"net/url"

	"catalog-console/internal/domain"
)

// tableIdentResource is one {namespace, name} identifier from a table
// listing. The namespace arrives as a path array or a wrapping object.
type tableIdentResource struct {
	Namespace namespaceEntry `json:"namespace"`
	Name      string         `json:"name"`
}

// ListNamespaces lists the namespaces under parent in a catalog. The root
// parent lists top-level namespaces. Results are returned exactly as the
// backend sent them; depth filtering belongs to the tree resolver.
func (c *Client) ListNamespaces(ctx context.Context, catalog string, parent domain.Namespace) ([]domain.Namespace, error) {
	query := url.Values{}
	if !parent.IsRoot() {
		query.Set("parent", parent.Encode())
	}
	data, err := c.getRaw(ctx, c.catPrefix+"/"+url.PathEscape(catalog)+"/namespaces", query)
	if err != nil {
		return nil, err
	}
	entries, err := decodeList[namespaceEntry](data, "namespaces")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Namespace, len(entries))
	for i, e := range entries {
		out[i] = e.parts
	}
	return out, nil
}

// ListTables lists the table identifiers directly under a namespace.
func (c *Client) ListTables(ctx context.Context, catalog string, ns domain.Namespace) ([]domain.TableIdent, error) {
	path := c.catPrefix + "/" + url.PathEscape(catalog) +
		"/namespaces/" + url.PathEscape(ns.Encode()) + "/tables"
	data, err := c.getRaw(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[tableIdentResource](data, "identifiers")
	if err != nil {
		return nil, err
	}
	out := make([]domain.TableIdent, len(items))
	for i, item := range items {
		out[i] = domain.TableIdent{Namespace: item.Namespace.parts, Name: item.Name}
	}
	return out, nil
}
