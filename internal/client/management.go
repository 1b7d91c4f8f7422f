package client

import (
	"context"
	"net/http"
	"net/url"

	"catalog-console/internal/domain"
)

// Wire shapes for management-API resources. Role endpoints wrap their lists
// under varying keys ("roles" vs "catalogRoles"/"principalRoles") depending
// on backend version; every list decode below tolerates all of them plus a
// bare array.

type catalogResource struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type principalResource struct {
	Name       string            `json:"name"`
	ClientID   string            `json:"clientId"`
	Properties map[string]string `json:"properties"`
}

type roleResource struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties"`
}

// ListCatalogs returns every catalog visible to the console's principal.
func (c *Client) ListCatalogs(ctx context.Context) ([]domain.Catalog, error) {
	data, err := c.getRaw(ctx, c.mgmtPrefix+"/catalogs", nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[catalogResource](data, "catalogs")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Catalog, len(items))
	for i, item := range items {
		out[i] = domain.Catalog{Name: item.Name, Type: item.Type}
	}
	return out, nil
}

// ListPrincipals returns every principal.
func (c *Client) ListPrincipals(ctx context.Context) ([]domain.Principal, error) {
	data, err := c.getRaw(ctx, c.mgmtPrefix+"/principals", nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[principalResource](data, "principals")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Principal, len(items))
	for i, item := range items {
		out[i] = domain.Principal{Name: item.Name, ClientID: item.ClientID, Properties: item.Properties}
	}
	return out, nil
}

// ListPrincipalRoles returns every principal role in the realm.
func (c *Client) ListPrincipalRoles(ctx context.Context) ([]domain.PrincipalRole, error) {
	return c.principalRoleList(ctx, c.mgmtPrefix+"/principal-roles")
}

// ListPrincipalRolesOf returns the principal roles assigned to one principal.
func (c *Client) ListPrincipalRolesOf(ctx context.Context, principal string) ([]domain.PrincipalRole, error) {
	return c.principalRoleList(ctx, c.mgmtPrefix+"/principals/"+url.PathEscape(principal)+"/principal-roles")
}

// ListCatalogRoleAssignees returns the principal roles a catalog role is
// assigned to.
func (c *Client) ListCatalogRoleAssignees(ctx context.Context, catalog, role string) ([]domain.PrincipalRole, error) {
	return c.principalRoleList(ctx, c.mgmtPrefix+"/catalogs/"+url.PathEscape(catalog)+
		"/catalog-roles/"+url.PathEscape(role)+"/principal-roles")
}

func (c *Client) principalRoleList(ctx context.Context, path string) ([]domain.PrincipalRole, error) {
	data, err := c.getRaw(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[roleResource](data, "roles", "principalRoles")
	if err != nil {
		return nil, err
	}
	out := make([]domain.PrincipalRole, len(items))
	for i, item := range items {
		out[i] = domain.PrincipalRole{Name: item.Name, Properties: item.Properties}
	}
	return out, nil
}

// ListCatalogRoles returns the catalog roles defined under one catalog.
func (c *Client) ListCatalogRoles(ctx context.Context, catalog string) ([]domain.CatalogRole, error) {
	data, err := c.getRaw(ctx, c.mgmtPrefix+"/catalogs/"+url.PathEscape(catalog)+"/catalog-roles", nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[roleResource](data, "roles", "catalogRoles")
	if err != nil {
		return nil, err
	}
	out := make([]domain.CatalogRole, len(items))
	for i, item := range items {
		out[i] = domain.CatalogRole{Name: item.Name}
	}
	return out, nil
}

// ListGrants returns the grants attached to one (catalog, catalogRole) pair.
func (c *Client) ListGrants(ctx context.Context, catalog, role string) ([]domain.Grant, error) {
	data, err := c.getRaw(ctx, c.grantsPath(catalog, role), nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[grantResource](data, "grants")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Grant, 0, len(items))
	for _, item := range items {
		g, err := grantFromResource(item)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// AddGrant attaches a grant to a catalog role.
func (c *Client) AddGrant(ctx context.Context, catalog, role string, g domain.Grant) error {
	body := map[string]grantResource{"grant": grantToResource(g)}
	return c.do(ctx, http.MethodPut, c.grantsPath(catalog, role), nil, body, nil)
}

// RevokeGrant removes a grant from a catalog role. The cascade flag is
// forwarded on the wire; the console's own cascade policy computes the
// descendant set itself and issues exact (cascade=false) revokes per grant.
func (c *Client) RevokeGrant(ctx context.Context, catalog, role string, g domain.Grant, cascade bool) error {
	query := url.Values{}
	query.Set("cascade", boolString(cascade))
	body := map[string]grantResource{"grant": grantToResource(g)}
	return c.do(ctx, http.MethodPost, c.grantsPath(catalog, role), query, body, nil)
}

func (c *Client) grantsPath(catalog, role string) string {
	return c.mgmtPrefix + "/catalogs/" + url.PathEscape(catalog) +
		"/catalog-roles/" + url.PathEscape(role) + "/grants"
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
