package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-console/internal/client"
	"catalog-console/internal/domain"
	"catalog-console/internal/service"
)

// stubBackend implements every service backend interface through optional
// hooks; unset hooks return empty results.
type stubBackend struct {
	listCatalogs             func(ctx context.Context) ([]domain.Catalog, error)
	listNamespaces           func(ctx context.Context, catalog string, parent domain.Namespace) ([]domain.Namespace, error)
	listTables               func(ctx context.Context, catalog string, ns domain.Namespace) ([]domain.TableIdent, error)
	listPrincipals           func(ctx context.Context) ([]domain.Principal, error)
	listPrincipalRoles       func(ctx context.Context) ([]domain.PrincipalRole, error)
	listPrincipalRolesOf     func(ctx context.Context, principal string) ([]domain.PrincipalRole, error)
	listCatalogRoles         func(ctx context.Context, catalog string) ([]domain.CatalogRole, error)
	listCatalogRoleAssignees func(ctx context.Context, catalog, role string) ([]domain.PrincipalRole, error)
	listGrants               func(ctx context.Context, catalog, role string) ([]domain.Grant, error)
	addGrant                 func(ctx context.Context, catalog, role string, g domain.Grant) error
	revokeGrant              func(ctx context.Context, catalog, role string, g domain.Grant, cascade bool) error
}

func (s *stubBackend) ListCatalogs(ctx context.Context) ([]domain.Catalog, error) {
	if s.listCatalogs == nil {
		return nil, nil
	}
	return s.listCatalogs(ctx)
}

func (s *stubBackend) ListNamespaces(ctx context.Context, catalog string, parent domain.Namespace) ([]domain.Namespace, error) {
	if s.listNamespaces == nil {
		return nil, nil
	}
	return s.listNamespaces(ctx, catalog, parent)
}

func (s *stubBackend) ListTables(ctx context.Context, catalog string, ns domain.Namespace) ([]domain.TableIdent, error) {
	if s.listTables == nil {
		return nil, nil
	}
	return s.listTables(ctx, catalog, ns)
}

func (s *stubBackend) ListPrincipals(ctx context.Context) ([]domain.Principal, error) {
	if s.listPrincipals == nil {
		return nil, nil
	}
	return s.listPrincipals(ctx)
}

func (s *stubBackend) ListPrincipalRoles(ctx context.Context) ([]domain.PrincipalRole, error) {
	if s.listPrincipalRoles == nil {
		return nil, nil
	}
	return s.listPrincipalRoles(ctx)
}

func (s *stubBackend) ListPrincipalRolesOf(ctx context.Context, principal string) ([]domain.PrincipalRole, error) {
	if s.listPrincipalRolesOf == nil {
		return nil, nil
	}
	return s.listPrincipalRolesOf(ctx, principal)
}

func (s *stubBackend) ListCatalogRoles(ctx context.Context, catalog string) ([]domain.CatalogRole, error) {
	if s.listCatalogRoles == nil {
		return nil, nil
	}
	return s.listCatalogRoles(ctx, catalog)
}

func (s *stubBackend) ListCatalogRoleAssignees(ctx context.Context, catalog, role string) ([]domain.PrincipalRole, error) {
	if s.listCatalogRoleAssignees == nil {
		return nil, nil
	}
	return s.listCatalogRoleAssignees(ctx, catalog, role)
}

func (s *stubBackend) ListGrants(ctx context.Context, catalog, role string) ([]domain.Grant, error) {
	if s.listGrants == nil {
		return nil, nil
	}
	return s.listGrants(ctx, catalog, role)
}

func (s *stubBackend) AddGrant(ctx context.Context, catalog, role string, g domain.Grant) error {
	if s.addGrant == nil {
		return nil
	}
	return s.addGrant(ctx, catalog, role, g)
}

func (s *stubBackend) RevokeGrant(ctx context.Context, catalog, role string, g domain.Grant, cascade bool) error {
	if s.revokeGrant == nil {
		return nil
	}
	return s.revokeGrant(ctx, catalog, role, g, cascade)
}

func newTestRouter(backend *stubBackend) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tree := service.NewTreeResolver(backend, logger)
	access := service.NewAccessService(backend, logger, 4, time.Minute)
	grants := service.NewGrantService(backend, access, logger)
	h := NewHandler(tree, access, grants, 100, logger)
	r := chi.NewRouter()
	MountRoutes(r, h)
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestTreeCatalogs(t *testing.T) {
	router := newTestRouter(&stubBackend{
		listCatalogs: func(context.Context) ([]domain.Catalog, error) {
			return []domain.Catalog{{Name: "sales"}, {Name: "analytics"}}, nil
		},
	})

	rec := doJSON(t, router, http.MethodGet, "/tree/catalogs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	catalogs := body["catalogs"].([]any)
	require.Len(t, catalogs, 2)
	first := catalogs[0].(map[string]any)
	assert.Equal(t, "analytics", first["name"], "catalogs should be sorted")
	assert.Equal(t, "catalog", first["kind"])
}

func TestTreeExpand_CatalogNode(t *testing.T) {
	router := newTestRouter(&stubBackend{
		listNamespaces: func(_ context.Context, catalog string, parent domain.Namespace) ([]domain.Namespace, error) {
			return []domain.Namespace{{"a"}, {"b"}}, nil
		},
	})

	rec := doJSON(t, router, http.MethodPost, "/tree/expand",
		map[string]any{"kind": "catalog", "catalog": "sales", "name": "sales"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["expanded"])
	children := body["children"].([]any)
	require.Len(t, children, 2)
	assert.Equal(t, "a", children[0].(map[string]any)["name"])
}

func TestTreeExpand_UnknownKind(t *testing.T) {
	router := newTestRouter(&stubBackend{})
	rec := doJSON(t, router, http.MethodPost, "/tree/expand",
		map[string]any{"kind": "schema", "catalog": "sales", "name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTreeExpand_BackendFailureIsNodeState(t *testing.T) {
	router := newTestRouter(&stubBackend{
		listNamespaces: func(context.Context, string, domain.Namespace) ([]domain.Namespace, error) {
			return nil, &client.APIError{StatusCode: 500, Message: "boom"}
		},
	})

	rec := doJSON(t, router, http.MethodPost, "/tree/expand",
		map[string]any{"kind": "catalog", "catalog": "sales", "name": "sales"})
	require.Equal(t, http.StatusOK, rec.Code, "fetch failure belongs to the node, not the request")

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, body["children"])
}

func TestTreeCollapse(t *testing.T) {
	router := newTestRouter(&stubBackend{})

	rec := doJSON(t, router, http.MethodPost, "/tree/expand",
		map[string]any{"kind": "catalog", "catalog": "sales", "name": "sales"})
	require.Equal(t, http.StatusOK, rec.Code)

	id := decodeBody(t, rec)["node"].(map[string]any)["id"].(string)
	rec = doJSON(t, router, http.MethodPost, "/tree/collapse", map[string]any{"id": id})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/tree/expanded", nil)
	body := decodeBody(t, rec)
	assert.Empty(t, body["ids"])
}

func TestTreeNode_Unknown(t *testing.T) {
	router := newTestRouter(&stubBackend{})
	rec := doJSON(t, router, http.MethodGet, "/tree/node?id=catalog:nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrincipalAccess(t *testing.T) {
	nsGrant, err := domain.NewNamespaceGrant(domain.Namespace{"a"}, domain.PrivNamespaceList)
	require.NoError(t, err)

	router := newTestRouter(&stubBackend{
		listPrincipalRolesOf: func(_ context.Context, principal string) ([]domain.PrincipalRole, error) {
			return []domain.PrincipalRole{{Name: "etl"}}, nil
		},
		listCatalogs: func(context.Context) ([]domain.Catalog, error) {
			return []domain.Catalog{{Name: "sales"}}, nil
		},
		listCatalogRoles: func(_ context.Context, catalog string) ([]domain.CatalogRole, error) {
			return []domain.CatalogRole{{Name: "reader"}}, nil
		},
		listCatalogRoleAssignees: func(_ context.Context, catalog, role string) ([]domain.PrincipalRole, error) {
			return []domain.PrincipalRole{{Name: "etl"}}, nil
		},
		listGrants: func(_ context.Context, catalog, role string) ([]domain.Grant, error) {
			return []domain.Grant{nsGrant}, nil
		},
	})

	rec := doJSON(t, router, http.MethodGet, "/principals/svc/access", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "svc", body["principal"])
	grants := body["grants"].([]any)
	require.Len(t, grants, 1)
	resolved := grants[0].(map[string]any)
	assert.Equal(t, "namespace", resolved["grant"].(map[string]any)["securable"])
	sources := resolved["sources"].([]any)
	require.Len(t, sources, 1)
	assert.Equal(t, "sales", sources[0].(map[string]any)["catalog"])
}

func TestRoleGrants_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		upstream   int
		wantStatus int
	}{
		{"upstream 404 stays 404", http.StatusNotFound, http.StatusNotFound},
		{"upstream 403 becomes 502", http.StatusForbidden, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubBackend{
				listGrants: func(context.Context, string, string) ([]domain.Grant, error) {
					return nil, &client.APIError{StatusCode: tt.upstream, Message: "nope"}
				},
			})
			rec := doJSON(t, router, http.MethodGet, "/catalogs/sales/roles/reader/grants/", nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAddGrant(t *testing.T) {
	var added domain.Grant
	router := newTestRouter(&stubBackend{
		addGrant: func(_ context.Context, catalog, role string, g domain.Grant) error {
			added = g
			return nil
		},
	})

	rec := doJSON(t, router, http.MethodPost, "/catalogs/sales/roles/reader/grants/",
		map[string]any{"grant": map[string]any{
			"securable": "table",
			"namespace": []string{"a"},
			"name":      "orders",
			"privilege": "TABLE_READ_DATA",
		}})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, added)
	assert.Equal(t, domain.SecurableTable, added.Securable())
}

func TestAddGrant_WrongVocabulary(t *testing.T) {
	router := newTestRouter(&stubBackend{})
	rec := doJSON(t, router, http.MethodPost, "/catalogs/sales/roles/reader/grants/",
		map[string]any{"grant": map[string]any{
			"securable": "view",
			"namespace": []string{"a"},
			"name":      "v",
			"privilege": "TABLE_READ_DATA",
		}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["message"], "TABLE_READ_DATA")
}

func TestRevokeGrant_CascadePartialFailure(t *testing.T) {
	nsGrant, err := domain.NewNamespaceGrant(domain.Namespace{"a"}, domain.PrivNamespaceList)
	require.NoError(t, err)
	t1, err := domain.NewTableGrant(domain.Namespace{"a"}, "t1", domain.PrivTableReadData)
	require.NoError(t, err)

	router := newTestRouter(&stubBackend{
		listGrants: func(context.Context, string, string) ([]domain.Grant, error) {
			return []domain.Grant{nsGrant, t1}, nil
		},
		revokeGrant: func(_ context.Context, _, _ string, g domain.Grant, _ bool) error {
			if domain.GrantsEqual(g, t1) {
				return &client.APIError{StatusCode: 500, Message: "backend hiccup"}
			}
			return nil
		},
	})

	rec := doJSON(t, router, http.MethodPost, "/catalogs/sales/roles/reader/grants/revoke?cascade=true",
		map[string]any{"grant": map[string]any{
			"securable": "namespace",
			"namespace": []string{"a"},
			"privilege": "NAMESPACE_LIST",
		}})
	require.Equal(t, http.StatusMultiStatus, rec.Code)

	body := decodeBody(t, rec)
	assert.Len(t, body["revoked"].([]any), 1)
	failed := body["failed"].([]any)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].(map[string]any)["error"], "backend hiccup")
}

func TestRevokeGrant_BadCascadeParam(t *testing.T) {
	router := newTestRouter(&stubBackend{})
	rec := doJSON(t, router, http.MethodPost, "/catalogs/sales/roles/reader/grants/revoke?cascade=maybe",
		map[string]any{"grant": map[string]any{
			"securable": "namespace",
			"namespace": []string{"a"},
			"privilege": "NAMESPACE_LIST",
		}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOverviewStats(t *testing.T) {
	router := newTestRouter(&stubBackend{
		listPrincipals: func(context.Context) ([]domain.Principal, error) {
			return []domain.Principal{{Name: "a"}, {Name: "b"}}, nil
		},
		listPrincipalRoles: func(context.Context) ([]domain.PrincipalRole, error) {
			return []domain.PrincipalRole{{Name: "etl"}}, nil
		},
		listCatalogs: func(context.Context) ([]domain.Catalog, error) {
			return []domain.Catalog{{Name: "sales"}}, nil
		},
		listCatalogRoles: func(context.Context, string) ([]domain.CatalogRole, error) {
			return []domain.CatalogRole{{Name: "reader"}}, nil
		},
	})

	rec := doJSON(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.InDelta(t, 2, body["totalPrincipals"], 0.001)
	assert.InDelta(t, 1, body["totalCatalogRoles"], 0.001)
}
