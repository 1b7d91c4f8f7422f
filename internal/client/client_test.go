package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-console/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, RetryMax: -1})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestListCatalogRoles_WrapperKeyVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "roles key", body: `{"roles":[{"name":"data_admin"},{"name":"reader"}]}`, want: []string{"data_admin", "reader"}},
		{name: "catalogRoles key", body: `{"catalogRoles":[{"name":"data_admin"}]}`, want: []string{"data_admin"}},
		{name: "bare array", body: `[{"name":"reader"}]`, want: []string{"reader"}},
		{name: "empty envelope", body: `{}`, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/management/v1/catalogs/sales/catalog-roles", r.URL.Path)
				_, _ = io.WriteString(w, tt.body)
			}))
			roles, err := c.ListCatalogRoles(context.Background(), "sales")
			require.NoError(t, err)
			var names []string
			for _, role := range roles {
				names = append(names, role.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestListPrincipalRolesOf_PrincipalRolesKey(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/management/v1/principals/svc-etl/principal-roles", r.URL.Path)
		_, _ = io.WriteString(w, `{"principalRoles":[{"name":"etl_writer"}]}`)
	}))
	roles, err := c.ListPrincipalRolesOf(context.Background(), "svc-etl")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "etl_writer", roles[0].Name)
}

func TestListNamespaces_ArrayAndObjectEntries(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a", r.URL.Query().Get("parent"))
		_, _ = io.WriteString(w, `{"namespaces":[["a","b"],{"namespace":["a","c"]}]}`)
	}))
	namespaces, err := c.ListNamespaces(context.Background(), "sales", domain.Namespace{"a"})
	require.NoError(t, err)
	require.Len(t, namespaces, 2)
	assert.Equal(t, domain.Namespace{"a", "b"}, namespaces[0])
	assert.Equal(t, domain.Namespace{"a", "c"}, namespaces[1])
}

func TestListNamespaces_RootParentOmitsQuery(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("parent"))
		_, _ = io.WriteString(w, `{"namespaces":[["a"]]}`)
	}))
	namespaces, err := c.ListNamespaces(context.Background(), "sales", domain.Namespace{})
	require.NoError(t, err)
	require.Len(t, namespaces, 1)
}

func TestListTables_EncodedNamespaceInPath(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/catalog/v1/sales/namespaces/a%1Fb/tables", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"identifiers":[{"namespace":["a","b"],"name":"orders"}]}`)
	}))
	tables, err := c.ListTables(context.Background(), "sales", domain.Namespace{"a", "b"})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "orders", tables[0].Name)
	assert.Equal(t, domain.Namespace{"a", "b"}, tables[0].Namespace)
}

func TestListGrants_DecodesVariants(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"grants":[
			{"type":"catalog","privilege":"CATALOG_MANAGE_ACCESS"},
			{"type":"namespace","namespace":["a"],"privilege":"NAMESPACE_LIST"},
			{"type":"table","namespace":["a"],"tableName":"t1","privilege":"TABLE_READ_DATA"},
			{"type":"view","namespace":["a"],"viewName":"v1","privilege":"VIEW_READ_PROPERTIES"}
		]}`)
	}))
	grants, err := c.ListGrants(context.Background(), "sales", "reader")
	require.NoError(t, err)
	require.Len(t, grants, 4)
	assert.Equal(t, domain.SecurableCatalog, grants[0].Securable())
	assert.Equal(t, domain.Namespace{"a"}, grants[1].Path())
	assert.Equal(t, "t1", grants[2].EntityName())
	assert.Equal(t, domain.PrivViewReadProperties, grants[3].Privilege())
}

func TestListGrants_MalformedGrantIsError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"grants":[{"type":"view","namespace":["a"],"viewName":"v","privilege":"TABLE_READ_DATA"}]}`)
	}))
	_, err := c.ListGrants(context.Background(), "sales", "reader")
	require.Error(t, err)
}

func TestAddGrant_PutsWrappedBody(t *testing.T) {
	var (
		gotMethod string
		gotBody   map[string]json.RawMessage
	)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))

	g, err := domain.NewTableGrant(domain.Namespace{"a"}, "t1", domain.PrivTableReadData)
	require.NoError(t, err)
	require.NoError(t, c.AddGrant(context.Background(), "sales", "reader", g))

	assert.Equal(t, http.MethodPut, gotMethod)
	var res grantResource
	require.NoError(t, json.Unmarshal(gotBody["grant"], &res))
	assert.Equal(t, domain.SecurableTable, res.Type)
	assert.Equal(t, []string{"a"}, res.Namespace)
	assert.Equal(t, "t1", res.TableName)
	assert.Empty(t, res.ViewName)
}

func TestRevokeGrant_CascadeQueryParam(t *testing.T) {
	var gotCascade string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCascade = r.URL.Query().Get("cascade")
		w.WriteHeader(http.StatusNoContent)
	}))

	g, err := domain.NewCatalogGrant(domain.PrivCatalogManageAccess)
	require.NoError(t, err)
	require.NoError(t, c.RevokeGrant(context.Background(), "sales", "reader", g, true))
	assert.Equal(t, "true", gotCascade)

	require.NoError(t, c.RevokeGrant(context.Background(), "sales", "reader", g, false))
	assert.Equal(t, "false", gotCascade)
}

func TestDo_NonSuccessIsAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"message":"not authorized"}}`)
	}))
	_, err := c.ListCatalogs(context.Background())
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "not authorized", apiErr.Message)
}

func TestErrorMessage_Shapes(t *testing.T) {
	assert.Equal(t, "boom", errorMessage([]byte(`{"message":"boom"}`)))
	assert.Equal(t, "boom", errorMessage([]byte(`{"error":{"message":"boom"}}`)))
	assert.Equal(t, "plain text", errorMessage([]byte("plain text")))
	assert.Equal(t, "(no error body)", errorMessage(nil))
}
