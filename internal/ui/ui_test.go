package ui

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-console/internal/domain"
	"catalog-console/internal/service"
)

// uiBackend is a canned backend for page rendering tests.
type uiBackend struct {
	catalogs   []domain.Catalog
	namespaces map[string][]domain.Namespace
	tables     map[string][]domain.TableIdent
	grants     []domain.Grant
	roles      []domain.PrincipalRole
}

func (b *uiBackend) ListCatalogs(context.Context) ([]domain.Catalog, error) {
	return b.catalogs, nil
}

func (b *uiBackend) ListNamespaces(_ context.Context, catalog string, parent domain.Namespace) ([]domain.Namespace, error) {
	return b.namespaces[catalog+"/"+parent.String()], nil
}

func (b *uiBackend) ListTables(_ context.Context, catalog string, ns domain.Namespace) ([]domain.TableIdent, error) {
	return b.tables[catalog+"/"+ns.String()], nil
}

func (b *uiBackend) ListPrincipals(context.Context) ([]domain.Principal, error) {
	return nil, nil
}

func (b *uiBackend) ListPrincipalRoles(context.Context) ([]domain.PrincipalRole, error) {
	return b.roles, nil
}

func (b *uiBackend) ListPrincipalRolesOf(context.Context, string) ([]domain.PrincipalRole, error) {
	return b.roles, nil
}

func (b *uiBackend) ListCatalogRoles(context.Context, string) ([]domain.CatalogRole, error) {
	return nil, nil
}

func (b *uiBackend) ListCatalogRoleAssignees(context.Context, string, string) ([]domain.PrincipalRole, error) {
	return nil, nil
}

func (b *uiBackend) ListGrants(context.Context, string, string) ([]domain.Grant, error) {
	return b.grants, nil
}

func (b *uiBackend) AddGrant(context.Context, string, string, domain.Grant) error {
	return nil
}

func (b *uiBackend) RevokeGrant(context.Context, string, string, domain.Grant, bool) error {
	return nil
}

func newUITestRouter(backend *uiBackend) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tree := service.NewTreeResolver(backend, logger)
	access := service.NewAccessService(backend, logger, 4, time.Minute)
	grants := service.NewGrantService(backend, access, logger)
	h := NewHandler(tree, access, grants, 100, logger)
	r := chi.NewRouter()
	r.Route("/ui", func(r chi.Router) {
		MountRoutes(r, h)
	})
	return r
}

func TestOverviewRenders(t *testing.T) {
	router := newUITestRouter(&uiBackend{
		catalogs: []domain.Catalog{{Name: "sales"}},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization graph")
}

func TestBrowseExpandFlow(t *testing.T) {
	backend := &uiBackend{
		catalogs: []domain.Catalog{{Name: "sales"}},
		namespaces: map[string][]domain.Namespace{
			"sales/": {{"finance"}},
		},
	}
	router := newUITestRouter(backend)

	// Before expansion the catalog row is an expand control.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/browse", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "+ sales (catalog)")
	assert.NotContains(t, rec.Body.String(), "finance")

	form := url.Values{"kind": {"catalog"}, "catalog": {"sales"}, "path": {""}}
	req := httptest.NewRequest(http.MethodPost, "/ui/browse/expand", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/browse", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "- sales (catalog)", "expanded catalog shows a collapse control")
	assert.Contains(t, body, "finance")
}

func TestRoleGrantsPageShowsRevokeControls(t *testing.T) {
	g, err := domain.NewTableGrant(domain.Namespace{"a"}, "orders", domain.PrivTableReadData)
	require.NoError(t, err)

	router := newUITestRouter(&uiBackend{grants: []domain.Grant{g}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/roles?catalog=sales&role=reader", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "TABLE_READ_DATA")
	assert.Contains(t, body, "Revoke")
	assert.Contains(t, body, "cascade")
}
