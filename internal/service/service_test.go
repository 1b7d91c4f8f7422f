package service

import (
	"context"
	"io"
	"log/slog"

	"catalog-console/internal/domain"
)

// fakeBackend implements the backend interfaces with per-method hooks. Nil
// hooks return empty results.
type fakeBackend struct {
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

func (f *fakeBackend) ListCatalogs(ctx context.Context) ([]domain.Catalog, error) {
	if f.listCatalogs == nil {
		return nil, nil
	}
	return f.listCatalogs(ctx)
}

func (f *fakeBackend) ListNamespaces(ctx context.Context, catalog string, parent domain.Namespace) ([]domain.Namespace, error) {
	if f.listNamespaces == nil {
		return nil, nil
	}
	return f.listNamespaces(ctx, catalog, parent)
}

func (f *fakeBackend) ListTables(ctx context.Context, catalog string, ns domain.Namespace) ([]domain.TableIdent, error) {
	if f.listTables == nil {
		return nil, nil
	}
	return f.listTables(ctx, catalog, ns)
}

func (f *fakeBackend) ListPrincipals(ctx context.Context) ([]domain.Principal, error) {
	if f.listPrincipals == nil {
		return nil, nil
	}
	return f.listPrincipals(ctx)
}

func (f *fakeBackend) ListPrincipalRoles(ctx context.Context) ([]domain.PrincipalRole, error) {
	if f.listPrincipalRoles == nil {
		return nil, nil
	}
	return f.listPrincipalRoles(ctx)
}

func (f *fakeBackend) ListPrincipalRolesOf(ctx context.Context, principal string) ([]domain.PrincipalRole, error) {
	if f.listPrincipalRolesOf == nil {
		return nil, nil
	}
	return f.listPrincipalRolesOf(ctx, principal)
}

func (f *fakeBackend) ListCatalogRoles(ctx context.Context, catalog string) ([]domain.CatalogRole, error) {
	if f.listCatalogRoles == nil {
		return nil, nil
	}
	return f.listCatalogRoles(ctx, catalog)
}

func (f *fakeBackend) ListCatalogRoleAssignees(ctx context.Context, catalog, role string) ([]domain.PrincipalRole, error) {
	if f.listCatalogRoleAssignees == nil {
		return nil, nil
	}
	return f.listCatalogRoleAssignees(ctx, catalog, role)
}

func (f *fakeBackend) ListGrants(ctx context.Context, catalog, role string) ([]domain.Grant, error) {
	if f.listGrants == nil {
		return nil, nil
	}
	return f.listGrants(ctx, catalog, role)
}

func (f *fakeBackend) AddGrant(ctx context.Context, catalog, role string, g domain.Grant) error {
	if f.addGrant == nil {
		return nil
	}
	return f.addGrant(ctx, catalog, role, g)
}

func (f *fakeBackend) RevokeGrant(ctx context.Context, catalog, role string, g domain.Grant, cascade bool) error {
	if f.revokeGrant == nil {
		return nil
	}
	return f.revokeGrant(ctx, catalog, role, g, cascade)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
