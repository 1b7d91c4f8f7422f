package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"catalog-console/internal/domain"
)

// accessBackend is the slice of the backend client the aggregator needs.
type accessBackend interface {
	ListCatalogs(ctx context.Context) ([]domain.Catalog, error)
	ListPrincipals(ctx context.Context) ([]domain.Principal, error)
	ListPrincipalRoles(ctx context.Context) ([]domain.PrincipalRole, error)
	ListPrincipalRolesOf(ctx context.Context, principal string) ([]domain.PrincipalRole, error)
	ListCatalogRoles(ctx context.Context, catalog string) ([]domain.CatalogRole, error)
	ListCatalogRoleAssignees(ctx context.Context, catalog, role string) ([]domain.PrincipalRole, error)
	ListGrants(ctx context.Context, catalog, role string) ([]domain.Grant, error)
}

const (
	defaultFanOutLimit = 8
	cacheSize          = 512
)

// ResolvedGrant is one grant a principal can reach, with every catalog role
// it is reachable through.
type ResolvedGrant struct {
	Grant   domain.Grant
	Sources []domain.CatalogRoleRef
}

// AccessReport answers "what can this principal ultimately do" by walking
// the full Principal -> PrincipalRole -> (Catalog, CatalogRole) -> Grant
// chain.
type AccessReport struct {
	Principal    string
	Roles        []domain.PrincipalRole
	CatalogRoles []domain.CatalogRoleRef
	Grants       []ResolvedGrant
}

// AccessService aggregates the authorization graph across catalogs. Results
// are cached briefly, keyed by query parameter; every mutation purges the
// whole cache rather than tracking which entries a mutation could affect.
type AccessService struct {
	backend     accessBackend
	logger      *slog.Logger
	fanOutLimit int
	cache       *expirable.LRU[string, any]
}

// NewAccessService creates an AccessService. fanOutLimit bounds the number
// of in-flight backend calls during per-catalog fan-outs; cacheTTL bounds
// result staleness.
func NewAccessService(backend accessBackend, logger *slog.Logger, fanOutLimit int, cacheTTL time.Duration) *AccessService {
	if fanOutLimit <= 0 {
		fanOutLimit = defaultFanOutLimit
	}
	return &AccessService{
		backend:     backend,
		logger:      logger,
		fanOutLimit: fanOutLimit,
		cache:       expirable.NewLRU[string, any](cacheSize, nil, cacheTTL),
	}
}

// Invalidate drops every cached aggregation. Called after any grant or role
// mutation; over-invalidation is deliberate.
func (s *AccessService) Invalidate() {
	s.cache.Purge()
}

// InvalidateStats drops only the cached overview statistics, forcing the
// next CollectStats to recompute.
func (s *AccessService) InvalidateStats() {
	s.cache.Remove("stats")
}

// RolesOf returns the principal roles assigned to a principal.
func (s *AccessService) RolesOf(ctx context.Context, principal string) ([]domain.PrincipalRole, error) {
	key := "principal-roles\x1f" + principal
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]domain.PrincipalRole), nil
	}
	roles, err := s.backend.ListPrincipalRolesOf(ctx, principal)
	if err != nil {
		return nil, err
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	s.cache.Add(key, roles)
	return roles, nil
}

// CatalogRolesReachableFrom returns every (catalog, catalogRole) pair the
// principal role is assigned to. No reverse index exists on the backend, so
// this checks every catalog role of every catalog for membership, with
// bounded fan-out. A catalog whose roles cannot be fetched is logged and
// excluded; one bad catalog never blocks visibility into the others.
func (s *AccessService) CatalogRolesReachableFrom(ctx context.Context, principalRole string) ([]domain.CatalogRoleRef, error) {
	key := "reachable\x1f" + principalRole
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]domain.CatalogRoleRef), nil
	}

	catalogs, err := s.backend.ListCatalogs(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		refs []domain.CatalogRoleRef
	)
	g := new(errgroup.Group)
	g.SetLimit(s.fanOutLimit)
	for _, cat := range catalogs {
		g.Go(func() error {
			roles, err := s.backend.ListCatalogRoles(ctx, cat.Name)
			if err != nil {
				s.logger.Warn("skipping catalog in reachability scan", "catalog", cat.Name, "error", err)
				return nil
			}
			for _, role := range roles {
				assignees, err := s.backend.ListCatalogRoleAssignees(ctx, cat.Name, role.Name)
				if err != nil {
					s.logger.Warn("skipping catalog role in reachability scan",
						"catalog", cat.Name, "catalogRole", role.Name, "error", err)
					continue
				}
				for _, assignee := range assignees {
					if assignee.Name == principalRole {
						mu.Lock()
						refs = append(refs, domain.CatalogRoleRef{Catalog: cat.Name, Role: role.Name})
						mu.Unlock()
						break
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	sortRefs(refs)
	s.cache.Add(key, refs)
	return refs, nil
}

// GrantsOf returns the grants attached to one (catalog, catalogRole) pair.
func (s *AccessService) GrantsOf(ctx context.Context, catalog, role string) ([]domain.Grant, error) {
	key := "grants\x1f" + catalog + "\x1f" + role
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]domain.Grant), nil
	}
	grants, err := s.backend.ListGrants(ctx, catalog, role)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, grants)
	return grants, nil
}

// PrincipalAccess composes the full chain for one principal: roles, every
// reachable (catalog, catalogRole) pair, and the union of their grants
// de-duplicated by grant equality with all contributing sources retained.
func (s *AccessService) PrincipalAccess(ctx context.Context, principal string) (*AccessReport, error) {
	roles, err := s.RolesOf(ctx, principal)
	if err != nil {
		return nil, err
	}

	seen := make(map[domain.CatalogRoleRef]bool)
	var refs []domain.CatalogRoleRef
	for _, role := range roles {
		reachable, err := s.CatalogRolesReachableFrom(ctx, role.Name)
		if err != nil {
			return nil, err
		}
		for _, ref := range reachable {
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	sortRefs(refs)

	grants, err := s.grantsAcross(ctx, refs)
	if err != nil {
		return nil, err
	}

	return &AccessReport{
		Principal:    principal,
		Roles:        roles,
		CatalogRoles: refs,
		Grants:       grants,
	}, nil
}

// RoleGrants returns the grants under one catalog role as resolved grants,
// for symmetric display with principal reports.
func (s *AccessService) RoleGrants(ctx context.Context, catalog, role string) ([]ResolvedGrant, error) {
	grants, err := s.GrantsOf(ctx, catalog, role)
	if err != nil {
		return nil, err
	}
	ref := domain.CatalogRoleRef{Catalog: catalog, Role: role}
	out := make([]ResolvedGrant, 0, len(grants))
	for _, g := range grants {
		out = appendResolved(out, g, ref)
	}
	return out, nil
}

// grantsAcross fetches grants for all refs concurrently and unions them.
// A pair whose grants cannot be fetched is logged and excluded.
func (s *AccessService) grantsAcross(ctx context.Context, refs []domain.CatalogRoleRef) ([]ResolvedGrant, error) {
	type pairGrants struct {
		ref    domain.CatalogRoleRef
		grants []domain.Grant
	}

	results := make([]pairGrants, len(refs))
	g := new(errgroup.Group)
	g.SetLimit(s.fanOutLimit)
	for i, ref := range refs {
		g.Go(func() error {
			grants, err := s.GrantsOf(ctx, ref.Catalog, ref.Role)
			if err != nil {
				s.logger.Warn("skipping catalog role grants", "catalog", ref.Catalog, "catalogRole", ref.Role, "error", err)
				return nil
			}
			results[i] = pairGrants{ref: ref, grants: grants}
			return nil
		})
	}
	_ = g.Wait()

	var resolved []ResolvedGrant
	for _, pg := range results {
		for _, grant := range pg.grants {
			resolved = appendResolved(resolved, grant, pg.ref)
		}
	}
	return resolved, nil
}

// appendResolved merges a grant into the list, de-duplicating by grant
// equality and accumulating sources.
func appendResolved(resolved []ResolvedGrant, g domain.Grant, ref domain.CatalogRoleRef) []ResolvedGrant {
	for i := range resolved {
		if domain.GrantsEqual(resolved[i].Grant, g) {
			for _, existing := range resolved[i].Sources {
				if existing == ref {
					return resolved
				}
			}
			resolved[i].Sources = append(resolved[i].Sources, ref)
			return resolved
		}
	}
	return append(resolved, ResolvedGrant{Grant: g, Sources: []domain.CatalogRoleRef{ref}})
}

func sortRefs(refs []domain.CatalogRoleRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Catalog != refs[j].Catalog {
			return refs[i].Catalog < refs[j].Catalog
		}
		return refs[i].Role < refs[j].Role
	})
}
