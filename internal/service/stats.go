package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"catalog-console/internal/domain"
)

// SampledCount is a count that may have been computed over a bounded sample
// of the population instead of the whole of it.
type SampledCount struct {
	Count      int
	SampleSize int
	Sampled    bool
}

// Stats summarizes the principal/role/grant universe for the overview page.
type Stats struct {
	TotalPrincipals              int
	TotalPrincipalRoles          int
	TotalCatalogRoles            int
	TotalPrivileges              int
	CatalogRolesWithNoPrivileges int
	// PrincipalsWithNoRoles is computed over at most the configured sample
	// cap; when capped it must always be presented as a sample, never as an
	// exact total.
	PrincipalsWithNoRoles SampledCount
}

// CollectStats recomputes the console overview statistics. Per-catalog and
// per-role failures are logged and skipped so one bad catalog cannot blank
// the whole overview; the orphan-principal check walks at most sampleLimit
// principals.
func (s *AccessService) CollectStats(ctx context.Context, sampleLimit int) (*Stats, error) {
	if cached, ok := s.cache.Get("stats"); ok {
		return cached.(*Stats), nil
	}

	principals, err := s.backend.ListPrincipals(ctx)
	if err != nil {
		return nil, err
	}
	principalRoles, err := s.backend.ListPrincipalRoles(ctx)
	if err != nil {
		return nil, err
	}
	catalogs, err := s.backend.ListCatalogs(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalPrincipals:     len(principals),
		TotalPrincipalRoles: len(principalRoles),
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.fanOutLimit)
	for _, cat := range catalogs {
		g.Go(func() error {
			roles, err := s.backend.ListCatalogRoles(ctx, cat.Name)
			if err != nil {
				s.logger.Warn("skipping catalog in stats", "catalog", cat.Name, "error", err)
				return nil
			}
			for _, role := range roles {
				grants, err := s.backend.ListGrants(ctx, cat.Name, role.Name)
				if err != nil {
					s.logger.Warn("skipping catalog role in stats",
						"catalog", cat.Name, "catalogRole", role.Name, "error", err)
					continue
				}
				mu.Lock()
				stats.TotalCatalogRoles++
				stats.TotalPrivileges += len(grants)
				if len(grants) == 0 {
					stats.CatalogRolesWithNoPrivileges++
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.PrincipalsWithNoRoles = s.orphanPrincipals(ctx, principals, sampleLimit)

	s.cache.Add("stats", stats)
	return stats, nil
}

// orphanPrincipals counts principals with no principal roles over at most
// sampleLimit principals.
func (s *AccessService) orphanPrincipals(ctx context.Context, principals []domain.Principal, sampleLimit int) SampledCount {
	sample := principals
	sampled := false
	if sampleLimit > 0 && len(principals) > sampleLimit {
		sample = principals[:sampleLimit]
		sampled = true
	}

	var (
		mu    sync.Mutex
		count int
	)
	g := new(errgroup.Group)
	g.SetLimit(s.fanOutLimit)
	for _, p := range sample {
		g.Go(func() error {
			roles, err := s.backend.ListPrincipalRolesOf(ctx, p.Name)
			if err != nil {
				s.logger.Warn("skipping principal in orphan check", "principal", p.Name, "error", err)
				return nil
			}
			if len(roles) == 0 {
				mu.Lock()
				count++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return SampledCount{Count: count, SampleSize: len(sample), Sampled: sampled}
}
