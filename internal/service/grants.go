package service

import (
	"context"
	"log/slog"

	"catalog-console/internal/domain"
)

// grantBackend is the slice of the backend client grant mutations need.
type grantBackend interface {
	ListGrants(ctx context.Context, catalog, role string) ([]domain.Grant, error)
	AddGrant(ctx context.Context, catalog, role string, g domain.Grant) error
	RevokeGrant(ctx context.Context, catalog, role string, g domain.Grant, cascade bool) error
}

// RevokeOutcome enumerates exactly what a revoke removed and what it failed
// to remove. Cascade revokes are not transactional, so both lists can be
// non-empty at once.
type RevokeOutcome struct {
	Revoked []domain.Grant
	Failed  []domain.GrantFailure
}

// GrantService mutates grants on catalog roles and applies the cascade
// policy on revocation. Every successful mutation invalidates the
// aggregator's caches.
type GrantService struct {
	backend grantBackend
	access  *AccessService
	logger  *slog.Logger
}

// NewGrantService creates a GrantService.
func NewGrantService(backend grantBackend, access *AccessService, logger *slog.Logger) *GrantService {
	return &GrantService{backend: backend, access: access, logger: logger}
}

// Add attaches a grant to a catalog role. The grant has already passed
// construction-time validation, so the only failures here are transport
// failures.
func (s *GrantService) Add(ctx context.Context, catalog, role string, g domain.Grant) error {
	if err := s.backend.AddGrant(ctx, catalog, role, g); err != nil {
		return err
	}
	s.access.Invalidate()
	s.logger.Info("grant added", "catalog", catalog, "catalogRole", role,
		"securable", g.Securable(), "path", domain.FormatGrantPath(g), "privilege", g.Privilege())
	return nil
}

// Revoke removes a grant from a catalog role. With cascade false only the
// exact grant (by grant equality) is removed. With cascade true, every grant
// on the same catalog role whose entity is a descendant of the target's is
// removed as well: a namespace grant's descendants are all grants on strict
// extensions of its namespace, a catalog grant's descendants are every grant
// on the role, and table/view/policy grants have none.
//
// The root grant is revoked first; if it fails nothing else is attempted.
// Descendant removals then proceed independently, and a partial failure is
// reported as a *domain.PartialRevokeError with the outcome enumerating
// both lists.
func (s *GrantService) Revoke(ctx context.Context, catalog, role string, g domain.Grant, cascade bool) (*RevokeOutcome, error) {
	outcome := &RevokeOutcome{}

	var descendants []domain.Grant
	if cascade {
		existing, err := s.backend.ListGrants(ctx, catalog, role)
		if err != nil {
			return outcome, err
		}
		descendants = cascadeTargets(g, existing)
	}

	if err := s.backend.RevokeGrant(ctx, catalog, role, g, false); err != nil {
		return outcome, err
	}
	outcome.Revoked = append(outcome.Revoked, g)
	s.access.Invalidate()

	for _, target := range descendants {
		if err := s.backend.RevokeGrant(ctx, catalog, role, target, false); err != nil {
			s.logger.Warn("cascade revoke failed for descendant", "catalog", catalog,
				"catalogRole", role, "path", domain.FormatGrantPath(target), "error", err)
			outcome.Failed = append(outcome.Failed, domain.GrantFailure{Grant: target, Err: err})
			continue
		}
		outcome.Revoked = append(outcome.Revoked, target)
	}
	s.access.Invalidate()

	s.logger.Info("grant revoked", "catalog", catalog, "catalogRole", role,
		"path", domain.FormatGrantPath(g), "privilege", g.Privilege(),
		"cascade", cascade, "removed", len(outcome.Revoked), "failed", len(outcome.Failed))

	if len(outcome.Failed) > 0 {
		return outcome, &domain.PartialRevokeError{Revoked: outcome.Revoked, Failed: outcome.Failed}
	}
	return outcome, nil
}

// cascadeTargets selects the grants on the role that are descendants of the
// root grant's entity. The root grant itself is excluded.
func cascadeTargets(root domain.Grant, existing []domain.Grant) []domain.Grant {
	var targets []domain.Grant
	for _, candidate := range existing {
		if domain.GrantsEqual(root, candidate) {
			continue
		}
		if isDescendant(root, candidate) {
			targets = append(targets, candidate)
		}
	}
	return targets
}

// isDescendant reports whether candidate's entity lies under root's entity.
func isDescendant(root, candidate domain.Grant) bool {
	switch root.Securable() {
	case domain.SecurableCatalog:
		// Every grant on the role lives in the root grant's catalog.
		return true
	case domain.SecurableNamespace:
		rootPath := root.Path()
		switch candidate.Securable() {
		case domain.SecurableCatalog:
			return false
		case domain.SecurableNamespace:
			// Strict extension only: the namespace itself is the root.
			return len(candidate.Path()) > len(rootPath) && candidate.Path().HasPrefix(rootPath)
		default:
			// Tables/views/policies directly inside the namespace count too.
			return candidate.Path().HasPrefix(rootPath)
		}
	default:
		// Table/view/policy grants have no descendants.
		return false
	}
}
