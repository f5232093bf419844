package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

type accessEvaluator struct {
	scopes []domain.Scope
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

// NewAccessEvaluator returns an evaluator over scopes, checked in order.
func NewAccessEvaluator(scopes []domain.Scope, audit ports.AuditRecorder, log zerolog.Logger) ports.AccessEvaluator {
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &accessEvaluator{scopes: scopes, audit: audit, log: log}
}

func (e *accessEvaluator) Scope(name domain.ScopeName) (domain.Scope, bool) {
	for _, s := range e.scopes {
		if s.Name == name {
			return s, true
		}
	}
	return domain.Scope{}, false
}

// Evaluate runs every scope that protects path. Stale grants of the scopes
// it checks are cleared from both areas; the first failing scope wins.
func (e *accessEvaluator) Evaluate(st *domain.Storage, path string, now time.Time) domain.Decision {
	path = domain.CanonicalPath(path)
	allowed := domain.Decision{Allowed: true}
	for _, scope := range e.scopes {
		if !scope.Protects(path) {
			continue
		}
		d := e.evaluateScope(st, scope, now)
		if d.Allowed {
			continue
		}
		d.Redirect = domain.GateRedirect(scope.GatePage, path)

		e.audit.Record(domain.AccessEvent{
			Type:      domain.EventAccessDenied,
			Scope:     scope.Name,
			Outcome:   "redirected",
			StorageID: st.ID(),
			Path:      path,
			Timestamp: now,
		})
		e.log.Debug().
			Str("scope", string(scope.Name)).
			Str("path", path).
			Int("cleared", len(d.Cleared)).
			Msg("access denied")
		return d
	}
	return allowed
}

func (e *accessEvaluator) Granted(st *domain.Storage, name domain.ScopeName, now time.Time) bool {
	scope, ok := e.Scope(name)
	if !ok {
		return false
	}
	return e.evaluateScope(st, scope, now).Allowed
}

func (e *accessEvaluator) evaluateScope(st *domain.Storage, scope domain.Scope, now time.Time) domain.Decision {
	d := domain.Decision{Scope: scope.Name}
	var stale []domain.Grant
	for _, g := range scope.Grants {
		valid, isStale := g.Check(st, now)
		if valid {
			d.Allowed = true
			d.Grant = g.Name()
			return d
		}
		if isStale {
			stale = append(stale, g)
		}
	}
	for _, g := range stale {
		for _, k := range g.Keys() {
			if st.Has(k) {
				d.Cleared = append(d.Cleared, k)
			}
		}
		st.Clear(g.Keys()...)
	}
	return d
}
