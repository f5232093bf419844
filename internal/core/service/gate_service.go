package service

import (
	"crypto/subtle"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

// Gate configures one passcode gate.
//
// Passcodes are an allow-list checked by Match. The gate deters casual
// navigation only: anyone who can set storage can bypass it.
type Gate struct {
	Scope     domain.ScopeName
	Page      string
	Home      string
	Flag      domain.Key
	Timestamp domain.Key
	Passcodes []string
}

type gateService struct {
	gates map[domain.ScopeName]Gate
	audit ports.AuditRecorder
	log   zerolog.Logger
}

// NewGateService returns a GateService over the given gates.
func NewGateService(gates []Gate, audit ports.AuditRecorder, log zerolog.Logger) ports.GateService {
	byScope := make(map[domain.ScopeName]Gate, len(gates))
	for _, g := range gates {
		byScope[g.Scope] = g
	}
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &gateService{gates: byScope, audit: audit, log: log}
}

// Normalize trims and lower-cases a passcode.
func Normalize(input string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(input))
}

// Match reports whether input matches an allow-list entry. Entries are
// either plaintext (normalized before comparing) or bcrypt hashes of the
// normalized passcode.
func Match(allowList []string, input string) bool {
	candidate := Normalize(input)
	if candidate == "" {
		return false
	}
	for _, entry := range allowList {
		if isBcryptHash(entry) {
			if bcrypt.CompareHashAndPassword([]byte(entry), []byte(candidate)) == nil {
				return true
			}
			continue
		}
		if subtle.ConstantTimeCompare([]byte(Normalize(entry)), []byte(candidate)) == 1 {
			return true
		}
	}
	return false
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func (s *gateService) gate(scope domain.ScopeName) (Gate, error) {
	g, ok := s.gates[scope]
	if !ok {
		return Gate{}, fmt.Errorf("gate %q: %w", scope, domain.ErrUnknownScope)
	}
	return g, nil
}

func (s *gateService) GatePage(scope domain.ScopeName) (string, error) {
	g, err := s.gate(scope)
	if err != nil {
		return "", err
	}
	return g.Page, nil
}

// Submit checks a passcode. On success the flag and timestamp are written to
// the session area.
func (s *gateService) Submit(st *domain.Storage, in ports.GateSubmission, now time.Time) (ports.GateResult, error) {
	g, err := s.gate(in.Scope)
	if err != nil {
		return ports.GateResult{}, err
	}

	event := domain.AccessEvent{
		Type:      domain.EventGateAttempt,
		Scope:     g.Scope,
		StorageID: st.ID(),
		Timestamp: now,
	}

	if !Match(g.Passcodes, in.Passcode) {
		event.Outcome = "rejected"
		s.audit.Record(event)
		s.log.Debug().Str("scope", string(g.Scope)).Msg("passcode rejected")

		params := url.Values{"error": {"invalid_passcode"}}
		if d := domain.SanitizeDestination(in.Destination, ""); d != "" {
			params.Set("destination", d)
		}
		return ports.GateResult{
			Redirect:     domain.WithQuery(g.Page, params),
			DismissAfter: domain.ErrorIndicatorDuration,
		}, domain.ErrInvalidPasscode
	}

	st.SetBool(domain.AreaSession, g.Flag, true)
	st.SetTime(domain.AreaSession, g.Timestamp, now)

	event.Outcome = "granted"
	s.audit.Record(event)
	s.log.Info().Str("scope", string(g.Scope)).Msg("passcode gate passed")

	return ports.GateResult{Redirect: domain.Root(domain.SanitizeDestination(in.Destination, g.Home))}, nil
}

// Logout clears the gate's keys and returns its page.
func (s *gateService) Logout(st *domain.Storage, scope domain.ScopeName) (string, error) {
	g, err := s.gate(scope)
	if err != nil {
		return "", err
	}
	st.Clear(g.Flag, g.Timestamp)
	s.audit.Record(domain.AccessEvent{
		Type:      domain.EventGateLogout,
		Scope:     g.Scope,
		Outcome:   "cleared",
		StorageID: st.ID(),
		Timestamp: time.Now(),
	})
	return domain.Root(g.Page), nil
}
