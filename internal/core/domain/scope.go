package domain

import (
	"path"
	"strings"
	"time"
)

// ScopeName identifies an independent protection scope.
type ScopeName string

const (
	ScopeSite    ScopeName = "site"
	ScopeTrainer ScopeName = "trainer"
	ScopeStaff   ScopeName = "staff"
	ScopeAccount ScopeName = "account"
)

// Default timeouts.
const (
	PasscodeTimeout         = 30 * time.Minute
	DiscordSaveLoginTimeout = 7 * 24 * time.Hour
	DiscordSessionTimeout   = time.Hour
)

// Expired reports whether a grant issued at issued has outlived timeout.
// A grant is still valid when exactly timeout has elapsed. A zero timeout
// never expires.
func Expired(issued, now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	return now.Sub(issued) > timeout
}

// Grant is one way of satisfying a scope.
type Grant interface {
	// Check reports whether the grant holds. stale is true when the grant is
	// absent or expired and its keys should be cleared.
	Check(st *Storage, now time.Time) (valid, stale bool)
	// Keys lists the storage keys the grant owns.
	Keys() []Key
	Name() string
}

// PasscodeGrant is the flag + timestamp pair written by a passcode gate.
type PasscodeGrant struct {
	Flag      Key
	Timestamp Key
	Timeout   time.Duration
}

func (g PasscodeGrant) Name() string { return "passcode" }

func (g PasscodeGrant) Keys() []Key { return []Key{g.Flag, g.Timestamp} }

func (g PasscodeGrant) Check(st *Storage, now time.Time) (bool, bool) {
	if !st.Bool(g.Flag) {
		return false, true
	}
	issued, ok := st.Time(g.Timestamp)
	if !ok || Expired(issued, now, g.Timeout) {
		return false, true
	}
	return true, false
}

// DiscordGrant is a live Discord token, optionally combined with a cached
// entitlement flag.
type DiscordGrant struct {
	// Entitlement is the flag that must hold "true"; empty means any
	// logged-in user passes.
	Entitlement      Key
	SaveLoginTimeout time.Duration
	SessionTimeout   time.Duration
}

func (g DiscordGrant) Name() string { return "discord" }

func (g DiscordGrant) Keys() []Key { return DiscordAuthKeys }

func (g DiscordGrant) Check(st *Storage, now time.Time) (bool, bool) {
	token, _, ok := st.Lookup(KeyDiscordToken)
	if !ok || token == "" {
		return false, true
	}
	issued, ok := st.Time(KeyDiscordTimestamp)
	if !ok || Expired(issued, now, g.Timeout(st.Bool(KeyDiscordSaveLogin))) {
		return false, true
	}
	if g.Entitlement != "" && !st.Bool(g.Entitlement) {
		return false, false
	}
	return true, false
}

// Timeout selects the token lifetime for the save-login preference.
func (g DiscordGrant) Timeout(saveLogin bool) time.Duration {
	if saveLogin {
		return g.SaveLoginTimeout
	}
	return g.SessionTimeout
}

// Scope is a set of protected pages guarded by a gate page.
type Scope struct {
	Name ScopeName
	// GatePage is where failing requests are sent, with ?destination=.
	GatePage string
	// Home is where a successful gate submission lands by default.
	Home string
	// Paths are the protected pages, relative to the site root.
	Paths []string
	// AllPages protects every HTML page that is not listed in Exempt.
	AllPages bool
	// Prefixes protects every path below the listed directories.
	Prefixes []string
	Exempt   []string
	Grants   []Grant
}

// CanonicalPath resolves dot segments and repeated slashes the way the
// static file server does, so /./a.html, //a.html and /x/../a.html all
// become /a.html.
func CanonicalPath(p string) string {
	return path.Clean("/" + p)
}

// Protects reports whether the scope guards the given request path.
func (s Scope) Protects(requestPath string) bool {
	p := strings.TrimPrefix(CanonicalPath(requestPath), "/")
	if s.AllPages {
		if p == "" {
			p = "index.html"
		}
		for _, e := range s.Exempt {
			if strings.EqualFold(p, e) {
				return false
			}
		}
		if strings.HasSuffix(strings.ToLower(p), ".html") {
			return true
		}
	}
	lower := strings.ToLower(p)
	for _, prefix := range s.Prefixes {
		if strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return true
		}
	}
	if s.AllPages {
		return false
	}
	for _, candidate := range s.Paths {
		if strings.EqualFold(p, candidate) {
			return true
		}
	}
	return false
}

// Keys lists every key owned by the scope's grants.
func (s Scope) Keys() []Key {
	var keys []Key
	for _, g := range s.Grants {
		keys = append(keys, g.Keys()...)
	}
	return keys
}

// Decision is the outcome of evaluating one scope.
type Decision struct {
	Scope   ScopeName
	Allowed bool
	// Grant names the grant that satisfied the scope.
	Grant string
	// Cleared lists keys removed because their grant was stale.
	Cleared []Key
	// Redirect is the gate URL to send the browser to when not allowed.
	Redirect string
}
