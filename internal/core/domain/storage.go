package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Area identifies one of the two browser-scoped key-value stores.
type Area string

const (
	// AreaSession lives as long as the browser session cookie.
	AreaSession Area = "session"
	// AreaPersistent survives browser restarts.
	AreaPersistent Area = "persistent"
)

// Key is an entry of the storage key schema. Handlers never use literal key
// names; every key the portal reads or writes is declared here.
type Key string

const (
	KeySiteAccess    Key = "fsrp_access"
	KeySiteTimestamp Key = "fsrp_access_timestamp"

	KeyTrainerAuth      Key = "authenticated"
	KeyTrainerTimestamp Key = "authTimestamp"

	KeyStaffAuth      Key = "swpd_authenticated"
	KeyStaffTimestamp Key = "swpd_authTimestamp"

	KeyDiscordToken        Key = "discord_access_token"
	KeyDiscordTimestamp    Key = "discord_auth_timestamp"
	KeyDiscordSaveLogin    Key = "discord_save_login"
	KeyDiscordIsTrainer    Key = "discord_is_trainer"
	KeyDiscordIsStaff      Key = "discord_is_staff"
	KeyDiscordUsername     Key = "discord_username"
	KeyDiscordUserID       Key = "discord_user_id"
	KeyDiscordRoles        Key = "discord_roles"
	KeyDiscordDestination  Key = "discord_auth_destination"
	KeyDiscordJustLoggedIn Key = "discord_just_logged_in"

	KeyNotifications Key = "portal_notifications"
)

const viewerKeyPrefix = "viewer_state:"

// ViewerKey returns the key holding the viewer state of a document.
func ViewerKey(doc string) Key {
	return Key(viewerKeyPrefix + doc)
}

// DiscordAuthKeys is what an expired or missing Discord login clears.
var DiscordAuthKeys = []Key{
	KeyDiscordToken,
	KeyDiscordTimestamp,
	KeyDiscordIsTrainer,
	KeyDiscordIsStaff,
}

// DiscordAccountKeys is everything a Discord logout clears. The save-login
// preference is kept.
var DiscordAccountKeys = []Key{
	KeyDiscordToken,
	KeyDiscordTimestamp,
	KeyDiscordUsername,
	KeyDiscordUserID,
	KeyDiscordIsTrainer,
	KeyDiscordIsStaff,
	KeyDiscordRoles,
	KeyDiscordJustLoggedIn,
}

// Mutation is a pending write to one key of one area.
type Mutation struct {
	Value  string
	Delete bool
}

// Changes groups the mutations a request made, per area.
type Changes map[Area]map[Key]Mutation

// Empty reports whether there is nothing to persist.
func (c Changes) Empty() bool {
	for _, m := range c {
		if len(m) > 0 {
			return false
		}
	}
	return true
}

// Storage is the in-request view of both storage areas. It is loaded from
// the backend once per request, mutated by services and flushed back through
// Changes. A Storage is not safe for concurrent use.
type Storage struct {
	id      string
	areas   map[Area]map[Key]string
	changes Changes
}

// NewStorage builds a Storage from the raw contents of both areas.
func NewStorage(session, persistent map[Key]string) *Storage {
	s := &Storage{
		areas: map[Area]map[Key]string{
			AreaSession:    make(map[Key]string, len(session)),
			AreaPersistent: make(map[Key]string, len(persistent)),
		},
		changes: Changes{},
	}
	for k, v := range session {
		s.areas[AreaSession][k] = v
	}
	for k, v := range persistent {
		s.areas[AreaPersistent][k] = v
	}
	return s
}

// ID identifies the browser the storage belongs to (its session area id).
func (s *Storage) ID() string { return s.id }

// SetID records the owning browser.
func (s *Storage) SetID(id string) { s.id = id }

// Get returns the value of key in the given area.
func (s *Storage) Get(area Area, key Key) (string, bool) {
	v, ok := s.areas[area][key]
	return v, ok
}

// Lookup finds key in the persistent area first, then the session area.
func (s *Storage) Lookup(key Key) (string, Area, bool) {
	if v, ok := s.areas[AreaPersistent][key]; ok {
		return v, AreaPersistent, true
	}
	if v, ok := s.areas[AreaSession][key]; ok {
		return v, AreaSession, true
	}
	return "", "", false
}

// Has reports whether key is present in either area.
func (s *Storage) Has(key Key) bool {
	_, _, ok := s.Lookup(key)
	return ok
}

// Set writes key in the given area.
func (s *Storage) Set(area Area, key Key, value string) {
	if s.areas[area] == nil {
		s.areas[area] = map[Key]string{}
	}
	s.areas[area][key] = value
	s.record(area, key, Mutation{Value: value})
}

// Remove deletes key from the given area.
func (s *Storage) Remove(area Area, key Key) {
	if _, ok := s.areas[area][key]; !ok {
		return
	}
	delete(s.areas[area], key)
	s.record(area, key, Mutation{Delete: true})
}

// Clear removes keys from both areas.
func (s *Storage) Clear(keys ...Key) {
	for _, k := range keys {
		s.Remove(AreaSession, k)
		s.Remove(AreaPersistent, k)
	}
}

// Move transfers keys from one area to the other. Nothing moves unless every
// key is present in the source area, so a token and its timestamp always
// live together in exactly one area.
func (s *Storage) Move(from, to Area, keys ...Key) bool {
	if from == to {
		return false
	}
	values := make(map[Key]string, len(keys))
	for _, k := range keys {
		v, ok := s.areas[from][k]
		if !ok {
			return false
		}
		values[k] = v
	}
	for _, k := range keys {
		s.Set(to, k, values[k])
		s.Remove(from, k)
	}
	return true
}

// Bool reports whether key holds the literal "true" in either area.
func (s *Storage) Bool(key Key) bool {
	v, _, ok := s.Lookup(key)
	return ok && v == "true"
}

// SetBool writes a boolean flag.
func (s *Storage) SetBool(area Area, key Key, v bool) {
	s.Set(area, key, strconv.FormatBool(v))
}

// Time parses an epoch-millisecond timestamp.
func (s *Storage) Time(key Key) (time.Time, bool) {
	v, _, ok := s.Lookup(key)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// SetTime writes t as epoch milliseconds.
func (s *Storage) SetTime(area Area, key Key, t time.Time) {
	s.Set(area, key, strconv.FormatInt(t.UnixMilli(), 10))
}

// Strings decodes a JSON string array. A missing key yields nil; a malformed
// value yields nil and an error wrapping ErrMalformedValue.
func (s *Storage) Strings(key Key) ([]string, error) {
	v, _, ok := s.Lookup(key)
	if !ok || v == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedValue, key, err)
	}
	return out, nil
}

// SetStrings encodes values as a JSON array.
func (s *Storage) SetStrings(area Area, key Key, values []string) {
	if values == nil {
		values = []string{}
	}
	raw, _ := json.Marshal(values)
	s.Set(area, key, string(raw))
}

// JSON decodes the value of key into dst. It reports false when the key is
// absent.
func (s *Storage) JSON(area Area, key Key, dst any) (bool, error) {
	v, ok := s.Get(area, key)
	if !ok || v == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrMalformedValue, key, err)
	}
	return true, nil
}

// SetJSON encodes v into key.
func (s *Storage) SetJSON(area Area, key Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.Set(area, key, string(raw))
	return nil
}

// Snapshot returns a copy of one area.
func (s *Storage) Snapshot(area Area) map[Key]string {
	out := make(map[Key]string, len(s.areas[area]))
	for k, v := range s.areas[area] {
		out[k] = v
	}
	return out
}

// Changes returns the mutations made since the Storage was loaded.
func (s *Storage) Changes() Changes {
	out := make(Changes, len(s.changes))
	for area, m := range s.changes {
		cp := make(map[Key]Mutation, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[area] = cp
	}
	return out
}

// Dirty reports whether the request modified any area.
func (s *Storage) Dirty() bool {
	return !s.changes.Empty()
}

// ResetChanges forgets recorded mutations after they were persisted.
func (s *Storage) ResetChanges() {
	s.changes = Changes{}
}

func (s *Storage) record(area Area, key Key, m Mutation) {
	if s.changes[area] == nil {
		s.changes[area] = map[Key]Mutation{}
	}
	s.changes[area][key] = m
}
