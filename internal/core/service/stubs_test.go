package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
)

var (
	errDiscordDown = errors.New("discord unavailable")
	testNow        = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	testLog        = zerolog.Nop()
)

const (
	testGuild       = "guild-1"
	testTrainerRole = "role-trainer"
	testStaffRole   = "role-staff"
)

func testDiscordConfig() domain.DiscordConfig {
	return domain.DiscordConfig{
		ClientID:       "client-1",
		GuildID:        testGuild,
		TrainerRoleIDs: []string{testTrainerRole},
		StaffRoleIDs:   []string{testStaffRole},
		Scope:          "identify guilds guilds.members.read",
		AuthorizeURL:   "https://discord.com/api/oauth2/authorize",
		CallbackPage:   domain.PageDiscordCallback,
		LoginPage:      domain.PageDiscordLogin,
	}
}

func testCatalogue() []domain.GuildRole {
	return []domain.GuildRole{
		{ID: testGuild, Name: "@everyone"},
		{ID: testTrainerRole, Name: "Trainer", Color: 0x3498db},
		{ID: testStaffRole, Name: "Staff", Color: 0xe74c3c},
	}
}

// stubDiscordAPI answers from fixed values. Errors keyed by credential kind
// let tests fail the bearer path while keeping the bot path alive.
type stubDiscordAPI struct {
	mu sync.Mutex

	user    *domain.Profile
	userErr error

	guilds    []domain.GuildSummary
	guildsErr error

	selfMember    *domain.GuildMember
	selfMemberErr error

	roles    []domain.GuildRole
	rolesErr map[domain.CredentialKind]error

	member    *domain.GuildMember
	memberErr map[domain.CredentialKind]error

	delay time.Duration
	calls []string
}

func newStubDiscordAPI() *stubDiscordAPI {
	return &stubDiscordAPI{
		user:       &domain.Profile{ID: "user-1", Username: "alice"},
		guilds:     []domain.GuildSummary{{ID: testGuild, Name: "FSRP"}},
		selfMember: &domain.GuildMember{UserID: "user-1", Roles: []string{testTrainerRole}},
		roles:      testCatalogue(),
		rolesErr:   map[domain.CredentialKind]error{},
		member:     &domain.GuildMember{UserID: "user-1", Roles: []string{testTrainerRole}},
		memberErr:  map[domain.CredentialKind]error{},
	}
}

func (s *stubDiscordAPI) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubDiscordAPI) wait(ctx context.Context) error {
	if s.delay == 0 {
		return nil
	}
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *stubDiscordAPI) CurrentUser(ctx context.Context, _ string) (*domain.Profile, error) {
	s.record("user")
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.user, s.userErr
}

func (s *stubDiscordAPI) CurrentUserGuilds(_ context.Context, _ string) ([]domain.GuildSummary, error) {
	s.record("guilds")
	return s.guilds, s.guildsErr
}

func (s *stubDiscordAPI) CurrentUserGuildMember(_ context.Context, _, _ string) (*domain.GuildMember, error) {
	s.record("self-member")
	if s.selfMemberErr != nil {
		return nil, s.selfMemberErr
	}
	return s.selfMember, nil
}

func (s *stubDiscordAPI) GuildRoles(_ context.Context, cred domain.Credential, _ string) ([]domain.GuildRole, error) {
	s.record("roles:" + string(cred.Kind))
	if err := s.rolesErr[cred.Kind]; err != nil {
		return nil, err
	}
	return s.roles, nil
}

func (s *stubDiscordAPI) GuildMember(_ context.Context, cred domain.Credential, _, _ string) (*domain.GuildMember, error) {
	s.record("member:" + string(cred.Kind))
	if err := s.memberErr[cred.Kind]; err != nil {
		return nil, err
	}
	return s.member, nil
}

type recordingAudit struct {
	events []domain.AccessEvent
}

func (r *recordingAudit) Record(e domain.AccessEvent) {
	r.events = append(r.events, e)
}

func (r *recordingAudit) count(t domain.AccessEventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func emptyStorage() *domain.Storage {
	st := domain.NewStorage(nil, nil)
	st.SetID("sid-1")
	return st
}

func boolPtr(b bool) *bool { return &b }
