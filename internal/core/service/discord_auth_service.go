package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

const defaultCallbackTimeout = 5 * time.Second

// DiscordAuthConfig configures the Discord login flow.
type DiscordAuthConfig struct {
	Discord domain.DiscordConfig
	// VerifyOnCallback checks roles right after login. When false both
	// entitlements are granted without asking Discord.
	VerifyOnCallback bool
	CallbackTimeout  time.Duration
}

type discordAuthService struct {
	cfg      DiscordAuthConfig
	verifier ports.Verifier
	notify   ports.NotificationService
	audit    ports.AuditRecorder
	log      zerolog.Logger
}

// NewDiscordAuthService wires the Discord implicit-grant flow.
func NewDiscordAuthService(
	cfg DiscordAuthConfig,
	verifier ports.Verifier,
	notify ports.NotificationService,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) ports.DiscordAuthService {
	if cfg.CallbackTimeout <= 0 {
		cfg.CallbackTimeout = defaultCallbackTimeout
	}
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &discordAuthService{cfg: cfg, verifier: verifier, notify: notify, audit: audit, log: log}
}

func (s *discordAuthService) LoginPage() string {
	return s.cfg.Discord.LoginPage
}

// Begin remembers where to return and returns the provider URL.
func (s *discordAuthService) Begin(st *domain.Storage, destination, origin string) (string, error) {
	if !s.cfg.Discord.Enabled() {
		return "", domain.ErrDiscordDisabled
	}
	st.Set(domain.AreaPersistent, domain.KeyDiscordDestination, domain.SanitizeDestination(destination, domain.PageIndex))
	return s.cfg.Discord.AuthorizationURL(origin), nil
}

// Complete stores the token from the callback, verifies it and returns the
// destination. On failure the returned URL is the login page carrying the
// error code.
func (s *discordAuthService) Complete(ctx context.Context, st *domain.Storage, in ports.CallbackInput, now time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallbackTimeout)
	defer cancel()

	res, err := domain.ParseCallback(in.Fragment, in.Query)
	if err != nil {
		return s.fail(st, err, now)
	}

	area := TokenArea(st)
	st.Remove(other(area), domain.KeyDiscordToken)
	st.Remove(other(area), domain.KeyDiscordTimestamp)
	st.Set(area, domain.KeyDiscordToken, res.AccessToken)
	st.SetTime(area, domain.KeyDiscordTimestamp, now)
	st.SetBool(domain.AreaSession, domain.KeyDiscordJustLoggedIn, true)

	v := domain.Verification{
		Entitlements: domain.Entitlements{Trainer: true, Staff: true},
		Strategy:     "skipped",
	}
	if s.cfg.VerifyOnCallback {
		v = s.verifier.Verify(ctx, st, res.AccessToken)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		st.Clear(domain.DiscordAccountKeys...)
		return s.fail(st, domain.ErrBotOffline, now)
	}

	StoreVerification(st, area, v)
	s.audit.Record(domain.AccessEvent{
		Type:      domain.EventVerification,
		Outcome:   v.Strategy,
		StorageID: st.ID(),
		Detail:    errString(v.Err),
		Timestamp: now,
	})

	username := "User"
	if v.Profile != nil && v.Profile.Username != "" {
		username = v.Profile.Username
	}
	s.notify.Welcome(st, username, v.RoleNames, now)

	dest := domain.PageIndex
	if stored, _, ok := st.Lookup(domain.KeyDiscordDestination); ok {
		dest = domain.SanitizeDestination(stored, domain.PageIndex)
	}
	st.Clear(domain.KeyDiscordDestination)

	s.audit.Record(domain.AccessEvent{
		Type:      domain.EventDiscordLogin,
		Outcome:   "granted",
		StorageID: st.ID(),
		Path:      dest,
		Timestamp: now,
	})
	s.log.Info().
		Str("destination", dest).
		Str("strategy", v.Strategy).
		Bool("trainer", v.Entitlements.Trainer).
		Bool("staff", v.Entitlements.Staff).
		Msg("discord login completed")

	return domain.Root(dest), nil
}

func (s *discordAuthService) fail(st *domain.Storage, err error, now time.Time) (string, error) {
	code := domain.CallbackErrorCode(err)
	s.audit.Record(domain.AccessEvent{
		Type:      domain.EventDiscordFailed,
		Outcome:   code,
		StorageID: st.ID(),
		Detail:    err.Error(),
		Timestamp: now,
	})
	s.log.Warn().Err(err).Str("code", code).Msg("discord callback failed")
	return domain.ErrorRedirect(s.cfg.Discord.LoginPage, code), err
}

// Logout forgets the Discord login in both areas.
func (s *discordAuthService) Logout(st *domain.Storage) string {
	st.Clear(domain.DiscordAccountKeys...)
	s.audit.Record(domain.AccessEvent{
		Type:      domain.EventDiscordLogout,
		Outcome:   "cleared",
		StorageID: st.ID(),
		Timestamp: time.Now(),
	})
	return domain.Root(domain.PageIndex)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
