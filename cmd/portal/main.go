// Command portal serves the FSRP document portal: the static pages behind
// passcode and Discord gates, plus the JSON APIs the pages call.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/api"
	"github.com/fsrp/document-portal/internal/api/middleware"
	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
	"github.com/fsrp/document-portal/internal/core/service"
	"github.com/fsrp/document-portal/internal/infrastructure/config"
	"github.com/fsrp/document-portal/internal/infrastructure/db/memory"
	mongodb "github.com/fsrp/document-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/fsrp/document-portal/internal/infrastructure/db/redis"
	"github.com/fsrp/document-portal/internal/infrastructure/discord"
	"github.com/fsrp/document-portal/internal/infrastructure/http/handlers"
	"github.com/fsrp/document-portal/internal/infrastructure/queue"
	"github.com/fsrp/document-portal/pkg/logger"
)

const (
	serviceName     = "fsrp-document-portal"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := bootLogger(os.Stderr)
		boot.Fatal().Err(err).Msg("configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("portal stopped")
	}
}

// bootLogger logs failures that happen before the configured logger exists.
func bootLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("service", serviceName).Logger()
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	health := map[string]handlers.Pinger{}

	// --- Storage areas ---
	var (
		storage ports.StorageRepository
		dedup   queue.Deduper
	)
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("using in-memory storage; areas are lost on restart")
		storage = memory.NewStorageRepository(cfg.Storage.SessionTTL, cfg.Storage.PersistentTTL)
	default:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		storage = redisdb.NewStorageRepository(rdb, cfg.Storage.SessionTTL, cfg.Storage.PersistentTTL)
		dedup = redisdb.NewEventDeduper(rdb)
	}
	health["storage"] = storage

	// --- Access audit ---
	var audit ports.AuditRecorder = service.NopAuditRecorder{}
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	var dispatcher *queue.Dispatcher
	if cfg.Audit.Enabled {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		repo := mongodb.NewAuditRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("audit indexes not ensured")
		}
		health["audit"] = repo

		dispatcher = queue.NewDispatcher(cfg.Audit.Workers, queue.NewAuditSink(repo, dedup), logger.Component("audit"))
		dispatcher.Start(auditCtx)
		audit = dispatcher
	}

	// --- Core services ---
	discordCfg := cfg.DiscordDomain()
	grant := cfg.DiscordGrant()

	discordAPI := discord.NewClient(discord.Config{Timeout: cfg.Discord.APITimeout}, logger.Component("discord"))
	verifier := service.NewVerifier(discordAPI, service.VerifierConfig{
		Discord:  discordCfg,
		BotToken: cfg.Discord.BotToken,
		Policy:   domain.FailurePolicy(cfg.Discord.FailurePolicy),
	}, nil, logger.Component("verifier"))

	notify := service.NewNotificationService(logger.Component("notifications"))
	access := service.NewAccessEvaluator(service.DefaultScopes(service.ScopeOptions{
		PasscodeTimeout: cfg.Gates.Timeout,
		Discord:         grant,
		DiscordLogin:    discordCfg.Enabled(),
	}), audit, logger.Component("access"))
	gates := service.NewGateService(
		service.DefaultGates(cfg.Gates.SitePasscodes, cfg.Gates.TrainerPasscodes, cfg.Gates.StaffPasscodes),
		audit, logger.Component("gates"),
	)
	discordAuth := service.NewDiscordAuthService(service.DiscordAuthConfig{
		Discord:          discordCfg,
		VerifyOnCallback: cfg.Discord.VerifyOnLogin,
		CallbackTimeout:  cfg.Discord.CallbackTTL,
	}, verifier, notify, audit, logger.Component("discord-auth"))
	accounts := service.NewAccountService(discordCfg, grant, verifier, notify, audit, logger.Component("account"))
	viewer := service.NewViewerService(service.DefaultDocuments(), logger.Component("viewer"))

	secret := cfg.Cookie.Secret
	if secret == "" {
		secret = middleware.NewID()
		log.Warn().Msg("COOKIE_SECRET not set; using a random secret, cookies reset on restart")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		StaticDir:    cfg.StaticDir,
		RelayTimeout: cfg.Discord.CallbackTTL,
		Storage:      storage,
		Cookies:      middleware.NewCookieCodec(secret, cfg.Cookie.Secure, cfg.Storage.PersistentTTL),
		Access:       access,
		Gates:        gates,
		Discord:      discordAuth,
		Accounts:     accounts,
		Notify:       notify,
		Viewer:       viewer,
		Health:       health,
		Log:          logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	if dispatcher != nil {
		stopAudit()
		dispatcher.Wait()
	}
	return nil
}
