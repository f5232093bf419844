package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/fsrp/document-portal/internal/core/domain"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	StaticDir string `env:"STATIC_DIR, default=./public"`

	Cookie  CookieConfig
	Gates   GateConfig
	Discord DiscordConfig
	Storage StorageConfig
	Redis   RedisConfig
	Mongo   MongoConfig
	Audit   AuditConfig
}

// CookieConfig signs the storage-area cookies.
type CookieConfig struct {
	Secret string `env:"COOKIE_SECRET"`
	Secure bool   `env:"COOKIE_SECURE, default=false"`
}

// GateConfig holds the passcode allow-lists. Entries may be bcrypt hashes.
type GateConfig struct {
	SitePasscodes    []string      `env:"SITE_PASSCODES,    default=sejed"`
	TrainerPasscodes []string      `env:"TRAINER_PASSCODES, default=trainer"`
	StaffPasscodes   []string      `env:"STAFF_PASSCODES,   default=staff"`
	Timeout          time.Duration `env:"PASSCODE_TIMEOUT,  default=30m"`
}

type DiscordConfig struct {
	ClientID       string        `env:"DISCORD_CLIENT_ID,        default=1368699324623749171"`
	GuildID        string        `env:"DISCORD_GUILD_ID,         default=1271521823259099138"`
	TrainerRoleIDs []string      `env:"DISCORD_TRAINER_ROLE_IDS, default=1366799139031089152"`
	StaffRoleIDs   []string      `env:"DISCORD_STAFF_ROLE_IDS,   default=1308724851497762837"`
	Scope          string        `env:"DISCORD_SCOPE,            default=identify guilds.members.read"`
	AuthorizeURL   string        `env:"DISCORD_AUTHORIZE_URL,    default=https://discord.com/api/oauth2/authorize"`
	BotToken       string        `env:"DISCORD_BOT_TOKEN"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL"`
	VerifyOnLogin  bool          `env:"DISCORD_VERIFY_ON_LOGIN,  default=true"`
	FailurePolicy  string        `env:"DISCORD_VERIFY_FAILURE_POLICY, default=open"`
	SaveLoginTTL   time.Duration `env:"DISCORD_SAVE_LOGIN_TTL,   default=168h"`
	SessionTTL     time.Duration `env:"DISCORD_SESSION_TTL,      default=1h"`
	APITimeout     time.Duration `env:"DISCORD_API_TIMEOUT,      default=4s"`
	CallbackTTL    time.Duration `env:"DISCORD_CALLBACK_TIMEOUT, default=5s"`
}

type StorageConfig struct {
	Driver        string        `env:"STORAGE_DRIVER,         default=redis"`
	SessionTTL    time.Duration `env:"STORAGE_SESSION_TTL,    default=24h"`
	PersistentTTL time.Duration `env:"STORAGE_PERSISTENT_TTL, default=720h"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=fsrp_portal"`
}

type AuditConfig struct {
	Enabled bool `env:"AUDIT_ENABLED, default=false"`
	Workers int  `env:"AUDIT_WORKERS, default=4"`
}

// Load reads an optional .env file, then the environment.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Missing files are fine; real environment variables win.
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch domain.FailurePolicy(c.Discord.FailurePolicy) {
	case domain.FailOpen, domain.FailClosed:
	default:
		return fmt.Errorf("config: DISCORD_VERIFY_FAILURE_POLICY must be open or closed, got %q", c.Discord.FailurePolicy)
	}
	if c.IsProduction() && c.Cookie.Secret == "" {
		return fmt.Errorf("config: COOKIE_SECRET is required in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DiscordDomain converts the Discord section into the domain configuration.
func (c *Config) DiscordDomain() domain.DiscordConfig {
	return domain.DiscordConfig{
		ClientID:       c.Discord.ClientID,
		GuildID:        c.Discord.GuildID,
		TrainerRoleIDs: c.Discord.TrainerRoleIDs,
		StaffRoleIDs:   c.Discord.StaffRoleIDs,
		Scope:          c.Discord.Scope,
		AuthorizeURL:   c.Discord.AuthorizeURL,
		BaseURL:        c.Discord.PublicBaseURL,
		CallbackPage:   domain.PageDiscordCallback,
		LoginPage:      domain.PageDiscordLogin,
	}
}

// DiscordGrant is the token lifetime configuration.
func (c *Config) DiscordGrant() domain.DiscordGrant {
	return domain.DiscordGrant{
		SaveLoginTimeout: c.Discord.SaveLoginTTL,
		SessionTimeout:   c.Discord.SessionTTL,
	}
}
