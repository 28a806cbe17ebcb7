package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Identity     IdentityConfig
	Stripe       StripeConfig
	Storage      StorageConfig
	Gigs         GigsConfig
	RateLimit    RateLimitConfig
	Eventing     EventingConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Gigs.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"GIGLY_APP_ENV" required:"true"`
	Port         string   `envconfig:"GIGLY_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"GIGLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"GIGLY_LOG_WARN_STACK" default:"false"`
	HostingURL   string   `envconfig:"GIGLY_PUBLIC_HOSTING_URL" required:"true"`
	CORSOrigins  []string `envconfig:"GIGLY_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// PublicURL joins the hosting URL with the provided path segments.
func (a AppConfig) PublicURL(segments ...string) string {
	base := strings.TrimRight(strings.TrimSpace(a.HostingURL), "/")
	if len(segments) == 0 {
		return base
	}
	escaped := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.Trim(seg, "/")
		if seg == "" {
			continue
		}
		escaped = append(escaped, url.PathEscape(seg))
	}
	return base + "/" + strings.Join(escaped, "/")
}

type DBConfig struct {
	DSN    string `envconfig:"GIGLY_DB_DSN"`
	Driver string `envconfig:"GIGLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GIGLY_DB_HOST"`
	LegacyPort     int    `envconfig:"GIGLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GIGLY_DB_USER"`
	LegacyPassword string `envconfig:"GIGLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"GIGLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"GIGLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GIGLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GIGLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GIGLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GIGLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GIGLY_REDIS_URL"`
	Address      string        `envconfig:"GIGLY_REDIS_ADDR"`
	Password     string        `envconfig:"GIGLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"GIGLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GIGLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIGLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIGLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIGLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GIGLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// IdentityConfig selects the provider that turns bearer tokens into identities.
type IdentityConfig struct {
	Provider string `envconfig:"GIGLY_IDENTITY_PROVIDER" default:"jwt"`

	JWTSecret   string `envconfig:"GIGLY_IDENTITY_JWT_SECRET"`
	JWTIssuer   string `envconfig:"GIGLY_IDENTITY_JWT_ISSUER"`
	JWTAudience string `envconfig:"GIGLY_IDENTITY_JWT_AUDIENCE"`

	FirebaseProjectID       string `envconfig:"GIGLY_FIREBASE_PROJECT_ID"`
	FirebaseCredentialsPath string `envconfig:"GIGLY_FIREBASE_CREDENTIALS_PATH"`
	FirebaseCredentialsJSON string `envconfig:"GIGLY_FIREBASE_CREDENTIALS_JSON"`
}

// NormalizedProvider returns the lower-cased provider name.
func (i IdentityConfig) NormalizedProvider() string {
	p := strings.TrimSpace(strings.ToLower(i.Provider))
	if p == "" {
		return IdentityProviderJWT
	}
	return p
}

type StripeConfig struct {
	SecretKey     string `envconfig:"GIGLY_STRIPE_SECRET_KEY"`
	WebhookSecret string `envconfig:"GIGLY_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"GIGLY_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type StorageConfig struct {
	Backend       string        `envconfig:"GIGLY_STORAGE_BACKEND" default:"gcs"`
	Bucket        string        `envconfig:"GIGLY_STORAGE_BUCKET" required:"true"`
	PublicBaseURL string        `envconfig:"GIGLY_STORAGE_PUBLIC_BASE_URL"`
	Region        string        `envconfig:"GIGLY_STORAGE_REGION" default:"us-east-1"`
	PresignExpiry time.Duration `envconfig:"GIGLY_STORAGE_PRESIGN_EXPIRY" default:"1h"`
	URLCacheTTL   time.Duration `envconfig:"GIGLY_STORAGE_URL_CACHE_TTL" default:"30m"`
	VerifyObjects bool          `envconfig:"GIGLY_STORAGE_VERIFY_OBJECTS" default:"true"`
	CheckTimeout  time.Duration `envconfig:"GIGLY_STORAGE_CHECK_TIMEOUT" default:"3s"`
}

type GigsConfig struct {
	EnrichConcurrency int    `envconfig:"GIGLY_GIGS_ENRICH_CONCURRENCY" default:"8"`
	StrictSeller      bool   `envconfig:"GIGLY_GIGS_STRICT_SELLER" default:"false"`
	FavoritesKeyMode  string `envconfig:"GIGLY_FAVORITES_KEY_MODE" default:"viewer"`
}

func (g GigsConfig) validate() error {
	switch strings.TrimSpace(strings.ToLower(g.FavoritesKeyMode)) {
	case "", FavoritesKeyViewer, FavoritesKeySeller:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvFavoritesKeyMode, FavoritesKeyViewer, FavoritesKeySeller)
	}
}

type RateLimitConfig struct {
	OnboardingWindow time.Duration `envconfig:"GIGLY_RATE_LIMIT_ONBOARDING_WINDOW" default:"1m"`
	OnboardingLimit  int           `envconfig:"GIGLY_RATE_LIMIT_ONBOARDING_LIMIT" default:"5"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"GIGLY_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GIGLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GIGLY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.Driver = DriverSQLite
		db.DSN = "file:gigly.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
