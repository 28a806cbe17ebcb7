package config

// EnvPrefix is handed to envconfig; every field declares its full variable name.
const EnvPrefix = "GIGLY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	IdentityProviderJWT      = "jwt"
	IdentityProviderFirebase = "firebase"

	StorageBackendGCS = "gcs"
	StorageBackendS3  = "s3"

	FavoritesKeyViewer = "viewer"
	FavoritesKeySeller = "seller"
)

const (
	EnvAppEnv           = "GIGLY_APP_ENV"
	EnvPort             = "GIGLY_APP_PORT"
	EnvHostingURL       = "GIGLY_PUBLIC_HOSTING_URL"
	EnvDBDSN            = "GIGLY_DB_DSN"
	EnvDBHost           = "GIGLY_DB_HOST"
	EnvDBUser           = "GIGLY_DB_USER"
	EnvDBName           = "GIGLY_DB_NAME"
	EnvUseSQLite        = "GIGLY_USE_SQLITE"
	EnvRedisURL         = "GIGLY_REDIS_URL"
	EnvStorageBucket    = "GIGLY_STORAGE_BUCKET"
	EnvStorageBackend   = "GIGLY_STORAGE_BACKEND"
	EnvStripeSecretKey  = "GIGLY_STRIPE_SECRET_KEY"
	EnvFavoritesKeyMode = "GIGLY_FAVORITES_KEY_MODE"
	EnvStrictSeller     = "GIGLY_GIGS_STRICT_SELLER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
