package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DRYTRACK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "DRYTRACK_APP_ENV"
	EnvPort       = "DRYTRACK_APP_PORT"
	EnvDBDSN      = "DRYTRACK_DB_DSN"
	EnvDBHost     = "DRYTRACK_DB_HOST"
	EnvDBUser     = "DRYTRACK_DB_USER"
	EnvDBName     = "DRYTRACK_DB_NAME"
	EnvUseSQLite  = "DRYTRACK_USE_SQLITE"
	EnvRedisURL   = "DRYTRACK_REDIS_URL"
	EnvJWTSecret  = "DRYTRACK_JWT_SECRET"
	EnvJWTIssuer  = "DRYTRACK_JWT_ISSUER"
	EnvJWTExpMins = "DRYTRACK_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	FeatureFlags  FeatureFlagsConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Session       SessionConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Google        GoogleOAuthConfig
	Sync          SyncConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DRYTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"DRYTRACK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DRYTRACK_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"DRYTRACK_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"DRYTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"DRYTRACK_DB_DSN"`
	// SQLitePath is used instead of DSN when the UseSQLite flag is on.
	SQLitePath string `envconfig:"DRYTRACK_SQLITE_PATH" default:"drytrack.db"`

	LegacyHost     string `envconfig:"DRYTRACK_DB_HOST"`
	LegacyPort     int    `envconfig:"DRYTRACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DRYTRACK_DB_USER"`
	LegacyPassword string `envconfig:"DRYTRACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"DRYTRACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"DRYTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DRYTRACK_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DRYTRACK_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DRYTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DRYTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DRYTRACK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DRYTRACK_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DRYTRACK_REDIS_URL"`
	Address      string        `envconfig:"DRYTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"DRYTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"DRYTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DRYTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DRYTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DRYTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DRYTRACK_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"DRYTRACK_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DRYTRACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DRYTRACK_JWT_ISSUER" default:"drytrack"`
	ExpirationMinutes int    `envconfig:"DRYTRACK_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TTL returns the access token lifetime, which is also the session lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type SessionConfig struct {
	CookieName   string `envconfig:"DRYTRACK_SESSION_COOKIE" default:"drytrack_session"`
	CookieSecure bool   `envconfig:"DRYTRACK_SESSION_COOKIE_SECURE" default:"false"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DRYTRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DRYTRACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DRYTRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DRYTRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DRYTRACK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"DRYTRACK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentityLimit    int           `envconfig:"DRYTRACK_AUTH_RATE_LIMIT_LOGIN_IDENTITY_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"DRYTRACK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"DRYTRACK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIdentityLimit int           `envconfig:"DRYTRACK_AUTH_RATE_LIMIT_REGISTER_IDENTITY_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"DRYTRACK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type GoogleOAuthConfig struct {
	ClientID     string `envconfig:"DRYTRACK_GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"DRYTRACK_GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"DRYTRACK_GOOGLE_REDIRECT_URL" default:"http://localhost:8080/login/google"`
}

// Enabled reports whether federated login is configured.
func (g GoogleOAuthConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type SyncConfig struct {
	MaxDrafts      int           `envconfig:"DRYTRACK_SYNC_MAX_DRAFTS" default:"500"`
	IdempotencyTTL time.Duration `envconfig:"DRYTRACK_SYNC_IDEMPOTENCY_TTL" default:"24h"`
}

// CORSConfig lists the origins allowed to call /sync and /fetch from a browser.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"DRYTRACK_CORS_ALLOWED_ORIGINS"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite || db.DSN != "" {
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
		return fmt.Errorf("either %s, %s or %s are required", EnvUseSQLite, EnvDBDSN, strings.Join(missing, ", "))
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
