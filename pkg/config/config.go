package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Basket        BasketConfig
	Catalog       CatalogConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var err error
	if c.Basket.OrderNumberOffset < 0 {
		err = multierr.Append(err, fmt.Errorf("%s must not be negative", EnvBasketOrderNumberOffset))
	}
	if c.Basket.CookieLifetime <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvBasketCookieLifetime))
	}
	if strings.TrimSpace(c.Basket.CookieName) == "" {
		err = multierr.Append(err, fmt.Errorf("%s must not be blank", EnvBasketCookieName))
	}
	if c.Catalog.ListCacheTTL < 0 {
		err = multierr.Append(err, fmt.Errorf("%s must not be negative", EnvCatalogListCacheTTL))
	}
	return err
}

type AppConfig struct {
	Env          string `envconfig:"HOMESHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"HOMESHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HOMESHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HOMESHOP_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"HOMESHOP_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"HOMESHOP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"HOMESHOP_DB_DSN"`
	Driver string `envconfig:"HOMESHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HOMESHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"HOMESHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HOMESHOP_DB_USER"`
	LegacyPassword string `envconfig:"HOMESHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"HOMESHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"HOMESHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HOMESHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HOMESHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HOMESHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HOMESHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HOMESHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HOMESHOP_REDIS_ADDR"`
	Password     string        `envconfig:"HOMESHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"HOMESHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HOMESHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HOMESHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HOMESHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HOMESHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HOMESHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"HOMESHOP_REDIS_KEY_PREFIX" default:"hs"`
}

type JWTConfig struct {
	Secret            string `envconfig:"HOMESHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HOMESHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HOMESHOP_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HOMESHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HOMESHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HOMESHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HOMESHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HOMESHOP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow  time.Duration `envconfig:"HOMESHOP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"HOMESHOP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// BasketConfig controls the anonymous basket cookie and checkout numbering.
type BasketConfig struct {
	CookieName        string        `envconfig:"HOMESHOP_BASKET_COOKIE_NAME" default:"homeshop_open_basket"`
	CookieLifetime    time.Duration `envconfig:"HOMESHOP_BASKET_COOKIE_LIFETIME" default:"168h"`
	CookieSecure      bool          `envconfig:"HOMESHOP_BASKET_COOKIE_SECURE" default:"false"`
	TokenSecret       string        `envconfig:"HOMESHOP_BASKET_TOKEN_SECRET"`
	OrderNumberOffset int64         `envconfig:"HOMESHOP_BASKET_ORDER_NUMBER_OFFSET" default:"100000"`
	StrictStock       bool          `envconfig:"HOMESHOP_BASKET_STRICT_STOCK" default:"false"`
}

// SigningSecret falls back to the JWT secret when no dedicated basket secret is set.
func (b BasketConfig) SigningSecret(jwt JWTConfig) string {
	if secret := strings.TrimSpace(b.TokenSecret); secret != "" {
		return secret
	}
	return jwt.Secret
}

type CatalogConfig struct {
	ListCacheKey string        `envconfig:"HOMESHOP_CATALOG_LIST_CACHE_KEY" default:"p_list_cache"`
	ListCacheTTL time.Duration `envconfig:"HOMESHOP_CATALOG_LIST_CACHE_TTL" default:"130s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HOMESHOP_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"HOMESHOP_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"HOMESHOP_PUBSUB_ORDERS_TOPIC" default:"hs-order-events"`
	OrdersSubscription string `envconfig:"HOMESHOP_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"HOMESHOP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"HOMESHOP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"HOMESHOP_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"HOMESHOP_OUTBOX_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"HOMESHOP_CRON_INTERVAL" default:"2m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
