package config

const (
	EnvPrefix = "HOMESHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "HOMESHOP_APP_ENV"
	EnvPort       = "HOMESHOP_APP_PORT"
	EnvRedisURL   = "HOMESHOP_REDIS_URL"
	EnvJWTSecret  = "HOMESHOP_JWT_SECRET"
	EnvJWTIssuer  = "HOMESHOP_JWT_ISSUER"
	EnvJWTExpMins = "HOMESHOP_JWT_EXPIRATION_MINUTES"

	EnvDBDSN  = "HOMESHOP_DB_DSN"
	EnvDBHost = "HOMESHOP_DB_HOST"
	EnvDBUser = "HOMESHOP_DB_USER"
	EnvDBName = "HOMESHOP_DB_NAME"

	EnvBasketCookieName        = "HOMESHOP_BASKET_COOKIE_NAME"
	EnvBasketCookieLifetime    = "HOMESHOP_BASKET_COOKIE_LIFETIME"
	EnvBasketOrderNumberOffset = "HOMESHOP_BASKET_ORDER_NUMBER_OFFSET"
	EnvBasketStrictStock       = "HOMESHOP_BASKET_STRICT_STOCK"
	EnvCatalogListCacheTTL     = "HOMESHOP_CATALOG_LIST_CACHE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
