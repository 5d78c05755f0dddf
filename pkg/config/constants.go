package config

// EnvPrefix scopes all environment variables consumed by the service.
const EnvPrefix = "AXC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "AXC_APP_ENV"
	EnvPort   = "AXC_APP_PORT"

	EnvDBDSN  = "AXC_DB_DSN"
	EnvDBHost = "AXC_DB_HOST"
	EnvDBUser = "AXC_DB_USER"
	EnvDBName = "AXC_DB_NAME"

	EnvRedisURL = "AXC_REDIS_URL"

	EnvJWTSecret = "AXC_JWT_SECRET"
	EnvJWTIssuer = "AXC_JWT_ISSUER"

	EnvWalletBaseURL   = "AXC_WALLET_BASE_URL"
	EnvWalletAppKey    = "AXC_WALLET_APP_KEY"
	EnvWalletAppSecret = "AXC_WALLET_APP_SECRET"

	EnvCarrierWebhookSecret   = "AXC_CARRIER_WEBHOOK_SECRET"
	EnvCarrierAckHeaderSecret = "AXC_CARRIER_ACK_HEADER_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
