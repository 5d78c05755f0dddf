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
	JWT          JWTConfig
	Pricing      PricingConfig
	Wallet       WalletConfig
	Carrier      CarrierConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AXC_APP_ENV" required:"true"`
	Port         string `envconfig:"AXC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AXC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AXC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AXC_DB_DSN"`
	Driver string `envconfig:"AXC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AXC_DB_HOST"`
	LegacyPort     int    `envconfig:"AXC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AXC_DB_USER"`
	LegacyPassword string `envconfig:"AXC_DB_PASSWORD"`
	LegacyName     string `envconfig:"AXC_DB_NAME"`
	LegacySSLMode  string `envconfig:"AXC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AXC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AXC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AXC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AXC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AXC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AXC_REDIS_ADDR"`
	Password     string        `envconfig:"AXC_REDIS_PASSWORD"`
	DB           int           `envconfig:"AXC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AXC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AXC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AXC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AXC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AXC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AXC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AXC_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"AXC_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PricingConfig holds the server-side amount inputs. Shipping and the COD
// surcharge apply to cash-on-delivery orders only; values are integer minor
// units.
type PricingConfig struct {
	Currency         string `envconfig:"AXC_PRICING_CURRENCY" default:"BDT"`
	ShippingFeeMinor int64  `envconfig:"AXC_PRICING_SHIPPING_FEE" default:"100"`
	CODFeeMinor      int64  `envconfig:"AXC_PRICING_COD_FEE" default:"50"`
}

// WalletConfig configures the wallet payment gateway lookup endpoint.
type WalletConfig struct {
	BaseURL     string        `envconfig:"AXC_WALLET_BASE_URL" required:"true"`
	AppKey      string        `envconfig:"AXC_WALLET_APP_KEY" required:"true"`
	AppSecret   string        `envconfig:"AXC_WALLET_APP_SECRET" required:"true"`
	HTTPTimeout time.Duration `envconfig:"AXC_WALLET_HTTP_TIMEOUT" default:"15s"`
}

// CarrierConfig configures the delivery carrier webhook contract: the
// inbound signature secret and the acknowledgment header value the carrier
// expects on every response.
type CarrierConfig struct {
	Name            string `envconfig:"AXC_CARRIER_NAME" default:"swiftex"`
	WebhookSecret   string `envconfig:"AXC_CARRIER_WEBHOOK_SECRET" required:"true"`
	AckHeaderSecret string `envconfig:"AXC_CARRIER_ACK_HEADER_SECRET" required:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AXC_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"AXC_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"AXC_PUBSUB_ORDERS_TOPIC" default:"axc-order-events"`
	OrdersSubscription string `envconfig:"AXC_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"AXC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"AXC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"AXC_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AXC_AUTO_MIGRATE" default:"false"`
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
		Path:   "/" + db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
