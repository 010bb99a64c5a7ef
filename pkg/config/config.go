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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Sendgrid     SendgridConfig
	Alerts       AlertsConfig
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
	Env          string `envconfig:"SHOPZEN_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPZEN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPZEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPZEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SHOPZEN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPZEN_DB_DSN"`
	Driver string `envconfig:"SHOPZEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPZEN_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPZEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPZEN_DB_USER"`
	LegacyPassword string `envconfig:"SHOPZEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPZEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPZEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPZEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPZEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPZEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPZEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPZEN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPZEN_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPZEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPZEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPZEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPZEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPZEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPZEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPZEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPZEN_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"SHOPZEN_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SHOPZEN_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SHOPZEN_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SHOPZEN_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ProductUpdatesTopic        string `envconfig:"SHOPZEN_PUBSUB_PRODUCT_UPDATES_TOPIC" default:"sz-product-updates"`
	ProductUpdatesSubscription string `envconfig:"SHOPZEN_PUBSUB_PRODUCT_UPDATES_SUBSCRIPTION" required:"true"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"SHOPZEN_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"SHOPZEN_SENDGRID_FROM_EMAIL" default:"alerts@shopzen.io"`
	FromName    string `envconfig:"SHOPZEN_SENDGRID_FROM_NAME" default:"ShopZen Alerts"`
}

type AlertsConfig struct {
	CooldownWindow            time.Duration `envconfig:"SHOPZEN_ALERTS_COOLDOWN_WINDOW" default:"60m"`
	StorefrontBaseURL         string        `envconfig:"SHOPZEN_STOREFRONT_BASE_URL" default:"https://shopzen.io"`
	SubscriptionRetentionDays int           `envconfig:"SHOPZEN_ALERTS_SUBSCRIPTION_RETENTION_DAYS" default:"90"`
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
