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
	Outbox       OutboxConfig
	Payment      PaymentConfig
	Inventory    InventoryConfig
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
	Env          string `envconfig:"SAGAFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"SAGAFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SAGAFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SAGAFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SAGAFLOW_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SAGAFLOW_DB_DSN"`
	Driver string `envconfig:"SAGAFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SAGAFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"SAGAFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SAGAFLOW_DB_USER"`
	LegacyPassword string `envconfig:"SAGAFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"SAGAFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"SAGAFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SAGAFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SAGAFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SAGAFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SAGAFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SAGAFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SAGAFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"SAGAFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"SAGAFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SAGAFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SAGAFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SAGAFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SAGAFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SAGAFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SAGAFLOW_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"SAGAFLOW_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SAGAFLOW_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SAGAFLOW_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SAGAFLOW_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"SAGAFLOW_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription string `envconfig:"SAGAFLOW_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SAGAFLOW_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SAGAFLOW_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	RetentionDays  int `envconfig:"SAGAFLOW_OUTBOX_RETENTION_DAYS" default:"30"`
	RetentionBatch int `envconfig:"SAGAFLOW_OUTBOX_RETENTION_BATCH" default:"500"`
}

type PaymentConfig struct {
	ChargeLimit string `envconfig:"SAGAFLOW_PAYMENT_CHARGE_LIMIT" default:"1000"`
}

type InventoryConfig struct {
	OutOfStockSKU string `envconfig:"SAGAFLOW_INVENTORY_OUT_OF_STOCK_SKU" default:"OUT_OF_STOCK"`
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
