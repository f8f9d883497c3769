package config

// EnvPrefix is the envconfig prefix for all service configuration.
const EnvPrefix = "sagaflow"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "SAGAFLOW_APP_ENV"
	EnvPort     = "SAGAFLOW_APP_PORT"
	EnvLogLevel = "SAGAFLOW_LOG_LEVEL"

	EnvDBDSN    = "SAGAFLOW_DB_DSN"
	EnvDBDriver = "SAGAFLOW_DB_DRIVER"
	EnvDBHost   = "SAGAFLOW_DB_HOST"
	EnvDBPort   = "SAGAFLOW_DB_PORT"
	EnvDBUser   = "SAGAFLOW_DB_USER"
	EnvDBName   = "SAGAFLOW_DB_NAME"

	EnvRedisURL = "SAGAFLOW_REDIS_URL"

	EnvGCPProjectID = "SAGAFLOW_GCP_PROJECT_ID"

	EnvPubSubOrdersTopic = "SAGAFLOW_PUBSUB_ORDERS_TOPIC"
	EnvPubSubOrdersSub   = "SAGAFLOW_PUBSUB_ORDERS_SUBSCRIPTION"

	EnvPaymentChargeLimit = "SAGAFLOW_PAYMENT_CHARGE_LIMIT"
)

// legacyDBEnvVars are required when no DSN is supplied directly.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
