package config

// EnvPrefix namespaces all environment variables read by Load.
const EnvPrefix = "SHOPZEN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SHOPZEN_DB_DSN"
	EnvDBHost = "SHOPZEN_DB_HOST"
	EnvDBUser = "SHOPZEN_DB_USER"
	EnvDBName = "SHOPZEN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
