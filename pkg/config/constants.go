package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "VMS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "VMS_DB_DSN"
	EnvDBHost = "VMS_DB_HOST"
	EnvDBUser = "VMS_DB_USER"
	EnvDBName = "VMS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
