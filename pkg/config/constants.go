package config

const (
	EnvPrefix = "JENGAMART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "JENGAMART_DB_DSN"
	EnvDBHost = "JENGAMART_DB_HOST"
	EnvDBUser = "JENGAMART_DB_USER"
	EnvDBName = "JENGAMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
