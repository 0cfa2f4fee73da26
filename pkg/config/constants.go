package config

const (
	// EnvPrefix is passed to envconfig; individual fields carry explicit
	// CLUBWASH_* tags so the prefix stays cosmetic.
	EnvPrefix = "clubwash"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CLUBWASH_DB_DSN"
	EnvDBHost = "CLUBWASH_DB_HOST"
	EnvDBUser = "CLUBWASH_DB_USER"
	EnvDBName = "CLUBWASH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
