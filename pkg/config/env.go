package config

const (
	EnvPrefix = "ECOMAGENT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EnvAppEnv       = "ECOMAGENT_APP_ENV"
	EnvPort         = "ECOMAGENT_APP_PORT"
	EnvDBDriver     = "ECOMAGENT_DB_DRIVER"
	EnvDBDSN        = "ECOMAGENT_DB_DSN"
	EnvDBSQLitePath = "ECOMAGENT_DB_SQLITE_PATH"
	EnvRedisURL     = "ECOMAGENT_REDIS_URL"
	EnvGenAIKey     = "ECOMAGENT_GEMINI_API_KEY"
	EnvGenAITimeout = "ECOMAGENT_GEMINI_TIMEOUT"
	EnvDataDir      = "ECOMAGENT_INGEST_DATA_DIR"
	EnvAskReadOnly  = "ECOMAGENT_ASK_READ_ONLY"

	// EnvGeminiAPIKey is the unprefixed key the hosted deployments already export.
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)
