package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	DB     DBConfig
	Redis  RedisConfig
	GenAI  GenAIConfig
	Ingest IngestConfig
	Ask    AskConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.GenAI.APIKey == "" {
		cfg.GenAI.APIKey = os.Getenv(EnvGeminiAPIKey)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECOMAGENT_APP_ENV" default:"dev"`
	Port         string `envconfig:"ECOMAGENT_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"ECOMAGENT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOMAGENT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `envconfig:"ECOMAGENT_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"ECOMAGENT_HTTP_WRITE_TIMEOUT" default:"90s"`
	ShutdownTimeout time.Duration `envconfig:"ECOMAGENT_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOrigins  []string      `envconfig:"ECOMAGENT_HTTP_ALLOWED_ORIGINS" default:"http://localhost:5000"`
}

type DBConfig struct {
	Driver     string `envconfig:"ECOMAGENT_DB_DRIVER" default:"sqlite"`
	DSN        string `envconfig:"ECOMAGENT_DB_DSN"`
	SQLitePath string `envconfig:"ECOMAGENT_DB_SQLITE_PATH" default:"ecommerce.db"`

	MaxOpenConns    int           `envconfig:"ECOMAGENT_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"ECOMAGENT_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"ECOMAGENT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOMAGENT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the embedded store is configured.
func (d DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(d.Driver), DriverSQLite)
}

// RedisConfig is optional; an empty URL and address disable the answer cache
// and the ask rate limiter.
type RedisConfig struct {
	URL          string        `envconfig:"ECOMAGENT_REDIS_URL"`
	Address      string        `envconfig:"ECOMAGENT_REDIS_ADDR"`
	Password     string        `envconfig:"ECOMAGENT_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOMAGENT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOMAGENT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOMAGENT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOMAGENT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOMAGENT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOMAGENT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type GenAIConfig struct {
	APIKey  string        `envconfig:"ECOMAGENT_GEMINI_API_KEY"`
	Model   string        `envconfig:"ECOMAGENT_GEMINI_MODEL" default:"gemini-1.5-flash"`
	Timeout time.Duration `envconfig:"ECOMAGENT_GEMINI_TIMEOUT" default:"30s"`
}

type IngestConfig struct {
	DataDir      string `envconfig:"ECOMAGENT_INGEST_DATA_DIR" default:"data"`
	SalesFile    string `envconfig:"ECOMAGENT_INGEST_SALES_FILE" default:"Product-Level Total Sales and Metrics (mapped).xlsx"`
	AdsFile      string `envconfig:"ECOMAGENT_INGEST_ADS_FILE" default:"Product-Level Ad Sales and Metrics (mapped).xlsx"`
	ProductsFile string `envconfig:"ECOMAGENT_INGEST_PRODUCTS_FILE" default:"Product-Level Eligibility Table (mapped).xlsx"`
	MappingFile  string `envconfig:"ECOMAGENT_INGEST_MAPPING_FILE"`
	DefaultDate  string `envconfig:"ECOMAGENT_INGEST_DEFAULT_DATE" default:"2024-01-01"`
}

type AskConfig struct {
	ReadOnly        bool          `envconfig:"ECOMAGENT_ASK_READ_ONLY" default:"true"`
	MaxRows         int           `envconfig:"ECOMAGENT_ASK_MAX_ROWS" default:"500"`
	MaxQuestionLen  int           `envconfig:"ECOMAGENT_ASK_MAX_QUESTION_LEN" default:"2000"`
	CacheTTL        time.Duration `envconfig:"ECOMAGENT_ASK_CACHE_TTL" default:"1h"`
	RateLimitWindow time.Duration `envconfig:"ECOMAGENT_ASK_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerIP  int           `envconfig:"ECOMAGENT_ASK_RATE_LIMIT_PER_IP" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	switch {
	case db.IsSQLite():
		if db.DSN == "" {
			if strings.TrimSpace(db.SQLitePath) == "" {
				return fmt.Errorf("either %s or %s are required", EnvDBDSN, EnvDBSQLitePath)
			}
			db.DSN = db.SQLitePath
		}
		return nil
	case strings.EqualFold(db.Driver, DriverPostgres):
		if db.DSN == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DriverPostgres)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q (expected %s or %s)", EnvDBDriver, db.Driver, DriverSQLite, DriverPostgres)
	}
}
