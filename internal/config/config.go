package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/fxanalyst/internal/ledger"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	GeminiAPIKey   string   `env:"GEMINI_API_KEY"`
	OracleBaseURL  string   `env:"ORACLE_BASE_URL"`
	OracleProxyKey string   `env:"ORACLE_PROXY_KEY"`
	OracleModels   []string `env:"ORACLE_MODELS"` // tried in order

	TwelveAPIKey     string        `env:"TWELVE_API_KEY"`
	Symbol           string        `env:"SYMBOL" envDefault:"USD/JPY"`
	YieldSymbol      string        `env:"YIELD_SYMBOL" envDefault:"TNX"`
	VolatilitySymbol string        `env:"VOLATILITY_SYMBOL" envDefault:"VIX"`
	RatePrecision    int32         `env:"RATE_PRECISION" envDefault:"3"`
	MarketCacheTTL   time.Duration `env:"MARKET_CACHE_TTL" envDefault:"5m"`

	NewsQuery    string `env:"NEWS_QUERY"`
	NewsWindow   string `env:"NEWS_WINDOW" envDefault:"1d"`
	NewsLimit    int    `env:"NEWS_LIMIT" envDefault:"8"`
	NewsLanguage string `env:"NEWS_LANGUAGE" envDefault:"ja"`
	NewsRegion   string `env:"NEWS_REGION" envDefault:"JP"`

	MaturityWindow time.Duration   `env:"MATURITY_WINDOW" envDefault:"24h"`
	HoldTolerance  decimal.Decimal `env:"HOLD_TOLERANCE" envDefault:"0.15"`
	TimeZone       string          `env:"TIME_ZONE" envDefault:"Asia/Tokyo"`
	Location       *time.Location

	LedgerBackend string `env:"LEDGER_BACKEND" envDefault:"file"`
	LedgerFile    string `env:"LEDGER_FILE" envDefault:"data/ledger.yaml"`
	DB            DBConfig

	HTTPAddr         string `env:"HTTP_ADDR" envDefault:":8080"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec int    `env:"REQUESTS_PER_SEC" envDefault:"5"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
}

// DBConfig holds PostgreSQL connection parameters
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// MissingCredentialError lists required secrets that are not set.
type MissingCredentialError struct {
	Keys []string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing required credentials: %s (set them in the environment or .env)", strings.Join(e.Keys, ", "))
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OracleBaseURL = getEnvWithDefault("ORACLE_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	cfg.OracleProxyKey = os.Getenv("ORACLE_PROXY_KEY")
	cfg.OracleModels = getEnvListWithDefault("ORACLE_MODELS", []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"})

	cfg.TwelveAPIKey = os.Getenv("TWELVE_API_KEY")
	cfg.Symbol = getEnvWithDefault("SYMBOL", "USD/JPY")
	cfg.YieldSymbol = getEnvWithDefault("YIELD_SYMBOL", "TNX")
	cfg.VolatilitySymbol = getEnvWithDefault("VOLATILITY_SYMBOL", "VIX")
	cfg.RatePrecision = int32(getEnvIntWithDefault("RATE_PRECISION", 3))
	cacheTTL, err := getEnvDurationWithDefault("MARKET_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.MarketCacheTTL = cacheTTL

	cfg.NewsQuery = getEnvWithDefault("NEWS_QUERY", `USD JPY "ドル円"`)
	cfg.NewsWindow = getEnvWithDefault("NEWS_WINDOW", "1d")
	cfg.NewsLimit = getEnvIntWithDefault("NEWS_LIMIT", 8)
	cfg.NewsLanguage = getEnvWithDefault("NEWS_LANGUAGE", "ja")
	cfg.NewsRegion = getEnvWithDefault("NEWS_REGION", "JP")

	window, err := getEnvDurationWithDefault("MATURITY_WINDOW", ledger.DefaultMaturityWindow)
	if err != nil {
		return nil, err
	}
	cfg.MaturityWindow = window
	cfg.TimeZone = getEnvWithDefault("TIME_ZONE", "Asia/Tokyo")

	tolerance, err := decimal.NewFromString(getEnvWithDefault("HOLD_TOLERANCE", "0.15"))
	if err != nil {
		return nil, fmt.Errorf("HOLD_TOLERANCE: %w", err)
	}
	cfg.HoldTolerance = tolerance

	cfg.LedgerBackend = strings.ToLower(getEnvWithDefault("LEDGER_BACKEND", BackendFile))
	cfg.LedgerFile = getEnvWithDefault("LEDGER_FILE", "data/ledger.yaml")
	cfg.DB = DBConfig{
		Host:     getEnvWithDefault("DB_HOST", "localhost"),
		Port:     getEnvWithDefault("DB_PORT", "5432"),
		User:     getEnvWithDefault("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   getEnvWithDefault("DB_NAME", "fxanalyst"),
		SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
	}

	cfg.HTTPAddr = getEnvWithDefault("HTTP_ADDR", ":8080")
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required values and resolves derived fields.
func (c *Config) Validate() error {
	var missing []string
	if c.GeminiAPIKey == "" && c.OracleProxyKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.TwelveAPIKey == "" {
		missing = append(missing, "TWELVE_API_KEY")
	}
	if len(missing) > 0 {
		return &MissingCredentialError{Keys: missing}
	}

	if len(c.OracleModels) == 0 {
		return fmt.Errorf("ORACLE_MODELS must list at least one model")
	}
	if c.MaturityWindow <= 0 {
		return fmt.Errorf("MATURITY_WINDOW must be positive")
	}
	if c.HoldTolerance.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("HOLD_TOLERANCE must be positive")
	}
	if c.RatePrecision < 0 {
		return fmt.Errorf("RATE_PRECISION must not be negative")
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("TIME_ZONE %q: %w", c.TimeZone, err)
	}
	c.Location = loc

	switch c.LedgerBackend {
	case BackendMemory, BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("LEDGER_BACKEND must be one of %s, %s, %s", BackendMemory, BackendFile, BackendPostgres)
	}

	return nil
}

// Policy returns the grading policy configured for this deployment.
func (c *Config) Policy() ledger.Policy {
	return ledger.Policy{
		MaturityWindow: c.MaturityWindow,
		HoldTolerance:  c.HoldTolerance,
	}
}

// OracleKey is the credential sent to the oracle endpoint.
func (c *Config) OracleKey() string {
	if c.OracleProxyKey != "" {
		return c.OracleProxyKey
	}
	return c.GeminiAPIKey
}

// SetupLogging configures the global logger
func SetupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationWithDefault rejects unparsable values; "60" without a unit is an error.
func getEnvDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
