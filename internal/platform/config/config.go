package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	AllowedOrigins []string
	APIRateLimit   string // ulule/limiter formatted rate, e.g. "100-M"

	// Ledger policy. These are deployment policy, not engine constants:
	// the close/lock semantics and matching window vary per site.
	AmountPrecision        int32         // Max decimal places accepted on a line amount
	ReconDateToleranceDays int           // Auto-match window around the bank transaction date
	PeriodLockWait         time.Duration // Bounded wait for the per-period write lock
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("AMOUNT_PRECISION", 2)
	viper.SetDefault("RECON_DATE_TOLERANCE_DAYS", 3)
	viper.SetDefault("PERIOD_LOCK_WAIT", "5s")
	viper.SetDefault("ALLOWED_ORIGINS", "")
	viper.SetDefault("API_RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	origins := viper.GetString("ALLOWED_ORIGINS")
	if origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	cfg.APIRateLimit = viper.GetString("API_RATE_LIMIT")
	if _, err := limiter.NewRateFromFormatted(cfg.APIRateLimit); err != nil {
		log.Printf("Warning: Invalid API_RATE_LIMIT ('%s'). Defaulting to 100-M.\n", cfg.APIRateLimit)
		cfg.APIRateLimit = "100-M"
	}

	cfg.AmountPrecision = viper.GetInt32("AMOUNT_PRECISION")
	if cfg.AmountPrecision < 0 {
		log.Printf("Warning: Invalid AMOUNT_PRECISION (%d). Defaulting to 2.\n", cfg.AmountPrecision)
		cfg.AmountPrecision = 2
	}

	cfg.ReconDateToleranceDays = viper.GetInt("RECON_DATE_TOLERANCE_DAYS")
	if cfg.ReconDateToleranceDays < 0 {
		log.Printf("Warning: Invalid RECON_DATE_TOLERANCE_DAYS (%d). Defaulting to 3.\n", cfg.ReconDateToleranceDays)
		cfg.ReconDateToleranceDays = 3
	}

	lockWaitStr := viper.GetString("PERIOD_LOCK_WAIT")
	lockWait, err := time.ParseDuration(lockWaitStr)
	if err != nil || lockWait <= 0 {
		lockWait = 5 * time.Second
		if lockWaitStr != "" {
			log.Printf("Warning: Invalid value for PERIOD_LOCK_WAIT ('%s'). Defaulting to %s.\n", lockWaitStr, lockWait)
		}
	}
	cfg.PeriodLockWait = lockWait

	return cfg, nil
}
