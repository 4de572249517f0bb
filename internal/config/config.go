// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/itemsentinel/internal/domain"
	"github.com/aristath/itemsentinel/internal/modules/analytics"
)

// Config holds application configuration
type Config struct {
	DataDir     string // Base directory for all databases (defaults to "./data", always absolute)
	LogLevel    string
	LogPretty   bool
	Port        int
	DevMode     bool
	WeightsFile string // Optional YAML file overriding default weights

	Weights            analytics.WeightConfig
	DefaultRank        domain.RankCategory
	MetaAlertThreshold int

	Schedules          Schedules
	HeroStatsRetention time.Duration
	ItemScoreRetention time.Duration
	R2                 R2Config
}

// Schedules holds the cron expressions (with seconds) of every background job
type Schedules struct {
	ScoreTrackedItems string
	PortfolioHistory  string
	PruneHeroStats    string
	PruneItemScores   string
	CheckDatabases    string
	Backup            string
}

// R2Config holds Cloudflare R2 backup settings. Backups are off unless every
// credential field is set.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Keep            int // archives kept by rotation
}

// Enabled reports whether R2 backups are configured
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.SecretAccessKey != "" && r.Bucket != ""
}

// Load reads configuration from .env and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := resolveDataDir(getEnv("ITEMSENTINEL_DATA_DIR", "./data"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:            dataDir,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPretty:          getEnvAsBool("LOG_PRETTY", true),
		Port:               getEnvAsInt("GO_PORT", 8001),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		WeightsFile:        getEnv("WEIGHTS_FILE", ""),
		DefaultRank:        domain.RankCategory(getEnv("DEFAULT_RANK_CATEGORY", string(domain.RankHigh))),
		MetaAlertThreshold: getEnvAsInt("META_ALERT_THRESHOLD", 75),
		Schedules: Schedules{
			ScoreTrackedItems: getEnv("SCORE_SCHEDULE", "0 */30 * * * *"),
			PortfolioHistory:  getEnv("PORTFOLIO_HISTORY_SCHEDULE", "0 0 4 * * *"),
			PruneHeroStats:    getEnv("HERO_STATS_PRUNE_SCHEDULE", "0 15 4 * * *"),
			PruneItemScores:   getEnv("ITEM_SCORES_PRUNE_SCHEDULE", "0 45 4 * * *"),
			CheckDatabases:    getEnv("CHECK_DATABASES_SCHEDULE", "0 0 */6 * * *"),
			Backup:            getEnv("BACKUP_SCHEDULE", "0 30 3 * * *"),
		},
		HeroStatsRetention: time.Duration(getEnvAsInt("HERO_STATS_RETENTION_DAYS", 30)) * 24 * time.Hour,
		ItemScoreRetention: time.Duration(getEnvAsInt("ITEM_SCORES_RETENTION_DAYS", 90)) * 24 * time.Hour,
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("R2_BUCKET", ""),
			Keep:            getEnvAsInt("BACKUP_KEEP", 7),
		},
	}

	cfg.Weights, err = LoadWeights(cfg.WeightsFile)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded configuration for values the service cannot run with
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if !c.DefaultRank.Valid() {
		return fmt.Errorf("invalid default rank category %q", c.DefaultRank)
	}
	if c.MetaAlertThreshold < 0 || c.MetaAlertThreshold > 100 {
		return fmt.Errorf("meta alert threshold must be within 0-100, got %d", c.MetaAlertThreshold)
	}
	if c.HeroStatsRetention <= 0 || c.ItemScoreRetention <= 0 {
		return fmt.Errorf("retention periods must be at least one day")
	}

	r2 := c.R2
	set := 0
	for _, v := range []string{r2.AccountID, r2.AccessKeyID, r2.SecretAccessKey, r2.Bucket} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 4 {
		return fmt.Errorf("r2 backup settings are incomplete: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET, or none")
	}
	if r2.Enabled() && r2.Keep < 1 {
		return fmt.Errorf("backup keep must be at least 1, got %d", r2.Keep)
	}

	return nil
}

// DatabasePath returns the file path of a named database inside the data directory
func (c *Config) DatabasePath(name string) string {
	return filepath.Join(c.DataDir, name+".db")
}

// resolveDataDir makes dir absolute and creates it
func resolveDataDir(dir string) (string, error) {
	absDataDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return absDataDir, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
