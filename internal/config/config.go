package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	DBUrl    string `mapstructure:"DB_URL"`
	RedisUrl string `mapstructure:"REDIS_URL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// StandardsFile is an optional YAML table layered over the built-in one
	StandardsFile string `mapstructure:"STANDARDS_FILE"`
	// TieBreak is "first" or "smallest_area"
	TieBreak string `mapstructure:"TIE_BREAK"`

	LookupCacheTTL time.Duration `mapstructure:"LOOKUP_CACHE_TTL"`
	ReloadInterval time.Duration `mapstructure:"RELOAD_INTERVAL"`
	BatchMaxPoints int           `mapstructure:"BATCH_MAX_POINTS"`
	BatchWorkers   int           `mapstructure:"BATCH_WORKERS"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", ":8080")
	v.SetDefault("DB_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("STANDARDS_FILE", "")
	v.SetDefault("TIE_BREAK", "first")
	v.SetDefault("LOOKUP_CACHE_TTL", DefaultLookupCacheTTL)
	v.SetDefault("RELOAD_INTERVAL", DefaultReloadInterval)
	v.SetDefault("BATCH_MAX_POINTS", 500)
	v.SetDefault("BATCH_WORKERS", 8)
}

func LoadConfig() (c Config, err error) {
	// A plain .env is optional and never overrides the real environment
	_ = godotenv.Load(".env")

	// Get environment type from ENV variable or use development as default
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	return load(".", fmt.Sprintf(".env.%s", env))
}

func load(dir, name string) (c Config, err error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(name)
	v.SetConfigType("env")
	v.AddConfigPath(dir)

	// Environment variables take precedence over config file
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Continue even if file is not found
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	if err = v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, c.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.BatchMaxPoints <= 0 {
		return fmt.Errorf("BATCH_MAX_POINTS must be positive, got %d", c.BatchMaxPoints)
	}
	if c.BatchWorkers <= 0 {
		return fmt.Errorf("BATCH_WORKERS must be positive, got %d", c.BatchWorkers)
	}
	if c.LookupCacheTTL < 0 || c.ReloadInterval < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}
