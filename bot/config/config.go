package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// Config wraps viper and provides typed accessors.
type Config struct {
	v *viper.Viper
}

// Load reads a config file and prepares defaults. INI files go through
// gopkg.in/ini.v1 so flat key files keep working; anything else is handed
// to viper directly. Environment variables with the MENUBOT prefix
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MENUBOT")
	v.AutomaticEnv()

	setDefaults(v)

	if strings.EqualFold(filepath.Ext(path), ".ini") {
		if err := loadINI(v, path); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{v: v}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BotAPI", "https://api.telegram.org")
	v.SetDefault("BotDebug", false)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "text")
	v.SetDefault("LogSource", false)
	v.SetDefault("LogDir", "")
	v.SetDefault("GormLogLevel", "warn")
	v.SetDefault("Database", "sessions.db")
	v.SetDefault("DBMaxOpenConns", 1)
	v.SetDefault("DBMaxIdleConns", 1)
	v.SetDefault("DBConnMaxLifetimeSec", 3600)
	v.SetDefault("SessionTimeoutHours", 24)
	v.SetDefault("SessionSweepMinutes", 30)
	v.SetDefault("WorkerPoolSize", 4)
	v.SetDefault("RateLimitPerSecond", 1.0)
	v.SetDefault("RateLimitBurst", 3)
	v.SetDefault("Environment", "development")
	v.SetDefault("AppName", "menubot")
}

// GetString returns a string value.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns an int value.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 returns a float64 value.
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool returns a bool value.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// IsProduction reports whether the bot runs in a production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.v.GetString("Environment"), "production")
}

func loadINI(v *viper.Viper, path string) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return err
	}

	for _, key := range cfg.Section("").Keys() {
		v.Set(key.Name(), key.Value())
	}

	return nil
}
