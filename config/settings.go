// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	Store  StoreConfig
	Log    LogConfig
	Server ServerConfig
}

// StoreConfig says where words are loaded from at startup.
type StoreConfig struct {
	DBPath   string // SQLite word list, empty to skip
	WordList string // text word list, empty to skip
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr        string
	ReadTimeout time.Duration
	ResultLimit int
}

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var logFormats = map[string]bool{
	"console": true,
	"json":    true,
}

// New creates settings, loading values from environment variables.
// Returns an error if an environment variable contains an invalid value.
func New() (Settings, error) {
	var log LogConfig
	if err := log.SetLevel(getEnv("RHYMER_LOG_LEVEL", "info")); err != nil {
		return Settings{}, fmt.Errorf("invalid value for RHYMER_LOG_LEVEL: %w", err)
	}

	log.Format = strings.ToLower(getEnv("RHYMER_LOG_FORMAT", "console"))
	if !logFormats[log.Format] {
		return Settings{}, fmt.Errorf("invalid value for RHYMER_LOG_FORMAT: %q", log.Format)
	}

	readTimeout, err := getEnvInt("RHYMER_READ_TIMEOUT_SECONDS", 5)
	if err != nil {
		return Settings{}, err
	}
	if readTimeout <= 0 {
		return Settings{}, fmt.Errorf("RHYMER_READ_TIMEOUT_SECONDS must be positive, got %d", readTimeout)
	}

	resultLimit, err := getEnvInt("RHYMER_RESULT_LIMIT", 20)
	if err != nil {
		return Settings{}, err
	}
	if resultLimit <= 0 {
		return Settings{}, fmt.Errorf("RHYMER_RESULT_LIMIT must be positive, got %d", resultLimit)
	}

	return Settings{
		Store: StoreConfig{
			DBPath:   os.Getenv("RHYMER_DB_PATH"),
			WordList: os.Getenv("RHYMER_WORDLIST"),
		},
		Log: log,
		Server: ServerConfig{
			Addr:        getEnv("RHYMER_ADDR", ":8080"),
			ReadTimeout: time.Duration(readTimeout) * time.Second,
			ResultLimit: resultLimit,
		},
	}, nil
}

// SetLevel sets the log level after checking it is one of debug, info,
// warn or error. Case is ignored.
func (c *LogConfig) SetLevel(level string) error {
	level = strings.ToLower(level)
	if !logLevels[level] {
		return fmt.Errorf("unknown log level %q", level)
	}
	c.Level = level
	return nil
}

// MustNew creates settings from the environment.
// Panics if environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew() Settings {
	settings, err := New()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// Environment variable helpers with proper error handling

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}
