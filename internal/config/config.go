// Package config centralizes configuration loading for ModBot.
// Values come from .modbot.yaml, environment variables, and defaults, and
// are injected into components at construction time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App           App           `mapstructure:"app"`
	Server        Server        `mapstructure:"server"`
	Database      Database      `mapstructure:"database"`
	Reddit        Reddit        `mapstructure:"reddit"`
	AI            AI            `mapstructure:"ai"`
	Monitor       Monitor       `mapstructure:"monitor"`
	Notifications Notifications `mapstructure:"notifications"`
}

// App holds general application configuration.
type App struct {
	Debug      bool   `mapstructure:"debug"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORS          `mapstructure:"cors"`
}

// CORS holds cross-origin configuration for the API.
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Database holds PostgreSQL configuration.
type Database struct {
	ConnectionString string `mapstructure:"connection_string"`
}

// Reddit holds content-source configuration.
type Reddit struct {
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	RedirectURI   string `mapstructure:"redirect_uri"`
	UserAgent     string `mapstructure:"user_agent"`
	UseSampleData bool   `mapstructure:"use_sample_data"`
	Timeout       string `mapstructure:"timeout"`
}

// AI holds classification service configuration.
type AI struct {
	Gemini Gemini `mapstructure:"gemini"`
}

// Gemini holds Google Gemini configuration.
type Gemini struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	Timeout     string  `mapstructure:"timeout"`
}

// Monitor holds scan orchestrator configuration.
type Monitor struct {
	FetchLimit          int     `mapstructure:"fetch_limit"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	ListingCacheMaxAge  string  `mapstructure:"listing_cache_max_age"`
}

// Notifications holds delivery channel configuration.
type Notifications struct {
	SMTP        SMTP   `mapstructure:"smtp"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// SMTP holds outbound mail configuration.
type SMTP struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

var globalConfig *Config

// Load loads the configuration from various sources.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".modbot")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached global configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".modbot-cache")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	viper.SetDefault("reddit.user_agent", "web:ModBot:v1.0.0 (by /u/YourUsername)")
	viper.SetDefault("reddit.use_sample_data", false)
	viper.SetDefault("reddit.timeout", "15s")

	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	viper.SetDefault("ai.gemini.temperature", 0.1)
	viper.SetDefault("ai.gemini.timeout", "30s")

	viper.SetDefault("monitor.fetch_limit", 10)
	viper.SetDefault("monitor.confidence_threshold", 0.5)
	viper.SetDefault("monitor.listing_cache_max_age", "5m")

	viper.SetDefault("notifications.smtp.port", 587)
	viper.SetDefault("notifications.from_name", "ModBot")
}

// bindEnvironmentVariables maps well-known environment variables onto
// viper keys before unmarshaling.
func bindEnvironmentVariables() {
	bindEnvKeys("database.connection_string", []string{
		"DATABASE_URL",
		"MODBOT_DATABASE_URL",
	})

	bindEnvKeys("reddit.client_id", []string{
		"REDDIT_CLIENT_ID",
	})
	bindEnvKeys("reddit.client_secret", []string{
		"REDDIT_CLIENT_SECRET",
	})
	bindEnvKeys("reddit.redirect_uri", []string{
		"REDDIT_REDIRECT_URI",
	})

	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("notifications.smtp.host", []string{
		"SMTP_HOST",
	})
	bindEnvKeys("notifications.smtp.username", []string{
		"SMTP_USERNAME",
	})
	bindEnvKeys("notifications.smtp.password", []string{
		"SMTP_PASSWORD",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"MODBOT_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key.
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// expandPath expands ~ to the user home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// validateConfig checks configuration consistency.
func validateConfig(config *Config) error {
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Monitor.FetchLimit <= 0 {
		return fmt.Errorf("monitor.fetch_limit must be positive, got %d", config.Monitor.FetchLimit)
	}
	if config.Monitor.ConfidenceThreshold < 0 || config.Monitor.ConfidenceThreshold > 1 {
		return fmt.Errorf("monitor.confidence_threshold must be in [0,1], got %f", config.Monitor.ConfidenceThreshold)
	}
	return nil
}

// Convenience accessors for commonly used values.
func GetApp() App              { return Get().App }
func GetServer() Server        { return Get().Server }
func GetDatabase() Database    { return Get().Database }
func GetReddit() Reddit        { return Get().Reddit }
func GetGeminiAPIKey() string  { return Get().AI.Gemini.APIKey }
func GetGeminiModel() string   { return Get().AI.Gemini.Model }
func GetMonitor() Monitor      { return Get().Monitor }
func GetDataDirectory() string { return Get().App.DataDir }
func IsDebugMode() bool        { return Get().App.Debug }

// ParseTimeout parses a duration string, falling back to a default when the
// value is empty or malformed.
func ParseTimeout(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
