package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the gateway service.
// It is built once at startup and treated as immutable afterwards.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Binance BinanceConfig `json:"binance"`
	Auth    AuthConfig    `json:"auth"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `json:"port"`
	Host            string        `json:"host"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// BinanceConfig holds Binance API configuration
type BinanceConfig struct {
	APIKey     string        `json:"api_key"`
	SecretKey  string        `json:"secret_key"`
	BaseURL    string        `json:"base_url"`
	Testnet    bool          `json:"testnet"`
	Timeout    time.Duration `json:"timeout"`
	RecvWindow int64         `json:"recv_window"`
}

// AuthConfig holds access-control configuration.
// ServiceAPIKey/ServiceSecretKey are the static login credentials for
// this gateway; they are unrelated to the Binance credentials.
type AuthConfig struct {
	JWTSecret        string        `json:"jwt_secret"`
	TokenTTL         time.Duration `json:"token_ttl"`
	ServiceAPIKey    string        `json:"service_api_key"`
	ServiceSecretKey string        `json:"service_secret_key"`
	AllowInsecureDev bool          `json:"allow_insecure_dev"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"` // json or console
	Output     string `json:"output"` // stdout, stderr, or file path
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
}

const (
	mainnetBaseURL = "https://api.binance.com"
	testnetBaseURL = "https://testnet.binance.vision"

	// Fallbacks used only when AUTH_ALLOW_INSECURE_DEV is set.
	devJWTSecret        = "insecure-dev-secret"
	devServiceAPIKey    = "demo-api"
	devServiceSecretKey = "demo-secret"
)

// Load loads configuration from a .env file (if present) and the
// process environment.
func Load() (*Config, error) {
	// A missing .env file is not an error; the environment may be
	// populated by the deployment instead.
	_ = godotenv.Load()

	testnet := getEnvAsBool("USE_BINANCE_TESTNET", false)

	config := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 3000),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", "30s"),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", "30s"),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", "60s"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", "10s"),
		},
		Binance: BinanceConfig{
			APIKey:     pickCredential(testnet, "BINANCE_TESTNET_API_KEY", "BINANCE_API_KEY"),
			SecretKey:  pickCredential(testnet, "BINANCE_TESTNET_API_SECRET", "BINANCE_API_SECRET"),
			BaseURL:    getEnv("BINANCE_BASE_URL", defaultBaseURL(testnet)),
			Testnet:    testnet,
			Timeout:    getEnvAsDuration("BINANCE_TIMEOUT", "30s"),
			RecvWindow: getEnvAsInt64("BINANCE_RECV_WINDOW", 5000),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			TokenTTL:         getEnvAsDuration("JWT_EXPIRES_IN", "24h"),
			ServiceAPIKey:    getEnv("AUTH_API_KEY", ""),
			ServiceSecretKey: getEnv("AUTH_SECRET_KEY", ""),
			AllowInsecureDev: getEnvAsBool("AUTH_ALLOW_INSECURE_DEV", false),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "console"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			MaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getEnvAsInt("LOG_MAX_AGE", 30),
		},
	}

	if config.Auth.AllowInsecureDev {
		if config.Auth.JWTSecret == "" {
			config.Auth.JWTSecret = devJWTSecret
		}
		if config.Auth.ServiceAPIKey == "" {
			config.Auth.ServiceAPIKey = devServiceAPIKey
		}
		if config.Auth.ServiceSecretKey == "" {
			config.Auth.ServiceSecretKey = devServiceSecretKey
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate validates the configuration. The process must refuse to
// start without exchange credentials and a token signing secret.
func (c *Config) Validate() error {
	if c.Binance.APIKey == "" {
		return fmt.Errorf("%s is required", binanceKeyName(c.Binance.Testnet, "API_KEY"))
	}
	if c.Binance.SecretKey == "" {
		return fmt.Errorf("%s is required", binanceKeyName(c.Binance.Testnet, "API_SECRET"))
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required (set AUTH_ALLOW_INSECURE_DEV=true to use a development default)")
	}
	if c.Auth.ServiceAPIKey == "" || c.Auth.ServiceSecretKey == "" {
		return fmt.Errorf("AUTH_API_KEY and AUTH_SECRET_KEY are required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// MaskKey renders a credential safe for diagnostics, keeping only a
// short prefix and suffix.
func MaskKey(key string) string {
	if key == "" {
		return "unset"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func defaultBaseURL(testnet bool) string {
	if testnet {
		return testnetBaseURL
	}
	return mainnetBaseURL
}

func pickCredential(testnet bool, testnetKey, mainnetKey string) string {
	if testnet {
		return getEnv(testnetKey, "")
	}
	return getEnv(mainnetKey, "")
}

func binanceKeyName(testnet bool, suffix string) string {
	if testnet {
		return "BINANCE_TESTNET_" + suffix
	}
	return "BINANCE_" + suffix
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if int64Value, err := strconv.ParseInt(value, 10, 64); err == nil {
			return int64Value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// JWT_EXPIRES_IN in plain seconds is accepted for
		// compatibility with older deployments.
		if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
