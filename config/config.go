package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Registry RegistryConfig
	Cache    CacheConfig
	Scanner  ScannerConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RegistryConfig holds the public food registry API configuration
type RegistryConfig struct {
	ServiceKey       string `mapstructure:"service_key"`
	PrimaryBaseURL   string `mapstructure:"primary_base_url"`
	SecondaryBaseURL string `mapstructure:"secondary_base_url"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// ScannerConfig holds barcode detection and arbitration tuning
type ScannerConfig struct {
	DebounceWindow      time.Duration `mapstructure:"debounce_window"`
	MaxMeanPatternError float64       `mapstructure:"max_mean_pattern_error"`
	MinRowTransitions   int           `mapstructure:"min_row_transitions"`
	LuminanceJump       float64       `mapstructure:"luminance_jump"`
	ContrastBoost       float64       `mapstructure:"contrast_boost"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Populate the environment from a local .env file if present
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/allerscan/")

	// Environment variable settings
	v.SetEnvPrefix("ALLERSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Registry defaults
	v.SetDefault("registry.primary_base_url", "https://apis.data.go.kr/1471000/FoodQrInfoService01")
	v.SetDefault("registry.secondary_base_url", "https://apis.data.go.kr/B553748/CertImgListService")

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")

	// Scanner defaults
	v.SetDefault("scanner.debounce_window", "500ms")
	v.SetDefault("scanner.max_mean_pattern_error", 0.15)
	v.SetDefault("scanner.min_row_transitions", 30)
	v.SetDefault("scanner.luminance_jump", 50)
	v.SetDefault("scanner.contrast_boost", 25)
}

// loadEnvFile reads KEY=VALUE pairs from a .env file in the working
// directory into the process environment. Existing variables win; a
// missing file is not an error.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" || os.Getenv(key) != "" {
			continue
		}
		os.Setenv(key, strings.TrimSpace(value))
	}
	return scanner.Err()
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Registry.ServiceKey == "" {
		return fmt.Errorf("registry service key is required (set ALLERSCAN_REGISTRY_SERVICE_KEY)")
	}

	if config.Scanner.MaxMeanPatternError <= 0 || config.Scanner.MaxMeanPatternError >= 1 {
		return fmt.Errorf("scanner max_mean_pattern_error must be in (0, 1), got: %v", config.Scanner.MaxMeanPatternError)
	}

	if config.Scanner.DebounceWindow < 0 {
		return fmt.Errorf("scanner debounce_window must not be negative, got: %v", config.Scanner.DebounceWindow)
	}

	return nil
}
