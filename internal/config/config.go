package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Security      SecurityConfig      `yaml:"security" envconfig:"SECURITY"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Data          DataConfig          `yaml:"data" envconfig:"DATA"`
	Auth          AuthConfig          `yaml:"auth" envconfig:"AUTH"`
	Dashboard     DashboardConfig     `yaml:"dashboard" envconfig:"DASHBOARD"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"20s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"false"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"100"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// DataConfig describes the registration workbook
type DataConfig struct {
	WorkbookPath string `yaml:"workbook_path" envconfig:"WORKBOOK_PATH" default:"CRPD Final All Data.xlsx"`
	SheetName    string `yaml:"sheet_name" envconfig:"SHEET_NAME" default:"Final Data"`
	Columns      string `yaml:"columns" envconfig:"COLUMNS" default:"A:L"`
	MaxRows      int    `yaml:"max_rows" envconfig:"MAX_ROWS" default:"200000"`
}

// AuthConfig contains the single credential pair guarding the dashboard.
// PasswordHash, when set, is a bcrypt hash and takes precedence over Password.
type AuthConfig struct {
	Username     string        `yaml:"username" envconfig:"USERNAME" default:"mohr"`
	Password     string        `yaml:"password" envconfig:"PASSWORD" default:"mohr2025"`
	PasswordHash string        `yaml:"password_hash" envconfig:"PASSWORD_HASH"`
	SessionTTL   time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL" default:"24h"`
	CookieName   string        `yaml:"cookie_name" envconfig:"COOKIE_NAME" default:"crpd_session"`
	SecureCookie bool          `yaml:"secure_cookie" envconfig:"SECURE_COOKIE" default:"false"`
}

// DashboardConfig contains presentation settings
type DashboardConfig struct {
	RawTableLimit int `yaml:"raw_table_limit" envconfig:"RAW_TABLE_LIMIT" default:"1000"`
	ChartWidth    int `yaml:"chart_width" envconfig:"CHART_WIDTH" default:"10"`
	ChartHeight   int `yaml:"chart_height" envconfig:"CHART_HEIGHT" default:"6"`
}

// ObservabilityConfig selects the OpenTelemetry exporters
type ObservabilityConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"production"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration from the environment and the given YAML
// file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileConfig, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileConfig, cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config. A value explicitly set
// in the environment wins; otherwise a non-zero file value replaces the
// envconfig default.
func mergeConfigs(fileConfig, envConfig Config) Config {
	set := func(name string) bool {
		_, ok := os.LookupEnv(EnvPrefix + "_" + name)
		return ok
	}

	if !set("SERVER_PORT") && fileConfig.Server.Port != 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if !set("SERVER_READ_TIMEOUT") && fileConfig.Server.ReadTimeout != 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if !set("SERVER_WRITE_TIMEOUT") && fileConfig.Server.WriteTimeout != 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if !set("SERVER_REQUEST_TIMEOUT") && fileConfig.Server.RequestTimeout != 0 {
		envConfig.Server.RequestTimeout = fileConfig.Server.RequestTimeout
	}
	if !set("LOGGING_LEVEL") && fileConfig.Logging.Level != "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if !set("LOGGING_OUTPUT") && fileConfig.Logging.Output != "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if !set("LOGGING_FILE_PATH") && fileConfig.Logging.FilePath != "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if !set("DATA_WORKBOOK_PATH") && fileConfig.Data.WorkbookPath != "" {
		envConfig.Data.WorkbookPath = fileConfig.Data.WorkbookPath
	}
	if !set("DATA_SHEET_NAME") && fileConfig.Data.SheetName != "" {
		envConfig.Data.SheetName = fileConfig.Data.SheetName
	}
	if !set("DATA_COLUMNS") && fileConfig.Data.Columns != "" {
		envConfig.Data.Columns = fileConfig.Data.Columns
	}
	if !set("DATA_MAX_ROWS") && fileConfig.Data.MaxRows != 0 {
		envConfig.Data.MaxRows = fileConfig.Data.MaxRows
	}
	if !set("AUTH_USERNAME") && fileConfig.Auth.Username != "" {
		envConfig.Auth.Username = fileConfig.Auth.Username
	}
	if !set("AUTH_PASSWORD") && fileConfig.Auth.Password != "" {
		envConfig.Auth.Password = fileConfig.Auth.Password
	}
	if !set("AUTH_PASSWORD_HASH") && fileConfig.Auth.PasswordHash != "" {
		envConfig.Auth.PasswordHash = fileConfig.Auth.PasswordHash
	}
	if !set("AUTH_SESSION_TTL") && fileConfig.Auth.SessionTTL != 0 {
		envConfig.Auth.SessionTTL = fileConfig.Auth.SessionTTL
	}
	if !set("DASHBOARD_RAW_TABLE_LIMIT") && fileConfig.Dashboard.RawTableLimit != 0 {
		envConfig.Dashboard.RawTableLimit = fileConfig.Dashboard.RawTableLimit
	}
	if !set("OBSERVABILITY_TRACE_EXPORTER") && fileConfig.Observability.TraceExporter != "" {
		envConfig.Observability.TraceExporter = fileConfig.Observability.TraceExporter
	}
	if !set("OBSERVABILITY_METRIC_EXPORTER") && fileConfig.Observability.MetricExporter != "" {
		envConfig.Observability.MetricExporter = fileConfig.Observability.MetricExporter
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if strings.TrimSpace(c.Data.WorkbookPath) == "" {
		return fmt.Errorf("workbook path must be set")
	}

	if strings.TrimSpace(c.Data.SheetName) == "" {
		return fmt.Errorf("sheet name must be set")
	}

	if c.Data.MaxRows <= 0 {
		return fmt.Errorf("max rows must be positive, got %d", c.Data.MaxRows)
	}

	if c.Auth.Username == "" {
		return fmt.Errorf("auth username must be set")
	}

	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("auth password or password hash must be set")
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	if c.Dashboard.RawTableLimit < 0 {
		return fmt.Errorf("raw table limit cannot be negative")
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  20 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Data: DataConfig{
			WorkbookPath: DefaultWorkbookName,
			SheetName:    DefaultSheetName,
			Columns:      DefaultColumnRange,
			MaxRows:      DefaultMaxRows,
		},
		Auth: AuthConfig{
			Username:   "mohr",
			Password:   "mohr2025",
			SessionTTL: SessionTimeout,
			CookieName: SessionCookieName,
		},
		Dashboard: DashboardConfig{
			RawTableLimit: 1000,
			ChartWidth:    10,
			ChartHeight:   6,
		},
		Observability: ObservabilityConfig{
			Environment:    "production",
			MetricExporter: "prometheus",
			TraceExporter:  "none",
			SampleRatio:    1.0,
		},
	}
}
