// Package config holds the process configuration, loaded once at startup and
// passed into the core as plain values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultTargetURL is the login URL used when a request omits one.
const DefaultTargetURL = "https://lendly.catch-e.net.au/core/login.phpo?i=&user_login=ben.lazzaro&screen_width=1536&screen_height=960"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig configures the HTTP front door.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BrowserConfig configures the browser session and the per-operation timing
// policy of the workflow engine.
type BrowserConfig struct {
	Headless       bool `mapstructure:"headless"`
	ViewportWidth  int  `mapstructure:"viewport_width"`
	ViewportHeight int  `mapstructure:"viewport_height"`

	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	SelectorTimeout   time.Duration `mapstructure:"selector_timeout"`
	PopupTimeout      time.Duration `mapstructure:"popup_timeout"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"`
	GrossPollInterval time.Duration `mapstructure:"gross_poll_interval"`
	GrossPollTimeout  time.Duration `mapstructure:"gross_poll_timeout"`
}

// StorageConfig configures the object store holding invoice files.
type StorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// WorkflowConfig carries workflow-level defaults.
type WorkflowConfig struct {
	DefaultURL    string `mapstructure:"default_url"`
	InterfaceCode string `mapstructure:"interface_code"`
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	LogFile     string `mapstructure:"log_file"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	Compress    bool   `mapstructure:"compress"`
	AddSource   bool   `mapstructure:"add_source"`
	ServiceName string `mapstructure:"service_name"`
}

// SetDefaults registers every default on the given viper instance. Called
// before ReadInConfig so file and environment values override them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.viewport_width", 1536)
	v.SetDefault("browser.viewport_height", 960)
	v.SetDefault("browser.navigation_timeout", 30*time.Second)
	v.SetDefault("browser.selector_timeout", 20*time.Second)
	v.SetDefault("browser.popup_timeout", 8*time.Second)
	v.SetDefault("browser.settle_delay", 2*time.Second)
	v.SetDefault("browser.gross_poll_interval", 500*time.Millisecond)
	v.SetDefault("browser.gross_poll_timeout", 8*time.Second)

	v.SetDefault("storage.bucket", "fuel-invoices-receipt")
	v.SetDefault("storage.region", "ap-southeast-2")

	v.SetDefault("workflow.default_url", DefaultTargetURL)
	v.SetDefault("workflow.interface_code", "CALNS")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.service_name", "fleetimport")
}

// Load reads configuration from the optional file, the environment
// (FLEETIMPORT_ prefix), and the registered defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FLEETIMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file; defaults plus environment apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the core cannot run with.
func (c *Config) Validate() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport dimensions must be positive")
	}
	return nil
}
