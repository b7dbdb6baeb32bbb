package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chazo1994/Creatory/pkg/logger"
)

const envPrefix = "STUDIO_DEV"

// Config is the development server configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      logger.Config  `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Stream   StreamConfig   `mapstructure:"stream"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Mode               string        `mapstructure:"mode"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	MaxRequestBodySize int           `mapstructure:"max_request_body_size"`
}

// AuthConfig configures bearer token issuing
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// SeedConfig is an optional user registered at startup
type SeedConfig struct {
	Email       string `mapstructure:"email"`
	Password    string `mapstructure:"password"`
	DisplayName string `mapstructure:"display_name"`
}

// Enabled reports whether a seed user is configured
func (s SeedConfig) Enabled() bool {
	return s.Email != ""
}

// WorkflowConfig bounds workflow execution
type WorkflowConfig struct {
	// MaxSteps is the circuit breaker budget for one run
	MaxSteps int `mapstructure:"max_steps"`
}

// StreamConfig shapes the run event stream
type StreamConfig struct {
	// EventDelay is slept between two events; zero streams as fast as possible
	EventDelay time.Duration `mapstructure:"event_delay"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "127.0.0.1",
			Port:               8000,
			Mode:               "debug",
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       0,
			MaxRequestBodySize: 4 << 20,
		},
		Log: logger.Config{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Auth: AuthConfig{
			Secret:   "studio-devserver-insecure-local-secret",
			TokenTTL: 24 * time.Hour,
		},
		Workflow: WorkflowConfig{MaxSteps: 12},
		Stream:   StreamConfig{EventDelay: 150 * time.Millisecond},
	}
}

// Load reads configPath (or ./configs/devserver.yaml when empty) and applies
// STUDIO_DEV_* environment overrides, e.g. STUDIO_DEV_SERVER_PORT
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("devserver")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// defaults are enough when no file was asked for
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_request_body_size", d.Server.MaxRequestBodySize)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.add_source", false)
	v.SetDefault("auth.secret", d.Auth.Secret)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)
	v.SetDefault("seed.email", "")
	v.SetDefault("seed.password", "")
	v.SetDefault("seed.display_name", "")
	v.SetDefault("workflow.max_steps", d.Workflow.MaxSteps)
	v.SetDefault("stream.event_delay", d.Stream.EventDelay)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server mode: %s, must be 'debug' or 'release'", c.Server.Mode)
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	if len(c.Auth.Secret) < 32 {
		return fmt.Errorf("auth.secret must be at least 32 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}

	if c.Seed.Enabled() && len(c.Seed.Password) < 8 {
		return fmt.Errorf("seed.password must be at least 8 characters")
	}

	if c.Workflow.MaxSteps < 1 {
		return fmt.Errorf("workflow.max_steps must be at least 1")
	}

	if c.Stream.EventDelay < 0 {
		return fmt.Errorf("stream.event_delay must not be negative")
	}

	return nil
}

// GetServerAddr returns host:port
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
