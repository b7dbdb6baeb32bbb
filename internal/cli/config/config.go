package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/session"
	"github.com/chazo1994/Creatory/pkg/logger"
)

const (
	// DefaultServer is used when no server was ever configured
	DefaultServer = "http://localhost:8000"

	envPrefix = "STUDIO"
)

// UserInfo is the persisted identity of the logged-in user
type UserInfo struct {
	ID          string `json:"id" mapstructure:"id"`
	Email       string `json:"email" mapstructure:"email"`
	DisplayName string `json:"display_name,omitempty" mapstructure:"display_name"`
}

// Config stores CLI configuration and the persisted session
type Config struct {
	Server         string        `json:"server" mapstructure:"server"`
	AccessToken    string        `json:"access_token,omitempty" mapstructure:"access_token"`
	User           *UserInfo     `json:"user,omitempty" mapstructure:"user"`
	WorkspaceID    string        `json:"workspace_id,omitempty" mapstructure:"workspace_id"`
	ConversationID string        `json:"conversation_id,omitempty" mapstructure:"conversation_id"`
	MainThreadID   string        `json:"main_thread_id,omitempty" mapstructure:"main_thread_id"`
	QuickThreadID  string        `json:"quick_thread_id,omitempty" mapstructure:"quick_thread_id"`
	Log            logger.Config `json:"log" mapstructure:"log"`

	path string
}

// GetConfigPath returns the configuration file path (~/.studioctl/config.yaml)
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".studioctl", "config.yaml"), nil
}

// Load loads configuration from the default path
func Load() (*Config, error) {
	configFile, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configFile)
}

// LoadFrom loads configuration from configFile; a missing file yields the
// defaults. STUDIO_* environment variables override file values, e.g.
// STUDIO_SERVER or STUDIO_LOG_LEVEL.
func LoadFrom(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	// every key needs a default so AutomaticEnv can see it
	v.SetDefault("server", DefaultServer)
	v.SetDefault("access_token", "")
	v.SetDefault("workspace_id", "")
	v.SetDefault("conversation_id", "")
	v.SetDefault("main_thread_id", "")
	v.SetDefault("quick_thread_id", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.add_source", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Use default server if not set
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.User != nil && cfg.User.ID == "" && cfg.User.Email == "" {
		cfg.User = nil
	}
	cfg.path = configFile

	return &cfg, nil
}

// Path returns the file the configuration is saved to
func (c *Config) Path() string {
	return c.path
}

// Save saves configuration to file
func (c *Config) Save() error {
	configFile := c.path
	if configFile == "" {
		var err error
		if configFile, err = GetConfigPath(); err != nil {
			return err
		}
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configFile), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file (0600 permission, user read/write only)
	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsAuthenticated checks if user is logged in
func (c *Config) IsAuthenticated() bool {
	return c.AccessToken != ""
}

// Snapshot converts the persisted session into a session snapshot
func (c *Config) Snapshot() session.Snapshot {
	snap := session.Snapshot{
		Token:          c.AccessToken,
		WorkspaceID:    c.WorkspaceID,
		ConversationID: c.ConversationID,
		MainThreadID:   c.MainThreadID,
		QuickThreadID:  c.QuickThreadID,
	}
	if c.User != nil {
		user := types.User{ID: c.User.ID, Email: c.User.Email}
		if c.User.DisplayName != "" {
			name := c.User.DisplayName
			user.DisplayName = &name
		}
		snap.User = &user
	}
	return snap
}

// ApplySnapshot copies a session snapshot into the persisted fields
func (c *Config) ApplySnapshot(snap session.Snapshot) {
	c.AccessToken = snap.Token
	c.WorkspaceID = snap.WorkspaceID
	c.ConversationID = snap.ConversationID
	c.MainThreadID = snap.MainThreadID
	c.QuickThreadID = snap.QuickThreadID

	c.User = nil
	if snap.User != nil {
		c.User = &UserInfo{ID: snap.User.ID, Email: snap.User.Email}
		if snap.User.DisplayName != nil {
			c.User.DisplayName = *snap.User.DisplayName
		}
	}
}
