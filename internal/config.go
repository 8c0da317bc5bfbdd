package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/aldwin/othala/internal/syncengine"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Vault   VaultConfig       `yaml:"vault"`
	History HistoryConfig     `yaml:"history"`
	Sync    SyncConfig        `yaml:"sync"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// HistoryConfig holds the SQLite version-log configuration.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SyncConfig holds sync-engine tunables.
//
// RenamePolicy controls what happens when a title-driven auto-rename
// fails during a commit:
//   - "best-effort" (default): the failure is logged and swallowed; the
//     body is saved at the old path.
//   - "strict": the body is still saved at the old path but the failure
//     surfaces through the commit result.
type SyncConfig struct {
	DebounceMs   int    `yaml:"debounce_ms"`
	RenamePolicy string `yaml:"rename_policy"`
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	if c.RenamePolicy == "" {
		c.RenamePolicy = string(syncengine.RenameBestEffort)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.DebounceMs, validation.Required, validation.Min(50)),
		validation.Field(&c.RenamePolicy, validation.Required,
			validation.In(string(syncengine.RenameBestEffort), string(syncengine.RenameStrict))),
	)
}

// DebounceWindow returns the debounce window as a duration.
func (c *SyncConfig) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		History: HistoryConfig{
			Path: "./othala-history.db",
		},
		Sync: SyncConfig{
			DebounceMs:   1000,
			RenamePolicy: string(syncengine.RenameBestEffort),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
