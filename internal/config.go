package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scribe/internal/workspace"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Workspace WorkspaceConfig   `yaml:"workspace"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Workspace.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
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

// WorkspaceConfig controls where and how content is saved.
type WorkspaceConfig struct {
	Root            string `yaml:"root"`
	PathPolicy      string `yaml:"path_policy"`
	AtomicOverwrite bool   `yaml:"atomic_overwrite"`
	MaxContentBytes int64  `yaml:"max_content_bytes"`
	MaxPreviewBytes int64  `yaml:"max_preview_bytes"`
}

// Validate validates the workspace configuration.
func (c *WorkspaceConfig) Validate() error {
	if c.PathPolicy == "" {
		c.PathPolicy = string(workspace.PolicyStrict)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.PathPolicy, validation.In(string(workspace.PolicyStrict), string(workspace.PolicyLegacy))),
		validation.Field(&c.MaxContentBytes, validation.Min(int64(0))),
		validation.Field(&c.MaxPreviewBytes, validation.Min(int64(0))),
	)
}

// WriterOptions translates the configuration into workspace.Writer options.
func (c *WorkspaceConfig) WriterOptions() ([]workspace.Option, error) {
	policy, err := workspace.ParsePolicy(c.PathPolicy)
	if err != nil {
		return nil, err
	}
	return []workspace.Option{
		workspace.WithPolicy(policy),
		workspace.WithAtomicOverwrite(c.AtomicOverwrite),
		workspace.WithMaxContentBytes(c.MaxContentBytes),
	}, nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
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
		Workspace: WorkspaceConfig{
			Root:            "./workspace",
			PathPolicy:      string(workspace.PolicyStrict),
			MaxContentBytes: 10 << 20,
			MaxPreviewBytes: 1 << 20,
		},
		SQLite: SQLiteConfig{
			Path: "./scribe.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
