package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/hangar/internal/kv"
	"github.com/starford/hangar/internal/render"
	"github.com/starford/hangar/internal/validate"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Run modes.
const (
	ModeProduction = "production"
	ModeDev        = "dev"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Content   ContentConfig     `yaml:"content"`
	Artifacts ArtifactsConfig   `yaml:"artifacts"`
	Render    RenderConfig      `yaml:"render"`
	Store     StoreConfig       `yaml:"store"`
	Auth      AuthConfig        `yaml:"auth"`
	Limits    validate.Limits   `yaml:"limits"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Artifacts.Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
//
// Mode "dev" watches the content directory and rebuilds on change;
// "production" serves the artifacts as built.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Mode     string     `yaml:"mode"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = ModeProduction
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.In(ModeProduction, ModeDev)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// DevMode reports whether the content watcher should run.
func (c *ApplicationConfig) DevMode() bool {
	return c.Mode == ModeDev
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

// ContentConfig holds the path to the Markdown content tree.
type ContentConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// ArtifactsConfig holds the directory that receives index.json and documents.json.
type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the artifacts configuration.
func (c *ArtifactsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// RenderConfig selects the Markdown engine.
type RenderConfig struct {
	Engine string `yaml:"engine"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	if c.Engine == "" {
		c.Engine = render.EngineBasic
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Engine, validation.In(render.EngineBasic, render.EngineGoldmark)),
	)
}

// StoreConfig selects the bookmark/notes backend. Path is a database file
// for "sqlite" and a directory for "file".
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(kv.DriverSQLite, kv.DriverFile)),
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
			Mode:     ModeProduction,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Dir: "./content",
		},
		Artifacts: ArtifactsConfig{
			Dir: "./dist/content",
		},
		Render: RenderConfig{
			Engine: render.EngineBasic,
		},
		Store: StoreConfig{
			Driver: kv.DriverSQLite,
			Path:   "./hangar.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Limits: validate.DefaultLimits(),
	}
}
