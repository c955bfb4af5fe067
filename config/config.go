package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/nexus/identity"
)

// ============================================================================
// CONFIG — ~/.nexus/config.yaml plus environment overrides
// ============================================================================
// The file carries the server address, assistant backend choice and the
// stored login. API keys come from the environment only and are never
// written back.
// ============================================================================

// Defaults.
const (
	DefaultServer    = "http://localhost:8000"
	DefaultModel     = "gemini-2.5-flash"
	DefaultTimeout   = 30 * time.Second
	DefaultAssistant = AssistantHTTP
)

// Assistant backends.
const (
	AssistantHTTP   = "http"
	AssistantGemini = "gemini"
)

// ErrNotLoggedIn is returned by RequireSession when no login is stored.
var ErrNotLoggedIn = errors.New("not logged in: run `nexus login` first")

// Config is the persisted CLI configuration.
type Config struct {
	Server    string `yaml:"server"`
	Assistant string `yaml:"assistant"` // http | gemini
	Model     string `yaml:"model,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`

	Session *identity.Identity `yaml:"session,omitempty"`

	// APIKey is read from GEMINI_API_KEY and never saved.
	APIKey string `yaml:"-"`

	path string
}

// Dir returns the config directory: $NEXUS_HOME, else ~/.nexus.
func Dir() (string, error) {
	if dir := os.Getenv("NEXUS_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".nexus"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:    DefaultServer,
		Assistant: DefaultAssistant,
		Model:     DefaultModel,
		Timeout:   DefaultTimeout.String(),
		LogLevel:  "info",
	}
}

// Load reads the config file from its default location.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes the config back to the file it was loaded from (or the
// default path), readable by the owner only.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	c.path = path
	return nil
}

// FilePath returns where Save writes.
func (c *Config) FilePath() string { return c.path }

// RequireSession returns the stored login or ErrNotLoggedIn.
func (c *Config) RequireSession() (*identity.Identity, error) {
	if !c.Session.Valid() {
		return nil, ErrNotLoggedIn
	}
	return c.Session, nil
}

// Logout forgets the stored login.
func (c *Config) Logout() {
	c.Session = nil
}

// RequestTimeout parses Timeout, falling back to DefaultTimeout.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// LogFile is where the TUI writes its log.
func LogFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nexus.log"), nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NEXUS_SERVER"); v != "" {
		c.Server = v
	}
	if v := os.Getenv("NEXUS_ASSISTANT"); v != "" {
		c.Assistant = v
	}
	if v := os.Getenv("NEXUS_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
}

func (c *Config) fillDefaults() {
	if strings.TrimSpace(c.Server) == "" {
		c.Server = DefaultServer
	}
	c.Assistant = strings.ToLower(strings.TrimSpace(c.Assistant))
	if c.Assistant != AssistantGemini {
		c.Assistant = AssistantHTTP
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
}
