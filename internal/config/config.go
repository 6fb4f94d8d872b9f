package config

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/scribe-dev/scribe/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "scribe.json"

	// DefaultControlHost is the default control listener host.
	DefaultControlHost = "localhost"

	// DefaultControlPort is the default control listener port.
	DefaultControlPort = 8010

	// DefaultAdminHost is the default admin HTTP listener host.
	DefaultAdminHost = "localhost"

	// DefaultAdminPort is the default admin HTTP listener port.
	DefaultAdminPort = 8020

	// DefaultMaxSessions is the default control session cap.
	DefaultMaxSessions = 64

	// DefaultSessionTimeout is the default control session activity timeout.
	DefaultSessionTimeout = "10s"

	// DefaultIdleStrategy is the default conductor idle strategy.
	DefaultIdleStrategy = "backoff"
)

// Config represents the complete scribe.json configuration.
type Config struct {
	// Name is the archive instance name, surfaced in logs and the admin API.
	Name string `json:"name,omitempty"`

	// Control contains control listener settings.
	Control ControlConfig `json:"control,omitempty"`

	// Admin contains admin HTTP listener settings.
	Admin AdminConfig `json:"admin,omitempty"`

	// Auth contains control session authentication settings.
	Auth AuthConfig `json:"auth,omitempty"`

	// Offload contains segment offload settings.
	Offload OffloadConfig `json:"offload,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ControlConfig contains control listener settings.
type ControlConfig struct {
	// Host is the host the control listener binds to.
	Host string `json:"host,omitempty"`

	// Port is the port the control listener binds to.
	Port int `json:"port,omitempty"`

	// MaxSessions caps concurrent control sessions.
	MaxSessions int `json:"maxSessions,omitempty"`

	// SessionTimeout is how long a session survives without activity
	// (a duration string such as "10s").
	SessionTimeout string `json:"sessionTimeout,omitempty"`

	// IdleStrategy is the conductor idle strategy: "backoff", "yielding",
	// "sleeping", or "busyspin".
	IdleStrategy string `json:"idleStrategy,omitempty"`
}

// AdminConfig contains admin HTTP listener settings.
type AdminConfig struct {
	// Host is the host the admin listener binds to.
	Host string `json:"host,omitempty"`

	// Port is the port the admin listener binds to.
	Port int `json:"port,omitempty"`
}

// AuthConfig contains control session authentication settings.
type AuthConfig struct {
	// Secret is the shared secret clients must present. Empty disables
	// authentication.
	Secret string `json:"secret,omitempty"`

	// SecretFile is a path to a file holding the shared secret. Mutually
	// exclusive with Secret.
	SecretFile string `json:"secretFile,omitempty"`
}

// OffloadConfig contains segment offload settings.
type OffloadConfig struct {
	// Dir is the directory detached segments are offloaded to. Empty
	// disables offload.
	Dir string `json:"dir,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	Level string `json:"level,omitempty"`

	// Format is the log output format: "text" or "json".
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: "scribe",
		Control: ControlConfig{
			Host:           DefaultControlHost,
			Port:           DefaultControlPort,
			MaxSessions:    DefaultMaxSessions,
			SessionTimeout: DefaultSessionTimeout,
			IdleStrategy:   DefaultIdleStrategy,
		},
		Admin: AdminConfig{
			Host: DefaultAdminHost,
			Port: DefaultAdminPort,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for scribe.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No scribe.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'scribed check-config --write-default' to create one")
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		se := errors.New("E101").
			WithSuggestion("Check that scribe.json is valid JSON")

		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case stderrors.As(err, &syntaxErr):
			// Offset points one past the offending byte.
			se = se.WithDetail(err.Error()).
				WithJSONOffset(path, data, max(syntaxErr.Offset-1, 0))
		case stderrors.As(err, &typeErr):
			se = se.WithDetail(err.Error()).
				WithJSONOffset(path, data, max(typeErr.Offset-1, 0))
		default:
			se = se.WithDetail("Failed to parse scribe.json: " + err.Error())
		}
		return nil, se.Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E103").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E103").Wrap(err)
	}

	c.configPath = path
	return nil
}

// WriteDefault writes a default scribe.json to dir. It refuses to overwrite
// an existing file and returns the written path.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return "", errors.New("E140").
			WithDetail("A scribe.json already exists at " + path).
			WithSuggestion("Remove it first if you want a fresh default configuration")
	}
	cfg := New()
	if err := cfg.SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "scribe"
	}

	if c.Control.Host == "" {
		c.Control.Host = DefaultControlHost
	}
	if c.Control.Port == 0 {
		c.Control.Port = DefaultControlPort
	}
	if c.Control.MaxSessions == 0 {
		c.Control.MaxSessions = DefaultMaxSessions
	}
	if c.Control.SessionTimeout == "" {
		c.Control.SessionTimeout = DefaultSessionTimeout
	}
	if c.Control.IdleStrategy == "" {
		c.Control.IdleStrategy = DefaultIdleStrategy
	}

	if c.Admin.Host == "" {
		c.Admin.Host = DefaultAdminHost
	}
	if c.Admin.Port == 0 {
		c.Admin.Port = DefaultAdminPort
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Control.Port < 1 || c.Control.Port > 65535 {
		return errors.New("E102").
			WithDetail("control.port must be between 1 and 65535, got " + strconv.Itoa(c.Control.Port))
	}
	if c.Admin.Port < 1 || c.Admin.Port > 65535 {
		return errors.New("E102").
			WithDetail("admin.port must be between 1 and 65535, got " + strconv.Itoa(c.Admin.Port))
	}
	if c.Control.MaxSessions < 1 {
		return errors.New("E102").
			WithDetail("control.maxSessions must be at least 1, got " + strconv.Itoa(c.Control.MaxSessions))
	}
	if d, err := time.ParseDuration(c.Control.SessionTimeout); err != nil || d <= 0 {
		return errors.New("E102").
			WithDetail("control.sessionTimeout must be a positive duration, got " + strconv.Quote(c.Control.SessionTimeout)).
			WithExample(`"sessionTimeout": "10s"`)
	}
	switch c.Control.IdleStrategy {
	case "backoff", "yielding", "sleeping", "busyspin":
	default:
		return errors.New("E102").
			WithDetail("control.idleStrategy must be one of backoff, yielding, sleeping, busyspin, got " + strconv.Quote(c.Control.IdleStrategy))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E102").
			WithDetail("log.level must be one of debug, info, warn, error, got " + strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E102").
			WithDetail("log.format must be text or json, got " + strconv.Quote(c.Log.Format))
	}
	if c.Auth.Secret != "" && c.Auth.SecretFile != "" {
		return errors.New("E102").
			WithDetail("auth.secret and auth.secretFile are mutually exclusive")
	}
	return nil
}

// ControlAddress returns the host:port the control listener binds to.
func (c *Config) ControlAddress() string {
	return net.JoinHostPort(c.Control.Host, strconv.Itoa(c.Control.Port))
}

// AdminAddress returns the host:port the admin listener binds to.
func (c *Config) AdminAddress() string {
	return net.JoinHostPort(c.Admin.Host, strconv.Itoa(c.Admin.Port))
}

// SessionTimeout returns the control session timeout as a duration.
// Invalid values fall back to the default.
func (c *Config) SessionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Control.SessionTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultSessionTimeout)
	}
	return d
}

// OffloadEnabled reports whether segment offload is configured.
func (c *Config) OffloadEnabled() bool {
	return c.Offload.Dir != ""
}

// OffloadPath returns the absolute path to the offload directory.
func (c *Config) OffloadPath() string {
	if c.Offload.Dir == "" || filepath.IsAbs(c.Offload.Dir) {
		return c.Offload.Dir
	}
	return filepath.Join(c.Dir(), c.Offload.Dir)
}

// SecretBytes returns the configured auth secret, loading it from
// auth.secretFile when set. A nil return means authentication is disabled.
func (c *Config) SecretBytes() ([]byte, error) {
	if c.Auth.SecretFile != "" {
		path := c.Auth.SecretFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.Dir(), path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.New("E123").
				WithDetail("Could not read auth.secretFile " + path).
				Wrap(err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return nil, errors.New("E123").
				WithDetail("auth.secretFile " + path + " is empty")
		}
		return []byte(secret), nil
	}
	if c.Auth.Secret != "" {
		return []byte(c.Auth.Secret), nil
	}
	return nil, nil
}

// LogLevel returns the configured log level as a slog.Level.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindConfigDir walks up directories to find the one holding scribe.json.
// Returns an error if no config file is found.
func FindConfigDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No scribe.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'scribed check-config --write-default' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindConfigDir(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
