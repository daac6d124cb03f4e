package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/mod-mender/internal/api/modrinth"
	"github.com/oshokin/mod-mender/internal/logger"
	"github.com/oshokin/mod-mender/internal/version"
)

// Config holds the tunables shared by the mod-mender commands.
type Config struct {
	// ModrinthAPIURL is the base URL of the Modrinth v2 API.
	ModrinthAPIURL string `yaml:"modrinth_api_url"`
	// Timeout bounds every single HTTP request, catalog lookups and downloads alike.
	Timeout time.Duration `yaml:"timeout"`
	// UserAgent is sent with every request; Modrinth asks clients to identify themselves.
	UserAgent string `yaml:"user_agent"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for the settings file.
	DefaultConfigFilename = "mod-mender-settings.yaml"

	// DefaultTimeout is the default duration for a single network request.
	DefaultTimeout = 10 * time.Second

	// DefaultLogLevel is used when the settings file does not name one.
	DefaultLogLevel = "info"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownLogLevel is returned for a log level ParseLogLevel rejects.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns a validated configuration with every field at its default.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// DefaultUserAgent identifies this build to the catalog.
func DefaultUserAgent() string {
	return "oshokin/mod-mender/" + version.Short()
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads the settings file at path. An empty path means
// DefaultConfigFilename, which is optional: if it is missing, Default is
// returned. An explicitly named file must exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	cfg, err := Load(DefaultConfigFilename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Validate fills in defaults and checks the format of the provided settings.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ModrinthAPIURL == "" {
		settings.ModrinthAPIURL = modrinth.DefaultBaseURL
	}

	if _, err := url.ParseRequestURI(settings.ModrinthAPIURL); err != nil {
		return fmt.Errorf("invalid modrinth api url: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.UserAgent == "" {
		settings.UserAgent = DefaultUserAgent()
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %s", errUnknownLogLevel, settings.LogLevel)
	}

	return nil
}
