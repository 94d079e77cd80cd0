package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/codev-cli/codev/internal/approval"
	"github.com/codev-cli/codev/internal/logging"
)

// DefaultModel is used when neither the config file nor the environment
// names one.
const DefaultModel = "gpt-4o"

// Environment variables that override file settings.
const (
	EnvHome     = "CODEV_HOME"
	EnvModel    = "CODEV_MODEL"
	EnvApproval = "CODEV_APPROVAL"
	EnvLogLevel = "CODEV_LOG_LEVEL"
)

// Config holds the user settings shared by every codev command.
type Config struct {
	Model          string            `yaml:"model"`
	Instructions   string            `yaml:"instructions"`
	Debug          bool              `yaml:"debug"`
	ApprovalPolicy approval.Policy   `yaml:"approval"`
	WorkingDir     string            `yaml:"workdir"`
	LogLevel       string            `yaml:"log_level"`
	Theme          map[string]string `yaml:"theme"`
}

// DefaultTheme maps message roles to terminal color names.
func DefaultTheme() map[string]string {
	return map[string]string{
		"user":      "blue",
		"assistant": "green",
		"system":    "yellow",
		"error":     "red",
		"loading":   "cyan",
	}
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// Path is an explicit config file. When empty, config.yaml under Home()
	// is used if it exists.
	Path string
	// EnvFiles are loaded with godotenv before the environment is read.
	// Missing files are ignored.
	EnvFiles []string
	// Getenv defaults to os.Getenv and can be swapped in tests.
	Getenv func(string) string
}

// Home returns the codev settings directory: $CODEV_HOME or ~/.codev.
func Home(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if dir := strings.TrimSpace(getenv(EnvHome)); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codev"
	}
	return filepath.Join(home, ".codev")
}

// Load builds a Config from the config file, .env files and environment, in
// increasing order of precedence.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := &Config{}
	path := strings.TrimSpace(opts.Path)
	explicit := path != ""
	if !explicit {
		path = filepath.Join(Home(getenv), "config.yaml")
	}
	if err := cfg.readFile(path, explicit); err != nil {
		return nil, err
	}

	cfg.applyEnv(getenv)
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			// A missing .env file is fine; a malformed one is not.
			var pathErr *os.PathError
			if errors.As(err, &pathErr) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load config: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvModel)); v != "" {
		c.Model = v
	}
	if v := strings.TrimSpace(getenv(EnvApproval)); v != "" {
		c.ApprovalPolicy = approval.Policy(v)
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

// setDefaults fills every unset field. Theme entries missing from the file
// fall back to DefaultTheme individually.
func (c *Config) setDefaults() {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if c.ApprovalPolicy == "" {
		c.ApprovalPolicy = approval.Suggest
	}
	if c.LogLevel == "" {
		c.LogLevel = string(logging.LogLevelWarn)
		if c.Debug {
			c.LogLevel = string(logging.LogLevelDebug)
		}
	}
	theme := DefaultTheme()
	for role, color := range c.Theme {
		theme[role] = color
	}
	c.Theme = theme
}

func (c *Config) validate() error {
	policy, err := approval.ParsePolicy(string(c.ApprovalPolicy))
	if err != nil {
		return err
	}
	c.ApprovalPolicy = policy
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level. Load has already validated it.
func (c *Config) Level() logging.LogLevel {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return logging.LogLevelWarn
	}
	return level
}
