package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wayfare-dev/wayfare/internal/errors"
	"github.com/wayfare-dev/wayfare/pkg/dispatch"
	"github.com/wayfare-dev/wayfare/pkg/route"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "wayfare.json"

	// DefaultPort is the default server port.
	DefaultPort = 4000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"
)

// Config represents the complete wayfare.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Server contains server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Routes is the ordered route table. Order matters: matching is
	// first-match-wins, and the last entry must be a catch-all.
	Routes []RouteConfig `json:"routes,omitempty"`

	// Preload contains preload cache and rate limit configuration.
	Preload PreloadConfig `json:"preload,omitempty"`

	// History contains navigation history configuration.
	History HistoryConfig `json:"history,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Metrics enables the /metrics Prometheus endpoint.
	Metrics bool `json:"metrics,omitempty"`
}

// RouteConfig is one entry of the ordered route table.
type RouteConfig struct {
	// Name is the unique view identifier.
	Name string `json:"name"`

	// Pattern is the URL pattern ("/users/:id:int", "/*rest").
	Pattern string `json:"pattern"`
}

// PreloadConfig contains preload settings. Durations are strings
// ("30s", "1m30s").
type PreloadConfig struct {
	// TTL is how long a preloaded result stays valid.
	TTL string `json:"ttl,omitempty"`

	// MaxEntries is the maximum number of cached results.
	MaxEntries int `json:"maxEntries,omitempty"`

	// Timeout is the maximum time a preload effect may run.
	Timeout string `json:"timeout,omitempty"`

	// RateLimit is the maximum preload triggers per second.
	RateLimit float64 `json:"rateLimit,omitempty"`

	// Concurrency is the maximum simultaneous preload effects.
	Concurrency int `json:"concurrency,omitempty"`
}

// HistoryConfig contains navigation history settings.
type HistoryConfig struct {
	// Limit bounds the per-session history stack.
	Limit int `json:"limit,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Server: ServerConfig{
			Host:    DefaultHost,
			Port:    DefaultPort,
			Metrics: true,
		},
		Preload: PreloadConfig{
			TTL:         "30s",
			MaxEntries:  10,
			Timeout:     "5s",
			RateLimit:   5,
			Concurrency: 2,
		},
		History: HistoryConfig{
			Limit: 100,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for wayfare.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("W001").
				WithDetail("No wayfare.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'wayfare init' to create a new project or create wayfare.json manually")
		}
		return nil, errors.New("W002").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("W002").
			WithDetail("Failed to parse wayfare.json: " + err.Error()).
			WithSuggestion("Check that wayfare.json is valid JSON")
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
		return errors.New("W002").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("W002").Wrap(err)
	}

	c.configPath = path
	return nil
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
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Preload.TTL == "" {
		c.Preload.TTL = "30s"
	}
	if c.Preload.MaxEntries == 0 {
		c.Preload.MaxEntries = 10
	}
	if c.Preload.Timeout == "" {
		c.Preload.Timeout = "5s"
	}
	if c.Preload.RateLimit == 0 {
		c.Preload.RateLimit = 5
	}
	if c.Preload.Concurrency == 0 {
		c.Preload.Concurrency = 2
	}

	if c.History.Limit == 0 {
		c.History.Limit = 100
	}
}

// Validate checks if the configuration is valid. Route table problems are
// reported through BuildTable, not here.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("W003").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Server.Port))
	}
	if _, err := time.ParseDuration(c.Preload.TTL); err != nil {
		return errors.New("W003").
			WithDetail("preload.ttl is not a valid duration: " + c.Preload.TTL).
			WithSuggestion(`Use Go duration syntax, e.g. "30s" or "1m30s"`)
	}
	if _, err := time.ParseDuration(c.Preload.Timeout); err != nil {
		return errors.New("W003").
			WithDetail("preload.timeout is not a valid duration: " + c.Preload.Timeout).
			WithSuggestion(`Use Go duration syntax, e.g. "5s"`)
	}
	if c.Preload.RateLimit < 0 {
		return errors.New("W003").
			WithDetail("preload.rateLimit must not be negative")
	}
	if c.History.Limit < 1 {
		return errors.New("W003").
			WithDetail("history.limit must be at least 1")
	}
	return nil
}

// BuildTable compiles the configured routes into a validated route table.
// Pattern and ordering errors surface here, at startup.
func (c *Config) BuildTable() (*route.Table, error) {
	routes := make([]route.Route, 0, len(c.Routes))
	for _, rc := range c.Routes {
		r, err := route.New(rc.Name, rc.Pattern)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return route.NewTable(routes...)
}

// PreloadSettings converts the configured preload values into dispatcher
// settings. Call Validate first; unparsable durations fall back to the
// defaults here.
func (c *Config) PreloadSettings() *dispatch.PreloadConfig {
	cfg := dispatch.DefaultPreloadConfig()
	if d, err := time.ParseDuration(c.Preload.TTL); err == nil {
		cfg.TTL = d
	}
	if d, err := time.ParseDuration(c.Preload.Timeout); err == nil {
		cfg.Timeout = d
	}
	if c.Preload.MaxEntries > 0 {
		cfg.MaxEntries = c.Preload.MaxEntries
	}
	if c.Preload.RateLimit > 0 {
		cfg.RateLimit = c.Preload.RateLimit
	}
	if c.Preload.Concurrency > 0 {
		cfg.Concurrency = c.Preload.Concurrency
	}
	return cfg
}

// Address returns the host:port string for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the full URL for the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing wayfare.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
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
			return "", errors.New("W001").
				WithDetail("No wayfare.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'wayfare init' to create a new project")
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

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
