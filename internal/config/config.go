package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reactor.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 7070

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultTemplate is the markup document served by the preview host.
	DefaultTemplate = "page.json"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "reactor"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "reactor"
)

// Config represents the complete reactor.json configuration.
type Config struct {
	// Log configures the slog logger handed to the runtime and host.
	Log LogConfig `json:"log"`

	// Metrics configures the Prometheus collectors.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing configures the OpenTelemetry tracer used for trigger spans.
	Tracing TracingConfig `json:"tracing"`

	// Runtime configures the reactive runtime.
	Runtime RuntimeConfig `json:"runtime"`

	// Render configures the markup renderer.
	Render RenderConfig `json:"render"`

	// Serve configures the preview host.
	Serve ServeConfig `json:"serve"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	// Enabled registers the runtime collectors and exposes /metrics.
	Enabled bool `json:"enabled"`

	// Namespace is the Prometheus namespace.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains tracing settings.
type TracingConfig struct {
	// Enabled opens a span for every dispatched trigger and preview request,
	// using the global OpenTelemetry provider. Spans are only exported when
	// the embedding program registers a provider with an exporter.
	Enabled bool `json:"enabled"`

	// TracerName is passed to otel.Tracer.
	TracerName string `json:"tracerName,omitempty"`
}

// RuntimeConfig contains reactive runtime settings.
type RuntimeConfig struct {
	// GoroutineCheck makes the runtime panic when used off its goroutine.
	GoroutineCheck bool `json:"goroutineCheck"`
}

// RenderConfig contains renderer settings.
type RenderConfig struct {
	// XHTML self-closes void elements.
	XHTML bool `json:"xhtml"`
}

// ServeConfig contains preview host settings.
type ServeConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Template is the markup document to render.
	Template string `json:"template,omitempty"`

	// State is an optional JSON object with the initial store contents.
	State string `json:"state,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Runtime: RuntimeConfig{
			GoroutineCheck: true,
		},
		Serve: ServeConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			Template: DefaultTemplate,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for reactor.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadOrDefault is Load, falling back to defaults rooted at dir when the
// directory has no reactor.json.
func LoadOrDefault(dir string) (*Config, error) {
	if !Exists(dir) {
		cfg := New()
		cfg.configPath = filepath.Join(dir, ConfigFileName)
		return cfg, nil
	}
	return Load(dir)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New("C002").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("C002").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
		if syntax, ok := err.(*json.SyntaxError); ok {
			e = e.WithOffset(path, data, syntax.Offset)
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C002").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C002").Wrap(err)
	}

	c.configPath = path
	return nil
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
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.Template == "" {
		c.Serve.Template = DefaultTemplate
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("C003").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Serve.Port))
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("C004").
			WithDetail("Unknown log level " + strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("C005").
			WithDetail("Unknown log format " + strconv.Quote(c.Log.Format))
	}
	return nil
}

// Address returns the listen address for the preview host.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Serve.Host, strconv.Itoa(c.Serve.Port))
}

// URL returns the preview host URL.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// TemplatePath returns the absolute path to the served markup document.
func (c *Config) TemplatePath() string {
	return c.resolve(c.Serve.Template)
}

// StatePath returns the absolute path to the initial state file, or ""
// when none is configured.
func (c *Config) StatePath() string {
	if c.Serve.State == "" {
		return ""
	}
	return c.resolve(c.Serve.State)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// LogLevel returns the configured slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

// NewLogger builds a logger writing to w with the configured level and
// format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Exists checks if a reactor.json exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindConfigDir walks up directories to find one containing reactor.json.
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
			return "", errors.New("C001").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
