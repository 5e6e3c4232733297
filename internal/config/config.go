// Package config loads uikb configuration from defaults, an optional
// .uikb/config.json, a .env file and the process environment.
package config

import (
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// CurrentVersion is the only supported config schema version.
const CurrentVersion = 1

// Config represents the complete uikb configuration
type Config struct {
	Version       int    `json:"version" mapstructure:"version"`
	ProjectRoot   string `json:"projectRoot,omitempty" mapstructure:"projectRoot"`
	ComponentsDir string `json:"componentsDir" mapstructure:"componentsDir"`

	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScanConfig controls component discovery and parsing
type ScanConfig struct {
	Extensions   []string `json:"extensions" mapstructure:"extensions"`
	IgnoreDirs   []string `json:"ignoreDirs" mapstructure:"ignoreDirs"`
	ParseWorkers int      `json:"parseWorkers" mapstructure:"parseWorkers"` // 0 means one per CPU
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host                   string   `json:"host" mapstructure:"host"`
	Port                   int      `json:"port" mapstructure:"port"`
	Endpoint               string   `json:"endpoint" mapstructure:"endpoint"`
	AllowedHosts           []string `json:"allowedHosts" mapstructure:"allowedHosts"` // in addition to loopback and Host
	HeartbeatSeconds       int      `json:"heartbeatSeconds" mapstructure:"heartbeatSeconds"`
	ReadTimeoutSeconds     int      `json:"readTimeoutSeconds" mapstructure:"readTimeoutSeconds"`
	ShutdownTimeoutSeconds int      `json:"shutdownTimeoutSeconds" mapstructure:"shutdownTimeoutSeconds"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:       CurrentVersion,
		ProjectRoot:   ".",
		ComponentsDir: "src/components",
		Scan: ScanConfig{
			Extensions:   []string{".ts", ".tsx"},
			IgnoreDirs:   []string{"node_modules", ".git", "dist", "build"},
			ParseWorkers: 0,
		},
		Server: ServerConfig{
			Host:                   "127.0.0.1",
			Port:                   3000,
			Endpoint:               "/mcp",
			AllowedHosts:           []string{},
			HeartbeatSeconds:       15,
			ReadTimeoutSeconds:     30,
			ShutdownTimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig resolves configuration for projectRoot. Precedence, highest
// first: environment (UIKB_* and bare HOST/PORT), .env in projectRoot,
// .uikb/config.json, defaults.
func LoadConfig(projectRoot string) (*Config, error) {
	// Variables already present in the environment win over .env.
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, &ConfigError{Field: ".env", Message: err.Error()}
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetDefault("projectRoot", projectRoot)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".uikb"))

	v.SetEnvPrefix("UIKB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.host", "UIKB_SERVER_HOST", "HOST")
	_ = v.BindEnv("server.port", "UIKB_SERVER_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("projectRoot", d.ProjectRoot)
	v.SetDefault("componentsDir", d.ComponentsDir)
	v.SetDefault("scan.extensions", d.Scan.Extensions)
	v.SetDefault("scan.ignoreDirs", d.Scan.IgnoreDirs)
	v.SetDefault("scan.parseWorkers", d.Scan.ParseWorkers)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.endpoint", d.Server.Endpoint)
	v.SetDefault("server.allowedHosts", d.Server.AllowedHosts)
	v.SetDefault("server.heartbeatSeconds", d.Server.HeartbeatSeconds)
	v.SetDefault("server.readTimeoutSeconds", d.Server.ReadTimeoutSeconds)
	v.SetDefault("server.shutdownTimeoutSeconds", d.Server.ShutdownTimeoutSeconds)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Save writes the configuration to .uikb/config.json
func (c *Config) Save(projectRoot string) error {
	dir := filepath.Join(projectRoot, ".uikb")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// The project root is implied by where the file lives.
	saved := *c
	saved.ProjectRoot = ""
	data, err := json.MarshalIndent(&saved, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version " + strconv.Itoa(c.Version)}
	}
	if c.ComponentsDir == "" {
		return &ConfigError{Field: "componentsDir", Message: "must not be empty"}
	}
	if len(c.Scan.Extensions) == 0 {
		return &ConfigError{Field: "scan.extensions", Message: "at least one extension is required"}
	}
	if c.Scan.ParseWorkers < 0 {
		return &ConfigError{Field: "scan.parseWorkers", Message: "must not be negative"}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if !strings.HasPrefix(c.Server.Endpoint, "/") {
		return &ConfigError{Field: "server.endpoint", Message: "must start with /"}
	}
	return nil
}

// ComponentsPath returns the directory scanned for components.
func (c *Config) ComponentsPath() string {
	if filepath.IsAbs(c.ComponentsDir) {
		return c.ComponentsDir
	}
	return filepath.Join(c.ProjectRoot, c.ComponentsDir)
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// AllowedHosts returns the Host header values accepted for session
// initialisation: loopback names and the configured host, each with and
// without the port, followed by any extra configured hosts.
func (c *Config) AllowedHosts() []string {
	port := strconv.Itoa(c.Server.Port)
	names := []string{"localhost", "127.0.0.1", "[::1]"}
	host := c.Server.Host
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	if host != "" {
		names = append(names, host)
	}

	seen := make(map[string]bool)
	var out []string
	add := func(h string) {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	for _, n := range names {
		add(n)
		add(n + ":" + port)
	}
	for _, h := range c.Server.AllowedHosts {
		add(h)
	}
	return out
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
