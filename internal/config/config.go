// Package config loads the bot configuration from YAML with environment
// variable expansion for secrets.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Config is the root configuration.
type Config struct {
	App      AppConfig      `yaml:"app,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
	Storage  StorageConfig  `yaml:"storage,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	DevTools DevToolsConfig `yaml:"devtools,omitempty"`
}

// AppConfig identifies the bot and its platform credentials.
type AppConfig struct {
	ID              string `yaml:"id,omitempty"`
	ClientID        string `yaml:"clientId,omitempty"`
	ClientSecret    string `yaml:"clientSecret,omitempty"` // supports ${ENV_VAR}
	ConnectionName  string `yaml:"connectionName,omitempty"`
	AuthTokenURL    string `yaml:"authTokenUrl,omitempty"`
	TokenServiceURL string `yaml:"tokenServiceUrl,omitempty"`
}

// ServerConfig controls the activity HTTP endpoint.
type ServerConfig struct {
	Port int    `yaml:"port,omitempty"`
	Bind string `yaml:"bind,omitempty"` // "loopback" | "lan"
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Driver string `yaml:"driver,omitempty"` // "memory" | "sqlite"
	Path   string `yaml:"path,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
}

// DevToolsConfig controls the local activity inspector.
type DevToolsConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
	Port    int  `yaml:"port,omitempty"`
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 3978,
			Bind: "loopback",
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		DevTools: DevToolsConfig{
			Port: 3979,
		},
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "", "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			return &ConfigError{Message: "storage.path is required for the sqlite driver"}
		}
	default:
		return &ConfigError{Message: "unknown storage.driver: " + c.Storage.Driver}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Message: fmt.Sprintf("invalid server.port: %d", c.Server.Port)}
	}
	if c.App.ClientID != "" && c.App.ClientSecret == "" {
		return &ConfigError{Message: "app.clientSecret is required when app.clientId is set"}
	}
	return nil
}
