package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultPort    = 6667
	DefaultNick    = "geobot"
	DefaultGeoDB   = "/usr/local/share/GeoIP/GeoLite2-City.mmdb"
	DefaultBufSize = 100
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Geo      GeoConfig      `json:"geo"`
	Database DatabaseConfig `json:"database"`
}

type ServerConfig struct {
	Address  string      `json:"address"`
	Port     int         `json:"port"`
	Nick     string      `json:"nick"`
	Username string      `json:"username,omitempty"`
	Realname string      `json:"realname,omitempty"`
	TLS      bool        `json:"tls,omitempty"`
	Channels []string    `json:"channels"`
	Auth     *AuthConfig `json:"auth,omitempty"`
}

// AuthConfig identifies the bot to a services handler (e.g. NickServ)
// after connecting.
type AuthConfig struct {
	Handler  string `json:"handler"`
	Password string `json:"password"`
}

type GeoConfig struct {
	DBPath string `json:"dbPath"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: DefaultPort,
			Nick: DefaultNick,
		},
		Geo: GeoConfig{
			DBPath: DefaultGeoDB,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(ConfigDir(), "data", "sightings.db"),
		},
	}
}

func ConfigDir() string {
	if dir := os.Getenv("GEOBOT_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".geobot")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load reads the config at path (ConfigPath() when empty), layered over
// defaults, then applies environment overrides. A missing file is not an
// error; a malformed or invalid one is.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if pw := os.Getenv("GEOBOT_AUTH_PASSWORD"); pw != "" && cfg.Server.Auth != nil {
		cfg.Server.Auth.Password = pw
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.Username == "" {
		cfg.Server.Username = cfg.Server.Nick
	}
	if cfg.Server.Realname == "" {
		cfg.Server.Realname = cfg.Server.Nick
	}
	if cfg.Geo.DBPath == "" {
		cfg.Geo.DBPath = DefaultGeoDB
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = DefaultConfig().Database.Path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("config: server.address is required")
	}
	if c.Server.Nick == "" {
		return fmt.Errorf("config: server.nick is required")
	}
	if c.Server.Auth != nil && c.Server.Auth.Handler == "" {
		return fmt.Errorf("config: server.auth.handler is required when auth is set")
	}
	return nil
}

func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
