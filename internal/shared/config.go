package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override the file.
const (
	EnvClientID     = "MIXRADIO_CLIENT_ID"
	EnvClientSecret = "MIXRADIO_CLIENT_SECRET"
	EnvCountryCode  = "MIXRADIO_COUNTRY_CODE"
)

// Token store kinds.
const (
	TokenStoreSQLite  = "sqlite"
	TokenStoreKeyring = "keyring"
	TokenStoreNone    = "none"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Client   ClientConfig   `toml:"client"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Token    TokenConfig    `toml:"token"`
	Log      LogConfig      `toml:"log"`
}

// ClientConfig contains the catalog client settings.
type ClientConfig struct {
	ClientID         string   `toml:"client_id"`
	ClientSecret     string   `toml:"client_secret"`
	CountryCode      string   `toml:"country_code"`
	Language         string   `toml:"language"`
	APIBaseURL       string   `toml:"api_base_url"`
	SecureAPIBaseURL string   `toml:"secure_api_base_url"`
	RedirectURI      string   `toml:"redirect_uri"`
	Scopes           []string `toml:"scopes"`
	TimeoutSeconds   int      `toml:"timeout_seconds"`
	IdentityHeader   string   `toml:"identity_header"`
}

// Timeout returns the request timeout, zero meaning the dispatcher default.
func (c ClientConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TokenConfig selects where the user token is persisted.
type TokenConfig struct {
	Store   string `toml:"store"`
	Profile string `toml:"profile"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks the values that cannot be fixed up later.
func (c *Config) Validate() error {
	switch c.Token.Store {
	case TokenStoreSQLite, TokenStoreKeyring, TokenStoreNone:
	case "":
		c.Token.Store = TokenStoreNone
	default:
		return fmt.Errorf("%w: unknown token store %q", ErrInvalidConfig, c.Token.Store)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}

// ApplyEnv loads envFiles (missing ones are ignored) and then overrides credentials from the environment.
func (c *Config) ApplyEnv(envFiles ...string) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvClientID)); v != "" {
		c.Client.ClientID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvClientSecret)); v != "" {
		c.Client.ClientSecret = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCountryCode)); v != "" {
		c.Client.CountryCode = v
	}
}

// HasCredentials reports whether a real client id is configured.
func (c *Config) HasCredentials() bool {
	id := strings.TrimSpace(c.Client.ClientID)
	return id != "" && id != "your_client_id"
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
