package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./mixradio.db" {
			t.Errorf("expected database path ./mixradio.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.Client.APIBaseURL != "http://api.mixrad.io/" {
			t.Errorf("unexpected api base url %s", config.Client.APIBaseURL)
		}
		if config.Token.Store != TokenStoreSQLite {
			t.Errorf("expected sqlite token store, got %s", config.Token.Store)
		}
		if config.Client.Timeout() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", config.Client.Timeout())
		}
		if config.HasCredentials() {
			t.Error("expected placeholder client id to not count as credentials")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[client]
client_id = "abc123"
country_code = "us"
scopes = ["read_userhistory"]
timeout_seconds = 5

[server]
port = 8080

[token]
store = "keyring"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Client.ClientID != "abc123" || config.Client.CountryCode != "us" {
			t.Errorf("unexpected client config %+v", config.Client)
		}
		if len(config.Client.Scopes) != 1 || config.Client.Timeout() != 5*time.Second {
			t.Errorf("unexpected scopes or timeout %+v", config.Client)
		}
		if config.Server.Port != 8080 || config.Server.Host != "127.0.0.1" {
			t.Errorf("expected port override and default host, got %s", config.Server.Addr())
		}
		if config.Token.Store != TokenStoreKeyring {
			t.Errorf("expected keyring, got %s", config.Token.Store)
		}
		if config.Client.APIBaseURL != "http://api.mixrad.io/" {
			t.Errorf("expected default base url to be kept, got %s", config.Client.APIBaseURL)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		os.WriteFile(configPath, []byte("[client\n"), 0644)
		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("unknown token store", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		os.WriteFile(configPath, []byte("[token]\nstore = \"s3\"\n"), 0644)
		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv(EnvClientID, "env-id")
		t.Setenv(EnvClientSecret, "env-secret")
		t.Setenv(EnvCountryCode, "fi")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Client.ClientID != "env-id" || config.Client.ClientSecret != "env-secret" || config.Client.CountryCode != "fi" {
			t.Errorf("unexpected client config %+v", config.Client)
		}
		if !config.HasCredentials() {
			t.Error("expected credentials")
		}
	})

	t.Run("dotenv file", func(t *testing.T) {
		t.Setenv(EnvClientID, "")
		envPath := filepath.Join(t.TempDir(), ".env")
		os.WriteFile(envPath, []byte(EnvClientID+"=dotenv-id\n"), 0600)

		// godotenv does not override variables that are already set
		os.Unsetenv(EnvClientID)

		config := DefaultConfig()
		config.ApplyEnv(envPath, filepath.Join(t.TempDir(), "missing.env"))

		if config.Client.ClientID != "dotenv-id" {
			t.Errorf("expected id from .env, got %s", config.Client.ClientID)
		}
	})
}
