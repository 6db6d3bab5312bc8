package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
	"github.com/desertthunder/mixradio/internal/auth"
)

const (
	keyringServiceName = "mixradio"
	keyringTokenPrefix = "token:"
	envKeyringPassword = "MIXRADIO_KEYRING_PASSWORD"
)

// openKeyring can be replaced in tests.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

// KeyringTokenStore implements [auth.TokenStore] on the OS keychain.
type KeyringTokenStore struct {
	ring keyring.Keyring
	key  string
}

var _ auth.TokenStore = (*KeyringTokenStore)(nil)

// OpenKeyringTokenStore opens the platform keyring. Headless Linux falls back to an encrypted
// file under the user config dir, unlocked with MIXRADIO_KEYRING_PASSWORD.
func OpenKeyringTokenStore(profile string) (*KeyringTokenStore, error) {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return NewKeyringTokenStore(ring, profile), nil
}

// NewKeyringTokenStore wraps an open keyring.
func NewKeyringTokenStore(ring keyring.Keyring, profile string) *KeyringTokenStore {
	if profile == "" {
		profile = DefaultProfile
	}
	return &KeyringTokenStore{ring: ring, key: keyringTokenPrefix + profile}
}

// Load returns the stored token, or (nil, nil) when there is none.
func (s *KeyringTokenStore) Load(context.Context) (*auth.TokenState, error) {
	item, err := s.ring.Get(s.key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	var tok auth.TokenState
	if err := json.Unmarshal(item.Data, &tok); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &tok, nil
}

// Save stores the token as JSON.
func (s *KeyringTokenStore) Save(_ context.Context, tok *auth.TokenState) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := s.ring.Set(keyring.Item{Key: s.key, Data: data, Label: "MixRadio user token"}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear removes the token. Clearing an empty store is not an error.
func (s *KeyringTokenStore) Clear(context.Context) error {
	if err := s.ring.Remove(s.key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

func keyringConfig() keyring.Config {
	cfg := keyring.Config{
		ServiceName:      keyringServiceName,
		FileDir:          keyringFileDir(),
		FilePasswordFunc: keyringFilePassword,
	}
	if runtime.GOOS == "linux" && strings.TrimSpace(os.Getenv("DBUS_SESSION_BUS_ADDRESS")) == "" {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func keyringFileDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, keyringServiceName, "keyring")
	}
	return filepath.Join(os.TempDir(), keyringServiceName, "keyring")
}

func keyringFilePassword(prompt string) (string, error) {
	if password := os.Getenv(envKeyringPassword); password != "" {
		return password, nil
	}
	return keyring.TerminalPrompt(prompt)
}
