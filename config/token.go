package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	settingsDirName  = "eira"
	settingsFileName = "settings.json"

	// TokenKey is the settings key the API token is stored under.
	TokenKey = "eira_api_token"
	// PlaceholderToken is sent when no token has been configured anywhere.
	PlaceholderToken = "changeme"
)

// TokenStore persists the API token as a small key/value JSON document.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// DefaultTokenStore returns a store rooted at the user config directory.
func DefaultTokenStore() (*TokenStore, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewTokenStore(filepath.Join(base, settingsDirName, settingsFileName)), nil
}

func (s *TokenStore) Path() string {
	return s.path
}

// Get returns the stored token, or "" when nothing is stored.
func (s *TokenStore) Get() (string, error) {
	settings, err := s.load()
	if err != nil {
		return "", err
	}
	return settings[TokenKey], nil
}

func (s *TokenStore) Set(token string) error {
	settings, err := s.load()
	if err != nil {
		return err
	}
	settings[TokenKey] = token
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *TokenStore) load() (map[string]string, error) {
	settings := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, err
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return map[string]string{}, err
	}
	return settings, nil
}

// ResolveToken picks the first non-empty token from the flag, the environment
// (already folded into cfg.APIToken) and the store, else the placeholder.
func ResolveToken(flagValue string, cfg *Config, store *TokenStore) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.APIToken != "" {
		return cfg.APIToken
	}
	if store != nil {
		if token, err := store.Get(); err == nil && token != "" {
			return token
		}
	}
	return PlaceholderToken
}
