package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotLoggedIn is returned by LoadToken when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in; run `focusnest login`")

func (c Config) tokenPath() string {
	return filepath.Join(c.Dir, "token")
}

func (c Config) secretPath() string {
	return filepath.Join(c.Dir, "jwt_secret")
}

// SaveToken stores the bearer token from the last login.
func (c Config) SaveToken(token string) error {
	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(c.tokenPath(), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (c Config) LoadToken() (string, error) {
	data, err := os.ReadFile(c.tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// ClearToken removes the stored token. Clearing when logged out is fine.
func (c Config) ClearToken() error {
	err := os.Remove(c.tokenPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Secret returns the configured signing secret. Without one, a random
// secret is generated once and kept next to the config file so local
// tokens survive restarts.
func (c Config) Secret() (string, error) {
	if c.JWTSecret != "" {
		return c.JWTSecret, nil
	}
	if data, err := os.ReadFile(c.secretPath()); err == nil {
		if s := strings.TrimSpace(string(data)); s != "" {
			return s, nil
		}
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	secret := hex.EncodeToString(buf)
	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(c.secretPath(), []byte(secret+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write secret: %w", err)
	}
	return secret, nil
}
