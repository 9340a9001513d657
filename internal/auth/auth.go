// Package auth stores the API token and answers whether a user session is active.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnvToken overrides the credentials file when set.
const EnvToken = "FAVS_TOKEN"

// Credential sources.
const (
	SourceEnv  = "env"
	SourceFile = "file"
)

// Credentials is the persisted session token.
type Credentials struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"` // nil = no expiry
}

// Expired reports whether the credentials are past their expiry at now.
func (c *Credentials) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// DefaultPath returns the default credentials path: ~/.config/favs/credentials.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".config", "favs", "credentials.json"), nil
}

// Load returns the FAVS_TOKEN override if set, else the credentials stored at path.
// Returns nil, nil when no credentials exist.
func Load(path string) (*Credentials, error) {
	if env := strings.TrimSpace(os.Getenv(EnvToken)); env != "" {
		return &Credentials{Token: stripBearer(env), Source: SourceEnv}, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(b, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	creds.Token = stripBearer(creds.Token)
	creds.Source = SourceFile
	return &creds, nil
}

// Save writes token to path with owner-only permissions.
func Save(path, token string, expires *time.Time) (*Credentials, error) {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	creds := &Credentials{
		Token:     token,
		Source:    SourceFile,
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	b, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return creds, nil
}

// Clear removes the credentials file. A missing file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
