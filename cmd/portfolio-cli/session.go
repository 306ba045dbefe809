package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sakif/portfolio/internal/threadclient"
)

// tokenPath returns the file the session token is stored in, typically
// ~/.config/portfolio/token.
func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "portfolio", "token"), nil
}

// saveToken persists the session token with owner-only permissions.
func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// loadToken reads the stored session token; empty when not signed in.
func loadToken() string {
	path, err := tokenPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// newClient builds an API client carrying any stored session token.
func newClient() *threadclient.Client {
	client := threadclient.New(strings.TrimRight(serverURL, "/"))
	if token := loadToken(); token != "" {
		client.SetToken(token)
	}
	return client
}
