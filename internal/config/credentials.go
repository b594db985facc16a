package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Environment variables that override stored credentials.
const (
	EnvClientID     = "SPOTIFY_ID"
	EnvClientSecret = "SPOTIFY_SECRET"
	EnvGatewayToken = "SPOTIFY_DL_GATEWAY_TOKEN"
	EnvGatewayURL   = "SPOTIFY_DL_GATEWAY_URL"
)

// Credentials authenticate against the provider and the PCM gateway.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GatewayToken string `json:"gateway_token,omitempty"`
}

// LoadCredentials reads credentials from path. A missing file yields
// empty credentials.
func LoadCredentials(path string) (*Credentials, error) {
	creds := &Credentials{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// Save writes credentials readable only by the owner.
func (c *Credentials) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overrides fields with non-empty environment variables.
func (c *Credentials) ApplyEnv() {
	if v := os.Getenv(EnvClientID); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.ClientSecret = v
	}
	if v := os.Getenv(EnvGatewayToken); v != "" {
		c.GatewayToken = v
	}
}

// Complete reports whether the provider credentials are present.
func (c *Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ApplyEnv overrides settings from the environment.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv(EnvGatewayURL); v != "" {
		s.GatewayURL = v
	}
}
