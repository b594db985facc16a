package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/goccy/go-json"

	"github.com/handiism/spotify-dl/internal/stream"
)

// DirName is the dot directory under the user's home.
const DirName = ".spotify-dl"

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	Destination string `json:"destination"`
	Parallel    int    `json:"parallel"`
	Format      string `json:"format"` // flac, mp3
	Force       bool   `json:"force"`
	Ordered     bool   `json:"ordered"`

	// ASCIIOnlyFilenames drops non-ASCII characters from file names.
	ASCIIOnlyFilenames bool `json:"ascii_only_filenames"`

	// Retry settings, as Go durations ("10s")
	RetryMaxAttempts int    `json:"retry_max_attempts"`
	RetryBase        string `json:"retry_base"`
	RetryMaxDelay    string `json:"retry_max_delay"`

	// CoverMaxSize bounds embedded covers in pixels; 0 keeps the original size.
	CoverMaxSize int `json:"cover_max_size"`

	// Playlist settings
	PlaylistFormat string `json:"playlist_format"` // m3u, pls, wpl, zpl

	// GatewayURL is the PCM gateway used for playback.
	GatewayURL string `json:"gateway_url"`

	// LogMaxBytes truncates the log file once it grows past this size.
	LogMaxBytes int64 `json:"log_max_bytes"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	policy := stream.DefaultRetryPolicy()
	return &Settings{
		Destination:        ".",
		Parallel:           5,
		Format:             "flac",
		ASCIIOnlyFilenames: runtime.GOOS == "windows",
		RetryMaxAttempts:   policy.MaxAttempts,
		RetryBase:          policy.Base.String(),
		RetryMaxDelay:      policy.MaxDelay.String(),
		CoverMaxSize:       1000,
		PlaylistFormat:     "m3u",
		GatewayURL:         "http://127.0.0.1:8765",
		LogMaxBytes:        5 << 20,
	}
}

// Dir returns the dot directory path.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// SettingsPath returns the default settings file.
func SettingsPath() string { return filepath.Join(Dir(), "config.json") }

// CredentialsPath returns the default credentials file.
func CredentialsPath() string { return filepath.Join(Dir(), "credentials.json") }

// LogPath returns the log file.
func LogPath() string { return filepath.Join(Dir(), "spotify-dl.log") }

// Load reads settings from a JSON file. A missing file yields defaults;
// fields absent from the file keep their default values.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// RetryPolicy parses the retry settings.
func (s *Settings) RetryPolicy() (stream.RetryPolicy, error) {
	base, err := time.ParseDuration(s.RetryBase)
	if err != nil {
		return stream.RetryPolicy{}, fmt.Errorf("retry_base: %w", err)
	}
	maxDelay, err := time.ParseDuration(s.RetryMaxDelay)
	if err != nil {
		return stream.RetryPolicy{}, fmt.Errorf("retry_max_delay: %w", err)
	}
	return stream.RetryPolicy{MaxAttempts: s.RetryMaxAttempts, Base: base, MaxDelay: maxDelay}, nil
}

// Validate reports every invalid field.
func (s *Settings) Validate() error {
	var errs []error
	if s.Parallel < 1 {
		errs = append(errs, fmt.Errorf("parallel must be positive, got %d", s.Parallel))
	}
	if s.RetryMaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry_max_attempts must not be negative, got %d", s.RetryMaxAttempts))
	}
	if s.Destination == "" {
		errs = append(errs, errors.New("destination must not be empty"))
	}
	if _, err := s.RetryPolicy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
