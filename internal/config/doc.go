// Package config provides configuration management for spotify-dl.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Provider credentials and their environment overrides
//   - The dot directory that holds config, credentials and logs
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// 5 parallel tracks, FLAC output, 3 retries from 10s capped at 30s
//
// # Loading from File
//
//	settings, err := config.Load(config.SettingsPath())
//	// A missing file yields the defaults
//
// # Credentials
//
//	creds, err := config.LoadCredentials(config.CredentialsPath())
//	creds.ApplyEnv() // SPOTIFY_ID, SPOTIFY_SECRET, SPOTIFY_DL_GATEWAY_TOKEN
//
// Credentials are written with mode 0600.
package config
