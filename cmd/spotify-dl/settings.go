package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/handiism/spotify-dl/internal/config"
	"github.com/handiism/spotify-dl/internal/download"
	"github.com/handiism/spotify-dl/internal/encoder"
	"github.com/handiism/spotify-dl/internal/model"
)

func settingsPath(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return config.SettingsPath()
}

// loadSettings reads the settings file and applies the environment and
// every flag set on the command line.
func loadSettings(c *cli.Context) (*config.Settings, error) {
	settings, err := config.Load(settingsPath(c))
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings.ApplyEnv()
	applyFlags(c, settings)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func applyFlags(c *cli.Context, s *config.Settings) {
	if c.IsSet("destination") {
		s.Destination = c.String("destination")
	}
	if c.IsSet("parallel") {
		s.Parallel = c.Int("parallel")
	}
	if c.IsSet("format") {
		s.Format = c.String("format")
	}
	if c.IsSet("force") {
		s.Force = c.Bool("force")
	}
	if c.IsSet("ordered") {
		s.Ordered = c.Bool("ordered")
	}
	if c.IsSet("ascii-only") {
		s.ASCIIOnlyFilenames = c.Bool("ascii-only")
	}
	if c.IsSet("playlist-format") {
		s.PlaylistFormat = c.String("playlist-format")
	}
}

func downloadOptions(c *cli.Context, s *config.Settings) (download.Options, error) {
	format, err := encoder.ParseFormat(s.Format)
	if err != nil {
		return download.Options{}, err
	}
	return download.Options{
		Destination:    s.Destination,
		Parallel:       s.Parallel,
		Format:         format,
		Force:          s.Force,
		Ordered:        s.Ordered,
		ASCIIOnly:      s.ASCIIOnlyFilenames,
		Playlist:       c.String("playlist"),
		PlaylistFormat: model.ParsePlaylistFormat(s.PlaylistFormat),
		CoverMaxSize:   s.CoverMaxSize,
	}, nil
}
