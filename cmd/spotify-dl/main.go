// Command spotify-dl downloads tracks, albums and playlists into tagged
// audio files.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// A .env file is optional.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "spotify-dl",
		Usage:     "download music directly from Spotify",
		ArgsUsage: "<track|album|playlist URI or URL>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the settings file",
				EnvVars: []string{"SPOTIFY_DL_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "destination",
				Aliases: []string{"d"},
				Usage:   "directory the files are written to",
			},
			&cli.IntFlag{
				Name:    "parallel",
				Aliases: []string{"p"},
				Usage:   "number of tracks downloaded at once",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: flac or mp3",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"F"},
				Usage:   "overwrite existing files",
			},
			&cli.BoolFlag{
				Name:    "ordered",
				Aliases: []string{"o"},
				Usage:   "prefix file names with the position in the album or playlist",
			},
			&cli.BoolFlag{
				Name:  "ascii-only",
				Usage: "drop non-ASCII characters from file names",
			},
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "write a playlist with this name next to the files",
			},
			&cli.StringFlag{
				Name:  "playlist-format",
				Usage: "playlist format: m3u, pls, wpl or zpl",
			},
			&cli.StringFlag{
				Name:  "status-addr",
				Usage: "serve live progress over HTTP on this address, e.g. :8080",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "also log to stderr at debug level",
			},
		},
		Action: downloadAction,
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "store Spotify API and gateway credentials",
				Action: loginAction,
			},
			{
				Name:  "config",
				Usage: "print the effective settings, or write them with --save",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "save", Usage: "write the settings file"},
				},
				Action: configAction,
			},
		},
	}
}
