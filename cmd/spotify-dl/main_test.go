package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/handiism/spotify-dl/internal/config"
	"github.com/handiism/spotify-dl/internal/download"
	"github.com/handiism/spotify-dl/internal/encoder"
	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/progress"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	exiter := cli.OsExiter
	cli.OsExiter = func(int) {}
	t.Cleanup(func() { cli.OsExiter = exiter })

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"spotify-dl"}, args...))
	return out.String(), err
}

func TestNoIdentifiers(t *testing.T) {
	_, err := runApp(t, "--config", filepath.Join(t.TempDir(), "config.json"))
	require.Error(t, err)

	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode())
}

func TestConfigCommand_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := config.DefaultSettings()
	s.Format = "mp3"
	require.NoError(t, s.Save(path))

	out, err := runApp(t, "--config", path, "-p", "3", "-o", "config")
	require.NoError(t, err)
	assert.Contains(t, out, `"parallel": 3`)
	assert.Contains(t, out, `"format": "mp3"`)
	assert.Contains(t, out, `"ordered": true`)
}

func TestConfigCommand_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	_, err := runApp(t, "--config", path, "-f", "mp3", "config", "--save")
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mp3", loaded.Format)
}

func TestConfigCommand_Invalid(t *testing.T) {
	_, err := runApp(t, "--config", filepath.Join(t.TempDir(), "config.json"), "-p", "0", "config")
	assert.Error(t, err)
}

func TestDownloadOptions(t *testing.T) {
	var (
		opts download.Options
		err  error
	)
	app := newApp()
	app.Action = func(c *cli.Context) error {
		s := config.DefaultSettings()
		applyFlags(c, s)
		opts, err = downloadOptions(c, s)
		return nil
	}

	dest := t.TempDir()
	require.NoError(t, app.Run([]string{"spotify-dl", "-d", dest, "-f", "MP3", "-F", "--playlist", "Mix", "--playlist-format", "pls"}))
	require.NoError(t, err)
	assert.Equal(t, dest, opts.Destination)
	assert.Equal(t, encoder.Mp3, opts.Format)
	assert.True(t, opts.Force)
	assert.Equal(t, "Mix", opts.Playlist)
	assert.Equal(t, model.PlaylistFormatPLS, opts.PlaylistFormat)
	assert.Equal(t, 5, opts.Parallel)

	require.NoError(t, app.Run([]string{"spotify-dl", "-f", "ogg"}))
	assert.ErrorIs(t, err, encoder.ErrUnsupportedFormat)
}

func TestStartRender_SeesFirstBar(t *testing.T) {
	hub := progress.NewHub()
	var out bytes.Buffer
	var wg sync.WaitGroup

	startRender(&wg, hub, &out, false, func() {}, slog.New(slog.DiscardHandler))
	hub.NewBar("A - T", 0).Skip("already exists")
	hub.NewBar("B - U", 0).Fail("stream: unavailable")
	hub.Close()
	wg.Wait()

	assert.Contains(t, out.String(), "- A - T: already exists\n")
	assert.Contains(t, out.String(), "✗ B - U: stream: unavailable\n")
}

func TestMain(m *testing.M) {
	// keep tests away from the real dot directory
	home, err := os.MkdirTemp("", "spotify-dl-home")
	if err != nil {
		panic(err)
	}
	os.Setenv("HOME", home)
	code := m.Run()
	os.RemoveAll(home)
	os.Exit(code)
}
