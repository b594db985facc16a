package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/handiism/spotify-dl/internal/catalog"
	"github.com/handiism/spotify-dl/internal/config"
	"github.com/handiism/spotify-dl/internal/download"
	"github.com/handiism/spotify-dl/internal/logging"
	"github.com/handiism/spotify-dl/internal/progress"
	"github.com/handiism/spotify-dl/internal/provider/gateway"
	"github.com/handiism/spotify-dl/internal/provider/spotify"
	"github.com/handiism/spotify-dl/internal/status"
	"github.com/handiism/spotify-dl/internal/stream"
	"github.com/handiism/spotify-dl/internal/tui"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func downloadAction(c *cli.Context) error {
	inputs := c.Args().Slice()
	if len(inputs) == 0 {
		_ = cli.ShowAppHelp(c)
		return cli.Exit("no identifiers given", 1)
	}

	settings, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	opts, err := downloadOptions(c, settings)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	policy, err := settings.RetryPolicy()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger, closeLog, err := logging.Setup(logging.Options{
		Path:     config.LogPath(),
		MaxBytes: settings.LogMaxBytes,
		Verbose:  c.Bool("verbose"),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("open log: %v", err), 1)
	}
	defer closeLog()

	creds, err := config.LoadCredentials(config.CredentialsPath())
	if err != nil {
		return cli.Exit(fmt.Sprintf("load credentials: %v", err), 1)
	}
	creds.ApplyEnv()
	if !creds.Complete() {
		return cli.Exit("missing Spotify credentials: run `spotify-dl login` or set SPOTIFY_ID and SPOTIFY_SECRET", 1)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engine := gateway.NewEngine(settings.GatewayURL, creds.GatewayToken, gateway.WithLogger(logger))
	session, err := spotify.Connect(ctx, creds.ClientID, creds.ClientSecret, engine, logger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	interactive := isTerminal(os.Stdout)
	result, err := resolve(ctx, catalog.NewResolver(session, logger), inputs, interactive)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(c.App.ErrWriter, "skipping %v\n", e)
	}
	if len(result.Tracks) == 0 {
		fmt.Fprintln(c.App.Writer, "Nothing to download.")
		return nil
	}

	hub := progress.NewHub()
	var wg sync.WaitGroup

	var summary progress.Summary
	summaryUpdates, _ := hub.Subscribe(64)
	wg.Add(1)
	go func() {
		defer wg.Done()
		summary.Consume(summaryUpdates)
	}()

	if addr := c.String("status-addr"); addr != "" {
		srv := status.New(hub, status.WithLogger(logger))
		go func() {
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				logger.Error("status server stopped", "error", err)
			}
		}()
	}

	startRender(&wg, hub, c.App.Writer, interactive, cancel, logger)

	streamer := stream.NewSession(session, stream.WithRetryPolicy(policy), stream.WithLogger(logger))
	downloader := download.NewDownloader(session, streamer, hub, logger)
	err = downloader.DownloadTracks(ctx, result.Tracks, opts)

	hub.Close()
	wg.Wait()

	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintln(c.App.Writer, summary.String())
	for _, f := range summary.Failures() {
		fmt.Fprintf(c.App.ErrWriter, "  %s\n", f)
	}
	return nil
}

// resolve expands the inputs, behind a spinner on a terminal.
func resolve(ctx context.Context, r *catalog.Resolver, inputs []string, interactive bool) (catalog.Result, error) {
	var result catalog.Result
	action := func(ctx context.Context) error {
		result = r.Resolve(ctx, inputs)
		return nil
	}

	if !interactive {
		err := action(ctx)
		return result, err
	}
	err := spinner.New().
		Title(fmt.Sprintf("Resolving %d identifier(s)...", len(inputs))).
		Context(ctx).
		ActionWithErr(action).
		Run()
	return result, err
}

// startRender subscribes before returning, so the display sees every bar
// from the first one on, then draws in the background until the hub is
// closed.
func startRender(wg *sync.WaitGroup, hub *progress.Hub, out io.Writer, interactive bool, cancel context.CancelFunc, logger *slog.Logger) {
	updates, unsubscribe := hub.Subscribe(256)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer unsubscribe()
		render(updates, out, interactive, cancel, logger)
	}()
}

// render draws progress until updates is closed. The TUI may quit early
// on ctrl+c; the caller then drops the subscription so publishing never
// waits on it.
func render(updates <-chan progress.Update, out io.Writer, interactive bool, cancel context.CancelFunc, logger *slog.Logger) {
	if !interactive {
		progress.NewPlain(out).Run(updates)
		return
	}
	if err := tui.Run(updates, cancel); err != nil {
		logger.Error("progress display failed", "error", err)
	}
}
