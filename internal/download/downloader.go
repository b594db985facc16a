package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/spotify-dl/internal/audio"
	"github.com/handiism/spotify-dl/internal/encoder"
	ioutils "github.com/handiism/spotify-dl/internal/io"
	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/progress"
	"github.com/handiism/spotify-dl/internal/provider"
	"github.com/handiism/spotify-dl/internal/stream"
)

// Downloader coordinates track downloads.
type Downloader struct {
	session  provider.Session
	streamer *stream.Session
	reporter progress.Reporter
	codecs   encoder.Table
	pool     *encoder.Pool
	images   *ioutils.ImageService
	logger   *slog.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithCodecs replaces the default codec table.
func WithCodecs(t encoder.Table) Option {
	return func(d *Downloader) { d.codecs = t }
}

// WithPool sets the codec worker pool.
func WithPool(p *encoder.Pool) Option {
	return func(d *Downloader) { d.pool = p }
}

// WithImages sets the cover image service.
func WithImages(s *ioutils.ImageService) Option {
	return func(d *Downloader) { d.images = s }
}

// NewDownloader creates a Downloader. The session is shared by every
// pipeline and must be safe for concurrent use.
func NewDownloader(session provider.Session, streamer *stream.Session, reporter progress.Reporter, logger *slog.Logger, opts ...Option) *Downloader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Downloader{
		session:  session,
		streamer: streamer,
		reporter: reporter,
		codecs:   encoder.DefaultTable(),
		pool:     encoder.NewPool(0),
		images:   ioutils.NewImageService(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DownloadTracks runs one pipeline per track, at most opts.Parallel at a
// time. Per-track failures are reported through the track's progress bar
// and never returned. Once ctx is done no further pipeline starts.
func (d *Downloader) DownloadTracks(ctx context.Context, tracks []model.Track, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	codec, err := d.codecs.Lookup(opts.Format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if err := ioutils.EnsureDir(opts.Destination); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	logger := d.logger.With("run_id", uuid.NewString())
	logger.Info("download started", "tracks", len(tracks), "parallel", opts.Parallel, "format", opts.Format)

	// written[i] is the output of tracks[i], kept in submission order for
	// the playlist.
	written := make([]*audio.PlaylistEntry, len(tracks))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(opts.Parallel)

	for i, track := range tracks {
		if ctx.Err() != nil {
			logger.Warn("download cancelled", "remaining", len(tracks)-i)
			break
		}
		p := &pipeline{
			d:      d,
			opts:   opts,
			codec:  codec,
			track:  track,
			logger: logger.With("track_id", track.ID.URI()),
		}
		g.Go(func() error {
			entry := p.run(ctx)
			if entry != nil {
				mu.Lock()
				written[i] = entry
				mu.Unlock()
			}
			return nil
		})
	}

	// Pipelines never return errors.
	_ = g.Wait()

	if opts.Playlist != "" {
		if err := d.writePlaylist(opts, written); err != nil {
			logger.Warn("playlist not written", "error", err)
		}
	}

	logger.Info("download finished")
	return nil
}

func (d *Downloader) writePlaylist(opts Options, written []*audio.PlaylistEntry) error {
	var entries []audio.PlaylistEntry
	for _, e := range written {
		if e != nil && ioutils.Exists(e.Path) {
			entries = append(entries, *e)
		}
	}
	if len(entries) == 0 {
		return errors.New("no tracks written")
	}

	creator := audio.NewPlaylistCreator(opts.PlaylistFormat, true)
	name := ioutils.SanitizeFileName(opts.Playlist, opts.ASCIIOnly) + creator.Extension()
	content := creator.CreatePlaylist(opts.Playlist, entries)
	return os.WriteFile(filepath.Join(opts.Destination, name), []byte(content), 0644)
}

// pipeline is the work for one track.
type pipeline struct {
	d      *Downloader
	opts   Options
	codec  encoder.Codec
	track  model.Track
	logger *slog.Logger
}

// run processes the track. It returns the written file, or nil when the
// track failed or was skipped.
func (p *pipeline) run(ctx context.Context) *audio.PlaylistEntry {
	meta, err := p.d.session.ResolveMetadata(ctx, p.track.ID)
	if err != nil {
		bar := p.d.reporter.NewBar(p.track.ID.URI(), 0)
		p.fail(bar, p.track.ID.URI(), &PipelineError{Stage: StageMetadata, Track: p.track.ID, Err: err})
		return nil
	}
	if meta.Position == 0 {
		meta.Position = p.track.Position
	}

	name := meta.DisplayName()
	path := p.outputPath(meta)

	if !p.opts.Force && ioutils.Exists(path) {
		bar := p.d.reporter.NewBar(name, 0)
		bar.Skip(p.skipReason(path))
		return &audio.PlaylistEntry{Path: path, Meta: meta}
	}

	bar := p.d.reporter.NewBar(name, meta.EstimatedBytes())

	samples, err := p.stream(ctx, meta, bar)
	if err != nil {
		p.fail(bar, name, &PipelineError{Stage: StageStream, Track: p.track.ID, Err: err})
		return nil
	}

	bar.SetMessage("encoding")
	if err := p.persist(ctx, meta, samples, path); err != nil {
		p.fail(bar, name, err)
		return nil
	}

	bar.Finish("done")
	p.logger.Info("track saved", "path", path)
	return &audio.PlaylistEntry{Path: path, Meta: meta}
}

func (p *pipeline) outputPath(meta *model.TrackMetadata) string {
	name := meta.DisplayName()
	if p.opts.Ordered && meta.Position > 0 {
		name = model.OrderedPrefix(meta.Position) + name
	}
	name = ioutils.SanitizeFileName(name, p.opts.ASCIIOnly)
	return filepath.Join(p.opts.Destination, name+p.opts.Format.Extension())
}

// stream drives the stream session to its terminal event and returns the
// buffered samples.
func (p *pipeline) stream(ctx context.Context, meta *model.TrackMetadata, bar progress.Bar) (encoder.Samples, error) {
	buf := encoder.NewBuffer(model.CDQuality, meta.EstimatedBytes())

	for ev := range p.d.streamer.StreamMetadata(ctx, meta) {
		switch ev := ev.(type) {
		case stream.Write:
			if err := buf.Append(ev.Content); err != nil {
				return encoder.Samples{}, err
			}
			bar.SetPosition(ev.BytesSent)
		case stream.Retry:
			bar.SetMessage(fmt.Sprintf("retrying (%d/%d)", ev.Attempt, ev.MaxAttempts))
			p.logger.Warn("retrying track", "attempt", ev.Attempt, "max_attempts", ev.MaxAttempts)
		case stream.Error:
			return encoder.Samples{}, ev.Err
		case stream.Finished:
			return buf.Freeze(), nil
		}
	}
	return encoder.Samples{}, errors.New("stream ended without a terminal event")
}

// persist encodes samples and writes the tagged file through a staging
// file, so a failure leaves nothing at path.
func (p *pipeline) persist(ctx context.Context, meta *model.TrackMetadata, samples encoder.Samples, path string) (err error) {
	data, err := p.d.pool.Encode(ctx, p.codec, samples)
	if err != nil {
		return &PipelineError{Stage: StageEncode, Track: p.track.ID, Err: err}
	}

	cover := p.cover(ctx, meta)

	part := ioutils.NewPartFile(path)
	defer func() {
		if derr := part.Discard(); derr != nil {
			err = errors.Join(err, derr)
		}
	}()

	if err := part.Write(data); err != nil {
		return &PipelineError{Stage: StageWrite, Track: p.track.ID, Err: err}
	}
	if err := p.codec.WriteTags(part.Path(), audio.TagsFromMetadata(meta, cover)); err != nil {
		return &PipelineError{Stage: StageTag, Track: p.track.ID, Err: err}
	}
	if err := part.Commit(); err != nil {
		return &PipelineError{Stage: StageWrite, Track: p.track.ID, Err: err}
	}
	return nil
}

// cover fetches and normalizes the album cover. Failures only warn.
func (p *pipeline) cover(ctx context.Context, meta *model.TrackMetadata) []byte {
	if !meta.Album.HasCover() {
		return nil
	}
	data, err := p.d.session.FetchCover(ctx, meta.Album.CoverURL)
	if err != nil {
		p.logger.Warn("cover not fetched", "error", err)
		return nil
	}
	data, err = p.d.images.PrepareCover(ctx, data, p.opts.CoverMaxSize)
	if err != nil {
		p.logger.Warn("cover not converted", "error", err)
		return nil
	}
	return data
}

// skipReason describes an existing output file by the tags it carries.
func (p *pipeline) skipReason(path string) string {
	info, err := audio.ReadTags(path)
	if err != nil || info.Title == "" {
		p.logger.Debug("skipping existing file", "path", path, "error", err)
		return "already exists"
	}
	p.logger.Debug("skipping existing file", "path", path, "title", info.Title, "artist", info.Artist)
	if info.Artist == "" {
		return fmt.Sprintf("already exists (%s)", info.Title)
	}
	return fmt.Sprintf("already exists (%s by %s)", info.Title, info.Artist)
}

// fail reports err on bar. The bar already carries the track name.
func (p *pipeline) fail(bar progress.Bar, name string, err error) {
	p.logger.Error("track failed", "name", name, "error", err)
	bar.Fail(err.Error())
}
