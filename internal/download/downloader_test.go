package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/spotify-dl/internal/audio"
	"github.com/handiism/spotify-dl/internal/encoder"
	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/progress"
	"github.com/handiism/spotify-dl/internal/provider/mock"
	"github.com/handiism/spotify-dl/internal/stream"
)

// fakeCodec writes the sample count as the file body and appends the
// title as its tag.
type fakeCodec struct {
	encodes atomic.Int32
	tagErr  error
}

func (c *fakeCodec) Format() encoder.Format { return encoder.Flac }

func (c *fakeCodec) Encode(s encoder.Samples) ([]byte, error) {
	c.encodes.Add(1)
	return []byte(fmt.Sprintf("samples=%d\n", len(s.Data))), nil
}

func (c *fakeCodec) WriteTags(path string, tags audio.Tags) error {
	if c.tagErr != nil {
		return c.tagErr
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "title=%s\n", tags.Title)
	return err
}

type barState struct {
	name     string
	total    int64
	position int64
	messages []string
	final    progress.Kind
	result   string
}

type recordingReporter struct {
	mu   sync.Mutex
	bars []*barState
}

func (r *recordingReporter) NewBar(name string, total int64) progress.Bar {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := &barState{name: name, total: total}
	r.bars = append(r.bars, b)
	return &recordingBar{r: r, b: b}
}

func (r *recordingReporter) byKind(kind progress.Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, b := range r.bars {
		if b.final == kind {
			names = append(names, b.name)
		}
	}
	sort.Strings(names)
	return names
}

func (r *recordingReporter) bar(name string) *barState {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bars {
		if b.name == name {
			return b
		}
	}
	return nil
}

type recordingBar struct {
	r *recordingReporter
	b *barState
}

func (b *recordingBar) SetPosition(n int64) {
	b.r.mu.Lock()
	defer b.r.mu.Unlock()
	b.b.position = n
}

func (b *recordingBar) SetMessage(msg string) {
	b.r.mu.Lock()
	defer b.r.mu.Unlock()
	b.b.messages = append(b.b.messages, msg)
}

func (b *recordingBar) Finish(msg string) { b.end(progress.Finished, msg) }
func (b *recordingBar) Fail(msg string)   { b.end(progress.Failed, msg) }
func (b *recordingBar) Skip(msg string)   { b.end(progress.Skipped, msg) }

func (b *recordingBar) end(kind progress.Kind, msg string) {
	b.r.mu.Lock()
	defer b.r.mu.Unlock()
	b.b.final = kind
	b.b.result = msg
}

type fixture struct {
	session  *mock.Session
	codec    *fakeCodec
	reporter *recordingReporter
	d        *Downloader
	dest     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		session:  mock.NewSession(),
		codec:    &fakeCodec{},
		reporter: &recordingReporter{},
		dest:     t.TempDir(),
	}
	streamer := stream.NewSession(f.session, stream.WithRetryPolicy(stream.RetryPolicy{
		MaxAttempts: 3, Base: time.Millisecond, MaxDelay: 2 * time.Millisecond,
	}))
	f.d = NewDownloader(f.session, streamer, f.reporter, nil,
		WithCodecs(encoder.Table{encoder.Flac: f.codec}),
		WithPool(encoder.NewPool(2)),
	)
	return f
}

func (f *fixture) options() Options {
	return Options{Destination: f.dest, Parallel: 2, Format: encoder.Flac}
}

func (f *fixture) addTrack(id string, script mock.Script) model.Track {
	tid := model.TrackID{Kind: model.KindTrack, ID: id}
	if script.Frames == nil {
		script.Frames = [][]float64{{0.1, -0.1, 0.2, -0.2}, {0.3, -0.3}}
	}
	f.session.AddTrack(tid, script)
	return model.Track{ID: tid}
}

func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dest)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestDownloadTracks_Success(t *testing.T) {
	f := newFixture(t)
	track := f.addTrack("t1", mock.Script{Meta: &model.TrackMetadata{
		Title:    "Song",
		Artists:  []string{"A", "B", "C", "D"},
		Duration: time.Second,
	}})

	require.NoError(t, f.d.DownloadTracks(context.Background(), []model.Track{track}, f.options()))

	assert.Equal(t, []string{"A, B, C, and others - Song.flac"}, f.files(t))
	data, err := os.ReadFile(filepath.Join(f.dest, "A, B, C, and others - Song.flac"))
	require.NoError(t, err)
	assert.Equal(t, "samples=6\ntitle=Song\n", string(data))

	bar := f.reporter.bar("A, B, C, and others - Song")
	require.NotNil(t, bar)
	assert.Equal(t, progress.Finished, bar.final)
	assert.Equal(t, model.CDQuality.EstimateBytes(time.Second), bar.total)
	assert.Equal(t, int64(6*model.StoredSampleBytes), bar.position)
}

func TestDownloadTracks_FailureIsolation(t *testing.T) {
	f := newFixture(t)
	tracks := []model.Track{
		f.addTrack("t1", mock.Script{}),
		f.addTrack("t2", mock.Script{StreamErr: "decoder crashed"}),
		f.addTrack("t3", mock.Script{}),
	}

	require.NoError(t, f.d.DownloadTracks(context.Background(), tracks, f.options()))

	assert.Equal(t, []string{"Artist - Track t1.flac", "Artist - Track t3.flac"}, f.files(t))
	assert.Equal(t, []string{"Artist - Track t2"}, f.reporter.byKind(progress.Failed))
	result := f.reporter.bar("Artist - Track t2").result
	assert.Contains(t, result, "decoder crashed")
	assert.NotContains(t, result, "Artist - Track t2", "bar name is not repeated in the failure text")
	assert.Len(t, f.reporter.byKind(progress.Finished), 2)
}

func TestDownloadTracks_RetriesReported(t *testing.T) {
	f := newFixture(t)
	track := f.addTrack("t1", mock.Script{FailLoads: 2})

	require.NoError(t, f.d.DownloadTracks(context.Background(), []model.Track{track}, f.options()))

	bar := f.reporter.bar("Artist - Track t1")
	require.NotNil(t, bar)
	assert.Equal(t, progress.Finished, bar.final)
	assert.Contains(t, bar.messages, "retrying (1/3)")
	assert.Contains(t, bar.messages, "retrying (2/3)")
	assert.Equal(t, 3, f.session.Loads(track.ID))
}

func TestDownloadTracks_Unavailable(t *testing.T) {
	f := newFixture(t)
	track := f.addTrack("t1", mock.Script{FailLoads: -1})

	require.NoError(t, f.d.DownloadTracks(context.Background(), []model.Track{track}, f.options()))

	assert.Empty(t, f.files(t))
	bar := f.reporter.bar("Artist - Track t1")
	require.NotNil(t, bar)
	assert.Equal(t, progress.Failed, bar.final)
	assert.Equal(t, int32(0), f.codec.encodes.Load())
}

func TestDownloadTracks_MetadataFailure(t *testing.T) {
	f := newFixture(t)
	track := f.addTrack("t1", mock.Script{MetaErr: errors.New("not found")})

	require.NoError(t, f.d.DownloadTracks(context.Background(), []model.Track{track}, f.options()))

	bar := f.reporter.bar("spotify:track:t1")
	require.NotNil(t, bar)
	assert.Equal(t, progress.Failed, bar.final)
	assert.Contains(t, bar.result, "not found")
}

func TestDownloadTracks_TagFailureLeavesNoFile(t *testing.T) {
	f := newFixture(t)
	f.codec.tagErr = errors.New("tag store full")
	track := f.addTrack("t1", mock.Script{})

	require.NoError(t, f.d.DownloadTracks(context.Background(), []model.Track{track}, f.options()))

	assert.Empty(t, f.files(t))
	assert.Contains(t, f.reporter.bar("Artist - Track t1").result, "tag store full")
}

func TestDownloadTracks_ConcurrencyBound(t *testing.T) {
	f := newFixture(t)
	var tracks []model.Track
	for i := range 8 {
		tracks = append(tracks, f.addTrack(fmt.Sprintf("t%d", i), mock.Script{
			Frames:     [][]float64{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}},
			FrameDelay: 5 * time.Millisecond,
		}))
	}
	opts := f.options()
	opts.Parallel = 3

	require.NoError(t, f.d.DownloadTracks(context.Background(), tracks, opts))

	assert.LessOrEqual(t, f.session.MaxActive(), 3)
	assert.Len(t, f.files(t), 8)
}

func TestDownloadTracks_SkipExisting(t *testing.T) {
	f := newFixture(t)
	track := f.addTrack("t1", mock.Script{})
	path := filepath.Join(f.dest, "Artist - Track t1.flac")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0644))

	require.NoError(t, f.d.DownloadTracks(context.Background(), []model.Track{track}, f.options()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	assert.Equal(t, 0, f.session.Loads(track.ID))
	assert.Equal(t, []string{"Artist - Track t1"}, f.reporter.byKind(progress.Skipped))
	assert.Equal(t, "already exists", f.reporter.bar("Artist - Track t1").result)

	opts := f.options()
	opts.Force = true
	require.NoError(t, f.d.DownloadTracks(context.Background(), []model.Track{track}, opts))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "samples="))
	assert.Equal(t, 1, f.session.Loads(track.ID))
}

func TestDownloadTracks_OrderedAndPlaylist(t *testing.T) {
	f := newFixture(t)
	t1 := f.addTrack("t1", mock.Script{})
	t2 := f.addTrack("t2", mock.Script{})
	t1.Position, t2.Position = 1, 2

	opts := f.options()
	opts.Ordered = true
	opts.Playlist = "Mix"
	opts.PlaylistFormat = model.PlaylistFormatM3U

	require.NoError(t, f.d.DownloadTracks(context.Background(), []model.Track{t2, t1}, opts))

	assert.Equal(t, []string{
		"001 - Artist - Track t1.flac",
		"002 - Artist - Track t2.flac",
		"Mix.m3u8",
	}, f.files(t))

	data, err := os.ReadFile(filepath.Join(f.dest, "Mix.m3u8"))
	require.NoError(t, err)
	content := string(data)
	// submission order
	assert.Less(t, strings.Index(content, "002 - "), strings.Index(content, "001 - "))
}

func TestDownloadTracks_SetupErrors(t *testing.T) {
	f := newFixture(t)
	track := f.addTrack("t1", mock.Script{})

	opts := f.options()
	opts.Parallel = 0
	assert.ErrorIs(t, f.d.DownloadTracks(context.Background(), []model.Track{track}, opts), ErrInvalidOptions)

	opts = f.options()
	opts.Format = encoder.Mp3
	assert.ErrorIs(t, f.d.DownloadTracks(context.Background(), []model.Track{track}, opts), encoder.ErrUnsupportedFormat)

	blocker := filepath.Join(f.dest, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	opts = f.options()
	opts.Destination = filepath.Join(blocker, "sub")
	assert.Error(t, f.d.DownloadTracks(context.Background(), []model.Track{track}, opts))

	assert.Equal(t, 0, f.session.Loads(track.ID))
}

func TestDownloadTracks_CancelledStartsNothing(t *testing.T) {
	f := newFixture(t)
	track := f.addTrack("t1", mock.Script{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.d.DownloadTracks(ctx, []model.Track{track}, f.options()))

	assert.Equal(t, 0, f.session.Loads(track.ID))
	assert.Empty(t, f.files(t))
}

func coverPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for x := 0; x < 64; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDownloadTracks_RealFlac(t *testing.T) {
	session := mock.NewSession()
	reporter := &recordingReporter{}
	dest := t.TempDir()

	id := model.TrackID{Kind: model.KindTrack, ID: "real"}
	session.AddCover("cover-1", coverPNG(t))
	frames := make([][]float64, 4)
	for i := range frames {
		frame := make([]float64, 2048)
		for j := range frame {
			frame[j] = float64(j%200-100) / 200
		}
		frames[i] = frame
	}
	session.AddTrack(id, mock.Script{
		Meta: &model.TrackMetadata{
			Title:    "Real Song",
			Artists:  []string{"Singer"},
			Album:    model.AlbumMetadata{Name: "Record", Year: 2021, CoverURL: "cover-1"},
			Duration: time.Second,
		},
		Frames: frames,
	})

	d := NewDownloader(session, stream.NewSession(session), reporter, nil)
	opts := Options{Destination: dest, Parallel: 1, Format: encoder.Flac, CoverMaxSize: 16}
	require.NoError(t, d.DownloadTracks(context.Background(), []model.Track{{ID: id, Position: 7}}, opts))

	info, err := audio.ReadTags(filepath.Join(dest, "Singer - Real Song.flac"))
	require.NoError(t, err)
	assert.Equal(t, "Real Song", info.Title)
	assert.Equal(t, "Singer", info.Artist)
	assert.Equal(t, "Record", info.Album)
	assert.Equal(t, 7, info.Position)
	assert.True(t, info.HasCover)
}

func TestDownloadTracks_SkipNamesExistingTags(t *testing.T) {
	session := mock.NewSession()
	dest := t.TempDir()

	id := model.TrackID{Kind: model.KindTrack, ID: "real"}
	frame := make([]float64, 4096)
	for j := range frame {
		frame[j] = float64(j%100-50) / 100
	}
	session.AddTrack(id, mock.Script{
		Meta:   &model.TrackMetadata{Title: "Real Song", Artists: []string{"Singer", "Band"}, Duration: time.Second},
		Frames: [][]float64{frame},
	})
	opts := Options{Destination: dest, Parallel: 1, Format: encoder.Mp3}
	tracks := []model.Track{{ID: id}}

	first := &recordingReporter{}
	require.NoError(t, NewDownloader(session, stream.NewSession(session), first, nil).DownloadTracks(context.Background(), tracks, opts))
	require.Equal(t, []string{"Singer, Band - Real Song"}, first.byKind(progress.Finished))

	second := &recordingReporter{}
	require.NoError(t, NewDownloader(session, stream.NewSession(session), second, nil).DownloadTracks(context.Background(), tracks, opts))

	bar := second.bar("Singer, Band - Real Song")
	require.NotNil(t, bar)
	assert.Equal(t, progress.Skipped, bar.final)
	assert.Equal(t, "already exists (Real Song by Singer, Band)", bar.result)
	assert.Equal(t, 1, session.Loads(id))
}
