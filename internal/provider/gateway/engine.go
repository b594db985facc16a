// Package gateway implements the provider playback engine against a PCM
// gateway: an HTTP service that streams a track as raw little-endian
// signed 16-bit stereo samples at 44.1 kHz.
//
//	GET {base}/v1/tracks/{id}/pcm
//	Authorization: Bearer {token}
//
// A 200 response starts playback. 404, 410 and 451, or a JSON body with
// error.reason "unavailable", mean the track cannot be played.
package gateway

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	xhttp "github.com/handiism/spotify-dl/internal/http"
	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/provider"
)

// DefaultFrameSamples is the number of interleaved samples per frame.
const DefaultFrameSamples = 4096

// Engine creates gateway players. It is safe for concurrent use.
type Engine struct {
	client       *xhttp.Client
	baseURL      string
	token        string
	frameSamples int
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClient replaces the default streaming HTTP client.
func WithClient(c *xhttp.Client) Option {
	return func(e *Engine) { e.client = c }
}

// WithFrameSamples sets how many samples are delivered per frame.
func WithFrameSamples(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.frameSamples = n &^ 1
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine for the gateway at baseURL.
func NewEngine(baseURL, token string, opts ...Option) *Engine {
	e := &Engine{
		client:       xhttp.NewClient(xhttp.WithTimeout(0)),
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		frameSamples: DefaultFrameSamples,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewPlayer implements the player half of provider.Session.
func (e *Engine) NewPlayer(sink provider.Sink) provider.Player {
	return &player{
		engine: e,
		sink:   sink,
		events: make(chan provider.PlayerEvent, 8),
		done:   make(chan struct{}),
	}
}

func (e *Engine) trackURL(id model.TrackID) string {
	return fmt.Sprintf("%s/v1/%ss/%s/pcm", e.baseURL, id.Kind, url.PathEscape(id.ID))
}

type player struct {
	engine *Engine
	sink   provider.Sink
	events chan provider.PlayerEvent
	done   chan struct{}

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func (p *player) Events() <-chan provider.PlayerEvent {
	return p.events
}

func (p *player) Load(ctx context.Context, id model.TrackID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.play(ctx, id)
	}()
}

func (p *player) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.mu.Lock()
		if p.cancel != nil {
			p.cancel()
		}
		p.mu.Unlock()
		p.wg.Wait()
		close(p.events)
	})
}

func (p *player) play(ctx context.Context, id model.TrackID) {
	logger := p.engine.logger.With("track_id", id.URI())
	p.emit(provider.PlayerEvent{Kind: provider.EventLoading, TrackID: id})

	body, err := p.engine.client.Stream(ctx, p.engine.trackURL(id), xhttp.WithBearer(p.engine.token))
	if err != nil {
		reason := classify(err)
		logger.Debug("gateway refused track", "reason", reason, "error", err)
		p.emit(provider.PlayerEvent{Kind: provider.EventUnavailable, TrackID: id, Reason: reason})
		return
	}
	defer body.Close()

	if !p.emit(provider.PlayerEvent{Kind: provider.EventPlaying, TrackID: id}) {
		return
	}

	if err := p.pump(body); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		logger.Debug("gateway stream failed", "error", err)
		p.emit(provider.PlayerEvent{Kind: provider.EventError, TrackID: id, Reason: err.Error()})
		return
	}

	if err := p.sink.Finish(); err != nil {
		return
	}
	p.emit(provider.PlayerEvent{Kind: provider.EventEndOfTrack, TrackID: id})
}

// pump reads frames until EOF and writes them to the sink.
func (p *player) pump(r io.Reader) error {
	raw := make([]byte, p.engine.frameSamples*2)
	for {
		n, err := io.ReadFull(r, raw)
		if n > 0 {
			if werr := p.sink.Write(provider.Frame{Samples: decodeS16LE(raw[:n&^1])}); werr != nil {
				return werr
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil
		default:
			return err
		}
	}
}

func (p *player) emit(ev provider.PlayerEvent) bool {
	select {
	case p.events <- ev:
		return true
	case <-p.done:
		return false
	}
}

func decodeS16LE(b []byte) []float64 {
	out := make([]float64, len(b)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(b[2*i:]))
		out[i] = float64(v) / math.MaxInt16
	}
	return out
}

// classify turns a failed request into an unavailability reason.
func classify(err error) string {
	var se *xhttp.StatusError
	if !errors.As(err, &se) {
		return err.Error()
	}

	if msg := gjson.GetBytes(se.Body, "error.message"); msg.Exists() {
		return fmt.Sprintf("%s (HTTP %d)", msg.String(), se.Code)
	}
	switch {
	case se.Code == 404, se.Code == 410:
		return "not available"
	case se.Code == 451:
		return "not available in this region"
	case gjson.GetBytes(se.Body, "error.reason").String() == "unavailable":
		return "not available"
	default:
		return se.Error()
	}
}
