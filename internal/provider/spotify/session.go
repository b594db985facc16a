// Package spotify implements provider.Session with the Spotify Web API
// for metadata and a pluggable playback engine for audio.
//
// Authentication uses the client credentials flow; the resulting token
// source refreshes itself, so one Session serves every pipeline for the
// lifetime of the process.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	xhttp "github.com/handiism/spotify-dl/internal/http"
	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/provider"
)

// pageSize is the largest page the collection endpoints accept.
const pageSize = 50

// ErrMissingCredentials is returned by Connect without a client id or secret.
var ErrMissingCredentials = errors.New("spotify client id and secret are required")

// PlayerFactory creates playback engines.
type PlayerFactory interface {
	NewPlayer(sink provider.Sink) provider.Player
}

// Session is safe for concurrent use.
type Session struct {
	client  *spotify.Client
	covers  *xhttp.Client
	players PlayerFactory
	logger  *slog.Logger
}

var _ provider.Session = (*Session)(nil)

// Connect authenticates with the client credentials flow and returns a
// Session. It fails if the first token cannot be obtained.
func Connect(ctx context.Context, clientID, clientSecret string, players PlayerFactory, logger *slog.Logger) (*Session, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if _, err := cfg.Token(ctx); err != nil {
		return nil, fmt.Errorf("spotify authentication: %w", err)
	}

	client := spotify.New(cfg.Client(context.Background()))
	return NewSession(client, xhttp.NewClient(), players, logger), nil
}

// NewSession wraps an already authenticated API client.
func NewSession(client *spotify.Client, covers *xhttp.Client, players PlayerFactory, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{client: client, covers: covers, players: players, logger: logger}
}

// ResolveMetadata implements provider.Session.
func (s *Session) ResolveMetadata(ctx context.Context, id model.TrackID) (*model.TrackMetadata, error) {
	if id.Kind != model.KindTrack {
		return nil, fmt.Errorf("%w: metadata for %s", model.ErrUnsupportedKind, id.Kind)
	}

	track, err := s.client.GetTrack(ctx, spotify.ID(id.ID))
	if err != nil {
		return nil, fmt.Errorf("get track %s: %w", id.ID, err)
	}

	meta := &model.TrackMetadata{
		ID:    id,
		Title: track.Name,
		Artists: lo.Map(track.Artists, func(a spotify.SimpleArtist, _ int) string {
			return a.Name
		}),
		Album: model.AlbumMetadata{
			Name: track.Album.Name,
		},
		Duration: time.Duration(track.Duration) * time.Millisecond,
	}
	if track.Album.ReleaseDate != "" {
		meta.Album.Year = track.Album.ReleaseDateTime().Year()
	}
	if len(track.Album.Images) > 0 {
		meta.Album.CoverURL = track.Album.Images[0].URL
	}

	return meta, nil
}

// ResolveCollection implements provider.Session.
func (s *Session) ResolveCollection(ctx context.Context, id model.TrackID) ([]model.TrackID, error) {
	switch id.Kind {
	case model.KindAlbum:
		return s.albumTracks(ctx, spotify.ID(id.ID))
	case model.KindPlaylist:
		return s.playlistTracks(ctx, spotify.ID(id.ID))
	default:
		return nil, fmt.Errorf("%w: %s is not a collection", model.ErrUnsupportedKind, id.Kind)
	}
}

func (s *Session) albumTracks(ctx context.Context, id spotify.ID) ([]model.TrackID, error) {
	page, err := s.client.GetAlbumTracks(ctx, id, spotify.Limit(pageSize))
	if err != nil {
		return nil, fmt.Errorf("get album tracks: %w", err)
	}

	var ids []model.TrackID
	for {
		for _, t := range page.Tracks {
			ids = append(ids, model.TrackID{Kind: model.KindTrack, ID: string(t.ID)})
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("next album page: %w", err)
		}
	}
}

func (s *Session) playlistTracks(ctx context.Context, id spotify.ID) ([]model.TrackID, error) {
	page, err := s.client.GetPlaylistItems(ctx, id, spotify.Limit(pageSize))
	if err != nil {
		return nil, fmt.Errorf("get playlist items: %w", err)
	}

	var ids []model.TrackID
	for {
		for _, item := range page.Items {
			switch {
			case item.Track.Track != nil:
				ids = append(ids, model.TrackID{Kind: model.KindTrack, ID: string(item.Track.Track.ID)})
			case item.Track.Episode != nil:
				ids = append(ids, model.TrackID{Kind: model.KindEpisode, ID: string(item.Track.Episode.ID)})
			default:
				s.logger.Debug("skipping empty playlist item", "playlist", id)
			}
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("next playlist page: %w", err)
		}
	}
}

// FetchCover implements provider.Session.
func (s *Session) FetchCover(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, errors.New("no cover reference")
	}
	return s.covers.Get(ctx, ref)
}

// NewPlayer implements provider.Session.
func (s *Session) NewPlayer(sink provider.Sink) provider.Player {
	return s.players.NewPlayer(sink)
}
