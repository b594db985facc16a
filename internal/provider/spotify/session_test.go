package spotify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"

	xhttp "github.com/handiism/spotify-dl/internal/http"
	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/provider/mock"
)

// newTestSession serves routes by path; "{{base}}" in a body is replaced
// with the server URL.
func newTestSession(t *testing.T, routes map[string]string) (*Session, string) {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, `{"error":{"status":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, strings.ReplaceAll(body, "{{base}}", srv.URL))
	}))
	t.Cleanup(srv.Close)

	client := spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/"))
	return NewSession(client, xhttp.NewClient(), mock.NewSession(), nil), srv.URL
}

const trackJSON = `{
	"id": "t1", "name": "Drunk in Love", "duration_ms": 323000, "type": "track",
	"artists": [{"id": "a1", "name": "Beyoncé"}, {"id": "a2", "name": "JAY-Z"}],
	"album": {
		"id": "al1", "name": "BEYONCÉ", "release_date": "2013-12-13", "release_date_precision": "day",
		"images": [{"url": "{{base}}/cover.jpg", "height": 640, "width": 640}]
	}
}`

func TestSession_ResolveMetadata(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{"/tracks/t1": trackJSON})

	meta, err := s.ResolveMetadata(context.Background(), model.TrackID{Kind: model.KindTrack, ID: "t1"})
	require.NoError(t, err)

	assert.Equal(t, "Drunk in Love", meta.Title)
	assert.Equal(t, []string{"Beyoncé", "JAY-Z"}, meta.Artists)
	assert.Equal(t, "BEYONCÉ", meta.Album.Name)
	assert.Equal(t, 2013, meta.Album.Year)
	assert.Contains(t, meta.Album.CoverURL, "/cover.jpg")
	assert.Equal(t, 323*time.Second, meta.Duration)
}

func TestSession_ResolveMetadata_Errors(t *testing.T) {
	s, _ := newTestSession(t, nil)

	_, err := s.ResolveMetadata(context.Background(), model.TrackID{Kind: model.KindTrack, ID: "missing"})
	assert.Error(t, err)

	_, err = s.ResolveMetadata(context.Background(), model.TrackID{Kind: model.KindShow, ID: "s"})
	assert.ErrorIs(t, err, model.ErrUnsupportedKind)
}

func TestSession_ResolveCollection_Album(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{
		"/albums/al1/tracks": `{"items": [{"id": "t1"}, {"id": "t2"}], "next": "{{base}}/albums/al1/tracks/page2"}`,
		"/albums/al1/tracks/page2": `{"items": [{"id": "t3"}], "next": null}`,
	})

	ids, err := s.ResolveCollection(context.Background(), model.TrackID{Kind: model.KindAlbum, ID: "al1"})
	require.NoError(t, err)
	assert.Equal(t, []model.TrackID{
		{Kind: model.KindTrack, ID: "t1"},
		{Kind: model.KindTrack, ID: "t2"},
		{Kind: model.KindTrack, ID: "t3"},
	}, ids)
}

func TestSession_ResolveCollection_AlbumPages(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{
		"/albums/al2/tracks":       `{"items": [{"id": "t1"}], "next": "{{base}}/albums/al2/tracks/page2"}`,
		"/albums/al2/tracks/page2": `{"items": [{"id": "t2"}], "next": "{{base}}/albums/al2/tracks/page3"}`,
		"/albums/al2/tracks/page3": `{"items": [{"id": "t3"}, {"id": "t4"}], "next": ""}`,
	})

	ids, err := s.ResolveCollection(context.Background(), model.TrackID{Kind: model.KindAlbum, ID: "al2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, lo.Map(ids, func(id model.TrackID, _ int) string { return id.ID }))

	s, _ = newTestSession(t, map[string]string{
		"/albums/al3/tracks": `{"items": [{"id": "t1"}], "next": "{{base}}/albums/al3/tracks/gone"}`,
	})
	_, err = s.ResolveCollection(context.Background(), model.TrackID{Kind: model.KindAlbum, ID: "al3"})
	assert.ErrorContains(t, err, "next album page")
}

func TestSession_ResolveCollection_Playlist(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{
		"/playlists/pl1/tracks": `{"items": [
			{"track": {"id": "t1", "type": "track"}},
			{"track": {"id": "e1", "type": "episode"}}
		], "next": null}`,
	})

	ids, err := s.ResolveCollection(context.Background(), model.TrackID{Kind: model.KindPlaylist, ID: "pl1"})
	require.NoError(t, err)
	assert.Equal(t, []model.TrackID{
		{Kind: model.KindTrack, ID: "t1"},
		{Kind: model.KindEpisode, ID: "e1"},
	}, ids)

	_, err = s.ResolveCollection(context.Background(), model.TrackID{Kind: model.KindTrack, ID: "t1"})
	assert.ErrorIs(t, err, model.ErrUnsupportedKind)
}

func TestSession_FetchCoverAndPlayer(t *testing.T) {
	s, base := newTestSession(t, map[string]string{"/cover.jpg": "jpeg-bytes"})

	cover, err := s.FetchCover(context.Background(), base+"/cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(cover))

	_, err = s.FetchCover(context.Background(), "")
	assert.Error(t, err)

	p := s.NewPlayer(nil)
	require.NotNil(t, p)
	p.Stop()
}

func TestConnect_MissingCredentials(t *testing.T) {
	_, err := Connect(context.Background(), "", "secret", mock.NewSession(), nil)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
