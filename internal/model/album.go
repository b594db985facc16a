package model

import "strings"

// AlbumMetadata describes the release a track belongs to.
type AlbumMetadata struct {
	// Name is the album title.
	Name string

	// Year is the release year, or 0 when unknown.
	Year int

	// CoverURL references the cover image. Empty means no artwork.
	CoverURL string
}

// HasCover returns true if the album has cover art available.
func (a AlbumMetadata) HasCover() bool {
	return a.CoverURL != ""
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates extended .m3u8 playlists (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a configuration name to a PlaylistFormat.
// Unknown names fall back to M3U.
func ParsePlaylistFormat(name string) PlaylistFormat {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u8"
	}
}
