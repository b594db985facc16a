package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/spotify-dl/internal/model"
)

// PlaylistEntry is one written track.
type PlaylistEntry struct {
	// Path is the output file. Playlists reference its base name, so the
	// playlist must live in the same directory.
	Path string

	Meta *model.TrackMetadata
}

// PlaylistCreator generates playlist files for a downloaded collection.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist("Road Trip", entries)
//
//	// #EXTM3U
//	// #PLAYLIST:Road Trip
//	// #EXTINF:180,Artist - Song Title
//	// Artist - Song Title.flac
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // M3U only: include #EXTINF lines
}

// NewPlaylistCreator creates a new PlaylistCreator. extended is ignored
// for formats other than M3U.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Extension returns the file extension of generated playlists.
func (p *PlaylistCreator) Extension() string {
	return p.format.Extension()
}

// CreatePlaylist renders entries in order under the given title.
func (p *PlaylistCreator) CreatePlaylist(title string, entries []PlaylistEntry) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(entries)
	case model.PlaylistFormatWPL:
		return p.createSMIL("wpl", "1.0", title, entries, false)
	case model.PlaylistFormatZPL:
		return p.createSMIL("zpl", "2.0", title, entries, true)
	default:
		return p.createM3U(title, entries)
	}
}

func (p *PlaylistCreator) createM3U(title string, entries []PlaylistEntry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
		if title != "" {
			fmt.Fprintf(&sb, "#PLAYLIST:%s\n", title)
		}
	}

	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", seconds(e), e.Meta.DisplayName())
		}
		sb.WriteString(filepath.Base(e.Path) + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist:
//
//	[playlist]
//	File1=A - T.flac
//	Title1=A - T
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		n := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", n, filepath.Base(e.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", n, e.Meta.DisplayName())
		fmt.Fprintf(&sb, "Length%d=%d\n", n, seconds(e))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createSMIL generates the XML playlists used by Windows Media Player
// (wpl) and Zune (zpl). Zune entries carry extra attributes.
func (p *PlaylistCreator) createSMIL(kind, version, title string, entries []PlaylistEntry, detailed bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<?%s version=\"%s\"?>\n", kind, version)
	sb.WriteString("<smil>\n  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", xmlEscaper.Replace(title))
	if detailed {
		sb.WriteString("    <meta name=\"Generator\" content=\"spotify-dl\"/>\n")
		fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	}
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")

	for _, e := range entries {
		src := xmlEscaper.Replace(filepath.Base(e.Path))
		if !detailed {
			fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", src)
			continue
		}
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			src,
			xmlEscaper.Replace(e.Meta.Album.Name),
			xmlEscaper.Replace(e.Meta.PrimaryArtist()),
			xmlEscaper.Replace(e.Meta.Title),
			xmlEscaper.Replace(strings.Join(e.Meta.Artists, artistSeparator)),
			e.Meta.Duration.Milliseconds())
	}

	sb.WriteString("    </seq>\n  </body>\n</smil>\n")
	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func seconds(e PlaylistEntry) int {
	return int(e.Meta.Duration.Seconds())
}
