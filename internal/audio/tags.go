package audio

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"

	"github.com/handiism/spotify-dl/internal/model"
)

// artistSeparator joins several artists into one tag value.
const artistSeparator = ", "

// Tags is the metadata embedded into an output file.
type Tags struct {
	Title   string
	Artists []string
	Album   string
	Year    int

	// Position is the track number; 0 leaves it unset.
	Position int

	// Cover is a JPEG image; nil leaves it unset.
	Cover []byte
}

// TagsFromMetadata builds Tags for a resolved track.
func TagsFromMetadata(meta *model.TrackMetadata, cover []byte) Tags {
	return Tags{
		Title:    meta.Title,
		Artists:  meta.Artists,
		Album:    meta.Album.Name,
		Year:     meta.Album.Year,
		Position: meta.Position,
		Cover:    cover,
	}
}

// Artist returns the artists as a single value.
func (t Tags) Artist() string {
	return strings.Join(t.Artists, artistSeparator)
}

// Info is what ReadTags recovers from a file.
type Info struct {
	Format   string
	Title    string
	Artist   string
	Album    string
	Year     int
	Position int
	HasCover bool
}

// ReadTags reads ID3 or Vorbis tags from the file at path.
func ReadTags(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("read tags from %s: %w", path, err)
	}

	position, _ := m.Track()
	return &Info{
		Format:   string(m.FileType()),
		Title:    m.Title(),
		Artist:   m.Artist(),
		Album:    m.Album(),
		Year:     m.Year(),
		Position: position,
		HasCover: m.Picture() != nil,
	}, nil
}
