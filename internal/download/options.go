package download

import (
	"errors"
	"fmt"

	"github.com/handiism/spotify-dl/internal/encoder"
	"github.com/handiism/spotify-dl/internal/model"
)

// ErrInvalidOptions is returned by DownloadTracks for unusable options.
var ErrInvalidOptions = errors.New("invalid download options")

// Options configure one DownloadTracks call. They are read-only once the
// call starts and shared by every pipeline.
type Options struct {
	Destination string
	Parallel    int
	Format      encoder.Format
	Force       bool

	// Ordered prefixes file names with the collection position.
	Ordered bool

	// ASCIIOnly drops non-ASCII characters from file names.
	ASCIIOnly bool

	// Playlist, when set, names a playlist written to Destination after
	// all pipelines end.
	Playlist       string
	PlaylistFormat model.PlaylistFormat

	// CoverMaxSize bounds embedded covers; 0 keeps the original size.
	CoverMaxSize int
}

func (o Options) validate() error {
	if o.Destination == "" {
		return fmt.Errorf("%w: empty destination", ErrInvalidOptions)
	}
	if o.Parallel < 1 {
		return fmt.Errorf("%w: parallel must be positive, got %d", ErrInvalidOptions, o.Parallel)
	}
	return nil
}
