package encoder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/spotify-dl/internal/audio"
)

var (
	// ErrUnsupportedFormat is returned for format names or values that
	// have no codec.
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// ErrNoSamples is returned when asked to encode an empty buffer.
	ErrNoSamples = errors.New("no samples to encode")
)

// Format is an output file format.
type Format int

const (
	Flac Format = iota + 1
	Mp3
)

// ParseFormat maps a user-facing name ("flac", "mp3") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "flac":
		return Flac, nil
	case "mp3":
		return Mp3, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

func (f Format) String() string {
	switch f {
	case Flac:
		return "flac"
	case Mp3:
		return "mp3"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// Codec encodes samples into one format and tags files of that format.
type Codec interface {
	Format() Format
	Encode(samples Samples) ([]byte, error)
	WriteTags(path string, tags audio.Tags) error
}

// Table maps formats to codecs.
type Table map[Format]Codec

// DefaultTable returns the built-in codecs.
func DefaultTable() Table {
	return Table{
		Flac: flacCodec{},
		Mp3:  mp3Codec{},
	}
}

// Lookup returns the codec for f.
func (t Table) Lookup(f Format) (Codec, error) {
	c, ok := t[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	return c, nil
}
