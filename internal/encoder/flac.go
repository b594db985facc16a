package encoder

import (
	"bytes"
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/handiism/spotify-dl/internal/audio"
)

// flacBlockSize is the number of samples per channel in one frame.
const flacBlockSize = 4096

// flacCodec writes verbatim (uncompressed) subframes; tags are Vorbis comments.
type flacCodec struct{}

func (flacCodec) Format() Format { return Flac }

func (flacCodec) WriteTags(path string, tags audio.Tags) error {
	return audio.WriteVorbis(path, tags)
}

func (flacCodec) Encode(s Samples) ([]byte, error) {
	channels := s.Format.Channels
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("flac: unsupported channel count %d", channels)
	}
	frames := s.Frames()
	if frames == 0 {
		return nil, ErrNoSamples
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(s.Format.SampleRate),
		NChannels:     uint8(channels),
		BitsPerSample: uint8(s.Format.BitsPerSample),
		NSamples:      uint64(frames),
	}

	var buf bytes.Buffer
	enc, err := flac.NewEncoder(&buf, info)
	if err != nil {
		return nil, fmt.Errorf("flac: %w", err)
	}

	layout := frame.ChannelsMono
	if channels == 2 {
		layout = frame.ChannelsLR
	}

	for num, start := 0, 0; start < frames; num, start = num+1, start+flacBlockSize {
		n := min(flacBlockSize, frames-start)
		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(s.Format.SampleRate),
				Channels:          layout,
				BitsPerSample:     uint8(s.Format.BitsPerSample),
				Num:               uint64(num),
			},
			Subframes: make([]*frame.Subframe, channels),
		}
		for ch := 0; ch < channels; ch++ {
			samples := make([]int32, n)
			for i := range samples {
				samples[i] = s.Data[(start+i)*channels+ch]
			}
			f.Subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  n,
			}
		}
		if err := enc.WriteFrame(f); err != nil {
			return nil, fmt.Errorf("flac: frame %d: %w", num, err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("flac: %w", err)
	}
	return buf.Bytes(), nil
}
