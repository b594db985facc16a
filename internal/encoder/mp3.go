package encoder

import (
	"bytes"
	"fmt"

	"github.com/braheezy/shine-mp3/pkg/mp3"

	"github.com/handiism/spotify-dl/internal/audio"
)

// mp3FrameSamples is the number of samples per channel in one MPEG-1
// layer III frame. The encoder reads whole frames, so input is padded
// with silence to a multiple of it.
const mp3FrameSamples = 1152

// mp3Codec encodes with the shine fixed-point encoder; tags are ID3v2.4.
type mp3Codec struct{}

func (mp3Codec) Format() Format { return Mp3 }

func (mp3Codec) WriteTags(path string, tags audio.Tags) error {
	return audio.WriteID3(path, tags)
}

func (mp3Codec) Encode(s Samples) ([]byte, error) {
	if s.Frames() == 0 {
		return nil, ErrNoSamples
	}

	pass := mp3FrameSamples * s.Format.Channels
	pcm := make([]int16, (len(s.Data)+pass-1)/pass*pass)
	for i, v := range s.Data {
		pcm[i] = int16(max(-32768, min(32767, v)))
	}

	var buf bytes.Buffer
	enc := mp3.NewEncoder(s.Format.SampleRate, s.Format.Channels)
	if err := enc.Write(&buf, pcm); err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	return buf.Bytes(), nil
}
