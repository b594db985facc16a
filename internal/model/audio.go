package model

import "time"

// AudioFormat describes interleaved PCM samples.
type AudioFormat struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// CDQuality is the fixed format every pipeline works in: 44.1 kHz,
// stereo, 16 significant bits per sample.
var CDQuality = AudioFormat{SampleRate: 44100, Channels: 2, BitsPerSample: 16}

// StoredSampleBytes is the in-memory width of one sample. Samples keep
// 16 significant bits but are held as int32.
const StoredSampleBytes = 4

// EstimateBytes returns duration × rate × channels × StoredSampleBytes.
// The result only scales progress; actual deliveries may exceed it.
func (f AudioFormat) EstimateBytes(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	samples := int64(d.Seconds() * float64(f.SampleRate))
	return samples * int64(f.Channels) * StoredSampleBytes
}
