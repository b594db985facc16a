// Package encoder turns a finished sample buffer into an encoded file.
//
// Formats form a closed set. Each Format resolves to a Codec through a
// static Table; a Codec encodes samples and writes the matching tag
// container:
//
//	format, err := encoder.ParseFormat("flac")
//	codec, err := encoder.DefaultTable().Lookup(format)
//
//	data, err := pool.Encode(ctx, codec, buf.Freeze())
//	err = codec.WriteTags(path, tags)
//
// Codec work is CPU bound and runs on a Pool, which caps how many
// encodes run at once independently of how many tracks are streaming.
package encoder
