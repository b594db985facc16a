// Package download runs the per-track pipelines for a batch of tracks.
//
// # Downloader
//
// The Downloader coordinates the whole process for every track:
//
//  1. Resolve track metadata
//  2. Derive the output file name, skipping files that already exist
//  3. Stream the samples through a stream.Session
//  4. Encode the buffered samples on the codec pool
//  5. Write the file and its tags through a staging ".part" file
//  6. Write a playlist of the finished files (optional)
//
// At most Options.Parallel pipelines run at once. A failing track marks
// its progress bar failed and never stops the other tracks; the only
// errors DownloadTracks returns are setup errors found before any track
// starts.
//
// # Basic Usage
//
//	d := download.NewDownloader(session, streamer, hub, logger)
//	err := d.DownloadTracks(ctx, tracks, download.Options{
//	    Destination: "music",
//	    Parallel:    5,
//	    Format:      encoder.Flac,
//	})
package download
