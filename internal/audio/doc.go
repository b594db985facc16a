// Package audio writes and reads the metadata embedded in output files
// and generates playlists for collections.
//
// # Tagging
//
// Tags are built from resolved track metadata and written by a
// format-specific writer:
//
//	tags := audio.TagsFromMetadata(meta, coverJPEG)
//	err := audio.WriteID3(path, tags)    // MP3, ID3v2.4
//	err := audio.WriteVorbis(path, tags) // FLAC, Vorbis comments + PICTURE
//
// Both writers create the tag structure when the file has none.
//
// ReadTags reads tags back from either format.
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist("Road Trip", entries)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
