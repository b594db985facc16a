// Package model defines the core data structures shared by the
// spotify-dl packages.
//
// # Identifiers
//
// TrackID names one item in the provider catalog. It is parsed from a
// URI or an open.spotify.com URL:
//
//	id, err := model.ParseID("spotify:track:4uLU6hMCjMI75M1A2tKUQC")
//	id, err := model.ParseID("https://open.spotify.com/album/1DFixLWuPkv3KT3TnV35m3?si=x")
//
// Albums and playlists are collections; they expand into an ordered list
// of Track values, each carrying its 1-based Position.
//
// # Metadata
//
// TrackMetadata is resolved once per pipeline and never mutated. It
// drives the display name, the output file name and the embedded tags:
//
//	meta.DisplayName() // "A, B, C, and others - Title"
//
// # Audio format
//
// Samples travel through the pipeline as interleaved int32 values at
// CDQuality. EstimateBytes converts a duration into the byte total used
// to scale progress bars.
package model
