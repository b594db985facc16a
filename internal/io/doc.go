// Package ioutils provides file system and image processing utilities.
//
// # Output files
//
// Tracks are written through a PartFile: the encoded bytes land in a
// hidden ".part" sibling, tags are written there, and Commit renames it
// into place. Discard removes it, so a failed track never leaves a file
// at its final path.
//
//	part := ioutils.NewPartFile("/music/A - T.flac")
//	defer part.Discard()
//	if err := part.Write(data); err != nil { ... }
//	if err := tagger(part.Path()); err != nil { ... }
//	err := part.Commit()
//
// # Filename Sanitization
//
// SanitizeFileName removes characters that are invalid in file names on
// common platforms. It is idempotent:
//
//	ioutils.SanitizeFileName(`AC/DC - "Back"`, false) // "ACDC - Back"
//
// # Image Processing
//
// The ImageService normalizes cover art before it is embedded:
//
//	svc := ioutils.NewImageService()
//	jpeg, err := svc.PrepareCover(ctx, raw, 1000)
package ioutils
