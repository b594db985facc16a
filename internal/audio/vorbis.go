package audio

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
)

// vendorString identifies the writer in new Vorbis comment blocks.
const vendorString = "spotify-dl"

// WriteVorbis writes Vorbis comments and a front cover PICTURE block
// into the FLAC file at path.
//
// Existing comment fields that are set here are replaced; unrelated
// fields survive. A missing comment block is created.
func WriteVorbis(path string, tags Tags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	f, err := goflac.ParseBytes(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	cmts, idx, err := vorbisBlock(f)
	if err != nil {
		return err
	}

	cmts.Comments = withoutFields(cmts.Comments,
		flacvorbis.FIELD_TITLE, flacvorbis.FIELD_ARTIST, flacvorbis.FIELD_ALBUM,
		flacvorbis.FIELD_DATE, flacvorbis.FIELD_TRACKNUMBER)

	fields := [][2]string{{flacvorbis.FIELD_TITLE, tags.Title}, {flacvorbis.FIELD_ALBUM, tags.Album}}
	for _, artist := range tags.Artists {
		fields = append(fields, [2]string{flacvorbis.FIELD_ARTIST, artist})
	}
	if tags.Year > 0 {
		fields = append(fields, [2]string{flacvorbis.FIELD_DATE, strconv.Itoa(tags.Year)})
	}
	if tags.Position > 0 {
		fields = append(fields, [2]string{flacvorbis.FIELD_TRACKNUMBER, strconv.Itoa(tags.Position)})
	}
	for _, kv := range fields {
		if err := cmts.Add(kv[0], kv[1]); err != nil {
			return fmt.Errorf("vorbis comment %s: %w", kv[0], err)
		}
	}

	block := cmts.Marshal()
	if idx >= 0 {
		f.Meta[idx] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}

	if tags.Cover != nil {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front cover", tags.Cover, "image/jpeg")
		if err != nil {
			return fmt.Errorf("cover picture: %w", err)
		}
		f.Meta = withoutPictures(f.Meta)
		picBlock := pic.Marshal()
		f.Meta = append(f.Meta, &picBlock)
	}

	return f.Save(path)
}

// vorbisBlock returns the file's comment block and its index, or a new
// block and -1.
func vorbisBlock(f *goflac.File) (*flacvorbis.MetaDataBlockVorbisComment, int, error) {
	for i, meta := range f.Meta {
		if meta.Type != goflac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return nil, 0, fmt.Errorf("parse vorbis comments: %w", err)
		}
		return cmts, i, nil
	}

	cmts := flacvorbis.New()
	cmts.Vendor = vendorString
	return cmts, -1, nil
}

func withoutFields(comments []string, names ...string) []string {
	kept := comments[:0]
	for _, c := range comments {
		drop := false
		for _, name := range names {
			if len(c) > len(name) && c[len(name)] == '=' && strings.EqualFold(c[:len(name)], name) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, c)
		}
	}
	return kept
}

func withoutPictures(blocks []*goflac.MetaDataBlock) []*goflac.MetaDataBlock {
	kept := blocks[:0]
	for _, b := range blocks {
		if b.Type != goflac.Picture {
			kept = append(kept, b)
		}
	}
	return kept
}
