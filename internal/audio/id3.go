package audio

import (
	"strconv"

	"github.com/bogem/id3v2"
)

// WriteID3 writes an ID3v2.4 tag into the MP3 file at path.
//
// An existing tag is parsed and updated; a file without one gets a new
// tag. Text frames are UTF-8. The cover replaces any attached pictures
// as the front cover.
func WriteID3(path string, tags Tags) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tag.SetTitle(tags.Title)
	tag.SetArtist(tags.Artist())
	tag.SetAlbum(tags.Album)

	if tags.Year > 0 {
		tag.SetYear(strconv.Itoa(tags.Year))
	}

	if tags.Position > 0 {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), id3v2.EncodingUTF8, strconv.Itoa(tags.Position))
	}

	if tags.Cover != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     tags.Cover,
		})
	}

	return tag.Save()
}
