package meta

import (
	"fmt"

	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
)

// parseFLAC parses the metadata blocks of a FLAC file. go-flac indexes into
// the frame data that follows the metadata and panics when there is none,
// so a panic is reported as a malformed file.
func parseFLAC(path string) (f *goflac.File, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, fmt.Errorf("parse flac %s: malformed file: %v", path, r)
		}
	}()
	return goflac.ParseFile(path)
}

// readFLAC reads the Vorbis comment block of a FLAC file.
func readFLAC(path string, info *Info) error {
	f, err := parseFLAC(path)
	if err != nil {
		return err
	}

	for _, block := range f.Meta {
		if block.Type != goflac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return err
		}
		get := func(key string) string {
			values, err := cmts.Get(key)
			if err != nil || len(values) == 0 {
				return ""
			}
			return values[0]
		}
		fill(&info.Title, get(flacvorbis.FIELD_TITLE))
		fill(&info.Artist, get(flacvorbis.FIELD_ARTIST))
		fill(&info.Artist, get("ALBUMARTIST"))
		fill(&info.Album, get(flacvorbis.FIELD_ALBUM))
		if info.Track == 0 {
			info.Track = parseTrack(get(flacvorbis.FIELD_TRACKNUMBER))
		}
		return nil
	}
	return nil
}

// flacPicture returns the front cover embedded in a FLAC file, or the
// first picture when there is no front cover.
func flacPicture(path string) (data []byte, mimeType string) {
	f, err := parseFLAC(path)
	if err != nil {
		return nil, ""
	}

	for _, block := range f.Meta {
		if block.Type != goflac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*block)
		if err != nil {
			continue
		}
		if data == nil || pic.PictureType == flacpicture.PictureTypeFrontCover {
			data, mimeType = pic.ImageData, pic.MIME
		}
		if pic.PictureType == flacpicture.PictureTypeFrontCover {
			break
		}
	}
	return data, mimeType
}
