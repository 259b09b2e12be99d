// Package meta reads descriptive tags and the container-reported length of
// an audio file. It never decodes audio; playback works without it.
package meta

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// Info is what the session shows and exports about a file.
type Info struct {
	Path   string
	Title  string
	Artist string
	Album  string
	Track  int
	// Length is the duration reported by the container, 0 when unknown.
	Length time.Duration
}

// DisplayTitle returns the title, or the file name without extension.
func (i Info) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	base := filepath.Base(i.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Reader is the metadata provider used by the session.
type Reader interface {
	Read(path string) (Info, error)
}

// TagReader reads tags with dhowden/tag, retries MP3 and FLAC files with
// the format-specific libraries, and finally falls back to TagLib for
// formats none of them handle (Opus, some MP4 variants).
type TagReader struct{}

// Read returns whatever could be found. The error is non-nil only when no
// source produced anything.
func (TagReader) Read(path string) (Info, error) {
	info := Info{Path: path}

	errs := []error{readTag(path, &info)}
	if errs[0] != nil || info.Title == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".mp3":
			errs = append(errs, readID3(path, &info))
		case ".flac":
			errs = append(errs, readFLAC(path, &info))
		}
	}
	if info.Title == "" {
		errs = append(errs, readTaglib(path, &info))
	}
	if failed(errs) {
		return info, errors.Join(errs...)
	}

	if props, err := taglib.ReadProperties(path); err == nil {
		info.Length = props.Length
	}
	return info, nil
}

func readTag(path string, info *Info) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return err
	}

	info.Title = strings.TrimSpace(m.Title())
	info.Artist = strings.TrimSpace(m.Artist())
	if info.Artist == "" {
		info.Artist = strings.TrimSpace(m.AlbumArtist())
	}
	info.Album = strings.TrimSpace(m.Album())
	info.Track, _ = m.Track()
	return nil
}

func readTaglib(path string, info *Info) error {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return err
	}
	tags := taglibTags(raw)

	fill(&info.Title, tags.get(taglib.Title))
	fill(&info.Artist, tags.get(taglib.Artist, taglib.AlbumArtist))
	fill(&info.Album, tags.get(taglib.Album))
	if info.Track == 0 {
		info.Track = parseTrack(tags.get(taglib.TrackNumber))
	}
	return nil
}

// failed reports whether every reader failed.
func failed(errs []error) bool {
	for _, err := range errs {
		if err == nil {
			return false
		}
	}
	return true
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}
