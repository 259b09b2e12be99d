package meta

import (
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// readID3 reads MP3 tags with the id3v2 library. dhowden/tag gives up on
// some UTF-16 encoded frames that id3v2 handles.
func readID3(path string, info *Info) error {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer t.Close()

	fill(&info.Title, t.Title())
	fill(&info.Artist, t.Artist())
	fill(&info.Artist, id3Text(t, "TPE2"))
	fill(&info.Album, t.Album())
	if info.Track == 0 {
		info.Track = parseTrack(id3Text(t, "TRCK"))
	}
	return nil
}

func id3Text(t *id3v2.Tag, frameID string) string {
	frames := t.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

// parseTrack parses "N" or "N/M" and returns N, or 0.
func parseTrack(s string) int {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
