package mpris

import (
	"net/url"

	"github.com/llehouerou/soundplay/internal/meta"
)

// artURL returns a file:// URL for the track's cover image, or "".
func artURL(trackPath string) string {
	path := meta.CoverFile(trackPath)
	if path == "" {
		return ""
	}
	return (&url.URL{Scheme: "file", Path: path}).String()
}
