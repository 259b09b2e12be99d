package meta

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dhowden/tag"
)

// Cover images looked up next to the track, by priority.
var (
	coverStems = []string{"cover", "folder", "front", "album"}
	coverExts  = []string{".jpg", ".jpeg", ".png"}
)

// CoverPath returns the absolute path of a cover image in the track's
// directory, matching names case-insensitively, or "" when there is none.
func CoverPath(trackPath string) string {
	dir := filepath.Dir(trackPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files[strings.ToLower(e.Name())] = e.Name()
		}
	}

	for _, stem := range coverStems {
		for _, ext := range coverExts {
			if name, ok := files[stem+ext]; ok {
				path, err := filepath.Abs(filepath.Join(dir, name))
				if err != nil {
					return ""
				}
				return path
			}
		}
	}
	return ""
}

// CoverFile returns a cover image path for the track: a folder image when
// there is one, otherwise embedded art extracted into the user cache.
// It returns "" when the track has no art.
func CoverFile(trackPath string) string {
	if path := CoverPath(trackPath); path != "" {
		return path
	}
	return cacheCover(trackPath, filepath.Join(xdg.CacheHome, "soundplay", "covers"))
}

// cacheCover writes the embedded art of trackPath under dir, keyed by the
// track's absolute path, and returns the image path.
func cacheCover(trackPath, dir string) string {
	data, mimeType := embeddedCover(trackPath)
	if len(data) == 0 {
		return ""
	}

	abs, err := filepath.Abs(trackPath)
	if err != nil {
		abs = trackPath
	}
	sum := sha256.Sum256([]byte(abs))
	path := filepath.Join(dir, hex.EncodeToString(sum[:])+imageExt(mimeType, data))

	if _, err := os.Stat(path); err == nil {
		return path
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ""
	}
	return path
}

func embeddedCover(path string) (data []byte, mimeType string) {
	if strings.EqualFold(filepath.Ext(path), ".flac") {
		if data, mimeType = flacPicture(path); data != nil {
			return data, mimeType
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, ""
	}
	pic := m.Picture()
	if pic == nil {
		return nil, ""
	}
	return pic.Data, pic.MIMEType
}

func imageExt(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
