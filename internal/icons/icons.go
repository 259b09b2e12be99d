package icons

import "strings"

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Set holds the glyphs used by the progress line. A Set is chosen once and
// never changes during a session, so the frame layout stays stable.
type Set struct {
	Playing  string
	Paused   string
	Seeking  string
	Finished string
	Stopped  string

	VolumeHigh string
	VolumeLow  string
	Muted      string

	BarFilled string
	BarEmpty  string

	// HintOpen and HintClose surround the key legend.
	HintOpen  string
	HintClose string
}

var (
	nerdSet = Set{
		Playing:    "\uf04b", // nf-fa-play
		Paused:     "\uf04c", // nf-fa-pause
		Seeking:    "\uf050", // nf-fa-fast_forward
		Finished:   "\uf00c", // nf-fa-check
		Stopped:    "\uf04d", // nf-fa-stop
		VolumeHigh: "\uf028", // nf-fa-volume_up
		VolumeLow:  "\uf027", // nf-fa-volume_down
		Muted:      "\uf026", // nf-fa-volume_off
		BarFilled:  "█",
		BarEmpty:   "░",
		HintOpen:   "«",
		HintClose:  "»",
	}

	unicodeSet = Set{
		Playing:    "▶",
		Paused:     "⏸",
		Seeking:    "⏩",
		Finished:   "■",
		Stopped:    "■",
		VolumeHigh: "🔊",
		VolumeLow:  "🔉",
		Muted:      "🔇",
		BarFilled:  "█",
		BarEmpty:   "░",
		HintOpen:   "«",
		HintClose:  "»",
	}

	noneSet = Set{
		Playing:    ">",
		Paused:     "=",
		Seeking:    ">>",
		Finished:   "#",
		Stopped:    "#",
		VolumeHigh: "vol",
		VolumeLow:  "vol",
		Muted:      "mute",
		BarFilled:  "#",
		BarEmpty:   "-",
		HintOpen:   "<<",
		HintClose:  ">>",
	}
)

// For returns the icon set of a style. Unknown styles get the unicode set.
func For(style Style) Set {
	switch style {
	case StyleNerd:
		return nerdSet
	case StyleNone:
		return noneSet
	default:
		return unicodeSet
	}
}

// Resolve picks the style from the configured name, with nerd fonts forced on
// when the flag or the environment asks for them.
func Resolve(configured string, nerdFlag bool, env string) Style {
	if nerdFlag || envEnabled(env) {
		return StyleNerd
	}
	switch s := Style(strings.ToLower(strings.TrimSpace(configured))); s {
	case StyleNerd, StyleUnicode, StyleNone:
		return s
	default:
		return StyleUnicode
	}
}

func envEnabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

// Volume returns the volume indicator for the given level.
func (s Set) Volume(volume float64, muted bool) string {
	switch {
	case muted || volume <= 0:
		return s.Muted
	case volume < 0.5:
		return s.VolumeLow
	default:
		return s.VolumeHigh
	}
}

// Bar renders a fixed-width bar filled to fraction (clamped to [0,1]).
func (s Set) Bar(fraction float64, width int) (filled, empty string) {
	if width <= 0 {
		return "", ""
	}
	fraction = min(max(fraction, 0), 1)
	n := int(fraction*float64(width) + 0.5)
	return strings.Repeat(s.BarFilled, n), strings.Repeat(s.BarEmpty, width-n)
}
