package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/soundplay/internal/icons"
	"github.com/llehouerou/soundplay/internal/keymap"
	"github.com/llehouerou/soundplay/internal/playback"
)

const (
	barWidth       = 24
	volumeBarWidth = 10
	unknownTime    = "--:--"
)

// Formatter builds progress frames. Its icon set and colours are fixed at
// construction so every frame has the same structure.
type Formatter struct {
	icons       icons.Set
	keys        *keymap.Resolver
	interactive bool
	styles      styles
}

func NewFormatter(set icons.Set, keys *keymap.Resolver, interactive bool, r *lipgloss.Renderer) *Formatter {
	if keys == nil {
		keys = keymap.Default()
	}
	return &Formatter{
		icons:       set,
		keys:        keys,
		interactive: interactive,
		styles:      newStyles(r),
	}
}

// Frame formats one progress line, clipped to width cells when width > 0.
//
//	▶ 1:23 / 4:56 [████░░░░] 28% 🔊 [█████░░░░░] 100% « space pause · ←/→ seek »
func (f *Formatter) Frame(s playback.Snapshot, width int) string {
	var b strings.Builder

	b.WriteString(f.styles.icon.Render(f.stateIcon(s.State)))
	b.WriteByte(' ')
	b.WriteString(f.styles.time.Render(FormatTime(s.Elapsed) + " / " + formatTotal(s.Total)))
	b.WriteString(" [")
	filled, empty := f.icons.Bar(s.Progress(), barWidth)
	b.WriteString(f.styles.gradient(filled))
	b.WriteString(f.styles.empty.Render(empty))
	b.WriteString("] ")
	b.WriteString(formatPercent(s))

	b.WriteByte(' ')
	b.WriteString(f.styles.icon.Render(f.icons.Volume(s.Volume, s.Muted)))
	b.WriteString(" [")
	filled, empty = f.icons.Bar(s.Volume, volumeBarWidth)
	if s.Muted {
		filled, empty = f.icons.Bar(0, volumeBarWidth)
	}
	b.WriteString(f.styles.volume.Render(filled))
	b.WriteString(f.styles.empty.Render(empty))
	b.WriteString("] ")
	fmt.Fprintf(&b, "%3d%%", int(s.Volume*100+0.5))

	if f.interactive {
		b.WriteByte(' ')
		b.WriteString(f.styles.hint.Render(f.hint(s)))
	}

	line := b.String()
	if width > 0 && ansi.StringWidth(line) > width {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

func (f *Formatter) stateIcon(s playback.State) string {
	switch s {
	case playback.Paused:
		return f.icons.Paused
	case playback.Seeking:
		return f.icons.Seeking
	case playback.Finished:
		return f.icons.Finished
	case playback.Stopped:
		return f.icons.Stopped
	default:
		return f.icons.Playing
	}
}

func (f *Formatter) hint(s playback.Snapshot) string {
	legend := keymap.Legend(f.keys, s.State.IsPaused(), s.Muted)
	parts := make([]string, 0, len(legend))
	for _, b := range legend {
		parts = append(parts, helpText(b))
	}
	return f.icons.HintOpen + " " + strings.Join(parts, " · ") + " " + f.icons.HintClose
}

func helpText(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}

func formatPercent(s playback.Snapshot) string {
	if s.Total <= 0 {
		return " --%"
	}
	return fmt.Sprintf("%3d%%", int(s.Progress()*100))
}

func formatTotal(d time.Duration) string {
	if d <= 0 {
		return unknownTime
	}
	return FormatTime(d)
}

// FormatTime renders d as m:ss, or h:mm:ss from one hour up.
func FormatTime(d time.Duration) string {
	d = max(d, 0)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Header describes the file being played.
type Header struct {
	Title      string
	Artist     string
	Codec      string
	SampleRate int
	Channels   int
	Size       int64
}

// Line formats the header as one line clipped to width cells.
//
//	Title - Artist  (FLAC · 44.1 kHz · stereo · 23 MB)
func (h Header) Line(width int) string {
	name := h.Title
	if h.Artist != "" {
		if name == "" {
			name = h.Artist
		} else {
			name += " - " + h.Artist
		}
	}

	var info []string
	if h.Codec != "" {
		info = append(info, h.Codec)
	}
	if h.SampleRate > 0 {
		info = append(info, formatRate(h.SampleRate))
	}
	switch h.Channels {
	case 0:
	case 1:
		info = append(info, "mono")
	case 2:
		info = append(info, "stereo")
	default:
		info = append(info, fmt.Sprintf("%dch", h.Channels))
	}
	if h.Size > 0 {
		info = append(info, humanize.Bytes(uint64(h.Size)))
	}

	line := name
	if len(info) > 0 {
		details := "(" + strings.Join(info, " · ") + ")"
		if line == "" {
			line = details
		} else {
			line += "  " + details
		}
	}
	line = sanitize(line)
	if width > 0 {
		line = runewidth.Truncate(line, width, "…")
	}
	return line
}

func formatRate(hz int) string {
	if hz%1000 == 0 {
		return fmt.Sprintf("%d kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f kHz", float64(hz)/1000)
}

// sanitize drops control characters so tag values cannot move the cursor.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f) {
			return -1
		}
		return r
	}, s)
}
