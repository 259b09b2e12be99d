package progress

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

var (
	colorFrom   = lipgloss.Color("#a78bfa")
	colorTo     = lipgloss.Color("#f1a208")
	colorMuted  = lipgloss.Color("#808080")
	colorSubtle = lipgloss.Color("#585858")
	colorBase   = lipgloss.Color("#c0c0c0")
	colorVolume = lipgloss.Color("#42b883")
)

type styles struct {
	r      *lipgloss.Renderer
	icon   lipgloss.Style
	time   lipgloss.Style
	empty  lipgloss.Style
	volume lipgloss.Style
	hint   lipgloss.Style
}

// newStyles binds the palette to r, whose colour profile follows the stream
// the frames are written to. A nil renderer uses lipgloss' default.
func newStyles(r *lipgloss.Renderer) styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return styles{
		r:      r,
		icon:   r.NewStyle().Foreground(colorFrom),
		time:   r.NewStyle().Foreground(colorBase),
		empty:  r.NewStyle().Foreground(colorSubtle),
		volume: r.NewStyle().Foreground(colorVolume),
		hint:   r.NewStyle().Foreground(colorMuted),
	}
}

// gradient colours text cell by cell from colorFrom to colorTo, blending in
// HCL space.
func (s styles) gradient(text string) string {
	if text == "" {
		return ""
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	if len(clusters) == 1 {
		return s.r.NewStyle().Foreground(colorFrom).Render(text)
	}

	from, _ := colorful.Hex(string(colorFrom))
	to, _ := colorful.Hex(string(colorTo))

	var b strings.Builder
	for i, cluster := range clusters {
		t := float64(i) / float64(len(clusters)-1)
		c := from.BlendHcl(to, t).Clamped()
		b.WriteString(s.r.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(cluster))
	}
	return b.String()
}
