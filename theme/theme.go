package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Cursor     rune // ▶ highlighted menu row
	Selected   rune // ● chosen option in a popup
	Unselected rune // ○ other options
	MeterFull  rune // █ filled part of a level bar
	MeterEmpty rune // ░ remainder
}

func New(palette *Palette) *Theme {
	if palette == nil || len(palette.Colors) == 0 {
		palette = Plasma()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Cursor:     '▶',
			Selected:   '●',
			Unselected: '○',
			MeterFull:  '█',
			MeterEmpty: '░',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted   = 0.25 // purple-magenta
	RoleFG      = 0.4  // pink-purple (readable)
	RoleAccent  = 0.5  // vivid magenta
	RoleCursor  = 0.6  // rose pink
	RoleWarning = 0.8  // orange
)

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// Meter draws a level bar of width cells, each cell colored by its position
func (t *Theme) Meter(level float64, width int) string {
	filled := int(level*float64(width) + 0.5)
	filled = max(0, min(width, filled))

	var out strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			norm := float64(i) / float64(max(1, width-1))
			out.WriteString(lipgloss.NewStyle().Foreground(t.Color(norm)).Render(string(t.Symbols.MeterFull)))
		} else {
			out.WriteRune(t.Symbols.MeterEmpty)
		}
	}
	return out.String()
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
