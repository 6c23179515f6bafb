package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const rule = "─────────────────────────────────────────────────"

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderDialog frames a prompt between rules with a key hint underneath
func RenderDialog(body, hint string) string {
	var out strings.Builder
	out.WriteString(rule + "\n")
	out.WriteString("\n" + body + "\n")
	if hint != "" {
		out.WriteString("\n" + hint + "\n")
	}
	out.WriteString("\n" + rule + "\n")
	return out.String()
}

// RenderOptions lists choices, highlighting the cursor row and marking the
// currently chosen option
func RenderOptions(options []string, cursor, chosen int, color [3]uint8) string {
	hl := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color))).Bold(true)

	var lines []string
	for i, opt := range options {
		mark := "○"
		if i == chosen {
			mark = "●"
		}
		line := fmt.Sprintf("  %s %s", mark, opt)
		if i == cursor {
			line = hl.Render(fmt.Sprintf("> %s %s", mark, opt))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
