package widgets

import (
	"strings"
	"testing"
)

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{
		{Title: "Menu", Keys: []KeyBinding{
			{Key: "j / k", Desc: "navigate"},
			{Key: "enter", Desc: "select"},
		}},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected title plus 2 bindings, got %d lines", len(lines))
	}
	if lines[0] != "Menu" {
		t.Errorf("Expected title first, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "  enter") || !strings.HasSuffix(lines[2], "select") {
		t.Errorf("Unexpected binding line %q", lines[2])
	}
}

func TestRenderOptions(t *testing.T) {
	out := RenderOptions([]string{"sine", "square", "sawtooth"}, 2, 0, [3]uint8{255, 0, 0})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "  ● sine" {
		t.Errorf("Expected chosen marker on sine, got %q", lines[0])
	}
	if lines[1] != "  ○ square" {
		t.Errorf("Expected plain square row, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "> ○ sawtooth") {
		t.Errorf("Expected cursor on sawtooth, got %q", lines[2])
	}
}

func TestRenderDialog(t *testing.T) {
	out := RenderDialog("Exit? ", "[y] Yes    [n] No")
	if !strings.Contains(out, "Exit?") || !strings.Contains(out, "[y] Yes") {
		t.Errorf("Dialog missing content: %q", out)
	}
	if strings.Count(out, rule) != 2 {
		t.Errorf("Expected dialog framed by two rules")
	}
}
