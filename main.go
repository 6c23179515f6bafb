package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-abcsynth/audio"
	"go-abcsynth/config"
	"go-abcsynth/debug"
	"go-abcsynth/sequencer"
	"go-abcsynth/theme"
	"go-abcsynth/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Printf("Debug log unavailable: %v\n", err)
		}
	}
	defer debug.Disable()

	// Load theme
	palette, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		debug.Log("main", "palette %s: %v", cfg.UI.Palette, err)
		palette = theme.Plasma()
	}
	th := theme.New(palette)

	cfgPath, err := config.ConfigPath()
	if err != nil {
		cfgPath = ""
	}
	manager := sequencer.NewManager(cfg, cfgPath, audio.NewSpeaker(), sequencer.OpenMIDISender)

	// A path on the command line wins over the last file used
	path := cfg.Paths.Notation
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path != "" {
		if err := manager.Load(path); err != nil {
			manager.SetStatus("Error: %v", err)
		} else {
			manager.SetStatus("Loaded %d notes from %s", len(manager.Notes()), path)
		}
	}

	m := tui.NewModel(manager, th)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
