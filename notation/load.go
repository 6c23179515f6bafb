// Package notation turns notation files into flat note sequences.
package notation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go-abcsynth/debug"
	"go-abcsynth/synth"
)

// Load reads a notation file and returns its notes in playback order.
// The format is chosen by extension: .json note lists, anything else as ABC.
func Load(path string) ([]synth.NoteEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", synth.ErrLoadFailure, err)
	}

	var notes []synth.NoteEvent
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		notes, err = ParseJSON(data)
	default:
		notes, err = ParseABC(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", synth.ErrLoadFailure, path, err)
	}

	debug.Log("notation", "loaded %d notes from %s", len(notes), path)
	return notes, nil
}

// ParseJSON reads an explicit note list
func ParseJSON(data []byte) ([]synth.NoteEvent, error) {
	var notes []synth.NoteEvent
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, err
	}
	for i := range notes {
		n := &notes[i]
		if n.Frequency < 0 || n.Duration < 0 {
			return nil, fmt.Errorf("note %d: negative frequency or duration", i)
		}
		n.Velocity = n.Gain()
		if n.Velocity < 0 || n.Velocity > 1 {
			return nil, fmt.Errorf("note %d: velocity %v outside [0,1]", i, n.Velocity)
		}
	}
	return notes, nil
}
