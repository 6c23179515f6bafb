package notation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go-abcsynth/synth"
)

func TestLoadABCFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tune.abc")
	if err := os.WriteFile(path, []byte(sampleTune), 0644); err != nil {
		t.Fatal(err)
	}
	notes, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(notes) != 12 {
		t.Errorf("Expected 12 notes, got %d", len(notes))
	}
}

func TestLoadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	data := `[{"frequency":440,"duration":1},{"frequency":0,"duration":0.5},{"frequency":880,"duration":1,"velocity":0.5}]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	notes, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("Expected 3 notes, got %d", len(notes))
	}
	if notes[0].Velocity != 1 || notes[2].Velocity != 0.5 {
		t.Errorf("Unexpected velocities %v, %v", notes[0].Velocity, notes[2].Velocity)
	}
	if !notes[1].IsRest() {
		t.Errorf("Expected second note to be a rest")
	}
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"frequency":-1,"duration":1}]`), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.abc"), bad} {
		notes, err := Load(path)
		if !errors.Is(err, synth.ErrLoadFailure) {
			t.Errorf("%s: expected ErrLoadFailure, got %v", path, err)
		}
		if notes != nil {
			t.Errorf("%s: expected no notes on failure", path)
		}
	}

	_, err := Load(filepath.Join(dir, "missing.abc"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected underlying cause to be attached, got %v", err)
	}
}
