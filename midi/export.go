package midi

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-abcsynth/debug"
	"go-abcsynth/notation"
	"go-abcsynth/synth"
)

// Resolution is ticks per quarter note in exported files
const Resolution = 960

// Export writes notes as a single-track Standard MIDI File. The file tempo
// is p.BPM; durations are laid out in ticks at that tempo.
func Export(w io.Writer, notes []synth.NoteEvent, p synth.Params, channel uint8) error {
	if len(notes) == 0 {
		return synth.ErrEmptyInput
	}
	sched, err := BuildSchedule(notes, p, channel)
	if err != nil {
		return err
	}

	// Deltas are differences of rounded absolute tick times
	bpm := float64(p.BPM)
	var at time.Duration
	var last uint32
	delta := func(d time.Duration) uint32 {
		at += d
		abs := uint32(math.Round(at.Seconds() * bpm / 60 * Resolution))
		dt := abs - last
		last = abs
		return dt
	}

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(bpm))
	for _, st := range sched.Steps {
		tr.Add(delta(st.Delta), st.Event.Message())
	}
	tr.Close(delta(sched.Tail))

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(Resolution)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	return nil
}

// ExportFile reads a notation file and writes it to out at the reference
// tempo with no pitch shift, independent of any render settings.
func ExportFile(src, out string) error {
	notes, err := notation.Load(src)
	if err != nil {
		return err
	}
	return ExportNotes(out, notes, synth.DefaultParams(), 0)
}

// ExportNotes writes notes to a .mid file at path
func ExportNotes(path string, notes []synth.NoteEvent, p synth.Params, channel uint8) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Export(f, notes, p, channel); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	debug.Log("midi", "exported %d notes to %s", len(notes), path)
	return nil
}
