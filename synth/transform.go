package synth

import (
	"fmt"
	"math"
)

// Transform maps a note's nominal frequency and duration to rendered values.
// Rests keep frequency 0.
func Transform(note NoteEvent, pitchShift, bpm, referenceBPM int) (freq, dur float64, err error) {
	if bpm <= 0 {
		return 0, 0, fmt.Errorf("%w: bpm must be positive, got %d", ErrInvalidArgument, bpm)
	}
	if referenceBPM <= 0 {
		return 0, 0, fmt.Errorf("%w: reference bpm must be positive, got %d", ErrInvalidArgument, referenceBPM)
	}
	if math.IsNaN(note.Duration) || math.IsInf(note.Duration, 0) || note.Duration < 0 {
		return 0, 0, fmt.Errorf("%w: note duration %v", ErrInvalidArgument, note.Duration)
	}
	if math.IsNaN(note.Frequency) || math.IsInf(note.Frequency, 0) || note.Frequency < 0 {
		return 0, 0, fmt.Errorf("%w: note frequency %v", ErrInvalidArgument, note.Frequency)
	}

	freq = note.Frequency
	if !note.IsRest() && pitchShift != 0 {
		freq *= math.Pow(2, float64(pitchShift)/12)
	}
	dur = note.Duration * float64(referenceBPM) / float64(bpm)
	return freq, dur, nil
}

// RenderedSamples returns the sample count a note will occupy after transformation
func RenderedSamples(note NoteEvent, p Params) (int, error) {
	_, dur, err := Transform(note, p.PitchShift, p.BPM, p.ReferenceBPM)
	if err != nil {
		return 0, err
	}
	return samplesFor(dur), nil
}
