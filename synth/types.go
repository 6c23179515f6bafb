package synth

import (
	"errors"
	"fmt"
	"math"
)

// SampleRate is the fixed output rate in Hz
const SampleRate = 44100

// DefaultReferenceBPM is the tempo note durations are written against
const DefaultReferenceBPM = 120

// Sentinel errors, matched with errors.Is
var (
	ErrEmptyInput      = errors.New("no notes loaded")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrLoadFailure     = errors.New("load failed")
)

// Buffer is mono float64 samples at SampleRate, nominally in [-1, 1]
type Buffer []float64

// Seconds returns the buffer length in seconds
func (b Buffer) Seconds() float64 {
	return float64(len(b)) / SampleRate
}

// ADSR holds envelope phase lengths as fractions of the note, plus the sustain level
type ADSR struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

// DefaultADSR is the envelope used when nothing else is configured
var DefaultADSR = ADSR{Attack: 0.05, Decay: 0.1, Sustain: 0.7, Release: 0.1}

// Validate rejects negative or out-of-range fractions and time fractions summing past 1
func (e ADSR) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"attack", e.Attack},
		{"decay", e.Decay},
		{"sustain", e.Sustain},
		{"release", e.Release},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || f.v < 0 || f.v > 1 {
			return fmt.Errorf("%w: adsr %s %v outside [0,1]", ErrInvalidArgument, f.name, f.v)
		}
	}
	if sum := e.Attack + e.Decay + e.Release; sum > 1 {
		return fmt.Errorf("%w: adsr attack+decay+release %v exceeds 1", ErrInvalidArgument, sum)
	}
	return nil
}

// NoteEvent is one entry of a flat melodic line. Frequency 0 is a rest.
type NoteEvent struct {
	Frequency float64 `json:"frequency"`
	Duration  float64 `json:"duration"` // seconds at the reference tempo
	Velocity  float64 `json:"velocity"` // 0-1, scales amplitude; 0 means unset (full scale)
	ADSR      *ADSR   `json:"adsr,omitempty"`
}

// Note returns a full-velocity note event
func Note(freq, dur float64) NoteEvent {
	return NoteEvent{Frequency: freq, Duration: dur, Velocity: 1}
}

// Rest returns a silent event
func Rest(dur float64) NoteEvent {
	return NoteEvent{Duration: dur, Velocity: 1}
}

// Gain is the amplitude factor for the note. An unset velocity plays at full scale.
func (n NoteEvent) Gain() float64 {
	if n.Velocity == 0 {
		return 1
	}
	return n.Velocity
}

// IsRest reports whether the event produces silence
func (n NoteEvent) IsRest() bool {
	return n.Frequency == 0
}

// Params are the render-wide settings supplied once per render call
type Params struct {
	Waveform     Waveform
	Volume       float64
	BPM          int
	ReferenceBPM int
	PitchShift   int // semitones
	ADSR         ADSR
}

// DefaultParams matches the application defaults
func DefaultParams() Params {
	return Params{
		Waveform:     WaveSine,
		Volume:       0.5,
		BPM:          DefaultReferenceBPM,
		ReferenceBPM: DefaultReferenceBPM,
		ADSR:         DefaultADSR,
	}
}

// Validate checks volume, tempo and envelope. Waveform is never rejected.
func (p Params) Validate() error {
	if math.IsNaN(p.Volume) || p.Volume < 0 || p.Volume > 1 {
		return fmt.Errorf("%w: volume %v outside [0,1]", ErrInvalidArgument, p.Volume)
	}
	if p.BPM <= 0 {
		return fmt.Errorf("%w: bpm must be positive, got %d", ErrInvalidArgument, p.BPM)
	}
	if p.ReferenceBPM <= 0 {
		return fmt.Errorf("%w: reference bpm must be positive, got %d", ErrInvalidArgument, p.ReferenceBPM)
	}
	return p.ADSR.Validate()
}

// NoiseSpec selects a noise layer
type NoiseSpec struct {
	Color NoiseColor
	Level float64
}

// samplesFor converts seconds to a sample count
func samplesFor(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Round(SampleRate * seconds))
}
