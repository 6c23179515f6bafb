package midi

import (
	"math"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-abcsynth/notation"
	"go-abcsynth/synth"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// Event is a single channel message in a schedule
type Event struct {
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8 // 0-15
	Note     uint8
	Velocity uint8
}

// Message encodes the event for a port or SMF track
func (e Event) Message() gomidi.Message {
	if e.Type == NoteOn {
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	}
	return gomidi.NoteOff(e.Channel, e.Note)
}

// Step is an event preceded by a wait
type Step struct {
	Delta time.Duration
	Event Event
}

// Schedule is a note sequence flattened to timed NoteOn/NoteOff pairs.
// Tail is silence after the last NoteOff (trailing rests).
type Schedule struct {
	Steps []Step
	Tail  time.Duration
}

// Duration is the total length of the schedule
func (s Schedule) Duration() time.Duration {
	total := s.Tail
	for _, st := range s.Steps {
		total += st.Delta
	}
	return total
}

// BuildSchedule applies the render tempo and pitch shift to notes and lays
// them out on one channel. Rests only lengthen the next wait.
func BuildSchedule(notes []synth.NoteEvent, p synth.Params, channel uint8) (Schedule, error) {
	var sched Schedule
	var pending time.Duration

	for _, n := range notes {
		freq, dur, err := synth.Transform(n, p.PitchShift, p.BPM, p.ReferenceBPM)
		if err != nil {
			return Schedule{}, err
		}
		d := seconds(dur)
		if freq == 0 {
			pending += d
			continue
		}

		key := KeyForFrequency(freq)
		vel := VelocityByte(n.Gain())
		sched.Steps = append(sched.Steps,
			Step{Delta: pending, Event: Event{Type: NoteOn, Channel: channel & 0x0F, Note: key, Velocity: vel}},
			Step{Delta: d, Event: Event{Type: NoteOff, Channel: channel & 0x0F, Note: key}},
		)
		pending = 0
	}
	sched.Tail = pending
	return sched, nil
}

// KeyForFrequency returns the nearest MIDI key, clamped to 0-127
func KeyForFrequency(freq float64) uint8 {
	key := notation.FrequencyToMIDI(freq)
	if key < 0 {
		return 0
	}
	if key > 127 {
		return 127
	}
	return uint8(key)
}

// VelocityByte maps a [0,1] velocity onto 1-127
func VelocityByte(v float64) uint8 {
	b := int(math.Round(v * 127))
	if b < 1 {
		return 1
	}
	if b > 127 {
		return 127
	}
	return uint8(b)
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
