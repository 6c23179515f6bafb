package synth

import (
	"math"
	"strings"
)

// Waveform selects the oscillator shape
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
	waveformCount
)

var waveformNames = [waveformCount]string{
	WaveSine:     "sine",
	WaveSquare:   "square",
	WaveSawtooth: "sawtooth",
	WaveTriangle: "triangle",
}

// shapeFunc maps a phase in [0,1) to a bipolar sample
type shapeFunc func(phase float64) float64

var waveTable = [waveformCount]shapeFunc{
	WaveSine: func(p float64) float64 {
		return math.Sin(2 * math.Pi * p)
	},
	WaveSquare: func(p float64) float64 {
		if p < 0.5 {
			return 1
		}
		return -1
	},
	WaveSawtooth: func(p float64) float64 {
		return 2*p - 1
	},
	WaveTriangle: func(p float64) float64 {
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	},
}

// Waveforms lists the selectable waveforms in menu order
func Waveforms() []Waveform {
	return []Waveform{WaveSine, WaveSquare, WaveSawtooth, WaveTriangle}
}

func (w Waveform) String() string {
	if w < 0 || w >= waveformCount {
		return waveformNames[WaveSawtooth]
	}
	return waveformNames[w]
}

// ParseWaveform maps a name to a waveform. Unknown names fall back to sawtooth.
func ParseWaveform(name string) Waveform {
	name = strings.ToLower(strings.TrimSpace(name))
	for w, n := range waveformNames {
		if n == name {
			return Waveform(w)
		}
	}
	return WaveSawtooth
}

func (w Waveform) shape() shapeFunc {
	if w < 0 || w >= waveformCount {
		return waveTable[WaveSawtooth]
	}
	return waveTable[w]
}

// Oscillate generates volume-scaled samples over [0, duration) without envelope
func Oscillate(freq, duration float64, w Waveform, volume float64) Buffer {
	n := samplesFor(duration)
	buf := make(Buffer, n)
	if n == 0 {
		return buf
	}

	shape := w.shape()
	step := duration / float64(n)
	for i := range buf {
		t := float64(i) * step
		_, phase := math.Modf(freq * t)
		buf[i] = volume * shape(phase)
	}
	return buf
}
