package synth

import (
	"math"
	"testing"
)

func TestOscillateSampleCount(t *testing.T) {
	tests := []struct {
		dur  float64
		want int
	}{
		{1.0, 44100},
		{0.5, 22050},
		{0, 0},
		{0.00001, 0},
		{0.1234, 5442},
	}
	for _, tt := range tests {
		buf := Oscillate(440, tt.dur, WaveSine, 1)
		if len(buf) != tt.want {
			t.Errorf("duration %v: expected %d samples, got %d", tt.dur, tt.want, len(buf))
		}
	}
}

func TestOscillateSineStartsAtZero(t *testing.T) {
	buf := Oscillate(440, 0.01, WaveSine, 1)
	if buf[0] != 0 {
		t.Errorf("Expected first sine sample 0, got %f", buf[0])
	}
	// Quarter period of a 441Hz tone is exactly 25 samples
	buf = Oscillate(441, 1, WaveSine, 1)
	if math.Abs(buf[25]-1) > 1e-9 {
		t.Errorf("Expected peak at quarter period, got %f", buf[25])
	}
}

func TestOscillateSquareIsBipolar(t *testing.T) {
	buf := Oscillate(220, 0.05, WaveSquare, 1)
	pos, neg := 0, 0
	for i, v := range buf {
		switch v {
		case 1:
			pos++
		case -1:
			neg++
		default:
			t.Fatalf("Square sample %d should be -1 or 1, got %f", i, v)
		}
	}
	if pos == 0 || neg == 0 {
		t.Errorf("Expected both polarities, got pos=%d neg=%d", pos, neg)
	}
}

func TestOscillateSawtoothRamp(t *testing.T) {
	// 441Hz at 44100Hz gives a 100-sample period
	buf := Oscillate(441, 0.01, WaveSawtooth, 1)
	if buf[0] != -1 {
		t.Errorf("Expected saw to start at -1, got %f", buf[0])
	}
	if math.Abs(buf[50]) > 1e-9 {
		t.Errorf("Expected saw midpoint 0, got %f", buf[50])
	}
	for i := 1; i < 100; i++ {
		if buf[i] <= buf[i-1] {
			t.Fatalf("Expected rising ramp within a period at %d", i)
		}
	}
}

func TestOscillateTriangleSymmetric(t *testing.T) {
	buf := Oscillate(441, 0.01, WaveTriangle, 1)
	if buf[0] != -1 {
		t.Errorf("Expected triangle to start at -1, got %f", buf[0])
	}
	if math.Abs(buf[50]-1) > 1e-9 {
		t.Errorf("Expected triangle apex at half period, got %f", buf[50])
	}
	if math.Abs(buf[25]-buf[75]) > 1e-9 {
		t.Errorf("Expected symmetric ramps, got %f and %f", buf[25], buf[75])
	}
}

func TestOscillateVolume(t *testing.T) {
	buf := Oscillate(441, 0.01, WaveSquare, 0.25)
	for i, v := range buf {
		if math.Abs(v) != 0.25 {
			t.Fatalf("Sample %d: expected magnitude 0.25, got %f", i, v)
		}
	}
}

func TestParseWaveformFallsBackToSawtooth(t *testing.T) {
	tests := map[string]Waveform{
		"sine":     WaveSine,
		" Square ": WaveSquare,
		"triangle": WaveTriangle,
		"sawtooth": WaveSawtooth,
		"organ":    WaveSawtooth,
		"":         WaveSawtooth,
	}
	for name, want := range tests {
		if got := ParseWaveform(name); got != want {
			t.Errorf("ParseWaveform(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestUnknownWaveformValueRendersSawtooth(t *testing.T) {
	got := Oscillate(441, 0.01, Waveform(42), 1)
	want := Oscillate(441, 0.01, WaveSawtooth, 1)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sample %d: expected sawtooth fallback %f, got %f", i, want[i], got[i])
		}
	}
}
