package synth

import (
	"errors"
	"testing"
)

func TestMixExternalTruncates(t *testing.T) {
	tests := []struct{ a, b int }{
		{10, 4}, {4, 10}, {0, 5}, {7, 7},
	}
	for _, tt := range tests {
		out := MixExternal(make(Buffer, tt.a), make(Buffer, tt.b))
		if want := min(tt.a, tt.b); len(out) != want {
			t.Errorf("MixExternal(%d, %d): expected length %d, got %d", tt.a, tt.b, want, len(out))
		}
	}
}

func TestMixExternalAverages(t *testing.T) {
	out := MixExternal(Buffer{1, -1, 0.5}, Buffer{0, -1, 0.5, 0.9})
	want := Buffer{0.5, -1, 0.5}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("Sample %d: expected %f, got %f", i, want[i], out[i])
		}
	}
}

func TestMixNoise(t *testing.T) {
	track := Buffer{0.1, 0.2, 0.3}
	noise := Buffer{1, -1, 0.5}
	out, err := MixNoise(track, noise, 0.1)
	if err != nil {
		t.Fatalf("MixNoise: %v", err)
	}
	want := Buffer{0.2, 0.1, 0.35}
	for i := range want {
		if d := out[i] - want[i]; d > 1e-12 || d < -1e-12 {
			t.Errorf("Sample %d: expected %f, got %f", i, want[i], out[i])
		}
	}
	if track[0] != 0.1 {
		t.Errorf("Expected track to be left untouched")
	}
}

func TestMixNoiseLengthMismatch(t *testing.T) {
	if _, err := MixNoise(make(Buffer, 3), make(Buffer, 4), 0.1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
	if _, err := MixNoise(make(Buffer, 3), make(Buffer, 3), -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for negative level, got %v", err)
	}
}

func TestAddNoiseUnsupportedColor(t *testing.T) {
	if _, err := AddNoise(make(Buffer, 10), NoiseSpec{Color: NoiseColor(99), Level: 0.1}, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestQuantize(t *testing.T) {
	got := Quantize(Buffer{0, 1, -1, 0.5, 2, -3})
	want := []int{0, 32767, -32767, 16384, 32767, -32767}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestClip(t *testing.T) {
	in := Buffer{1.5, -2, 0.25}
	out := Clip(in)
	if out[0] != 1 || out[1] != -1 || out[2] != 0.25 {
		t.Errorf("Unexpected clip result %v", out)
	}
	if in[0] != 1.5 {
		t.Errorf("Expected input to be left untouched")
	}
}
