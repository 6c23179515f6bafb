package synth

import (
	"errors"
	"math"
	"testing"
)

func TestGenerateNoisePeakIsOne(t *testing.T) {
	for _, color := range NoiseColors() {
		for _, n := range []int{1, 2, 7, 1000, 4411} {
			buf, err := GenerateNoise(color, n, NewRand(42))
			if err != nil {
				t.Fatalf("%v n=%d: unexpected error: %v", color, n, err)
			}
			if len(buf) != n {
				t.Fatalf("%v: expected %d samples, got %d", color, n, len(buf))
			}
			if p := Peak(buf); math.Abs(p-1) > 1e-9 {
				t.Errorf("%v n=%d: expected peak 1.0, got %f", color, n, p)
			}
		}
	}
}

func TestGenerateNoiseDeterministicWithSeed(t *testing.T) {
	for _, color := range NoiseColors() {
		a, _ := GenerateNoise(color, 500, NewRand(7))
		b, _ := GenerateNoise(color, 500, NewRand(7))
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%v: sample %d differs between identical seeds", color, i)
			}
		}
	}
}

func TestGenerateNoiseZeroLength(t *testing.T) {
	buf, err := GenerateNoise(NoisePink, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buf) != 0 {
		t.Errorf("Expected empty buffer, got %d samples", len(buf))
	}
}

func TestGenerateNoiseUnsupportedColor(t *testing.T) {
	buf, err := GenerateNoise(NoiseColor(9), 100, NewRand(1))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument, got %v", err)
	}
	if buf != nil {
		t.Errorf("Expected no buffer on failure")
	}
}

func TestParseNoiseColor(t *testing.T) {
	for _, c := range NoiseColors() {
		got, err := ParseNoiseColor(c.String())
		if err != nil || got != c {
			t.Errorf("ParseNoiseColor(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseNoiseColor("ultraviolet"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for ultraviolet, got %v", err)
	}
}

func TestNormalizePeakAllZero(t *testing.T) {
	buf := normalizePeak(make(Buffer, 16))
	for i, v := range buf {
		if v != 0 || math.IsNaN(v) {
			t.Fatalf("Sample %d: expected 0, got %f", i, v)
		}
	}
}

func TestBrownNoiseIsSmootherThanWhite(t *testing.T) {
	meanStep := func(b Buffer) float64 {
		sum := 0.0
		for i := 1; i < len(b); i++ {
			sum += math.Abs(b[i] - b[i-1])
		}
		return sum / float64(len(b)-1)
	}
	white, _ := GenerateNoise(NoiseWhite, 8192, NewRand(3))
	brown, _ := GenerateNoise(NoiseBrown, 8192, NewRand(3))
	if meanStep(brown) >= meanStep(white) {
		t.Errorf("Expected brown noise to have smaller sample-to-sample steps than white")
	}
}

func TestPinkNoiseHasMoreLowFrequencyEnergy(t *testing.T) {
	// Compare energy of first differences: low-frequency heavy signals change slowly
	diffEnergy := func(b Buffer) float64 {
		num, den := 0.0, 0.0
		for i := 1; i < len(b); i++ {
			d := b[i] - b[i-1]
			num += d * d
			den += b[i] * b[i]
		}
		return num / den
	}
	white, _ := GenerateNoise(NoiseWhite, 8192, NewRand(5))
	pink, _ := GenerateNoise(NoisePink, 8192, NewRand(5))
	if diffEnergy(pink) >= diffEnergy(white) {
		t.Errorf("Expected pink noise to be weighted toward low frequencies")
	}
}
