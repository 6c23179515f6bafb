package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/madelynnblue/go-dsp/fft"
)

// NoiseColor selects the spectral shape of a noise layer
type NoiseColor int

const (
	NoiseWhite NoiseColor = iota
	NoisePink
	NoiseBrown
)

type noiseFunc func(n int, rng *rand.Rand) Buffer

var noiseTable = map[NoiseColor]noiseFunc{
	NoiseWhite: whiteNoise,
	NoisePink:  pinkNoise,
	NoiseBrown: brownNoise,
}

var noiseNames = map[NoiseColor]string{
	NoiseWhite: "white",
	NoisePink:  "pink",
	NoiseBrown: "brown",
}

// NoiseColors lists the supported colors in menu order
func NoiseColors() []NoiseColor {
	return []NoiseColor{NoiseWhite, NoisePink, NoiseBrown}
}

func (c NoiseColor) String() string {
	if name, ok := noiseNames[c]; ok {
		return name
	}
	return fmt.Sprintf("NoiseColor(%d)", int(c))
}

// ParseNoiseColor maps a name to a color. There is no default color.
func ParseNoiseColor(name string) (NoiseColor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range noiseNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported noise color %q", ErrInvalidArgument, name)
}

// NewRand returns a seeded generator for reproducible noise
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GenerateNoise returns n samples of the given color normalized to peak 1.0
func GenerateNoise(color NoiseColor, n int, rng *rand.Rand) (Buffer, error) {
	gen, ok := noiseTable[color]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported noise color %v", ErrInvalidArgument, color)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative sample count %d", ErrInvalidArgument, n)
	}
	if n == 0 {
		return Buffer{}, nil
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return normalizePeak(gen(n, rng)), nil
}

func whiteNoise(n int, rng *rand.Rand) Buffer {
	buf := make(Buffer, n)
	for i := range buf {
		buf[i] = rng.NormFloat64()
	}
	return buf
}

// pinkNoise shapes a Gaussian spectrum by 1/sqrt(k+1) and returns to the time domain
func pinkNoise(n int, rng *rand.Rand) Buffer {
	// Odd lengths get one extra bin and the surplus sample is dropped
	bins := n/2 + 1 + n%2
	size := 2 * (bins - 1)
	if size < 2 {
		size = 2
		bins = 2
	}

	spectrum := make([]complex128, size)
	for k := 0; k < bins; k++ {
		scale := 1 / math.Sqrt(float64(k+1))
		re := rng.NormFloat64() * scale
		im := rng.NormFloat64() * scale
		// DC and Nyquist bins are real for a real signal
		if k == 0 || k == bins-1 {
			im = 0
		}
		spectrum[k] = complex(re, im)
		if k > 0 && k < bins-1 {
			spectrum[size-k] = complex(re, -im)
		}
	}

	signal := fft.IFFT(spectrum)
	buf := make(Buffer, n)
	for i := range buf {
		buf[i] = real(signal[i])
	}
	return buf
}

// brownNoise is a random walk over white noise
func brownNoise(n int, rng *rand.Rand) Buffer {
	buf := make(Buffer, n)
	sum := 0.0
	for i := range buf {
		sum += rng.NormFloat64()
		buf[i] = sum
	}
	return buf
}

// normalizePeak scales in place to peak |x| = 1; all-zero input is left as is
func normalizePeak(buf Buffer) Buffer {
	peak := 0.0
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return buf
	}
	for i := range buf {
		buf[i] /= peak
	}
	return buf
}
