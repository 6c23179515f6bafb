package synth

import (
	"fmt"
	"math"
)

// MixNoise adds a noise layer scaled by level. Lengths must match.
func MixNoise(track, noise Buffer, level float64) (Buffer, error) {
	if len(track) != len(noise) {
		return nil, fmt.Errorf("%w: noise length %d does not match track length %d", ErrInvalidArgument, len(noise), len(track))
	}
	if math.IsNaN(level) || level < 0 {
		return nil, fmt.Errorf("%w: noise level %v", ErrInvalidArgument, level)
	}
	out := make(Buffer, len(track))
	for i := range track {
		out[i] = track[i] + level*noise[i]
	}
	return out, nil
}

// MixExternal averages the track with an external signal, truncated to the shorter of the two
func MixExternal(track, external Buffer) Buffer {
	n := min(len(track), len(external))
	out := make(Buffer, n)
	for i := 0; i < n; i++ {
		out[i] = 0.5 * (track[i] + external[i])
	}
	return out
}

// AddNoise generates a noise layer matching the track and mixes it in
func AddNoise(track Buffer, spec NoiseSpec, seed uint64) (Buffer, error) {
	noise, err := GenerateNoise(spec.Color, len(track), NewRand(seed))
	if err != nil {
		return nil, err
	}
	return MixNoise(track, noise, spec.Level)
}

// Clip returns a copy limited to [-1, 1]
func Clip(buf Buffer) Buffer {
	out := make(Buffer, len(buf))
	for i, v := range buf {
		out[i] = max(-1, min(1, v))
	}
	return out
}

// Quantize converts to full-scale 16-bit integers, clipping first
func Quantize(buf Buffer) []int {
	out := make([]int, len(buf))
	for i, v := range buf {
		v = max(-1, min(1, v))
		out[i] = int(math.Round(v * math.MaxInt16))
	}
	return out
}

// Peak returns the largest absolute sample value
func Peak(buf Buffer) float64 {
	peak := 0.0
	for _, v := range buf {
		peak = max(peak, math.Abs(v))
	}
	return peak
}
