package synth

import "math"

// Envelope builds the ADSR curve for a note of n samples
func Envelope(n int, e ADSR) []float64 {
	if n <= 0 {
		return nil
	}

	a := int(math.Floor(float64(n) * e.Attack))
	d := int(math.Floor(float64(n) * e.Decay))
	r := int(math.Floor(float64(n) * e.Release))
	s := n - (a + d + r)
	if s < 0 {
		s = 0
	}

	env := make([]float64, 0, a+d+s+r)

	// Attack 0 -> 1, endpoint excluded
	for i := 0; i < a; i++ {
		env = append(env, float64(i)/float64(a))
	}

	// Decay 1 -> sustain, endpoint excluded
	for i := 0; i < d; i++ {
		env = append(env, 1+(e.Sustain-1)*float64(i)/float64(d))
	}

	for i := 0; i < s; i++ {
		env = append(env, e.Sustain)
	}

	// Release sustain -> 0, last sample lands on 0
	for i := 0; i < r; i++ {
		if r == 1 {
			env = append(env, 0)
			break
		}
		env = append(env, e.Sustain*(1-float64(i)/float64(r-1)))
	}

	if len(env) > n {
		return env[:n]
	}
	if len(env) < n {
		last := 0.0
		if len(env) > 0 {
			last = env[len(env)-1]
		}
		for len(env) < n {
			env = append(env, last)
		}
	}
	return env
}

// ApplyEnvelope returns a new buffer shaped by the ADSR curve
func ApplyEnvelope(buf Buffer, e ADSR) Buffer {
	env := Envelope(len(buf), e)
	out := make(Buffer, len(buf))
	for i, v := range buf {
		out[i] = v * env[i]
	}
	return out
}
