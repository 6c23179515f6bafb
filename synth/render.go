package synth

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Render synthesizes the whole note sequence into one contiguous buffer.
// Notes are synthesized independently and assembled in sequence order.
func Render(ctx context.Context, notes []NoteEvent, p Params) (Buffer, error) {
	if len(notes) == 0 {
		return nil, ErrEmptyInput
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for i, n := range notes {
		if n.ADSR == nil {
			continue
		}
		if err := n.ADSR.Validate(); err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
	}

	parts := make([]Buffer, len(notes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range notes {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			buf, err := renderNote(notes[i], p)
			if err != nil {
				return fmt.Errorf("note %d: %w", i, err)
			}
			parts[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, part := range parts {
		total += len(part)
	}
	out := make(Buffer, 0, total)
	for _, part := range parts {
		out = append(out, part...)
	}
	return out, nil
}

// renderNote produces one note's shaped samples, or silence for a rest
func renderNote(n NoteEvent, p Params) (Buffer, error) {
	freq, dur, err := Transform(n, p.PitchShift, p.BPM, p.ReferenceBPM)
	if err != nil {
		return nil, err
	}
	if freq == 0 {
		return make(Buffer, samplesFor(dur)), nil
	}

	env := p.ADSR
	if n.ADSR != nil {
		env = *n.ADSR
	}
	raw := Oscillate(freq, dur, p.Waveform, p.Volume*n.Gain())
	return ApplyEnvelope(raw, env), nil
}
