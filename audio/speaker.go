package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"go-abcsynth/debug"
	"go-abcsynth/synth"
)

// Speaker plays buffers on the default output device
type Speaker struct {
	mu          sync.Mutex
	initialized bool
}

// NewSpeaker creates a speaker; the device is opened on first Play
func NewSpeaker() *Speaker {
	return &Speaker{}
}

func (s *Speaker) init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	sr := beep.SampleRate(synth.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// Play blocks until the buffer has been played or ctx is cancelled
func (s *Speaker) Play(ctx context.Context, buf synth.Buffer) error {
	if err := s.init(); err != nil {
		return err
	}

	done := make(chan struct{})
	debug.Log("speaker", "play samples=%d seconds=%.2f", len(buf), buf.Seconds())
	speaker.Play(beep.Seq(Streamer(synth.Clip(buf)), beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Streamer exposes a mono buffer as a stereo beep stream
func Streamer(buf synth.Buffer) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= len(buf) {
			return 0, false
		}
		for i := range samples {
			if pos >= len(buf) {
				break
			}
			samples[i][0] = buf[pos]
			samples[i][1] = buf[pos]
			pos++
			n++
		}
		return n, true
	})
}
