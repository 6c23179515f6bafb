package midi

import (
	"context"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-abcsynth/debug"
	"go-abcsynth/synth"
)

// Player sends note sequences to a MIDI output in real time
type Player struct {
	name    string
	send    func(msg gomidi.Message) error
	closer  func() error
	channel uint8
	wait    func(ctx context.Context, d time.Duration) error
}

// OpenPlayer opens the named output port (see FindOut) on a 1-16 channel
func OpenPlayer(portName string, channel int) (*Player, error) {
	if channel < 1 || channel > 16 {
		return nil, fmt.Errorf("%w: midi channel %d outside 1-16", synth.ErrInvalidArgument, channel)
	}

	ports, err := ListPorts(PortTimeout)
	if err != nil {
		return nil, err
	}
	out, err := FindOut(ports.Outs, portName)
	if err != nil {
		return nil, err
	}

	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}

	debug.Log("midi", "opened output %q channel %d", out.String(), channel)
	p := NewPlayer(send, uint8(channel-1))
	p.name = out.String()
	p.closer = out.Close
	return p, nil
}

// NewPlayer wraps a send function; channel is 0-15
func NewPlayer(send func(msg gomidi.Message) error, channel uint8) *Player {
	return &Player{
		send:    send,
		channel: channel & 0x0F,
		wait:    sleepCtx,
	}
}

// Name is the output port name, empty for a wrapped send function
func (p *Player) Name() string {
	return p.name
}

// Play blocks until the sequence is sent or ctx is cancelled. A note that
// is sounding at cancellation gets its NoteOff.
func (p *Player) Play(ctx context.Context, notes []synth.NoteEvent, params synth.Params) error {
	if len(notes) == 0 {
		return synth.ErrEmptyInput
	}
	sched, err := BuildSchedule(notes, params, p.channel)
	if err != nil {
		return err
	}

	debug.Log("midi", "send %d events over %s", len(sched.Steps), sched.Duration())

	var sounding *Event
	for _, st := range sched.Steps {
		if err := p.wait(ctx, st.Delta); err != nil {
			if sounding != nil {
				p.send(Event{Type: NoteOff, Channel: sounding.Channel, Note: sounding.Note}.Message())
			}
			return err
		}
		if err := p.send(st.Event.Message()); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		if st.Event.Type == NoteOn {
			ev := st.Event
			sounding = &ev
		} else {
			sounding = nil
		}
	}
	return p.wait(ctx, sched.Tail)
}

// Close releases the output port
func (p *Player) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
