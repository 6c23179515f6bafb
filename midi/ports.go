package midi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// PortTimeout bounds port enumeration; CoreMIDI can hang
const PortTimeout = 3 * time.Second

var (
	ErrPortTimeout  = errors.New("midi port query timed out")
	ErrPortNotFound = errors.New("midi port not found")
)

// Ports is a snapshot of the available MIDI ports
type Ports struct {
	Ins  []drivers.In
	Outs []drivers.Out
}

// InNames returns the input port names in driver order
func (p Ports) InNames() []string {
	names := make([]string, len(p.Ins))
	for i, in := range p.Ins {
		names[i] = in.String()
	}
	return names
}

// OutNames returns the output port names in driver order
func (p Ports) OutNames() []string {
	names := make([]string, len(p.Outs))
	for i, out := range p.Outs {
		names[i] = out.String()
	}
	return names
}

// ListPorts queries the driver, giving up after timeout
func ListPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{Ins: gomidi.GetInPorts(), Outs: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return Ports{}, ErrPortTimeout
	}
}

// FindOut picks an output port by index or case-insensitive name substring.
// An empty name selects the first port.
func FindOut(outs []drivers.Out, name string) (drivers.Out, error) {
	if len(outs) == 0 {
		return nil, fmt.Errorf("%w: no output ports", ErrPortNotFound)
	}
	if name == "" {
		return outs[0], nil
	}
	if idx, err := strconv.Atoi(name); err == nil {
		if idx < 0 || idx >= len(outs) {
			return nil, fmt.Errorf("%w: index %d", ErrPortNotFound, idx)
		}
		return outs[idx], nil
	}

	want := strings.ToLower(name)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), want) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
}
