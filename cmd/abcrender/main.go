package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go-abcsynth/audio"
	"go-abcsynth/config"
	"go-abcsynth/debug"
	"go-abcsynth/midi"
	"go-abcsynth/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "render":
		err = renderWAV(ctx, args)
	case "play":
		err = play(ctx, args)
	case "midi":
		err = exportMIDI(args)
	case "ports":
		err = listPorts()
	case "send":
		err = send(ctx, args)
	default:
		usage()
		return
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("abcrender - render ABC or JSON note files")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  render [flags] <in> [out.wav]  - Render to a WAV file")
	fmt.Println("  play   [flags] <in>            - Render and play")
	fmt.Println("  midi   <in> [out.mid]          - Export notation to a MIDI file")
	fmt.Println("  ports                          - List MIDI ports")
	fmt.Println("  send   [flags] <in>            - Play on a MIDI output port")
	fmt.Println("")
	fmt.Println("Settings default to the saved menu settings; run a command with -h for flags.")
}

// session parses the shared flags into a manager loaded with the input file
func session(name string, args []string) (*sequencer.Manager, []string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	r := cfg.Render

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	wave := fs.String("wave", r.Waveform, "Waveform: sine|square|sawtooth|triangle")
	volume := fs.Float64("volume", r.Volume, "Loudness 0-1")
	bpm := fs.Int("bpm", r.BPM, "Tempo in BPM")
	shift := fs.Int("shift", r.PitchShift, "Pitch shift in semitones")
	noise := fs.String("noise", r.Noise.Color, "Background noise: white|pink|brown (empty for none)")
	level := fs.Float64("level", r.Noise.Level, "Noise level")
	seed := fs.Uint64("seed", r.Noise.Seed, "Noise seed (0 = random)")
	mix := fs.String("mix", r.MixWavPath, "External WAV to mix in")
	port := fs.String("port", cfg.MIDI.PortName, "MIDI output port name or number")
	channel := fs.Int("channel", int(cfg.MIDI.Channel), "MIDI channel 1-16")
	verbose := fs.Bool("debug", cfg.Debug, "Write debug log to stderr")
	fs.Parse(args)

	if *verbose {
		debug.SetOutput(os.Stderr)
	}
	if fs.NArg() < 1 {
		return nil, nil, errors.New("missing input file")
	}
	if *channel < 1 || *channel > 16 {
		return nil, nil, fmt.Errorf("channel %d outside 1-16", *channel)
	}

	cfg.Render.Noise.Seed = *seed
	cfg.MIDI.Channel = uint8(*channel)
	m := sequencer.NewManager(cfg, "", audio.NewSpeaker(), sequencer.OpenMIDISender)

	m.SetWaveform(*wave)
	m.SetPitchShift(*shift)
	m.SetMIDIPort(*port)
	for _, err := range []error{
		m.SetVolume(*volume),
		m.SetBPM(*bpm),
		m.SetNoise(*noise),
		m.SetNoiseLevel(*level),
		m.SetMixPath(*mix),
	} {
		if err != nil {
			return nil, nil, err
		}
	}

	if err := m.Load(fs.Arg(0)); err != nil {
		return nil, nil, err
	}
	return m, fs.Args()[1:], nil
}

func renderWAV(ctx context.Context, args []string) error {
	m, rest, err := session("render", args)
	if err != nil {
		return err
	}
	out := ""
	if len(rest) > 0 {
		out = rest[0]
	}
	path, err := m.SaveWAV(ctx, out)
	if err != nil {
		return err
	}
	fmt.Printf("Saved to %s\n", path)
	return nil
}

func play(ctx context.Context, args []string) error {
	m, _, err := session("play", args)
	if err != nil {
		return err
	}
	fmt.Println("Rendering and playing... (Ctrl+C to stop)")
	return m.Play(ctx)
}

func exportMIDI(args []string) error {
	if len(args) < 1 {
		return errors.New("missing input file")
	}
	out := config.DefaultConfig().Paths.OutputMid
	if len(args) > 1 {
		out = args[1]
	}
	if err := midi.ExportFile(args[0], out); err != nil {
		return err
	}
	fmt.Printf("Saved to %s\n", out)
	return nil
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ListPorts(midi.PortTimeout)
	if errors.Is(err, midi.ErrPortTimeout) {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}
	if err != nil {
		return err
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, name := range ports.InNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range ports.OutNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}

func send(ctx context.Context, args []string) error {
	m, _, err := session("send", args)
	if err != nil {
		return err
	}
	fmt.Println("Sending to MIDI... (Ctrl+C to stop)")
	return m.SendMIDI(ctx)
}
