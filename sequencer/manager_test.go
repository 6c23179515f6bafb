package sequencer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go-abcsynth/audio"
	"go-abcsynth/config"
	"go-abcsynth/synth"
)

const testTune = `X:1
T:Test
L:1/4
K:C
A B z c|
`

// four quarter notes at 120 BPM
const testTuneSamples = 4 * 22050

type fakeSpeaker struct {
	mu      sync.Mutex
	played  []int
	block   bool
	started chan struct{}
}

func (s *fakeSpeaker) Play(ctx context.Context, buf synth.Buffer) error {
	s.mu.Lock()
	s.played = append(s.played, len(buf))
	s.mu.Unlock()
	if s.block {
		close(s.started)
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

type fakeSender struct {
	port    string
	channel int
	notes   int
	closed  bool
}

func (s *fakeSender) Play(ctx context.Context, notes []synth.NoteEvent, p synth.Params) error {
	s.notes = len(notes)
	return nil
}

func (s *fakeSender) Close() error {
	s.closed = true
	return nil
}

func newTestManager(t *testing.T) (*Manager, *fakeSpeaker, *fakeSender) {
	t.Helper()
	spk := &fakeSpeaker{}
	snd := &fakeSender{}
	open := func(port string, channel int) (Sender, error) {
		snd.port = port
		snd.channel = channel
		return snd, nil
	}
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	return NewManager(config.DefaultConfig(), cfgPath, spk, open), spk, snd
}

func writeTune(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tune.abc")
	if err := os.WriteFile(path, []byte(testTune), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndRender(t *testing.T) {
	m, _, _ := newTestManager(t)
	path := writeTune(t)

	if err := m.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(m.Notes()); got != 4 {
		t.Fatalf("Expected 4 notes, got %d", got)
	}
	if m.Source() != path {
		t.Errorf("Expected source %s, got %s", path, m.Source())
	}

	saved, err := config.LoadPath(m.configPath)
	if err != nil {
		t.Fatalf("LoadPath: %v", err)
	}
	if saved.Paths.Notation != path {
		t.Errorf("Expected notation path persisted, got %q", saved.Paths.Notation)
	}

	buf, err := m.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(buf) != testTuneSamples {
		t.Errorf("Expected %d samples, got %d", testTuneSamples, len(buf))
	}
}

func TestRenderWithoutNotes(t *testing.T) {
	m, _, _ := newTestManager(t)
	if _, err := m.Render(context.Background()); !errors.Is(err, synth.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
	if _, err := m.SaveMIDI(""); !errors.Is(err, synth.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput from SaveMIDI, got %v", err)
	}
	if err := m.SendMIDI(context.Background()); !errors.Is(err, synth.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput from SendMIDI, got %v", err)
	}
}

func TestLoadFailureKeepsNotes(t *testing.T) {
	m, _, _ := newTestManager(t)
	path := writeTune(t)
	if err := m.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	err := m.Load(filepath.Join(t.TempDir(), "missing.abc"))
	if !errors.Is(err, synth.ErrLoadFailure) {
		t.Fatalf("Expected ErrLoadFailure, got %v", err)
	}
	if len(m.Notes()) != 4 || m.Source() != path {
		t.Error("Expected failed load to keep the previous notes")
	}
}

func TestSetNoise(t *testing.T) {
	m, _, _ := newTestManager(t)

	if err := m.SetNoise("Pink"); err != nil {
		t.Fatalf("SetNoise: %v", err)
	}
	if got := m.Config().Render.Noise.Color; got != "pink" {
		t.Errorf("Expected pink, got %q", got)
	}

	if err := m.SetNoise("ultraviolet"); !errors.Is(err, synth.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
	if got := m.Config().Render.Noise.Color; got != "" {
		t.Errorf("Expected invalid noise to clear the setting, got %q", got)
	}
}

func TestSetterValidation(t *testing.T) {
	m, _, _ := newTestManager(t)

	if err := m.SetVolume(1.5); !errors.Is(err, synth.ErrInvalidArgument) {
		t.Errorf("Expected loudness 1.5 rejected, got %v", err)
	}
	if err := m.SetBPM(0); !errors.Is(err, synth.ErrInvalidArgument) {
		t.Errorf("Expected bpm 0 rejected, got %v", err)
	}
	if err := m.SetNoiseLevel(-1); !errors.Is(err, synth.ErrInvalidArgument) {
		t.Errorf("Expected negative noise level rejected, got %v", err)
	}
	if err := m.SetEnvelope(synth.ADSR{Attack: 0.5, Decay: 0.5, Sustain: 0.5, Release: 0.5}); !errors.Is(err, synth.ErrInvalidArgument) {
		t.Errorf("Expected overfull envelope rejected, got %v", err)
	}
	if err := m.SetMixPath(filepath.Join(t.TempDir(), "nope.wav")); !errors.Is(err, synth.ErrLoadFailure) {
		t.Errorf("Expected missing mix file rejected, got %v", err)
	}

	if m.Config().Render.BPM != 120 || m.Config().Render.Volume != 0.5 {
		t.Error("Expected rejected values to leave settings unchanged")
	}

	if err := m.SetBPM(60); err != nil {
		t.Fatalf("SetBPM: %v", err)
	}
	if got := m.Params().BPM; got != 60 {
		t.Errorf("Expected params bpm 60, got %d", got)
	}
}

func TestRenderMixAndNoise(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Render.Noise.Seed = 7
	m := NewManager(cfg, "", nil, nil)
	if err := m.Load(writeTune(t)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	ext := make(synth.Buffer, 22050)
	for i := range ext {
		ext[i] = 0.5
	}
	extPath := filepath.Join(t.TempDir(), "ext.wav")
	if err := audio.WriteWAV(extPath, ext); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	if err := m.SetMixPath(extPath); err != nil {
		t.Fatalf("SetMixPath: %v", err)
	}

	buf, err := m.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(buf) != len(ext) {
		t.Fatalf("Expected mix truncated to %d samples, got %d", len(ext), len(buf))
	}

	if err := m.SetNoise("brown"); err != nil {
		t.Fatalf("SetNoise: %v", err)
	}
	a, err := m.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, _ := m.Render(context.Background())
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Expected seeded noise to be reproducible, differs at %d", i)
		}
	}
	if a[0] == buf[0] && a[len(a)-1] == buf[len(buf)-1] {
		t.Error("Expected noise to change the signal")
	}
}

func TestSaveWAVAndMIDI(t *testing.T) {
	m, _, _ := newTestManager(t)
	if err := m.Load(writeTune(t)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	dir := t.TempDir()

	wavPath, err := m.SaveWAV(context.Background(), filepath.Join(dir, "out.wav"))
	if err != nil {
		t.Fatalf("SaveWAV: %v", err)
	}
	buf, rate, err := audio.ReadWAV(wavPath)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if len(buf) != testTuneSamples || rate != synth.SampleRate {
		t.Errorf("Expected %d samples at %d, got %d at %d", testTuneSamples, synth.SampleRate, len(buf), rate)
	}

	midPath, err := m.SaveMIDI(filepath.Join(dir, "out.mid"))
	if err != nil {
		t.Fatalf("SaveMIDI: %v", err)
	}
	if info, err := os.Stat(midPath); err != nil || info.Size() == 0 {
		t.Errorf("Expected non-empty MIDI file, got %v", err)
	}
	if got := m.Config().Paths.OutputMid; got != midPath {
		t.Errorf("Expected output path remembered, got %q", got)
	}
}

func TestPlayAndSend(t *testing.T) {
	m, spk, snd := newTestManager(t)
	if err := m.Load(writeTune(t)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := m.Play(context.Background()); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(spk.played) != 1 || spk.played[0] != testTuneSamples {
		t.Errorf("Expected one buffer of %d samples, got %v", testTuneSamples, spk.played)
	}

	m.SetMIDIPort("synth")
	if err := m.SendMIDI(context.Background()); err != nil {
		t.Fatalf("SendMIDI: %v", err)
	}
	if snd.port != "synth" || snd.channel != 1 || snd.notes != 4 || !snd.closed {
		t.Errorf("Unexpected sender state %+v", snd)
	}
}

func TestStartStop(t *testing.T) {
	m, spk, _ := newTestManager(t)
	if err := m.Load(writeTune(t)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	spk.block = true
	spk.started = make(chan struct{})

	if err := m.Start("Playing", func(ctx context.Context) (string, error) {
		return "", m.Play(ctx)
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-spk.started

	if _, job := m.Status(); job != "Playing" {
		t.Errorf("Expected running job, got %q", job)
	}
	if err := m.Start("Other", func(ctx context.Context) (string, error) { return "", nil }); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}

	m.Stop()
	deadline := time.After(2 * time.Second)
	for {
		status, job := m.Status()
		if job == "" {
			if status != "Playing stopped" {
				t.Errorf("Expected stopped status, got %q", status)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("Job did not stop")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
