package sequencer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"go-abcsynth/audio"
	"go-abcsynth/config"
	"go-abcsynth/debug"
	"go-abcsynth/midi"
	"go-abcsynth/notation"
	"go-abcsynth/synth"
)

// Speaker plays a rendered buffer
type Speaker interface {
	Play(ctx context.Context, buf synth.Buffer) error
}

// Sender plays notes on an external MIDI instrument
type Sender interface {
	Play(ctx context.Context, notes []synth.NoteEvent, p synth.Params) error
	Close() error
}

// SenderFactory opens a Sender for a port name and 1-16 channel
type SenderFactory func(port string, channel int) (Sender, error)

// OpenMIDISender is the SenderFactory backed by a real MIDI output
func OpenMIDISender(port string, channel int) (Sender, error) {
	p, err := midi.OpenPlayer(port, channel)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ErrBusy is returned when a job is started while another is running
var ErrBusy = errors.New("another job is running")

// Manager owns the loaded notes and the render settings, and runs the
// render/play/save jobs the menu starts
type Manager struct {
	notes  []synth.NoteEvent
	source string
	mu     sync.RWMutex // guards notes and source; a render holds it for reading

	cfg        *config.Config
	configPath string // empty = settings are not persisted
	cfgMu      sync.RWMutex

	speaker    Speaker
	openSender SenderFactory

	jobMu  sync.Mutex
	cancel context.CancelFunc
	job    string
	status string

	menu *Menu

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager over cfg. configPath may be empty.
func NewManager(cfg *config.Config, configPath string, speaker Speaker, openSender SenderFactory) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m := &Manager{
		cfg:        cfg,
		configPath: configPath,
		speaker:    speaker,
		openSender: openSender,
		UpdateChan: make(chan struct{}, 1),
	}
	m.menu = NewMenu(m)
	return m
}

// Menu returns the interactive menu bound to this manager
func (m *Manager) Menu() *Menu {
	return m.menu
}

// Load replaces the note sequence with the contents of a notation file
func (m *Manager) Load(path string) error {
	path = strings.TrimSpace(path)
	notes, err := notation.Load(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.notes = notes
	m.source = path
	m.mu.Unlock()

	m.updateConfig(func(c *config.Config) { c.Paths.Notation = path })
	debug.Log("manager", "loaded %d notes from %s", len(notes), path)
	m.notifyUpdate()
	return nil
}

// Notes returns a copy of the loaded sequence
func (m *Manager) Notes() []synth.NoteEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]synth.NoteEvent, len(m.notes))
	copy(out, m.notes)
	return out
}

// Source is the path the notes were loaded from
func (m *Manager) Source() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.source
}

// Config returns a snapshot of the settings
func (m *Manager) Config() *config.Config {
	m.cfgMu.RLock()
	defer m.cfgMu.RUnlock()
	return m.cfg.Clone()
}

// Params converts the render settings for synth.Render
func (m *Manager) Params() synth.Params {
	c := m.Config().Render
	return synth.Params{
		Waveform:     synth.ParseWaveform(c.Waveform),
		Volume:       c.Volume,
		BPM:          c.BPM,
		ReferenceBPM: c.ReferenceBPM,
		PitchShift:   c.PitchShift,
		ADSR: synth.ADSR{
			Attack:  c.Envelope.Attack,
			Decay:   c.Envelope.Decay,
			Sustain: c.Envelope.Sustain,
			Release: c.Envelope.Release,
		},
	}
}

// Render synthesizes the loaded notes, then mixes in the external WAV and
// finally the noise layer when those are configured
func (m *Manager) Render(ctx context.Context) (synth.Buffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.notes) == 0 {
		return nil, fmt.Errorf("%w: no notation loaded", synth.ErrEmptyInput)
	}

	cfg := m.Config().Render
	buf, err := synth.Render(ctx, m.notes, m.Params())
	if err != nil {
		return nil, err
	}

	if cfg.MixWavPath != "" {
		ext, rate, err := audio.ReadWAV(cfg.MixWavPath)
		if err != nil {
			return nil, err
		}
		if rate != synth.SampleRate {
			debug.Log("manager", "mixing %s at %dHz into %dHz output without resampling", cfg.MixWavPath, rate, synth.SampleRate)
		}
		buf = synth.MixExternal(buf, ext)
	}

	if cfg.Noise.Color != "" {
		color, err := synth.ParseNoiseColor(cfg.Noise.Color)
		if err != nil {
			return nil, err
		}
		seed := cfg.Noise.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		buf, err = synth.AddNoise(buf, synth.NoiseSpec{Color: color, Level: cfg.Noise.Level}, seed)
		if err != nil {
			return nil, err
		}
	}

	debug.Log("manager", "rendered %d samples (%.2fs) peak=%.3f", len(buf), buf.Seconds(), synth.Peak(buf))
	return buf, nil
}

// Play renders and plays through the speaker
func (m *Manager) Play(ctx context.Context) error {
	if m.speaker == nil {
		return errors.New("no audio output")
	}
	buf, err := m.Render(ctx)
	if err != nil {
		return err
	}
	return m.speaker.Play(ctx, buf)
}

// SaveWAV renders to a WAV file; empty path uses the configured default
func (m *Manager) SaveWAV(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = m.Config().Paths.OutputWav
	}
	buf, err := m.Render(ctx)
	if err != nil {
		return "", err
	}
	if err := audio.WriteWAV(path, buf); err != nil {
		return "", err
	}
	m.updateConfig(func(c *config.Config) { c.Paths.OutputWav = path })
	return path, nil
}

// SaveMIDI exports the loaded notation file; empty path uses the default.
// Render settings do not apply.
func (m *Manager) SaveMIDI(path string) (string, error) {
	src := m.Source()
	if src == "" {
		return "", fmt.Errorf("%w: no notation loaded", synth.ErrEmptyInput)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = m.Config().Paths.OutputMid
	}
	if err := midi.ExportFile(src, path); err != nil {
		return "", err
	}
	m.updateConfig(func(c *config.Config) { c.Paths.OutputMid = path })
	return path, nil
}

// SendMIDI plays the loaded notes on the configured MIDI output
func (m *Manager) SendMIDI(ctx context.Context) error {
	if m.openSender == nil {
		return errors.New("no midi output")
	}
	notes := m.Notes()
	if len(notes) == 0 {
		return fmt.Errorf("%w: no notation loaded", synth.ErrEmptyInput)
	}
	c := m.Config().MIDI
	sender, err := m.openSender(c.PortName, int(c.Channel))
	if err != nil {
		return err
	}
	defer sender.Close()
	return sender.Play(ctx, notes, m.Params())
}

// Setters mirror the menu options. Each validates, persists and notifies.

// SetWaveform accepts any name; unknown names render as sawtooth
func (m *Manager) SetWaveform(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	m.updateConfig(func(c *config.Config) { c.Render.Waveform = name })
}

// SetVolume takes a loudness in [0,1]
func (m *Manager) SetVolume(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: loudness %v outside [0,1]", synth.ErrInvalidArgument, v)
	}
	m.updateConfig(func(c *config.Config) { c.Render.Volume = v })
	return nil
}

func (m *Manager) SetBPM(bpm int) error {
	if bpm <= 0 {
		return fmt.Errorf("%w: bpm must be positive, got %d", synth.ErrInvalidArgument, bpm)
	}
	m.updateConfig(func(c *config.Config) { c.Render.BPM = bpm })
	return nil
}

func (m *Manager) SetPitchShift(semitones int) {
	m.updateConfig(func(c *config.Config) { c.Render.PitchShift = semitones })
}

// SetNoise selects the noise color. An empty name disables noise; an
// unknown name also disables it and reports the error.
func (m *Manager) SetNoise(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		m.updateConfig(func(c *config.Config) { c.Render.Noise.Color = "" })
		return nil
	}
	color, err := synth.ParseNoiseColor(name)
	if err != nil {
		m.updateConfig(func(c *config.Config) { c.Render.Noise.Color = "" })
		return err
	}
	m.updateConfig(func(c *config.Config) { c.Render.Noise.Color = color.String() })
	return nil
}

func (m *Manager) SetNoiseLevel(level float64) error {
	if math.IsNaN(level) || level < 0 {
		return fmt.Errorf("%w: noise level %v must be non-negative", synth.ErrInvalidArgument, level)
	}
	m.updateConfig(func(c *config.Config) { c.Render.Noise.Level = level })
	return nil
}

// SetMixPath sets the external WAV; empty clears it
func (m *Manager) SetMixPath(path string) error {
	path = strings.TrimSpace(path)
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %w", synth.ErrLoadFailure, err)
		}
	}
	m.updateConfig(func(c *config.Config) { c.Render.MixWavPath = path })
	return nil
}

func (m *Manager) SetEnvelope(e synth.ADSR) error {
	if err := e.Validate(); err != nil {
		return err
	}
	m.updateConfig(func(c *config.Config) {
		c.Render.Envelope = config.EnvelopeConfig{
			Attack:  e.Attack,
			Decay:   e.Decay,
			Sustain: e.Sustain,
			Release: e.Release,
		}
	})
	return nil
}

func (m *Manager) SetMIDIPort(name string) {
	name = strings.TrimSpace(name)
	m.updateConfig(func(c *config.Config) { c.MIDI.PortName = name })
}

// Start runs a job in the background. Only one job runs at a time; its
// outcome becomes the status line.
func (m *Manager) Start(name string, job func(ctx context.Context) (string, error)) error {
	m.jobMu.Lock()
	if m.cancel != nil {
		m.jobMu.Unlock()
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.job = name
	m.status = name + "..."
	m.jobMu.Unlock()
	m.notifyUpdate()

	go func() {
		msg, err := job(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			msg = name + " stopped"
		case err != nil:
			msg = "Error: " + err.Error()
			debug.Log("manager", "%s failed: %v", name, err)
		case msg == "":
			msg = name + " done"
		}

		m.jobMu.Lock()
		cancel()
		m.cancel = nil
		m.job = ""
		m.status = msg
		m.jobMu.Unlock()
		m.notifyUpdate()
	}()
	return nil
}

// Stop cancels the running job, if any
func (m *Manager) Stop() {
	m.jobMu.Lock()
	defer m.jobMu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
}

// Status returns the status line and the running job name (empty if idle)
func (m *Manager) Status() (status, job string) {
	m.jobMu.Lock()
	defer m.jobMu.Unlock()
	return m.status, m.job
}

// SetStatus replaces the status line
func (m *Manager) SetStatus(format string, args ...any) {
	m.jobMu.Lock()
	m.status = fmt.Sprintf(format, args...)
	m.jobMu.Unlock()
	m.notifyUpdate()
}

// SaveConfig writes the settings to configPath
func (m *Manager) SaveConfig() error {
	if m.configPath == "" {
		return nil
	}
	m.cfgMu.RLock()
	defer m.cfgMu.RUnlock()
	return m.cfg.SavePath(m.configPath)
}

func (m *Manager) updateConfig(fn func(c *config.Config)) {
	m.cfgMu.Lock()
	fn(m.cfg)
	m.cfgMu.Unlock()

	if err := m.SaveConfig(); err != nil {
		debug.Log("manager", "save config: %v", err)
	}
	m.notifyUpdate()
}

// notifyUpdate notifies TUI
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// View renders the menu
func (m *Manager) View() string {
	return m.menu.View()
}

// HandleKey routes a key to the menu
func (m *Manager) HandleKey(key string) {
	m.menu.HandleKey(key)
}
