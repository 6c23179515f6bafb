package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// NoiseConfig selects the optional background noise layer
type NoiseConfig struct {
	Color string  `json:"color,omitempty"` // empty = no noise
	Level float64 `json:"level"`
	Seed  uint64  `json:"seed,omitempty"` // 0 = new noise every render
}

// EnvelopeConfig is the ADSR applied to every note
type EnvelopeConfig struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

// RenderConfig holds the synthesis settings edited from the menu
type RenderConfig struct {
	Waveform     string         `json:"waveform"`
	Volume       float64        `json:"volume"`
	BPM          int            `json:"bpm"`
	ReferenceBPM int            `json:"referenceBpm"`
	PitchShift   int            `json:"pitchShift"`
	Envelope     EnvelopeConfig `json:"envelope"`
	Noise        NoiseConfig    `json:"noise"`
	MixWavPath   string         `json:"mixWavPath,omitempty"`
}

// PathsConfig remembers file locations between sessions
type PathsConfig struct {
	Notation  string `json:"notation,omitempty"`
	OutputWav string `json:"outputWav,omitempty"`
	OutputMid string `json:"outputMid,omitempty"`
}

// MIDIConfig defines the MIDI output used by "send to port"
type MIDIConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  uint8  `json:"channel,omitempty"` // 1-16
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file, empty = built-in
}

// Config is the main configuration structure
type Config struct {
	Render RenderConfig `json:"render"`
	Paths  PathsConfig  `json:"paths"`
	MIDI   MIDIConfig   `json:"midi,omitempty"`
	UI     UIConfig     `json:"ui,omitempty"`
	Debug  bool         `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Waveform:     "sine",
			Volume:       0.5,
			BPM:          120,
			ReferenceBPM: 120,
			Envelope: EnvelopeConfig{
				Attack:  0.05,
				Decay:   0.1,
				Sustain: 0.7,
				Release: 0.1,
			},
			Noise: NoiseConfig{
				Level: 0.08,
			},
		},
		Paths: PathsConfig{
			OutputWav: "output.wav",
			OutputMid: "output.mid",
		},
		MIDI: MIDIConfig{
			Channel: 1,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-abcsynth"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Environment overrides are applied on top.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return applyEnv(DefaultConfig()), nil
	}
	cfg, err := LoadPath(path)
	if err != nil {
		return nil, err
	}
	return applyEnv(cfg), nil
}

// LoadPath reads a config file, falling back to defaults if it does not exist
func LoadPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Unmarshal over defaults so missing keys keep their default
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SavePath(path)
}

// SavePath writes the config to path, creating the directory if needed
func (c *Config) SavePath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// applyEnv overrides settings from environment variables
func applyEnv(cfg *Config) *Config {
	// Volume as 0-100
	if volume := os.Getenv("GO_ABCSYNTH_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.Render.Volume = min(1, max(0, float64(val)/100.0))
		}
	}

	if bpm := os.Getenv("GO_ABCSYNTH_BPM"); bpm != "" {
		if val, err := strconv.Atoi(bpm); err == nil && val > 0 {
			cfg.Render.BPM = val
		}
	}

	if wave := os.Getenv("GO_ABCSYNTH_WAVEFORM"); wave != "" {
		cfg.Render.Waveform = strings.ToLower(wave)
	}

	if enabled := os.Getenv("GO_ABCSYNTH_DEBUG"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Debug = val
		}
	}

	return cfg
}
