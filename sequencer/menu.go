package sequencer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go-abcsynth/synth"
	"go-abcsynth/widgets"
)

// MenuItem is one row of the main menu
type MenuItem int

const (
	ItemWaveform MenuItem = iota
	ItemLoudness
	ItemNotation
	ItemBPM
	ItemPitchShift
	ItemNoise
	ItemMixWav
	ItemPlay
	ItemSaveWav
	ItemSaveMidi
	ItemEnvelope
	ItemNoiseLevel
	ItemMidiPort
	ItemSendMidi
	ItemExit
	itemCount
)

var itemLabels = [itemCount]string{
	ItemWaveform:   "Select waveform",
	ItemLoudness:   "Set loudness",
	ItemNotation:   "ABC file path",
	ItemBPM:        "Change speed (BPM)",
	ItemPitchShift: "Shift pitch (semitones)",
	ItemNoise:      "Background noise",
	ItemMixWav:     "Mix external WAV",
	ItemPlay:       "Play",
	ItemSaveWav:    "Save as WAV",
	ItemSaveMidi:   "Save as MIDI",
	ItemEnvelope:   "Envelope (ADSR)",
	ItemNoiseLevel: "Noise level",
	ItemMidiPort:   "MIDI output port",
	ItemSendMidi:   "Send to MIDI port",
	ItemExit:       "Exit",
}

// MenuMode is what the menu is currently asking for
type MenuMode int

const (
	ModeNone MenuMode = iota
	ModeInput
	ModeChoose
	ModeConfirm
)

var highlightColor = [3]uint8{229, 107, 93}

// Menu is the interactive front end over a Manager
type Menu struct {
	manager *Manager
	cursor  MenuItem

	mode MenuMode

	// Input mode
	inputLabel  string
	inputBuffer string
	commit      func(value string) error

	// Choose mode
	options   []string
	optCursor int
	optChosen int
	choose    func(idx int)

	// Confirm mode
	confirmMsg    string
	confirmAction func()

	quitting bool
}

// NewMenu creates a menu over manager
func NewMenu(manager *Manager) *Menu {
	return &Menu{manager: manager}
}

// Mode reports whether the menu is taking text, a choice or a y/n
func (mn *Menu) Mode() MenuMode {
	return mn.mode
}

// Cursor is the highlighted item
func (mn *Menu) Cursor() MenuItem {
	return mn.cursor
}

// Quitting is set once exit has been confirmed
func (mn *Menu) Quitting() bool {
	return mn.quitting
}

func (mn *Menu) HandleKey(key string) {
	switch mn.mode {
	case ModeConfirm:
		mn.handleConfirm(key)
		return
	case ModeInput:
		mn.handleInput(key)
		return
	case ModeChoose:
		mn.handleChoose(key)
		return
	}

	switch key {
	case "j", "down":
		if mn.cursor < itemCount-1 {
			mn.cursor++
		}
	case "k", "up":
		if mn.cursor > 0 {
			mn.cursor--
		}
	case "enter", " ":
		mn.activate(mn.cursor)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		mn.cursor = MenuItem(key[0] - '1')
		mn.activate(mn.cursor)
	case "s", "esc":
		mn.manager.Stop()
	case "q", "ctrl+c":
		mn.activate(ItemExit)
	}
}

func (mn *Menu) handleConfirm(key string) {
	switch key {
	case "y", "Y":
		if mn.confirmAction != nil {
			mn.confirmAction()
		}
		mn.mode = ModeNone
		mn.confirmAction = nil
	case "n", "N", "esc", "q":
		mn.mode = ModeNone
		mn.confirmAction = nil
	}
}

func (mn *Menu) handleInput(key string) {
	switch key {
	case "enter":
		commit, value := mn.commit, strings.TrimSpace(mn.inputBuffer)
		mn.mode = ModeNone
		mn.inputBuffer = ""
		mn.commit = nil
		if err := commit(value); err != nil {
			mn.manager.SetStatus("Error: %v", err)
		}
	case "esc":
		mn.mode = ModeNone
		mn.inputBuffer = ""
		mn.commit = nil
	case "backspace":
		if len(mn.inputBuffer) > 0 {
			mn.inputBuffer = mn.inputBuffer[:len(mn.inputBuffer)-1]
		}
	default:
		// Only accept printable characters
		if len(key) == 1 && key[0] >= 32 && key[0] < 127 {
			mn.inputBuffer += key
		}
	}
}

func (mn *Menu) handleChoose(key string) {
	switch key {
	case "j", "down":
		if mn.optCursor < len(mn.options)-1 {
			mn.optCursor++
		}
	case "k", "up":
		if mn.optCursor > 0 {
			mn.optCursor--
		}
	case "enter", " ":
		choose := mn.choose
		mn.mode = ModeNone
		mn.choose = nil
		choose(mn.optCursor)
	case "esc", "q":
		mn.mode = ModeNone
		mn.choose = nil
	}
}

func (mn *Menu) prompt(label, initial string, commit func(value string) error) {
	mn.mode = ModeInput
	mn.inputLabel = label
	mn.inputBuffer = initial
	mn.commit = commit
}

func (mn *Menu) confirm(msg string, action func()) {
	mn.mode = ModeConfirm
	mn.confirmMsg = msg
	mn.confirmAction = action
}

func (mn *Menu) activate(item MenuItem) {
	m := mn.manager
	cfg := m.Config()

	switch item {
	case ItemWaveform:
		mn.options = mn.options[:0]
		for _, w := range synth.Waveforms() {
			mn.options = append(mn.options, w.String())
		}
		mn.optChosen = int(synth.ParseWaveform(cfg.Render.Waveform))
		mn.optCursor = mn.optChosen
		mn.mode = ModeChoose
		mn.choose = func(idx int) {
			m.SetWaveform(mn.options[idx])
			m.SetStatus("Waveform set to %s", mn.options[idx])
		}

	case ItemLoudness:
		mn.prompt("Loudness (0-1)", formatFloat(cfg.Render.Volume), func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid loudness value %q", v)
			}
			if err := m.SetVolume(f); err != nil {
				return err
			}
			m.SetStatus("Loudness set to %s", formatFloat(f))
			return nil
		})

	case ItemNotation:
		// Load runs as a job; it waits on any render holding the notes
		mn.prompt("ABC file path", m.Source(), func(v string) error {
			return m.Start("Loading", func(ctx context.Context) (string, error) {
				if err := m.Load(v); err != nil {
					return "", err
				}
				return fmt.Sprintf("Loaded %d notes from %s", len(m.Notes()), v), nil
			})
		})

	case ItemBPM:
		mn.prompt("BPM", strconv.Itoa(cfg.Render.BPM), func(v string) error {
			bpm, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid BPM value %q, enter an integer", v)
			}
			if err := m.SetBPM(bpm); err != nil {
				return err
			}
			m.SetStatus("BPM updated to %d", bpm)
			return nil
		})

	case ItemPitchShift:
		mn.prompt("Pitch shift in semitones", strconv.Itoa(cfg.Render.PitchShift), func(v string) error {
			st, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid pitch shift %q", v)
			}
			m.SetPitchShift(st)
			m.SetStatus("Pitch shift set to %+d", st)
			return nil
		})

	case ItemNoise:
		mn.prompt("Noise type (white, pink, brown; empty for none)", cfg.Render.Noise.Color, func(v string) error {
			if err := m.SetNoise(v); err != nil {
				return fmt.Errorf("%w; no noise will be added", err)
			}
			if v == "" {
				m.SetStatus("Noise off")
			} else {
				m.SetStatus("Noise type set to %s", strings.ToLower(v))
			}
			return nil
		})

	case ItemMixWav:
		mn.prompt("External WAV path (empty for none)", cfg.Render.MixWavPath, func(v string) error {
			if err := m.SetMixPath(v); err != nil {
				return err
			}
			if v == "" {
				m.SetStatus("External WAV cleared")
			} else {
				m.SetStatus("External WAV file set to %s", v)
			}
			return nil
		})

	case ItemPlay:
		mn.startJob("Rendering and playing", func(ctx context.Context) (string, error) {
			return "Playback finished", m.Play(ctx)
		})

	case ItemSaveWav:
		mn.prompt("Output WAV path", cfg.Paths.OutputWav, func(v string) error {
			return m.Start("Saving WAV", func(ctx context.Context) (string, error) {
				path, err := m.SaveWAV(ctx, v)
				return "Saved to " + path, err
			})
		})

	case ItemSaveMidi:
		if m.Source() == "" {
			m.SetStatus("No ABC file loaded.")
			return
		}
		mn.prompt("Output MIDI path", cfg.Paths.OutputMid, func(v string) error {
			path, err := m.SaveMIDI(v)
			if err != nil {
				return err
			}
			m.SetStatus("Saved to %s", path)
			return nil
		})

	case ItemEnvelope:
		e := cfg.Render.Envelope
		initial := strings.Join([]string{
			formatFloat(e.Attack), formatFloat(e.Decay), formatFloat(e.Sustain), formatFloat(e.Release),
		}, " ")
		mn.prompt("Attack decay sustain release", initial, func(v string) error {
			adsr, err := parseADSR(v)
			if err != nil {
				return err
			}
			if err := m.SetEnvelope(adsr); err != nil {
				return err
			}
			m.SetStatus("Envelope set to %s", v)
			return nil
		})

	case ItemNoiseLevel:
		mn.prompt("Noise level", formatFloat(cfg.Render.Noise.Level), func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid noise level %q", v)
			}
			if err := m.SetNoiseLevel(f); err != nil {
				return err
			}
			m.SetStatus("Noise level set to %s", formatFloat(f))
			return nil
		})

	case ItemMidiPort:
		mn.prompt("MIDI port name or number (empty for first)", cfg.MIDI.PortName, func(v string) error {
			m.SetMIDIPort(v)
			m.SetStatus("MIDI port set to %s", portLabel(v))
			return nil
		})

	case ItemSendMidi:
		mn.startJob("Sending to MIDI", func(ctx context.Context) (string, error) {
			return "MIDI playback finished", m.SendMIDI(ctx)
		})

	case ItemExit:
		mn.confirm("Are you sure you want to exit the program?", func() {
			m.Stop()
			mn.quitting = true
		})
	}
}

func (mn *Menu) startJob(name string, job func(ctx context.Context) (string, error)) {
	if err := mn.manager.Start(name, job); err != nil {
		mn.manager.SetStatus("Busy: press s to stop the current job")
	}
}

func (mn *Menu) View() string {
	switch mn.mode {
	case ModeConfirm:
		return widgets.RenderDialog(mn.confirmMsg, "  [y] Yes    [n] No")
	case ModeInput:
		return widgets.RenderDialog(fmt.Sprintf("%s: %s_", mn.inputLabel, mn.inputBuffer), "[enter] confirm  [esc] cancel")
	case ModeChoose:
		help := widgets.RenderKeyHelp([]widgets.KeySection{
			{Keys: []widgets.KeyBinding{
				{Key: "j / k", Desc: "navigate"},
				{Key: "enter", Desc: "select"},
				{Key: "esc", Desc: "cancel"},
			}},
		})
		return widgets.RenderOptions(mn.options, mn.optCursor, mn.optChosen, highlightColor) + "\n\n" + help
	}

	var out strings.Builder
	for i := MenuItem(0); i < itemCount; i++ {
		prefix := "  "
		if i == mn.cursor {
			prefix = "> "
		}
		out.WriteString(fmt.Sprintf("%s%2d) %-26s %s\n", prefix, i+1, itemLabels[i], mn.value(i)))
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "j / k", Desc: "navigate"},
			{Key: "enter", Desc: "select"},
			{Key: "1-9", Desc: "jump to option"},
			{Key: "s", Desc: "stop playback"},
			{Key: "q", Desc: "exit"},
		}},
	}))
	return out.String()
}

// value is the current setting shown next to an item
func (mn *Menu) value(item MenuItem) string {
	cfg := mn.manager.Config()
	r := cfg.Render

	switch item {
	case ItemWaveform:
		return r.Waveform
	case ItemLoudness:
		return formatFloat(r.Volume)
	case ItemNotation:
		if src := mn.manager.Source(); src != "" {
			return fmt.Sprintf("%s (%d notes)", src, len(mn.manager.Notes()))
		}
		return "(none)"
	case ItemBPM:
		return strconv.Itoa(r.BPM)
	case ItemPitchShift:
		return fmt.Sprintf("%+d", r.PitchShift)
	case ItemNoise:
		if r.Noise.Color == "" {
			return "off"
		}
		return r.Noise.Color
	case ItemMixWav:
		if r.MixWavPath == "" {
			return "off"
		}
		return r.MixWavPath
	case ItemSaveWav:
		return cfg.Paths.OutputWav
	case ItemSaveMidi:
		return cfg.Paths.OutputMid
	case ItemEnvelope:
		e := r.Envelope
		return fmt.Sprintf("A%.2f D%.2f S%.2f R%.2f", e.Attack, e.Decay, e.Sustain, e.Release)
	case ItemNoiseLevel:
		return formatFloat(r.Noise.Level)
	case ItemMidiPort:
		return fmt.Sprintf("%s ch%d", portLabel(cfg.MIDI.PortName), cfg.MIDI.Channel)
	}
	return ""
}

func portLabel(name string) string {
	if name == "" {
		return "(first port)"
	}
	return name
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseADSR(s string) (synth.ADSR, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) != 4 {
		return synth.ADSR{}, fmt.Errorf("%w: expected 4 values, got %d", synth.ErrInvalidArgument, len(fields))
	}
	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return synth.ADSR{}, fmt.Errorf("%w: %q is not a number", synth.ErrInvalidArgument, f)
		}
		vals[i] = v
	}
	return synth.ADSR{Attack: vals[0], Decay: vals[1], Sustain: vals[2], Release: vals[3]}, nil
}
