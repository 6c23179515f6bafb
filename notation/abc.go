package notation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"go-abcsynth/debug"
	"go-abcsynth/synth"
)

// Seconds per whole note at the reference tempo (quarter note = 0.5s)
const wholeNoteSeconds = 2.0

// Semitone offsets of the natural note letters from C
var letterSemitones = map[rune]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Tuplet ratios for (p: p notes in the time of q
var tupletRatios = map[int]float64{
	2: 3.0 / 2,
	3: 2.0 / 3,
	4: 3.0 / 4,
	6: 2.0 / 6,
}

// MIDIToFrequency converts a MIDI key to Hz (A4 = 69 = 440Hz)
func MIDIToFrequency(key int) float64 {
	return 440 * math.Pow(2, float64(key-69)/12)
}

// FrequencyToMIDI returns the nearest MIDI key for a frequency
func FrequencyToMIDI(freq float64) int {
	return int(math.Round(69 + 12*math.Log2(freq/440)))
}

// abcReader walks the body of an ABC tune. Key signatures and repeats are
// not interpreted; accidentals are explicit and carry to the end of the bar.
type abcReader struct {
	src  []rune
	pos  int
	unit float64 // default note length as a fraction of a whole note
	bar  float64 // bar length as a fraction of a whole note

	notes      []synth.NoteEvent
	barAccs    map[int]int // natural MIDI key -> accidental for this bar
	tied       bool
	brokenNext float64 // multiplier for the note after a broken rhythm mark
	tupletLeft int
	tupletMul  float64
}

// ParseABC reads the notes of the first tune in an ABC document
func ParseABC(doc string) ([]synth.NoteEvent, error) {
	r := &abcReader{
		unit:    1.0 / 8,
		bar:     1,
		barAccs: make(map[int]int),
	}

	inBody := false
	for lineNo, line := range strings.Split(doc, "\n") {
		if i := strings.IndexRune(line, '%'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			// A blank line after the body ends the tune
			if inBody && len(r.notes) > 0 {
				break
			}
			continue
		}

		if isFieldLine(line) {
			field, value := line[0], strings.TrimSpace(line[2:])
			if err := r.field(field, value); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			if field == 'K' {
				inBody = true
			}
			continue
		}

		inBody = true
		if err := r.body(strings.TrimSuffix(line, "\\")); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
	}

	if len(r.notes) == 0 {
		return nil, fmt.Errorf("no notes found")
	}
	return r.notes, nil
}

func isFieldLine(line string) bool {
	return len(line) >= 2 && line[1] == ':' && unicode.IsLetter(rune(line[0])) && line[0] != '|'
}

// field applies the header fields that affect durations
func (r *abcReader) field(field byte, value string) error {
	switch field {
	case 'L':
		f, err := parseFraction(value)
		if err != nil {
			return fmt.Errorf("L: %w", err)
		}
		r.unit = f
	case 'K':
		if !naturalKey(value) {
			debug.Log("notation", "key signature K:%s is not applied; write accidentals explicitly", value)
		}
	case 'M':
		switch value {
		case "C", "C|":
			r.bar = 1
		case "none", "":
		default:
			f, err := parseFraction(value)
			if err != nil {
				return fmt.Errorf("M: %w", err)
			}
			r.bar = f
		}
	}
	return nil
}

// naturalKey reports whether a K: value needs no sharps or flats
func naturalKey(value string) bool {
	key, _, _ := strings.Cut(strings.TrimSpace(value), " ")
	switch strings.ToLower(key) {
	case "", "none", "c", "cmaj", "cmajor", "cion", "cionian", "am", "amin", "aminor", "aaeol", "aaeolian":
		return true
	}
	return false
}

func parseFraction(s string) (float64, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, fmt.Errorf("invalid fraction %q", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, fmt.Errorf("invalid fraction %q", s)
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil || d == 0 || n <= 0 {
		return 0, fmt.Errorf("invalid fraction %q", s)
	}
	return float64(n) / float64(d), nil
}

func (r *abcReader) peek() rune {
	if r.pos >= len(r.src) {
		return 0
	}
	return r.src[r.pos]
}

func (r *abcReader) skipPast(end rune) {
	for r.pos < len(r.src) && r.src[r.pos] != end {
		r.pos++
	}
	r.pos++
}

func (r *abcReader) body(line string) error {
	r.src = []rune(line)
	r.pos = 0

	for r.pos < len(r.src) {
		c := r.src[r.pos]
		switch {
		case c == '"':
			r.pos++
			r.skipPast('"')
		case c == '!' || c == '+':
			r.pos++
			r.skipPast(c)
		case c == '{':
			r.skipPast('}')
		case c == '|' || c == ':':
			r.pos++
			clear(r.barAccs)
		case c == '[' && r.pos+1 < len(r.src) && r.src[r.pos+1] == '|':
			// thick-thin bar [|
			r.pos += 2
			clear(r.barAccs)
		case c == '[':
			if err := r.bracket(); err != nil {
				return err
			}
		case c == '(':
			r.pos++
			r.tuplet()
		case c == '-':
			r.pos++
			r.tied = true
		case c == '>' || c == '<':
			r.broken()
		case c == 'z' || c == 'x':
			r.pos++
			r.add(0, r.length()*r.unit)
		case c == 'Z':
			r.pos++
			bars := 1
			if n, ok := r.digits(); ok {
				bars = n
			}
			r.add(0, float64(bars)*r.bar)
		case isNoteStart(c):
			key, err := r.pitch()
			if err != nil {
				return err
			}
			r.add(MIDIToFrequency(key), r.length()*r.unit)
		default:
			// Bar numbers, decorations, spacing and anything unrecognized
			r.pos++
		}
	}
	return nil
}

func isNoteStart(c rune) bool {
	switch c {
	case '^', '_', '=':
		return true
	}
	_, ok := letterSemitones[unicode.ToUpper(c)]
	return ok
}

// bracket handles inline fields [L:1/4] and chords, keeping the chord's first note
func (r *abcReader) bracket() error {
	r.pos++
	if r.pos+1 < len(r.src) && unicode.IsLetter(r.src[r.pos]) && r.src[r.pos+1] == ':' {
		start := r.pos
		r.skipPast(']')
		inner := string(r.src[start : r.pos-1])
		return r.field(inner[0], strings.TrimSpace(inner[2:]))
	}
	if unicode.IsDigit(r.peek()) {
		// Repeat ending like [2
		return nil
	}

	end := -1
	for i := r.pos; i < len(r.src); i++ {
		if r.src[i] == ']' {
			end = i
			break
		}
	}
	if end < 0 {
		// Unclosed bracket: skip the '[' and read on as plain notes
		return nil
	}

	first := -1
	firstLen := 1.0
	for r.pos < end {
		if isNoteStart(r.src[r.pos]) {
			key, err := r.pitch()
			if err != nil {
				return err
			}
			l := r.length()
			if first < 0 {
				first, firstLen = key, l
			}
			continue
		}
		r.pos++
	}
	r.pos = end + 1
	if first < 0 {
		return nil
	}
	r.add(MIDIToFrequency(first), firstLen*r.length()*r.unit)
	return nil
}

func (r *abcReader) tuplet() {
	p, ok := r.digits()
	if !ok {
		return // slur
	}
	if mul, known := tupletRatios[p]; known {
		r.tupletLeft = p
		r.tupletMul = mul
	}
}

// broken applies dotted rhythm: a>b lengthens a and shortens b
func (r *abcReader) broken() {
	c := r.src[r.pos]
	count := 0
	for r.pos < len(r.src) && r.src[r.pos] == c {
		count++
		r.pos++
	}
	short := math.Pow(0.5, float64(count))
	long := 2 - short
	if c == '<' {
		long, short = short, long
	}
	if n := len(r.notes); n > 0 {
		r.notes[n-1].Duration *= long
	}
	r.brokenNext = short
}

func (r *abcReader) digits() (int, bool) {
	start := r.pos
	for r.pos < len(r.src) && unicode.IsDigit(r.src[r.pos]) {
		r.pos++
	}
	if r.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(string(r.src[start:r.pos]))
	return n, err == nil
}

// pitch reads accidentals, letter and octave marks into a MIDI key
func (r *abcReader) pitch() (int, error) {
	acc, explicit := 0, false
accidentals:
	for r.pos < len(r.src) {
		switch r.src[r.pos] {
		case '^':
			acc++
		case '_':
			acc--
		case '=':
			acc = 0
		default:
			break accidentals
		}
		explicit = true
		r.pos++
	}

	if r.pos >= len(r.src) {
		return 0, fmt.Errorf("accidental without note")
	}
	c := r.src[r.pos]
	semi, ok := letterSemitones[unicode.ToUpper(c)]
	if !ok {
		return 0, fmt.Errorf("unexpected %q after accidental", c)
	}
	r.pos++

	natural := 60 + semi
	if unicode.IsLower(c) {
		natural += 12
	}
octaves:
	for r.pos < len(r.src) {
		switch r.src[r.pos] {
		case '\'':
			natural += 12
		case ',':
			natural -= 12
		default:
			break octaves
		}
		r.pos++
	}

	if explicit {
		r.barAccs[natural] = acc
	} else {
		acc = r.barAccs[natural]
	}
	return natural + acc, nil
}

// length reads a length multiplier like 2, /2, 3/2 or //
func (r *abcReader) length() float64 {
	num := 1.0
	if n, ok := r.digits(); ok {
		num = float64(n)
	}
	den := 1.0
	for r.peek() == '/' {
		r.pos++
		if n, ok := r.digits(); ok {
			den *= float64(n)
		} else {
			den *= 2
		}
	}
	return num / den
}

// add appends a note, folding ties and applying pending rhythm modifiers
func (r *abcReader) add(freq, wholeFraction float64) {
	dur := wholeFraction * wholeNoteSeconds
	if r.brokenNext != 0 {
		dur *= r.brokenNext
		r.brokenNext = 0
	}
	if r.tupletLeft > 0 {
		dur *= r.tupletMul
		r.tupletLeft--
	}

	if r.tied {
		r.tied = false
		if n := len(r.notes); n > 0 && r.notes[n-1].Frequency == freq {
			r.notes[n-1].Duration += dur
			return
		}
	}
	r.notes = append(r.notes, synth.NoteEvent{Frequency: freq, Duration: dur, Velocity: 1})
}
