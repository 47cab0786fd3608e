// source_keyboard.go - Computer keyboard as a stand-in for the glove

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"io"
	"slices"
	"sync"
	"time"
)

const (
	KEY_PRESSURE = 80.0
	// Terminals report presses only. A key counts as held while its
	// autorepeat keeps arriving; the window covers the initial repeat delay.
	KEY_HOLD = 600 * time.Millisecond

	KEY_CTRL_C = 0x03
	KEY_ESC    = 0x1B
)

// Tracker-style layout: bottom letter row is the white keys, the row
// above it the black keys, starting at C of the base octave.
var keyOffsets = map[byte]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12, 'o': 13, 'l': 14,
}

// KeyboardSource turns key presses into finger readings.
type KeyboardSource struct {
	mu         sync.Mutex
	baseOctave int
	lowOctave  int // z/x stay within [lowOctave, highOctave]
	highOctave int
	held       map[Note]time.Time
	quit       bool
	now        func() time.Time
	host       *TerminalHost
}

func NewKeyboardSource(baseOctave int) *KeyboardSource {
	return &KeyboardSource{
		baseOctave: baseOctave,
		lowOctave:  MIN_OCTAVE,
		highOctave: MAX_OCTAVE - 1,
		held:       make(map[Note]time.Time),
		now:        time.Now,
	}
}

// SetOctaveRange limits z/x to base octaves lo..hi, normally the range
// passed to Notes for preload. The current base octave is clamped into it.
func (k *KeyboardSource) SetOctaveRange(lo, hi int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.lowOctave = max(lo, MIN_OCTAVE)
	k.highOctave = max(min(hi, MAX_OCTAVE-1), k.lowOctave)
	k.baseOctave = min(max(k.baseOctave, k.lowOctave), k.highOctave)
}

// Attach starts reading the controlling terminal in raw mode.
func (k *KeyboardSource) Attach() error {
	k.host = NewTerminalHost(k)
	return k.host.Start()
}

// Close restores the terminal if Attach put it in raw mode.
func (k *KeyboardSource) Close() {
	if k.host != nil {
		k.host.Stop()
		k.host = nil
	}
}

// HandleKey processes one byte from the terminal. z/x shift the octave,
// q, Esc and Ctrl-C end the session.
func (k *KeyboardSource) HandleKey(b byte) {
	k.mu.Lock()
	defer k.mu.Unlock()

	switch b {
	case 'q', KEY_ESC, KEY_CTRL_C:
		k.quit = true
		return
	case 'z':
		if k.baseOctave > k.lowOctave {
			k.baseOctave--
		}
		return
	case 'x':
		if k.baseOctave < k.highOctave {
			k.baseOctave++
		}
		return
	}

	off, ok := keyOffsets[b]
	if !ok {
		return
	}
	n, err := NoteFromMIDI((k.baseOctave+1)*PITCH_CLASSES + off)
	if err != nil {
		return
	}
	k.held[n] = k.now()
}

// Notes returns every note a key can reach from octave lo to hi, for preload.
func (k *KeyboardSource) Notes(lo, hi int) []Note {
	var notes []Note
	for midi := (lo + 1) * PITCH_CLASSES; midi < (hi+2)*PITCH_CLASSES+3; midi++ {
		if n, err := NoteFromMIDI(midi); err == nil {
			notes = append(notes, n)
		}
	}
	return notes
}

func (k *KeyboardSource) Readings() ([]FingerReading, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.quit {
		return nil, io.EOF
	}
	now := k.now()
	notes := make([]Note, 0, len(k.held))
	for n, at := range k.held {
		if now.Sub(at) > KEY_HOLD {
			delete(k.held, n)
			continue
		}
		notes = append(notes, n)
	}
	slices.SortFunc(notes, func(a, b Note) int { return a.MIDI() - b.MIDI() })

	readings := make([]FingerReading, len(notes))
	for i, n := range notes {
		readings[i] = FingerReading{Finger: i % FINGER_COUNT, Note: n, HasNote: true, Pressure: KEY_PRESSURE}
	}
	return readings, nil
}
