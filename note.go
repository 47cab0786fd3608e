// note.go - Note identifiers and equal-temperament frequency mapping

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
	"math"
	"strconv"
	"strings"
)

// PitchClass is one of the 12 chromatic names, C=0 .. B=11.
type PitchClass uint8

const (
	PITCH_CLASSES = 12
	MIN_OCTAVE    = 0
	MAX_OCTAVE    = 9

	A4_FREQ = 440.0
	A4_MIDI = 69
)

var pitchNames = [PITCH_CLASSES]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func (p PitchClass) String() string {
	if int(p) >= PITCH_CLASSES {
		return "?"
	}
	return pitchNames[p]
}

// Note is a pitch class plus octave. It is a plain value and is used
// directly as a map key.
type Note struct {
	Pitch  PitchClass
	Octave int
}

func (n Note) String() string {
	return n.Pitch.String() + strconv.Itoa(n.Octave)
}

// Valid reports whether the note can be mapped to a frequency.
func (n Note) Valid() bool {
	return int(n.Pitch) < PITCH_CLASSES && n.Octave >= MIN_OCTAVE && n.Octave <= MAX_OCTAVE
}

// MIDI returns the MIDI note number (C4 = 60).
func (n Note) MIDI() int {
	return (n.Octave+1)*PITCH_CLASSES + int(n.Pitch)
}

// ParseNote accepts names like "C4", "C#4" and "A#0".
func ParseNote(s string) (Note, error) {
	name := strings.TrimSpace(s)
	split := len(name)
	for split > 0 && name[split-1] >= '0' && name[split-1] <= '9' {
		split--
	}
	if split == 0 {
		return Note{}, &InvalidNoteError{Input: s, Reason: "missing pitch class"}
	}
	if split == len(name) {
		return Note{}, &InvalidNoteError{Input: s, Reason: "missing octave"}
	}

	pitch := -1
	for i, pn := range pitchNames {
		if pn == name[:split] {
			pitch = i
			break
		}
	}
	if pitch < 0 {
		return Note{}, &InvalidNoteError{Input: s, Reason: "unknown pitch class " + strconv.Quote(name[:split])}
	}

	octave, err := strconv.Atoi(name[split:])
	if err != nil || octave < MIN_OCTAVE || octave > MAX_OCTAVE {
		return Note{}, &InvalidNoteError{Input: s, Reason: "octave out of range"}
	}
	return Note{Pitch: PitchClass(pitch), Octave: octave}, nil
}

// MustParseNote is ParseNote for literals known to be valid.
func MustParseNote(s string) Note {
	n, err := ParseNote(s)
	if err != nil {
		panic(err)
	}
	return n
}

// NoteFromMIDI maps a MIDI note number back to a Note.
func NoteFromMIDI(midi int) (Note, error) {
	n := Note{Pitch: PitchClass(((midi % PITCH_CLASSES) + PITCH_CLASSES) % PITCH_CLASSES), Octave: midi/PITCH_CLASSES - 1}
	if midi < 0 || !n.Valid() {
		return Note{}, &InvalidNoteError{Input: "midi " + strconv.Itoa(midi), Reason: "outside playable range"}
	}
	return n, nil
}

// NoteFrequency returns the equal-temperament frequency of a note in Hz.
func NoteFrequency(n Note) (float64, error) {
	if !n.Valid() {
		return 0, &InvalidNoteError{Input: n.String(), Reason: "pitch class or octave out of range"}
	}
	return A4_FREQ * math.Exp2(float64(n.MIDI()-A4_MIDI)/PITCH_CLASSES), nil
}
