// source_midi.go - MIDI keyboard as a stand-in for the glove

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
	"slices"
	"sync"

	"gitlab.com/gomidi/midi/v2"
)

const MIDI_MAX_VELOCITY = 127.0

// MIDISource keeps the set of held MIDI keys and reports each as a finger
// whose pressure is the key velocity rescaled to the sensor's 0-100 range.
type MIDISource struct {
	mu   sync.Mutex
	held map[Note]float64

	port midiPort // nil until opened on a device
}

// midiPort is the driver side of a MIDISource.
type midiPort interface {
	Close() error
}

func NewMIDISource() *MIDISource {
	return &MIDISource{held: make(map[Note]float64)}
}

// HandleMessage applies one MIDI message. Anything other than note on/off
// is ignored.
func (m *MIDISource) HandleMessage(msg midi.Message) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		n, err := NoteFromMIDI(int(key))
		if err != nil {
			logger.Debug("midi: key outside range", "key", key)
			return
		}
		m.mu.Lock()
		m.held[n] = float64(vel) / MIDI_MAX_VELOCITY * 100
		m.mu.Unlock()
	case msg.GetNoteEnd(&ch, &key):
		n, err := NoteFromMIDI(int(key))
		if err != nil {
			return
		}
		m.mu.Lock()
		delete(m.held, n)
		m.mu.Unlock()
	default:
		logger.Debug("midi: unhandled message", "msg", msg.String())
	}
}

// ReleaseAll drops every held key, e.g. when the device disappears.
func (m *MIDISource) ReleaseAll() {
	m.mu.Lock()
	clear(m.held)
	m.mu.Unlock()
}

func (m *MIDISource) Readings() ([]FingerReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	notes := make([]Note, 0, len(m.held))
	for n := range m.held {
		notes = append(notes, n)
	}
	slices.SortFunc(notes, func(a, b Note) int { return a.MIDI() - b.MIDI() })

	readings := make([]FingerReading, len(notes))
	for i, n := range notes {
		readings[i] = FingerReading{Finger: i % FINGER_COUNT, Note: n, HasNote: true, Pressure: m.held[n]}
	}
	return readings, nil
}

func (m *MIDISource) Close() error {
	if m.port == nil {
		return nil
	}
	err := m.port.Close()
	m.port = nil
	return err
}
