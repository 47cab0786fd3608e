// voice.go - Per-note playback state and the real-time render callback

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
	"sync"
	"sync/atomic"
	"time"
)

// Voice is the playback state of one preloaded note. It is the context
// handed to its output stream, so the stream never looks anything up by
// note name.
type Voice struct {
	// Hot fields, touched on every render call
	gain   atomic.Uint32 // float32 bits; written under mu, read lock-free
	cursor int           // Sample offset into waveform; owned by Render
	wave   *Waveform

	// Control-side state, serialized per voice
	mu           sync.Mutex
	activatedAt  time.Time // Zero when the note is silent
	stopDeadline time.Time // Zero when no deferred stop is pending

	note   Note
	stream AudioStream
}

func newVoice(note Note, wave *Waveform) *Voice {
	return &Voice{
		note: note,
		wave: wave,
	}
}

// Note returns the note this voice plays.
func (v *Voice) Note() Note {
	return v.note
}

// Gain returns the current output gain.
func (v *Voice) Gain() float32 {
	return math.Float32frombits(v.gain.Load())
}

// setGain must be called with v.mu held.
func (v *Voice) setGain(g float32) {
	v.gain.Store(math.Float32bits(g))
}

// Cursor returns the render position. Only meaningful from the goroutine
// that drives Render, or while no stream is pulling samples.
func (v *Voice) Cursor() int {
	return v.cursor
}

// Render fills out with the next len(out) samples of the waveform scaled by
// the current gain and advances the cursor, wrapping at the loop point.
// Called from the audio backend; it does not allocate, lock or log.
func (v *Voice) Render(out []float32) {
	samples := v.wave.Samples
	total := len(samples)
	if total == 0 || len(out) == 0 {
		clear(out)
		return
	}
	gain := v.Gain()
	pos := v.cursor

	i := 0
	for i < len(out) {
		n := copy(out[i:], samples[pos:])
		for j := i; j < i+n; j++ {
			out[j] *= gain
		}
		i += n
		pos += n
		if pos >= total {
			pos = 0
		}
	}
	v.cursor = pos
}
