// sound_manager.go - Voice registry: preload, play and debounced stop

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
	"errors"
	"math"
	"sync"
	"time"
)

const MIN_SUSTAIN = 200 * time.Millisecond

// SoundManager owns one Voice per preloaded note. Voices live until Close;
// a note is switched on and off purely through its gain.
type SoundManager struct {
	mutex   sync.RWMutex // Guards voices; never taken by the audio path
	voices  map[Note]*Voice
	order   []Note
	cache   *WaveformCache
	backend AudioBackend

	minSustain time.Duration
	now        func() time.Time
}

func NewSoundManager(backend AudioBackend, cache *WaveformCache, minSustain time.Duration) *SoundManager {
	return &SoundManager{
		voices:     make(map[Note]*Voice),
		cache:      cache,
		backend:    backend,
		minSustain: minSustain,
		now:        time.Now,
	}
}

// Preload creates and starts a voice for every note not seen before.
// Invalid notes are logged and skipped. If the backend cannot open a stream
// the first such error is returned once every other note has been tried.
func (sm *SoundManager) Preload(notes []Note) error {
	var firstErr error
	added := 0
	for _, note := range notes {
		freq, err := NoteFrequency(note)
		if err != nil {
			logger.Warn("preload: rejected note", "note", note, "err", err)
			continue
		}

		sm.mutex.RLock()
		_, known := sm.voices[note]
		sm.mutex.RUnlock()
		if known {
			continue
		}

		v := newVoice(note, sm.cache.Get(freq))
		stream, err := sm.backend.OpenStream(v)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			var devErr *DeviceUnavailableError
			if errors.As(err, &devErr) {
				// Device is gone for every remaining note as well
				break
			}
			logger.Error("preload: stream open failed", "note", note, "err", err)
			continue
		}
		v.stream = stream

		sm.mutex.Lock()
		if _, raced := sm.voices[note]; raced {
			sm.mutex.Unlock()
			_ = stream.Close()
			continue
		}
		sm.voices[note] = v
		sm.order = append(sm.order, note)
		sm.mutex.Unlock()

		stream.Start()
		added++
	}
	logger.Info("preload: voices ready", "added", added, "total", sm.VoiceCount(), "waveforms", sm.cache.Len())
	return firstErr
}

func (sm *SoundManager) voice(note Note) *Voice {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.voices[note]
}

// PlayNote sets the note's gain and starts its activation window if it is
// not already sounding. The render cursor is never reset, so gain changes
// on a held note are phase continuous.
func (sm *SoundManager) PlayNote(note Note, volume float64) {
	if !note.Valid() {
		logger.Warn("play: rejected note", "note", note)
		return
	}
	v := sm.voice(note)
	if v == nil {
		return
	}
	if math.IsNaN(volume) {
		volume = 0
	}
	volume = min(max(volume, 0), 1)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.setGain(float32(volume))
	v.stopDeadline = time.Time{}
	if v.activatedAt.IsZero() {
		v.activatedAt = sm.now()
	}
}

// StopNote silences the note, or defers the silence until the note has
// sounded for the minimum sustain.
func (sm *SoundManager) StopNote(note Note) {
	if !note.Valid() {
		logger.Warn("stop: rejected note", "note", note)
		return
	}
	v := sm.voice(note)
	if v == nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	now := sm.now()
	if now.Sub(v.activatedAt) >= sm.minSustain {
		v.setGain(0)
		v.activatedAt = time.Time{}
		v.stopDeadline = time.Time{}
		return
	}
	v.stopDeadline = v.activatedAt.Add(sm.minSustain)
}

// ExpireStops silences every voice whose deferred stop is due at now and
// returns how many were silenced.
func (sm *SoundManager) ExpireStops(now time.Time) int {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	expired := 0
	for _, v := range sm.voices {
		v.mu.Lock()
		if !v.stopDeadline.IsZero() && !now.Before(v.stopDeadline) {
			v.setGain(0)
			v.activatedAt = time.Time{}
			v.stopDeadline = time.Time{}
			expired++
		}
		v.mu.Unlock()
	}
	return expired
}

// Gain returns the note's current gain, or 0 for an unknown note.
func (sm *SoundManager) Gain(note Note) float32 {
	v := sm.voice(note)
	if v == nil {
		return 0
	}
	return v.Gain()
}

// Active reports whether the note has an open activation window.
func (sm *SoundManager) Active(note Note) bool {
	v := sm.voice(note)
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.activatedAt.IsZero()
}

// StopPending reports whether a deferred stop is waiting on the monitor.
func (sm *SoundManager) StopPending(note Note) bool {
	v := sm.voice(note)
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.stopDeadline.IsZero()
}

// Voice returns the voice for note, or nil if it was never preloaded.
func (sm *SoundManager) Voice(note Note) *Voice {
	return sm.voice(note)
}

// Notes returns the preloaded notes in preload order.
func (sm *SoundManager) Notes() []Note {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return append([]Note(nil), sm.order...)
}

func (sm *SoundManager) VoiceCount() int {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return len(sm.voices)
}

// Close tears down every stream and the backend.
func (sm *SoundManager) Close() error {
	sm.mutex.Lock()
	voices := sm.voices
	sm.voices = make(map[Note]*Voice)
	sm.order = nil
	sm.mutex.Unlock()

	for _, v := range voices {
		v.mu.Lock()
		v.setGain(0)
		v.mu.Unlock()
		if v.stream != nil {
			_ = v.stream.Close()
		}
	}
	return sm.backend.Close()
}
