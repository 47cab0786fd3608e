// audio_backend.go - Output stream abstraction shared by all audio backends

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
	"fmt"
	"sync"
	"sync/atomic"
)

const (
	AUDIO_BACKEND_OTO  = "oto"
	AUDIO_BACKEND_WAV  = "wav"
	AUDIO_BACKEND_NULL = "null"
)

// SampleSource produces mono float32 samples on demand. Voice implements it.
type SampleSource interface {
	Render(out []float32)
}

// AudioStream is one dedicated output stream. It is opened once per voice
// at preload and closed at engine shutdown.
type AudioStream interface {
	Start()
	Close() error
}

// AudioBackend opens output streams on some sink.
type AudioBackend interface {
	Name() string
	OpenStream(src SampleSource) (AudioStream, error)
	Close() error
}

// NewAudioBackend builds the backend selected in cfg.
func NewAudioBackend(cfg *Config) (AudioBackend, error) {
	switch cfg.Backend {
	case AUDIO_BACKEND_OTO:
		return NewOtoBackend(cfg.SampleRate, cfg.BufferSize), nil
	case AUDIO_BACKEND_WAV:
		return NewWAVBackend(cfg.WAVPath, cfg.SampleRate, cfg.BufferSize)
	case AUDIO_BACKEND_NULL:
		return NewNullBackend(), nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", cfg.Backend)
}

// NullBackend accepts streams but sends them nowhere. Samples are only
// rendered when Pump is called, which makes it the backend of choice for
// tests and for running without a sound card.
type NullBackend struct {
	mutex   sync.Mutex
	streams []*nullStream
	scratch []float32

	// OpenErr, when set, is reported by OpenStream as an unavailable device.
	OpenErr error
}

type nullStream struct {
	src     SampleSource
	started atomic.Bool
	closed  atomic.Bool
}

func (s *nullStream) Start() { s.started.Store(true) }

func (s *nullStream) Close() error {
	s.started.Store(false)
	s.closed.Store(true)
	return nil
}

func NewNullBackend() *NullBackend {
	return &NullBackend{}
}

func (b *NullBackend) Name() string { return AUDIO_BACKEND_NULL }

func (b *NullBackend) OpenStream(src SampleSource) (AudioStream, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.OpenErr != nil {
		return nil, &DeviceUnavailableError{Backend: AUDIO_BACKEND_NULL, Err: b.OpenErr}
	}
	s := &nullStream{src: src}
	b.streams = append(b.streams, s)
	return s, nil
}

// Streams returns how many streams were opened, closed ones included.
func (b *NullBackend) Streams() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.streams)
}

// Running returns how many streams are started and not yet closed.
func (b *NullBackend) Running() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	n := 0
	for _, s := range b.streams {
		if s.started.Load() {
			n++
		}
	}
	return n
}

// Pump renders n samples from every running stream and discards them.
func (b *NullBackend) Pump(n int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if len(b.scratch) < n {
		b.scratch = make([]float32, n)
	}
	for _, s := range b.streams {
		if s.started.Load() {
			s.src.Render(b.scratch[:n])
		}
	}
}

func (b *NullBackend) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, s := range b.streams {
		_ = s.Close()
	}
	return nil
}
