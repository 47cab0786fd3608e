//go:build !headless

// audio_backend_oto.go - OTO v3 audio output, one player per voice

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
	"github.com/ebitengine/oto/v3"
	"sync"
	"time"
	"unsafe"
)

// OtoBackend shares one oto.Context between all voices. Each voice gets its
// own oto.Player; oto mixes the players on its device goroutine.
type OtoBackend struct {
	sampleRate int
	bufferSize time.Duration

	mutex   sync.Mutex // Only for setup/control operations
	ctx     *oto.Context
	ctxErr  error
	streams []*OtoStream
}

// OtoStream adapts a SampleSource to the io.Reader oto pulls from.
type OtoStream struct {
	src       SampleSource
	player    *oto.Player
	sampleBuf []float32 // Pre-allocated sample buffer
	started   bool
	mutex     sync.Mutex
}

func NewOtoBackend(sampleRate int, bufferSize time.Duration) *OtoBackend {
	return &OtoBackend{
		sampleRate: sampleRate,
		bufferSize: bufferSize,
	}
}

func (b *OtoBackend) Name() string { return AUDIO_BACKEND_OTO }

// context opens the device on first use. oto allows one context per
// process, so a failure is remembered rather than retried.
func (b *OtoBackend) context() (*oto.Context, error) {
	if b.ctx != nil || b.ctxErr != nil {
		return b.ctx, b.ctxErr
	}
	op := &oto.NewContextOptions{
		SampleRate:   b.sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   b.bufferSize,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		b.ctxErr = err
		return nil, err
	}
	<-ready
	b.ctx = ctx
	return ctx, nil
}

func (b *OtoBackend) OpenStream(src SampleSource) (AudioStream, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	ctx, err := b.context()
	if err != nil {
		return nil, &DeviceUnavailableError{Backend: AUDIO_BACKEND_OTO, Err: err}
	}

	// bufferSize worth of float32 samples
	bufSamples := int(float64(b.sampleRate) * b.bufferSize.Seconds())
	if bufSamples < 256 {
		bufSamples = 256
	}
	s := &OtoStream{
		src:       src,
		sampleBuf: make([]float32, bufSamples),
	}
	s.player = ctx.NewPlayer(s)
	s.player.SetBufferSize(bufSamples * 4)
	if err := s.player.Err(); err != nil {
		return nil, &DeviceUnavailableError{Backend: AUDIO_BACKEND_OTO, Err: err}
	}
	b.streams = append(b.streams, s)
	return s, nil
}

func (b *OtoBackend) Close() error {
	b.mutex.Lock()
	streams := b.streams
	b.streams = nil
	b.mutex.Unlock()

	for _, s := range streams {
		_ = s.Close()
	}
	if b.ctx != nil {
		return b.ctx.Suspend()
	}
	return nil
}

func (s *OtoStream) Read(p []byte) (n int, err error) {
	numSamples := len(p) / 4

	// Should only happen if oto asks for more than the configured buffer
	if len(s.sampleBuf) < numSamples {
		s.sampleBuf = make([]float32, numSamples)
	}
	samples := s.sampleBuf[:numSamples]
	s.src.Render(samples)

	if numSamples > 0 {
		copy(p, unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), numSamples*4))
	}
	clear(p[numSamples*4:])
	return len(p), nil
}

func (s *OtoStream) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.started && s.player != nil {
		s.player.Play()
		s.started = true
	}
}

func (s *OtoStream) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.started = false
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}
