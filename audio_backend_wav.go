// audio_backend_wav.go - Records the mixed voice streams to a WAV file

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
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	WAV_BIT_DEPTH    = 16
	WAV_PCM_FORMAT   = 1
	WAV_SAMPLE_SCALE = 32767

	MAX_SAMPLE = 1.0
	MIN_SAMPLE = -1.0
)

// WAVBackend stands in for a sound card: it pulls one block from every
// started stream per tick, sums them and appends the mix to a WAV file.
type WAVBackend struct {
	mutex   sync.Mutex
	file    *os.File
	enc     *wav.Encoder
	streams []*wavStream
	mix     []float32
	scratch []float32
	intBuf  *audio.IntBuffer
	frames  int

	period   time.Duration
	realtime bool
	stop     chan struct{}
	done     chan struct{}
	running  bool
	closed   bool
}

type wavStream struct {
	src     SampleSource
	started atomic.Bool
	owner   *WAVBackend
}

func (s *wavStream) Start() {
	s.started.Store(true)
	s.owner.startClock()
}

func (s *wavStream) Close() error {
	s.started.Store(false)
	return nil
}

// NewWAVBackend creates path and renders blocks of bufferSize at the pace
// of a real device.
func NewWAVBackend(path string, sampleRate int, bufferSize time.Duration) (*WAVBackend, error) {
	return newWAVBackend(path, sampleRate, bufferSize, true)
}

func newWAVBackend(path string, sampleRate int, bufferSize time.Duration, realtime bool) (*WAVBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("wav backend: no output path")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav backend: %w", err)
	}
	block := int(float64(sampleRate) * bufferSize.Seconds())
	if block < 1 {
		block = 1
	}
	return &WAVBackend{
		file: f,
		enc:  wav.NewEncoder(f, sampleRate, WAV_BIT_DEPTH, 1, WAV_PCM_FORMAT),
		mix:  make([]float32, block),
		intBuf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			Data:           make([]int, block),
			SourceBitDepth: WAV_BIT_DEPTH,
		},
		scratch:  make([]float32, block),
		period:   bufferSize,
		realtime: realtime,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

func (b *WAVBackend) Name() string { return AUDIO_BACKEND_WAV }

func (b *WAVBackend) OpenStream(src SampleSource) (AudioStream, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return nil, &DeviceUnavailableError{Backend: AUDIO_BACKEND_WAV, Err: os.ErrClosed}
	}
	s := &wavStream{src: src, owner: b}
	b.streams = append(b.streams, s)
	return s, nil
}

func (b *WAVBackend) startClock() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if !b.realtime || b.running || b.closed {
		return
	}
	b.running = true
	go b.clock()
}

func (b *WAVBackend) clock() {
	defer close(b.done)
	ticker := time.NewTicker(b.period)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			if err := b.RenderBlock(); err != nil {
				if !errors.Is(err, os.ErrClosed) {
					logger.Error("wav: write failed", "err", err)
				}
				return
			}
		}
	}
}

// RenderBlock mixes one block from every started stream and writes it.
func (b *WAVBackend) RenderBlock() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.closed {
		return os.ErrClosed
	}

	clear(b.mix)
	for _, s := range b.streams {
		if !s.started.Load() {
			continue
		}
		s.src.Render(b.scratch)
		for i, v := range b.scratch {
			b.mix[i] += v
		}
	}
	for i, v := range b.mix {
		v = min(max(v, MIN_SAMPLE), MAX_SAMPLE)
		b.intBuf.Data[i] = int(v * WAV_SAMPLE_SCALE)
	}
	if err := b.enc.Write(b.intBuf); err != nil {
		return err
	}
	b.frames += len(b.mix)
	return nil
}

// Frames returns the number of samples written so far.
func (b *WAVBackend) Frames() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.frames
}

// Close stops the clock and finalizes the WAV header. Later calls are no-ops.
func (b *WAVBackend) Close() error {
	b.mutex.Lock()
	if b.closed {
		b.mutex.Unlock()
		return nil
	}
	b.closed = true
	running := b.running
	b.mutex.Unlock()

	if running {
		close(b.stop)
		<-b.done
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if err := b.enc.Close(); err != nil {
		_ = b.file.Close()
		return fmt.Errorf("wav backend: %w", err)
	}
	return b.file.Close()
}
