// waveform_cache.go - Precomputed looping sine tables, memoized by frequency

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
	"time"
)

const (
	SAMPLE_RATE      = 44100
	WAVEFORM_SECONDS = 10 // Long enough that the loop point is inaudible
)

// Waveform is a read-only looping sample buffer for one frequency.
type Waveform struct {
	Frequency  float64
	SampleRate int
	Samples    []float32
}

// Len returns the loop length in samples.
func (w *Waveform) Len() int {
	return len(w.Samples)
}

// GenerateWaveform computes sampleRate*duration samples of a unit sine.
// It allocates the whole buffer and must never run on the audio path.
func GenerateWaveform(freq float64, sampleRate int, duration time.Duration) *Waveform {
	n := int(float64(sampleRate) * duration.Seconds())
	if n < 1 {
		n = 1
	}
	samples := make([]float32, n)
	step := 2 * math.Pi * freq / float64(sampleRate)
	for i := range samples {
		samples[i] = float32(math.Sin(step * float64(i)))
	}
	return &Waveform{
		Frequency:  freq,
		SampleRate: sampleRate,
		Samples:    samples,
	}
}

// WaveformCache hands out one shared Waveform per distinct frequency.
type WaveformCache struct {
	mu         sync.Mutex
	sampleRate int
	duration   time.Duration
	store      map[float64]*Waveform
}

func NewWaveformCache(sampleRate int, duration time.Duration) *WaveformCache {
	return &WaveformCache{
		sampleRate: sampleRate,
		duration:   duration,
		store:      make(map[float64]*Waveform),
	}
}

// Get returns the cached waveform for freq, generating it on first use.
func (c *WaveformCache) Get(freq float64) *Waveform {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wf, ok := c.store[freq]; ok {
		return wf
	}
	wf := GenerateWaveform(freq, c.sampleRate, c.duration)
	c.store[freq] = wf
	return wf
}

// Len returns the number of distinct waveforms generated so far.
func (c *WaveformCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}
