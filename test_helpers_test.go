package main

import (
	"sync"
	"testing"
	"time"
)

const (
	TEST_SAMPLE_RATE = 8000
	TEST_WAVE_LEN    = 500 * time.Millisecond
)

// fakeClock is a manually advanced time source for debounce tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func parseNotes(t *testing.T, names ...string) []Note {
	t.Helper()
	notes := make([]Note, 0, len(names))
	for _, name := range names {
		n, err := ParseNote(name)
		if err != nil {
			t.Fatalf("ParseNote(%q): %v", name, err)
		}
		notes = append(notes, n)
	}
	return notes
}

// newTestManager preloads names on a NullBackend with a short waveform and
// a fake clock.
func newTestManager(t *testing.T, names ...string) (*SoundManager, *NullBackend, *fakeClock) {
	t.Helper()
	backend := NewNullBackend()
	clock := newFakeClock()
	sm := NewSoundManager(backend, NewWaveformCache(TEST_SAMPLE_RATE, TEST_WAVE_LEN), MIN_SUSTAIN)
	sm.now = clock.Now
	if err := sm.Preload(parseNotes(t, names...)); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	t.Cleanup(func() { _ = sm.Close() })
	return sm, backend, clock
}
