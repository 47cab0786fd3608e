package main

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestPreload_CreatesOneStartedStreamPerNote(t *testing.T) {
	sm, backend, _ := newTestManager(t, "C4", "C#4", "D4")
	if sm.VoiceCount() != 3 {
		t.Fatalf("VoiceCount() = %d, want 3", sm.VoiceCount())
	}
	if backend.Streams() != 3 || backend.Running() != 3 {
		t.Errorf("streams opened %d running %d, want 3/3", backend.Streams(), backend.Running())
	}
	for _, n := range parseNotes(t, "C4", "C#4", "D4") {
		if g := sm.Gain(n); g != 0 {
			t.Errorf("%s gain = %v after preload, want 0", n, g)
		}
		if v := sm.Voice(n); v == nil || v.Cursor() != 0 {
			t.Errorf("%s voice missing or cursor moved", n)
		}
	}
}

func TestPreload_Idempotent(t *testing.T) {
	sm, backend, _ := newTestManager(t, "C4", "D4")
	before := sm.Voice(MustParseNote("C4"))

	if err := sm.Preload(parseNotes(t, "C4", "D4", "E4")); err != nil {
		t.Fatal(err)
	}
	if err := sm.Preload(parseNotes(t, "E4", "C4")); err != nil {
		t.Fatal(err)
	}
	if sm.VoiceCount() != 3 {
		t.Errorf("VoiceCount() = %d, want 3", sm.VoiceCount())
	}
	if backend.Streams() != 3 {
		t.Errorf("streams opened = %d, want 3", backend.Streams())
	}
	if sm.Voice(MustParseNote("C4")) != before {
		t.Error("re-preloading replaced an existing voice")
	}
	if sm.cache.Len() != 3 {
		t.Errorf("cache holds %d waveforms, want 3", sm.cache.Len())
	}
	want := parseNotes(t, "C4", "D4", "E4")
	got := sm.Notes()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Notes() = %v, want %v", got, want)
		}
	}
}

func TestPreload_SkipsInvalidNotes(t *testing.T) {
	sm, backend, _ := newTestManager(t)
	notes := []Note{MustParseNote("C4"), {Pitch: 13, Octave: 4}, {Pitch: 0, Octave: 12}, MustParseNote("D4")}
	if err := sm.Preload(notes); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	if sm.VoiceCount() != 2 || backend.Streams() != 2 {
		t.Errorf("voices %d streams %d, want 2/2", sm.VoiceCount(), backend.Streams())
	}
}

func TestPreload_DeviceUnavailable(t *testing.T) {
	backend := NewNullBackend()
	backend.OpenErr = errors.New("no sound card")
	sm := NewSoundManager(backend, NewWaveformCache(TEST_SAMPLE_RATE, TEST_WAVE_LEN), MIN_SUSTAIN)

	err := sm.Preload(parseNotes(t, "C4", "D4"))
	var devErr *DeviceUnavailableError
	if !errors.As(err, &devErr) {
		t.Fatalf("Preload error = %v, want *DeviceUnavailableError", err)
	}
	if !errors.Is(err, backend.OpenErr) {
		t.Error("DeviceUnavailableError does not unwrap to the backend error")
	}
	if sm.VoiceCount() != 0 {
		t.Errorf("VoiceCount() = %d, want 0", sm.VoiceCount())
	}

	// The engine stays usable as a silent no-op.
	sm.PlayNote(MustParseNote("C4"), 1)
	sm.StopNote(MustParseNote("C4"))
	if err := sm.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPlayNote_UnknownNoteIsNoop(t *testing.T) {
	sm, backend, _ := newTestManager(t, "C4")
	e5 := MustParseNote("E5")
	sm.PlayNote(e5, 0.9)
	sm.StopNote(e5)
	sm.PlayNote(Note{Pitch: 20, Octave: 4}, 1)
	if sm.VoiceCount() != 1 || backend.Streams() != 1 {
		t.Errorf("voices %d streams %d, want 1/1", sm.VoiceCount(), backend.Streams())
	}
	if sm.Gain(e5) != 0 || sm.Active(e5) {
		t.Error("unknown note reports sound")
	}
}

func TestPlayNote_ClampsVolume(t *testing.T) {
	sm, _, _ := newTestManager(t, "C4")
	c4 := MustParseNote("C4")
	for _, tt := range []struct{ in, want float64 }{{1.7, 1}, {-0.2, 0}, {0.25, 0.25}, {math.NaN(), 0}} {
		sm.PlayNote(c4, tt.in)
		if g := sm.Gain(c4); float64(g) != tt.want {
			t.Errorf("PlayNote(%v): gain %v, want %v", tt.in, g, tt.want)
		}
	}

	// A NaN volume must not reach the device.
	sm.PlayNote(c4, math.NaN())
	out := make([]float32, 16)
	sm.Voice(c4).Render(out)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d = %v after PlayNote(NaN), want 0", i, s)
		}
	}
}

// preload {C4, C#4, D4}, play C4 at t=0, stop at t=0.05: still sounding at
// t=0.1, silent by t=0.25.
func TestDebounce_Scenario(t *testing.T) {
	sm, _, clock := newTestManager(t, "C4", "C#4", "D4")
	c4 := MustParseNote("C4")
	t0 := clock.Now()

	sm.PlayNote(c4, 0.8)
	clock.Advance(50 * time.Millisecond)
	sm.StopNote(c4)
	if !sm.StopPending(c4) {
		t.Fatal("early stop was not deferred")
	}

	clock.Advance(50 * time.Millisecond)
	sm.ExpireStops(clock.Now())
	if g := sm.Gain(c4); g != 0.8 {
		t.Fatalf("gain at t=0.1 = %v, want 0.8", g)
	}

	clock.Advance(99 * time.Millisecond)
	sm.ExpireStops(clock.Now())
	if g := sm.Gain(c4); g != 0.8 {
		t.Fatalf("gain at t=0.199 = %v, want 0.8", g)
	}

	clock.Advance(time.Millisecond)
	if !clock.Now().Equal(t0.Add(MIN_SUSTAIN)) {
		t.Fatalf("clock drifted: %v", clock.Now().Sub(t0))
	}
	if n := sm.ExpireStops(clock.Now()); n != 1 {
		t.Errorf("ExpireStops = %d, want 1", n)
	}
	if g := sm.Gain(c4); g != 0 {
		t.Errorf("gain at t=0.2 = %v, want 0", g)
	}
	if sm.Active(c4) || sm.StopPending(c4) {
		t.Error("activation or deadline survived the deferred stop")
	}
}

func TestStopNote_AfterMinSustainIsImmediate(t *testing.T) {
	sm, _, clock := newTestManager(t, "D4")
	d4 := MustParseNote("D4")
	sm.PlayNote(d4, 0.6)
	clock.Advance(MIN_SUSTAIN)
	sm.StopNote(d4)
	if sm.Gain(d4) != 0 || sm.Active(d4) || sm.StopPending(d4) {
		t.Error("stop after the sustain window did not silence immediately")
	}
}

func TestStopNote_NeverPlayedIsImmediate(t *testing.T) {
	sm, _, _ := newTestManager(t, "D4")
	d4 := MustParseNote("D4")
	sm.StopNote(d4)
	if sm.StopPending(d4) || sm.Gain(d4) != 0 {
		t.Error("stopping a silent note left state behind")
	}
}

func TestPlayNote_CancelsPendingStop(t *testing.T) {
	sm, _, clock := newTestManager(t, "E4")
	e4 := MustParseNote("E4")
	t0 := clock.Now()

	sm.PlayNote(e4, 0.5)
	clock.Advance(30 * time.Millisecond)
	sm.StopNote(e4)
	clock.Advance(30 * time.Millisecond)
	sm.PlayNote(e4, 0.7)
	if sm.StopPending(e4) {
		t.Fatal("re-press did not clear the deferred stop")
	}

	clock.Advance(time.Second)
	sm.ExpireStops(clock.Now())
	if g := sm.Gain(e4); g != 0.7 {
		t.Errorf("gain = %v, want 0.7", g)
	}
	// Activation window kept from the first press.
	if v := sm.Voice(e4); !v.activatedAt.Equal(t0) {
		t.Errorf("activation = %v, want %v", v.activatedAt, t0)
	}
}

// play C4 at 0.5 then immediately at 1.0: one activation, gain 1.0 and the
// cursor untouched by the second call.
func TestPlayNote_PhaseContinuous(t *testing.T) {
	sm, backend, clock := newTestManager(t, "C4")
	c4 := MustParseNote("C4")
	v := sm.Voice(c4)

	sm.PlayNote(c4, 0.5)
	first := v.activatedAt
	backend.Pump(300)
	cursor := v.Cursor()

	clock.Advance(10 * time.Millisecond)
	sm.PlayNote(c4, 1.0)
	if v.Cursor() != cursor {
		t.Fatalf("cursor moved from %d to %d on PlayNote", cursor, v.Cursor())
	}
	if !v.activatedAt.Equal(first) {
		t.Error("second PlayNote restarted the activation window")
	}
	if g := sm.Gain(c4); g != 1.0 {
		t.Errorf("gain = %v, want 1.0", g)
	}

	// Ignoring gain, the output continues exactly where it left off.
	out := make([]float32, 200)
	v.Render(out)
	for i, s := range out {
		if want := v.wave.Samples[cursor+i]; s != want {
			t.Fatalf("sample %d = %v, want %v (continuation of cursor %d)", i, s, want, cursor)
		}
	}
}

func TestClose_StopsStreams(t *testing.T) {
	backend := NewNullBackend()
	sm := NewSoundManager(backend, NewWaveformCache(TEST_SAMPLE_RATE, TEST_WAVE_LEN), MIN_SUSTAIN)
	if err := sm.Preload(parseNotes(t, "C4", "G4")); err != nil {
		t.Fatal(err)
	}
	sm.PlayNote(MustParseNote("G4"), 1)
	if err := sm.Close(); err != nil {
		t.Fatal(err)
	}
	if backend.Running() != 0 {
		t.Errorf("Running() = %d after Close, want 0", backend.Running())
	}
	if sm.VoiceCount() != 0 {
		t.Errorf("VoiceCount() = %d after Close", sm.VoiceCount())
	}
}
