package main

import (
	"errors"
	"math"
	"testing"
)

func TestParseNote(t *testing.T) {
	tests := []struct {
		in     string
		pitch  PitchClass
		octave int
	}{
		{"C4", 0, 4},
		{"C#4", 1, 4},
		{"A4", 9, 4},
		{"B0", 11, 0},
		{"G#9", 8, 9},
		{" D3 ", 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := ParseNote(tt.in)
			if err != nil {
				t.Fatalf("ParseNote(%q) error: %v", tt.in, err)
			}
			if n.Pitch != tt.pitch || n.Octave != tt.octave {
				t.Errorf("ParseNote(%q) = %+v, want pitch %d octave %d", tt.in, n, tt.pitch, tt.octave)
			}
		})
	}
}

func TestParseNote_Invalid(t *testing.T) {
	for _, in := range []string{"", "4", "H4", "C", "Cb4", "C#x", "C10", "c4", "E#4"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseNote(in)
			var noteErr *InvalidNoteError
			if !errors.As(err, &noteErr) {
				t.Fatalf("ParseNote(%q) error = %v, want *InvalidNoteError", in, err)
			}
			if noteErr.Input != in {
				t.Errorf("Input = %q, want %q", noteErr.Input, in)
			}
		})
	}
}

func TestNoteString_RoundTrip(t *testing.T) {
	for midi := 12; midi < 132; midi++ {
		n, err := NoteFromMIDI(midi)
		if err != nil {
			t.Fatalf("NoteFromMIDI(%d): %v", midi, err)
		}
		back, err := ParseNote(n.String())
		if err != nil || back != n {
			t.Fatalf("ParseNote(%q) = %+v, %v; want %+v", n.String(), back, err, n)
		}
		if n.MIDI() != midi {
			t.Fatalf("%s.MIDI() = %d, want %d", n, n.MIDI(), midi)
		}
	}
}

func TestNoteFromMIDI_OutOfRange(t *testing.T) {
	for _, midi := range []int{-1, 0, 11, 132} {
		if _, err := NoteFromMIDI(midi); err == nil {
			t.Errorf("NoteFromMIDI(%d) succeeded, want error", midi)
		}
	}
}

func TestNoteFrequency_A4(t *testing.T) {
	f, err := NoteFrequency(MustParseNote("A4"))
	if err != nil {
		t.Fatal(err)
	}
	if f != 440 {
		t.Errorf("A4 = %v Hz, want exactly 440", f)
	}
}

func TestNoteFrequency_Known(t *testing.T) {
	tests := []struct {
		note string
		hz   float64
	}{
		{"C4", 261.6256},
		{"C#4", 277.1826},
		{"A0", 27.5},
		{"E2", 82.4069},
		{"C8", 4186.009},
	}
	for _, tt := range tests {
		f, err := NoteFrequency(MustParseNote(tt.note))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(f-tt.hz) > 0.001 {
			t.Errorf("%s = %.4f Hz, want %.4f", tt.note, f, tt.hz)
		}
	}
}

func TestNoteFrequency_OctaveDoubles(t *testing.T) {
	for p := 0; p < PITCH_CLASSES; p++ {
		for oct := MIN_OCTAVE; oct < MAX_OCTAVE; oct++ {
			lo, _ := NoteFrequency(Note{Pitch: PitchClass(p), Octave: oct})
			hi, _ := NoteFrequency(Note{Pitch: PitchClass(p), Octave: oct + 1})
			if math.Abs(hi/lo-2) > 1e-12 {
				t.Fatalf("%s -> %s ratio %v, want 2", Note{PitchClass(p), oct}, Note{PitchClass(p), oct + 1}, hi/lo)
			}
		}
	}
}

func TestNoteFrequency_Monotonic(t *testing.T) {
	prev := 0.0
	for midi := 12; midi < 132; midi++ {
		n, _ := NoteFromMIDI(midi)
		f, err := NoteFrequency(n)
		if err != nil {
			t.Fatal(err)
		}
		if f <= prev {
			t.Fatalf("%s = %v Hz, not above previous %v", n, f, prev)
		}
		prev = f
	}
}

func TestNoteFrequency_Invalid(t *testing.T) {
	for _, n := range []Note{{Pitch: 12, Octave: 4}, {Pitch: 0, Octave: -1}, {Pitch: 0, Octave: 10}} {
		_, err := NoteFrequency(n)
		var noteErr *InvalidNoteError
		if !errors.As(err, &noteErr) {
			t.Errorf("NoteFrequency(%+v) error = %v, want *InvalidNoteError", n, err)
		}
	}
}

func TestNoteFrequency_NoAlloc(t *testing.T) {
	n := MustParseNote("F#5")
	allocs := testing.AllocsPerRun(100, func() {
		_, _ = NoteFrequency(n)
	})
	if allocs != 0 {
		t.Errorf("NoteFrequency allocated %v times per call", allocs)
	}
}
