package main

import (
	"math"
	"testing"
	"time"
)

func TestGenerateWaveform_Length(t *testing.T) {
	wf := GenerateWaveform(440, SAMPLE_RATE, WAVEFORM_SECONDS*time.Second)
	if wf.Len() != SAMPLE_RATE*WAVEFORM_SECONDS {
		t.Fatalf("Len() = %d, want %d", wf.Len(), SAMPLE_RATE*WAVEFORM_SECONDS)
	}
	if wf.Samples[0] != 0 {
		t.Errorf("first sample = %v, want 0", wf.Samples[0])
	}
}

// One period read back from the table must match an ideal sine of the
// requested frequency.
func TestGenerateWaveform_PeriodRoundTrip(t *testing.T) {
	tests := []struct {
		freq float64
		rate int
	}{
		{440, 44100},
		{261.6256, 44100},
		{1000, 48000},
		{100, 8000},
	}
	for _, tt := range tests {
		wf := GenerateWaveform(tt.freq, tt.rate, time.Second)
		period := int(math.Ceil(float64(tt.rate) / tt.freq))
		for i := 0; i < period; i++ {
			want := math.Sin(2 * math.Pi * tt.freq * float64(i) / float64(tt.rate))
			if d := math.Abs(float64(wf.Samples[i]) - want); d > 1e-6 {
				t.Fatalf("f=%v r=%d sample %d = %v, want %v", tt.freq, tt.rate, i, wf.Samples[i], want)
			}
		}

		// Zero crossings over the whole buffer give back the frequency.
		crossings := 0
		for i := 1; i < wf.Len(); i++ {
			if wf.Samples[i-1] < 0 && wf.Samples[i] >= 0 {
				crossings++
			}
		}
		if math.Abs(float64(crossings)-tt.freq) > 1 {
			t.Errorf("f=%v: %d rising crossings in 1s", tt.freq, crossings)
		}
	}
}

func TestWaveformCache_Memoized(t *testing.T) {
	c := NewWaveformCache(TEST_SAMPLE_RATE, TEST_WAVE_LEN)
	a := c.Get(440)
	b := c.Get(440)
	if a != b {
		t.Error("same frequency returned different buffers")
	}
	if c.Get(880) == a {
		t.Error("different frequencies share a buffer")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if a.SampleRate != TEST_SAMPLE_RATE || a.Len() != TEST_SAMPLE_RATE/2 {
		t.Errorf("waveform rate %d len %d", a.SampleRate, a.Len())
	}
}
