package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pianoglove.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SampleRate != SAMPLE_RATE || cfg.MinSustain != MIN_SUSTAIN || cfg.MonitorInterval != MONITOR_INTERVAL {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.WaveformDuration() != 10*time.Second {
		t.Errorf("WaveformDuration() = %v", cfg.WaveformDuration())
	}
	if cfg.ActivationThreshold != 20 || cfg.VolumeOffset != 10 || cfg.VolumeSpan != 80 {
		t.Errorf("pressure mapping defaults changed: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
sample_rate: 48000
min_sustain: 150ms
control_interval: 20ms
backend: null
notes: [C4, "C#4", D4]
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SampleRate != 48000 || cfg.MinSustain != 150*time.Millisecond || cfg.ControlInterval != 20*time.Millisecond {
		t.Errorf("loaded %+v", cfg)
	}
	if cfg.Backend != AUDIO_BACKEND_NULL {
		t.Errorf("backend = %q", cfg.Backend)
	}
	// Untouched fields keep their defaults.
	if cfg.MonitorInterval != MONITOR_INTERVAL || cfg.VolumeSpan != VOLUME_SPAN {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	notes, err := cfg.PreloadNotes()
	if err != nil || len(notes) != 3 || notes[1] != MustParseNote("C#4") {
		t.Errorf("PreloadNotes() = %v, %v", notes, err)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "sample_rate: [", "parse config"},
		{"bad note", "notes: [C4, H4]", "invalid note"},
		{"bad backend", "backend: alsa", "unknown backend"},
		{"negative rate", "sample_rate: -1", "sample_rate"},
		{"negative span", "volume_span: -80", "volume_span"},
		{"zero rate", "sample_rate: 0", "sample_rate"},
		{"zero interval", "monitor_interval: 0s", "monitor_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfig error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig_ExplicitZero(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "activation_threshold: 0\nmin_sustain: 0s\nvolume_offset: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ActivationThreshold != 0 || cfg.MinSustain != 0 || cfg.VolumeOffset != 0 {
		t.Errorf("explicit zeros replaced by defaults: threshold=%v min_sustain=%v offset=%v",
			cfg.ActivationThreshold, cfg.MinSustain, cfg.VolumeOffset)
	}
	if cfg.SampleRate != SAMPLE_RATE {
		t.Errorf("missing sample_rate = %d, want default", cfg.SampleRate)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestSessionConfig_FlagOverrides(t *testing.T) {
	opts, err := parseFlags([]string{"-wav", "out.wav", "-notes", "C4,E4", "-log-level", "debug", "-script", "x.lua"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := sessionConfig(opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != AUDIO_BACKEND_WAV || cfg.WAVPath != "out.wav" || cfg.LogLevel != "debug" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.Notes) != 2 {
		t.Errorf("notes = %v", cfg.Notes)
	}
}

func TestParseFlags_Sources(t *testing.T) {
	opts, err := parseFlags(nil)
	if err != nil || !opts.useKeys {
		t.Errorf("no source flag: useKeys=%v err=%v", opts != nil && opts.useKeys, err)
	}
	if _, err := parseFlags([]string{"-midi", "-keys"}); err == nil {
		t.Error("two sources accepted")
	}
}
