// config.go - YAML engine configuration with defaults

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
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a session. Fields missing from a config
// file keep their DefaultConfig value; a field written as 0 stays 0 and must
// pass Validate.
type Config struct {
	SampleRate          int           `yaml:"sample_rate"`
	WaveformSeconds     float64       `yaml:"waveform_seconds"`
	MinSustain          time.Duration `yaml:"min_sustain"`
	MonitorInterval     time.Duration `yaml:"monitor_interval"`
	ControlInterval     time.Duration `yaml:"control_interval"`
	ActivationThreshold float64       `yaml:"activation_threshold"`
	VolumeOffset        float64       `yaml:"volume_offset"`
	VolumeSpan          float64       `yaml:"volume_span"`
	Backend             string        `yaml:"backend"`
	WAVPath             string        `yaml:"wav_path"`
	BufferSize          time.Duration `yaml:"buffer_size"`
	LogLevel            string        `yaml:"log_level"`
	Notes               []string      `yaml:"notes"`
}

// DefaultConfig returns the built-in session settings.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:          SAMPLE_RATE,
		WaveformSeconds:     WAVEFORM_SECONDS,
		MinSustain:          MIN_SUSTAIN,
		MonitorInterval:     MONITOR_INTERVAL,
		ControlInterval:     CONTROL_INTERVAL,
		ActivationThreshold: ACTIVATION_THRESHOLD,
		VolumeOffset:        VOLUME_OFFSET,
		VolumeSpan:          VOLUME_SPAN,
		Backend:             AUDIO_BACKEND_OTO,
		WAVPath:             "pianoglove.wav",
		BufferSize:          20 * time.Millisecond,
		LogLevel:            "info",
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.WaveformSeconds <= 0 {
		return fmt.Errorf("waveform_seconds must be positive, got %g", c.WaveformSeconds)
	}
	if c.MinSustain < 0 {
		return fmt.Errorf("min_sustain must not be negative, got %v", c.MinSustain)
	}
	if c.MonitorInterval <= 0 || c.ControlInterval <= 0 || c.BufferSize <= 0 {
		return fmt.Errorf("monitor_interval, control_interval and buffer_size must be positive")
	}
	if c.VolumeSpan <= 0 {
		return fmt.Errorf("volume_span must be positive, got %g", c.VolumeSpan)
	}
	switch c.Backend {
	case AUDIO_BACKEND_OTO, AUDIO_BACKEND_WAV, AUDIO_BACKEND_NULL:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := c.PreloadNotes(); err != nil {
		return err
	}
	return nil
}

// WaveformDuration returns the loop length as a time.Duration.
func (c *Config) WaveformDuration() time.Duration {
	return time.Duration(c.WaveformSeconds * float64(time.Second))
}

// PreloadNotes parses the configured note names.
func (c *Config) PreloadNotes() ([]Note, error) {
	notes := make([]Note, 0, len(c.Notes))
	for _, name := range c.Notes {
		n, err := ParseNote(name)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}
