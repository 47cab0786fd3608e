// control_loop.go - Turns per-frame finger readings into play/stop calls

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
	"context"
	"errors"
	"io"
	"time"
)

const (
	CONTROL_INTERVAL     = 33 * time.Millisecond // ~30 Hz camera cadence
	ACTIVATION_THRESHOLD = 20.0
	VOLUME_OFFSET        = 10.0
	VOLUME_SPAN          = 80.0
	FINGER_COUNT         = 5
)

// FingerReading is what the tracking collaborators report for one finger
// in one frame. HasNote is false when the finger is off the keyboard.
type FingerReading struct {
	Finger   int
	Note     Note
	HasNote  bool
	Pressure float64
}

// FrameSource yields the finger readings of the next control tick.
type FrameSource interface {
	Readings() ([]FingerReading, error)
}

// NoteSink is the slice of SoundManager the control loop drives.
type NoteSink interface {
	PlayNote(note Note, volume float64)
	StopNote(note Note)
}

// ControlLoop keeps the set of notes it has switched on and reconciles it
// with each frame of readings.
type ControlLoop struct {
	sink      NoteSink
	threshold float64
	offset    float64
	span      float64
	interval  time.Duration

	active  map[Note]struct{}
	current map[Note]struct{}
}

func NewControlLoop(sink NoteSink, cfg *Config) *ControlLoop {
	return &ControlLoop{
		sink:      sink,
		threshold: cfg.ActivationThreshold,
		offset:    cfg.VolumeOffset,
		span:      cfg.VolumeSpan,
		interval:  cfg.ControlInterval,
		active:    make(map[Note]struct{}),
		current:   make(map[Note]struct{}),
	}
}

// Volume maps a pressure reading to a gain. The offset sits below the
// activation threshold, so the first audible volume is already above zero.
func (cl *ControlLoop) Volume(pressure float64) float64 {
	return min(max((pressure-cl.offset)/cl.span, 0), 1)
}

// Tick applies one frame of readings.
func (cl *ControlLoop) Tick(readings []FingerReading) {
	clear(cl.current)

	for _, r := range readings {
		if !r.HasNote {
			continue
		}
		cl.current[r.Note] = struct{}{}
		_, isActive := cl.active[r.Note]

		if r.Pressure > cl.threshold {
			cl.sink.PlayNote(r.Note, cl.Volume(r.Pressure))
			cl.active[r.Note] = struct{}{}
		} else if isActive {
			cl.sink.StopNote(r.Note)
			delete(cl.active, r.Note)
		}
	}

	for note := range cl.active {
		if _, ok := cl.current[note]; !ok {
			cl.sink.StopNote(note)
			delete(cl.active, note)
		}
	}
}

// ActiveNotes returns how many notes the loop currently holds on.
func (cl *ControlLoop) ActiveNotes() int {
	return len(cl.active)
}

// Release stops every note the loop still holds.
func (cl *ControlLoop) Release() {
	for note := range cl.active {
		cl.sink.StopNote(note)
		delete(cl.active, note)
	}
}

// Run ticks at the control interval until ctx is cancelled or the source
// fails. A source returning io.EOF ends the loop cleanly. Held notes are
// released on the way out.
func (cl *ControlLoop) Run(ctx context.Context, src FrameSource) error {
	defer cl.Release()

	ticker := time.NewTicker(cl.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		readings, err := src.Readings()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		cl.Tick(readings)
	}
}
