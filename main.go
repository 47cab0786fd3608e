// main.go - Main entry point for the Piano Glove synthesis engine

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
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DEFAULT_LOW_OCTAVE  = 3
	DEFAULT_HIGH_OCTAVE = 5
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m♪ Piano Glove\033[0m \033[38;2;255;170;147m- real-time pressure-driven synthesis\033[0m")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("License: GPLv3 or later")
}

type options struct {
	configPath string
	backend    string
	wavPath    string
	scriptPath string
	midiPort   string
	useMIDI    bool
	useKeys    bool
	octave     int
	logLevel   string
	notes      string
}

func parseFlags(args []string) (*options, error) {
	var o options
	flagSet := flag.NewFlagSet("pianoglove", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&o.configPath, "config", "", "YAML session config")
	flagSet.StringVar(&o.backend, "backend", "", "Audio backend: oto, wav or null")
	flagSet.StringVar(&o.wavPath, "wav", "", "Output file for the wav backend (implies -backend wav)")
	flagSet.StringVar(&o.scriptPath, "script", "", "Lua script providing frame(t) finger readings")
	flagSet.BoolVar(&o.useMIDI, "midi", false, "Play from a MIDI keyboard")
	flagSet.StringVar(&o.midiPort, "midi-port", "", "MIDI input name filter (with -midi)")
	flagSet.BoolVar(&o.useKeys, "keys", false, "Play from the computer keyboard (default)")
	flagSet.IntVar(&o.octave, "octave", 4, "Base octave for -keys")
	flagSet.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.StringVar(&o.notes, "notes", "", "Comma separated notes to preload, e.g. C4,C#4,D4")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./pianoglove [-config file.yaml] [-backend oto|wav|null] [-wav out.wav] -keys|-midi|-script file.lua")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	sources := 0
	for _, on := range []bool{o.scriptPath != "", o.useMIDI, o.useKeys} {
		if on {
			sources++
		}
	}
	if sources == 0 {
		o.useKeys = true
		sources = 1
	}
	if sources != 1 {
		return nil, errors.New("select exactly one input: -keys, -midi or -script")
	}
	return &o, nil
}

// sessionConfig merges the config file with command line overrides.
func sessionConfig(o *options) (*Config, error) {
	cfg := DefaultConfig()
	if o.configPath != "" {
		loaded, err := LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.wavPath != "" {
		cfg.WAVPath = o.wavPath
		cfg.Backend = AUDIO_BACKEND_WAV
	}
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.notes != "" {
		cfg.Notes = strings.Split(o.notes, ",")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// octaveRange lists every note from C of lo to B of hi.
func octaveRange(lo, hi int) []Note {
	var notes []Note
	for oct := lo; oct <= hi; oct++ {
		for p := 0; p < PITCH_CLASSES; p++ {
			notes = append(notes, Note{Pitch: PitchClass(p), Octave: oct})
		}
	}
	return notes
}

type closableSource interface {
	FrameSource
	Close()
}

type midiCloser struct{ *MIDISource }

func (m midiCloser) Close() { _ = m.MIDISource.Close() }

// openSource builds the selected input and the notes it can reach when the
// config does not list any.
func openSource(o *options) (closableSource, []Note, error) {
	switch {
	case o.scriptPath != "":
		src, err := NewScriptSource(o.scriptPath)
		if err != nil {
			return nil, nil, err
		}
		return src, octaveRange(DEFAULT_LOW_OCTAVE, DEFAULT_HIGH_OCTAVE), nil
	case o.useMIDI:
		src, err := OpenMIDISource(o.midiPort)
		if err != nil {
			return nil, nil, err
		}
		return midiCloser{src}, octaveRange(DEFAULT_LOW_OCTAVE-1, DEFAULT_HIGH_OCTAVE+1), nil
	default:
		src := NewKeyboardSource(o.octave)
		lo, hi := max(o.octave-1, MIN_OCTAVE), min(o.octave+1, MAX_OCTAVE-1)
		src.SetOctaveRange(lo, hi)
		if err := src.Attach(); err != nil {
			return nil, nil, err
		}
		fmt.Print("Keys: a w s e d f t g y h u j k o l = notes, z/x = octave, q = quit\r\n")
		return src, src.Notes(lo, hi), nil
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := sessionConfig(opts)
	if err != nil {
		return err
	}
	initLogger(cfg.LogLevel, nil)

	backend, err := NewAudioBackend(cfg)
	if err != nil {
		return err
	}
	sm := NewSoundManager(backend, NewWaveformCache(cfg.SampleRate, cfg.WaveformDuration()), cfg.MinSustain)
	defer func() {
		if err := sm.Close(); err != nil {
			logger.Error("shutdown: close failed", "err", err)
		}
	}()

	src, reachable, err := openSource(opts)
	if err != nil {
		return err
	}
	defer src.Close()

	notes, err := cfg.PreloadNotes()
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		notes = reachable
	}
	if err := sm.Preload(notes); err != nil {
		var devErr *DeviceUnavailableError
		if !errors.As(err, &devErr) {
			return err
		}
		logger.Error("audio device unavailable, continuing silently", "backend", devErr.Backend, "err", devErr.Err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	monitor := NewStopMonitor(sm, cfg.MonitorInterval)
	loop := NewControlLoop(sm, cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	g.Go(func() error {
		err := loop.Run(gctx, src)
		// Deferred stops of the released notes still need the monitor
		time.Sleep(cfg.MinSustain + cfg.MonitorInterval)
		cancel()
		return err
	})

	logger.Info("session running", "backend", backend.Name(), "voices", sm.VoiceCount())
	return g.Wait()
}

func main() {
	boilerPlate()

	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
