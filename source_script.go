// source_script.go - Lua scripted finger readings for demos and replay

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
	"io"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const SCRIPT_FRAME_FN = "frame"

// ScriptSource asks a Lua script for the readings of every tick. The script
// defines
//
//	function frame(t) ... end
//
// where t is seconds since the first tick. It returns a list of
// {finger=0, note="C4", pressure=80} tables, or nil once it is finished.
// A missing note field means the finger is off the keyboard.
//
// An LState is single threaded; Readings must only be called from the
// control loop goroutine.
type ScriptSource struct {
	L     *lua.LState
	fn    lua.LValue
	start time.Time
	now   func() time.Time
}

// NewScriptSource loads the script at path.
func NewScriptSource(path string) (*ScriptSource, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	return newScriptSource(L)
}

// NewScriptSourceString loads a script from source text.
func NewScriptSourceString(src string) (*ScriptSource, error) {
	L := lua.NewState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("script: %w", err)
	}
	return newScriptSource(L)
}

func newScriptSource(L *lua.LState) (*ScriptSource, error) {
	fn := L.GetGlobal(SCRIPT_FRAME_FN)
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("script: no %s(t) function defined", SCRIPT_FRAME_FN)
	}
	return &ScriptSource{L: L, fn: fn, now: time.Now}, nil
}

func (s *ScriptSource) Readings() ([]FingerReading, error) {
	now := s.now()
	if s.start.IsZero() {
		s.start = now
	}
	t := now.Sub(s.start).Seconds()

	if err := s.L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(t)); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	if ret == lua.LNil {
		return nil, io.EOF
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script: %s returned %s, want table", SCRIPT_FRAME_FN, ret.Type())
	}

	var readings []FingerReading
	tbl.ForEach(func(_, v lua.LValue) {
		entry, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		r := FingerReading{
			Finger:   int(lua.LVAsNumber(s.L.GetField(entry, "finger"))),
			Pressure: float64(lua.LVAsNumber(s.L.GetField(entry, "pressure"))),
		}
		if name := s.L.GetField(entry, "note"); name != lua.LNil {
			n, err := ParseNote(lua.LVAsString(name))
			if err != nil {
				// Treated like a finger between keys
				logger.Warn("script: bad note", "err", err)
			} else {
				r.Note, r.HasNote = n, true
			}
		}
		readings = append(readings, r)
	})
	return readings, nil
}

// Close releases the Lua state.
func (s *ScriptSource) Close() {
	s.L.Close()
}
