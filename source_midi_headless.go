//go:build headless

package main

import "errors"

func OpenMIDISource(pattern string) (*MIDISource, error) {
	return nil, errors.New("midi: not available in headless builds")
}
