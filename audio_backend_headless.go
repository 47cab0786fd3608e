//go:build headless

package main

import (
	"errors"
	"time"
)

var errHeadless = errors.New("built with the headless tag")

type OtoBackend struct{}

func NewOtoBackend(sampleRate int, bufferSize time.Duration) *OtoBackend {
	return &OtoBackend{}
}

func (b *OtoBackend) Name() string { return AUDIO_BACKEND_OTO }

func (b *OtoBackend) OpenStream(src SampleSource) (AudioStream, error) {
	return nil, &DeviceUnavailableError{Backend: AUDIO_BACKEND_OTO, Err: errHeadless}
}

func (b *OtoBackend) Close() error {
	return nil
}
