//go:build !headless

package main

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestOtoStream_ReadFloat32LE(t *testing.T) {
	s := &OtoStream{src: constSource(0.5), sampleBuf: make([]float32, 2)}

	// 6 whole samples plus 2 trailing bytes
	p := make([]byte, 6*4+2)
	for i := range p {
		p[i] = 0xFF
	}
	n, err := s.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read = %d, %v; want %d, nil", n, err, len(p))
	}
	for i := 0; i < 6; i++ {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:])); got != 0.5 {
			t.Errorf("sample %d = %v, want 0.5", i, got)
		}
	}
	if p[24] != 0 || p[25] != 0 {
		t.Errorf("tail bytes = %v, want zero", p[24:])
	}
	if len(s.sampleBuf) < 6 {
		t.Errorf("sample buffer not grown: %d", len(s.sampleBuf))
	}
}

func TestOtoStream_ReadAdvancesVoice(t *testing.T) {
	v := newTestVoice(1)
	s := &OtoStream{src: v, sampleBuf: make([]float32, 64)}
	p := make([]byte, 64*4)
	if _, err := s.Read(p); err != nil {
		t.Fatal(err)
	}
	if v.Cursor() != 64 {
		t.Errorf("cursor = %d, want 64", v.Cursor())
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(p[10*4:])); got != v.wave.Samples[10] {
		t.Errorf("sample 10 = %v, want %v", got, v.wave.Samples[10])
	}
}

func TestOtoStream_CloseWithoutPlayer(t *testing.T) {
	s := &OtoStream{src: constSource(0)}
	s.Start()
	if err := s.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}
