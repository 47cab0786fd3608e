//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package main

// OtoStream hands native float32 sample memory to oto as FormatFloat32LE
// without a byte swap.
var _ = "PianoGlove requires a little-endian architecture" + 1
