package vago

import (
	"gorgonia.org/vecf32"
)

// EncodePixels converts 8-bit pixels into floats in [0, 1].
func EncodePixels(a []byte, prealloc []float32) []float32 {
	if len(prealloc) != len(a) {
		prealloc = make([]float32, len(a))
	}
	for i := range a {
		prealloc[i] = float32(a[i])
	}
	vecf32.Scale(prealloc, 1.0/255.0)
	return prealloc
}

// DecodePixels maps floats back to 8-bit pixels, clamping to [0, 255].
func DecodePixels(a []float32, prealloc []byte) []byte {
	if len(prealloc) != len(a) {
		prealloc = make([]byte, len(a))
	}
	for i, v := range a {
		v *= 255
		switch {
		case v < 0:
			prealloc[i] = 0
		case v > 255:
			prealloc[i] = 255
		default:
			prealloc[i] = byte(v)
		}
	}
	return prealloc
}
