package vago

import (
	"reflect"
	"unsafe"
)

// MakeRows aliases a flattened h×w image vector as rows, without
// copying. Return the result with ReturnRows when done.
func MakeRows(vec []float32, h, w int) (retVal [][]float32) {
	retVal = borrowRows(h, w)
	for i := range retVal {
		start := i * w
		hdr := (*reflect.SliceHeader)(unsafe.Pointer(&retVal[i]))
		hdr.Data = uintptr(unsafe.Pointer(&vec[start]))
		hdr.Len = w
		hdr.Cap = w
	}
	return
}
