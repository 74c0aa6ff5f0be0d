//go:build debug

package heap

import "unsafe"

// initblock paint a freshly allocated block with a poison pattern, a
// read of uninitialized payload then stands out in dumps.
func initblock(block uintptr, size int64) {
	payload := unsafe.Slice((*byte)(unsafe.Pointer(block)), size)
	for i := range payload {
		payload[i] = 0xff
	}
}
