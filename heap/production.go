//go:build !debug

package heap

import "unsafe"

// initblock zero a freshly allocated block, stale pointer words must
// never leak into new objects.
func initblock(block uintptr, size int64) {
	payload := unsafe.Slice((*byte)(unsafe.Pointer(block)), size)
	clear(payload)
}
