// Functions and methods are not thread safe.

package heap

import "time"
import "unsafe"

// GC mark objects reachable from the root set, destroy everything
// else and rebuild the free list. Implement api.Collector{} interface.
// Collection cannot fail, on return every header has MARK=0 and every
// surviving object's payload and pointer fields are unchanged.
func (h *Heap) GC() {
	if h.storage == nil {
		panicerr("%v released", h.logprefix)
	}
	start := time.Now()
	for _, root := range h.roots {
		h.mark(root)
	}
	reclaimed := h.rebuildfreelist()
	h.ngcs++
	h.nreclaimed += reclaimed
	h.hgclatency.Add(int64(time.Since(start)))
	debugf("%v gc %v reclaimed %v objects in %v\n",
		h.logprefix, h.ngcs, reclaimed, time.Since(start))
}

// rebuildfreelist walk the heap linearly. Marked blocks survive with
// MARK cleared. Every maximal run of dead objects and old free blocks
// is coalesced into one free block, destructors run exactly once per
// dead object. New free blocks are pushed on the head of the list, so
// the rebuilt list is in reverse address order.
func (h *Heap) rebuildfreelist() (reclaimed int64) {
	var head uintptr
	for p := h.heapstart; p < h.heapend; {
		hdr := h.header(p)
		if hdr.mark() {
			*hdr = hdr.setmark(false)
			p = h.following(p)
			continue
		}
		run := p
		for {
			if h.header(p).used() {
				h.blocktype(p).Destroy(unsafe.Pointer(p))
				reclaimed++
			}
			p = h.following(p)
			if p >= h.heapend || h.header(p).mark() {
				break
			}
		}
		*h.header(run) = newtagptr(head).setfree(true)
		*h.sizeword(run) = int64(p-run) - h.align
		head = run
	}
	h.freelist = head
	return reclaimed
}
