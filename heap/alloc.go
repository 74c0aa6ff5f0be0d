// Functions and methods are not thread safe.

package heap

import "unsafe"

// Allocate a block for the specified type, first-fit over the free
// list. When no block fits, adjacent free blocks are merged and the
// scan runs once more. Returns nil when the heap cannot satisfy the
// request, with isroot the returned address is also registered as a
// root. The returned memory is zeroed, debug builds fill it with 0xff.
func (h *Heap) Allocate(td *Typedesc, isroot bool) unsafe.Pointer {
	if h.storage == nil {
		panicerr("%v released", h.logprefix)
	} else if h.freelist == 0 {
		// there are no free blocks at all, don't even try.
		return nil
	}
	p := h.tryallocate(td)
	if p == 0 {
		// no sufficiently sized block found, merge blocks and retry.
		h.mergeblocks()
		p = h.tryallocate(td)
	}
	if p == 0 {
		errorf("%v allocation of %v bytes for %q failed\n",
			h.logprefix, td.size, td.name)
		return nil
	}
	h.nallocs++
	h.hallocsize.Add(td.size)
	if isroot {
		h.Registerroot(unsafe.Pointer(p))
	}
	return unsafe.Pointer(p)
}

// tryallocate walk the free list for the first block that fits
// td.size bytes. A used block's size is derived from its type, so a
// block only fits when it can be consumed exactly or the remainder is
// big enough to split off as a new free block, anything in between
// would break the heap tiling. The chosen block is unlinked and
// stamped with the type descriptor.
func (h *Heap) tryallocate(td *Typedesc) uintptr {
	needed, slack := h.alignup(td.size), 2*ptrsize+h.align
	prev, cur := uintptr(0), h.freelist
	for cur != 0 {
		if size := *h.sizeword(cur); size == needed || size >= needed+slack {
			break
		}
		prev, cur = cur, h.header(cur).pointer()
	}
	if cur == 0 {
		return 0
	}

	next := h.header(cur).pointer()
	if *h.sizeword(cur) >= needed+slack {
		rest := cur + uintptr(needed) + uintptr(h.align)
		*h.header(rest) = newtagptr(next).setfree(true)
		*h.sizeword(rest) = *h.sizeword(cur) - needed - h.align
		next = rest
	}
	if prev != 0 {
		*h.header(prev) = h.header(prev).setpointer(next)
	} else {
		h.freelist = next
	}
	*h.header(cur) = newtagptr(uintptr(unsafe.Pointer(td)))
	initblock(cur, needed)
	return cur
}

// Deallocate implement api.Mallocer{} interface. Push a used block
// back on the head of the free list, no destructor is invoked. Panics
// on a free block, or on a marked block which means a mis-sequenced
// call from inside a collection.
func (h *Heap) Deallocate(ptr unsafe.Pointer) {
	p := uintptr(ptr)
	if !h.inheap(p) || (p%uintptr(h.align)) != 0 {
		panicerr("%v deallocate of alien pointer %x", h.logprefix, p)
	}
	hdr := *h.header(p)
	if hdr.free() {
		panicerr("%v deallocate on a free block %x", h.logprefix, p)
	} else if hdr.mark() {
		panicerr("%v deallocate during collection %x", h.logprefix, p)
	}
	size := h.alignup(h.blocktype(p).size)
	*h.header(p) = newtagptr(h.freelist).setfree(true)
	*h.sizeword(p) = size
	h.freelist = p
	h.nfrees++
}

// mergeblocks coalesce every run of contiguous free blocks into a
// single block and rebuild the free list in address order.
func (h *Heap) mergeblocks() {
	var head, tail uintptr
	for p := h.heapstart; p < h.heapend; {
		if h.header(p).used() {
			p = h.following(p)
			continue
		}
		run := p
		for p = h.following(p); p < h.heapend && h.header(p).free(); {
			p = h.following(p)
		}
		*h.header(run) = newtagptr(0).setfree(true)
		*h.sizeword(run) = int64(p-run) - h.align
		if tail == 0 {
			head = run
		} else {
			*h.header(tail) = h.header(tail).setpointer(run)
		}
		tail = run
	}
	h.freelist = head
}
