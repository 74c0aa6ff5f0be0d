// Functions and methods are not thread safe.

package heap

import "unsafe"

// mark traces the object graph reachable from root using
// Deutsch-Schorr-Waite pointer reversal. There is no auxiliary stack:
// the header cell of every object on the active path holds an iterator
// into its type's offsets array, and the pointer field currently being
// followed holds a back-link to the parent. Both are restored on
// retreat, so on return the pointer graph is unchanged and every
// reachable header carries MARK=1 with its descriptor back in place.
//
// Invariant on loop entry: cur is a used block boundary inside the
// heap. Tag bit arithmetic relies on offset slots and descriptors
// being at least 4 byte aligned.
func (h *Heap) mark(root uintptr) {
	if h.header(root).mark() {
		// already reached from an earlier root.
		return
	}
	cur, prev := root, uintptr(0)
	for {
		hdr := h.header(cur)
		if !hdr.mark() {
			// first visit, begin iterating the pointer offsets.
			*hdr = newtagptr(h.blocktype(cur).begin()).setmark(true)
		} else {
			*hdr = hdr.nextslot()
		}

		slot := hdr.pointer()
		offset := *(*int64)(unsafe.Pointer(slot))
		if offset >= 0 {
			// advance: the field at cur+offset refers to another
			// managed object, or is null.
			field := (*uintptr)(unsafe.Pointer(cur + uintptr(offset)))
			if child := *field; child != 0 && !h.header(child).mark() {
				*field = prev
				prev, cur = cur, child
			}
		} else {
			// retreat: the sentinel slot recovers the descriptor,
			// the object stays marked live for this collection.
			*hdr = newtagptr(uintptr(int64(slot) + offset)).setmark(true)
			if prev == 0 {
				return
			}
			tmp := cur
			cur = prev
			slot = h.header(cur).pointer()
			offset = *(*int64)(unsafe.Pointer(slot))
			field := (*uintptr)(unsafe.Pointer(cur + uintptr(offset)))
			prev = *field
			*field = tmp
		}
	}
}
