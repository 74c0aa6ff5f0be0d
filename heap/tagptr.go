// Functions and methods are not thread safe.

package heap

import "unsafe"

const ptrsize = int64(unsafe.Sizeof(uintptr(0)))

// tagptr is a single machine word holding an aligned address and two
// low tag bits. It is the shape of every block header cell: pointer to
// the block's type descriptor while the block is used, pointer to the
// next free block while the block is free, and iterator into a type's
// offsets array while the collector is visiting the block.
type tagptr uintptr

const (
	maskMark tagptr = 0x1
	maskFree tagptr = 0x2
	maskAll  tagptr = maskMark | maskFree
)

// newtagptr from an aligned address, tag bits all clear. Pointed-to
// values must be at least 4 byte aligned so the two low bits are free.
func newtagptr(ptr uintptr) tagptr {
	if ptr&uintptr(maskAll) != 0 {
		panicerr("tagptr: address %x has low bits set", ptr)
	}
	return tagptr(ptr)
}

// pointer return the stored address with tag bits masked off.
func (tp tagptr) pointer() uintptr {
	return uintptr(tp &^ maskAll)
}

// setpointer store a new address, existing tag bits are preserved.
func (tp tagptr) setpointer(ptr uintptr) tagptr {
	if ptr&uintptr(maskAll) != 0 {
		panicerr("tagptr: address %x has low bits set", ptr)
	}
	return tagptr(ptr) | (tp & maskAll)
}

// mark return the MARK bit.
func (tp tagptr) mark() bool {
	return (tp & maskMark) != 0
}

// setmark set or clear the MARK bit.
func (tp tagptr) setmark(mark bool) tagptr {
	if mark {
		return tp | maskMark
	}
	return tp &^ maskMark
}

// free return the FREE bit.
func (tp tagptr) free() bool {
	return (tp & maskFree) != 0
}

// setfree set or clear the FREE bit.
func (tp tagptr) setfree(free bool) tagptr {
	if free {
		return tp | maskFree
	}
	return tp &^ maskFree
}

// used is the negation of free.
func (tp tagptr) used() bool {
	return !tp.free()
}

// isnil true when the untagged address is null.
func (tp tagptr) isnil() bool {
	return tp.pointer() == 0
}

// nextslot treat the stored address as an iterator over word sized
// slots and advance it by one slot, tag bits are preserved.
func (tp tagptr) nextslot() tagptr {
	return tp + tagptr(ptrsize)
}
