package api

import "io"
import "unsafe"

// Mallocer interface for custom memory management.
type Mallocer interface {
	// Deallocate a block back to the free list. No destructor is
	// invoked. Block must have been obtained from the same mallocer.
	Deallocate(ptr unsafe.Pointer)

	// Release the mallocer and all its resources.
	Release()

	// Info of memory accounting for this mallocer.
	Info() (capacity, heap, alloc, overhead int64)

	// Utilization ratio between allocated bytes and heap capacity,
	// as percentage.
	Utilization() float64
}

// Collector interface for managed heaps that trace the object graph
// from a set of roots and reclaim whatever is unreachable.
type Collector interface {
	// Registerroot treat ptr as always reachable. Ptr must be a
	// block address obtained from the same heap.
	Registerroot(ptr unsafe.Pointer)

	// Removeroot forget the first registered root matching ptr.
	Removeroot(ptr unsafe.Pointer)

	// GC mark objects reachable from the root set, destroy the rest
	// and rebuild the free list.
	GC()
}

// Dumper interface for memory managers that can render their state
// in human readable format.
type Dumper interface {
	// Dump statistics, free blocks and live objects into w.
	Dump(w io.Writer)
}
