// Package heap supplies a fixed capacity managed heap with a precise,
// non-moving mark-and-sweep garbage collector. Note that Types and
// Functions exported by this package are not thread safe.
//
//   - Application objects are allocated from a single contiguous byte
//     region owned by the heap, each live object is preceded by a one
//     word header identifying its type.
//   - A type descriptor per object type declares the object's size,
//     destructor and the byte offsets within it where pointers to other
//     managed objects live.
//   - Allocation is first-fit over a free list, with block splitting
//     and whole-heap coalescing when a first attempt fails.
//   - Collection reaches live objects from an explicit root set using
//     Deutsch-Schorr-Waite pointer reversal, so marking needs no
//     auxiliary stack, then sweeps the heap linearly, destroying
//     unreachable objects in place and rebuilding the free list.
//
// Heaps can be created with following parameters:
//
//	capacity : usable size of the heap region in bytes.
//	align    : alignment for block boundaries, power of two.
//
// There is no pointer re-write, objects never move and applications
// hold raw addresses for as long as the object is reachable from a
// registered root.
package heap

// TODO: address-ordered free list insertion during sweep, so that
// first-fit stays monotonic in address across collections.
