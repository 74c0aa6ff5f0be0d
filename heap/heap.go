// Functions and methods are not thread safe.

package heap

import "fmt"
import "unsafe"

import "github.com/PeterFeicht/ssw-gc/lib"
import s "github.com/prataprc/gosettings"

// Alignment default for block boundaries, can be overridden with the
// "align" setting.
const Alignment = int64(16)

// Maxheapsize maximum capacity of a managed heap.
const Maxheapsize = int64(1024 * 1024 * 1024 * 1024) // 1TB

// Heap is a fixed capacity byte region carved into blocks. Every block
// boundary is preceded by a one word header cell: a tagged pointer to
// the block's type descriptor when used, to the next free block when
// free. Free block payloads start with an int64 word holding the usable
// payload size.
type Heap struct {
	// 64-bit aligned stats
	nallocs    int64
	nfrees     int64
	ngcs       int64
	nreclaimed int64
	hallocsize lib.SampleInt64
	hgclatency lib.SampleInt64 // nanoseconds

	name      string
	storage   []byte
	heapstart uintptr // first block boundary
	heapend   uintptr // one past the last payload byte
	freelist  uintptr // boundary of first free block, 0 when empty
	roots     []uintptr

	// configuration
	capacity  int64
	align     int64
	setts     s.Settings
	logprefix string
}

// New create a managed heap with `capacity` usable bytes. Capacity
// must be a multiple of the configured alignment and big enough for at
// least one block.
func New(name string, capacity int64, setts s.Settings) *Heap {
	setts = make(s.Settings).Mixin(Defaultsettings(), setts)
	align := setts.Int64("align")
	if align < 2*ptrsize || (align&(align-1)) != 0 {
		panicerr("invalid alignment %v", align)
	} else if capacity > Maxheapsize {
		panicerr("heap cannot exceed %v bytes (%v)", Maxheapsize, capacity)
	} else if capacity < 2*align || (capacity%align) != 0 {
		panicerr("capacity %v must be a multiple of alignment %v and at least %v",
			capacity, align, 2*align)
	}
	if _, _, free := getsysmem(); uint64(capacity) > free {
		warnf("heap %q capacity %v exceeds free system memory %v\n",
			name, capacity, free)
	}

	h := &Heap{
		name:      name,
		storage:   make([]byte, capacity+2*align),
		capacity:  capacity,
		align:     align,
		setts:     setts,
		roots:     make([]uintptr, 0, 8),
		logprefix: fmt.Sprintf("HEAP [%v]", name),
	}
	base := uintptr(unsafe.Pointer(&h.storage[0]))
	base = (base + uintptr(align) - 1) &^ (uintptr(align) - 1)
	h.heapstart = base + uintptr(align)
	h.heapend = h.heapstart + uintptr(capacity)

	// the entire region starts out as a single free block.
	*h.header(h.heapstart) = newtagptr(0).setfree(true)
	*h.sizeword(h.heapstart) = capacity
	h.freelist = h.heapstart

	infof("%v created with capacity %v align %v\n", h.logprefix, capacity, align)
	return h
}

//---- block layout and header access

// header cell of the block whose boundary is p.
func (h *Heap) header(p uintptr) *tagptr {
	return (*tagptr)(unsafe.Pointer(p - uintptr(ptrsize)))
}

// sizeword of a free block, first word of its payload.
func (h *Heap) sizeword(p uintptr) *int64 {
	return (*int64)(unsafe.Pointer(p))
}

// blocktype descriptor of a used block.
func (h *Heap) blocktype(p uintptr) *Typedesc {
	return (*Typedesc)(unsafe.Pointer(h.header(p).pointer()))
}

// blocksize payload size of the block at p, header not included.
func (h *Heap) blocksize(p uintptr) int64 {
	if h.header(p).free() {
		return *h.sizeword(p)
	}
	return h.alignup(h.blocktype(p).size)
}

// following boundary of the physically next block.
func (h *Heap) following(p uintptr) uintptr {
	return p + uintptr(h.blocksize(p)) + uintptr(h.align)
}

// alignup round n to the next multiple of the heap alignment, with a
// floor of one size word so free blocks can always hold their size.
func (h *Heap) alignup(n int64) int64 {
	if n < ptrsize {
		n = ptrsize
	}
	return (n + h.align - 1) &^ (h.align - 1)
}

func (h *Heap) inheap(p uintptr) bool {
	return p >= h.heapstart && p < h.heapend
}

//---- roots

// Registerroot implement api.Collector{} interface. The object at ptr
// is treated as live by every collection until removed.
func (h *Heap) Registerroot(ptr unsafe.Pointer) {
	p := uintptr(ptr)
	if p == 0 || !h.inheap(p) || (p%uintptr(h.align)) != 0 {
		panicerr("%v bad root %x", h.logprefix, p)
	}
	h.roots = append(h.roots, p)
}

// Removeroot implement api.Collector{} interface. Remove the first
// registered root matching ptr, no-op when absent.
func (h *Heap) Removeroot(ptr unsafe.Pointer) {
	p := uintptr(ptr)
	for i, root := range h.roots {
		if root == p {
			copy(h.roots[i:], h.roots[i+1:])
			h.roots = h.roots[:len(h.roots)-1]
			return
		}
	}
}

//---- maintenance

// Release implement api.Mallocer{} interface. Give the region back to
// the runtime, the heap cannot be used afterwards. No destructors run.
func (h *Heap) Release() {
	infof("%v released\n", h.logprefix)
	h.storage, h.roots = nil, nil
	h.heapstart, h.heapend, h.freelist = 0, 0, 0
}

// Info implement api.Mallocer{} interface. Capacity is the usable
// byte count, heap the region size including headers, alloc the bytes
// held by used blocks and overhead the bookkeeping spent outside the
// region.
func (h *Heap) Info() (capacity, heap, alloc, overhead int64) {
	self := int64(unsafe.Sizeof(*h))
	rootsz := int64(cap(h.roots)) * ptrsize
	for p := h.heapstart; p < h.heapend; p = h.following(p) {
		if h.header(p).used() {
			alloc += h.align + h.alignup(h.blocktype(p).size)
		}
	}
	return h.capacity, h.capacity + h.align, alloc, self + rootsz
}

// Utilization implement api.Mallocer{} interface, percentage of the
// heap region held by used blocks.
func (h *Heap) Utilization() float64 {
	_, heapsz, alloc, _ := h.Info()
	return (float64(alloc) / float64(heapsz)) * 100
}
