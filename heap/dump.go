// Functions and methods are not thread safe.

package heap

import "fmt"
import "io"
import "unsafe"

import humanize "github.com/dustin/go-humanize"

// Dump implement api.Dumper{} interface. Render statistics, the free
// block table and the live object graph into w. The heap is walked
// twice, once for statistics and once for live objects, MARK is 0
// everywhere on return.
func (h *Heap) Dump(w io.Writer) {
	stats := h.Stats(true)

	fmt.Fprintf(w, "==== statistics for heap %q ====\n", h.name)
	fmt.Fprintf(w, "heap size:  %v bytes\n", stats["heapsize"])
	fmt.Fprintf(w, "used space: %v bytes\n", stats["usedsize"])
	fmt.Fprintf(w, "free space: %v bytes\n", stats["freesize"])
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "object count:    %v (%v live)\n",
		stats["n.objects"], stats["n.liveobjects"])
	fmt.Fprintf(w, "object size:     %v bytes (%v in live objects)\n",
		stats["objectsize"], stats["liveobjectsize"])
	fmt.Fprintf(w, "available space: %v in %v blocks\n",
		humanize.Bytes(uint64(stats["freeblocksize"].(int64))),
		stats["n.freeblocks"])

	fmt.Fprintf(w, "\n= free blocks =\naddress            size(net)\n")
	for p := h.freelist; p != 0; p = h.header(p).pointer() {
		fmt.Fprintf(w, "%016x %v\n", p, *h.sizeword(p))
	}

	fmt.Fprintf(w, "\n= live objects =\n")
	h.dumpliveobjects(w)
}

// dumpliveobjects mark the root set, then list every reachable object
// with its leading payload bytes and pointer fields, clearing MARK
// along the walk.
func (h *Heap) dumpliveobjects(w io.Writer) {
	const numdatabytes = int64(4)

	for _, root := range h.roots {
		h.mark(root)
	}
	for p := h.heapstart; p < h.heapend; p = h.following(p) {
		hdr := h.header(p)
		if !hdr.mark() {
			continue
		}
		*h.header(p) = hdr.setmark(false)
		td := h.blocktype(p)
		fmt.Fprintf(w, "%016x %v\n", p, td.name)
		fmt.Fprintf(w, "  data:")
		n := td.size
		if n > numdatabytes {
			n = numdatabytes
		}
		for i := int64(0); i < n; i++ {
			fmt.Fprintf(w, " %02x", *(*byte)(unsafe.Pointer(p + uintptr(i))))
		}
		if td.size > numdatabytes {
			fmt.Fprintf(w, " ...")
		}
		if td.Numpointers() == 0 {
			fmt.Fprintf(w, "\n  pointers: none\n")
			continue
		}
		fmt.Fprintf(w, "\n  pointers:\n")
		for _, offset := range td.Pointers() {
			field := *(*uintptr)(unsafe.Pointer(p + uintptr(offset)))
			fmt.Fprintf(w, "    %016x\n", field)
		}
	}
}
