// Functions and methods are not thread safe.

package heap

import humanize "github.com/dustin/go-humanize"

// Stats walk the heap once and return full accounting. With countlive
// the root set is traced first, so the walk can also tell how many of
// the used blocks are actually reachable. MARK is 0 on every header
// when Stats returns.
//
//	"heapsize"       region size in bytes, headers included.
//	"usedsize"       bytes held by used blocks, headers included.
//	"freesize"       bytes held by free blocks, headers included.
//	"n.freeblocks"   number of blocks in the free list.
//	"freeblocksize"  sum of free block payloads.
//	"n.objects"      number of used blocks.
//	"objectsize"     sum of type sizes over used blocks.
//	"n.liveobjects"  used blocks reachable from the roots (countlive).
//	"liveobjectsize" sum of type sizes over reachable blocks (countlive).
//	"n.allocs"       allocations so far.
//	"n.frees"        explicit deallocations so far.
//	"n.gcs"          collections so far.
//	"n.reclaimed"    objects destroyed by collections so far.
//	"allocsize"      statistics over requested allocation sizes.
//	"gclatency"      statistics over collection pauses, in ns.
func (h *Heap) Stats(countlive bool) map[string]interface{} {
	if h.storage == nil {
		panicerr("%v released", h.logprefix)
	}
	if countlive {
		for _, root := range h.roots {
			h.mark(root)
		}
	}

	stats := map[string]interface{}{
		"heapsize":    h.capacity + h.align,
		"n.allocs":    h.nallocs,
		"n.frees":     h.nfrees,
		"n.gcs":       h.ngcs,
		"n.reclaimed": h.nreclaimed,
		"allocsize":   h.hallocsize.Stats(),
		"gclatency":   h.hgclatency.Stats(),
	}
	var usedsize, freesize, freeblocks, freeblocksize int64
	var objects, objectsize, liveobjects, liveobjectsize int64
	for p := h.heapstart; p < h.heapend; p = h.following(p) {
		hdr := h.header(p)
		if hdr.free() {
			freeblocks++
			freeblocksize += *h.sizeword(p)
			freesize += h.align + *h.sizeword(p)
			continue
		}
		if hdr.mark() {
			*h.header(p) = hdr.setmark(false)
			liveobjects++
			liveobjectsize += h.blocktype(p).size
		}
		objects++
		objectsize += h.blocktype(p).size
		usedsize += h.align + h.alignup(h.blocktype(p).size)
	}
	stats["usedsize"], stats["freesize"] = usedsize, freesize
	stats["n.freeblocks"], stats["freeblocksize"] = freeblocks, freeblocksize
	stats["n.objects"], stats["objectsize"] = objects, objectsize
	if countlive {
		stats["n.liveobjects"], stats["liveobjectsize"] = liveobjects, liveobjectsize
	}
	return stats
}

// Log heap accounting via the configured logger.
func (h *Heap) Log() {
	stats := h.Stats(true)
	used := humanize.Bytes(uint64(stats["usedsize"].(int64)))
	free := humanize.Bytes(uint64(stats["freesize"].(int64)))
	fmsg := "%v objects:%v (%v live) used:%v free:%v in %v blocks\n"
	infof(fmsg, h.logprefix, stats["n.objects"], stats["n.liveobjects"],
		used, free, stats["n.freeblocks"])
}

// Validate heap invariants, panic on violation:
//
//   - block walk from the heap start lands exactly on the heap end.
//   - MARK is 0 on every header between collections.
//   - the free list visits each free block exactly once, no used
//     block, and terminates.
//   - used bytes and free bytes add up to the region size.
func (h *Heap) Validate() {
	if h.storage == nil {
		panicerr("%v released", h.logprefix)
	}
	nfree, used, free := int64(0), int64(0), int64(0)
	p := h.heapstart
	for p < h.heapend {
		hdr := h.header(p)
		if hdr.mark() {
			panicerr("%v block %x marked outside gc", h.logprefix, p)
		}
		if hdr.free() {
			nfree++
			free += h.align + *h.sizeword(p)
		} else {
			used += h.align + h.alignup(h.blocktype(p).size)
		}
		p = h.following(p)
	}
	// the boundary walk steps over each block's payload plus the next
	// header region, so a tiled heap lands exactly one alignment past
	// the last payload byte.
	if p != h.heapend+uintptr(h.align) {
		panicerr("%v block walk breaks tiling at %x", h.logprefix, p)
	}
	if total := used + free; total != h.capacity+h.align {
		panicerr("%v used %v + free %v != %v", h.logprefix, used, free, h.capacity+h.align)
	}
	n := int64(0)
	for p := h.freelist; p != 0; p = h.header(p).pointer() {
		if h.header(p).used() {
			panicerr("%v used block %x on free list", h.logprefix, p)
		}
		if n++; n > nfree {
			panicerr("%v free list cycles", h.logprefix)
		}
	}
	if n != nfree {
		panicerr("%v free list has %v blocks, heap has %v", h.logprefix, n, nfree)
	}
}
