package heap

import "testing"
import "unsafe"

import s "github.com/prataprc/gosettings"

const testcapacity = int64(50 * 1024)

func TestNewheap(t *testing.T) {
	h := New("fresh", testcapacity, nil)
	defer h.Release()

	stats := h.Stats(false)
	if x := stats["n.objects"].(int64); x != 0 {
		t.Errorf("expected %v, got %v", 0, x)
	} else if x := stats["n.freeblocks"].(int64); x != 1 {
		t.Errorf("expected %v, got %v", 1, x)
	} else if x := stats["freeblocksize"].(int64); x != testcapacity {
		t.Errorf("expected %v, got %v", testcapacity, x)
	} else if x := stats["heapsize"].(int64); x != testcapacity+Alignment {
		t.Errorf("expected %v, got %v", testcapacity+Alignment, x)
	}
	if x := *h.sizeword(h.freelist); x != testcapacity {
		t.Errorf("expected %v, got %v", testcapacity, x)
	}
	h.Validate()
}

func TestNewheapPanics(t *testing.T) {
	for _, tcase := range []struct {
		capacity int64
		setts    s.Settings
	}{
		{testcapacity, s.Settings{"align": int64(24)}},
		{testcapacity, s.Settings{"align": int64(8)}},
		{testcapacity + 1, nil},
		{Alignment, nil},
		{Maxheapsize + Alignment, nil},
	} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("expected panic for %v", tcase)
				}
			}()
			New("bad", tcase.capacity, tcase.setts)
		}()
	}
}

func TestHeapAllocate(t *testing.T) {
	h := New("alloc", testcapacity, nil)
	defer h.Release()

	usedsize := int64(0)
	for i, td := range []*Typedesc{t24, t40, t40, t16} {
		ptr := h.Allocate(td, false)
		if ptr == nil {
			t.Fatalf("unexpected allocation failure for %v", td.Name())
		}
		usedsize += h.alignup(td.Size()) + h.align
		stats := h.Stats(false)
		if x := stats["n.objects"].(int64); x != int64(i+1) {
			t.Errorf("expected %v, got %v", i+1, x)
		} else if x := stats["usedsize"].(int64); x != usedsize {
			t.Errorf("expected %v, got %v", usedsize, x)
		} else if x := stats["n.freeblocks"].(int64); x != 1 {
			t.Errorf("expected %v, got %v", 1, x)
		} else if x := stats["freeblocksize"].(int64); x != testcapacity-usedsize {
			t.Errorf("expected %v, got %v", testcapacity-usedsize, x)
		}
		h.Validate()
	}
	// aligned block sizes for 24, 40, 40, 16 bytes.
	if usedsize != (32+16)+(48+16)+(48+16)+(16+16) {
		t.Errorf("unexpected used size %v", usedsize)
	}
}

func TestHeapAllocateFailure(t *testing.T) {
	// room for exactly three 16 byte blocks.
	h := New("full", 3*32-Alignment, nil)
	defer h.Release()

	for i := 0; i < 3; i++ {
		if ptr := h.Allocate(t16, false); ptr == nil {
			t.Fatalf("unexpected allocation failure at %v", i)
		}
	}
	if ptr := h.Allocate(t16, false); ptr != nil {
		t.Errorf("expected allocation failure, got %v", ptr)
	}
	h.Validate()
}

func TestHeapDeallocate(t *testing.T) {
	h := New("dealloc", testcapacity, nil)
	defer h.Release()

	a := h.Allocate(t16, false)
	b := h.Allocate(t16, false)
	c := h.Allocate(t16, false)
	if a == nil || b == nil || c == nil {
		t.Fatalf("unexpected allocation failure")
	}
	h.Deallocate(b)
	h.Validate()

	stats := h.Stats(false)
	if x := stats["n.objects"].(int64); x != 2 {
		t.Errorf("expected %v, got %v", 2, x)
	} else if x := stats["n.freeblocks"].(int64); x != 2 {
		t.Errorf("expected %v, got %v", 2, x)
	}
	// freed block is the head of the free list, first-fit reuses it.
	if ptr := h.Allocate(t16, false); ptr != b {
		t.Errorf("expected %v, got %v", b, ptr)
	}
	h.Validate()
}

func TestHeapDeallocatePanics(t *testing.T) {
	h := New("badfree", testcapacity, nil)
	defer h.Release()

	ptr := h.Allocate(t16, false)
	h.Deallocate(ptr)
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		h.Deallocate(ptr) // already free
	}()
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		var x int64
		h.Deallocate(unsafe.Pointer(&x)) // alien pointer
	}()
}

func TestHeapMergeblocks(t *testing.T) {
	// room for exactly three 16 byte blocks.
	h := New("merge", 3*32-Alignment, nil)
	defer h.Release()

	a := h.Allocate(t16, false)
	b := h.Allocate(t16, false)
	c := h.Allocate(t16, false)
	h.Deallocate(a)
	h.Deallocate(c)
	h.Deallocate(b)
	h.Validate()

	// no single block holds 40 bytes until adjacent blocks merge.
	ptr := h.Allocate(t40, false)
	if ptr == nil {
		t.Fatalf("expected allocation to succeed after merge")
	}
	if ptr != a {
		t.Errorf("expected %v, got %v", a, ptr)
	}
	h.Validate()
}

func TestHeapFirstfitDeterminism(t *testing.T) {
	offsets := func() []uintptr {
		h := New("detfit", testcapacity, nil)
		defer h.Release()
		var ptrs []unsafe.Pointer
		var offs []uintptr
		for i := 0; i < 64; i++ {
			td := []*Typedesc{t16, t40, t24}[i%3]
			ptr := h.Allocate(td, false)
			if ptr == nil {
				t.Fatalf("unexpected allocation failure at %v", i)
			}
			ptrs = append(ptrs, ptr)
			offs = append(offs, uintptr(ptr)-h.heapstart)
		}
		for i := 0; i < len(ptrs); i += 2 {
			h.Deallocate(ptrs[i])
		}
		for i := 0; i < 16; i++ {
			ptr := h.Allocate(t16, false)
			if ptr == nil {
				t.Fatalf("unexpected allocation failure at %v", i)
			}
			offs = append(offs, uintptr(ptr)-h.heapstart)
		}
		h.Validate()
		return offs
	}

	one, two := offsets(), offsets()
	for i := range one {
		if one[i] != two[i] {
			t.Errorf("layout diverges at %v: %v vs %v", i, one[i], two[i])
		}
	}
}

func TestHeapInfo(t *testing.T) {
	h := New("info", testcapacity, nil)
	defer h.Release()

	h.Allocate(t40, false)
	capacity, heapsz, alloc, overhead := h.Info()
	if capacity != testcapacity {
		t.Errorf("expected %v, got %v", testcapacity, capacity)
	} else if heapsz != testcapacity+Alignment {
		t.Errorf("expected %v, got %v", testcapacity+Alignment, heapsz)
	} else if alloc != 48+16 {
		t.Errorf("expected %v, got %v", 48+16, alloc)
	} else if overhead <= 0 {
		t.Errorf("expected positive overhead, got %v", overhead)
	}
	if x := h.Utilization(); x <= 0 || x >= 100 {
		t.Errorf("unexpected utilization %v", x)
	}
}

func TestHeapRoots(t *testing.T) {
	h := New("roots", testcapacity, nil)
	defer h.Release()

	a := h.Allocate(t16, true)
	b := h.Allocate(t16, false)
	if len(h.roots) != 1 || h.roots[0] != uintptr(a) {
		t.Errorf("expected root %v, got %v", a, h.roots)
	}
	h.Registerroot(b)
	h.Registerroot(b) // duplicates are tolerated
	if len(h.roots) != 3 {
		t.Errorf("expected %v roots, got %v", 3, len(h.roots))
	}
	h.Removeroot(b)
	if len(h.roots) != 2 {
		t.Errorf("expected %v roots, got %v", 2, len(h.roots))
	}
	h.Removeroot(a)
	h.Removeroot(a) // absent, no-op
	if len(h.roots) != 1 {
		t.Errorf("expected %v roots, got %v", 1, len(h.roots))
	}

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		var x int64
		h.Registerroot(unsafe.Pointer(&x))
	}()
}

func TestHeapRelease(t *testing.T) {
	h := New("released", testcapacity, nil)
	h.Release()
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		h.Allocate(t16, false)
	}()
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		h.GC()
	}()
}

func BenchmarkAllocate(b *testing.B) {
	h := New("benchalloc", 1024*1024, nil)
	defer h.Release()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ptr := h.Allocate(t16, false)
		if ptr == nil {
			b.Fatalf("allocation failure")
		}
		h.Deallocate(ptr)
	}
}
