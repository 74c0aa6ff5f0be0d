// Functions and methods are not thread safe.

package heap

import "reflect"
import "unsafe"

// Destructor tears an object down in place. Destructors must not
// allocate from, free into, or follow managed pointers of the heap
// that owns the object, they run in the middle of a sweep.
type Destructor func(obj unsafe.Pointer)

// Typedesc is an immutable per-type record: display name, object size,
// destructor and the offsets, within the object's layout, of pointers
// to other managed objects. The offsets array carries one extra slot
// holding a negative sentinel whose value is the signed byte distance
// from the sentinel slot back to the descriptor, which lets the marker
// recover the descriptor from an iterator pointer into the array.
type Typedesc struct {
	name    string
	size    int64
	destroy Destructor
	offsets []int64
}

// typeregistry pins every descriptor for the lifetime of the process.
// Block headers hold raw descriptor addresses, invisible to the go
// runtime, so descriptors must stay referenced from here.
var typeregistry = make([]*Typedesc, 0, 64)

// Maketype create a descriptor for a managed object type. Offsets
// locate word sized managed-pointer fields and must fall inside the
// object's layout. Destructor can be nil for types that need no
// teardown. Descriptors are never released.
func Maketype(name string, size int64, destroy Destructor, offsets ...int64) *Typedesc {
	if size <= 0 {
		panicerr("Maketype %q: size %v", name, size)
	}
	// descriptor and offsets share one allocation, offsets right behind
	// the descriptor, so the sentinel is always negative.
	block := reflect.New(reflect.StructOf([]reflect.StructField{
		{Name: "Desc", Type: reflect.TypeOf(Typedesc{})},
		{Name: "Offsets", Type: reflect.ArrayOf(len(offsets)+1, reflect.TypeOf(int64(0)))},
	}))
	td := (*Typedesc)(block.UnsafePointer())
	td.name, td.size, td.destroy = name, size, destroy
	first := (*int64)(unsafe.Pointer(block.Elem().Field(1).UnsafeAddr()))
	td.offsets = unsafe.Slice(first, len(offsets)+1)
	for i, off := range offsets {
		if off < 0 || off+ptrsize > size {
			panicerr("Maketype %q: offset %v outside [0,%v)", name, off, size)
		}
		td.offsets[i] = off
	}
	slot := &td.offsets[len(offsets)]
	*slot = int64(uintptr(unsafe.Pointer(td))) - int64(uintptr(unsafe.Pointer(slot)))
	typeregistry = append(typeregistry, td)
	return td
}

// Name of the described type, for dumps.
func (td *Typedesc) Name() string {
	return td.name
}

// Size of the described objects in bytes.
func (td *Typedesc) Size() int64 {
	return td.size
}

// Numpointers return the number of managed pointer fields.
func (td *Typedesc) Numpointers() int {
	return len(td.offsets) - 1
}

// Pointers return the offsets of managed pointer fields, without the
// trailing sentinel.
func (td *Typedesc) Pointers() []int64 {
	return td.offsets[:len(td.offsets)-1]
}

// Destroy the object at obj using the destructor thunk.
func (td *Typedesc) Destroy(obj unsafe.Pointer) {
	if td.destroy != nil {
		td.destroy(obj)
	}
}

// begin return the address of the first offset slot.
func (td *Typedesc) begin() uintptr {
	return uintptr(unsafe.Pointer(&td.offsets[0]))
}

// end return the address of the sentinel slot, one past the offsets.
func (td *Typedesc) end() uintptr {
	return uintptr(unsafe.Pointer(&td.offsets[len(td.offsets)-1]))
}
