package heap

import "unsafe"

// managed object shapes used across tests. Managed pointer fields are
// machine words holding block addresses.

type cell struct {
	next uintptr
	val  int64
}

type pair struct {
	left  uintptr
	right uintptr
	tag   int64
}

type studentlist struct {
	first uintptr
}

type studentnode struct {
	next    uintptr
	student uintptr
}

type student struct {
	id       int64
	lectures uintptr
}

type lecturenode struct {
	next    uintptr
	lecture uintptr
}

type lecture struct {
	id       int64
	semester int64
}

// destroyed counts destructor runs per type name, reset by tests.
var destroyed = map[string]int{}

func resetdestroyed() {
	destroyed = map[string]int{}
}

func counting(name string) Destructor {
	return func(_ unsafe.Pointer) {
		destroyed[name]++
	}
}

var tcell = Maketype("cell", int64(unsafe.Sizeof(cell{})), counting("cell"),
	int64(unsafe.Offsetof(cell{}.next)))

var tpair = Maketype("pair", int64(unsafe.Sizeof(pair{})), counting("pair"),
	int64(unsafe.Offsetof(pair{}.left)), int64(unsafe.Offsetof(pair{}.right)))

var tstudentlist = Maketype("studentlist", int64(unsafe.Sizeof(studentlist{})),
	counting("studentlist"), int64(unsafe.Offsetof(studentlist{}.first)))

var tstudentnode = Maketype("studentnode", int64(unsafe.Sizeof(studentnode{})),
	counting("studentnode"),
	int64(unsafe.Offsetof(studentnode{}.next)),
	int64(unsafe.Offsetof(studentnode{}.student)))

var tstudent = Maketype("student", int64(unsafe.Sizeof(student{})),
	counting("student"), int64(unsafe.Offsetof(student{}.lectures)))

var tlecturenode = Maketype("lecturenode", int64(unsafe.Sizeof(lecturenode{})),
	counting("lecturenode"),
	int64(unsafe.Offsetof(lecturenode{}.next)),
	int64(unsafe.Offsetof(lecturenode{}.lecture)))

var tlecture = Maketype("lecture", int64(unsafe.Sizeof(lecture{})),
	counting("lecture"))

// plain payload types without managed pointers.
var t16 = Maketype("t16", 16, nil)
var t24 = Maketype("t24", 24, nil)
var t40 = Maketype("t40", 40, nil)
