package main

import "flag"
import "fmt"
import "os"
import "unsafe"

import hm "github.com/dustin/go-humanize"
import s "github.com/prataprc/gosettings"

import "github.com/PeterFeicht/ssw-gc/heap"

var options struct {
	capacity int64
	align    int64
	log      string
}

func argParse() {
	flag.Int64Var(&options.capacity, "capacity", 50*1024,
		"usable size of the managed heap in bytes")
	flag.Int64Var(&options.align, "align", heap.Alignment,
		"block alignment, power of two")
	flag.StringVar(&options.log, "log", "",
		"enable logging for heap components")
	flag.Parse()
}

// managed object layouts, pointer fields hold heap block addresses.

type studentNode struct {
	next    uintptr
	student uintptr
}

type lectureNode struct {
	next    uintptr
	lecture uintptr
}

type studentList struct {
	first uintptr
}

type student struct {
	id       int64
	name     [24]byte
	lectures uintptr
}

type lecture struct {
	id       int64
	semester int64
	name     [40]byte
}

var tStudentNode = heap.Maketype("studentNode",
	int64(unsafe.Sizeof(studentNode{})), nil,
	int64(unsafe.Offsetof(studentNode{}.next)),
	int64(unsafe.Offsetof(studentNode{}.student)))

var tLectureNode = heap.Maketype("lectureNode",
	int64(unsafe.Sizeof(lectureNode{})), nil,
	int64(unsafe.Offsetof(lectureNode{}.next)),
	int64(unsafe.Offsetof(lectureNode{}.lecture)))

var tStudentList = heap.Maketype("studentList",
	int64(unsafe.Sizeof(studentList{})), nil,
	int64(unsafe.Offsetof(studentList{}.first)))

var tStudent = heap.Maketype("student",
	int64(unsafe.Sizeof(student{})), nil,
	int64(unsafe.Offsetof(student{}.lectures)))

var tLecture = heap.Maketype("lecture",
	int64(unsafe.Sizeof(lecture{})), nil)

func die(fmsg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, fmsg+"\n", args...)
	os.Exit(1)
}

func newlecture(h *heap.Heap, id int64, name string, semester int64) uintptr {
	ptr := h.Allocate(tLecture, false)
	if ptr == nil {
		die("allocating lecture %q failed", name)
	}
	lec := (*lecture)(ptr)
	lec.id, lec.semester = id, semester
	copy(lec.name[:], name)
	return uintptr(ptr)
}

func newstudent(h *heap.Heap, id int64, name string) uintptr {
	ptr := h.Allocate(tStudent, false)
	if ptr == nil {
		die("allocating student %q failed", name)
	}
	st := (*student)(ptr)
	st.id = id
	copy(st.name[:], name)
	return uintptr(ptr)
}

func addstudent(h *heap.Heap, list *studentList, st uintptr) {
	ptr := h.Allocate(tStudentNode, false)
	if ptr == nil {
		die("allocating student node failed")
	}
	node := (*studentNode)(ptr)
	node.next, node.student = list.first, st
	list.first = uintptr(ptr)
}

func removestudent(list *studentList, st uintptr) {
	var prev *studentNode
	for it := list.first; it != 0; {
		node := (*studentNode)(unsafe.Pointer(it))
		if node.student == st {
			if prev == nil {
				list.first = node.next
			} else {
				prev.next = node.next
			}
			return
		}
		prev, it = node, node.next
	}
}

func addlecture(h *heap.Heap, st uintptr, lec uintptr) {
	ptr := h.Allocate(tLectureNode, false)
	if ptr == nil {
		die("allocating lecture node failed")
	}
	node := (*lectureNode)(ptr)
	node.next, node.lecture = (*student)(unsafe.Pointer(st)).lectures, lec
	(*student)(unsafe.Pointer(st)).lectures = uintptr(ptr)
}

func removelecture(st uintptr, lec uintptr) {
	var prev *lectureNode
	for it := (*student)(unsafe.Pointer(st)).lectures; it != 0; {
		node := (*lectureNode)(unsafe.Pointer(it))
		if node.lecture == lec {
			if prev == nil {
				(*student)(unsafe.Pointer(st)).lectures = node.next
			} else {
				prev.next = node.next
			}
			return
		}
		prev, it = node, node.next
	}
}

func main() {
	argParse()
	if options.log != "" {
		heap.LogComponents(options.log)
	}

	h := heap.New("sswgc", options.capacity, s.Settings{"align": options.align})
	fmt.Printf("managed heap of %v, aligned to %v bytes\n\n",
		hm.Bytes(uint64(options.capacity)), options.align)

	fmt.Println("heap after creation, nothing allocated yet:")
	h.Dump(os.Stdout)

	listptr := h.Allocate(tStudentList, true)
	if listptr == nil {
		die("allocating student list failed")
	}
	list := (*studentList)(listptr)

	ssw := newlecture(h, 1, "System Software", 7)
	popl := newlecture(h, 2, "Principles of Programming Languages", 7)
	re := newlecture(h, 3, "Requirements Engineering", 7)

	peter := newstudent(h, 1, "Peter Feichtinger")
	addstudent(h, list, peter)
	latifi := newstudent(h, 2, "Florian Latifi")
	addstudent(h, list, latifi)
	daniel := newstudent(h, 3, "Daniel Hinterreiter")

	addlecture(h, peter, ssw)
	addlecture(h, peter, popl)
	addlecture(h, peter, re)
	addlecture(h, latifi, popl)
	addlecture(h, latifi, re)
	addlecture(h, daniel, ssw)
	addlecture(h, daniel, re)

	addstudent(h, list, daniel)

	fmt.Println("\nheap after allocating some objects, all still alive:")
	h.Dump(os.Stdout)

	removestudent(list, daniel)
	removelecture(peter, ssw)
	fmt.Println("\nheap after some objects died, before garbage collection:")
	h.Dump(os.Stdout)

	h.GC()
	fmt.Println("\nheap after garbage collection:")
	h.Dump(os.Stdout)

	h.Removeroot(listptr)
	h.GC()
	fmt.Println("\nheap after removing the single root and collecting:")
	h.Dump(os.Stdout)

	h.Release()
}
