package heap

import "errors"
import "fmt"

// ErrorOutofMemory can be used by callers that want to raise a
// failure when Allocate returns nil.
var ErrorOutofMemory = errors.New("heap.outofmemory")

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}
