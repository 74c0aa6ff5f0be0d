package heap

import "github.com/PeterFeicht/ssw-gc/api"

var _ api.Mallocer = (*Heap)(nil)
var _ api.Collector = (*Heap)(nil)
var _ api.Dumper = (*Heap)(nil)
