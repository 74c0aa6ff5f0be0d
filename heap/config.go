package heap

import s "github.com/prataprc/gosettings"
import "github.com/cloudfoundry/gosigar"

// Heap configurable parameters and default settings.
//
// "align" (int64, default: <Alignment>)
//
//	Alignment for block boundaries and object data. Must be a power
//	of two, at least two machine words so a header cell and a free
//	block's size word always fit.
func Defaultsettings() s.Settings {
	return s.Settings{
		"align": Alignment,
	}
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}
