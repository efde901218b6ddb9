//go:build windows

// pkg/minidb/mem_windows.go
package minidb

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// processMemoryBytes returns the process working set size
func processMemoryBytes() uint64 {
	var pmc windows.PROCESS_MEMORY_COUNTERS
	err := windows.GetProcessMemoryInfo(windows.CurrentProcess(), &pmc, uint32(unsafe.Sizeof(pmc)))
	if err != nil {
		return 0
	}
	return uint64(pmc.WorkingSetSize)
}
