//go:build !windows

// pkg/minidb/mem_unix.go
package minidb

import (
	"golang.org/x/sys/unix"
)

// processMemoryBytes returns the process peak resident set size.
// Linux reports Maxrss in kilobytes.
func processMemoryBytes() uint64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return uint64(ru.Maxrss) * 1024
}
