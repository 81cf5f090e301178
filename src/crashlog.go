package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"
)

const crashLogPath = "/tmp/docker-webui-crash.log"

// writeCrashLog appends a detailed crash report to /tmp/docker-webui-crash.log.
func writeCrashLog(r interface{}, goroutineName string) {
	if r == nil {
		return
	}

	f, err := os.OpenFile(crashLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// Fallback to stderr if the file cannot be opened
		fmt.Fprintf(os.Stderr, "Failed to open crash log: %v\n", err)
		f = os.Stderr
	}
	defer f.Close()

	fmt.Fprintf(f, "\n\n")
	fmt.Fprintf(f, "═══════════════════════════════════════════════════════════════\n")
	fmt.Fprintf(f, "CRASH REPORT - %s\n", time.Now().Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(f, "═══════════════════════════════════════════════════════════════\n\n")

	if goroutineName != "" {
		fmt.Fprintf(f, "Goroutine: %s\n\n", goroutineName)
	} else {
		fmt.Fprintf(f, "Goroutine: main\n\n")
	}

	fmt.Fprintf(f, "Error: %v\n\n", r)

	fmt.Fprintf(f, "Crashing Goroutine Stack Trace:\n")
	fmt.Fprintf(f, "───────────────────────────────────────────────────────────────\n")
	f.Write(debug.Stack())
	fmt.Fprintf(f, "\n")

	fmt.Fprintf(f, "All Goroutines Stack Dump:\n")
	fmt.Fprintf(f, "───────────────────────────────────────────────────────────────\n")
	buf := make([]byte, 1024*1024)
	stackLen := runtime.Stack(buf, true)
	f.Write(buf[:stackLen])
	fmt.Fprintf(f, "\n")

	fmt.Fprintf(f, "System Information:\n")
	fmt.Fprintf(f, "───────────────────────────────────────────────────────────────\n")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	fmt.Fprintf(f, "Goroutines:        %d\n", runtime.NumGoroutine())
	fmt.Fprintf(f, "Memory Allocated:  %d MB\n", m.Alloc/1024/1024)
	fmt.Fprintf(f, "Memory Total:      %d MB\n", m.TotalAlloc/1024/1024)
	fmt.Fprintf(f, "Memory Sys:        %d MB\n", m.Sys/1024/1024)
	fmt.Fprintf(f, "GC Runs:           %d\n", m.NumGC)
	fmt.Fprintf(f, "File Descriptors:  %d\n", countOpenFDs())

	fmt.Fprintf(f, "\n")
	fmt.Fprintf(f, "═══════════════════════════════════════════════════════════════\n\n")

	if f != os.Stderr {
		logger.Error().
			Str("goroutine", goroutineName).
			Str("crash_log", crashLogPath).
			Msgf("fatal error: %v", r)
	}
}

// safeGo launches a goroutine with automatic panic capture. The name
// identifies which goroutine crashed in the report.
func safeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				writeCrashLog(r, name)
				// No os.Exit() here, let the rest of the process continue if possible
			}
		}()
		fn()
	}()
}

// countOpenFDs returns the number of open file descriptors.
// Linux only - returns 0 on other platforms.
func countOpenFDs() int {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		return 0 // Not Linux or no access
	}
	return len(entries)
}

// getGoroutineCount returns the current number of goroutines.
func getGoroutineCount() int {
	return runtime.NumGoroutine()
}
