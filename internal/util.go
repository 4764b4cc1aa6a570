package internal

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const packageName = "github.com/go-pg/entmap"

// Caller returns "file:line" of the first stack frame outside of entmap
// packages. Test files of entmap packages count as outside.
func Caller(skip int) string {
	var pcs [16]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	for {
		f, more := frames.Next()
		if f.Function == "" {
			break
		}
		if !strings.HasPrefix(f.Function, packageName) || strings.HasSuffix(f.File, "_test.go") {
			return filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
		}
		if !more {
			break
		}
	}
	return "unknown"
}
