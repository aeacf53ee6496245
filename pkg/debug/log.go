//go:build js && wasm

// Package debug writes diagnostics to the browser console.
package debug

import (
	"fmt"
	"syscall/js"

	"github.com/recera/famtree/pkg/reactive"
	"github.com/recera/famtree/pkg/scheduler"
)

// EnableLogging routes the scheduler and reactive debug hooks to the console.
func EnableLogging() {
	scheduler.SetDebugLog(Log)
	reactive.SetDebugLog(Log)
}

// Log logs to the console. Values JS cannot take as-is are formatted.
func Log(args ...interface{}) {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string, bool, int, int64, uint64, float64, nil:
			out[i] = v
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	js.Global().Get("console").Call("log", out...)
}

// Logf logs a formatted message to the console
func Logf(format string, args ...interface{}) {
	js.Global().Get("console").Call("log", fmt.Sprintf(format, args...))
}

// Error logs to the console error stream.
func Error(args ...interface{}) {
	js.Global().Get("console").Call("error", fmt.Sprint(args...))
}
