package cmderr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// StackProvider is implemented by errors that carry the call stack from
// the point they were raised.
type StackProvider interface {
	StackTrace() []Frame
}

// WithStack attaches the current call stack to err so diagnostics can
// report where the error was raised rather than where it was handled.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(StackProvider); ok {
		return err
	}
	return &stackError{err: err, frames: CaptureStack(1)}
}

// StackOf returns the first attached stack in err's unwrap chain, or nil.
func StackOf(err error) []Frame {
	for err != nil {
		if sp, ok := err.(StackProvider); ok {
			return sp.StackTrace()
		}
		err = errors.Unwrap(err)
	}
	return nil
}

type stackError struct {
	err    error
	frames []Frame
}

func (e *stackError) Error() string       { return e.err.Error() }
func (e *stackError) Unwrap() error       { return e.err }
func (e *stackError) StackTrace() []Frame { return e.frames }

// Frame is a single frame in a captured call stack.
type Frame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// CaptureStack captures the current call stack, skipping the given number
// of caller frames. Runtime internals are dropped; capture stops after
// main.main when present.
func CaptureStack(skip int) []Frame {
	var frames []Frame

	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs) // +2 skips Callers and CaptureStack
	if n == 0 {
		return frames
	}

	callers := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := callers.Next()
		if frame.Function == "main.main" {
			frames = append(frames, Frame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})
			break
		}

		if strings.HasPrefix(frame.Function, "runtime.") {
			if !more {
				break
			}
			continue
		}

		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})

		if !more {
			break
		}
	}

	return frames
}

// FormatStack renders frames as the traceback text delivered to
// diagnostics, innermost frame first.
func FormatStack(frames []Frame) string {
	if len(frames) == 0 {
		return "(no stack captured)"
	}

	var sb strings.Builder
	for _, f := range frames {
		sb.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", f.Function, f.File, f.Line))
	}
	return sb.String()
}
