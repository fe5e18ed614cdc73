package extlog

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"

	"github.com/icefed/extlog/buffer"
)

// ExcInfoKey is the key under which an exception capture is attached to
// records and exposed to templates.
const ExcInfoKey = "exc_info"

// maxDepth limits the number of frames kept in a capture.
const maxDepth = 64

// Capture is an exception capture: the error and the stack of the goroutine
// at the point it was captured.
type Capture struct {
	Err error
	PCs []uintptr
}

// CaptureError captures err with the stack of the caller. skip is the
// number of frames to skip above the caller of CaptureError.
func CaptureError(err error, skip int) *Capture {
	if err == nil {
		return nil
	}
	pcs := make([]uintptr, maxDepth)
	// skip runtime.Callers and CaptureError
	n := runtime.Callers(2+skip, pcs)
	return &Capture{
		Err: err,
		PCs: pcs[:n],
	}
}

// LogValue implements slog.LogValuer, handlers other than Handler log the
// exception line only.
func (c *Capture) LogValue() slog.Value {
	return slog.StringValue(NewExceptionInfo(c).Exception())
}

// PanicError wraps a recovered panic value which is not an error.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprint(e.Value)
}

// ExceptionInfo renders a Capture for templates. A nil *ExceptionInfo
// stands for "no exception", it is false in template conditions and all
// its methods return zero values.
type ExceptionInfo struct {
	c *Capture
}

// NewExceptionInfo returns nil if there is no capture.
func NewExceptionInfo(c *Capture) *ExceptionInfo {
	if c == nil || c.Err == nil {
		return nil
	}
	return &ExceptionInfo{c: c}
}

// Present reports whether an exception was captured.
func (e *ExceptionInfo) Present() bool {
	return e != nil
}

// ExceptionObject returns the captured error.
func (e *ExceptionInfo) ExceptionObject() error {
	if e == nil {
		return nil
	}
	return e.c.Err
}

// Exception returns the type and message of the error, without frames.
func (e *ExceptionInfo) Exception() string {
	if e == nil {
		return ""
	}
	buf := buffer.New()
	defer buf.Free()
	e.appendException(buf)
	return decodeText(buf.Bytes())
}

// Traceback returns the exception line followed by the captured frames.
func (e *ExceptionInfo) Traceback() string {
	if e == nil {
		return ""
	}
	buf := buffer.New()
	defer buf.Free()
	e.appendException(buf)
	if len(e.c.PCs) > 0 {
		buf.WriteString("\n\n")
		formatFrames(buf, e.c.PCs)
	}
	return decodeText(buf.Bytes())
}

// String returns the traceback.
func (e *ExceptionInfo) String() string {
	return e.Traceback()
}

func (e *ExceptionInfo) appendException(buf *buffer.Buffer) {
	if pe, ok := e.c.Err.(*PanicError); ok {
		buf.WriteString("panic: ")
		fmt.Fprint(buf, pe.Value)
	} else {
		fmt.Fprintf(buf, "%T: %s", e.c.Err, e.c.Err.Error())
	}
	buf.TrimRightSpace()
}

// formatFrames writes one "function\n\tfile:line" entry per frame.
func formatFrames(buf *buffer.Buffer, pcs []uintptr) {
	fs := runtime.CallersFrames(pcs)
	for {
		f, more := fs.Next()
		buf.WriteString(f.Function)
		buf.WriteString("\n\t")
		buf.WriteString(f.File)
		buf.WriteByte(':')
		*buf = strconv.AppendInt(*buf, int64(f.Line), 10)
		if !more {
			break
		}
		buf.WriteByte('\n')
	}
	buf.TrimRightSpace()
}
