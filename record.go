package extlog

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Record is a log record as seen by TemplateFormatter.
type Record struct {
	// Name is the name of the logger, see WithName.
	Name  string
	Time  time.Time
	Level slog.Level
	// Msg is the message, or a printf format if Args is not empty.
	Msg  string
	Args []any
	// PC is the program counter of the log call, zero if unknown.
	PC      uintptr
	ExcInfo *Capture
	// Extra holds the attributes of the record and the injected fields.
	Extra map[string]any

	// terminal is set when the output is a terminal.
	terminal bool
}

// Message returns Msg formatted with Args, see formatMessage.
func (r *Record) Message() string {
	if len(r.Args) == 0 {
		return r.Msg
	}
	return formatMessage(r.Msg, r.Args)
}

// formatMessage formats like fmt.Sprintf, except that %s prints any value
// the way fmt.Sprint does: "value=%s" with 42 gives "value=42".
func formatMessage(format string, args []any) string {
	wrapped := make([]any, len(args))
	for i, arg := range args {
		wrapped[i] = stringArg{arg}
	}
	return fmt.Sprintf(format, wrapped...)
}

// stringArg hands every verb but s to the wrapped value.
type stringArg struct {
	v any
}

func (a stringArg) Format(f fmt.State, verb rune) {
	if verb == 's' {
		fmt.Fprintf(f, fmt.FormatString(f, verb), fmt.Sprint(a.v))
		return
	}
	fmt.Fprintf(f, fmt.FormatString(f, verb), a.v)
}

// messageArgs carries the arguments of a printf style log call to Handler.
type messageArgs []any

const messageArgsKey = "!args"

// decodeText decodes b as UTF-8, each invalid byte is replaced by U+FFFD.
func decodeText(b []byte) string {
	s, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(s)
}

// validText returns s with each invalid UTF-8 byte replaced by U+FFFD.
func validText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return decodeText([]byte(s))
}
