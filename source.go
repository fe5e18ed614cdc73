package extlog

import (
	"path"
	"runtime"
	"strconv"
	"strings"
)

// source describes where a record was logged.
type source struct {
	Pathname string
	Filename string
	Module   string
	FuncName string
	Line     int
}

func sourceFromPC(pc uintptr) source {
	if pc == 0 {
		return source{}
	}
	fs := runtime.CallersFrames([]uintptr{pc})
	f, _ := fs.Next()
	filename := path.Base(f.File)
	return source{
		Pathname: f.File,
		Filename: filename,
		Module:   strings.TrimSuffix(filename, path.Ext(filename)),
		FuncName: shortFuncName(f.Function),
		Line:     f.Line,
	}
}

// shortFuncName strips the package path, "github.com/a/b.(*T).M" becomes "(*T).M".
func shortFuncName(fn string) string {
	if i := strings.LastIndexByte(fn, '/'); i >= 0 {
		fn = fn[i+1:]
	}
	if i := strings.IndexByte(fn, '.'); i >= 0 {
		fn = fn[i+1:]
	}
	return fn
}

// Short returns "dir/file.go:line", empty if the source is unknown.
func (s source) Short() string {
	if s.Pathname == "" {
		return ""
	}
	file := s.Pathname
	i := strings.LastIndexByte(file, '/')
	if i >= 0 {
		if j := strings.LastIndexByte(file[:i], '/'); j >= 0 {
			file = file[j+1:]
		}
	}
	return file + ":" + strconv.Itoa(s.Line)
}
