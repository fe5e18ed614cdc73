package buffer

import (
	"sync"
	"unicode"
	"unicode/utf8"
)

// Initial buffer size
const initBufferSize = 512

// Buffers larger than this are dropped instead of pooled.
const maxPooledSize = 64 << 10

// Buffer is a single bytes buffer, it implements io.Writer so templates
// can render directly into it.
type Buffer []byte

var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, initBufferSize)
		return (*Buffer)(&buf)
	},
}

// New returns an empty buffer from the pool.
func New() *Buffer {
	return bufferPool.Get().(*Buffer)
}

// Free resets the buffer and returns it to the pool.
func (b *Buffer) Free() {
	if cap(*b) > maxPooledSize {
		return
	}
	b.Reset()
	bufferPool.Put(b)
}

func (b *Buffer) Reset() {
	*b = (*b)[:0]
}

func (b *Buffer) Len() int {
	return len(*b)
}

// LastByte returns the last byte, nil if the buffer is empty.
func (b *Buffer) LastByte() *byte {
	n := b.Len()
	if n <= 0 {
		return nil
	}
	return &(*b)[n-1]
}

// TrimRightSpace drops trailing white space.
func (b *Buffer) TrimRightSpace() {
	for b.Len() > 0 {
		r, size := utf8.DecodeLastRune(*b)
		if !unicode.IsSpace(r) {
			return
		}
		*b = (*b)[:b.Len()-size]
	}
}

func (b *Buffer) Write(data []byte) (int, error) {
	*b = append(*b, data...)
	return len(data), nil
}

func (b *Buffer) WriteString(str string) (int, error) {
	*b = append(*b, str...)
	return len(str), nil
}

func (b *Buffer) WriteByte(c byte) error {
	*b = append(*b, c)
	return nil
}

func (b *Buffer) WriteRune(r rune) (int, error) {
	n := b.Len()
	*b = utf8.AppendRune(*b, r)
	return b.Len() - n, nil
}

func (b *Buffer) Bytes() []byte {
	return *b
}

// String returns a copy of the buffer contents.
func (b *Buffer) String() string {
	return string(*b)
}
