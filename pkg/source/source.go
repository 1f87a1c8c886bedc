// Package source holds the process-wide collaborators the compiler core
// treats as external: the arena that owns every byte range the pipeline
// ever looks at, and the source map that turns an offset back into a
// human location for diagnostics.
package source

import "fmt"

// Ptr is an opaque pointer into the preprocessed source text. The zero
// value means "no location" and Map.Locate degrades gracefully for it.
type Ptr int

// Slice is a borrowed, non-owning view into the arena's byte buffer for
// identifiers and string literals. == on two Slices compares their
// positions and arena, not their content; String gives the content.
type Slice struct {
	start, end int
	arena      *Arena
}

// Bytes returns the bytes the slice designates.
func (s Slice) Bytes() []byte {
	if s.arena == nil {
		return nil
	}
	return s.arena.buf[s.start:s.end]
}

// String returns the slice's content as a string (for map keys and output).
func (s Slice) String() string {
	return string(s.Bytes())
}

// Len returns the number of bytes in the slice.
func (s Slice) Len() int { return s.end - s.start }

// Arena is a bump-pointer allocator for the bytes (source text and decoded
// literal payloads) that live for exactly one pipeline run. Nothing here is ever freed node
// by node; the whole arena is dropped when the pipeline returns.
type Arena struct {
	buf []byte
}

// NewArena creates an arena seeded with the preprocessed translation unit.
func NewArena(text string) *Arena {
	return &Arena{buf: []byte(text)}
}

// Slice returns a borrowed view over [start, end) of the arena's buffer.
func (a *Arena) Slice(start, end int) Slice {
	return Slice{start: start, end: end, arena: a}
}

// Intern copies b into the arena (used for decoded string/char literal
// payloads that don't already exist contiguously in the source text, e.g.
// after escape decoding) and returns a slice over the copy.
func (a *Arena) Intern(b []byte) Slice {
	start := len(a.buf)
	a.buf = append(a.buf, b...)
	return Slice{start: start, end: len(a.buf), arena: a}
}

// Ptr returns the arena-relative pointer for a byte offset.
func (a *Arena) Ptr(offset int) Ptr { return Ptr(offset) }

// Loc is a resolved human-readable source location.
type Loc struct {
	File   string
	Line   int // 1-based; 0 means "unknown"
	Column int // 1-based
}

func (l Loc) String() string {
	if l.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Map records the byte offset at which each source line begins.
type Map struct {
	file   string
	starts []int // starts[i] = offset of the first byte of line i+1
}

// NewMap builds a source map for a single file's preprocessed text by
// scanning it once for newlines.
func NewMap(file, text string) *Map {
	m := &Map{file: file, starts: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			m.starts = append(m.starts, i+1)
		}
	}
	return m
}

// Locate turns a Ptr into (file, line, column). A zero or negative Ptr
// returns a Loc with Line == 0 so diagnostics can degrade gracefully
// instead of erroring; any other Ptr, including one past the end of the
// text, is placed on the last line that starts at or before it.
func (m *Map) Locate(p Ptr) Loc {
	if m == nil || p <= 0 {
		return Loc{}
	}
	offset := int(p)
	// Binary search for the last line start <= offset.
	lo, hi := 0, len(m.starts)-1
	line := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if m.starts[mid] <= offset {
			line = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if line < 0 {
		return Loc{}
	}
	return Loc{File: m.file, Line: line + 1, Column: offset - m.starts[line] + 1}
}
