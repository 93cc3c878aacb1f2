// Package sourcemap tracks source text and resolves byte offsets to
// human-readable line/column positions.
//
// DESIGN CHOICE: Spans carry only byte offsets. Line and column are derived
// on demand from an index of newline offsets built once per source, rather
// than tracked incrementally while scanning. This keeps Span a cheap value
// type (two ints) that every later stage (parser, analyzer, IR, diagnostics)
// can pass around without recomputing or caching position state.
package sourcemap

import "sort"

// Span is a half-open byte range [Start, End) into a File's text.
type Span struct {
	Start int
	End   int
}

// Contains reports whether the given offset falls within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	result := s
	if other.Start < result.Start {
		result.Start = other.Start
	}
	if other.End > result.End {
		result.End = other.End
	}
	return result
}

// Position is a resolved, human-readable location.
type Position struct {
	Filename string
	Line     int // 1-based
	Column   int // 1-based, counted in runes
	Offset   int // 0-based byte offset
}

// File holds source text plus a newline index, built once by NewFile, for
// fast offset-to-line/column resolution.
type File struct {
	Name string
	Text string

	lineStarts []int // byte offset of the first byte of each line
}

// NewFile constructs a File and builds its newline index immediately: the
// index is small (one int per line) and every subsequent Position call is a
// binary search against it, so there is no benefit to delaying the build.
func NewFile(name, text string) *File {
	f := &File{Name: name, Text: text}
	f.buildIndex()
	return f
}

func (f *File) buildIndex() {
	f.lineStarts = []int{0}
	for i := 0; i < len(f.Text); i++ {
		if f.Text[i] == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
}

// Position resolves a byte offset to a line/column. Offsets past the end of
// the text resolve to the final recorded position.
func (f *File) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Text) {
		offset = len(f.Text)
	}

	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}

	lineStart := f.lineStarts[line]
	column := 1
	for i := lineStart; i < offset; {
		_, size := decodeRuneAt(f.Text, i)
		if size == 0 {
			break
		}
		i += size
		column++
	}

	return Position{
		Filename: f.Name,
		Line:     line + 1,
		Column:   column,
		Offset:   offset,
	}
}

// decodeRuneAt reports the byte size of the rune starting at i without
// pulling in unicode/utf8 decoding edge cases we don't need here; ASCII
// source dominates and multi-byte runes still advance correctly because we
// only need the width, not the rune value.
func decodeRuneAt(s string, i int) (rune, int) {
	b := s[i]
	switch {
	case b < 0x80:
		return rune(b), 1
	case b>>5 == 0b110:
		return 0, 2
	case b>>4 == 0b1110:
		return 0, 3
	case b>>3 == 0b11110:
		return 0, 4
	default:
		return 0, 1
	}
}

// Slice returns the text covered by a span.
func (f *File) Slice(s Span) string {
	if s.Start < 0 {
		s.Start = 0
	}
	if s.End > len(f.Text) {
		s.End = len(f.Text)
	}
	if s.End < s.Start {
		return ""
	}
	return f.Text[s.Start:s.End]
}

// String renders a position as "filename:line:column".
func (p Position) String() string {
	return p.Filename + ":" + itoa(p.Line) + ":" + itoa(p.Column)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	buf := make([]byte, 0, 12)
	for n > 0 {
		buf = append(buf, byte('0'+n%10))
		n /= 10
	}
	if neg {
		buf = append(buf, '-')
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
