package span

import "fmt"

// Span is a half-open byte range [Lo, Hi) within the file named by File.
// The zero Span means "no source location is known".
type Span struct {
	File string
	Lo   int
	Hi   int
}

// New builds a span over [lo, hi) in file.
func New(file string, lo, hi int) Span {
	if hi < lo {
		panic(fmt.Sprintf("span: invalid range [%d, %d)", lo, hi))
	}
	return Span{File: file, Lo: lo, Hi: hi}
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Len is the byte length of the span.
func (s Span) Len() int {
	return s.Hi - s.Lo
}

// Contains reports whether other lies fully inside s. Both spans must
// belong to the same file.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Lo <= other.Lo && other.Hi <= s.Hi
}

// Text extracts the span's bytes from src, which must be the full
// content of the span's file.
func (s Span) Text(src string) string {
	return src[s.Lo:s.Hi]
}

func (s Span) String() string {
	if s.IsZero() {
		return "<no-span>"
	}
	return fmt.Sprintf("%s[%d..%d)", s.File, s.Lo, s.Hi)
}
