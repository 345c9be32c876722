package source

import "strconv"

// Span is a half-open byte range [Start, End) inside one file. The zero
// Span means "no location".
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) IsZero() bool { return s == Span{} }

// Empty is true for zero-width spans, such as the EOF position.
func (s Span) Empty() bool { return s.End <= s.Start }

// String: "#file[start:end)".
func (s Span) String() string {
	return "#" + strconv.FormatUint(uint64(s.File), 10) +
		"[" + strconv.FormatUint(uint64(s.Start), 10) +
		":" + strconv.FormatUint(uint64(s.End), 10) + ")"
}

// Cover widens s to include every span of the same file in others; spans
// from other files are ignored.
func (s Span) Cover(others ...Span) Span {
	for _, o := range others {
		if o.File != s.File {
			continue
		}
		s.Start = min(s.Start, o.Start)
		s.End = max(s.End, o.End)
	}
	return s
}

// Contains reports whether other lies fully inside s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}
