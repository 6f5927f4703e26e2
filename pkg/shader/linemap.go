package shader

import (
	"fmt"
	"sort"
)

// SourceKind distinguishes the file a compiled line was authored in
type SourceKind int

const (
	SourceSelf SourceKind = iota // the buffer's own file
	SourceInclude                // an entry of the include list
)

// SourceID identifies the origin of a compiled line. Index is only
// meaningful for SourceInclude and points into the include list.
type SourceID struct {
	Kind  SourceKind `json:"kind"`
	Index int        `json:"index,omitempty"`
}

// SelfSource returns the SourceID of the file being compiled
func SelfSource() SourceID {
	return SourceID{Kind: SourceSelf}
}

// IncludeSource returns the SourceID of the include at index i
func IncludeSource(i int) SourceID {
	return SourceID{Kind: SourceInclude, Index: i}
}

// IsSelf reports whether the id refers to the compiled file itself
func (s SourceID) IsSelf() bool {
	return s.Kind == SourceSelf
}

func (s SourceID) String() string {
	if s.Kind == SourceSelf {
		return "self"
	}
	return fmt.Sprintf("include#%d", s.Index)
}

// LineSegment maps Count consecutive compiled lines starting at Start onto
// consecutive lines of Source starting at OriginalStart. Lines are 1-based.
type LineSegment struct {
	Start         int      `json:"start"`
	Count         int      `json:"count"`
	Source        SourceID `json:"source"`
	OriginalStart int      `json:"originalStart"`
}

// LineMap is an ordered, non-overlapping list of segments covering the lines
// of a processed source text.
type LineMap []LineSegment

// Translate maps a line of the processed text back to its authored source
func (m LineMap) Translate(line int) (SourceID, int, bool) {
	i := sort.Search(len(m), func(i int) bool {
		return m[i].Start+m[i].Count > line
	})
	if i >= len(m) || line < m[i].Start {
		return SourceID{}, 0, false
	}
	seg := m[i]
	return seg.Source, seg.OriginalStart + (line - seg.Start), true
}

// Rebase returns a copy of the map where lines attributed to the map's own
// file are attributed to src instead. Used when a processed include is
// spliced into another file.
func (m LineMap) Rebase(src SourceID) LineMap {
	out := make(LineMap, len(m))
	for i, seg := range m {
		if seg.Source.IsSelf() {
			seg.Source = src
		}
		out[i] = seg
	}
	return out
}

// Append adds a single line mapping, extending the last segment when the
// mapping continues it.
func (m LineMap) Append(line int, src SourceID, original int) LineMap {
	if n := len(m); n > 0 {
		last := &m[n-1]
		if last.Source == src && last.Start+last.Count == line && last.OriginalStart+last.Count == original {
			last.Count++
			return m
		}
	}
	return append(m, LineSegment{Start: line, Count: 1, Source: src, OriginalStart: original})
}
