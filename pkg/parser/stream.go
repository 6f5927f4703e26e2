package parser

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/stevensona/shader-toy-sub000/pkg/shader"
)

// EOF is returned by Peek and Next past the end of the text
const EOF rune = 0

// MutationRecord describes one text substitution that changed the line count
type MutationRecord struct {
	BeginLine            int // line of the substitution in the text it was applied to
	ReplacementLineCount int
	OriginalLineCount    int
}

// edit replaces original[origBegin:origEnd] with text. Edits never overlap
// and are kept ordered by position.
type edit struct {
	origBegin int
	origEnd   int
	text      string

	tagged  bool // text comes from another file described by source/lineMap
	source  shader.SourceID
	lineMap shader.LineMap
}

// Stream is a character cursor over source text that can be rewritten in
// place while still answering which authored line a position came from.
type Stream struct {
	original  string
	origLines []int // offsets of line starts in original

	edits []edit
	text  string // original with every edit applied
	lines []int  // offsets of line starts in text

	pos     int
	records []MutationRecord
}

// NewStream creates a stream positioned at the start of content
func NewStream(content string) *Stream {
	starts := lineStarts(content)
	return &Stream{
		original:  content,
		origLines: starts,
		text:      content,
		lines:     starts,
	}
}

// Text returns the current (mutated) text
func (s *Stream) Text() string {
	return s.text
}

// Original returns the text the stream was created with
func (s *Stream) Original() string {
	return s.original
}

// Pos returns the current byte offset into Text
func (s *Stream) Pos() int {
	return s.pos
}

// Peek returns the rune ahead runes past the current position without
// consuming anything
func (s *Stream) Peek(ahead int) rune {
	pos := s.pos
	for {
		if pos >= len(s.text) {
			return EOF
		}
		r, w := utf8.DecodeRuneInString(s.text[pos:])
		if ahead == 0 {
			return r
		}
		ahead--
		pos += w
	}
}

// Next consumes and returns the rune at the current position
func (s *Stream) Next() rune {
	if s.pos >= len(s.text) {
		return EOF
	}
	r, w := utf8.DecodeRuneInString(s.text[s.pos:])
	s.pos += w
	return r
}

// EOF reports whether the whole text has been consumed
func (s *Stream) EOF() bool {
	return s.pos >= len(s.text)
}

// Line returns the 1-based line of the current position in Text
func (s *Stream) Line() int {
	return lineAt(s.lines, s.pos)
}

// LineOf returns the 1-based line of an offset in Text
func (s *Stream) LineOf(offset int) int {
	return lineAt(s.lines, offset)
}

// Column returns the 1-based column of the current position
func (s *Stream) Column() int {
	return s.pos - s.lines[s.Line()-1] + 1
}

// Reset moves the cursor to pos; line and column follow from the line index
func (s *Stream) Reset(pos int) {
	s.pos = clamp(pos, 0, len(s.text))
}

// Mutate replaces text[begin:end] with replacement and returns the new text.
// The cursor is not moved; callers re-anchor with Reset.
func (s *Stream) Mutate(begin, end int, replacement string) string {
	return s.splice(begin, end, edit{text: replacement})
}

// MutateFrom is Mutate for text that was authored in another file. Lines of
// replacement are attributed through srcMap, with the map's own lines
// attributed to src.
func (s *Stream) MutateFrom(begin, end int, replacement string, src shader.SourceID, srcMap shader.LineMap) string {
	return s.splice(begin, end, edit{text: replacement, tagged: true, source: src, lineMap: srcMap})
}

// Mutations returns every line-count-changing substitution in the order they
// were applied
func (s *Stream) Mutations() []MutationRecord {
	out := make([]MutationRecord, len(s.records))
	copy(out, s.records)
	return out
}

// OriginalLine returns the line of the unmutated text the cursor's line came
// from
func (s *Stream) OriginalLine() int {
	return s.OriginalLineOf(s.Line())
}

// OriginalLineOf translates a line of Text to a line of Original. A line
// inside substituted text maps to the line where the substitution began.
func (s *Stream) OriginalLineOf(line int) int {
	line = clamp(line, 1, len(s.lines))
	p := s.lines[line-1]

	delta := 0
	for _, ed := range s.edits {
		cb := ed.origBegin + delta
		ce := cb + len(ed.text)
		if p < cb {
			break
		}
		if p < ce {
			return lineAt(s.origLines, ed.origBegin)
		}
		delta += len(ed.text) - (ed.origEnd - ed.origBegin)
	}
	return lineAt(s.origLines, p-delta)
}

// LineMap attributes every line of Text to the file and line it was
// authored on. A line belongs to whichever piece of text holds its first
// non-blank character.
func (s *Stream) LineMap() shader.LineMap {
	var m shader.LineMap

	i, delta := 0, 0
	cb := func(i int) int { return s.edits[i].origBegin + delta }
	ce := func(i int) int { return cb(i) + len(s.edits[i].text) }

	for line := 1; line <= len(s.lines); line++ {
		anchor := s.lineAnchor(line)

		for i < len(s.edits) && ce(i) <= anchor {
			delta += len(s.edits[i].text) - (s.edits[i].origEnd - s.edits[i].origBegin)
			i++
		}

		if i < len(s.edits) && cb(i) <= anchor {
			ed := s.edits[i]
			fallback := lineAt(s.origLines, ed.origBegin)
			if !ed.tagged {
				m = m.Append(line, shader.SelfSource(), fallback)
				continue
			}
			rel := strings.Count(ed.text[:anchor-cb(i)], "\n") + 1
			src, orig, ok := ed.lineMap.Translate(rel)
			switch {
			case !ok:
				m = m.Append(line, shader.SelfSource(), fallback)
			case src.IsSelf():
				m = m.Append(line, ed.source, orig)
			default:
				m = m.Append(line, src, orig)
			}
			continue
		}

		m = m.Append(line, shader.SelfSource(), lineAt(s.origLines, anchor-delta))
	}
	return m
}

// lineAnchor returns the offset of the first non-blank character of a line,
// or the line start for blank lines
func (s *Stream) lineAnchor(line int) int {
	return anchorAt(s.text, s.lines[line-1])
}

// anchorAt is lineAnchor for the line of text starting at start
func anchorAt(text string, start int) int {
	for p := start; p < len(text) && text[p] != '\n'; p++ {
		if c := text[p]; c != ' ' && c != '\t' && c != '\r' {
			return p
		}
	}
	return start
}

// splice records e as the replacement of text[begin:end], merging it with
// any earlier edit whose replacement text it overlaps
func (s *Stream) splice(begin, end int, e edit) string {
	begin = clamp(begin, 0, len(s.text))
	end = clamp(end, begin, len(s.text))

	removed := s.text[begin:end]
	if oldLines, newLines := strings.Count(removed, "\n")+1, strings.Count(e.text, "\n")+1; oldLines != newLines {
		s.records = append(s.records, MutationRecord{
			BeginLine:            lineAt(s.lines, begin),
			ReplacementLineCount: newLines,
			OriginalLineCount:    oldLines,
		})
	}

	n := len(s.edits)
	cbs := make([]int, n)
	ces := make([]int, n)
	after := make([]int, n) // cumulative delta once edit i is applied
	delta := 0
	for i, ed := range s.edits {
		cbs[i] = ed.origBegin + delta
		ces[i] = cbs[i] + len(ed.text)
		delta += len(ed.text) - (ed.origEnd - ed.origBegin)
		after[i] = delta
	}

	// origOf maps a position outside every replacement back to original.
	// Zero-length edits sitting exactly at p count as before p only when
	// includeEmpty is set.
	origOf := func(p int, includeEmpty bool) int {
		d := 0
		for i := 0; i < n; i++ {
			if ces[i] > p {
				break
			}
			if ces[i] == p && cbs[i] == p && !includeEmpty {
				break
			}
			d = after[i]
		}
		return p - d
	}

	first, last := -1, -1
	for i := 0; i < n; i++ {
		if overlaps(begin, end, cbs[i], ces[i]) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	if first >= 0 {
		newBegin, newEnd := begin, end
		origBegin, origEnd := s.edits[first].origBegin, s.edits[last].origEnd
		if cbs[first] < begin {
			newBegin = cbs[first]
		} else if begin < cbs[first] {
			origBegin = origOf(begin, true)
		}
		if ces[last] > end {
			newEnd = ces[last]
		} else if end > ces[last] {
			origEnd = origOf(end, false)
		}
		merged := edit{
			origBegin: origBegin,
			origEnd:   origEnd,
			text:      s.text[newBegin:begin] + e.text + s.text[end:newEnd],
		}
		tagged := e.tagged
		for _, ed := range s.edits[first : last+1] {
			tagged = tagged || ed.tagged
		}
		if tagged {
			merged.tagged = true
			merged.source = shader.SelfSource()
			merged.lineMap = s.mergedLineMap(newBegin, begin, end, e, merged.text)
		}
		s.edits = append(s.edits[:first], append([]edit{merged}, s.edits[last+1:]...)...)
	} else {
		insertAt := n
		for i := 0; i < n; i++ {
			if ces[i] > begin {
				insertAt = i
				break
			}
		}
		e.origBegin = origOf(begin, true)
		e.origEnd = origOf(end, begin == end)
		s.edits = append(s.edits[:insertAt], append([]edit{e}, s.edits[insertAt:]...)...)
	}

	s.rebuild()
	return s.text
}

// mergedLineMap attributes the lines of merged, the text that replaces
// text[newBegin:newEnd] once e is merged into the edits it overlaps. Text
// that was already there keeps the attribution of the current line map.
func (s *Stream) mergedLineMap(newBegin, begin, end int, e edit, merged string) shader.LineMap {
	current := s.LineMap()
	at := func(offset int) (shader.SourceID, int, bool) {
		return current.Translate(s.LineOf(offset))
	}

	prefixEnd := begin - newBegin
	editEnd := prefixEnd + len(e.text)

	var m shader.LineMap
	for k, start := range lineStarts(merged) {
		a := anchorAt(merged, start)

		var src shader.SourceID
		var orig int
		var ok bool
		switch {
		case a < prefixEnd:
			src, orig, ok = at(newBegin + a)
		case a < editEnd && e.tagged:
			src, orig, ok = e.lineMap.Translate(strings.Count(e.text[:a-prefixEnd], "\n") + 1)
			if ok && src.IsSelf() {
				src = e.source
			}
		case a < editEnd:
			src, orig, ok = at(begin)
		default:
			src, orig, ok = at(end + a - editEnd)
		}
		if !ok {
			src, orig = shader.SelfSource(), s.OriginalLineOf(s.LineOf(begin))
		}
		m = m.Append(k+1, src, orig)
	}
	return m
}

// rebuild regenerates text and its line index from original and edits
func (s *Stream) rebuild() {
	var b strings.Builder
	b.Grow(len(s.original))
	prev := 0
	for _, ed := range s.edits {
		b.WriteString(s.original[prev:ed.origBegin])
		b.WriteString(ed.text)
		prev = ed.origEnd
	}
	b.WriteString(s.original[prev:])
	s.text = b.String()
	s.lines = lineStarts(s.text)
	s.pos = clamp(s.pos, 0, len(s.text))
}

// overlaps reports whether [b,e) and the replacement [cb,ce) share text.
// Empty ranges overlap a range only when strictly inside it.
func overlaps(b, e, cb, ce int) bool {
	switch {
	case b == e && cb == ce:
		return false
	case b == e:
		return cb < b && b < ce
	case cb == ce:
		return b < cb && cb < e
	default:
		return max(b, cb) < min(e, ce)
	}
}

func lineStarts(s string) []int {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineAt returns the 1-based line holding offset
func lineAt(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
