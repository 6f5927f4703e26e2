package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stevensona/shader-toy-sub000/pkg/shader"
)

func TestStreamNavigation(t *testing.T) {
	s := NewStream("ab\ncd")

	if r := s.Peek(1); r != 'b' {
		t.Errorf("Expected Peek(1) to be 'b', got %q", r)
	}
	if r := s.Next(); r != 'a' {
		t.Errorf("Expected 'a', got %q", r)
	}
	s.Next()
	s.Next()

	if s.Line() != 2 || s.Column() != 1 {
		t.Errorf("Expected position 2:1, got %d:%d", s.Line(), s.Column())
	}

	s.Reset(1)
	if s.Line() != 1 || s.Column() != 2 {
		t.Errorf("Expected position 1:2 after reset, got %d:%d", s.Line(), s.Column())
	}

	s.Reset(100)
	if !s.EOF() {
		t.Error("Expected EOF after resetting past the end")
	}
	if r := s.Next(); r != EOF {
		t.Errorf("Expected EOF rune, got %q", r)
	}
}

func TestStreamMutateTracksOriginalLines(t *testing.T) {
	s := NewStream("a\n#x\nb\nc\n")

	text := s.Mutate(2, 4, "1\n2\n3")
	if text != "a\n1\n2\n3\nb\nc\n" {
		t.Fatalf("Unexpected text after mutation: %q", text)
	}

	tests := []struct {
		line     int
		original int
	}{
		{1, 1},
		{2, 2}, // inserted lines map to the substituted line
		{3, 2},
		{4, 2},
		{5, 3},
		{6, 4},
	}
	for _, tt := range tests {
		if got := s.OriginalLineOf(tt.line); got != tt.original {
			t.Errorf("OriginalLineOf(%d) = %d, expected %d", tt.line, got, tt.original)
		}
	}

	expected := []MutationRecord{{BeginLine: 2, ReplacementLineCount: 3, OriginalLineCount: 1}}
	if diff := cmp.Diff(expected, s.Mutations()); diff != "" {
		t.Errorf("Mutations mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamRemovalKeepsLineCount(t *testing.T) {
	s := NewStream("#iKeyboard\nvoid main() {}\n")
	s.Mutate(0, len("#iKeyboard"), "")

	if s.Text() != "\nvoid main() {}\n" {
		t.Fatalf("Unexpected text: %q", s.Text())
	}
	if len(s.Mutations()) != 0 {
		t.Errorf("Expected no line-count changing mutation, got %v", s.Mutations())
	}
	if got := s.OriginalLineOf(2); got != 2 {
		t.Errorf("Expected line 2 to stay line 2, got %d", got)
	}
	if s.Original() != "#iKeyboard\nvoid main() {}\n" {
		t.Errorf("Original text must not change, got %q", s.Original())
	}
}

func TestStreamSequentialMutations(t *testing.T) {
	s := NewStream("l1\nl2\nl3\nl4\n")

	// expand line 2, then shrink line 4 as it appears in the mutated text
	s.Mutate(3, 5, "x\ny")
	pos := len("l1\nx\ny\nl3\n")
	s.Mutate(pos, pos+2, "")

	if s.Text() != "l1\nx\ny\nl3\n\n" {
		t.Fatalf("Unexpected text: %q", s.Text())
	}
	if got := s.OriginalLineOf(4); got != 3 {
		t.Errorf("Expected line 4 to come from line 3, got %d", got)
	}
	if got := s.OriginalLineOf(5); got != 4 {
		t.Errorf("Expected line 5 to come from line 4, got %d", got)
	}
}

func TestStreamLineMapWithTaggedText(t *testing.T) {
	s := NewStream("x\n#inc\ny\n")
	included := shader.LineMap{{Start: 1, Count: 2, Source: shader.SelfSource(), OriginalStart: 1}}
	s.MutateFrom(2, 6, "i1\ni2", shader.IncludeSource(0), included)

	if s.Text() != "x\ni1\ni2\ny\n" {
		t.Fatalf("Unexpected text: %q", s.Text())
	}

	expected := shader.LineMap{
		{Start: 1, Count: 1, Source: shader.SelfSource(), OriginalStart: 1},
		{Start: 2, Count: 2, Source: shader.IncludeSource(0), OriginalStart: 1},
		{Start: 4, Count: 2, Source: shader.SelfSource(), OriginalStart: 3},
	}
	if diff := cmp.Diff(expected, s.LineMap()); diff != "" {
		t.Errorf("LineMap mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamMutateInsideTaggedText(t *testing.T) {
	s := NewStream("x\n#inc\ny\n")
	included := shader.LineMap{{Start: 1, Count: 3, Source: shader.SelfSource(), OriginalStart: 1}}
	s.MutateFrom(2, 6, "v1\ni2\ni3", shader.IncludeSource(0), included)
	s.Mutate(2, 4, "")

	if s.Text() != "x\n\ni2\ni3\ny\n" {
		t.Fatalf("Unexpected text: %q", s.Text())
	}

	expected := shader.LineMap{
		{Start: 1, Count: 1, Source: shader.SelfSource(), OriginalStart: 1},
		{Start: 2, Count: 3, Source: shader.IncludeSource(0), OriginalStart: 1},
		{Start: 5, Count: 2, Source: shader.SelfSource(), OriginalStart: 3},
	}
	if diff := cmp.Diff(expected, s.LineMap()); diff != "" {
		t.Errorf("LineMap mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamUnicode(t *testing.T) {
	s := NewStream("é\nb")
	if r := s.Next(); r != 'é' {
		t.Errorf("Expected 'é', got %q", r)
	}
	if r := s.Next(); r != '\n' {
		t.Errorf("Expected newline, got %q", r)
	}
	if s.Line() != 2 {
		t.Errorf("Expected line 2, got %d", s.Line())
	}
}
