package parser

import (
	"strings"
	"testing"
)

func TestStripComments(t *testing.T) {
	input := "a // void main() {}\n/* void main()\n{} */ b \"//kept\"\n// é\nc"
	output := StripComments(input)

	if len(output) != len(input) {
		t.Fatalf("Expected length %d, got %d: %q", len(input), len(output), output)
	}
	if strings.Count(output, "\n") != strings.Count(input, "\n") {
		t.Errorf("Expected newlines to be preserved, got %q", output)
	}
	if strings.Contains(output, "main") {
		t.Errorf("Expected commented main to be removed, got %q", output)
	}
	if !strings.Contains(output, `"//kept"`) {
		t.Errorf("Expected string contents to be kept, got %q", output)
	}

	for _, word := range []string{"a", "b", "c"} {
		if strings.Index(output, word) != strings.Index(input, word) {
			t.Errorf("Expected %q to keep its offset", word)
		}
	}
}

func TestStripCommentsUnterminated(t *testing.T) {
	input := "x /* never closed\nmainImage"
	output := StripComments(input)

	if strings.Contains(output, "mainImage") {
		t.Errorf("Expected the unterminated comment to run to the end, got %q", output)
	}
	if len(output) != len(input) {
		t.Errorf("Expected length %d, got %d", len(input), len(output))
	}
}

func TestStripCommentsInvalidUTF8(t *testing.T) {
	input := "x // caf\xe9\n#version 300 es\ny /* \xff\xfe */ z \"\xe9\""
	output := StripComments(input)

	if len(output) != len(input) {
		t.Fatalf("Expected length %d, got %d: %q", len(input), len(output), output)
	}
	for _, word := range []string{"#version", "y", "z", "\"\xe9\""} {
		if strings.Index(output, word) != strings.Index(input, word) {
			t.Errorf("Expected %q to keep its offset in %q", word, output)
		}
	}
	if strings.Count(output, "\xe9") != 1 || strings.Contains(output, "\xff") {
		t.Errorf("Expected only the quoted byte to survive, got %q", output)
	}
}
