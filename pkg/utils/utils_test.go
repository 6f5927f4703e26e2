package utils

import "testing"

func TestClassifyPath(t *testing.T) {
	tests := []struct {
		path     string
		expected ContentClass
	}{
		{"bufferA.glsl", ContentText},
		{"common.FRAG", ContentText},
		{"self", ContentText},
		{"textures/wood.png", ContentImage},
		{"https://example.com/photo.JPG?size=large#top", ContentImage},
		{"sky.hdr", ContentImage},
		{"music.mp3", ContentAudio},
		{"https://example.com/beat.ogg", ContentAudio},
		{"noextension", ContentUnknown},
		{"archive.zzzunknown", ContentUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyPath(tt.path); got != tt.expected {
			t.Errorf("ClassifyPath(%q) = %s, expected %s", tt.path, got, tt.expected)
		}
	}
}

func TestMimeType(t *testing.T) {
	if got := MimeType("a.glsl"); got != "text/x-glsl" {
		t.Errorf("Expected text/x-glsl, got %q", got)
	}
	if got := MimeType("https://example.com/a.png?v=1"); got != "image/png" {
		t.Errorf("Expected the query to be ignored, got %q", got)
	}
	if got := MimeType("file"); got != "" {
		t.Errorf("Expected no type without an extension, got %q", got)
	}
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{"common": true, "common_2": true}
	isTaken := func(name string) bool { return taken[name] }

	if got := UniqueName("noise", isTaken); got != "noise" {
		t.Errorf("Expected a free name to be kept, got %q", got)
	}
	if got := UniqueName("common", isTaken); got != "common_3" {
		t.Errorf("Expected common_3, got %q", got)
	}
}

func TestNames(t *testing.T) {
	if got := BaseName("/shaders/bufferA.glsl"); got != "bufferA" {
		t.Errorf("BaseName: expected bufferA, got %q", got)
	}
	if got := CountLines(""); got != 1 {
		t.Errorf("CountLines: expected 1 for empty text, got %d", got)
	}
	if got := CountLines("a\nb\nc"); got != 3 {
		t.Errorf("CountLines: expected 3, got %d", got)
	}

	tests := map[string]string{
		"bufferA":     "bufferA",
		"my-buffer":   "my_buffer",
		"2d":          "_2d",
		"":            "_",
		"été":         "_t_",
		"under_score": "under_score",
	}
	for input, expected := range tests {
		if got := SanitizeIdentifier(input); got != expected {
			t.Errorf("SanitizeIdentifier(%q) = %q, expected %q", input, got, expected)
		}
	}
}
