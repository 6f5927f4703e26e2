package document

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspaceReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.glsl")
	if err := os.WriteFile(path, []byte("on disk"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	ws := NewWorkspace(dir)
	ctx := context.Background()

	content, err := ws.ReadFile(ctx, path)
	if err != nil || content != "on disk" {
		t.Fatalf("Expected disk content, got %q (%v)", content, err)
	}

	ws.Open(path, "unsaved")
	if !ws.IsOpen(filepath.Join(dir, ".", "image.glsl")) {
		t.Error("Expected the overlay to be found through an unclean path")
	}
	content, _ = ws.ReadFile(ctx, path)
	if content != "unsaved" {
		t.Errorf("Expected overlay content, got %q", content)
	}

	ws.Close(path)
	content, _ = ws.ReadFile(ctx, path)
	if content != "on disk" {
		t.Errorf("Expected disk content after closing, got %q", content)
	}

	// overlays do not need a file on disk
	virtual := filepath.Join(dir, "virtual.glsl")
	ws.Open(virtual, "virtual")
	if content, err := ws.ReadFile(ctx, virtual); err != nil || content != "virtual" {
		t.Errorf("Expected overlay for a file that does not exist, got %q (%v)", content, err)
	}
}

func TestWorkspaceReadFileErrors(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	missing := filepath.Join(ws.Root(), "missing.glsl")

	_, err := ws.ReadFile(context.Background(), missing)
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("Expected a ReadError, got %v", err)
	}
	if readErr.Path != missing {
		t.Errorf("Expected path %s, got %s", missing, readErr.Path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected the error to wrap fs.ErrNotExist, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ws.ReadFile(ctx, missing); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestMapUserPath(t *testing.T) {
	root := filepath.FromSlash("/work")
	ws := NewWorkspace(root)
	ws.SetMapping("assets/", "/shared/assets/")
	ws.SetMapping("assets/hdr/", "/big/hdr/")

	from := filepath.FromSlash("/work/shaders/image.glsl")

	tests := []struct {
		name       string
		userPath   string
		relativeTo string
		expected   string
	}{
		{"relative to the file", "common.glsl", from, "/work/shaders/common.glsl"},
		{"parent directory", "../lib/noise.glsl", from, "/work/lib/noise.glsl"},
		{"file scheme", "file://./tex.png", from, "/work/shaders/tex.png"},
		{"absolute", "/textures/a.png", from, "/textures/a.png"},
		{"workspace folder", "${workspaceFolder}/textures/a.png", from, "/work/textures/a.png"},
		{"mapping", "assets/a.png", from, "/shared/assets/a.png"},
		{"longest mapping wins", "assets/hdr/sky.hdr", from, "/big/hdr/sky.hdr"},
		{"relative to the root", "a.png", "", "/work/a.png"},
		{"surrounding spaces", "  a.png ", from, "/work/shaders/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ws.MapUserPath(context.Background(), tt.userPath, tt.relativeTo)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if expected := filepath.FromSlash(tt.expected); got != expected {
				t.Errorf("MapUserPath(%q) = %q, expected %q", tt.userPath, got, expected)
			}
		})
	}
}

func TestMapUserPathErrors(t *testing.T) {
	ws := NewWorkspace(t.TempDir())

	for _, input := range []string{"", "   ", "file://"} {
		if _, err := ws.MapUserPath(context.Background(), input, ""); !errors.Is(err, ErrEmptyPath) {
			t.Errorf("MapUserPath(%q): expected ErrEmptyPath, got %v", input, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ws.MapUserPath(ctx, "a.glsl", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
