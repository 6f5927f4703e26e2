// Package utils provides small helpers shared by the resolver and the CLI
package utils

import (
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
)

// ContentClass is the broad kind of file a channel references
type ContentClass int

const (
	ContentUnknown ContentClass = iota
	ContentText
	ContentImage
	ContentAudio
)

func (c ContentClass) String() string {
	switch c {
	case ContentText:
		return "text"
	case ContentImage:
		return "image"
	case ContentAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// builtinTypes covers extensions the host's mime table is unlikely to know
var builtinTypes = map[string]string{
	".glsl": "text/x-glsl",
	".frag": "text/x-glsl",
	".fs":   "text/x-glsl",
	".vert": "text/x-glsl",
	".txt":  "text/plain",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tga":  "image/x-tga",
	".hdr":  "image/vnd.radiance",
	".dds":  "image/vnd-ms.dds",
	".webp": "image/webp",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
}

// MimeType guesses a MIME type from the path's extension. Query strings and
// fragments of URLs are ignored.
func MimeType(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 && strings.Contains(p, "://") {
		p = p[:i]
	}
	ext := strings.ToLower(path.Ext(filepath.ToSlash(p)))
	if ext == "" {
		return ""
	}
	if t, ok := builtinTypes[ext]; ok {
		return t
	}
	return mime.TypeByExtension(ext)
}

// ClassifyPath sorts a referenced path into text, image or audio content
func ClassifyPath(p string) ContentClass {
	if p == "self" {
		return ContentText
	}

	t := MimeType(p)
	switch {
	case strings.HasPrefix(t, "text/"):
		return ContentText
	case strings.HasPrefix(t, "image/"):
		return ContentImage
	case strings.HasPrefix(t, "audio/"):
		return ContentAudio
	default:
		return ContentUnknown
	}
}

// CountLines returns the number of lines in text; an empty text is one line
func CountLines(text string) int {
	return strings.Count(text, "\n") + 1
}

// BaseName returns the file name without directory and extension
func BaseName(p string) string {
	base := filepath.Base(filepath.FromSlash(p))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// UniqueName returns name, or name with a numeric suffix when taken already
// holds it
func UniqueName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// SanitizeIdentifier turns a file name into something usable as a GLSL or
// JavaScript identifier
func SanitizeIdentifier(name string) string {
	if name == "" {
		return "_"
	}

	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || isLetter(r):
			b.WriteRune(r)
		case isDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isLetter checks if a rune is an ASCII letter
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isDigit checks if a rune is a digit
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
