// Package buffers resolves a shader-toy GLSL file and everything it
// references into an ordered list of render passes. Dependencies come before
// the buffers reading them and the last buffer is the final image.
package buffers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/stevensona/shader-toy-sub000/pkg/diagnostics"
	"github.com/stevensona/shader-toy-sub000/pkg/document"
	"github.com/stevensona/shader-toy-sub000/pkg/shader"
)

// ErrRootUnreadable is returned when the shader being resolved cannot be read
var ErrRootUnreadable = errors.New("shader file is unreadable")

// Options control how buffers are resolved
type Options struct {
	StrictCompatibility     bool // Always append the main() wrapper
	EnableAudioInput        bool // Accept audio files on channels
	WarnOnUndefinedChannels bool // Warn about iChannelN reads without a binding
	PreambleLines           int  // Lines the renderer prepends to every buffer
}

// Result holds the resolved render passes and the includes they share
type Result struct {
	Buffers  []*shader.BufferDefinition  `json:"buffers"`
	Includes []*shader.IncludeDefinition `json:"includes"`
}

// Final returns the buffer rendered to the screen
func (r *Result) Final() *shader.BufferDefinition {
	if len(r.Buffers) == 0 {
		return nil
	}
	return r.Buffers[len(r.Buffers)-1]
}

// Buffer finds a buffer by name
func (r *Result) Buffer(name string) *shader.BufferDefinition {
	for _, b := range r.Buffers {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// SourceFile returns the file a SourceID of buf refers to
func (r *Result) SourceFile(buf *shader.BufferDefinition, src shader.SourceID) string {
	if src.IsSelf() || src.Index < 0 || src.Index >= len(r.Includes) {
		return buf.File
	}
	return r.Includes[src.Index].File
}

// Provider turns shader files into buffers
type Provider struct {
	files    document.FileSource
	paths    document.PathMapper
	reporter diagnostics.Reporter
	opts     Options
}

// NewProvider creates a provider reading files through files, resolving
// directive paths through paths and reporting problems to reporter
func NewProvider(files document.FileSource, paths document.PathMapper, reporter diagnostics.Reporter, opts Options) *Provider {
	if reporter == nil {
		reporter = diagnostics.Discard
	}
	return &Provider{
		files:    files,
		paths:    paths,
		reporter: reporter,
		opts:     opts,
	}
}

// Options returns the provider's options
func (p *Provider) Options() Options {
	return p.opts
}

// ParseShaderFile reads file and resolves it
func (p *Provider) ParseShaderFile(ctx context.Context, file string) (*Result, error) {
	file = canonical(file)

	code, err := p.files.ReadFile(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootUnreadable, err)
	}
	return p.ParseShaderCode(ctx, file, code)
}

// ParseShaderCode resolves code as the content of file. Referenced files are
// read through the provider's FileSource; problems with them become
// diagnostics rather than errors.
func (p *Provider) ParseShaderCode(ctx context.Context, file, code string) (*Result, error) {
	r := newResolution(ctx, p)

	if _, err := r.resolveBuffer(canonical(file), code); err != nil {
		return nil, err
	}
	r.linkBackEdges()

	return &Result{Buffers: r.buffers, Includes: r.includes}, nil
}

// canonical gives every file one identity regardless of how it was named
func canonical(file string) string {
	if abs, err := filepath.Abs(file); err == nil {
		return abs
	}
	return filepath.Clean(file)
}
