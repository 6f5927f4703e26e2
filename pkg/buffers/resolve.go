package buffers

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/stevensona/shader-toy-sub000/pkg/diagnostics"
	"github.com/stevensona/shader-toy-sub000/pkg/parser"
	"github.com/stevensona/shader-toy-sub000/pkg/shader"
	"github.com/stevensona/shader-toy-sub000/pkg/utils"
)

// mainWrapper calls the shader-toy entry point from a GLSL main
const mainWrapper = "void main() {\n    mainImage(GLSL_FRAGCOLOR, gl_FragCoord.xy);\n}\n"

var (
	versionPattern   = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*version\b[^\n]*`)
	mainImagePattern = regexp.MustCompile(`\bmainImage\s*\(`)
	mainPattern      = regexp.MustCompile(`\bvoid\s+main\s*\(`)
	channelPattern   = regexp.MustCompile(`\biChannel(\d+)\b`)
)

// resolution is the state of one ParseShaderCode call
type resolution struct {
	ctx      context.Context
	provider *Provider

	visited     map[string]bool // files whose buffer was started
	bufferIndex map[string]int  // file to index in buffers, once registered
	buffers     []*shader.BufferDefinition
	names       map[string]bool

	includes      []*shader.IncludeDefinition
	includeIndex  map[string]int  // file to index in includes
	includeNames  map[string]bool
	includeNested map[int][]int   // include to the includes it pulls in, transitively
	includeActive map[string]bool // includes being processed

	backEdges []backEdge
}

// backEdge is a channel whose buffer was still being resolved when it was
// referenced, which only happens along a cycle
type backEdge struct {
	buffer  *shader.BufferDefinition
	channel int
	target  string
}

// fileState accumulates what the directives of one file declare
type fileState struct {
	file  string
	batch *diagnostics.Batch

	textures []*parser.TextureObject
	settings []*parser.TextureSettingObject
	uniforms []shader.UniformDefinition

	includes     []int // indexes into resolution.includes, in first-use order
	includeLines int

	keyboard            bool
	firstPersonControls bool
	strict              bool
}

func newResolution(ctx context.Context, p *Provider) *resolution {
	return &resolution{
		ctx:           ctx,
		provider:      p,
		visited:       make(map[string]bool),
		bufferIndex:   make(map[string]int),
		names:         make(map[string]bool),
		includeIndex:  make(map[string]int),
		includeNames:  make(map[string]bool),
		includeNested: make(map[int][]int),
		includeActive: make(map[string]bool),
	}
}

// resolveBuffer parses file, resolves everything it references and registers
// it as a buffer after its dependencies. It returns the buffer's index.
func (r *resolution) resolveBuffer(file, code string) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return -1, err
	}
	r.visited[file] = true

	state := &fileState{file: file, batch: diagnostics.NewBatch(file)}
	defer state.batch.Flush(r.provider.reporter)

	p := parser.NewParser(code)
	r.collectDirectives(state, p)

	buf := &shader.BufferDefinition{File: file}
	if err := r.resolveTextures(state, buf); err != nil {
		return -1, err
	}
	r.applySettings(state, buf)

	stream := p.Stream()
	stripVersion(state.batch, stream)
	r.injectMain(state, stream)
	r.checkChannels(state, buf, stream)

	buf.CustomUniforms = state.uniforms
	buf.UsesKeyboard = state.keyboard
	buf.UsesFirstPersonControls = state.firstPersonControls
	buf.UsesStrictCompatibility = state.strict || r.provider.opts.StrictCompatibility
	buf.Code = stream.Text()
	buf.LineMap = stream.LineMap()
	buf.PreambleLines = r.provider.opts.PreambleLines
	buf.LineOffset = r.provider.opts.PreambleLines + state.includeLines
	for _, idx := range state.includes {
		buf.Includes = append(buf.Includes, r.includes[idx].Name)
	}

	return r.register(buf), nil
}

// collectDirectives runs the parser over a buffer's own file, stripping every
// directive and recording its effect in state
func (r *resolution) collectDirectives(state *fileState, p *parser.Parser) {
	for {
		obj, ok := p.Next()
		if !ok {
			return
		}
		rng, _ := p.LastObjectRange()

		switch o := obj.(type) {
		case *parser.TextureObject:
			state.textures = append(state.textures, o)
		case *parser.TextureSettingObject:
			state.settings = append(state.settings, o)
		case *parser.IncludeObject:
			if idx, ok := r.inlineInclude(state.file, state.batch, p, o, rng); ok {
				state.addInclude(idx, r.includeNested[idx])
				state.includeLines += r.includes[idx].LineCount
			}
			continue
		case *parser.UniformObject:
			for _, issue := range o.Issues {
				state.batch.Add(o.OriginalLine(), issue.Severity, issue.Message)
			}
			state.uniforms = append(state.uniforms, o.Definition())
		case *parser.KeyboardObject:
			state.keyboard = true
		case *parser.FirstPersonControlsObject:
			state.firstPersonControls = true
		case *parser.StrictCompatibilityObject:
			state.strict = true
		case *parser.ErrorObject:
			state.batch.Errorf(o.OriginalLine(), "%s", o.Message)
		}
		p.Mutate(rng, "")
	}
}

// addInclude records idx and what it pulls in, keeping first-use order
func (s *fileState) addInclude(idx int, nested []int) {
	s.includes = appendUnique(s.includes, nested...)
	s.includes = appendUnique(s.includes, idx)
}

// stripVersion removes a #version line; the renderer supplies its own
func stripVersion(batch *diagnostics.Batch, stream *parser.Stream) {
	text := stream.Text()
	loc := versionPattern.FindStringIndex(parser.StripComments(text))
	if loc == nil {
		return
	}
	line := stream.OriginalLineOf(stream.LineOf(loc[0]))
	batch.Warnf(line, "%s was removed, the renderer provides its own version directive", strings.TrimSpace(text[loc[0]:loc[1]]))
	stream.Mutate(loc[0], loc[1], "")
}

// injectMain appends a main() calling mainImage() when the shader only
// defines mainImage, or always in strict compatibility mode
func (r *resolution) injectMain(state *fileState, stream *parser.Stream) {
	code := parser.StripComments(stream.Text())

	strict := state.strict || r.provider.opts.StrictCompatibility
	if !strict && (!mainImagePattern.MatchString(code) || mainPattern.MatchString(code)) {
		return
	}

	text := stream.Text()
	wrapper := mainWrapper
	if text != "" && !strings.HasSuffix(text, "\n") {
		wrapper = "\n" + wrapper
	}
	stream.Mutate(len(text), len(text), wrapper)
}

// checkChannels warns about iChannelN reads with nothing bound to N
func (r *resolution) checkChannels(state *fileState, buf *shader.BufferDefinition, stream *parser.Stream) {
	if !r.provider.opts.WarnOnUndefinedChannels {
		return
	}

	reported := make(map[int]bool)
	code := parser.StripComments(stream.Text())
	for _, m := range channelPattern.FindAllStringSubmatchIndex(code, -1) {
		channel, err := strconv.Atoi(code[m[2]:m[3]])
		if err != nil || reported[channel] || buf.HasChannel(channel) {
			continue
		}
		reported[channel] = true
		line := stream.OriginalLineOf(stream.LineOf(m[0]))
		state.batch.Warnf(line, "iChannel%d is used but no input is bound to it", channel)
	}
}

// register appends buf to the buffer list under a unique name and links it
// to the self-feedback buffers it reads
func (r *resolution) register(buf *shader.BufferDefinition) int {
	index := len(r.buffers)

	buf.Name = utils.UniqueName(utils.SanitizeIdentifier(utils.BaseName(buf.File)), func(name string) bool { return r.names[name] })
	r.names[buf.Name] = true

	for i := range buf.TextureInputs {
		in := &buf.TextureInputs[i]
		switch {
		case in.Kind == shader.TextureSelf:
			in.BufferIndex = index
			in.BufferName = buf.Name
		case in.Kind == shader.TextureBuffer && in.BufferIndex >= 0:
			r.addDependent(in.BufferIndex, index, in.Channel)
		}
	}

	r.buffers = append(r.buffers, buf)
	r.bufferIndex[buf.File] = index
	return index
}

// addDependent tells the buffer at dep that the buffer at index reads it on
// channel, if dep feeds back on itself
func (r *resolution) addDependent(dep, index, channel int) {
	target := r.buffers[dep]
	if !target.UsesSelf {
		return
	}
	target.Dependents = append(target.Dependents, shader.Dependent{Index: index, Channel: channel})
}

// linkBackEdges fills in the buffer indexes of channels that referenced a
// buffer before it was registered
func (r *resolution) linkBackEdges() {
	for _, edge := range r.backEdges {
		target, ok := r.bufferIndex[edge.target]
		if !ok {
			continue
		}
		in := edge.buffer.TextureInput(edge.channel)
		if in == nil {
			continue
		}
		in.BufferIndex = target
		in.BufferName = r.buffers[target].Name
		r.addDependent(target, r.bufferIndex[edge.buffer.File], edge.channel)
	}

	for _, buf := range r.buffers {
		sort.SliceStable(buf.Dependents, func(i, j int) bool {
			return buf.Dependents[i].Index < buf.Dependents[j].Index
		})
	}
}

// describe names a directive for diagnostics
func describe(obj parser.Object) string {
	switch o := obj.(type) {
	case *parser.TextureObject:
		return fmt.Sprintf("#iChannel%d", o.Index)
	case *parser.TextureSettingObject:
		return fmt.Sprintf("#iChannel%d::%s", o.Index, o.Setting)
	case *parser.UniformObject:
		return "#iUniform"
	case *parser.KeyboardObject:
		return "#iKeyboard"
	case *parser.FirstPersonControlsObject:
		return "#iFirstPersonControls"
	case *parser.StrictCompatibilityObject:
		return "#StrictCompatibility"
	case *parser.IncludeObject:
		return "#include"
	default:
		return "directive"
	}
}
