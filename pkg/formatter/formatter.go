// Package formatter renders resolved buffers for people and tools, and maps
// shader compiler logs back onto the files the code was written in
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/stevensona/shader-toy-sub000/pkg/buffers"
	"github.com/stevensona/shader-toy-sub000/pkg/shader"
)

// logLinePattern matches WebGL compiler lines such as "ERROR: 0:12: 'x' : undeclared identifier"
var logLinePattern = regexp.MustCompile(`^(ERROR|WARNING): (\d+):(\d+): ?(.*)$`)

// Formatter renders buffers and translates compiler logs
type Formatter struct {
	indentSize int
	useSpaces  bool
}

// New creates a new formatter
func New() *Formatter {
	return &Formatter{
		indentSize: 2,
		useSpaces:  true,
	}
}

// FormatBuffers writes a human readable summary of a resolution result
func (f *Formatter) FormatBuffers(w io.Writer, result *buffers.Result) error {
	var out strings.Builder

	for i, buf := range result.Buffers {
		marker := "📄"
		if i == len(result.Buffers)-1 {
			marker = "🖼️ "
		}
		out.WriteString(fmt.Sprintf("%s [%d] %s (%s)\n", marker, i, buf.Name, buf.File))
		f.writeBuffer(&out, buf, 1)
	}

	if len(result.Includes) > 0 {
		out.WriteString("📎 Includes\n")
		for i, inc := range result.Includes {
			out.WriteString(fmt.Sprintf("%s[%d] %s (%s, %d lines)\n", f.getIndent(1), i, inc.Name, inc.File, inc.LineCount))
		}
	}

	_, err := io.WriteString(w, out.String())
	return err
}

// writeBuffer writes the inputs, uniforms and flags of one buffer
func (f *Formatter) writeBuffer(out *strings.Builder, buf *shader.BufferDefinition, depth int) {
	indent := f.getIndent(depth)

	for _, in := range buf.TextureInputs {
		out.WriteString(fmt.Sprintf("%siChannel%d: %s\n", indent, in.Channel, f.describeTexture(in)))
	}
	for _, in := range buf.AudioInputs {
		source := "file"
		if in.FromURL {
			source = "url"
		}
		out.WriteString(fmt.Sprintf("%siChannel%d: audio %s (%s)\n", indent, in.Channel, in.File, source))
	}
	for _, u := range buf.CustomUniforms {
		out.WriteString(fmt.Sprintf("%suniform %s %s = %s", indent, u.Type, u.Name, formatVector(u.Default)))
		if u.Min != nil || u.Max != nil {
			out.WriteString(fmt.Sprintf(" in [%s, %s]", formatVector(u.Min), formatVector(u.Max)))
		}
		if u.Step != nil {
			out.WriteString(fmt.Sprintf(" step %s", formatVector(u.Step)))
		}
		out.WriteString("\n")
	}
	if len(buf.Includes) > 0 {
		out.WriteString(fmt.Sprintf("%sincludes: %s\n", indent, strings.Join(buf.Includes, ", ")))
	}
	if buf.UsesSelf {
		out.WriteString(fmt.Sprintf("%sself feedback on iChannel%d\n", indent, buf.SelfChannel))
	}
	for _, d := range buf.Dependents {
		out.WriteString(fmt.Sprintf("%sread by buffer %d on iChannel%d\n", indent, d.Index, d.Channel))
	}

	var flags []string
	if buf.UsesKeyboard {
		flags = append(flags, "keyboard")
	}
	if buf.UsesFirstPersonControls {
		flags = append(flags, "first-person-controls")
	}
	if buf.UsesStrictCompatibility {
		flags = append(flags, "strict-compatibility")
	}
	if len(flags) > 0 {
		out.WriteString(fmt.Sprintf("%sflags: %s\n", indent, strings.Join(flags, ", ")))
	}
	out.WriteString(fmt.Sprintf("%slines: %d (offset %d)\n", indent, strings.Count(buf.Code, "\n")+1, buf.LineOffset))
}

// describeTexture renders a texture input on one line
func (f *Formatter) describeTexture(in shader.TextureInput) string {
	var desc string
	switch in.Kind {
	case shader.TextureBuffer:
		desc = fmt.Sprintf("buffer %s [%d]", in.BufferName, in.BufferIndex)
	case shader.TextureSelf:
		desc = "self"
	default:
		desc = fmt.Sprintf("%s texture %s", in.Kind, in.File)
	}

	var settings []string
	if in.MagLine > 0 {
		settings = append(settings, "mag="+in.Mag.String())
	}
	if in.MinLine > 0 {
		settings = append(settings, "min="+in.Min.String())
	}
	if in.WrapLine > 0 {
		settings = append(settings, "wrap="+in.Wrap.String())
	}
	if in.TypeLine > 0 {
		settings = append(settings, "type="+in.Type.String())
	}
	if len(settings) > 0 {
		desc += " (" + strings.Join(settings, ", ") + ")"
	}
	return desc
}

// FormatJSON writes the result as indented JSON
func (f *Formatter) FormatJSON(w io.Writer, result *buffers.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", f.indentSize))
	return encoder.Encode(result)
}

// TranslateLog rewrites the line references of a compiler log for buf into
// file:line references to the authored sources. Lines that do not look like
// compiler messages are passed through unchanged.
func (f *Formatter) TranslateLog(log string, result *buffers.Result, buf *shader.BufferDefinition) string {
	lines := strings.Split(log, "\n")
	for i, line := range lines {
		m := logLinePattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		compiled, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		src, original, ok := buf.TranslateLine(compiled)
		if !ok {
			continue
		}
		lines[i] = fmt.Sprintf("%s: %s:%d: %s", m[1], result.SourceFile(buf, src), original, m[4])
	}
	return strings.Join(lines, "\n")
}

// getIndent returns the indentation string for the given depth
func (f *Formatter) getIndent(depth int) string {
	if f.useSpaces {
		return strings.Repeat(" ", depth*f.indentSize)
	}
	return strings.Repeat("\t", depth)
}

func formatVector(values []float64) string {
	if values == nil {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
