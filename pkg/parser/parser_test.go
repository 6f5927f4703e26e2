package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stevensona/shader-toy-sub000/pkg/diagnostics"
	"github.com/stevensona/shader-toy-sub000/pkg/shader"
)

// parseAll returns every object the parser yields for input
func parseAll(input string) []Object {
	var objects []Object
	p := NewParser(input)
	for {
		obj, ok := p.Next()
		if !ok {
			return objects
		}
		objects = append(objects, obj)
	}
}

// parseOne parses input and expects exactly one object
func parseOne(t *testing.T, input string) Object {
	t.Helper()
	objects := parseAll(input)
	if len(objects) != 1 {
		t.Fatalf("Expected 1 object for %q, got %d", input, len(objects))
	}
	return objects[0]
}

func TestParseTextures(t *testing.T) {
	tests := []struct {
		input string
		path  string
		kind  shader.TextureKind
	}{
		{`#iChannel0 "tex.png"`, "tex.png", shader.TextureLocal},
		{`#iChannel0 "file://./tex.png"`, "./tex.png", shader.TextureLocal},
		{`#iChannel0 "https://example.com/a.jpg"`, "https://example.com/a.jpg", shader.TextureRemote},
		{`#iChannel0 "self"`, "self", shader.TextureSelf},
		{`#iChannel0 "buf://self"`, "self", shader.TextureSelf},
		{`#iChannel0 "buf://bufferA.glsl"`, "bufferA.glsl", shader.TextureLocal},
		{`#iChannel0 "C:/textures/tex.png"`, "C:/textures/tex.png", shader.TextureLocal},
		{`#iChannel0 "%zz.png"`, "%zz.png", shader.TextureLocal},
		{`#iChannel0 "file:"`, "file:", shader.TextureLocal},
		{`#iChannel0 "buf:x"`, "buf:x", shader.TextureLocal},
		{`#iChannel0 buf://self`, "self", shader.TextureSelf},
		{`#iChannel0 https://example.com/a.jpg`, "https://example.com/a.jpg", shader.TextureRemote},
		{`#iChannel0 buf://self // feedback`, "self", shader.TextureSelf},
	}

	for _, tt := range tests {
		obj, ok := parseOne(t, tt.input).(*TextureObject)
		if !ok {
			t.Errorf("Expected a texture object for %q", tt.input)
			continue
		}
		if obj.Path != tt.path || obj.Kind != tt.kind || obj.Index != 0 {
			t.Errorf("%q: got channel %d path %q kind %s, expected path %q kind %s", tt.input, obj.Index, obj.Path, obj.Kind, tt.path, tt.kind)
		}
	}
}

func TestParseUnquotedTexturePath(t *testing.T) {
	input := "#iChannel1 file://./noise.png\n#iKeyboard\n"
	p := NewParser(input)

	obj, ok := p.Next()
	if !ok {
		t.Fatal("Expected a texture object")
	}
	tex, ok := obj.(*TextureObject)
	if !ok || tex.Index != 1 || tex.Path != "./noise.png" || tex.Kind != shader.TextureLocal {
		t.Fatalf("Unexpected texture: %+v", obj)
	}
	rng, _ := p.LastObjectRange()
	if input[rng.Begin:rng.End] != "#iChannel1 file://./noise.png" {
		t.Errorf("Unexpected range %q", input[rng.Begin:rng.End])
	}

	if obj, ok := p.Next(); !ok || obj.Type() != ObjectKeyboard {
		t.Errorf("Expected the keyboard directive after the texture, got %v", obj)
	}

	objects := parseAll("#iChannel0 buf://self trailing\n")
	if len(objects) != 1 || objects[0].Type() != ObjectError {
		t.Errorf("Expected an error for text after the path, got %v", objects)
	}
}

func TestParseTextureSettings(t *testing.T) {
	obj, ok := parseOne(t, "#iChannel3::MinFilter NearestMipMapLinear").(*TextureSettingObject)
	if !ok {
		t.Fatal("Expected a texture setting object")
	}
	if obj.Index != 3 || obj.Setting != SettingMinFilter || obj.Value != "NearestMipMapLinear" {
		t.Errorf("Unexpected setting: %+v", obj)
	}

	obj, ok = parseOne(t, "#iChannel1::Type CubeMap").(*TextureSettingObject)
	if !ok || obj.Setting != SettingType || obj.Value != "CubeMap" {
		t.Errorf("Unexpected setting: %+v", obj)
	}
}

func TestParseMarkersAndInclude(t *testing.T) {
	objects := parseAll("#include \"common.glsl\"\n#iKeyboard\n#iFirstPersonControls\n#StrictCompatibility\n")

	types := make([]ObjectType, len(objects))
	for i, obj := range objects {
		types[i] = obj.Type()
	}
	expected := []ObjectType{ObjectInclude, ObjectKeyboard, ObjectFirstPersonControls, ObjectStrictCompatibility}
	if diff := cmp.Diff(expected, types); diff != "" {
		t.Fatalf("Object types mismatch (-want +got):\n%s", diff)
	}

	if inc := objects[0].(*IncludeObject); inc.Path != "common.glsl" {
		t.Errorf("Expected include path common.glsl, got %q", inc.Path)
	}
	for i, obj := range objects {
		if obj.Line() != i+1 || obj.OriginalLine() != i+1 {
			t.Errorf("Object %d: expected line %d, got %d (original %d)", i, i+1, obj.Line(), obj.OriginalLine())
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"#iChannel0",
		"#iChannel0 tex.png junk",
		"#iChannel0::Foo Linear",
		"#iChannel0::MagFilter",
		"#include common.glsl",
		"#iUniform banana x = 1",
		"#iUniform float = 1",
		"#iUniform float x = vec2(1, 2",
		"#iUniform float x = 1 in { 0 }",
		"#iUniform float x = 1 oops",
	}

	for _, input := range tests {
		objects := parseAll(input + "\n#iKeyboard")
		if len(objects) != 2 {
			t.Errorf("%q: expected an error and a keyboard object, got %d objects", input, len(objects))
			continue
		}
		if _, ok := objects[0].(*ErrorObject); !ok {
			t.Errorf("%q: expected an error object, got %T", input, objects[0])
		}
		if objects[1].Type() != ObjectKeyboard {
			t.Errorf("%q: parsing must resume on the next line, got %T", input, objects[1])
		}
	}
}

func TestParseDirectiveArgumentsStayOnOneLine(t *testing.T) {
	objects := parseAll("#iChannel0\n\"tex.png\"")
	if len(objects) != 1 {
		t.Fatalf("Expected 1 object, got %d", len(objects))
	}
	if _, ok := objects[0].(*ErrorObject); !ok {
		t.Errorf("Expected an error object, got %T", objects[0])
	}
}

func TestUniformPolicy(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		def     []float64
		min     []float64
		max     []float64
		step    []float64
		issues  int
		isError bool
	}{
		{
			name:   "scalar bounds broadcast with information",
			input:  "#iUniform vec4 c = vec4(1,1,1,1) in { 0, 99 }",
			def:    []float64{1, 1, 1, 1},
			min:    []float64{0, 0, 0, 0},
			max:    []float64{99, 99, 99, 99},
			issues: 2,
		},
		{
			name:   "matching bounds are kept",
			input:  "#iUniform vec4 c = vec4(1,1,1,1) in { vec4(0,1,2,3), vec4(99,98,97,96) }",
			def:    []float64{1, 1, 1, 1},
			min:    []float64{0, 1, 2, 3},
			max:    []float64{99, 98, 97, 96},
			issues: 0,
		},
		{
			name:   "short bounds are padded with their first component",
			input:  "#iUniform vec3 v = vec3(1, 2, 3) in { vec2(0, 1), vec4(5, 6, 7, 8) }",
			def:    []float64{1, 2, 3},
			min:    []float64{0, 1, 0},
			max:    []float64{5, 6, 7},
			issues: 2,
		},
		{
			name:   "scalar default broadcasts silently",
			input:  "#iUniform vec3 v = 2",
			def:    []float64{2, 2, 2},
			issues: 0,
		},
		{
			name:   "mismatched default is padded",
			input:  "#iUniform vec3 v = vec2(1, 2)",
			def:    []float64{1, 2, 1},
			issues: 1,
		},
		{
			name:   "missing default uses minimum",
			input:  "#iUniform float f in { 0.5, 2 }",
			def:    []float64{0.5},
			min:    []float64{0.5},
			max:    []float64{2},
			issues: 1,
		},
		{
			name:   "negative values and step",
			input:  "#iUniform vec2 v = vec2(-0.5, 0.5) in { -1, 1 } step 0.25",
			def:    []float64{-0.5, 0.5},
			min:    []float64{-1, -1},
			max:    []float64{1, 1},
			step:   []float64{0.25, 0.25},
			issues: 3,
		},
		{
			name:    "neither default nor minimum",
			input:   "#iUniform float f",
			isError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := parseOne(t, tt.input)
			if tt.isError {
				if _, ok := obj.(*ErrorObject); !ok {
					t.Fatalf("Expected an error object, got %T", obj)
				}
				return
			}

			u, ok := obj.(*UniformObject)
			if !ok {
				t.Fatalf("Expected a uniform object, got %#v", obj)
			}
			if diff := cmp.Diff(tt.def, u.Default); diff != "" {
				t.Errorf("Default mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.min, u.Min); diff != "" {
				t.Errorf("Min mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.max, u.Max); diff != "" {
				t.Errorf("Max mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.step, u.Step); diff != "" {
				t.Errorf("Step mismatch (-want +got):\n%s", diff)
			}
			if len(u.Issues) != tt.issues {
				t.Errorf("Expected %d issues, got %d: %v", tt.issues, len(u.Issues), u.Issues)
			}
			for _, issue := range u.Issues {
				if issue.Severity != diagnostics.SeverityInformation {
					t.Errorf("Expected information severity, got %s", issue.Severity)
				}
			}
		})
	}
}

func TestUniformDefinition(t *testing.T) {
	u, ok := parseOne(t, "\n#iUniform color3 tint = color3(1, 0.5, 0)").(*UniformObject)
	if !ok {
		t.Fatal("Expected a uniform object")
	}

	expected := shader.UniformDefinition{
		Name:    "tint",
		Type:    "color3",
		Default: []float64{1, 0.5, 0},
		Line:    2,
	}
	if diff := cmp.Diff(expected, u.Definition()); diff != "" {
		t.Errorf("Definition mismatch (-want +got):\n%s", diff)
	}
}

func TestParserMutate(t *testing.T) {
	p := NewParser("a\n#iKeyboard\nb #iChannel0 \"x.png\"\n")

	if _, ok := p.LastObjectRange(); ok {
		t.Error("Expected no range before the first object")
	}

	obj, _ := p.Next()
	if obj.Type() != ObjectKeyboard {
		t.Fatalf("Expected keyboard object, got %s", obj.Type())
	}
	rng, ok := p.LastObjectRange()
	if !ok {
		t.Fatal("Expected a range")
	}
	if got := p.Stream().Text()[rng.Begin:rng.End]; got != "#iKeyboard" {
		t.Errorf("Expected range to cover '#iKeyboard', got %q", got)
	}
	p.Mutate(rng, "// three\n// lines\n// here")

	obj, _ = p.Next()
	tex, ok := obj.(*TextureObject)
	if !ok {
		t.Fatalf("Expected texture object, got %T", obj)
	}
	if tex.Line() != 5 || tex.OriginalLine() != 3 {
		t.Errorf("Expected line 5 (original 3), got %d (original %d)", tex.Line(), tex.OriginalLine())
	}
	rng, _ = p.LastObjectRange()
	if got := p.Stream().Text()[rng.Begin:rng.End]; got != `#iChannel0 "x.png"` {
		t.Errorf("Unexpected range text %q", got)
	}
	p.Mutate(rng, "")

	if !p.EOF() {
		t.Error("Expected EOF")
	}
	if !strings.HasPrefix(p.Stream().Text(), "a\n// three") || !strings.HasSuffix(p.Stream().Text(), "\nb \n") {
		t.Errorf("Unexpected final text %q", p.Stream().Text())
	}
}
