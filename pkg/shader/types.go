// Package shader defines the resolved render-pass structures produced from
// shader-toy GLSL sources: buffers, texture and audio inputs, custom uniforms
// and shared includes.
package shader

import (
	"fmt"
	"sort"
	"strings"
)

// TextureKind represents where a channel input comes from
type TextureKind int

const (
	TextureLocal TextureKind = iota
	TextureRemote
	TextureBuffer
	TextureSelf
)

func (k TextureKind) String() string {
	switch k {
	case TextureLocal:
		return "local"
	case TextureRemote:
		return "remote"
	case TextureBuffer:
		return "buffer"
	case TextureSelf:
		return "self"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name for JSON output
func (k TextureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MagFilter represents a texture magnification filter
type MagFilter int

const (
	MagLinear MagFilter = iota
	MagNearest
)

var magFilterNames = map[MagFilter]string{
	MagLinear:  "Linear",
	MagNearest: "Nearest",
}

func (f MagFilter) String() string {
	return nameOr(magFilterNames[f], "Unknown")
}

// MarshalText renders the filter by name for JSON output
func (f MagFilter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseMagFilter parses a MagFilter value as written after #iChannelN::MagFilter
func ParseMagFilter(s string) (MagFilter, error) {
	for f, name := range magFilterNames {
		if strings.EqualFold(name, s) {
			return f, nil
		}
	}
	return MagLinear, fmt.Errorf("unknown MagFilter %q, expected one of %s", s, joinNames(magFilterNames))
}

// MinFilter represents a texture minification filter
type MinFilter int

const (
	MinLinear MinFilter = iota
	MinNearest
	MinNearestMipMapNearest
	MinNearestMipMapLinear
	MinLinearMipMapNearest
	MinLinearMipMapLinear
)

var minFilterNames = map[MinFilter]string{
	MinLinear:               "Linear",
	MinNearest:              "Nearest",
	MinNearestMipMapNearest: "NearestMipMapNearest",
	MinNearestMipMapLinear:  "NearestMipMapLinear",
	MinLinearMipMapNearest:  "LinearMipMapNearest",
	MinLinearMipMapLinear:   "LinearMipMapLinear",
}

func (f MinFilter) String() string {
	return nameOr(minFilterNames[f], "Unknown")
}

// MarshalText renders the filter by name for JSON output
func (f MinFilter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseMinFilter parses a MinFilter value as written after #iChannelN::MinFilter
func ParseMinFilter(s string) (MinFilter, error) {
	for f, name := range minFilterNames {
		if strings.EqualFold(name, s) {
			return f, nil
		}
	}
	return MinLinear, fmt.Errorf("unknown MinFilter %q, expected one of %s", s, joinNames(minFilterNames))
}

// WrapMode represents texture coordinate wrapping
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
	WrapMirror
)

var wrapModeNames = map[WrapMode]string{
	WrapRepeat: "Repeat",
	WrapClamp:  "Clamp",
	WrapMirror: "Mirror",
}

func (w WrapMode) String() string {
	return nameOr(wrapModeNames[w], "Unknown")
}

// MarshalText renders the wrap mode by name for JSON output
func (w WrapMode) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// ParseWrapMode parses a WrapMode value as written after #iChannelN::WrapMode
func ParseWrapMode(s string) (WrapMode, error) {
	for w, name := range wrapModeNames {
		if strings.EqualFold(name, s) {
			return w, nil
		}
	}
	return WrapRepeat, fmt.Errorf("unknown WrapMode %q, expected one of %s", s, joinNames(wrapModeNames))
}

// TextureType represents the sampler kind bound to a channel
type TextureType int

const (
	Texture2D TextureType = iota
	TextureCubeMap
)

var textureTypeNames = map[TextureType]string{
	Texture2D:      "Texture2D",
	TextureCubeMap: "CubeMap",
}

func (t TextureType) String() string {
	return nameOr(textureTypeNames[t], "Unknown")
}

// MarshalText renders the texture type by name for JSON output
func (t TextureType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseTextureType parses a Type value as written after #iChannelN::Type
func ParseTextureType(s string) (TextureType, error) {
	for t, name := range textureTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return Texture2D, fmt.Errorf("unknown Type %q, expected one of %s", s, joinNames(textureTypeNames))
}

// TextureInput describes one #iChannelN binding of a buffer
type TextureInput struct {
	Channel     int         `json:"channel"`
	File        string      `json:"file"`
	Kind        TextureKind `json:"kind"`
	Self        bool        `json:"self,omitempty"`
	BufferIndex int         `json:"bufferIndex"` // -1 unless Kind is TextureBuffer or TextureSelf
	BufferName  string      `json:"bufferName,omitempty"`

	Mag      MagFilter   `json:"magFilter"`
	MagLine  int         `json:"magFilterLine,omitempty"`
	Min      MinFilter   `json:"minFilter"`
	MinLine  int         `json:"minFilterLine,omitempty"`
	Wrap     WrapMode    `json:"wrapMode"`
	WrapLine int         `json:"wrapModeLine,omitempty"`
	Type     TextureType `json:"type"`
	TypeLine int         `json:"typeLine,omitempty"`

	Line int `json:"line"` // line of the #iChannelN directive in the buffer's file
}

// NewTextureInput creates a texture input with default sampler settings
func NewTextureInput(channel int, file string, kind TextureKind) TextureInput {
	return TextureInput{
		Channel:     channel,
		File:        file,
		Kind:        kind,
		Self:        kind == TextureSelf,
		BufferIndex: -1,
		Mag:         MagLinear,
		Min:         MinLinear,
		Wrap:        WrapRepeat,
		Type:        Texture2D,
	}
}

// AudioInput describes an audio file bound to a channel
type AudioInput struct {
	Channel int    `json:"channel"`
	File    string `json:"file"`
	FromURL bool   `json:"fromUrl,omitempty"`
	Line    int    `json:"line"`
}

// UniformDefinition describes a custom #iUniform value exposed to the UI
type UniformDefinition struct {
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Default []float64 `json:"default"`
	Min     []float64 `json:"min,omitempty"`
	Max     []float64 `json:"max,omitempty"`
	Step    []float64 `json:"step,omitempty"`
	Line    int       `json:"line"`
}

// IncludeDefinition is a shared source fragment pulled in by #include.
// Identity is the file path: every buffer including the same file refers to
// the same definition.
type IncludeDefinition struct {
	Name      string  `json:"name"`
	File      string  `json:"file"`
	Code      string  `json:"code"`
	LineCount int     `json:"lineCount"`
	LineMap   LineMap `json:"lineMap"`
}

// Dependent records a buffer reading a self-feedback buffer on a channel
type Dependent struct {
	Index   int `json:"index"`
	Channel int `json:"channel"`
}

// BufferDefinition is one compilable render pass derived from one file
type BufferDefinition struct {
	Name           string              `json:"name"`
	File           string              `json:"file"`
	Code           string              `json:"code"`
	TextureInputs  []TextureInput      `json:"textureInputs"`
	AudioInputs    []AudioInput        `json:"audioInputs"`
	CustomUniforms []UniformDefinition `json:"customUniforms"`
	Includes       []string            `json:"includes"`

	UsesSelf    bool        `json:"usesSelf"`
	SelfChannel int         `json:"selfChannel"`
	Dependents  []Dependent `json:"dependents"`

	LineOffset    int     `json:"lineOffset"`
	PreambleLines int     `json:"preambleLines"`
	LineMap       LineMap `json:"lineMap"`

	UsesKeyboard            bool `json:"usesKeyboard"`
	UsesFirstPersonControls bool `json:"usesFirstPersonControls"`
	UsesStrictCompatibility bool `json:"usesStrictCompatibility"`
}

// TextureInput returns the texture bound to a channel, if any
func (b *BufferDefinition) TextureInput(channel int) *TextureInput {
	for i := range b.TextureInputs {
		if b.TextureInputs[i].Channel == channel {
			return &b.TextureInputs[i]
		}
	}
	return nil
}

// HasChannel reports whether a texture or audio input is bound to a channel
func (b *BufferDefinition) HasChannel(channel int) bool {
	if b.TextureInput(channel) != nil {
		return true
	}
	for _, a := range b.AudioInputs {
		if a.Channel == channel {
			return true
		}
	}
	return false
}

// TranslateLine maps a line of the compiled shader (preamble included) back
// to the authored source it came from.
func (b *BufferDefinition) TranslateLine(compiledLine int) (SourceID, int, bool) {
	return b.LineMap.Translate(compiledLine - b.PreambleLines)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func joinNames[K comparable](names map[K]string) string {
	list := make([]string, 0, len(names))
	for _, n := range names {
		list = append(list, n)
	}
	sort.Strings(list)
	return strings.Join(list, ", ")
}
