package parser

import (
	"github.com/stevensona/shader-toy-sub000/pkg/diagnostics"
	"github.com/stevensona/shader-toy-sub000/pkg/shader"
)

// ObjectType represents the kind of directive the parser recognized
type ObjectType int

const (
	ObjectTexture ObjectType = iota
	ObjectTextureSetting
	ObjectInclude
	ObjectUniform
	ObjectKeyboard
	ObjectFirstPersonControls
	ObjectStrictCompatibility
	ObjectError
)

func (t ObjectType) String() string {
	switch t {
	case ObjectTexture:
		return "texture"
	case ObjectTextureSetting:
		return "texture-setting"
	case ObjectInclude:
		return "include"
	case ObjectUniform:
		return "uniform"
	case ObjectKeyboard:
		return "keyboard"
	case ObjectFirstPersonControls:
		return "first-person-controls"
	case ObjectStrictCompatibility:
		return "strict-compatibility"
	case ObjectError:
		return "error"
	default:
		return "unknown"
	}
}

// Object is one recognized directive
type Object interface {
	Type() ObjectType
	// Line is the directive's line in the text as currently mutated
	Line() int
	// OriginalLine is the directive's line in the file as authored
	OriginalLine() int
}

// SourceRange is the half-open byte range a directive occupied
type SourceRange struct {
	Begin int
	End   int
}

type position struct {
	line         int
	originalLine int
}

func (p position) Line() int         { return p.line }
func (p position) OriginalLine() int { return p.originalLine }

// TextureObject is #iChannelN "<uri>"
type TextureObject struct {
	position
	Index int
	Path  string
	Kind  shader.TextureKind // TextureLocal, TextureRemote or TextureSelf
}

func (*TextureObject) Type() ObjectType { return ObjectTexture }

// Setting names the sampler property a TextureSettingObject changes
type Setting int

const (
	SettingMagFilter Setting = iota
	SettingMinFilter
	SettingWrapMode
	SettingType
)

var settingNames = map[string]Setting{
	"MagFilter": SettingMagFilter,
	"MinFilter": SettingMinFilter,
	"WrapMode":  SettingWrapMode,
	"Type":      SettingType,
}

func (s Setting) String() string {
	for name, setting := range settingNames {
		if setting == s {
			return name
		}
	}
	return "Unknown"
}

// TextureSettingObject is #iChannelN::<Setting> <value>
type TextureSettingObject struct {
	position
	Index   int
	Setting Setting
	Value   string
}

func (*TextureSettingObject) Type() ObjectType { return ObjectTextureSetting }

// IncludeObject is #include "<path>"
type IncludeObject struct {
	position
	Path string
}

func (*IncludeObject) Type() ObjectType { return ObjectInclude }

// Issue is a non-fatal remark attached to a directive
type Issue struct {
	Severity diagnostics.Severity
	Message  string
}

// UniformObject is #iUniform <type> <name> = <default> [in { <min>, <max> }] [step <step>]
// with every vector already fitted to the type's component count.
type UniformObject struct {
	position
	Name     string
	TypeName string
	Default  []float64
	Min      []float64
	Max      []float64
	Step     []float64
	Issues   []Issue
}

func (*UniformObject) Type() ObjectType { return ObjectUniform }

// Definition converts the object into the resolved uniform description
func (u *UniformObject) Definition() shader.UniformDefinition {
	return shader.UniformDefinition{
		Name:    u.Name,
		Type:    u.TypeName,
		Default: u.Default,
		Min:     u.Min,
		Max:     u.Max,
		Step:    u.Step,
		Line:    u.originalLine,
	}
}

// KeyboardObject is #iKeyboard
type KeyboardObject struct{ position }

func (*KeyboardObject) Type() ObjectType { return ObjectKeyboard }

// FirstPersonControlsObject is #iFirstPersonControls
type FirstPersonControlsObject struct{ position }

func (*FirstPersonControlsObject) Type() ObjectType { return ObjectFirstPersonControls }

// StrictCompatibilityObject is #StrictCompatibility
type StrictCompatibilityObject struct{ position }

func (*StrictCompatibilityObject) Type() ObjectType { return ObjectStrictCompatibility }

// ErrorObject is a directive that could not be parsed
type ErrorObject struct {
	position
	Message string
}

func (*ErrorObject) Type() ObjectType { return ObjectError }
