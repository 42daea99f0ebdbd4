// Transform system shared by every node kind
package transforms

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SaanidhyaM/node-based-image-processor/internal/imaging"
)

// ErrUnknownKind is returned for node kinds that have no registered transform.
var ErrUnknownKind = errors.New("unknown node kind")

// Transform maps one input buffer plus parameters to a new buffer.
//
// Apply never modifies input and always allocates its result. It returns
// imaging.ErrNoInput when input is nil.
type Transform interface {
	Kind() Kind
	Parameters() []ParameterInfo
	Apply(input *imaging.Buffer, params Params) (*imaging.Buffer, error)
}

// Resetter is implemented by transforms that cache state per input image.
type Resetter interface {
	Reset()
}

// ParamType describes how a parameter value is interpreted.
type ParamType int

const (
	ParamInt ParamType = iota
	ParamBool
	ParamEnum
)

func (t ParamType) String() string {
	switch t {
	case ParamInt:
		return "int"
	case ParamBool:
		return "bool"
	case ParamEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ParameterInfo declares one named parameter for UI generation and clamping.
// Enum values are indices into Options, bool values are 0 or 1.
type ParameterInfo struct {
	Name        string
	Type        ParamType
	Min         int
	Max         int
	Default     int
	Options     []string
	Odd         bool // value must be odd; even values move up by one
	Description string
}

// Clamp coerces v into the declared range.
func (p ParameterInfo) Clamp(v int) int {
	switch p.Type {
	case ParamBool:
		if v != 0 {
			return 1
		}
		return 0
	case ParamEnum:
		return clampInt(v, 0, len(p.Options)-1)
	}

	v = clampInt(v, p.Min, p.Max)
	if p.Odd && v%2 == 0 {
		if v+1 <= p.Max {
			v++
		} else {
			v--
		}
	}
	return v
}

// Parse reads a textual value: integers for every type, option labels for
// enums and true/false for booleans. The result is clamped.
func (p ParameterInfo) Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch p.Type {
	case ParamBool:
		if b, err := strconv.ParseBool(s); err == nil {
			if b {
				return 1, nil
			}
			return 0, nil
		}
	case ParamEnum:
		for i, opt := range p.Options {
			if strings.EqualFold(opt, s) {
				return i, nil
			}
		}
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", imaging.ErrInvalidParameter, p.Name, s)
	}
	return p.Clamp(v), nil
}

// Format renders v the way Parse accepts it.
func (p ParameterInfo) Format(v int) string {
	switch p.Type {
	case ParamBool:
		return strconv.FormatBool(v != 0)
	case ParamEnum:
		if v >= 0 && v < len(p.Options) {
			return p.Options[v]
		}
	}
	return strconv.Itoa(v)
}

// Params holds current parameter values by name.
type Params map[string]int

// DefaultParams returns the declared defaults.
func DefaultParams(infos []ParameterInfo) Params {
	params := make(Params, len(infos))
	for _, info := range infos {
		params[info.Name] = info.Default
	}
	return params
}

// Resolve returns a copy of params with missing values defaulted and every
// value clamped to its declared range. Unknown names are dropped.
func Resolve(infos []ParameterInfo, params Params) Params {
	out := make(Params, len(infos))
	for _, info := range infos {
		v, ok := params[info.Name]
		if !ok {
			v = info.Default
		}
		out[info.Name] = info.Clamp(v)
	}
	return out
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Lookup finds a parameter declaration by name.
func Lookup(infos []ParameterInfo, name string) (ParameterInfo, bool) {
	for _, info := range infos {
		if info.Name == name {
			return info, true
		}
	}
	return ParameterInfo{}, false
}

var registry = make(map[Kind]func() Transform)

// Register installs the constructor for a kind.
func Register(kind Kind, constructor func() Transform) {
	registry[kind] = constructor
}

// New builds a fresh transform for kind.
func New(kind Kind) (Transform, error) {
	constructor, exists := registry[kind]
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	return constructor(), nil
}

func init() {
	Register(KindGrayscale, func() Transform { return NewGrayscale() })
	Register(KindBrightnessContrast, func() Transform { return NewBrightnessContrast() })
	Register(KindChannelSplitter, func() Transform { return NewChannelSplitter() })
	Register(KindBlur, func() Transform { return NewBlur() })
	Register(KindEdgeDetection, func() Transform { return NewEdgeDetection() })
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
