package dungeon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cast"
)

// ErrInvalidOption is wrapped by every validation and coercion failure.
var ErrInvalidOption = errors.New("invalid option")

// Kind is the value type of a configuration option.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindColor
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindColor:
		return "color"
	default:
		return "unknown"
	}
}

// Option describes one configuration option.
type Option struct {
	Name    string
	Kind    Kind
	Default any
	// Min and Max bound number options when Bounded is set.
	Min, Max float64
	Bounded  bool
}

// Schema is an ordered list of options.
type Schema []Option

// Options is the dungeon configuration schema.
var Options = Schema{
	{Name: "floorColor", Kind: KindColor, Default: "#F2EDDF"},
	{Name: "floorTexture", Kind: KindString, Default: ""},
	{Name: "floorTextureTint", Kind: KindColor, Default: ""},
	{Name: "wallColor", Kind: KindColor, Default: "#000000"},
	{Name: "wallThickness", Kind: KindNumber, Default: 8.0, Min: 0, Max: 100, Bounded: true},
	{Name: "wallTexture", Kind: KindString, Default: ""},
	{Name: "wallTextureTint", Kind: KindColor, Default: ""},
	{Name: "doorColor", Kind: KindColor, Default: "#000000"},
	{Name: "doorFillColor", Kind: KindColor, Default: "#FFFFFF"},
	{Name: "doorFillOpacity", Kind: KindNumber, Default: 1.0, Min: 0, Max: 1, Bounded: true},
	{Name: "doorThickness", Kind: KindNumber, Default: 25.0, Min: 0, Max: 100, Bounded: true},
	{Name: "secretDoorStyle", Kind: KindString, Default: "secret"},
	{Name: "exteriorShadowColor", Kind: KindColor, Default: "#000000"},
	{Name: "exteriorShadowOpacity", Kind: KindNumber, Default: 0.5, Min: 0, Max: 1, Bounded: true},
	{Name: "exteriorShadowThickness", Kind: KindNumber, Default: 20.0, Min: 0, Max: 100, Bounded: true},
	{Name: "interiorShadowColor", Kind: KindColor, Default: "#000000"},
	{Name: "interiorShadowOpacity", Kind: KindNumber, Default: 0.5, Min: 0, Max: 1, Bounded: true},
	{Name: "interiorShadowThickness", Kind: KindNumber, Default: 8.0, Min: 0, Max: 100, Bounded: true},
	{Name: KeySceneBackgroundColor, Kind: KindColor, Default: "#999999"},
	{Name: KeySceneGridAlpha, Kind: KindNumber, Default: 0.2, Min: 0, Max: 1, Bounded: true},
	{Name: KeySceneGridColor, Kind: KindColor, Default: "#000000"},
}

// DefaultConfig returns a fresh configuration holding every schema default.
func DefaultConfig() Config {
	return Options.Defaults()
}

// Coerce parses raw form values with the dungeon schema.
func Coerce(raw map[string]string) (Config, error) {
	return Options.Coerce(raw)
}

// Validate checks cfg against the dungeon schema.
func Validate(cfg Config) error {
	return Options.Validate(cfg)
}

// Defaults returns a configuration holding every option's default.
func (s Schema) Defaults() Config {
	return copyDefaults(s)
}

// Lookup returns the option named name.
func (s Schema) Lookup(name string) (Option, bool) {
	for _, opt := range s {
		if opt.Name == name {
			return opt, true
		}
	}

	return Option{}, false
}

// Coerce converts raw string form values to typed configuration values.
// Unknown keys are kept as strings. All conversion failures are reported
// together.
func (s Schema) Coerce(raw map[string]string) (Config, error) {
	cfg := make(Config, len(raw))

	var errs []error
	for name, value := range raw {
		opt, ok := s.Lookup(name)
		if !ok {
			cfg[name] = value
			continue
		}

		typed, err := opt.coerce(value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cfg[name] = typed
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return cfg, nil
}

func (o Option) coerce(value string) (any, error) {
	value = strings.TrimSpace(value)

	switch o.Kind {
	case KindNumber:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %q is not a number", ErrInvalidOption, o.Name, value)
		}
		return f, nil
	case KindBool:
		if value == "" || value == "on" {
			// Unchecked boxes submit nothing, checked ones "on".
			return value == "on", nil
		}
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %q is not a boolean", ErrInvalidOption, o.Name, value)
		}
		return b, nil
	default:
		return value, nil
	}
}

// Validate checks the options of cfg that the schema knows about. Unknown
// keys are accepted untouched.
func (s Schema) Validate(cfg Config) error {
	var errs []error

	for _, name := range cfg.Keys() {
		opt, ok := s.Lookup(name)
		if !ok {
			continue
		}
		if err := opt.validate(cfg[name]); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (o Option) validate(value any) error {
	switch o.Kind {
	case KindNumber:
		f, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("%w %s: %v is not a number", ErrInvalidOption, o.Name, value)
		}
		if o.Bounded && (f < o.Min || f > o.Max) {
			return fmt.Errorf("%w %s: %v outside [%v, %v]", ErrInvalidOption, o.Name, f, o.Min, o.Max)
		}
	case KindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w %s: %v is not a boolean", ErrInvalidOption, o.Name, value)
		}
	case KindColor:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w %s: %v is not a color string", ErrInvalidOption, o.Name, value)
		}
		if s != "" && !IsColor(s) {
			return fmt.Errorf("%w %s: %q is not a color", ErrInvalidOption, o.Name, s)
		}
	}

	return nil
}

// IsColor reports whether s names a color: a #rrggbb hex value or a W3C
// color name.
func IsColor(s string) bool {
	return tcell.GetColor(strings.ToLower(s)) != tcell.ColorDefault
}

func toFloat(v any) (float64, error) {
	if _, ok := v.(bool); ok {
		return 0, fmt.Errorf("boolean is not a number")
	}

	return cast.ToFloat64E(v)
}

func toString(v any) string {
	return cast.ToString(v)
}
