package themes

import "fmt"

// Source tells which key space a theme key belongs to.
type Source int

const (
	SourceBuiltin Source = iota + 1
	SourceCustom
)

// String returns "builtin" or "custom".
func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "builtin"
	case SourceCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseSource parses "builtin" or "custom".
func ParseSource(s string) (Source, error) {
	switch s {
	case "builtin":
		return SourceBuiltin, nil
	case "custom":
		return SourceCustom, nil
	default:
		return 0, fmt.Errorf("unknown theme source %q (want builtin or custom)", s)
	}
}

// Ref identifies a theme unambiguously: built-in and custom themes live in
// separate key spaces and may share keys.
type Ref struct {
	Source Source
	Key    string
}

// Builtin references a built-in theme.
func Builtin(key string) Ref {
	return Ref{Source: SourceBuiltin, Key: key}
}

// Custom references a custom theme.
func Custom(key string) Ref {
	return Ref{Source: SourceCustom, Key: key}
}

// ParseRef builds a Ref from a source name and key.
func ParseRef(source, key string) (Ref, error) {
	s, err := ParseSource(source)
	if err != nil {
		return Ref{}, err
	}

	return Ref{Source: s, Key: key}, nil
}

// String returns "<source>:<key>".
func (r Ref) String() string {
	return r.Source.String() + ":" + r.Key
}
