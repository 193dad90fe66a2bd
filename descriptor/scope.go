package descriptor

import (
	"encoding/json"
	"fmt"
)

// Scope specifies how often a binding's recipe runs.
type Scope int

const (
	// Unscoped bindings run their recipe for every instance requested.
	Unscoped Scope = iota

	// Singleton bindings run their recipe once per binding and memoize the
	// instance in the injector the binding is registered into.
	Singleton
)

// String returns the string representation of the Scope.
func (s Scope) String() string {
	switch s {
	case Unscoped:
		return "unscoped"
	case Singleton:
		return "singleton"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// IsValid checks if the scope is valid.
func (s Scope) IsValid() bool {
	return s >= Unscoped && s <= Singleton
}

// MarshalText implements encoding.TextMarshaler.
func (s Scope) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, ScopeError{Value: int(s)}
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scope) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "unscoped", "Unscoped":
		*s = Unscoped
	case "singleton", "Singleton":
		*s = Singleton
	default:
		return ScopeError{Value: string(text)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Scope) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scope) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// Converter specifies how a dependency is handed to a recipe.
type Converter int

const (
	// Instance passes the resolved instance.
	Instance Converter = iota

	// ProviderOf passes a saber.Factory; every Get produces an instance.
	ProviderOf

	// LazyOf passes a *saber.Lazy; the first Get produces the instance.
	LazyOf
)

// String returns the string representation of the Converter.
func (c Converter) String() string {
	switch c {
	case Instance:
		return "instance"
	case ProviderOf:
		return "provider"
	case LazyOf:
		return "lazy"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// IsValid checks if the converter is valid.
func (c Converter) IsValid() bool {
	return c >= Instance && c <= LazyOf
}

// BreaksCycles reports whether a dependency edge with this converter is
// resolved after construction, so that it cannot take part in a
// construction cycle.
func (c Converter) BreaksCycles() bool {
	return c == ProviderOf || c == LazyOf
}

// MarshalText implements encoding.TextMarshaler.
func (c Converter) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, ConverterError{Value: int(c)}
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Converter) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "instance":
		*c = Instance
	case "provider":
		*c = ProviderOf
	case "lazy":
		*c = LazyOf
	default:
		return ConverterError{Value: string(text)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Converter) MarshalJSON() ([]byte, error) {
	text, err := c.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Converter) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return c.UnmarshalText([]byte(str))
}
