package descriptor

import (
	"errors"
	"fmt"
)

var (
	ErrTypeMissing          = errors.New("key has no type")
	ErrQualifierConflict    = errors.New("key cannot have both a name and a qualifier")
	ErrQualifierNameMissing = errors.New("qualifier has no name")
	ErrMemberNameMissing    = errors.New("qualifier member has no name")
	ErrUnsupportedVersion   = errors.New("unsupported manifest version")
	ErrUnknownFormat        = errors.New("unknown manifest format")
)

var (
	_ error = TypeSyntaxError{}
	_ error = ScopeError{}
	_ error = ConverterError{}
)

// TypeSyntaxError reports a malformed type expression.
type TypeSyntaxError struct {
	Input  string
	Offset int
	Reason string
}

func (e TypeSyntaxError) Error() string {
	return fmt.Sprintf("invalid type %q at offset %d: %s", e.Input, e.Offset, e.Reason)
}

// ScopeError indicates an invalid binding scope value.
type ScopeError struct {
	Value any
}

func (e ScopeError) Error() string {
	return fmt.Sprintf("invalid binding scope: %v", e.Value)
}

// ConverterError indicates an invalid dependency converter value.
type ConverterError struct {
	Value any
}

func (e ConverterError) Error() string {
	return fmt.Sprintf("invalid dependency converter: %v", e.Value)
}
