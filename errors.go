package saber

import (
	"errors"
	"fmt"
	"strings"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Typed errors below wrap or match these values; compare with errors.Is.

var (
	// ErrConfiguration is matched by every binding configuration error, both
	// at registration time and at resolution time.
	ErrConfiguration = errors.New("injector configuration error")

	// Binding errors.
	ErrBindingNotFound  = errors.New("binding not found")
	ErrDuplicateBinding = errors.New("binding already registered")
	ErrInjectorSealed   = errors.New("injector has finished configuring")

	// Argument errors.
	ErrProviderNil        = errors.New("provider cannot be nil")
	ErrInterceptorNil     = errors.New("interceptor cannot be nil")
	ErrKeyZero            = errors.New("key cannot be zero")
	ErrTypeNil            = errors.New("type cannot be nil")
	ErrTypeTagEmpty       = errors.New("type tag cannot be empty")
	ErrQualifierNameEmpty = errors.New("qualifier name cannot be empty")
	ErrTargetNil          = errors.New("injection target cannot be nil")
)

var (
	_ error = DuplicateBindingError{}
	_ error = BindingNotFoundError{}
	_ error = ConfigureError{}
	_ error = TypeMismatchError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// DuplicateBindingError indicates a key was registered twice in the same injector.
type DuplicateBindingError struct {
	Key      Key
	Injector string
}

func (e DuplicateBindingError) Error() string {
	return fmt.Sprintf("provider for %s already registered in %s", e.Key, e.Injector)
}

func (e DuplicateBindingError) Is(target error) bool {
	return target == ErrDuplicateBinding || target == ErrConfiguration
}

// BindingNotFoundError indicates no injector in the chain holds the requested key.
//
// Every injector that delegated the lookup to its parent adds one error to the
// chain, so walking Unwrap from the outermost error visits the injectors from
// the requesting one up to the root.
type BindingNotFoundError struct {
	Key      Key
	Injector string
	Cause    error
}

func (e BindingNotFoundError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("provider for %s not found in %s", e.Key, e.Injector))
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e BindingNotFoundError) Unwrap() error {
	return e.Cause
}

func (e BindingNotFoundError) Is(target error) bool {
	return target == ErrBindingNotFound || target == ErrConfiguration
}

// ConfigureError wraps a failure returned by a Configurator.
type ConfigureError struct {
	Injector string
	Cause    error
}

func (e ConfigureError) Error() string {
	return fmt.Sprintf("failed to configure %s: %v", e.Injector, e.Cause)
}

func (e ConfigureError) Unwrap() error {
	return e.Cause
}

// TypeMismatchError indicates a provider produced a value that is not of the
// type requested by a typed helper such as Get or Instance.
type TypeMismatchError struct {
	Key      Key
	Expected Type
	Actual   string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("provider for %s: expected %s, got %s", e.Key, e.Expected, e.Actual)
}

// IsNotFound reports whether err is, or wraps, a BindingNotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBindingNotFound)
}

// IsDuplicate reports whether err is, or wraps, a DuplicateBindingError.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateBinding)
}

// IsConfigurationError reports whether err belongs to the configuration class
// of errors (duplicate or missing bindings).
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
