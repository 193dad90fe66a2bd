package analysis

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/junioryono/saber/descriptor"
)

// Rule sentinels. Every StaticValidationError unwraps to one of them.
var (
	ErrUnclassified     = errors.New("cannot classify declaration")
	ErrInvalidName      = errors.New("invalid name")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrUnknownReference = errors.New("unknown reference")
	ErrHierarchyCycle   = errors.New("component hierarchy cycle")
	ErrImportCycle      = errors.New("module import cycle")
	ErrInvalidKey       = errors.New("invalid key")
	ErrInvalidBinding   = errors.New("invalid binding")
	ErrScopeViolation   = errors.New("module not allowed in component")
	ErrRepeatedImport   = errors.New("module installed more than once")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrUnsatisfied      = errors.New("unsatisfied dependency")
	ErrDependencyCycle  = errors.New("dependency cycle")
	ErrInvalidTarget    = errors.New("invalid injection target")
	ErrInvalidContract  = errors.New("invalid contract")
)

// StaticValidationError reports one problem found in the declarations.
type StaticValidationError struct {
	Position descriptor.Position
	Key      string
	Reason   string
	Err      error
}

func (e *StaticValidationError) Error() string {
	var b strings.Builder
	if !e.Position.IsZero() {
		b.WriteString(e.Position.String())
		b.WriteString(": ")
	}
	if e.Key != "" {
		b.WriteString(e.Key)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	return b.String()
}

func (e *StaticValidationError) Unwrap() error {
	return e.Err
}

// ErrorList collects every problem found in one analysis run.
type ErrorList []*StaticValidationError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(l))
	for _, e := range l {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Err returns nil for an empty list.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l *ErrorList) add(pos descriptor.Position, key string, err error, format string, args ...any) {
	*l = append(*l, &StaticValidationError{
		Position: pos,
		Key:      key,
		Reason:   fmt.Sprintf(format, args...),
		Err:      err,
	})
}

// sort orders errors by position and drops repeats, which happen when one
// module is installed into several components.
func (l *ErrorList) sort() {
	slices.SortStableFunc(*l, func(a, b *StaticValidationError) int {
		return cmp.Or(
			cmp.Compare(a.Position.File, b.Position.File),
			cmp.Compare(a.Position.Line, b.Position.Line),
			cmp.Compare(a.Position.Column, b.Position.Column),
			cmp.Compare(a.Error(), b.Error()),
		)
	})
	*l = slices.CompactFunc(*l, func(a, b *StaticValidationError) bool {
		return a.Error() == b.Error()
	})
}
