package saber

import (
	"fmt"
	"reflect"
)

// MembersInjector is implemented by injection targets that know how to
// receive their dependencies after construction.
type MembersInjector interface {
	InjectMembers(inj *Injector) error
}

// MembersInjectorFunc injects the members of a target of type T.
type MembersInjectorFunc[T any] func(inj *Injector, target T) error

// membersInjectorTag is the tag of the type under which members injectors are bound.
const membersInjectorTag = "github.com/junioryono/saber.MembersInjector"

// MembersInjectorKey returns the key a members injector for t is bound under.
func MembersInjectorKey(t Type) Key {
	return KeyFor(NewType(membersInjectorTag, t))
}

// BindMembersInjector registers fn as the members injector for targets of type T.
// It is meant to be called from a Configurator, typically generated code.
func BindMembersInjector[T any](inj *Injector, fn MembersInjectorFunc[T]) error {
	if fn == nil {
		return ErrProviderNil
	}

	injectFn := func(caller *Injector, target any) error {
		t, ok := target.(T)
		if !ok {
			return TypeMismatchError{
				Key:      MembersInjectorKey(TypeOf[T]()),
				Expected: TypeOf[T](),
				Actual:   fmt.Sprintf("%T", target),
			}
		}
		return fn(caller, t)
	}

	return inj.Register(MembersInjectorKey(TypeOf[T]()), ValueProvider(injectFn))
}

// InjectMembers injects the dependencies of target.
//
// Targets implementing MembersInjector inject themselves. Otherwise the
// members injector bound for the target's type is looked up through the
// hierarchy and invoked with inj, so dependencies resolve from inj's point of
// view. Targets with neither are left untouched.
func (inj *Injector) InjectMembers(target any) error {
	if target == nil {
		return ErrTargetNil
	}

	if m, ok := target.(MembersInjector); ok {
		return m.InjectMembers(inj)
	}

	key := MembersInjectorKey(TypeFor(reflect.TypeOf(target)))
	p, err := inj.GetProvider(key)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	v, err := p.Provide()
	if err != nil {
		return err
	}

	injectFn, ok := v.(func(*Injector, any) error)
	if !ok {
		return TypeMismatchError{Key: key, Expected: key.Type(), Actual: fmt.Sprintf("%T", v)}
	}
	return injectFn(inj, target)
}
