package saber

import (
	"fmt"
	"sync"
)

// Instance resolves key from inj and asserts the instance to T.
//
// Example:
//
//	cfg, err := saber.Instance[*Config](inj, saber.KeyOf[*Config]())
func Instance[T any](inj *Injector, key Key) (T, error) {
	var zero T

	v, err := inj.GetInstance(key)
	if err != nil {
		return zero, err
	}

	return assertInstance[T](key, v)
}

// Get resolves the unqualified binding of T.
//
// Example:
//
//	db, err := saber.Get[*sql.DB](inj)
func Get[T any](inj *Injector) (T, error) {
	return Instance[T](inj, KeyOf[T]())
}

// GetQualified resolves the binding of T qualified by q.
func GetQualified[T any](inj *Injector, q Qualifier) (T, error) {
	return Instance[T](inj, QualifiedKeyOf[T](q))
}

// GetNamed resolves the binding of T qualified by Named(name).
func GetNamed[T any](inj *Injector, name string) (T, error) {
	return Instance[T](inj, NamedKeyOf[T](name))
}

// MustGet is like Get but panics if the binding cannot be resolved.
func MustGet[T any](inj *Injector) T {
	v, err := Get[T](inj)
	if err != nil {
		panic(err)
	}
	return v
}

func assertInstance[T any](key Key, v any) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}

	var zero T
	// A nil instance is a valid value for interface and pointer types.
	if v == nil {
		return zero, nil
	}

	return zero, TypeMismatchError{Key: key, Expected: TypeOf[T](), Actual: fmt.Sprintf("%T", v)}
}

// Factory is a typed view over a Provider. Each Get call asks the provider
// for an instance.
type Factory[T any] struct {
	key      Key
	provider Provider
}

// FactoryOf resolves key from inj and returns a typed factory for it.
// Resolution happens once; instantiation happens on every Get.
func FactoryOf[T any](inj *Injector, key Key) (Factory[T], error) {
	p, err := inj.GetProvider(key)
	if err != nil {
		return Factory[T]{}, err
	}
	return Factory[T]{key: key, provider: p}, nil
}

// Get asks the underlying provider for an instance.
func (f Factory[T]) Get() (T, error) {
	v, err := f.provider.Provide()
	if err != nil {
		var zero T
		return zero, err
	}
	return assertInstance[T](f.key, v)
}

// Provider returns the underlying provider.
func (f Factory[T]) Provider() Provider {
	return f.provider
}

// Lazy defers instantiation until the first Get and then keeps the instance.
// Unlike Singleton, the memoized instance belongs to the Lazy value, not to
// the binding: two Lazy values over an unscoped binding hold two instances.
type Lazy[T any] struct {
	factory  Factory[T]
	mu       sync.Mutex
	done     bool
	instance T
}

// LazyOf resolves key from inj and returns a lazy handle for it.
func LazyOf[T any](inj *Injector, key Key) (*Lazy[T], error) {
	f, err := FactoryOf[T](inj, key)
	if err != nil {
		return nil, err
	}
	return &Lazy[T]{factory: f}, nil
}

// Get returns the instance, creating it on first use.
func (l *Lazy[T]) Get() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.instance, nil
	}

	v, err := l.factory.Get()
	if err != nil {
		return v, err
	}

	l.instance = v
	l.done = true
	return v, nil
}

// BindOption configures Provide and ProvideValue.
type BindOption interface {
	applyBindOption(*bindOptions)
}

type bindOptions struct {
	qualifier Qualifier
	singleton bool
}

type bindOptionFunc func(*bindOptions)

func (f bindOptionFunc) applyBindOption(o *bindOptions) {
	f(o)
}

// WithQualifier binds under the key qualified by q.
func WithQualifier(q Qualifier) BindOption {
	return bindOptionFunc(func(o *bindOptions) {
		o.qualifier = q
	})
}

// WithName binds under the key qualified by Named(name).
func WithName(name string) BindOption {
	return WithQualifier(Named(name))
}

// AsSingleton memoizes the first instance produced by the binding.
func AsSingleton() BindOption {
	return bindOptionFunc(func(o *bindOptions) {
		o.singleton = true
	})
}

// Provide binds T in inj to a function that builds it. The function receives
// the injector it was registered into so it can resolve its own dependencies.
//
// Example:
//
//	err := saber.Provide(inj, func(inj *saber.Injector) (*Service, error) {
//	    db, err := saber.Get[*sql.DB](inj)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewService(db), nil
//	}, saber.AsSingleton())
func Provide[T any](inj *Injector, fn func(*Injector) (T, error), opts ...BindOption) error {
	if fn == nil {
		return ErrProviderNil
	}

	o := &bindOptions{}
	for _, opt := range opts {
		opt.applyBindOption(o)
	}

	var p Provider = ProviderFunc(func() (any, error) {
		return fn(inj)
	})
	if o.singleton {
		p = Singleton(p)
	}

	return inj.Register(QualifiedKeyOf[T](o.qualifier), p)
}

// ProvideValue binds T in inj to an already built value.
func ProvideValue[T any](inj *Injector, value T, opts ...BindOption) error {
	o := &bindOptions{}
	for _, opt := range opts {
		opt.applyBindOption(o)
	}

	return inj.Register(QualifiedKeyOf[T](o.qualifier), ValueProvider(value))
}
