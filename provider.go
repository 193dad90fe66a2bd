package saber

import (
	"sync"
	"sync/atomic"
)

// Provider produces instances for a binding.
//
// Provide may do arbitrary work, but must not change the injector graph.
// Unscoped providers return a new instance on every call; providers wrapped
// with Singleton return the same instance after the first successful call.
type Provider interface {
	Provide() (any, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() (any, error)

// Provide calls f.
func (f ProviderFunc) Provide() (any, error) {
	return f()
}

// valueProvider always returns the same, already built value.
type valueProvider struct {
	value any
}

func (p valueProvider) Provide() (any, error) {
	return p.value, nil
}

// ValueProvider returns a provider that always yields v.
func ValueProvider(v any) Provider {
	return valueProvider{value: v}
}

// singletonProvider memoizes the first instance produced by provider.
type singletonProvider struct {
	provider Provider
	done     atomic.Bool
	mu       sync.Mutex
	instance any
}

// Singleton wraps p so that the underlying provider runs at most once.
//
// The first caller builds the instance while concurrent callers wait for it;
// once published every caller observes the same instance without locking.
// A failed construction is not memoized and the next call tries again.
// Wrapping a provider that is already a singleton returns it unchanged.
func Singleton(p Provider) Provider {
	if p == nil {
		panic(ErrProviderNil)
	}
	if s, ok := p.(*singletonProvider); ok {
		return s
	}
	if v, ok := p.(valueProvider); ok {
		return v
	}
	return &singletonProvider{provider: p}
}

func (s *singletonProvider) Provide() (any, error) {
	if s.done.Load() {
		return s.instance, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done.Load() {
		return s.instance, nil
	}

	instance, err := s.provider.Provide()
	if err != nil {
		return nil, err
	}

	s.instance = instance
	s.done.Store(true)
	return instance, nil
}

// aliasProvider resolves another key from the injector it is bound to.
type aliasProvider struct {
	injector *Injector
	target   Key
}

// Alias returns a provider that resolves target from inj each time it is
// asked for an instance. It is used to bind an interface key to the key of an
// implementation.
func Alias(inj *Injector, target Key) Provider {
	if target.IsZero() {
		panic(ErrKeyZero)
	}
	return &aliasProvider{injector: inj, target: target}
}

func (a *aliasProvider) Provide() (any, error) {
	return a.injector.GetInstance(a.target)
}
