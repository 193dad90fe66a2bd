package saber

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// Shared Test Types
// ============================================================================

// TService is a basic service for testing.
type TService struct {
	ID string
}

func (s *TService) GetID() string { return s.ID }

// TInterface is a basic interface for testing.
type TInterface interface {
	GetID() string
}

// TBox is a generic type used to check type argument identity.
type TBox[T any] struct {
	Value T
}

// TTarget receives its dependencies after construction.
type TTarget struct {
	Service  *TService
	Greeting string
}

// TSelfInjecting implements MembersInjector.
type TSelfInjecting struct {
	Injected *Injector
}

func (s *TSelfInjecting) InjectMembers(inj *Injector) error {
	s.Injected = inj
	return nil
}

// counter counts recipe invocations.
type counter struct {
	calls atomic.Int64
}

func (c *counter) provider() Provider {
	return ProviderFunc(func() (any, error) {
		c.calls.Add(1)
		return &TService{ID: "svc"}, nil
	})
}

// ============================================================================
// Helpers
// ============================================================================

func configure(fns ...func(inj *Injector) error) Configurator {
	return ConfiguratorFunc(func(inj *Injector) error {
		for _, fn := range fns {
			if err := fn(inj); err != nil {
				return err
			}
		}
		return nil
	})
}

func bind(key Key, p Provider) func(inj *Injector) error {
	return func(inj *Injector) error {
		return inj.Register(key, p)
	}
}

func bindValue(key Key, v any) func(inj *Injector) error {
	return bind(key, ValueProvider(v))
}

func newTestRoot(t *testing.T, cfg Configurator, opts ...Option) *Injector {
	t.Helper()
	root, err := CreateRootInjector(cfg, opts...)
	require.NoError(t, err)
	require.NotNil(t, root)
	return root
}

func newTestChild(t *testing.T, parent *Injector, cfg Configurator) *Injector {
	t.Helper()
	child, err := parent.CreateChild(cfg)
	require.NoError(t, err)
	require.NotNil(t, child)
	return child
}
