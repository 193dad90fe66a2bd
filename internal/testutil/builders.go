package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junioryono/saber"
)

// InjectorBuilder provides a fluent interface for building test injectors.
type InjectorBuilder struct {
	t        testing.TB
	bindings []func(*saber.Injector) error
	options  []saber.Option
}

// NewInjectorBuilder creates a new InjectorBuilder
func NewInjectorBuilder(t testing.TB) *InjectorBuilder {
	return &InjectorBuilder{t: t}
}

// WithProvider binds key to provider.
func (b *InjectorBuilder) WithProvider(key saber.Key, provider saber.Provider) *InjectorBuilder {
	b.bindings = append(b.bindings, func(inj *saber.Injector) error {
		return inj.Register(key, provider)
	})
	return b
}

// WithValue binds key to a fixed value.
func (b *InjectorBuilder) WithValue(key saber.Key, value any) *InjectorBuilder {
	return b.WithProvider(key, saber.ValueProvider(value))
}

// WithConfigurator runs c after the bindings added so far.
func (b *InjectorBuilder) WithConfigurator(c saber.Configurator) *InjectorBuilder {
	b.bindings = append(b.bindings, c.Configure)
	return b
}

// WithInterceptors installs interceptors on the engine of a built root.
func (b *InjectorBuilder) WithInterceptors(interceptors ...saber.ProviderInterceptor) *InjectorBuilder {
	b.options = append(b.options, saber.WithInterceptors(interceptors...))
	return b
}

// WithLogger sets the engine logger of a built root.
func (b *InjectorBuilder) WithLogger(logger *zap.Logger) *InjectorBuilder {
	b.options = append(b.options, saber.WithLogger(logger))
	return b
}

func (b *InjectorBuilder) configurator() saber.Configurator {
	bindings := append([]func(*saber.Injector) error(nil), b.bindings...)
	return saber.ConfiguratorFunc(func(inj *saber.Injector) error {
		for _, bind := range bindings {
			if err := bind(inj); err != nil {
				return err
			}
		}
		return nil
	})
}

// Build creates a root injector and fails the test on error.
func (b *InjectorBuilder) Build() *saber.Injector {
	b.t.Helper()

	root, err := saber.CreateRootInjector(b.configurator(), b.options...)
	require.NoError(b.t, err, "failed to create root injector")
	return root
}

// BuildChild creates a child of parent and fails the test on error. Engine
// options are ignored: children share the engine of their parent.
func (b *InjectorBuilder) BuildChild(parent *saber.Injector) *saber.Injector {
	b.t.Helper()

	child, err := parent.CreateChild(b.configurator())
	require.NoError(b.t, err, "failed to create child injector")
	return child
}
