package saber

import (
	"go.uber.org/zap"
)

// Engine is the root object of an injector graph.
//
// It carries the configuration shared by every injector it creates: the
// provider interceptor chain and the logger. An Engine is immutable once built
// and safe for concurrent use. There is no process-wide default engine; create
// one where the application is wired.
//
// Example:
//
//	engine, err := saber.NewEngine(
//	    saber.WithInterceptors(interceptors.Tracing(tracer)),
//	    saber.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	root, err := engine.CreateInjector(di.AppComponent{})
type Engine struct {
	interceptors []ProviderInterceptor
	logger       *zap.Logger
}

// Option configures an Engine.
type Option interface {
	apply(*engineOptions)
}

type engineOptions struct {
	interceptors []ProviderInterceptor
	logger       *zap.Logger
}

type optionFunc func(*engineOptions)

func (f optionFunc) apply(o *engineOptions) {
	f(o)
}

// WithInterceptors appends provider interceptors to the chain.
//
// Interceptors run in the reverse order of registration: the last one added
// is asked first. Every resolution through an engine with at least one
// interceptor allocates a chain cursor, even when no interceptor cares about
// the requested key.
func WithInterceptors(interceptors ...ProviderInterceptor) Option {
	return optionFunc(func(o *engineOptions) {
		o.interceptors = append(o.interceptors, interceptors...)
	})
}

// WithLogger sets the logger used for injector lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(o *engineOptions) {
		o.logger = logger
	})
}

// NewEngine builds an Engine from options.
func NewEngine(opts ...Option) (*Engine, error) {
	o := &engineOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	e := &Engine{logger: o.logger}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}

	if len(o.interceptors) > 0 {
		e.interceptors = make([]ProviderInterceptor, len(o.interceptors))
		for i, interceptor := range o.interceptors {
			if interceptor == nil {
				return nil, ErrInterceptorNil
			}
			e.interceptors[i] = interceptor
		}
	}

	return e, nil
}

// CreateInjector builds a root injector and runs configurator on it.
func (e *Engine) CreateInjector(configurator Configurator) (*Injector, error) {
	return newInjector(e, nil, configurator)
}

// Interceptors returns the number of configured interceptors.
func (e *Engine) Interceptors() int {
	return len(e.interceptors)
}

// CreateRootInjector is shorthand for NewEngine followed by CreateInjector.
func CreateRootInjector(configurator Configurator, opts ...Option) (*Injector, error) {
	e, err := NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	return e.CreateInjector(configurator)
}
