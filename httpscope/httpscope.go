// Package httpscope opens a request-level child injector for every HTTP
// request.
//
// The middleware works with any router that accepts
// func(http.Handler) http.Handler middleware, such as go-chi or net/http's
// ServeMux wrapped by hand.
//
// Example usage:
//
//	root, _ := saber.CreateRootInjector(di.AppComponent{})
//
//	r := chi.NewRouter()
//	r.Use(httpscope.Middleware(root, httpscope.WithConfigurator(di.RequestComponent{})))
//
//	r.Get("/users/{id}", httpscope.Handle(UserController.GetByID))
package httpscope

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/junioryono/saber"
)

// ErrNoInjector is returned by FromContext when the context carries no
// request injector.
var ErrNoInjector = errors.New("no request injector in context")

type contextKey struct{}

// FromContext returns the request injector stored by Middleware.
func FromContext(ctx context.Context) (*saber.Injector, error) {
	if ctx == nil {
		return nil, ErrNoInjector
	}
	inj, ok := ctx.Value(contextKey{}).(*saber.Injector)
	if !ok || inj == nil {
		return nil, ErrNoInjector
	}
	return inj, nil
}

// WithInjector returns a copy of ctx carrying inj.
func WithInjector(ctx context.Context, inj *saber.Injector) context.Context {
	return context.WithValue(ctx, contextKey{}, inj)
}

// Config holds the configuration for the request middleware.
type Config struct {
	// ErrorHandler is called when the request injector cannot be created.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Configurators run on the request injector after the request bindings
	// are registered, in the order they were added.
	Configurators []saber.Configurator

	// Logger receives request injector failures.
	Logger *zap.Logger
}

// Option configures the request middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for request injector failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithConfigurator adds a configurator for every request injector.
func WithConfigurator(configurator saber.Configurator) Option {
	return func(c *Config) {
		if configurator != nil {
			c.Configurators = append(c.Configurators, configurator)
		}
	}
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func defaultConfig() *Config {
	return &Config{Logger: zap.NewNop()}
}

// requestBindings carries the request Open returns. The request only exists
// once the injector does, so the providers read it on every Provide call.
// Middleware further down the chain that copies the request with
// r.WithContext hands the handler a newer request than the bound one, so
// values it adds must be read from the handler's own *http.Request. chi route
// parameters are visible through either, as chi shares one route context.
type requestBindings struct {
	req *http.Request
}

func (b *requestBindings) Configure(inj *saber.Injector) error {
	if err := inj.Register(saber.KeyOf[*http.Request](), saber.ProviderFunc(func() (any, error) {
		return b.req, nil
	})); err != nil {
		return err
	}
	return inj.Register(saber.KeyOf[context.Context](), saber.ProviderFunc(func() (any, error) {
		return b.req.Context(), nil
	}))
}

// Open creates the request injector for r as a child of parent. The child
// binds *http.Request and context.Context, then runs configurators in order.
// The returned request is a copy of r whose context carries the child, and it
// is the request the bindings resolve to.
//
// Framework adapters use Open to share the request bindings of Middleware.
func Open(parent *saber.Injector, r *http.Request, configurators ...saber.Configurator) (*saber.Injector, *http.Request, error) {
	bindings := &requestBindings{req: r}
	child, err := parent.CreateChild(saber.ConfiguratorFunc(func(inj *saber.Injector) error {
		if err := bindings.Configure(inj); err != nil {
			return err
		}
		for _, c := range configurators {
			if c == nil {
				continue
			}
			if err := c.Configure(inj); err != nil {
				return err
			}
		}
		return nil
	}))
	if err != nil {
		return nil, r, err
	}

	bindings.req = r.WithContext(WithInjector(r.Context(), child))
	return child, bindings.req, nil
}

// Middleware creates a child of parent for each request. The child binds
// *http.Request and context.Context to the current request, runs the
// configured configurators, and is attached to the request context where
// FromContext finds it.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(httpscope.Middleware(root))
func Middleware(parent *saber.Injector, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.ErrorHandler == nil {
		logger := cfg.Logger
		cfg.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("failed to create request injector",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, req, err := Open(parent, r, cfg.Configurators...)
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(http.ResponseWriter, *http.Request, any)

	// InjectorErrorHandler is called when the request carries no injector.
	InjectorErrorHandler func(http.ResponseWriter, *http.Request, error)

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Key overrides the key the controller is resolved by.
	Key saber.Key
}

// HandlerOption configures the Handle wrapper.
type HandlerOption func(*HandlerConfig)

// WithPanicRecovery enables or disables panic recovery in the handler.
func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicRecovery = enabled
	}
}

// WithPanicHandler sets the handler for panics.
func WithPanicHandler(h func(http.ResponseWriter, *http.Request, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithInjectorErrorHandler sets the error handler for requests without an
// injector.
func WithInjectorErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.InjectorErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

// WithKey resolves the controller by key instead of its unqualified type.
func WithKey(key saber.Key) HandlerOption {
	return func(c *HandlerConfig) {
		c.Key = key
	}
}

func internalError(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func defaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		PanicHandler: func(w http.ResponseWriter, r *http.Request, _ any) {
			internalError(w, r, nil)
		},
		InjectorErrorHandler:   internalError,
		ResolutionErrorHandler: internalError,
	}
}

// Handle wraps a controller method for type-safe resolution from the request
// injector. The controller type T is resolved from the injector attached to
// the request context.
//
// Example:
//
//	type UserController interface {
//	    GetByID(http.ResponseWriter, *http.Request)
//	}
//
//	r.Get("/users/{id}", httpscope.Handle(UserController.GetByID))
func Handle[T any](method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	key := cfg.Key
	if key.IsZero() {
		key = saber.KeyOf[T]()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					cfg.PanicHandler(w, r, v)
				}
			}()
		}

		inj, err := FromContext(r.Context())
		if err != nil {
			cfg.InjectorErrorHandler(w, r, err)
			return
		}

		controller, err := saber.Instance[T](inj, key)
		if err != nil {
			cfg.ResolutionErrorHandler(w, r, err)
			return
		}

		method(controller, w, r)
	}
}
