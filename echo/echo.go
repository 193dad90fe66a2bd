// Package echo provides saber integration for the Echo web framework.
//
// The middleware opens a request injector per request, as httpscope does for
// net/http, and additionally binds the echo.Context.
//
// Example usage:
//
//	root, _ := saber.CreateRootInjector(di.AppComponent{})
//
//	e := echo.New()
//	e.Use(saberecho.Middleware(root, saberecho.WithConfigurator(di.RequestComponent{})))
//
//	e.POST("/login", saberecho.Handle(AuthController.Login))
//	e.GET("/users/:id", saberecho.Handle(UserController.GetByID))
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/junioryono/saber"
	"github.com/junioryono/saber/httpscope"
)

// Config holds the configuration for the request middleware.
type Config struct {
	// ErrorHandler is called when the request injector cannot be created.
	// If nil, a 500 Internal Server Error HTTPError wrapping the cause is
	// returned to Echo.
	ErrorHandler func(echo.Context, error) error

	// Configurators run on the request injector after the request bindings
	// are registered, in the order they were added.
	Configurators []saber.Configurator
}

// Option configures the request middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for request injector failures.
func WithErrorHandler(h func(echo.Context, error) error) Option {
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

func internalError(_ echo.Context, err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error").SetInternal(err)
}

func defaultConfig() *Config {
	return &Config{ErrorHandler: internalError}
}

type contextBinding struct {
	c echo.Context
}

func (b contextBinding) Configure(inj *saber.Injector) error {
	return saber.ProvideValue(inj, b.c)
}

// Middleware creates an Echo middleware that opens a request injector, a
// child of parent, for each request. The injector binds *http.Request,
// context.Context and echo.Context, and is attached to the request context
// where httpscope.FromContext finds it.
//
// Example:
//
//	e := echo.New()
//	e.Use(saberecho.Middleware(root))
func Middleware(parent *saber.Injector, opts ...Option) echo.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			configurators := make([]saber.Configurator, 0, len(cfg.Configurators)+1)
			configurators = append(configurators, contextBinding{c: c})
			configurators = append(configurators, cfg.Configurators...)

			_, req, err := httpscope.Open(parent, c.Request(), configurators...)
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}

			c.SetRequest(req)
			return next(c)
		}
	}
}

// FromContext returns the request injector attached by Middleware.
func FromContext(c echo.Context) (*saber.Injector, error) {
	if c == nil || c.Request() == nil {
		return nil, httpscope.ErrNoInjector
	}
	return httpscope.FromContext(c.Request().Context())
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(echo.Context, any) error

	// InjectorErrorHandler is called when the request carries no injector.
	InjectorErrorHandler func(echo.Context, error) error

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(echo.Context, error) error

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

// WithPanicHandler sets the handler for panics (requires WithPanicRecovery(true)).
func WithPanicHandler(h func(echo.Context, any) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithInjectorErrorHandler sets the error handler for requests without an
// injector.
func WithInjectorErrorHandler(h func(echo.Context, error) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.InjectorErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(echo.Context, error) error) HandlerOption {
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

func defaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		PanicHandler: func(c echo.Context, _ any) error {
			return internalError(c, nil)
		},
		InjectorErrorHandler:   internalError,
		ResolutionErrorHandler: internalError,
	}
}

// Handle wraps a controller method for type-safe resolution from the request
// injector.
//
// The method signature should be: func(T, echo.Context) error
//
// Example:
//
//	type UserController interface {
//	    GetByID(echo.Context) error
//	}
//
//	e.GET("/users/:id", saberecho.Handle(UserController.GetByID))
func Handle[T any](method func(T, echo.Context) error, opts ...HandlerOption) echo.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	key := cfg.Key
	if key.IsZero() {
		key = saber.KeyOf[T]()
	}

	return func(c echo.Context) (err error) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					err = cfg.PanicHandler(c, v)
				}
			}()
		}

		inj, injErr := FromContext(c)
		if injErr != nil {
			return cfg.InjectorErrorHandler(c, injErr)
		}

		controller, resolveErr := saber.Instance[T](inj, key)
		if resolveErr != nil {
			return cfg.ResolutionErrorHandler(c, resolveErr)
		}

		return method(controller, c)
	}
}
