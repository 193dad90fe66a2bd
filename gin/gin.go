// Package gin provides saber integration for the Gin web framework.
//
// The middleware opens a request injector per request, as httpscope does for
// net/http, and additionally binds the *gin.Context.
//
// Example usage:
//
//	root, _ := saber.CreateRootInjector(di.AppComponent{})
//
//	g := gin.New()
//	g.Use(sabergin.Middleware(root, sabergin.WithConfigurator(di.RequestComponent{})))
//
//	g.POST("/login", sabergin.Handle(AuthController.Login))
//	g.GET("/users/:id", sabergin.Handle(UserController.GetByID))
package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junioryono/saber"
	"github.com/junioryono/saber/httpscope"
)

// Config holds the configuration for the request middleware.
type Config struct {
	// ErrorHandler is called when the request injector cannot be created.
	// If nil, a default handler aborting with 500 Internal Server Error is used.
	ErrorHandler func(*gin.Context, error)

	// Configurators run on the request injector after the request bindings
	// are registered, in the order they were added.
	Configurators []saber.Configurator

	// Logger receives failures handled by the default handlers.
	Logger *zap.Logger
}

// Option configures the request middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for request injector failures.
func WithErrorHandler(h func(*gin.Context, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithConfigurator adds a configurator for every request injector.
//
// Example:
//
//	sabergin.Middleware(root,
//	    sabergin.WithConfigurator(saber.ConfiguratorFunc(func(inj *saber.Injector) error {
//	        return saber.ProvideValue(inj, claimsFrom(inj))
//	    })),
//	)
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

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": "Internal Server Error",
	})
}

func defaultConfig() *Config {
	return &Config{Logger: zap.NewNop()}
}

// contextBinding binds the *gin.Context of the current request.
type contextBinding struct {
	c *gin.Context
}

func (b contextBinding) Configure(inj *saber.Injector) error {
	return saber.ProvideValue(inj, b.c)
}

// Middleware creates a gin.HandlerFunc that opens a request injector, a
// child of parent, for each request. The injector binds *http.Request,
// context.Context and *gin.Context, and is attached to the request context
// where httpscope.FromContext finds it.
//
// Example:
//
//	g := gin.New()
//	g.Use(sabergin.Middleware(root))
func Middleware(parent *saber.Injector, opts ...Option) gin.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.ErrorHandler == nil {
		logger := cfg.Logger
		cfg.ErrorHandler = func(c *gin.Context, err error) {
			logger.Error("failed to create request injector",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err))
			abortInternal(c)
		}
	}

	return func(c *gin.Context) {
		configurators := make([]saber.Configurator, 0, len(cfg.Configurators)+1)
		configurators = append(configurators, contextBinding{c: c})
		configurators = append(configurators, cfg.Configurators...)

		_, req, err := httpscope.Open(parent, c.Request, configurators...)
		if err != nil {
			cfg.ErrorHandler(c, err)
			return
		}

		c.Request = req
		c.Next()
	}
}

// FromContext returns the request injector attached by Middleware.
func FromContext(c *gin.Context) (*saber.Injector, error) {
	if c == nil || c.Request == nil {
		return nil, httpscope.ErrNoInjector
	}
	return httpscope.FromContext(c.Request.Context())
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	// If true, panics are caught and handled by PanicHandler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(*gin.Context, any)

	// InjectorErrorHandler is called when the request carries no injector.
	InjectorErrorHandler func(*gin.Context, error)

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(*gin.Context, error)

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
func WithPanicHandler(h func(*gin.Context, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithInjectorErrorHandler sets the error handler for requests without an
// injector.
func WithInjectorErrorHandler(h func(*gin.Context, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.InjectorErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(*gin.Context, error)) HandlerOption {
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
		PanicHandler: func(c *gin.Context, _ any) {
			abortInternal(c)
		},
		InjectorErrorHandler: func(c *gin.Context, _ error) {
			abortInternal(c)
		},
		ResolutionErrorHandler: func(c *gin.Context, _ error) {
			abortInternal(c)
		},
	}
}

// Handle wraps a controller method for type-safe resolution from the request
// injector.
//
// The method signature should be: func(T, *gin.Context)
//
// Example:
//
//	type UserController interface {
//	    GetByID(*gin.Context)
//	}
//
//	g.GET("/users/:id", sabergin.Handle(UserController.GetByID))
func Handle[T any](method func(T, *gin.Context), opts ...HandlerOption) gin.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	key := cfg.Key
	if key.IsZero() {
		key = saber.KeyOf[T]()
	}

	return func(c *gin.Context) {
		if cfg.PanicRecovery {
			defer func() {
				if r := recover(); r != nil {
					cfg.PanicHandler(c, r)
				}
			}()
		}

		inj, err := FromContext(c)
		if err != nil {
			cfg.InjectorErrorHandler(c, err)
			return
		}

		controller, err := saber.Instance[T](inj, key)
		if err != nil {
			cfg.ResolutionErrorHandler(c, err)
			return
		}

		method(controller, c)
	}
}
