// Package fiber provides saber integration for the Fiber web framework.
//
// Fiber is built on fasthttp, so the request injector binds *fiber.Ctx and
// context.Context rather than *http.Request.
//
// Example usage:
//
//	root, _ := saber.CreateRootInjector(di.AppComponent{})
//
//	app := fiber.New()
//	app.Use(saberfiber.Middleware(root, saberfiber.WithConfigurator(di.RequestComponent{})))
//
//	app.Post("/login", saberfiber.Handle(AuthController.Login))
//	app.Get("/users/:id", saberfiber.Handle(UserController.GetByID))
package fiber

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/junioryono/saber"
	"github.com/junioryono/saber/httpscope"
)

// injectorKey is the key used to store the injector in fiber.Ctx.Locals.
const injectorKey = "saber_injector"

// Config holds the configuration for the request middleware.
type Config struct {
	// ErrorHandler is called when the request injector cannot be created.
	// If nil, a JSON 500 Internal Server Error response is sent.
	ErrorHandler func(*fiber.Ctx, error) error

	// Configurators run on the request injector after the request bindings
	// are registered, in the order they were added.
	Configurators []saber.Configurator
}

// Option configures the request middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for request injector failures.
func WithErrorHandler(h func(*fiber.Ctx, error) error) Option {
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

func internalError(c *fiber.Ctx, _ error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal Server Error",
	})
}

func defaultConfig() *Config {
	return &Config{ErrorHandler: internalError}
}

// requestBindings binds the fiber context and its user context. The user
// context is read on every Provide call so it reflects the injector attached
// to it.
type requestBindings struct {
	c *fiber.Ctx
}

func (b requestBindings) Configure(inj *saber.Injector) error {
	if err := saber.ProvideValue(inj, b.c); err != nil {
		return err
	}
	return inj.Register(saber.KeyOf[context.Context](), saber.ProviderFunc(func() (any, error) {
		return b.c.UserContext(), nil
	}))
}

// Middleware creates a Fiber middleware that opens a request injector, a
// child of parent, for each request. The injector is stored in
// fiber.Ctx.Locals and attached to the user context.
//
// Example:
//
//	app := fiber.New()
//	app.Use(saberfiber.Middleware(root))
func Middleware(parent *saber.Injector, opts ...Option) fiber.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *fiber.Ctx) error {
		child, err := parent.CreateChild(saber.ConfiguratorFunc(func(inj *saber.Injector) error {
			if err := (requestBindings{c: c}).Configure(inj); err != nil {
				return err
			}
			for _, configurator := range cfg.Configurators {
				if err := configurator.Configure(inj); err != nil {
					return err
				}
			}
			return nil
		}))
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.SetUserContext(httpscope.WithInjector(c.UserContext(), child))
		c.Locals(injectorKey, child)

		return c.Next()
	}
}

// FromContext returns the request injector stored by Middleware.
//
// Example:
//
//	inj, err := saberfiber.FromContext(c)
//	users := saber.MustGet[*UserService](inj)
func FromContext(c *fiber.Ctx) (*saber.Injector, error) {
	if c == nil {
		return nil, httpscope.ErrNoInjector
	}
	inj, ok := c.Locals(injectorKey).(*saber.Injector)
	if !ok || inj == nil {
		return nil, httpscope.ErrNoInjector
	}
	return inj, nil
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(*fiber.Ctx, any) error

	// InjectorErrorHandler is called when the request carries no injector.
	InjectorErrorHandler func(*fiber.Ctx, error) error

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(*fiber.Ctx, error) error

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
func WithPanicHandler(h func(*fiber.Ctx, any) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithInjectorErrorHandler sets the error handler for requests without an
// injector.
func WithInjectorErrorHandler(h func(*fiber.Ctx, error) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.InjectorErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(*fiber.Ctx, error) error) HandlerOption {
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
		PanicHandler: func(c *fiber.Ctx, _ any) error {
			return internalError(c, nil)
		},
		InjectorErrorHandler:   internalError,
		ResolutionErrorHandler: internalError,
	}
}

// Handle wraps a controller method for type-safe resolution from the request
// injector stored in fiber.Ctx.Locals.
//
// The method signature should be: func(T, *fiber.Ctx) error
//
// Example:
//
//	type UserController interface {
//	    GetByID(*fiber.Ctx) error
//	}
//
//	app.Get("/users/:id", saberfiber.Handle(UserController.GetByID))
func Handle[T any](method func(T, *fiber.Ctx) error, opts ...HandlerOption) fiber.Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	key := cfg.Key
	if key.IsZero() {
		key = saber.KeyOf[T]()
	}

	return func(c *fiber.Ctx) (err error) {
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
