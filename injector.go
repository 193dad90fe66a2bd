package saber

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Configurator populates the bindings of a freshly created injector.
//
// Generated components implement Configurator; hand-written configuration can
// use ConfiguratorFunc.
type Configurator interface {
	Configure(inj *Injector) error
}

// ConfiguratorFunc adapts a function to Configurator.
type ConfiguratorFunc func(inj *Injector) error

// Configure calls f.
func (f ConfiguratorFunc) Configure(inj *Injector) error {
	return f(inj)
}

// injectorKey is the key every injector registers itself under.
var injectorKey = KeyOf[*Injector]()

// InjectorKey returns the key under which every injector binds itself.
func InjectorKey() Key {
	return injectorKey
}

// Injector is one level of the resolution hierarchy.
//
// An injector owns a registry of bindings and delegates lookups it cannot
// satisfy to its parent, nearest first. A child may rebind a key that an
// ancestor already binds; the child's binding wins for the child's subtree and
// is never visible to the ancestor.
//
// Injectors are configured once, by the Configurator passed when they are
// created, and are safe for concurrent resolution afterwards.
type Injector struct {
	id           string
	name         string
	parent       *Injector
	depth        int
	registry     *bindingRegistry
	interceptors []ProviderInterceptor
	engine       *Engine
}

func newInjector(engine *Engine, parent *Injector, configurator Configurator) (*Injector, error) {
	id := uuid.NewString()
	inj := &Injector{
		id:           id,
		name:         "injector " + id,
		parent:       parent,
		registry:     newBindingRegistry(),
		interceptors: engine.interceptors,
		engine:       engine,
	}
	if parent != nil {
		inj.depth = parent.depth + 1
	}

	inj.registry.register(injectorKey, ValueProvider(inj))

	if configurator != nil {
		if err := configurator.Configure(inj); err != nil {
			engine.logger.Debug("injector configuration failed",
				zap.String("injector", id),
				zap.Int("depth", inj.depth),
				zap.Error(err),
			)
			return nil, ConfigureError{Injector: inj.name, Cause: err}
		}
	}

	inj.registry.seal()

	engine.logger.Debug("injector created",
		zap.String("injector", id),
		zap.String("parent", parent.ID()),
		zap.Int("depth", inj.depth),
		zap.Int("bindings", inj.registry.size()),
	)

	return inj, nil
}

// ID returns the unique identifier of the injector.
func (inj *Injector) ID() string {
	if inj == nil {
		return ""
	}
	return inj.id
}

// Parent returns the parent injector, or nil for a root injector.
func (inj *Injector) Parent() *Injector {
	return inj.parent
}

// IsRoot reports whether the injector has no parent.
func (inj *Injector) IsRoot() bool {
	return inj.parent == nil
}

// Depth returns the distance to the root injector.
func (inj *Injector) Depth() int {
	return inj.depth
}

// Engine returns the engine that created the injector.
func (inj *Injector) Engine() *Engine {
	return inj.engine
}

// Keys returns the keys bound directly in this injector, in registration order.
func (inj *Injector) Keys() []Key {
	return inj.registry.registeredKeys()
}

func (inj *Injector) String() string {
	return inj.name
}

// CreateChild creates a child injector and runs configurator on it.
//
// The child shares the engine's interceptors. If configurator fails the child
// is discarded and a ConfigureError wrapping the failure is returned.
func (inj *Injector) CreateChild(configurator Configurator) (*Injector, error) {
	return newInjector(inj.engine, inj, configurator)
}

// Register binds provider to key in this injector.
//
// Register may only be called from the injector's Configurator. Registering a
// key that this injector already binds fails with DuplicateBindingError and
// leaves the existing binding in place; keys bound by ancestors may be
// rebound freely.
func (inj *Injector) Register(key Key, provider Provider) error {
	if key.IsZero() {
		return ErrKeyZero
	}
	if provider == nil {
		return ErrProviderNil
	}
	if inj.registry.sealed {
		return ErrInjectorSealed
	}

	if !inj.registry.register(key, provider) {
		return DuplicateBindingError{Key: key, Injector: inj.name}
	}

	inj.engine.logger.Debug("binding registered",
		zap.String("injector", inj.id),
		zap.Stringer("key", key),
	)
	return nil
}

// RegisterType binds provider to the unqualified key of t.
func (inj *Injector) RegisterType(t Type, provider Provider) error {
	if t.IsZero() {
		return ErrTypeNil
	}
	return inj.Register(KeyFor(t), provider)
}

// GetProvider returns the provider for key, consulting ancestors nearest first
// and passing through the engine's interceptors when there are any.
func (inj *Injector) GetProvider(key Key) (Provider, error) {
	if key.IsZero() {
		return nil, ErrKeyZero
	}

	if inj.interceptors == nil {
		return inj.lookup(key)
	}

	return resolutionChain{injector: inj, remaining: inj.interceptors}.Proceed(key)
}

// GetTypeProvider returns the provider for the unqualified key of t. It is
// equivalent to GetProvider(KeyFor(t)).
func (inj *Injector) GetTypeProvider(t Type) (Provider, error) {
	if t.IsZero() {
		return nil, ErrTypeNil
	}

	if inj.interceptors == nil {
		if p, ok := inj.find(t.id); ok {
			return p, nil
		}
		return nil, inj.notFound(KeyFor(t))
	}

	return resolutionChain{injector: inj, remaining: inj.interceptors}.Proceed(KeyFor(t))
}

// GetInstance resolves key and asks its provider for an instance.
func (inj *Injector) GetInstance(key Key) (any, error) {
	p, err := inj.GetProvider(key)
	if err != nil {
		return nil, err
	}
	return p.Provide()
}

// GetTypeInstance resolves the unqualified key of t and asks its provider for
// an instance.
func (inj *Injector) GetTypeInstance(t Type) (any, error) {
	p, err := inj.GetTypeProvider(t)
	if err != nil {
		return nil, err
	}
	return p.Provide()
}

// lookup is the plain hierarchical resolution, without interceptors.
func (inj *Injector) lookup(key Key) (Provider, error) {
	if p, ok := inj.find(key.id); ok {
		return p, nil
	}
	return nil, inj.notFound(key)
}

// find walks the registries from inj up to the root.
func (inj *Injector) find(id string) (Provider, bool) {
	for current := inj; current != nil; current = current.parent {
		if p, ok := current.registry.lookup(id); ok {
			return p, true
		}
	}
	return nil, false
}

// notFound builds the error reported when no injector binds key. The error
// raised by the root is the innermost cause and each descendant on the way
// back to inj wraps the error of its parent.
func (inj *Injector) notFound(key Key) error {
	path := make([]*Injector, 0, inj.depth+1)
	for current := inj; current != nil; current = current.parent {
		path = append(path, current)
	}

	var err error
	for i := len(path) - 1; i >= 0; i-- {
		err = BindingNotFoundError{Key: key, Injector: path[i].name, Cause: err}
	}
	return err
}
