// Package descriptor defines the serializable model that connects the
// build-time stages: the analysis package produces a Manifest, the generator
// package turns it into Go source. The runtime package never depends on it.
package descriptor

import (
	"slices"
	"strings"
)

// Version is the manifest schema version written by this package.
const Version = 1

// Manifest is the validated description of an application's injector graph.
type Manifest struct {
	Version    int         `yaml:"version" json:"version"`
	Components []Component `yaml:"components,omitempty" json:"components,omitempty"`
	Modules    []Module    `yaml:"modules,omitempty" json:"modules,omitempty"`
	Targets    []Target    `yaml:"targets,omitempty" json:"targets,omitempty"`
	Contracts  []Contract  `yaml:"contracts,omitempty" json:"contracts,omitempty"`
}

// Component describes one level of the injector hierarchy.
type Component struct {
	Name   string `yaml:"name" json:"name"`
	Parent string `yaml:"parent,omitempty" json:"parent,omitempty"`

	// Modules lists the modules imported explicitly.
	Modules []string `yaml:"modules,omitempty" json:"modules,omitempty"`

	// Installs lists every module registered into the component: explicit
	// and default modules plus their transitive imports. It is computed by
	// analysis.
	Installs []string `yaml:"installs,omitempty" json:"installs,omitempty"`

	Position Position `yaml:"position,omitempty" json:"position,omitzero"`
}

// IsRoot reports whether the component has no parent.
func (c Component) IsRoot() bool {
	return c.Parent == ""
}

// Module is a bundle of bindings installed into components.
type Module struct {
	Name string `yaml:"name" json:"name"`

	// Default modules are installed without being imported: into the
	// components listed in Scopes, or into every root component when Scopes
	// is empty.
	Default bool `yaml:"default,omitempty" json:"default,omitempty"`

	// Scopes restricts which components may install the module.
	Scopes []string `yaml:"scopes,omitempty" json:"scopes,omitempty"`

	Imports  []string  `yaml:"imports,omitempty" json:"imports,omitempty"`
	Bindings []Binding `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	Position Position  `yaml:"position,omitempty" json:"position,omitzero"`
}

// AllowedIn reports whether the module may be installed into component.
func (m Module) AllowedIn(component string) bool {
	return len(m.Scopes) == 0 || slices.Contains(m.Scopes, component)
}

// Binding maps a key to a recipe, an alias or a factory.
type Binding struct {
	Name         string       `yaml:"name,omitempty" json:"name,omitempty"`
	Key          KeyRef       `yaml:"key" json:"key"`
	Scope        Scope        `yaml:"scope,omitempty" json:"scope,omitempty"`
	Recipe       *Recipe      `yaml:"recipe,omitempty" json:"recipe,omitempty"`
	Alias        *KeyRef      `yaml:"alias,omitempty" json:"alias,omitempty"`
	Factory      *Factory     `yaml:"factory,omitempty" json:"factory,omitempty"`
	Dependencies []Dependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Position     Position     `yaml:"position,omitempty" json:"position,omitzero"`
}

// Edges returns the keys the binding resolves from its injector: the
// dependencies of its recipe, its alias target, or the injected arguments
// of its factory methods.
func (b Binding) Edges() []Dependency {
	switch {
	case b.Alias != nil:
		return []Dependency{{KeyRef: *b.Alias}}
	case b.Factory != nil:
		return b.Factory.Dependencies()
	}
	return b.Dependencies
}

// Factory binds the binding's key, a named interface type, to a generated
// implementation. Each method builds one instance from the caller's
// arguments plus dependencies resolved when the method runs:
//
//	key: {type: github.com/acme/app/web.HandlerFactory}
//	factory:
//	  methods:
//	    - name: New
//	      result: "*github.com/acme/app/web.Handler"
//	      recipe: {package: github.com/acme/app/web, func: NewHandler}
//	      arguments:
//	        - {type: "*database/sql.DB"}
//	        - {type: string, assisted: true}
//
// The interface method is New(string) (*web.Handler, error).
type Factory struct {
	Methods []FactoryMethod `yaml:"methods" json:"methods"`
}

// Dependencies returns the injected arguments of every method.
func (f Factory) Dependencies() []Dependency {
	var deps []Dependency
	for _, m := range f.Methods {
		for _, arg := range m.Arguments {
			if !arg.Assisted {
				deps = append(deps, arg.Dependency)
			}
		}
	}
	return deps
}

// FactoryMethod is one method of a factory interface.
type FactoryMethod struct {
	Name      string            `yaml:"name" json:"name"`
	Result    TypeRef           `yaml:"result" json:"result"`
	Recipe    Recipe            `yaml:"recipe" json:"recipe"`
	Arguments []FactoryArgument `yaml:"arguments,omitempty" json:"arguments,omitempty"`
}

// Assisted returns the arguments supplied by the caller, in order.
func (m FactoryMethod) Assisted() []FactoryArgument {
	var out []FactoryArgument
	for _, arg := range m.Arguments {
		if arg.Assisted {
			out = append(out, arg)
		}
	}
	return out
}

// FactoryArgument is one argument of a factory method's recipe. Assisted
// arguments become parameters of the method; only their type is used.
type FactoryArgument struct {
	Dependency `yaml:",inline"`
	Assisted   bool `yaml:"assisted,omitempty" json:"assisted,omitempty"`
}

// Recipe names the Go function that builds a binding's instance. The
// function takes the binding's dependencies in order.
type Recipe struct {
	Package      string `yaml:"package" json:"package"`
	Func         string `yaml:"func" json:"func"`
	ReturnsError bool   `yaml:"returnsError,omitempty" json:"returnsError,omitempty"`
}

func (r Recipe) String() string {
	return r.Package + "." + r.Func
}

// Dependency is one argument of a recipe or one injected member.
type Dependency struct {
	KeyRef    `yaml:",inline"`
	Converter Converter `yaml:"converter,omitempty" json:"converter,omitempty"`
}

// Target is a type whose fields and methods are injected after construction.
// Type must be a pointer to a named struct type.
type Target struct {
	Type     TypeRef           `yaml:"type" json:"type"`
	Fields   []FieldInjection  `yaml:"fields,omitempty" json:"fields,omitempty"`
	Methods  []MethodInjection `yaml:"methods,omitempty" json:"methods,omitempty"`
	Position Position          `yaml:"position,omitempty" json:"position,omitzero"`
}

// Dependencies returns every dependency of the target, fields first.
func (t Target) Dependencies() []Dependency {
	var deps []Dependency
	for _, f := range t.Fields {
		deps = append(deps, f.Dependency)
	}
	for _, m := range t.Methods {
		deps = append(deps, m.Dependencies...)
	}
	return deps
}

// FieldInjection assigns a dependency to an exported field.
type FieldInjection struct {
	Name       string `yaml:"name" json:"name"`
	Dependency `yaml:",inline"`
}

// MethodInjection calls a method with dependencies as arguments.
type MethodInjection struct {
	Name         string       `yaml:"name" json:"name"`
	Dependencies []Dependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// Contract is a typed view of one component's injector: a named interface
// whose methods each resolve one key. The view is also bound in the
// component under the interface type.
type Contract struct {
	Name      string           `yaml:"name" json:"name"`
	Component string           `yaml:"component" json:"component"`
	Type      TypeRef          `yaml:"type" json:"type"`
	Methods   []ContractMethod `yaml:"methods" json:"methods"`
	Position  Position         `yaml:"position,omitempty" json:"position,omitzero"`
}

// Key returns the key the contract is bound under.
func (c Contract) Key() KeyRef {
	return KeyRef{Type: c.Type}
}

// ContractMethod resolves one dependency. With the Instance converter the
// interface method is Name() (T, error).
type ContractMethod struct {
	Name       string `yaml:"name" json:"name"`
	Dependency `yaml:",inline"`
}

// Component returns the named component.
func (m *Manifest) Component(name string) (Component, bool) {
	i := slices.IndexFunc(m.Components, func(c Component) bool { return c.Name == name })
	if i < 0 {
		return Component{}, false
	}
	return m.Components[i], true
}

// Module returns the named module.
func (m *Manifest) Module(name string) (Module, bool) {
	i := slices.IndexFunc(m.Modules, func(mod Module) bool { return mod.Name == name })
	if i < 0 {
		return Module{}, false
	}
	return m.Modules[i], true
}

// Children returns the names of the components whose parent is name.
func (m *Manifest) Children(name string) []string {
	var out []string
	for _, c := range m.Components {
		if c.Parent == name && name != "" {
			out = append(out, c.Name)
		}
	}
	return out
}

// Ancestors returns the chain of components above name, nearest first. It
// stops at unknown parents and cycles.
func (m *Manifest) Ancestors(name string) []Component {
	var out []Component
	seen := map[string]bool{name: true}

	c, ok := m.Component(name)
	for ok && c.Parent != "" && !seen[c.Parent] {
		seen[c.Parent] = true
		c, ok = m.Component(c.Parent)
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// Sort orders components, modules, targets and contracts by name and
// bindings by key, so that a manifest built from the same declarations
// always serializes the same way.
func (m *Manifest) Sort() {
	slices.SortFunc(m.Components, func(a, b Component) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(m.Modules, func(a, b Module) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(m.Targets, func(a, b Target) int { return strings.Compare(a.Type.String(), b.Type.String()) })
	slices.SortFunc(m.Contracts, func(a, b Contract) int { return strings.Compare(a.Name, b.Name) })

	for i := range m.Components {
		slices.Sort(m.Components[i].Installs)
	}
	for i := range m.Modules {
		slices.SortStableFunc(m.Modules[i].Bindings, func(a, b Binding) int {
			if c := strings.Compare(a.Key.ID(), b.Key.ID()); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		})
	}
}
