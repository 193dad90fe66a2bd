package analysis

import (
	"fmt"
	"strings"

	"github.com/junioryono/saber/descriptor"
	"gopkg.in/yaml.v3"
)

// Kind classifies a declaration site.
type Kind string

const (
	KindBinding   Kind = "binding"
	KindModule    Kind = "module"
	KindComponent Kind = "component"
	KindTarget    Kind = "target"
	KindContract  Kind = "contract"
)

func (k Kind) valid() bool {
	switch k {
	case KindBinding, KindModule, KindComponent, KindTarget, KindContract:
		return true
	}
	return false
}

// Declaration is one declaration site. It is a flat record: only the fields
// of its kind may be set. When Kind is empty it is inferred from the
// populated fields.
//
// Modules may nest their bindings; a nested binding without a module
// belongs to the enclosing one:
//
//	kind: module
//	name: data
//	bindings:
//	  - key: {type: "*database/sql.DB"}
//	    scope: singleton
//	    recipe: {package: github.com/acme/app/db, func: Open, returnsError: true}
//	    dependencies:
//	      - {type: string, named: dsn}
//
// A binding may bind a factory interface instead of a recipe; see
// descriptor.Factory. A contract exposes keys of one component through a
// generated implementation of a named interface:
//
//	kind: contract
//	name: app
//	component: app
//	contract: github.com/acme/app.AppContract
//	provides:
//	  - {name: DB, type: "*database/sql.DB"}
type Declaration struct {
	Kind Kind   `yaml:"kind,omitempty"`
	Name string `yaml:"name,omitempty"`

	// Binding.
	Module       string                  `yaml:"module,omitempty"`
	Key          *descriptor.KeyRef      `yaml:"key,omitempty"`
	Scope        descriptor.Scope        `yaml:"scope,omitempty"`
	Recipe       *descriptor.Recipe      `yaml:"recipe,omitempty"`
	Alias        *descriptor.KeyRef      `yaml:"alias,omitempty"`
	Factory      *descriptor.Factory     `yaml:"factory,omitempty"`
	Dependencies []descriptor.Dependency `yaml:"dependencies,omitempty"`

	// Module.
	Default  bool          `yaml:"default,omitempty"`
	Scopes   []string      `yaml:"scopes,omitempty"`
	Imports  []string      `yaml:"imports,omitempty"`
	Bindings []Declaration `yaml:"bindings,omitempty"`

	// Component.
	Parent  string   `yaml:"parent,omitempty"`
	Modules []string `yaml:"modules,omitempty"`

	// Target.
	Target  *descriptor.TypeRef          `yaml:"target,omitempty"`
	Fields  []descriptor.FieldInjection  `yaml:"fields,omitempty"`
	Methods []descriptor.MethodInjection `yaml:"methods,omitempty"`

	// Contract.
	Contract  *descriptor.TypeRef         `yaml:"contract,omitempty"`
	Component string                      `yaml:"component,omitempty"`
	Provides  []descriptor.ContractMethod `yaml:"provides,omitempty"`

	Position descriptor.Position `yaml:"-"`
}

var declarationFields = map[string]bool{
	"kind": true, "name": true,
	"module": true, "key": true, "scope": true, "recipe": true, "alias": true, "factory": true, "dependencies": true,
	"default": true, "scopes": true, "imports": true, "bindings": true,
	"parent": true, "modules": true,
	"target": true, "fields": true, "methods": true,
	"contract": true, "component": true, "provides": true,
}

// UnmarshalYAML decodes a declaration, rejecting unknown fields and
// recording the line and column of the mapping.
func (d *Declaration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: declaration must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if k := node.Content[i]; !declarationFields[k.Value] {
			return fmt.Errorf("line %d: unknown declaration field %q", k.Line, k.Value)
		}
	}

	type plain Declaration
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}

	*d = Declaration(p)
	d.Position = descriptor.Position{Line: node.Line, Column: node.Column}
	return nil
}

// populated returns the kinds whose fields are set.
func (d Declaration) populated() []Kind {
	var kinds []Kind
	if d.Module != "" || d.Key != nil || d.Scope != descriptor.Unscoped || d.Recipe != nil || d.Alias != nil || d.Factory != nil || len(d.Dependencies) > 0 {
		kinds = append(kinds, KindBinding)
	}
	if d.Default || len(d.Scopes) > 0 || len(d.Imports) > 0 || len(d.Bindings) > 0 {
		kinds = append(kinds, KindModule)
	}
	if d.Parent != "" || len(d.Modules) > 0 {
		kinds = append(kinds, KindComponent)
	}
	if d.Target != nil || len(d.Fields) > 0 || len(d.Methods) > 0 {
		kinds = append(kinds, KindTarget)
	}
	if d.Contract != nil || d.Component != "" || len(d.Provides) > 0 {
		kinds = append(kinds, KindContract)
	}
	return kinds
}

// Classify returns the kind of the declaration.
func (d Declaration) Classify() (Kind, error) {
	kinds := d.populated()

	if d.Kind != "" {
		if !d.Kind.valid() {
			return "", fmt.Errorf("%w: unknown kind %q", ErrUnclassified, d.Kind)
		}
		for _, k := range kinds {
			if k != d.Kind {
				return "", fmt.Errorf("%w: %s fields set on a %s declaration", ErrUnclassified, k, d.Kind)
			}
		}
		return d.Kind, nil
	}

	switch len(kinds) {
	case 0:
		return "", fmt.Errorf("%w: no fields identify it, set kind", ErrUnclassified)
	case 1:
		return kinds[0], nil
	default:
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		return "", fmt.Errorf("%w: mixes %s fields", ErrUnclassified, strings.Join(names, " and "))
	}
}

// flatten lifts the bindings nested in module declarations to the top level.
func flatten(decls []Declaration) []Declaration {
	out := make([]Declaration, 0, len(decls))
	for _, d := range decls {
		if len(d.Bindings) == 0 || (d.Kind != "" && d.Kind != KindModule) {
			out = append(out, d)
			continue
		}

		nested := d.Bindings
		d.Kind = KindModule
		d.Bindings = nil
		out = append(out, d)

		for _, b := range nested {
			if b.Module == "" {
				b.Module = d.Name
			}
			if b.Kind == "" {
				b.Kind = KindBinding
			}
			if b.Position.File == "" {
				b.Position.File = d.Position.File
			}
			out = append(out, b)
		}
	}
	return out
}

func (d *Declaration) stamp(file string) {
	d.Position.File = file
	for i := range d.Bindings {
		d.Bindings[i].stamp(file)
	}
}
