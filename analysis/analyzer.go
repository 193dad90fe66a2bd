// Package analysis validates declaration sites and turns them into a
// descriptor.Manifest for the generator.
//
// Declarations come from Sources: in-memory slices or YAML files. A file
// holds one or more YAML documents, each a declaration or a list of them:
//
//	- kind: component
//	  name: app
//	  modules: [data]
//
//	- kind: component
//	  name: request
//	  parent: app
//	  modules: [web]
//
//	- kind: module
//	  name: data
//	  bindings:
//	    - key: {type: string, named: dsn}
//	      recipe: {package: github.com/acme/app/config, func: DSN}
//
//	- kind: target
//	  target: "*github.com/acme/app/web.Handler"
//	  fields:
//	    - {name: DB, type: "*database/sql.DB"}
//
//	- kind: contract
//	  name: app
//	  component: app
//	  contract: github.com/acme/app.AppContract
//	  provides:
//	    - {name: DSN, type: string, named: dsn}
//
// Analysis collects every problem instead of stopping at the first one and
// reports them as an ErrorList.
package analysis

import (
	"context"
	"fmt"
	"go/token"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/junioryono/saber/descriptor"
	"github.com/junioryono/saber/internal/graph"
	"go.uber.org/zap"
)

// Options configures an Analyzer.
type Options struct {
	// StrictHierarchy also rejects keys bound again below an ancestor that
	// already binds them. Shadowing is legal at runtime.
	StrictHierarchy bool

	Logger *zap.Logger
}

// Analyzer validates declarations.
type Analyzer struct {
	opts   Options
	logger *zap.Logger
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{opts: opts, logger: logger}
}

// Analyze loads the sources and builds the manifest.
func (a *Analyzer) Analyze(ctx context.Context, sources ...Source) (*descriptor.Manifest, error) {
	decls, err := Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("load declarations: %w", err)
	}
	a.logger.Debug("declarations loaded", zap.Int("sources", len(sources)), zap.Int("declarations", len(decls)))
	return a.Build(decls)
}

// Build validates decls and returns the sorted manifest. On failure the
// error is an ErrorList.
func (a *Analyzer) Build(decls []Declaration) (*descriptor.Manifest, error) {
	r := &run{
		opts:     a.opts,
		logger:   a.logger,
		manifest: &descriptor.Manifest{Version: descriptor.Version},
		modules:   make(map[string]int),
		comps:     make(map[string]int),
		contracts: make(map[string]int),
		bound:     make(map[string]map[string]boundBinding),
		reported:  make(map[string]bool),
	}

	r.collect(flatten(decls))
	r.checkReferences()
	r.checkHierarchy()
	r.checkImports()
	r.install()
	r.checkModuleKeys()
	r.checkKeys()
	r.checkDependencies()
	r.checkCycles()
	r.checkModuleCycles()
	r.checkTargets()
	r.checkContracts()

	r.errs.sort()
	if err := r.errs.Err(); err != nil {
		a.logger.Debug("declarations rejected", zap.Int("errors", len(r.errs)))
		return nil, err
	}

	r.manifest.Sort()
	a.logger.Debug("declarations validated",
		zap.Int("components", len(r.manifest.Components)),
		zap.Int("modules", len(r.manifest.Modules)),
		zap.Int("targets", len(r.manifest.Targets)),
		zap.Int("contracts", len(r.manifest.Contracts)),
	)
	return r.manifest, nil
}

type boundBinding struct {
	module   string
	contract string
	binding  *descriptor.Binding
}

func (b boundBinding) owner() string {
	if b.contract != "" {
		return fmt.Sprintf("contract %q", b.contract)
	}
	return fmt.Sprintf("module %q", b.module)
}

// run holds the state of one Build call.
type run struct {
	opts     Options
	logger   *zap.Logger
	errs     ErrorList
	manifest *descriptor.Manifest

	modules   map[string]int // index into manifest.Modules
	comps     map[string]int // index into manifest.Components
	contracts map[string]int // index into manifest.Contracts

	// bound maps component -> key id -> binding registered into it.
	bound map[string]map[string]boundBinding

	// reported holds the duplicate key pairs already reported.
	reported map[string]bool
}

func (r *run) fail(pos descriptor.Position, key string, err error) {
	r.errs = append(r.errs, &StaticValidationError{Position: pos, Key: key, Reason: err.Error(), Err: err})
}

func (r *run) collect(decls []Declaration) {
	var bindings []Declaration
	targets := make(map[string]descriptor.Position)

	for _, d := range decls {
		kind, err := d.Classify()
		if err != nil {
			r.fail(d.Position, d.Name, err)
			continue
		}

		switch kind {
		case KindModule:
			if !r.checkName(d, "module", r.modules) {
				continue
			}
			r.modules[d.Name] = len(r.manifest.Modules)
			r.manifest.Modules = append(r.manifest.Modules, descriptor.Module{
				Name:     d.Name,
				Default:  d.Default,
				Scopes:   d.Scopes,
				Imports:  d.Imports,
				Position: d.Position,
			})

		case KindComponent:
			if !r.checkName(d, "component", r.comps) {
				continue
			}
			r.comps[d.Name] = len(r.manifest.Components)
			r.manifest.Components = append(r.manifest.Components, descriptor.Component{
				Name:     d.Name,
				Parent:   d.Parent,
				Modules:  d.Modules,
				Position: d.Position,
			})

		case KindTarget:
			t, ok := r.target(d)
			if !ok {
				continue
			}
			id := t.Type.String()
			if prev, dup := targets[id]; dup {
				r.fail(d.Position, id, fmt.Errorf("%w: target already declared at %s", ErrDuplicateName, prev))
				continue
			}
			targets[id] = d.Position
			r.manifest.Targets = append(r.manifest.Targets, t)

		case KindContract:
			r.contract(d)

		case KindBinding:
			bindings = append(bindings, d)
		}
	}

	for _, d := range bindings {
		r.binding(d)
	}
	for i := range r.manifest.Modules {
		r.nameBindings(&r.manifest.Modules[i])
	}
}

func (r *run) checkName(d Declaration, what string, seen map[string]int) bool {
	switch {
	case d.Name == "":
		r.fail(d.Position, "", fmt.Errorf("%w: %s has no name", ErrInvalidName, what))
		return false
	case !validName(d.Name):
		r.fail(d.Position, "", fmt.Errorf("%w: %s name %q must start with a letter and contain only letters, digits, '_' and '-'", ErrInvalidName, what, d.Name))
		return false
	}

	if i, dup := seen[d.Name]; dup {
		var prev descriptor.Position
		switch what {
		case "module":
			prev = r.manifest.Modules[i].Position
		case "contract":
			prev = r.manifest.Contracts[i].Position
		default:
			prev = r.manifest.Components[i].Position
		}
		r.fail(d.Position, "", fmt.Errorf("%w: %s %q already declared at %s", ErrDuplicateName, what, d.Name, prev))
		return false
	}
	return true
}

func validName(name string) bool {
	for i, c := range name {
		switch {
		case unicode.IsLetter(c):
		case i > 0 && (unicode.IsDigit(c) || c == '_' || c == '-'):
		default:
			return false
		}
	}
	return name != ""
}

func (r *run) checkKey(pos descriptor.Position, owner string, k descriptor.KeyRef, what string) bool {
	if err := k.Validate(); err != nil {
		r.fail(pos, owner, fmt.Errorf("%w: %s: %w", ErrInvalidKey, what, err))
		return false
	}
	return true
}

func (r *run) checkDeps(pos descriptor.Position, owner string, deps []descriptor.Dependency, what string) bool {
	ok := true
	for i, dep := range deps {
		label := fmt.Sprintf("%s %d", what, i)
		if !r.checkKey(pos, owner, dep.KeyRef, label) {
			ok = false
			continue
		}
		if !dep.Converter.IsValid() {
			r.fail(pos, owner, fmt.Errorf("%w: %s: unknown converter %s", ErrInvalidBinding, label, dep.Converter))
			ok = false
		}
	}
	return ok
}

func (r *run) binding(d Declaration) {
	owner := ""
	if d.Key != nil {
		owner = d.Key.String()
	}

	switch {
	case d.Module == "":
		r.fail(d.Position, owner, fmt.Errorf("%w: binding has no module", ErrInvalidBinding))
		return
	case d.Key == nil:
		r.fail(d.Position, "", fmt.Errorf("%w: binding has no key", ErrInvalidKey))
		return
	}
	if _, ok := r.modules[d.Module]; !ok {
		r.fail(d.Position, owner, fmt.Errorf("%w: module %q is not declared", ErrUnknownReference, d.Module))
		return
	}

	ok := r.checkKey(d.Position, owner, *d.Key, "key")
	if ok && d.Key.IsInjector() {
		r.fail(d.Position, owner, fmt.Errorf("%w: every injector binds itself under this key", ErrInvalidKey))
		ok = false
	}
	if d.Name != "" && !token.IsIdentifier(d.Name) {
		r.fail(d.Position, owner, fmt.Errorf("%w: binding name %q is not a Go identifier", ErrInvalidName, d.Name))
		ok = false
	}
	if !d.Scope.IsValid() {
		r.fail(d.Position, owner, fmt.Errorf("%w: unknown scope %s", ErrInvalidBinding, d.Scope))
		ok = false
	}

	switch sources := count(d.Recipe != nil, d.Alias != nil, d.Factory != nil); {
	case sources == 0:
		r.fail(d.Position, owner, fmt.Errorf("%w: binding needs a recipe, an alias or a factory", ErrInvalidBinding))
		ok = false
	case sources > 1:
		r.fail(d.Position, owner, fmt.Errorf("%w: binding sets more than one of recipe, alias and factory", ErrInvalidBinding))
		ok = false
	case d.Factory != nil:
		if !r.checkFactory(d, owner) {
			ok = false
		}
	case d.Recipe != nil:
		if d.Recipe.Package == "" || !token.IsIdentifier(d.Recipe.Func) {
			r.fail(d.Position, owner, fmt.Errorf("%w: recipe needs a package and a function name", ErrInvalidBinding))
			ok = false
		}
	case d.Alias != nil:
		if len(d.Dependencies) > 0 {
			r.fail(d.Position, owner, fmt.Errorf("%w: alias binding cannot declare dependencies", ErrInvalidBinding))
			ok = false
		}
		if r.checkKey(d.Position, owner, *d.Alias, "alias") && d.Alias.ID() == d.Key.ID() {
			r.fail(d.Position, owner, fmt.Errorf("%w: alias refers to its own key", ErrInvalidBinding))
			ok = false
		}
	}

	if !r.checkDeps(d.Position, owner, d.Dependencies, "dependency") || !ok {
		return
	}

	mod := &r.manifest.Modules[r.modules[d.Module]]
	mod.Bindings = append(mod.Bindings, descriptor.Binding{
		Name:         d.Name,
		Key:          *d.Key,
		Scope:        d.Scope,
		Recipe:       d.Recipe,
		Alias:        d.Alias,
		Factory:      d.Factory,
		Dependencies: d.Dependencies,
		Position:     d.Position,
	})
}

func count(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// checkFactory validates a factory binding. Its key names the interface the
// generated factory implements.
func (r *run) checkFactory(d Declaration, owner string) bool {
	ok := true
	bad := func(reason string) {
		r.fail(d.Position, owner, fmt.Errorf("%w: %s", ErrInvalidBinding, reason))
		ok = false
	}

	if !d.Key.Type.IsNamed() {
		bad("factory key must be a named interface type")
	}
	if d.Scope != descriptor.Unscoped {
		bad("factory bindings cannot be scoped")
	}
	if len(d.Dependencies) > 0 {
		bad("factory binding declares dependencies, list them as method arguments")
	}
	if len(d.Factory.Methods) == 0 {
		bad("factory has no methods")
	}

	names := make(map[string]bool)
	for _, m := range d.Factory.Methods {
		switch {
		case !token.IsIdentifier(m.Name) || !token.IsExported(m.Name):
			bad(fmt.Sprintf("factory method %q must be exported", m.Name))
		case names[m.Name]:
			bad(fmt.Sprintf("factory method %q declared twice", m.Name))
		}
		names[m.Name] = true

		if m.Result.IsZero() {
			bad(fmt.Sprintf("factory method %s has no result type", m.Name))
		}
		if m.Recipe.Package == "" || !token.IsIdentifier(m.Recipe.Func) {
			bad(fmt.Sprintf("factory method %s: recipe needs a package and a function name", m.Name))
		}

		for i, arg := range m.Arguments {
			label := fmt.Sprintf("factory method %s argument %d", m.Name, i)
			switch {
			case !arg.Assisted:
				if !r.checkDeps(d.Position, owner, []descriptor.Dependency{arg.Dependency}, label) {
					ok = false
				}
			case arg.Type.IsZero():
				bad(label + ": assisted argument has no type")
			case arg.Named != "" || arg.Qualifier != nil || arg.Converter != descriptor.Instance:
				bad(label + ": assisted arguments take only a type")
			}
		}
	}
	return ok
}

func (r *run) contract(d Declaration) {
	if !r.checkName(d, "contract", r.contracts) {
		return
	}

	owner := ""
	if d.Contract != nil {
		owner = d.Contract.String()
	}
	ok := true
	bad := func(reason string) {
		r.fail(d.Position, owner, fmt.Errorf("%w: %s", ErrInvalidContract, reason))
		ok = false
	}

	switch {
	case d.Contract == nil || d.Contract.IsZero():
		bad("contract has no type")
	case !d.Contract.IsNamed():
		bad("contract type must be a named interface type")
	}
	if d.Component == "" {
		bad("contract has no component")
	}
	if len(d.Provides) == 0 {
		bad("contract provides no methods")
	}

	names := make(map[string]bool)
	for _, m := range d.Provides {
		switch {
		case !token.IsIdentifier(m.Name) || !token.IsExported(m.Name):
			bad(fmt.Sprintf("method %q must be exported", m.Name))
		case names[m.Name]:
			bad(fmt.Sprintf("method %q declared twice", m.Name))
		}
		names[m.Name] = true

		if !r.checkKey(d.Position, owner, m.KeyRef, "method "+m.Name) {
			ok = false
		}
	}
	if !ok {
		return
	}

	r.contracts[d.Name] = len(r.manifest.Contracts)
	r.manifest.Contracts = append(r.manifest.Contracts, descriptor.Contract{
		Name:      d.Name,
		Component: d.Component,
		Type:      *d.Contract,
		Methods:   d.Provides,
		Position:  d.Position,
	})
}

func (r *run) target(d Declaration) (descriptor.Target, bool) {
	if d.Target == nil || d.Target.IsZero() {
		r.fail(d.Position, "", fmt.Errorf("%w: target has no type", ErrInvalidTarget))
		return descriptor.Target{}, false
	}

	t := *d.Target
	owner := t.String()
	ok := true

	if t.Tag != "*" || len(t.Args) != 1 || !t.Args[0].IsNamed() {
		r.fail(d.Position, owner, fmt.Errorf("%w: target must be a pointer to a named type", ErrInvalidTarget))
		ok = false
	}
	if len(d.Fields) == 0 && len(d.Methods) == 0 {
		r.fail(d.Position, owner, fmt.Errorf("%w: target injects no fields or methods", ErrInvalidTarget))
		ok = false
	}

	names := make(map[string]bool)
	member := func(name, what string) {
		switch {
		case !token.IsIdentifier(name) || !token.IsExported(name):
			r.fail(d.Position, owner, fmt.Errorf("%w: %s %q must be exported", ErrInvalidTarget, what, name))
			ok = false
		case names[name]:
			r.fail(d.Position, owner, fmt.Errorf("%w: %s %q injected twice", ErrInvalidTarget, what, name))
			ok = false
		}
		names[name] = true
	}

	for _, f := range d.Fields {
		member(f.Name, "field")
		if !r.checkDeps(d.Position, owner, []descriptor.Dependency{f.Dependency}, "field "+f.Name) {
			ok = false
		}
	}
	for _, m := range d.Methods {
		member(m.Name, "method")
		if !r.checkDeps(d.Position, owner, m.Dependencies, "method "+m.Name+" argument") {
			ok = false
		}
	}

	return descriptor.Target{Type: t, Fields: d.Fields, Methods: d.Methods, Position: d.Position}, ok
}

// nameBindings fills in missing binding names from their keys, keeping the
// names unique within the module.
func (r *run) nameBindings(mod *descriptor.Module) {
	bindings := mod.Bindings
	used := make(map[string]bool)
	for _, b := range bindings {
		if b.Name == "" {
			continue
		}
		if used[b.Name] {
			r.fail(b.Position, b.Key.String(), fmt.Errorf("%w: binding name %q used twice in module %q", ErrDuplicateName, b.Name, mod.Name))
		}
		used[b.Name] = true
	}

	for i := range bindings {
		if bindings[i].Name != "" {
			continue
		}
		base := bindingName(bindings[i].Key)
		name := base
		for n := 2; used[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		used[name] = true
		bindings[i].Name = name
	}
}

func bindingName(k descriptor.KeyRef) string {
	name := exportedIdent(k.Type.Elem().Name())
	if name == "" {
		name = "Binding"
	}
	return name + exportedIdent(k.ShortName())
}

// exportedIdent keeps the letters and digits of s and upper-cases the first
// letter of every word.
func exportedIdent(s string) string {
	var b strings.Builder
	upper := true
	for _, c := range s {
		switch {
		case unicode.IsLetter(c) || (unicode.IsDigit(c) && b.Len() > 0):
			if upper {
				c = unicode.ToUpper(c)
				upper = false
			}
			b.WriteRune(c)
		default:
			upper = true
		}
	}
	return b.String()
}

func (r *run) checkReferences() {
	for _, c := range r.manifest.Components {
		for _, name := range c.Modules {
			if _, ok := r.modules[name]; !ok {
				r.fail(c.Position, "", fmt.Errorf("%w: component %q imports undeclared module %q", ErrUnknownReference, c.Name, name))
			}
		}
	}

	for _, m := range r.manifest.Modules {
		for _, name := range m.Imports {
			if _, ok := r.modules[name]; !ok {
				r.fail(m.Position, "", fmt.Errorf("%w: module %q imports undeclared module %q", ErrUnknownReference, m.Name, name))
			}
		}
		for _, name := range m.Scopes {
			if _, ok := r.comps[name]; !ok {
				r.fail(m.Position, "", fmt.Errorf("%w: module %q is scoped to undeclared component %q", ErrUnknownReference, m.Name, name))
			}
		}
	}

	for _, c := range r.manifest.Contracts {
		if _, ok := r.comps[c.Component]; !ok {
			r.fail(c.Position, c.Type.String(), fmt.Errorf("%w: contract %q refers to undeclared component %q", ErrUnknownReference, c.Name, c.Component))
		}
	}
}

func (r *run) checkHierarchy() {
	g := graph.NewDependencyGraph()
	for _, c := range r.manifest.Components {
		info := graph.NodeInfo{Key: graph.NodeKey(c.Name)}
		if !c.IsRoot() {
			if _, ok := r.comps[c.Parent]; !ok {
				r.fail(c.Position, "", fmt.Errorf("%w: component %q has undeclared parent %q", ErrUnknownReference, c.Name, c.Parent))
			} else {
				info.Dependencies = []graph.NodeKey{graph.NodeKey(c.Parent)}
			}
		}
		_ = g.AddNode(info)
	}

	for _, cycle := range g.Cycles() {
		c := r.manifest.Components[r.comps[string(cycle.Node)]]
		r.fail(c.Position, "", fmt.Errorf("%w: %s", ErrHierarchyCycle, formatPath(cycle.Path)))
	}
}

func (r *run) checkImports() {
	g := graph.NewDependencyGraph()
	for _, m := range r.manifest.Modules {
		info := graph.NodeInfo{Key: graph.NodeKey(m.Name)}
		for _, name := range m.Imports {
			if _, ok := r.modules[name]; ok {
				info.Dependencies = append(info.Dependencies, graph.NodeKey(name))
			}
		}
		_ = g.AddNode(info)
	}

	for _, cycle := range g.Cycles() {
		m := r.manifest.Modules[r.modules[string(cycle.Node)]]
		r.fail(m.Position, "", fmt.Errorf("%w: %s", ErrImportCycle, formatPath(cycle.Path)))
	}
}

func formatPath(path []graph.NodeKey) string {
	parts := make([]string, 0, len(path)+1)
	for _, k := range path {
		parts = append(parts, k.String())
	}
	if len(path) > 0 {
		parts = append(parts, path[0].String())
	}
	return strings.Join(parts, " -> ")
}

// installsDefault reports whether a default module goes into c without
// being imported.
func installsDefault(m descriptor.Module, c descriptor.Component) bool {
	if !m.Default {
		return false
	}
	if len(m.Scopes) == 0 {
		return c.IsRoot()
	}
	return slices.Contains(m.Scopes, c.Name)
}

// install computes the modules registered into every component: explicit
// and default modules plus everything they import.
func (r *run) install() {
	for ci := range r.manifest.Components {
		c := &r.manifest.Components[ci]

		roots := slices.Clone(c.Modules)
		for _, m := range r.manifest.Modules {
			if installsDefault(m, *c) && !slices.Contains(roots, m.Name) {
				roots = append(roots, m.Name)
			}
		}

		count := make(map[string]int)
		var stack []string
		var visit func(name string)
		visit = func(name string) {
			i, ok := r.modules[name]
			if !ok || slices.Contains(stack, name) {
				return
			}

			count[name]++
			if count[name] > 1 {
				if count[name] == 2 {
					r.fail(c.Position, "", fmt.Errorf("%w: module %q reaches component %q through more than one import", ErrRepeatedImport, name, c.Name))
				}
				return
			}

			m := r.manifest.Modules[i]
			if !m.AllowedIn(c.Name) {
				r.fail(c.Position, "", fmt.Errorf("%w: module %q is scoped to %s, not %q", ErrScopeViolation, name, strings.Join(m.Scopes, ", "), c.Name))
			}
			c.Installs = append(c.Installs, name)

			stack = append(stack, name)
			for _, imp := range m.Imports {
				visit(imp)
			}
			stack = stack[:len(stack)-1]
		}
		for _, name := range roots {
			visit(name)
		}

		r.logger.Debug("component installs resolved", zap.String("component", c.Name), zap.Strings("modules", c.Installs))
	}
}

// closure returns name followed by every module it imports, transitively,
// each once.
func (r *run) closure(name string) []string {
	var out []string
	var visit func(string)
	visit = func(n string) {
		i, ok := r.modules[n]
		if !ok || slices.Contains(out, n) {
			return
		}
		out = append(out, n)
		for _, imp := range r.manifest.Modules[i].Imports {
			visit(imp)
		}
	}
	visit(name)
	return out
}

// reportDuplicate records that modules a and b both bind key id and reports
// whether the pair is new.
func (r *run) reportDuplicate(id, a, b string) bool {
	if a > b {
		a, b = b, a
	}
	pair := id + "\x00" + a + "\x00" + b
	if r.reported[pair] {
		return false
	}
	r.reported[pair] = true
	return true
}

// checkModuleKeys requires the bindings of every module and its transitive
// imports to have distinct keys. Modules are checked whether or not a
// component installs them, as their registration functions can be called
// on their own.
func (r *run) checkModuleKeys() {
	for _, m := range r.manifest.Modules {
		bound := make(map[string]boundBinding)
		for _, name := range r.closure(m.Name) {
			mod := &r.manifest.Modules[r.modules[name]]
			for i := range mod.Bindings {
				b := &mod.Bindings[i]
				id := b.Key.ID()
				prev, dup := bound[id]
				if !dup {
					bound[id] = boundBinding{module: name, binding: b}
					continue
				}
				if !r.reportDuplicate(id, prev.module, name) {
					continue
				}

				// The closure starts with m, so its own bindings come first.
				switch prev.module {
				case name:
					r.fail(b.Position, b.Key.String(), fmt.Errorf("%w: bound twice in module %q", ErrDuplicateKey, name))
				case m.Name:
					r.fail(prev.binding.Position, b.Key.String(), fmt.Errorf("%w: module %q binds it and imports module %q, which binds it too", ErrDuplicateKey, m.Name, name))
				default:
					r.fail(m.Position, b.Key.String(), fmt.Errorf("%w: module %q imports it from both %q and %q", ErrDuplicateKey, m.Name, prev.module, name))
				}
			}
		}
	}
}

// checkKeys mirrors the write-once registry: a key may be bound once per
// component. Pairs already reported for a module are not repeated.
func (r *run) checkKeys() {
	for _, c := range r.manifest.Components {
		bound := make(map[string]boundBinding)
		for _, name := range c.Installs {
			mod := &r.manifest.Modules[r.modules[name]]
			for i := range mod.Bindings {
				b := &mod.Bindings[i]
				id := b.Key.ID()
				prev, dup := bound[id]
				switch {
				case !dup:
					bound[id] = boundBinding{module: name, binding: b}
				case r.reportDuplicate(id, prev.module, name):
					r.fail(b.Position, b.Key.String(), fmt.Errorf("%w: module %q binds it again in component %q, first bound by %s", ErrDuplicateKey, name, c.Name, prev.owner()))
				}
			}
		}
		r.bound[c.Name] = bound
	}

	// Contracts are bound in their component under the contract type.
	for _, ct := range r.manifest.Contracts {
		bound, ok := r.bound[ct.Component]
		if !ok {
			continue
		}
		key := ct.Key()
		id := key.ID()
		switch prev, dup := bound[id]; {
		case key.IsInjector():
			r.fail(ct.Position, key.String(), fmt.Errorf("%w: every injector binds itself under this key", ErrInvalidKey))
		case dup:
			r.fail(ct.Position, key.String(), fmt.Errorf("%w: contract %q binds it again in component %q, first bound by %s", ErrDuplicateKey, ct.Name, ct.Component, prev.owner()))
		default:
			bound[id] = boundBinding{contract: ct.Name, binding: &descriptor.Binding{Key: key, Position: ct.Position}}
		}
	}

	if !r.opts.StrictHierarchy {
		return
	}
	for _, c := range r.manifest.Components {
		for _, id := range sortedIDs(r.bound[c.Name]) {
			bb := r.bound[c.Name][id]
			for _, anc := range r.manifest.Ancestors(c.Name) {
				if prev, ok := r.bound[anc.Name][id]; ok {
					r.fail(bb.binding.Position, bb.binding.Key.String(), fmt.Errorf("%w: component %q shadows the binding of %s in ancestor %q", ErrDuplicateKey, c.Name, prev.owner(), anc.Name))
					break
				}
			}
		}
	}
}

func sortedIDs(bound map[string]boundBinding) []string {
	ids := make([]string, 0, len(bound))
	for id := range bound {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// satisfied reports whether a key resolves from component: it is bound
// there or in an ancestor, or it is the injector itself.
func (r *run) satisfied(component string, k descriptor.KeyRef) bool {
	if k.IsInjector() {
		return true
	}
	id := k.ID()
	if _, ok := r.bound[component][id]; ok {
		return true
	}
	for _, anc := range r.manifest.Ancestors(component) {
		if _, ok := r.bound[anc.Name][id]; ok {
			return true
		}
	}
	return false
}

func (r *run) checkDependencies() {
	for _, c := range r.manifest.Components {
		for _, id := range sortedIDs(r.bound[c.Name]) {
			b := r.bound[c.Name][id].binding
			for _, dep := range b.Edges() {
				if r.satisfied(c.Name, dep.KeyRef) {
					continue
				}
				what := "dependency"
				switch {
				case b.Alias != nil:
					what = "alias target"
				case b.Factory != nil:
					what = "factory argument"
				}
				r.fail(b.Position, b.Key.String(), fmt.Errorf("%w: %s %s is not bound in component %q or its ancestors", ErrUnsatisfied, what, dep.KeyRef, c.Name))
			}
		}
	}
}

// checkCycles looks for construction cycles. A binding resolves its
// dependencies from the injector it is registered into, so cycles are
// searched per component over the bindings registered there.
func (r *run) checkCycles() {
	for _, c := range r.manifest.Components {
		r.reportCycles(r.bound[c.Name])
	}
}

// checkModuleCycles searches the modules no component installs, together
// with their imports, for construction cycles.
func (r *run) checkModuleCycles() {
	installed := make(map[string]bool)
	for _, c := range r.manifest.Components {
		for _, name := range c.Installs {
			installed[name] = true
		}
	}

	for _, m := range r.manifest.Modules {
		if installed[m.Name] {
			continue
		}
		r.logger.Debug("module not installed by any component", zap.String("module", m.Name))

		bound := make(map[string]boundBinding)
		for _, name := range r.closure(m.Name) {
			mod := &r.manifest.Modules[r.modules[name]]
			for i := range mod.Bindings {
				b := &mod.Bindings[i]
				if _, dup := bound[b.Key.ID()]; !dup {
					bound[b.Key.ID()] = boundBinding{module: name, binding: b}
				}
			}
		}
		r.reportCycles(bound)
	}
}

// reportCycles reports the construction cycles among bound. Provider and
// lazy edges are resolved after construction and factory arguments when a
// factory method runs, so neither counts.
func (r *run) reportCycles(bound map[string]boundBinding) {
	g := graph.NewDependencyGraph()
	for _, id := range sortedIDs(bound) {
		b := bound[id].binding
		info := graph.NodeInfo{Key: graph.NodeKey(id), Scope: b.Scope.String()}
		if b.Factory == nil {
			for _, dep := range b.Edges() {
				if dep.Converter.BreaksCycles() {
					continue
				}
				if depID := dep.ID(); bound[depID].binding != nil {
					info.Dependencies = append(info.Dependencies, graph.NodeKey(depID))
				}
			}
		}
		_ = g.AddNode(info)
	}

	for _, cycle := range g.Cycles() {
		b := bound[string(cycle.Node)].binding
		r.fail(b.Position, b.Key.String(), fmt.Errorf("%w: %s", ErrDependencyCycle, formatPath(cycle.Path)))
	}
}

// checkTargets requires every injection target to be fully satisfiable
// from at least one leaf component.
func (r *run) checkTargets() {
	var leaves []string
	for _, c := range r.manifest.Components {
		if len(r.manifest.Children(c.Name)) == 0 {
			leaves = append(leaves, c.Name)
		}
	}

	type candidate struct {
		component string
		missing   []string
	}

	for _, t := range r.manifest.Targets {
		if len(leaves) == 0 {
			r.fail(t.Position, t.Type.String(), fmt.Errorf("%w: no components are declared", ErrUnsatisfied))
			continue
		}

		var best []candidate
		found := false
		for _, leaf := range leaves {
			var missing []string
			for _, dep := range t.Dependencies() {
				if !r.satisfied(leaf, dep.KeyRef) && !slices.Contains(missing, dep.KeyRef.String()) {
					missing = append(missing, dep.KeyRef.String())
				}
			}
			if len(missing) == 0 {
				found = true
				break
			}
			switch {
			case len(best) == 0 || len(missing) < len(best[0].missing):
				best = []candidate{{leaf, missing}}
			case len(missing) == len(best[0].missing):
				best = append(best, candidate{leaf, missing})
			}
		}
		if found {
			continue
		}

		parts := make([]string, len(best))
		for i, cand := range best {
			parts[i] = fmt.Sprintf("%s misses %s", cand.component, strings.Join(cand.missing, ", "))
		}
		r.fail(t.Position, t.Type.String(), fmt.Errorf("%w: no leaf component satisfies the target; closest: %s", ErrUnsatisfied, strings.Join(parts, "; ")))
	}
}

// checkContracts requires every method of a contract to resolve from its
// component.
func (r *run) checkContracts() {
	for _, ct := range r.manifest.Contracts {
		if _, ok := r.comps[ct.Component]; !ok {
			continue
		}
		for _, m := range ct.Methods {
			if !r.satisfied(ct.Component, m.KeyRef) {
				r.fail(ct.Position, ct.Type.String(), fmt.Errorf("%w: contract method %s needs %s, which is not bound in component %q or its ancestors", ErrUnsatisfied, m.Name, m.KeyRef, ct.Component))
			}
		}
	}
}
