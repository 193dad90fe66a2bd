// Package generator turns a validated descriptor.Manifest into Go source:
// one Key variable per key, one Provider type per binding, a registration
// routine per module and a saber.Configurator per component. Factory
// bindings and contracts get a generated implementation of their interface.
//
// The generated code only depends on the saber runtime package and on the
// packages of the recipes and types it names.
package generator

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/junioryono/saber/descriptor"
	"golang.org/x/tools/imports"
)

// DefaultSaberImport is the import path of the runtime package.
const DefaultSaberImport = "github.com/junioryono/saber"

// Generated file names.
const (
	KeysFile       = "keys_saber.go"
	ComponentsFile = "components_saber.go"
)

// generatedMarker starts every generated file.
const generatedMarker = "// Code generated by sabergen. DO NOT EDIT."

// Options configures a Generator.
type Options struct {
	// Package is the package name of the generated files. Defaults to "di".
	Package string

	// Header is added as a comment below the generated-code marker.
	Header string

	// SaberImport overrides the import path of the runtime package.
	SaberImport string
}

// File is one generated source file.
type File struct {
	Name    string
	Content []byte
}

// GenerationError reports a failure to generate one file.
type GenerationError struct {
	File  string
	Cause error
}

func (e GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.File, e.Cause)
}

func (e GenerationError) Unwrap() error {
	return e.Cause
}

// ErrInvalidPackage is returned for package names that are not identifiers.
var ErrInvalidPackage = errors.New("invalid package name")

// Generator renders manifests.
type Generator struct {
	opts Options
}

// New creates a Generator.
func New(opts Options) *Generator {
	if opts.Package == "" {
		opts.Package = "di"
	}
	if opts.SaberImport == "" {
		opts.SaberImport = DefaultSaberImport
	}
	return &Generator{opts: opts}
}

// Generate renders m. The manifest is sorted in place first, so that equal
// manifests produce byte-identical files. Files are returned sorted by name.
func (g *Generator) Generate(m *descriptor.Manifest) ([]File, error) {
	if m == nil {
		return nil, errors.New("generate: nil manifest")
	}
	if !token.IsIdentifier(g.opts.Package) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPackage, g.opts.Package)
	}
	m.Sort()

	r := &render{opts: g.opts, manifest: m}
	if err := r.nameKeys(); err != nil {
		return nil, GenerationError{File: KeysFile, Cause: err}
	}

	var files []File
	add := func(name, tmpl string, data fileData) error {
		content, err := r.execute(name, tmpl, data)
		if err != nil {
			return GenerationError{File: name, Cause: err}
		}
		files = append(files, File{Name: name, Content: content})
		return nil
	}

	keys, err := r.keysData()
	if err != nil {
		return nil, GenerationError{File: KeysFile, Cause: err}
	}
	if err := add(KeysFile, "keys", keys); err != nil {
		return nil, err
	}

	for _, mod := range m.Modules {
		name := r.moduleFile(mod.Name)
		data, err := r.moduleData(mod)
		if err != nil {
			return nil, GenerationError{File: name, Cause: err}
		}
		if err := add(name, "module", data); err != nil {
			return nil, err
		}
	}

	comps, err := r.componentsData()
	if err != nil {
		return nil, GenerationError{File: ComponentsFile, Cause: err}
	}
	if err := add(ComponentsFile, "components", comps); err != nil {
		return nil, err
	}

	slices.SortFunc(files, func(a, b File) int { return strings.Compare(a.Name, b.Name) })
	return files, nil
}

// WriteFiles writes files into dir and removes generated files left over
// from an earlier run.
func WriteFiles(dir string, files []File) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	stale, err := filepath.Glob(filepath.Join(dir, "*_saber.go"))
	if err != nil {
		return err
	}
	for _, path := range stale {
		name := filepath.Base(path)
		if slices.ContainsFunc(files, func(f File) bool { return f.Name == name }) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if bytes.HasPrefix(data, []byte(generatedMarker)) {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Content, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// render holds the naming state of one Generate call.
type render struct {
	opts     Options
	manifest *descriptor.Manifest

	keyVars map[string]string // key id -> variable name
}

type fileData struct {
	Header  []string
	Package string
	Imports []importSpec

	Keys []keyData

	Module        string
	Register      string
	Providers     []providerData
	Factories     []factoryData
	Registrations []registrationData

	Components []componentData
	Targets    []targetData
	Contracts  []contractData
}

type keyData struct {
	Name    string
	Display string
	Expr    string
}

type providerData struct {
	Type         string
	Display      string
	Recipe       string
	Deps         []argData
	Call         string
	ReturnsError bool
}

type factoryData struct {
	Type      string
	Display   string
	Interface string
	Methods   []factoryMethodData
}

type factoryMethodData struct {
	Name          string
	Display       string
	Recipe        string
	Params        string
	Result        string
	Deps          []argData
	Call          string
	ReturnsError  bool
	InjectMembers bool
}

type contractData struct {
	Name        string
	Type        string
	Display     string
	Interface   string
	Constructor string
	Component   string
	Key         string
	Methods     []contractMethodData
}

type contractMethodData struct {
	Name   string
	Result string
	Expr   string
}

type argData struct {
	Var  string
	Expr string
}

type registrationData struct {
	Key      string
	Provider string
}

type componentData struct {
	Name      string
	Type      string
	Parent    string
	Registers []string
	Targets   []targetData
	Contracts []contractData
}

type targetData struct {
	Func    string
	Type    string
	Display string
	Fields  []fieldData
	Methods []methodData
}

type fieldData struct {
	Name string
	argData
}

type methodData struct {
	Name string
	Args []argData
	Call string
}

func (r *render) header(imports *importSet) fileData {
	var header []string
	if h := strings.TrimSpace(r.opts.Header); h != "" {
		header = strings.Split(h, "\n")
	}
	return fileData{Header: header, Package: r.opts.Package, Imports: imports.specs()}
}

func (r *render) execute(name, tmpl string, data fileData) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return nil, err
	}
	out, err := imports.Process(name, buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8})
	if err != nil {
		return nil, fmt.Errorf("format: %w\n%s", err, buf.Bytes())
	}
	return out, nil
}

// keyRefs returns every key the manifest mentions.
func (r *render) keyRefs() []descriptor.KeyRef {
	var keys []descriptor.KeyRef
	for _, mod := range r.manifest.Modules {
		for _, b := range mod.Bindings {
			keys = append(keys, b.Key)
			for _, dep := range b.Edges() {
				keys = append(keys, dep.KeyRef)
			}
		}
	}
	for _, t := range r.manifest.Targets {
		for _, dep := range t.Dependencies() {
			keys = append(keys, dep.KeyRef)
		}
	}
	for _, ct := range r.manifest.Contracts {
		keys = append(keys, ct.Key())
		for _, m := range ct.Methods {
			keys = append(keys, m.KeyRef)
		}
	}

	slices.SortFunc(keys, func(a, b descriptor.KeyRef) int { return strings.Compare(a.ID(), b.ID()) })
	return slices.CompactFunc(keys, func(a, b descriptor.KeyRef) bool { return a.ID() == b.ID() })
}

// nameKeys assigns one exported variable per distinct key.
func (r *render) nameKeys() error {
	r.keyVars = make(map[string]string)
	used := make(map[string]bool)

	for _, k := range r.keyRefs() {
		if err := k.Validate(); err != nil {
			return fmt.Errorf("key %s: %w", k, err)
		}
		base := "Key" + exportedIdent(k.Type.Elem().Name()) + exportedIdent(k.ShortName())
		name := base
		for n := 2; used[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		used[name] = true
		r.keyVars[k.ID()] = name
	}
	return nil
}

func (r *render) keyVar(k descriptor.KeyRef) string {
	return r.keyVars[k.ID()]
}

func (r *render) keysData() (fileData, error) {
	refs := r.keyRefs()

	var paths []string
	for _, k := range refs {
		paths = append(paths, k.Packages()...)
	}
	imps := newImportSet(r.opts.SaberImport, paths)

	data := r.header(imps)
	for _, k := range refs {
		expr, err := imps.keyExpr(k)
		if err != nil {
			return fileData{}, err
		}
		data.Keys = append(data.Keys, keyData{Name: r.keyVar(k), Display: k.String(), Expr: expr})
	}
	return data, nil
}

func (r *render) moduleFile(name string) string {
	base := fileBase(name)
	if file := base + "_saber.go"; file != KeysFile && file != ComponentsFile {
		return file
	}
	return base + "_module_saber.go"
}

func registerFunc(module string) string {
	return "Register" + exportedIdent(module)
}

func providerType(module string, b descriptor.Binding) string {
	return unexportedIdent(module) + exportedIdent(b.Name) + "Provider"
}

func factoryType(module string, b descriptor.Binding) string {
	return unexportedIdent(module) + exportedIdent(b.Name) + "Factory"
}

// isTarget reports whether t has members injected after construction.
func (r *render) isTarget(t descriptor.TypeRef) bool {
	return slices.ContainsFunc(r.manifest.Targets, func(target descriptor.Target) bool {
		return target.Type.String() == t.String()
	})
}

// dependencyExpr renders the resolution of one dependency from inj.
func dependencyExpr(imps *importSet, inj, keyVar string, dep descriptor.Dependency) string {
	typ := imps.typeExpr(dep.Type)
	switch dep.Converter {
	case descriptor.ProviderOf:
		return fmt.Sprintf("saber.FactoryOf[%s](%s, %s)", typ, inj, keyVar)
	case descriptor.LazyOf:
		return fmt.Sprintf("saber.LazyOf[%s](%s, %s)", typ, inj, keyVar)
	default:
		return fmt.Sprintf("saber.Instance[%s](%s, %s)", typ, inj, keyVar)
	}
}

func (r *render) moduleData(mod descriptor.Module) (fileData, error) {
	var paths []string
	for _, b := range mod.Bindings {
		if b.Recipe == nil {
			continue
		}
		paths = append(paths, b.Recipe.Package)
		for _, dep := range b.Dependencies {
			paths = append(paths, dep.Type.Packages()...)
		}
	}
	for _, b := range mod.Bindings {
		if b.Factory == nil {
			continue
		}
		paths = append(paths, b.Key.Type.Packages()...)
		for _, m := range b.Factory.Methods {
			paths = append(paths, m.Recipe.Package)
			paths = append(paths, m.Result.Packages()...)
			for _, arg := range m.Arguments {
				paths = append(paths, arg.Type.Packages()...)
			}
		}
	}
	imps := newImportSet(r.opts.SaberImport, paths)

	data := r.header(imps)
	data.Module = mod.Name
	data.Register = registerFunc(mod.Name)

	types := make(map[string]bool)
	for _, b := range mod.Bindings {
		if b.Name == "" || !token.IsIdentifier(b.Name) {
			return fileData{}, fmt.Errorf("binding %s: invalid name %q", b.Key, b.Name)
		}

		var provider string
		switch {
		case b.Alias != nil:
			provider = fmt.Sprintf("saber.Alias(inj, %s)", r.keyVar(*b.Alias))

		case b.Recipe != nil:
			typ := providerType(mod.Name, b)
			if types[typ] {
				return fileData{}, fmt.Errorf("binding %s: provider type %s generated twice", b.Key, typ)
			}
			types[typ] = true

			p := providerData{
				Type:         typ,
				Display:      b.Key.String(),
				Recipe:       b.Recipe.String(),
				ReturnsError: b.Recipe.ReturnsError,
			}
			args := make([]string, len(b.Dependencies))
			for i, dep := range b.Dependencies {
				v := "d" + strconv.Itoa(i)
				p.Deps = append(p.Deps, argData{Var: v, Expr: dependencyExpr(imps, "p.inj", r.keyVar(dep.KeyRef), dep)})
				args[i] = v
			}
			p.Call = fmt.Sprintf("%s.%s(%s)", imps.alias(b.Recipe.Package), b.Recipe.Func, strings.Join(args, ", "))
			data.Providers = append(data.Providers, p)
			provider = "&" + typ + "{inj: inj}"

		case b.Factory != nil:
			typ := factoryType(mod.Name, b)
			if types[typ] {
				return fileData{}, fmt.Errorf("binding %s: factory type %s generated twice", b.Key, typ)
			}
			types[typ] = true

			data.Factories = append(data.Factories, r.factoryData(imps, typ, b))
			provider = "saber.ValueProvider(&" + typ + "{inj: inj})"

		default:
			return fileData{}, fmt.Errorf("binding %s has neither a recipe, an alias nor a factory", b.Key)
		}

		if b.Scope == descriptor.Singleton {
			provider = "saber.Singleton(" + provider + ")"
		}
		data.Registrations = append(data.Registrations, registrationData{Key: r.keyVar(b.Key), Provider: provider})
	}
	return data, nil
}

// factoryData renders one factory binding. Assisted arguments become the
// method parameters a0, a1, ... and the others are resolved per call.
func (r *render) factoryData(imps *importSet, typ string, b descriptor.Binding) factoryData {
	fd := factoryData{Type: typ, Display: b.Key.Type.String(), Interface: imps.typeExpr(b.Key.Type)}
	for _, m := range b.Factory.Methods {
		md := factoryMethodData{
			Name:          m.Name,
			Display:       m.Result.String(),
			Recipe:        m.Recipe.String(),
			Result:        imps.typeExpr(m.Result),
			ReturnsError:  m.Recipe.ReturnsError,
			InjectMembers: r.isTarget(m.Result),
		}

		var params, args []string
		for _, arg := range m.Arguments {
			if arg.Assisted {
				v := "a" + strconv.Itoa(len(params))
				params = append(params, v+" "+imps.typeExpr(arg.Type))
				args = append(args, v)
				continue
			}
			v := "d" + strconv.Itoa(len(md.Deps))
			md.Deps = append(md.Deps, argData{Var: v, Expr: dependencyExpr(imps, "f.inj", r.keyVar(arg.KeyRef), arg.Dependency)})
			args = append(args, v)
		}
		md.Params = strings.Join(params, ", ")
		md.Call = fmt.Sprintf("%s.%s(%s)", imps.alias(m.Recipe.Package), m.Recipe.Func, strings.Join(args, ", "))
		fd.Methods = append(fd.Methods, md)
	}
	return fd
}

// contractResult is the Go result type of a contract method.
func contractResult(imps *importSet, dep descriptor.Dependency) string {
	typ := imps.typeExpr(dep.Type)
	switch dep.Converter {
	case descriptor.ProviderOf:
		return "saber.Factory[" + typ + "]"
	case descriptor.LazyOf:
		return "*saber.Lazy[" + typ + "]"
	default:
		return typ
	}
}

func (r *render) componentsData() (fileData, error) {
	var paths []string
	for _, t := range r.manifest.Targets {
		paths = append(paths, t.Type.Packages()...)
		for _, dep := range t.Dependencies() {
			paths = append(paths, dep.Type.Packages()...)
		}
	}
	for _, ct := range r.manifest.Contracts {
		paths = append(paths, ct.Type.Packages()...)
		for _, m := range ct.Methods {
			paths = append(paths, m.Type.Packages()...)
		}
	}
	imps := newImportSet(r.opts.SaberImport, paths)
	data := r.header(imps)

	funcs := make(map[string]bool)
	for _, t := range r.manifest.Targets {
		base := "inject" + exportedIdent(t.Type.Elem().Name())
		name := base
		for n := 2; funcs[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		funcs[name] = true

		td := targetData{Func: name, Type: imps.typeExpr(t.Type), Display: t.Type.String()}
		for i, f := range t.Fields {
			v := "f" + strconv.Itoa(i)
			td.Fields = append(td.Fields, fieldData{
				Name:    f.Name,
				argData: argData{Var: v, Expr: dependencyExpr(imps, "inj", r.keyVar(f.KeyRef), f.Dependency)},
			})
		}
		n := 0
		for _, m := range t.Methods {
			md := methodData{Name: m.Name}
			vars := make([]string, len(m.Dependencies))
			for i, dep := range m.Dependencies {
				v := "m" + strconv.Itoa(n)
				n++
				md.Args = append(md.Args, argData{Var: v, Expr: dependencyExpr(imps, "inj", r.keyVar(dep.KeyRef), dep)})
				vars[i] = v
			}
			md.Call = strings.Join(vars, ", ")
			td.Methods = append(td.Methods, md)
		}
		data.Targets = append(data.Targets, td)
	}

	types := make(map[string]bool)
	contracts := make(map[string][]contractData)
	for _, ct := range r.manifest.Contracts {
		cd := contractData{
			Name:        ct.Name,
			Type:        unexportedIdent(ct.Name) + "Contract",
			Display:     ct.Type.String(),
			Interface:   imps.typeExpr(ct.Type),
			Constructor: "New" + exportedIdent(ct.Name) + "Contract",
			Component:   ct.Component,
			Key:         r.keyVar(ct.Key()),
		}
		for _, name := range []string{cd.Type, cd.Constructor} {
			if types[name] {
				return fileData{}, fmt.Errorf("contract %s: %s generated twice", ct.Name, name)
			}
			types[name] = true
		}
		for _, m := range ct.Methods {
			cd.Methods = append(cd.Methods, contractMethodData{
				Name:   m.Name,
				Result: contractResult(imps, m.Dependency),
				Expr:   dependencyExpr(imps, "c.inj", r.keyVar(m.KeyRef), m.Dependency),
			})
		}
		data.Contracts = append(data.Contracts, cd)
		contracts[ct.Component] = append(contracts[ct.Component], cd)
	}

	for _, c := range r.manifest.Components {
		typ := exportedIdent(c.Name) + "Component"
		if types[typ] {
			return fileData{}, fmt.Errorf("component %s: type %s generated twice", c.Name, typ)
		}
		types[typ] = true

		cd := componentData{Name: c.Name, Type: typ, Parent: c.Parent}
		for _, mod := range c.Installs {
			cd.Registers = append(cd.Registers, registerFunc(mod))
		}
		if c.IsRoot() {
			cd.Targets = data.Targets
		}
		cd.Contracts = contracts[c.Name]
		data.Components = append(data.Components, cd)
	}
	return data, nil
}
