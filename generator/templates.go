package generator

import "text/template"

var templates = template.Must(template.New("saber").Parse(`
{{- define "header" -}}
// Code generated by sabergen. DO NOT EDIT.
{{- range .Header}}
// {{.}}
{{- end}}

package {{.Package}}

import (
{{- range .Imports}}
	{{.Alias}} {{printf "%q" .Path}}
{{- end}}
)
{{end}}

{{- define "keys" -}}
{{template "header" .}}
var (
{{- range .Keys}}
	// {{.Name}} identifies {{.Display}}.
	{{.Name}} = {{.Expr}}
{{- end}}
)
{{end}}

{{- define "module" -}}
{{template "header" .}}
{{- range .Providers}}
// {{.Type}} builds {{.Display}} with {{.Recipe}}.
type {{.Type}} struct {
	inj *saber.Injector
}

// Provide implements saber.Provider.
func (p *{{.Type}}) Provide() (any, error) {
{{- range .Deps}}
	{{.Var}}, err := {{.Expr}}
	if err != nil {
		return nil, err
	}
{{- end}}
{{- if .ReturnsError}}
	v, err := {{.Call}}
	if err != nil {
		return nil, err
	}
	return v, nil
{{- else}}
	return {{.Call}}, nil
{{- end}}
}
{{end}}
{{- range $f := .Factories}}
// {{$f.Type}} implements {{$f.Display}}.
type {{$f.Type}} struct {
	inj *saber.Injector
}

var _ {{$f.Interface}} = (*{{$f.Type}})(nil)
{{range $f.Methods}}
// {{.Name}} builds {{.Display}} with {{.Recipe}}.
func (f *{{$f.Type}}) {{.Name}}({{.Params}}) (v {{.Result}}, err error) {
{{- range .Deps}}
	{{.Var}}, err := {{.Expr}}
	if err != nil {
		return v, err
	}
{{- end}}
{{- if .ReturnsError}}
	if v, err = {{.Call}}; err != nil {
		return v, err
	}
{{- else}}
	v = {{.Call}}
{{- end}}
{{- if .InjectMembers}}
	if err = f.inj.InjectMembers(v); err != nil {
		return nil, err
	}
{{- end}}
	return v, nil
}
{{end}}
{{- end}}
// {{.Register}} registers the bindings of module {{.Module}}.
func {{.Register}}(inj *saber.Injector) error {
{{- range .Registrations}}
	if err := inj.Register({{.Key}}, {{.Provider}}); err != nil {
		return err
	}
{{- end}}
	return nil
}
{{end}}

{{- define "components" -}}
{{template "header" .}}
{{- range .Components}}
// {{.Type}} configures the {{.Name}} injector
{{- if .Parent}}, a child of {{.Parent}}{{end}}.
type {{.Type}} struct{}

var _ saber.Configurator = {{.Type}}{}

// Configure implements saber.Configurator.
func ({{.Type}}) Configure(inj *saber.Injector) error {
{{- if .Registers}}
	for _, register := range []func(*saber.Injector) error{
{{- range .Registers}}
		{{.}},
{{- end}}
	} {
		if err := register(inj); err != nil {
			return err
		}
	}
{{- end}}
{{- range .Targets}}
	if err := saber.BindMembersInjector[{{.Type}}](inj, {{.Func}}); err != nil {
		return err
	}
{{- end}}
{{- range .Contracts}}
	if err := inj.Register({{.Key}}, saber.ValueProvider(&{{.Type}}{inj: inj})); err != nil {
		return err
	}
{{- end}}
	return nil
}
{{end}}
{{- range $c := .Contracts}}
// {{$c.Type}} implements {{$c.Display}} for {{$c.Component}} injectors.
type {{$c.Type}} struct {
	inj *saber.Injector
}

var _ {{$c.Interface}} = (*{{$c.Type}})(nil)

// {{$c.Constructor}} returns the {{$c.Name}} contract of inj.
func {{$c.Constructor}}(inj *saber.Injector) {{$c.Interface}} {
	return &{{$c.Type}}{inj: inj}
}
{{range $c.Methods}}
func (c *{{$c.Type}}) {{.Name}}() ({{.Result}}, error) {
	return {{.Expr}}
}
{{end}}
{{- end}}
{{- range .Targets}}
// {{.Func}} injects the members of {{.Display}}.
func {{.Func}}(inj *saber.Injector, target {{.Type}}) error {
{{- range .Fields}}
	{{.Var}}, err := {{.Expr}}
	if err != nil {
		return err
	}
	target.{{.Name}} = {{.Var}}
{{- end}}
{{- range .Methods}}
{{- range .Args}}
	{{.Var}}, err := {{.Expr}}
	if err != nil {
		return err
	}
{{- end}}
	target.{{.Name}}({{.Call}})
{{- end}}
	return nil
}
{{end}}
{{- end}}
`))
