package saber

import (
	"fmt"
	"reflect"

	"github.com/junioryono/saber/internal/reflection"
)

// In marks a parameter object for ProvideConstructor. Each exported field of
// a struct embedding In is resolved as a dependency. Fields accept the tags
// name:"..." (resolve the Named key), optional:"true" (leave the field zero
// when the key is unbound) and inject:"-" (skip the field).
//
// Example:
//
//	type ServiceParams struct {
//	    saber.In
//
//	    DB    *sql.DB `name:"primary"`
//	    Cache Cache   `optional:"true"`
//	}
type In = reflection.In

var constructors = reflection.New()

// ProvideConstructor binds the result type of ctor in inj. The constructor
// has the form func(deps...) T or func(deps...) (T, error); each parameter is
// resolved from inj by its unqualified type when the provider runs. A single
// parameter object embedding In resolves its fields instead.
//
// Example:
//
//	err := saber.ProvideConstructor(inj, NewService, saber.AsSingleton())
func ProvideConstructor(inj *Injector, ctor any, opts ...BindOption) error {
	info, err := constructors.Analyze(ctor)
	if err != nil {
		return fmt.Errorf("analyze constructor: %w", err)
	}

	o := &bindOptions{}
	for _, opt := range opts {
		opt.applyBindOption(o)
	}

	var p Provider = &constructorProvider{
		fn:   reflect.ValueOf(ctor),
		info: info,
		invoker: reflection.Invoker{
			Resolver:  injectorResolver{inj: inj},
			IsMissing: IsNotFound,
		},
	}
	if o.singleton {
		p = Singleton(p)
	}

	return inj.Register(QualifiedKey(TypeFor(info.Result), o.qualifier), p)
}

type constructorProvider struct {
	fn      reflect.Value
	info    *reflection.ConstructorInfo
	invoker reflection.Invoker
}

func (p *constructorProvider) Provide() (any, error) {
	return p.invoker.Invoke(p.fn, p.info)
}

// injectorResolver resolves constructor parameters through an injector.
type injectorResolver struct {
	inj *Injector
}

func (r injectorResolver) Resolve(t reflect.Type, name string) (any, error) {
	typ := TypeFor(t)
	if name == "" {
		return r.inj.GetTypeInstance(typ)
	}
	return r.inj.GetInstance(QualifiedKey(typ, Named(name)))
}
