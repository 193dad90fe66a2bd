package reflection

import (
	"fmt"
	"reflect"
)

// Resolver supplies the value of one dependency.
type Resolver interface {
	Resolve(t reflect.Type, name string) (any, error)
}

// Invoker calls analyzed constructors with resolved arguments.
type Invoker struct {
	Resolver Resolver

	// IsMissing reports whether a resolution error means the dependency is
	// unbound. Only such errors are tolerated for optional fields.
	IsMissing func(error) bool
}

// Invoke calls the constructor described by info and returns its result.
func (iv Invoker) Invoke(fn reflect.Value, info *ConstructorInfo) (any, error) {
	args, err := iv.buildArguments(info)
	if err != nil {
		return nil, err
	}

	out := fn.Call(args)
	if info.HasErrorReturn {
		if errVal := out[1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
	}

	return out[0].Interface(), nil
}

func (iv Invoker) buildArguments(info *ConstructorInfo) ([]reflect.Value, error) {
	if info.IsParamObject {
		obj, err := iv.buildParamObject(info)
		if err != nil {
			return nil, err
		}
		return []reflect.Value{obj}, nil
	}

	args := make([]reflect.Value, len(info.Parameters))
	for i, param := range info.Parameters {
		v, err := iv.resolveParameter(param)
		if err != nil {
			return nil, fmt.Errorf("parameter %d (%v): %w", param.Index, param.Type, err)
		}
		args[i] = v
	}
	return args, nil
}

func (iv Invoker) buildParamObject(info *ConstructorInfo) (reflect.Value, error) {
	obj := reflect.New(info.Type.In(0)).Elem()

	for _, param := range info.Parameters {
		v, err := iv.resolveParameter(param)
		if err != nil {
			if param.Optional && iv.IsMissing != nil && iv.IsMissing(err) {
				continue
			}
			return reflect.Value{}, fmt.Errorf("field %s: %w", param.Field, err)
		}
		obj.Field(param.Index).Set(v)
	}

	return obj, nil
}

func (iv Invoker) resolveParameter(param ParameterInfo) (reflect.Value, error) {
	instance, err := iv.Resolver.Resolve(param.Type, param.Name)
	if err != nil {
		return reflect.Value{}, err
	}

	if instance == nil {
		return reflect.Zero(param.Type), nil
	}
	v := reflect.ValueOf(instance)
	if !v.Type().AssignableTo(param.Type) {
		return reflect.Value{}, fmt.Errorf("resolved %v is not assignable to %v", v.Type(), param.Type)
	}
	return v, nil
}
