// Package reflection analyzes constructor functions so they can be bound
// without a generated provider.
package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// In marks a parameter object. A constructor whose single parameter is a
// struct embedding In has each exported field resolved as a dependency.
type In struct{}

var (
	inType  = reflect.TypeOf(In{})
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

var (
	ErrConstructorNil     = errors.New("constructor cannot be nil")
	ErrNotFunc            = errors.New("constructor must be a function")
	ErrInvalidReturns     = errors.New("constructor must return (T) or (T, error)")
	ErrVariadic           = errors.New("constructor cannot be variadic")
	ErrParamObjectPointer = errors.New("parameter object must be passed by value")
)

// Analyzer performs reflection-based analysis of constructors.
// It caches analysis results per function type.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*ConstructorInfo
}

// ConstructorInfo contains analyzed information about a constructor function.
type ConstructorInfo struct {
	Type           reflect.Type
	Result         reflect.Type
	Parameters     []ParameterInfo
	IsParamObject  bool // Single In struct parameter
	HasErrorReturn bool // Returns error as last value
}

// ParameterInfo describes a constructor parameter or a field of an In struct.
type ParameterInfo struct {
	Type     reflect.Type
	Field    string // Field name for In structs
	Name     string // From name:"key" tag
	Optional bool   // From optional:"true" tag
	Index    int    // Parameter index or field index
}

// TagInfo contains parsed struct tag information.
type TagInfo struct {
	Optional bool
	Name     string
	Ignore   bool
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache: make(map[reflect.Type]*ConstructorInfo),
	}
}

// Analyze analyzes a constructor function and extracts its dependencies and
// result type.
func (a *Analyzer) Analyze(constructor any) (*ConstructorInfo, error) {
	if constructor == nil {
		return nil, ErrConstructorNil
	}

	val := reflect.ValueOf(constructor)
	typ := val.Type()
	if typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %v", ErrNotFunc, typ)
	}
	if val.IsNil() {
		return nil, ErrConstructorNil
	}

	a.mu.RLock()
	cached, ok := a.cache[typ]
	a.mu.RUnlock()
	if ok {
		return cached, nil
	}

	info := &ConstructorInfo{Type: typ}
	if err := analyzeReturns(info); err != nil {
		return nil, err
	}
	if err := analyzeParameters(info); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.cache[typ] = info
	a.mu.Unlock()

	return info, nil
}

// CacheSize returns the number of cached analyses.
func (a *Analyzer) CacheSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

func analyzeReturns(info *ConstructorInfo) error {
	fnType := info.Type

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errType {
			return fmt.Errorf("%w, got %v", ErrInvalidReturns, fnType)
		}
		info.HasErrorReturn = true
	default:
		return fmt.Errorf("%w, got %v", ErrInvalidReturns, fnType)
	}

	if fnType.Out(0) == errType {
		return fmt.Errorf("%w, got %v", ErrInvalidReturns, fnType)
	}
	info.Result = fnType.Out(0)
	return nil
}

func analyzeParameters(info *ConstructorInfo) error {
	fnType := info.Type
	if fnType.IsVariadic() {
		return ErrVariadic
	}

	if fnType.NumIn() == 1 {
		paramType := fnType.In(0)
		if paramType.Kind() == reflect.Pointer && hasEmbeddedIn(paramType.Elem()) {
			return ErrParamObjectPointer
		}
		if hasEmbeddedIn(paramType) {
			info.IsParamObject = true
			info.Parameters = paramObjectFields(paramType)
			return nil
		}
	}

	info.Parameters = make([]ParameterInfo, fnType.NumIn())
	for i := range info.Parameters {
		info.Parameters[i] = ParameterInfo{Type: fnType.In(i), Index: i}
	}
	return nil
}

func paramObjectFields(structType reflect.Type) []ParameterInfo {
	params := make([]ParameterInfo, 0, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if !field.IsExported() {
			continue
		}
		if field.Anonymous && field.Type == inType {
			continue
		}

		tagInfo := ParseFieldTags(field.Tag)
		if tagInfo.Ignore {
			continue
		}

		params = append(params, ParameterInfo{
			Type:     field.Type,
			Field:    field.Name,
			Name:     tagInfo.Name,
			Optional: tagInfo.Optional,
			Index:    i,
		})
	}

	return params
}

// ParseFieldTags parses the injection tags of a struct field.
func ParseFieldTags(tag reflect.StructTag) TagInfo {
	info := TagInfo{}

	if val, ok := tag.Lookup("optional"); ok {
		info.Optional = val == "true"
	}
	if val, ok := tag.Lookup("name"); ok {
		info.Name = val
	}
	if val, ok := tag.Lookup("inject"); ok && val == "-" {
		info.Ignore = true
	}

	return info
}

// hasEmbeddedIn reports whether t is a struct embedding In.
func hasEmbeddedIn(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type == inType {
			return true
		}
	}

	return false
}
