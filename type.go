package saber

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Type is a structural descriptor of a requested contract: a tag plus an
// ordered list of type arguments.
//
// Types are identified by a canonical Go-syntax string that spells out full
// package paths, for example "*github.com/acme/app.Config" or
// "github.com/acme/app.List[string]". Two Types are equal when their canonical
// strings are equal, so List[string] and List[int] are different keys while
// NewType("pkg.List", NewType("string")) and TypeOf[pkg.List[string]]() are
// the same one.
type Type struct {
	tag  string
	args []Type
	id   string
}

// Composite tags understood by NewType.
const (
	TagPointer = "*"
	TagSlice   = "[]"
	TagMap     = "map"
	TagChan    = "chan"
	TagRecvDir = "<-chan"
	TagSendDir = "chan<-"
)

// NewType creates a Type from a tag and its type arguments.
//
// Named types use their package-qualified name as tag ("github.com/acme/app.Config"),
// predeclared types use the bare name ("string", "error"). The composite tags
// TagPointer, TagSlice, TagMap and the channel tags, as well as array tags of the
// form "[N]", take their element types as arguments.
func NewType(tag string, args ...Type) Type {
	if tag == "" {
		panic(ErrTypeTagEmpty)
	}

	t := Type{tag: tag}
	if len(args) > 0 {
		t.args = make([]Type, len(args))
		copy(t.args, args)
	}
	t.id = t.canonical()
	return t
}

func (t Type) canonical() string {
	switch {
	case len(t.args) == 0:
		return t.tag
	case (t.tag == TagPointer || t.tag == TagSlice || isArrayTag(t.tag)) && len(t.args) == 1:
		return t.tag + t.args[0].id
	case (t.tag == TagChan || t.tag == TagRecvDir || t.tag == TagSendDir) && len(t.args) == 1:
		return t.tag + " " + t.args[0].id
	case t.tag == TagMap && len(t.args) == 2:
		return "map[" + t.args[0].id + "]" + t.args[1].id
	}

	var b strings.Builder
	b.WriteString(t.tag)
	b.WriteByte('[')
	for i, arg := range t.args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(arg.id)
	}
	b.WriteByte(']')
	return b.String()
}

func isArrayTag(tag string) bool {
	return len(tag) > 2 && tag[0] == '[' && tag[len(tag)-1] == ']'
}

// Tag returns the tag the type was built from.
func (t Type) Tag() string { return t.tag }

// Args returns a copy of the type arguments.
func (t Type) Args() []Type {
	if len(t.args) == 0 {
		return nil
	}
	out := make([]Type, len(t.args))
	copy(out, t.args)
	return out
}

// ID returns the canonical identity string of the type.
func (t Type) ID() string { return t.id }

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool { return t.id == "" }

// Equal reports whether two types describe the same contract.
func (t Type) Equal(other Type) bool { return t.id == other.id }

func (t Type) String() string {
	if t.id == "" {
		return "<nil>"
	}
	return t.id
}

// typeCache memoizes reflect.Type to Type conversions.
var typeCache sync.Map // map[reflect.Type]Type

// TypeOf returns the Type describing T.
//
//	saber.TypeOf[*Config]()          // *github.com/acme/app.Config
//	saber.TypeOf[[]string]()         // []string
//	saber.TypeOf[map[string]*User]() // map[string]*github.com/acme/app.User
func TypeOf[T any]() Type {
	return TypeFor(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeFor returns the Type describing a reflect.Type.
func TypeFor(rt reflect.Type) Type {
	if rt == nil {
		panic(ErrTypeNil)
	}

	if cached, ok := typeCache.Load(rt); ok {
		return cached.(Type)
	}

	t := fromReflect(rt)
	actual, _ := typeCache.LoadOrStore(rt, t)
	return actual.(Type)
}

func fromReflect(rt reflect.Type) Type {
	if name := rt.Name(); name != "" {
		// Instantiated generic types carry their arguments in the name.
		var args []Type
		if i := strings.IndexByte(name, '['); i > 0 && strings.HasSuffix(name, "]") {
			args = parseTypeArgs(name[i+1 : len(name)-1])
			name = name[:i]
		}
		if rt.PkgPath() != "" {
			name = rt.PkgPath() + "." + name
		}
		return NewType(name, args...)
	}

	switch rt.Kind() {
	case reflect.Pointer:
		return NewType(TagPointer, TypeFor(rt.Elem()))
	case reflect.Slice:
		return NewType(TagSlice, TypeFor(rt.Elem()))
	case reflect.Array:
		return NewType(fmt.Sprintf("[%d]", rt.Len()), TypeFor(rt.Elem()))
	case reflect.Map:
		return NewType(TagMap, TypeFor(rt.Key()), TypeFor(rt.Elem()))
	case reflect.Chan:
		switch rt.ChanDir() {
		case reflect.RecvDir:
			return NewType(TagRecvDir, TypeFor(rt.Elem()))
		case reflect.SendDir:
			return NewType(TagSendDir, TypeFor(rt.Elem()))
		default:
			return NewType(TagChan, TypeFor(rt.Elem()))
		}
	default:
		// Unnamed funcs, structs and interfaces are rare as binding keys and
		// are identified by their printed form.
		return NewType(rt.String())
	}
}

// parseTypeArgs splits a type argument list as the runtime prints it.
func parseTypeArgs(s string) []Type {
	var args []Type
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, parseTypeName(strings.TrimSpace(s[start:i])))
				start = i + 1
			}
		}
	}
	return append(args, parseTypeName(strings.TrimSpace(s[start:])))
}

// parseTypeName parses one printed type argument. Function, struct and
// interface literals stay opaque, as they do in fromReflect.
func parseTypeName(s string) Type {
	switch {
	case strings.HasPrefix(s, "*"):
		return NewType(TagPointer, parseTypeName(s[1:]))
	case strings.HasPrefix(s, "[]"):
		return NewType(TagSlice, parseTypeName(s[2:]))
	case strings.HasPrefix(s, "map["):
		if end := closingBracket(s, 3); end > 0 {
			return NewType(TagMap, parseTypeName(s[4:end]), parseTypeName(s[end+1:]))
		}
	case strings.HasPrefix(s, "<-chan "):
		return NewType(TagRecvDir, parseTypeName(s[len("<-chan "):]))
	case strings.HasPrefix(s, "chan<- "):
		return NewType(TagSendDir, parseTypeName(s[len("chan<- "):]))
	case strings.HasPrefix(s, "chan "):
		return NewType(TagChan, parseTypeName(s[len("chan "):]))
	case strings.HasPrefix(s, "["):
		if end := strings.IndexByte(s, ']'); end > 1 && isDigits(s[1:end]) {
			return NewType(s[:end+1], parseTypeName(s[end+1:]))
		}
	case strings.HasPrefix(s, "func("), strings.HasPrefix(s, "struct {"), strings.HasPrefix(s, "interface {"):
		return NewType(s)
	}

	if i := strings.IndexByte(s, '['); i > 0 && strings.HasSuffix(s, "]") {
		return NewType(s[:i], parseTypeArgs(s[i+1:len(s)-1])...)
	}
	return NewType(s)
}

// closingBracket returns the index of the bracket closing the one at open.
func closingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
