package descriptor

import (
	"fmt"
	"strings"

	"github.com/junioryono/saber"
)

// TypeRef is the serializable form of a saber.Type.
//
// In declaration files and manifests a TypeRef is written in Go syntax with
// full package paths:
//
//	*github.com/acme/app.Config
//	map[string][]github.com/acme/app.User
//	github.com/acme/app.List[string]
type TypeRef struct {
	Tag  string
	Args []TypeRef
}

// NewTypeRef creates a TypeRef from a tag and its arguments.
func NewTypeRef(tag string, args ...TypeRef) TypeRef {
	return TypeRef{Tag: tag, Args: args}
}

// MustParseType is like ParseType but panics on malformed input.
func MustParseType(s string) TypeRef {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseType parses a type written in Go syntax with full package paths.
func ParseType(s string) (TypeRef, error) {
	p := &typeParser{input: s, s: strings.TrimSpace(s)}
	t, err := p.parse()
	if err != nil {
		return TypeRef{}, err
	}
	p.skipSpaces()
	if p.pos != len(p.s) {
		return TypeRef{}, p.errorf("unexpected %q", p.s[p.pos:])
	}
	return t, nil
}

// IsZero reports whether t is the zero TypeRef.
func (t TypeRef) IsZero() bool {
	return t.Tag == ""
}

// Type converts t to the runtime type descriptor.
func (t TypeRef) Type() saber.Type {
	args := make([]saber.Type, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.Type()
	}
	return saber.NewType(t.Tag, args...)
}

// String returns the canonical form of t, identical to the runtime Type ID.
func (t TypeRef) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Type().ID()
}

// IsNamed reports whether t is a package-qualified named type.
func (t TypeRef) IsNamed() bool {
	return !isCompositeTag(t.Tag) && strings.Contains(t.Tag, ".")
}

// Package returns the import path of a named type, or "".
func (t TypeRef) Package() string {
	if !t.IsNamed() {
		return ""
	}
	return t.Tag[:strings.LastIndex(t.Tag, ".")]
}

// Name returns the unqualified name of a named or predeclared type.
func (t TypeRef) Name() string {
	if isCompositeTag(t.Tag) {
		return ""
	}
	return t.Tag[strings.LastIndex(t.Tag, ".")+1:]
}

// Elem returns the innermost named or predeclared type, stripping pointers,
// slices, arrays, maps (value side) and channels.
func (t TypeRef) Elem() TypeRef {
	for isCompositeTag(t.Tag) && len(t.Args) > 0 {
		t = t.Args[len(t.Args)-1]
	}
	return t
}

// Packages returns every import path referenced by t, including type arguments.
func (t TypeRef) Packages() []string {
	var out []string
	var walk func(TypeRef)
	walk = func(t TypeRef) {
		if pkg := t.Package(); pkg != "" {
			out = append(out, pkg)
		}
		for _, arg := range t.Args {
			walk(arg)
		}
	}
	walk(t)
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (t TypeRef) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TypeRef) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func isCompositeTag(tag string) bool {
	switch tag {
	case saber.TagPointer, saber.TagSlice, saber.TagMap, saber.TagChan, saber.TagRecvDir, saber.TagSendDir:
		return true
	}
	return len(tag) > 2 && tag[0] == '[' && tag[len(tag)-1] == ']'
}

// anyTag is the runtime identity of the empty interface.
const anyTag = "interface {}"

// predeclaredAliases maps alias spellings to the names the runtime reports.
var predeclaredAliases = map[string]string{
	"any":  anyTag,
	"byte": "uint8",
	"rune": "int32",
}

type typeParser struct {
	input string
	s     string
	pos   int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return TypeSyntaxError{Input: p.input, Offset: p.pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *typeParser) skipSpaces() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) consume(prefix string) bool {
	if strings.HasPrefix(p.s[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *typeParser) elem(tag string) (TypeRef, error) {
	p.skipSpaces()
	elem, err := p.parse()
	if err != nil {
		return TypeRef{}, err
	}
	return NewTypeRef(tag, elem), nil
}

func (p *typeParser) parse() (TypeRef, error) {
	p.skipSpaces()
	if p.pos >= len(p.s) {
		return TypeRef{}, p.errorf("missing type")
	}

	if p.consume("interface{}") || p.consume("interface {}") {
		return NewTypeRef(anyTag), nil
	}

	switch {
	case p.consume("*"):
		return p.elem(saber.TagPointer)
	case p.consume("[]"):
		return p.elem(saber.TagSlice)
	case p.consume("map["):
		key, err := p.parse()
		if err != nil {
			return TypeRef{}, err
		}
		p.skipSpaces()
		if !p.consume("]") {
			return TypeRef{}, p.errorf("expected ] after map key")
		}
		p.skipSpaces()
		value, err := p.parse()
		if err != nil {
			return TypeRef{}, err
		}
		return NewTypeRef(saber.TagMap, key, value), nil
	case p.consume("<-chan "):
		return p.elem(saber.TagRecvDir)
	case p.consume("chan<- "):
		return p.elem(saber.TagSendDir)
	case p.consume("chan "):
		return p.elem(saber.TagChan)
	case p.s[p.pos] == '[':
		end := strings.IndexByte(p.s[p.pos:], ']')
		if end < 2 {
			return TypeRef{}, p.errorf("malformed array length")
		}
		n := p.s[p.pos+1 : p.pos+end]
		for _, c := range n {
			if c < '0' || c > '9' {
				return TypeRef{}, p.errorf("array length %q is not a number", n)
			}
		}
		p.pos += end + 1
		return p.elem("[" + n + "]")
	}

	return p.named()
}

func (p *typeParser) named() (TypeRef, error) {
	start := p.pos
	for p.pos < len(p.s) && !strings.ContainsRune("[], ", rune(p.s[p.pos])) {
		p.pos++
	}
	name := p.s[start:p.pos]
	if name == "" {
		return TypeRef{}, p.errorf("missing type name")
	}

	ident := name[strings.LastIndex(name, ".")+1:]
	if !isIdentifier(ident) {
		return TypeRef{}, p.errorf("%q is not a valid type name", name)
	}
	if alias, ok := predeclaredAliases[name]; ok {
		name = alias
	}

	if p.pos >= len(p.s) || p.s[p.pos] != '[' {
		return NewTypeRef(name), nil
	}

	// Type arguments
	p.pos++
	var args []TypeRef
	for {
		arg, err := p.parse()
		if err != nil {
			return TypeRef{}, err
		}
		args = append(args, arg)

		p.skipSpaces()
		switch {
		case p.consume(","):
			continue
		case p.consume("]"):
			return NewTypeRef(name, args...), nil
		default:
			return TypeRef{}, p.errorf("expected , or ] in type arguments")
		}
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
