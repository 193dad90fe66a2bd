package generator

import (
	"fmt"
	"go/token"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/junioryono/saber"
	"github.com/junioryono/saber/descriptor"
)

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

// unexportedIdent is exportedIdent with a lower-case first letter.
func unexportedIdent(s string) string {
	id := exportedIdent(s)
	if id == "" {
		return ""
	}
	r := []rune(id)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// fileBase turns a module name into a file name prefix.
func fileBase(name string) string {
	return strings.ToLower(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

// localVar matches the names generated code uses for locals.
var localVar = regexp.MustCompile(`^[acdfmv][0-9]*$`)

var reservedAliases = map[string]bool{
	"p": true, "inj": true, "target": true, "err": true,
	"any": true, "error": true, "string": true, "bool": true, "int": true,
	"nil": true, "true": true, "false": true, "new": true, "make": true, "len": true,
}

// importSet assigns a unique alias to every imported package of one file.
type importSet struct {
	aliases map[string]string // path -> alias
}

type importSpec struct {
	Alias string
	Path  string
}

func newImportSet(saberPath string, paths []string) *importSet {
	s := &importSet{aliases: map[string]string{saberPath: "saber"}}
	taken := map[string]bool{"saber": true}

	paths = slices.Clone(paths)
	slices.Sort(paths)
	paths = slices.Compact(paths)

	for _, path := range paths {
		if _, ok := s.aliases[path]; ok {
			continue
		}
		base := aliasBase(path)
		if reservedAliases[base] || token.IsKeyword(base) || localVar.MatchString(base) {
			base += "pkg"
		}
		alias := base
		for n := 2; taken[alias]; n++ {
			alias = base + strconv.Itoa(n)
		}
		taken[alias] = true
		s.aliases[path] = alias
	}
	return s
}

// aliasBase derives a package name from an import path, skipping major
// version elements and gopkg.in style suffixes.
func aliasBase(path string) string {
	elems := strings.Split(path, "/")
	last := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(last) {
		last = elems[len(elems)-2]
	}
	if i := strings.Index(last, ".v"); i > 0 && isMajorVersion(last[i+1:]) {
		last = last[:i]
	}

	var b strings.Builder
	for _, c := range strings.ToLower(last) {
		if c < unicode.MaxASCII && (unicode.IsLetter(c) || unicode.IsDigit(c)) {
			b.WriteRune(c)
		}
	}
	alias := b.String()
	if alias == "" || !unicode.IsLetter(rune(alias[0])) {
		alias = "pkg" + alias
	}
	return alias
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

func (s *importSet) alias(path string) string {
	return s.aliases[path]
}

// specs returns the imports sorted by path.
func (s *importSet) specs() []importSpec {
	out := make([]importSpec, 0, len(s.aliases))
	for path, alias := range s.aliases {
		out = append(out, importSpec{Alias: alias, Path: path})
	}
	slices.SortFunc(out, func(a, b importSpec) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// typeExpr renders t as a Go type expression.
func (s *importSet) typeExpr(t descriptor.TypeRef) string {
	arg := func(i int) string {
		if i < len(t.Args) {
			return s.typeExpr(t.Args[i])
		}
		return "any"
	}

	switch t.Tag {
	case saber.TagPointer:
		return "*" + arg(0)
	case saber.TagSlice:
		return "[]" + arg(0)
	case saber.TagMap:
		return "map[" + arg(0) + "]" + arg(1)
	case saber.TagChan:
		return "chan " + arg(0)
	case saber.TagRecvDir:
		return "<-chan " + arg(0)
	case saber.TagSendDir:
		return "chan<- " + arg(0)
	case "interface {}":
		return "any"
	}

	if strings.HasPrefix(t.Tag, "[") {
		return t.Tag + arg(0)
	}
	if !t.IsNamed() {
		return t.Tag
	}

	expr := s.alias(t.Package()) + "." + t.Name()
	if len(t.Args) > 0 {
		args := make([]string, len(t.Args))
		for i := range t.Args {
			args[i] = arg(i)
		}
		expr += "[" + strings.Join(args, ", ") + "]"
	}
	return expr
}

// memberExpr renders a qualifier member value so that the runtime encodes
// it exactly as the descriptor does.
func (s *importSet) memberExpr(m descriptor.MemberRef) (string, error) {
	if m.Type != nil {
		return "saber.TypeOf[" + s.typeExpr(*m.Type) + "]()", nil
	}
	return valueExpr(m.Value)
}

func valueExpr(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "nil", nil
	case string:
		return strconv.Quote(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return "uint64(" + strconv.FormatUint(v, 10) + ")", nil
	case float64:
		return "float64(" + strconv.FormatFloat(v, 'g', -1, 64) + ")", nil
	case []any:
		elems := make([]string, len(v))
		for i, e := range v {
			expr, err := valueExpr(e)
			if err != nil {
				return "", err
			}
			elems[i] = expr
		}
		return "[]any{" + strings.Join(elems, ", ") + "}", nil
	}
	return "", fmt.Errorf("unsupported qualifier member value %T", v)
}

// keyExpr renders the construction of a key.
func (s *importSet) keyExpr(k descriptor.KeyRef) (string, error) {
	typ := s.typeExpr(k.Type)
	switch {
	case k.Named != "":
		return fmt.Sprintf("saber.NamedKeyOf[%s](%q)", typ, k.Named), nil
	case k.Qualifier == nil:
		return fmt.Sprintf("saber.KeyOf[%s]()", typ), nil
	}

	args := []string{strconv.Quote(k.Qualifier.Name)}
	for _, m := range k.Qualifier.Members {
		value, err := s.memberExpr(m)
		if err != nil {
			return "", fmt.Errorf("key %s: member %s: %w", k, m.Name, err)
		}
		args = append(args, fmt.Sprintf("saber.Member(%q, %s)", m.Name, value))
	}
	return fmt.Sprintf("saber.QualifiedKeyOf[%s](saber.NewQualifier(%s))", typ, strings.Join(args, ", ")), nil
}
