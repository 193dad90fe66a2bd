package saber

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// NamedQualifier is the name of the qualifier built by Named.
const NamedQualifier = "github.com/junioryono/saber.Named"

// Qualifier distinguishes several bindings of the same Type.
//
// A qualifier has a name and a set of named member values. Qualifiers are
// compared structurally: two qualifiers with the same name and the same member
// values are equal no matter where or in which order their members were
// supplied.
type Qualifier struct {
	name    string
	members []QualifierMember
	id      string
}

// QualifierMember is one named value of a Qualifier.
type QualifierMember struct {
	Name  string
	Value any

	repr string
}

// Member creates a qualifier member.
//
// Supported values are strings, booleans, integers, floats, Types, Qualifiers
// and slices or arrays of those. Integers of different widths with the same
// sign compare equal, so Member("n", 1) and Member("n", int64(1)) match.
func Member(name string, value any) QualifierMember {
	return QualifierMember{Name: name, Value: value, repr: encodeMemberValue(value)}
}

// NewQualifier creates a qualifier from a name and its members. Members with
// a duplicate name keep the last value.
func NewQualifier(name string, members ...QualifierMember) Qualifier {
	if name == "" {
		panic(ErrQualifierNameEmpty)
	}

	q := Qualifier{name: name}
	for _, m := range members {
		if m.repr == "" {
			m.repr = encodeMemberValue(m.Value)
		}
		if i := slices.IndexFunc(q.members, func(e QualifierMember) bool { return e.Name == m.Name }); i >= 0 {
			q.members[i] = m
			continue
		}
		q.members = append(q.members, m)
	}

	slices.SortFunc(q.members, func(a, b QualifierMember) int {
		return strings.Compare(a.Name, b.Name)
	})

	var b strings.Builder
	b.WriteString(name)
	if len(q.members) > 0 {
		b.WriteByte('(')
		for i, m := range q.members {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(memberName(m.Name))
			b.WriteByte('=')
			b.WriteString(m.repr)
		}
		b.WriteByte(')')
	}
	q.id = b.String()
	return q
}

// Named returns the standard single-member qualifier carrying a string value.
func Named(value string) Qualifier {
	return NewQualifier(NamedQualifier, Member("value", value))
}

// Name returns the qualifier name.
func (q Qualifier) Name() string { return q.name }

// Members returns a copy of the members sorted by name.
func (q Qualifier) Members() []QualifierMember {
	return slices.Clone(q.members)
}

// Value returns the value of the named member.
func (q Qualifier) Value(name string) (any, bool) {
	for _, m := range q.members {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// ID returns the canonical identity string of the qualifier.
func (q Qualifier) ID() string { return q.id }

// IsZero reports whether q is the zero Qualifier.
func (q Qualifier) IsZero() bool { return q.id == "" }

// Equal reports whether two qualifiers are structurally equal.
func (q Qualifier) Equal(other Qualifier) bool { return q.id == other.id }

func (q Qualifier) String() string { return "@" + q.id }

// memberName returns a member name as it appears in a qualifier id. Names
// that are not identifiers are quoted so they cannot absorb the next member.
func memberName(name string) string {
	for i, c := range name {
		if c != '_' && !unicode.IsLetter(c) && (i == 0 || !unicode.IsDigit(c)) {
			return strconv.Quote(name)
		}
	}
	if name == "" {
		return `""`
	}
	return name
}

func encodeMemberValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return "i" + strconv.FormatInt(int64(v), 10)
	case int8:
		return "i" + strconv.FormatInt(int64(v), 10)
	case int16:
		return "i" + strconv.FormatInt(int64(v), 10)
	case int32:
		return "i" + strconv.FormatInt(int64(v), 10)
	case int64:
		return "i" + strconv.FormatInt(v, 10)
	case uint:
		return "u" + strconv.FormatUint(uint64(v), 10)
	case uint8:
		return "u" + strconv.FormatUint(uint64(v), 10)
	case uint16:
		return "u" + strconv.FormatUint(uint64(v), 10)
	case uint32:
		return "u" + strconv.FormatUint(uint64(v), 10)
	case uint64:
		return "u" + strconv.FormatUint(v, 10)
	case float32:
		return "f" + strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return "f" + strconv.FormatFloat(v, 'g', -1, 64)
	case Type:
		return "t:" + v.id
	case Qualifier:
		return "q:" + v.id
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		var b strings.Builder
		b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(encodeMemberValue(rv.Index(i).Interface()))
		}
		b.WriteByte(']')
		return b.String()
	case reflect.String:
		return fmt.Sprintf("%s:%q", rv.Type(), rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%s:%d", rv.Type(), rv.Int())
	}

	return fmt.Sprintf("%T:%#v", v, v)
}
