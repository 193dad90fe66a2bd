package descriptor

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/junioryono/saber"
)

// KeyRef is the serializable form of a saber.Key.
//
// A key is a type plus an optional qualifier. Named is shorthand for the
// standard saber.Named qualifier:
//
//	type: "*github.com/acme/app.DB"
//	named: replica
type KeyRef struct {
	Type      TypeRef       `yaml:"type" json:"type"`
	Named     string        `yaml:"named,omitempty" json:"named,omitempty"`
	Qualifier *QualifierRef `yaml:"qualifier,omitempty" json:"qualifier,omitempty"`
}

// QualifierRef is the serializable form of a saber.Qualifier.
type QualifierRef struct {
	Name    string      `yaml:"name" json:"name"`
	Members []MemberRef `yaml:"members,omitempty" json:"members,omitempty"`
}

// MemberRef is one qualifier member. Value holds strings, booleans, numbers
// or lists of those; Type holds a type-valued member.
type MemberRef struct {
	Name  string   `yaml:"name" json:"name"`
	Value any      `yaml:"value,omitempty" json:"value,omitempty"`
	Type  *TypeRef `yaml:"type,omitempty" json:"type,omitempty"`
}

// UnmarshalJSON keeps integral JSON numbers integral, so that a member read
// from a JSON manifest has the same identity as one read from YAML.
func (m *MemberRef) UnmarshalJSON(data []byte) error {
	type plain struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
		Type  *TypeRef        `json:"type"`
	}

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	m.Name = p.Name
	m.Type = p.Type
	m.Value = nil

	if len(p.Value) > 0 {
		dec := json.NewDecoder(bytes.NewReader(p.Value))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		m.Value = normalizeNumber(v)
	}
	return nil
}

func normalizeNumber(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalizeNumber(e)
		}
		return out
	}
	return v
}

// Validate checks that the key can be converted to a runtime key.
func (k KeyRef) Validate() error {
	if k.Type.IsZero() {
		return ErrTypeMissing
	}
	if k.Named != "" && k.Qualifier != nil {
		return ErrQualifierConflict
	}
	if q := k.Qualifier; q != nil {
		if q.Name == "" {
			return ErrQualifierNameMissing
		}
		for _, m := range q.Members {
			if m.Name == "" {
				return ErrMemberNameMissing
			}
		}
	}
	return nil
}

// IsZero reports whether k has no type.
func (k KeyRef) IsZero() bool {
	return k.Type.IsZero()
}

// QualifierValue converts the qualifier part of k to a runtime qualifier.
// The result is the zero Qualifier for unqualified keys.
func (k KeyRef) QualifierValue() saber.Qualifier {
	switch {
	case k.Named != "":
		return saber.Named(k.Named)
	case k.Qualifier != nil:
		members := make([]saber.QualifierMember, len(k.Qualifier.Members))
		for i, m := range k.Qualifier.Members {
			members[i] = saber.Member(m.Name, m.RuntimeValue())
		}
		return saber.NewQualifier(k.Qualifier.Name, members...)
	}
	return saber.Qualifier{}
}

// Key converts k to a runtime key. k must be valid.
func (k KeyRef) Key() saber.Key {
	return saber.QualifiedKey(k.Type.Type(), k.QualifierValue())
}

// ID returns the canonical id of the key, or "" if k is invalid.
func (k KeyRef) ID() string {
	if k.Validate() != nil {
		return ""
	}
	return k.Key().ID()
}

// String returns the key in its runtime form.
func (k KeyRef) String() string {
	if k.Validate() != nil {
		return "<invalid key " + k.Type.String() + ">"
	}
	return k.Key().String()
}

// Packages returns every import path the key refers to.
func (k KeyRef) Packages() []string {
	pkgs := k.Type.Packages()
	if k.Qualifier != nil {
		for _, m := range k.Qualifier.Members {
			if m.Type != nil {
				pkgs = append(pkgs, m.Type.Packages()...)
			}
		}
	}
	return pkgs
}

// IsInjector reports whether k is the key every injector binds itself under.
func (k KeyRef) IsInjector() bool {
	return k.ID() == saber.InjectorKey().ID()
}

// RuntimeValue returns the member value as it is passed to saber.Member.
func (m MemberRef) RuntimeValue() any {
	if m.Type != nil {
		return m.Type.Type()
	}
	return m.Value
}

// ShortName returns a readable name of the qualifier for use in identifiers:
// the Named value, or the qualifier's unqualified name.
func (k KeyRef) ShortName() string {
	switch {
	case k.Named != "":
		return k.Named
	case k.Qualifier != nil:
		return k.Qualifier.Name[strings.LastIndex(k.Qualifier.Name, ".")+1:]
	}
	return ""
}
