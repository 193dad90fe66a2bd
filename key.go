package saber

// Key identifies a binding: a Type plus an optional Qualifier.
//
// Keys are immutable values. Compare them with Equal and use ID when a map key
// is needed. An unqualified key has the same ID as its Type, so resolving
// KeyFor(t) and resolving t directly always hit the same registry entry.
type Key struct {
	typ       Type
	qualifier Qualifier
	id        string
}

// KeyFor returns the unqualified key for t.
func KeyFor(t Type) Key {
	if t.IsZero() {
		panic(ErrTypeNil)
	}
	return Key{typ: t, id: t.id}
}

// QualifiedKey returns the key for t qualified by q. A zero qualifier yields
// the unqualified key.
func QualifiedKey(t Type, q Qualifier) Key {
	if q.IsZero() {
		return KeyFor(t)
	}
	if t.IsZero() {
		panic(ErrTypeNil)
	}
	return Key{typ: t, qualifier: q, id: t.id + "@" + q.id}
}

// KeyOf returns the unqualified key for T.
func KeyOf[T any]() Key {
	return KeyFor(TypeOf[T]())
}

// QualifiedKeyOf returns the key for T qualified by q.
func QualifiedKeyOf[T any](q Qualifier) Key {
	return QualifiedKey(TypeOf[T](), q)
}

// NamedKeyOf is shorthand for QualifiedKeyOf[T](Named(name)).
func NamedKeyOf[T any](name string) Key {
	return QualifiedKey(TypeOf[T](), Named(name))
}

// Type returns the declared type of the key.
func (k Key) Type() Type { return k.typ }

// Qualifier returns the qualifier of the key and whether it has one.
func (k Key) Qualifier() (Qualifier, bool) {
	return k.qualifier, !k.qualifier.IsZero()
}

// IsQualified reports whether the key carries a qualifier.
func (k Key) IsQualified() bool { return !k.qualifier.IsZero() }

// ID returns the canonical identity string of the key.
func (k Key) ID() string { return k.id }

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k.id == "" }

// Equal reports whether two keys identify the same binding.
func (k Key) Equal(other Key) bool { return k.id == other.id }

func (k Key) String() string {
	if k.qualifier.IsZero() {
		return k.typ.String()
	}
	return k.typ.String() + " " + k.qualifier.String()
}
