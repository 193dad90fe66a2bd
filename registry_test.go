package saber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingRegistry_WriteOnce(t *testing.T) {
	t.Parallel()

	keys := []Key{
		KeyOf[string](),
		KeyOf[*TService](),
		NamedKeyOf[*TService]("primary"),
		QualifiedKeyOf[TBox[int]](NewQualifier("acme.Shard", Member("n", 3))),
	}

	r := newBindingRegistry()
	providers := make([]Provider, len(keys))
	for i, k := range keys {
		providers[i] = &aliasProvider{target: k}
		require.True(t, r.register(k, providers[i]))
	}

	for i, k := range keys {
		got, ok := r.lookup(k.ID())
		require.True(t, ok)
		assert.Same(t, providers[i], got, "lookup must return the registered provider")

		assert.False(t, r.register(k, ValueProvider("other")))

		got, ok = r.lookup(k.ID())
		require.True(t, ok)
		assert.Same(t, providers[i], got, "failed registration must not mutate the registry")
	}

	assert.Equal(t, len(keys), r.size())
	assert.Equal(t, keys, r.registeredKeys())
}

func TestBindingRegistry_Lookup(t *testing.T) {
	t.Parallel()

	r := newBindingRegistry()
	require.True(t, r.register(KeyOf[string](), ValueProvider("s")))

	_, ok := r.lookup(KeyOf[int]().ID())
	assert.False(t, ok)

	_, ok = r.lookup(NamedKeyOf[string]("x").ID())
	assert.False(t, ok, "qualified lookup must not hit the unqualified binding")

	_, ok = r.lookup(TypeOf[string]().ID())
	assert.True(t, ok, "type id and unqualified key id are the same")
}
