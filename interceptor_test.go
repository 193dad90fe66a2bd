package saber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInterceptor struct {
	name    string
	calls   *[]string
	proceed bool
	result  Provider
}

func (r recordingInterceptor) Intercept(chain Chain, key Key) (Provider, error) {
	*r.calls = append(*r.calls, r.name)
	if r.proceed {
		return chain.Proceed(key)
	}
	return r.result, nil
}

func TestInterceptor_Order(t *testing.T) {
	t.Parallel()

	key := KeyOf[string]()

	t.Run("last added runs first and proceeds", func(t *testing.T) {
		var calls []string
		root := newTestRoot(t, configure(bindValue(key, "bound")),
			WithInterceptors(
				recordingInterceptor{name: "A", calls: &calls, proceed: true},
				recordingInterceptor{name: "B", calls: &calls, proceed: true},
			),
		)

		v, err := root.GetInstance(key)
		require.NoError(t, err)
		assert.Equal(t, "bound", v)
		assert.Equal(t, []string{"B", "A"}, calls)
	})

	t.Run("short circuit skips earlier interceptors", func(t *testing.T) {
		var calls []string
		root := newTestRoot(t, configure(bindValue(key, "bound")),
			WithInterceptors(
				recordingInterceptor{name: "A", calls: &calls, proceed: true},
				recordingInterceptor{name: "B", calls: &calls, result: ValueProvider("from B")},
			),
		)

		v, err := root.GetInstance(key)
		require.NoError(t, err)
		assert.Equal(t, "from B", v)
		assert.Equal(t, []string{"B"}, calls)
	})

	t.Run("options append in order", func(t *testing.T) {
		var calls []string
		root := newTestRoot(t, nil,
			WithInterceptors(recordingInterceptor{name: "A", calls: &calls, proceed: true}),
			WithInterceptors(recordingInterceptor{name: "B", calls: &calls, proceed: true}),
		)

		_, err := root.GetTypeInstance(TypeOf[*Injector]())
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "A"}, calls)
		assert.Equal(t, 2, root.Engine().Interceptors())
	})
}

func TestInterceptor_SharedByChildren(t *testing.T) {
	t.Parallel()

	var seen []*Injector
	spy := InterceptorFunc(func(chain Chain, key Key) (Provider, error) {
		seen = append(seen, chain.Injector())
		return chain.Proceed(key)
	})

	root := newTestRoot(t, nil, WithInterceptors(spy))
	child := newTestChild(t, root, nil)

	_, err := child.GetInstance(InjectorKey())
	require.NoError(t, err)
	_, err = root.GetInstance(InjectorKey())
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Same(t, child, seen[0])
	assert.Same(t, root, seen[1])
}

func TestInterceptor_RecoversMissingBinding(t *testing.T) {
	t.Parallel()

	fallback := InterceptorFunc(func(chain Chain, key Key) (Provider, error) {
		p, err := chain.Proceed(key)
		if IsNotFound(err) && key.Type().Equal(TypeOf[string]()) {
			return ValueProvider("fallback"), nil
		}
		return p, err
	})

	root := newTestRoot(t, nil, WithInterceptors(fallback))
	child := newTestChild(t, root, nil)

	v, err := child.GetInstance(NamedKeyOf[string]("anything"))
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	_, err = child.GetInstance(KeyOf[int]())
	assert.True(t, IsNotFound(err))
}

func TestInterceptor_ChainIsReusable(t *testing.T) {
	t.Parallel()

	var calls []string
	root := newTestRoot(t, configure(bindValue(KeyOf[int](), 1), bindValue(KeyOf[string](), "s")),
		WithInterceptors(
			recordingInterceptor{name: "A", calls: &calls, proceed: true},
			InterceptorFunc(func(chain Chain, key Key) (Provider, error) {
				// Proceeding twice on the same cursor runs the rest of the chain twice.
				if _, err := chain.Proceed(KeyOf[int]()); err != nil {
					return nil, err
				}
				return chain.Proceed(key)
			}),
		),
	)

	v, err := root.GetInstance(KeyOf[string]())
	require.NoError(t, err)
	assert.Equal(t, "s", v)
	assert.Equal(t, []string{"A", "A"}, calls)
}

func TestNewEngine_RejectsNilInterceptor(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(WithInterceptors(InterceptorFunc(func(chain Chain, key Key) (Provider, error) {
		return chain.Proceed(key)
	}), nil))
	assert.Nil(t, engine)
	assert.ErrorIs(t, err, ErrInterceptorNil)

	_, err = CreateRootInjector(nil, WithInterceptors(nil))
	assert.ErrorIs(t, err, ErrInterceptorNil)
}

func TestFastPath_ZeroAllocations(t *testing.T) {
	root := newTestRoot(t, configure(
		bindValue(KeyOf[string](), "Parent String"),
		bindValue(NamedKeyOf[*TService]("primary"), &TService{ID: "primary"}),
	))
	child := newTestChild(t, root, nil)
	grandchild := newTestChild(t, child, nil)

	require.Equal(t, 0, root.Engine().Interceptors())

	key := NamedKeyOf[*TService]("primary")
	typ := TypeOf[string]()

	var (
		p   Provider
		v   any
		err error
	)

	allocs := testing.AllocsPerRun(100, func() {
		p, err = grandchild.GetProvider(key)
	})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Zero(t, allocs, "GetProvider")

	allocs = testing.AllocsPerRun(100, func() {
		p, err = grandchild.GetTypeProvider(typ)
	})
	require.NoError(t, err)
	assert.Zero(t, allocs, "GetTypeProvider")

	allocs = testing.AllocsPerRun(100, func() {
		v, err = grandchild.GetInstance(key)
	})
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Zero(t, allocs, "GetInstance")
}
