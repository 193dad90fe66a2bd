package saber

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInjector_EndToEnd(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, configure(bindValue(KeyOf[string](), "Parent String")))
	child := newTestChild(t, root, configure(bindValue(KeyOf[any](), "Child Object")))

	s, err := child.GetInstance(KeyOf[string]())
	require.NoError(t, err)
	assert.Equal(t, "Parent String", s)

	o, err := child.GetInstance(KeyOf[any]())
	require.NoError(t, err)
	assert.Equal(t, "Child Object", o)

	_, err = root.GetInstance(KeyOf[any]())
	require.Error(t, err)

	var notFound BindingNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.True(t, notFound.Key.Equal(KeyOf[any]()))
	assert.Equal(t, root.String(), notFound.Injector)
}

func TestInjector_EndToEndQualified(t *testing.T) {
	t.Parallel()

	annotated := QualifiedKeyOf[string](NewQualifier("Annotated"))

	root := newTestRoot(t, configure(bindValue(KeyOf[string](), "Parent String")))
	child := newTestChild(t, root, configure(bindValue(annotated, "Child Annotated String")))

	v, err := child.GetInstance(QualifiedKeyOf[string](NewQualifier("Annotated")))
	require.NoError(t, err)
	assert.Equal(t, "Child Annotated String", v)

	v, err = child.GetInstance(KeyOf[string]())
	require.NoError(t, err)
	assert.Equal(t, "Parent String", v)

	_, err = root.GetInstance(annotated)
	assert.True(t, IsNotFound(err))
}

func TestInjector_Shadowing(t *testing.T) {
	t.Parallel()

	key := KeyOf[*TService]()
	parentProvider := ValueProvider(&TService{ID: "parent"})
	childProvider := ValueProvider(&TService{ID: "child"})

	root := newTestRoot(t, configure(bind(key, parentProvider)))

	t.Run("child binding wins", func(t *testing.T) {
		child := newTestChild(t, root, configure(bind(key, childProvider)))

		p, err := child.GetProvider(key)
		require.NoError(t, err)
		assert.Equal(t, childProvider, p)

		p, err = root.GetProvider(key)
		require.NoError(t, err)
		assert.Equal(t, parentProvider, p, "child bindings are never visible to the parent")
	})

	t.Run("parent binding is inherited", func(t *testing.T) {
		child := newTestChild(t, root, nil)
		grandchild := newTestChild(t, child, nil)

		p, err := grandchild.GetProvider(key)
		require.NoError(t, err)
		assert.Equal(t, parentProvider, p)
	})

	t.Run("siblings are isolated", func(t *testing.T) {
		a := newTestChild(t, root, configure(bindValue(KeyOf[int](), 1)))
		b := newTestChild(t, root, configure(bindValue(KeyOf[int](), 2)))

		va, err := a.GetInstance(KeyOf[int]())
		require.NoError(t, err)
		vb, err := b.GetInstance(KeyOf[int]())
		require.NoError(t, err)

		assert.Equal(t, 1, va)
		assert.Equal(t, 2, vb)
	})
}

func TestInjector_SelfBinding(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, nil)
	nodes := []*Injector{root}
	for i := 0; i < 4; i++ {
		nodes = append(nodes, newTestChild(t, nodes[len(nodes)-1], nil))
	}

	for depth, inj := range nodes {
		assert.Equal(t, depth, inj.Depth())

		v, err := inj.GetInstance(InjectorKey())
		require.NoError(t, err)
		assert.Same(t, inj, v)

		v, err = inj.GetTypeInstance(TypeOf[*Injector]())
		require.NoError(t, err)
		assert.Same(t, inj, v)
	}

	assert.True(t, root.IsRoot())
	assert.Nil(t, root.Parent())
	assert.Same(t, root, nodes[1].Parent())
}

func TestInjector_TypeAndKeyResolveIdentically(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, configure(bindValue(KeyOf[TBox[int]](), TBox[int]{Value: 7})))

	byKey, err := root.GetProvider(KeyFor(NewType("github.com/junioryono/saber.TBox", NewType("int"))))
	require.NoError(t, err)

	byType, err := root.GetTypeProvider(TypeOf[TBox[int]]())
	require.NoError(t, err)

	assert.Equal(t, byKey, byType)

	_, err = root.GetTypeProvider(TypeOf[TBox[string]]())
	assert.True(t, IsNotFound(err))
}

func TestInjector_NotFoundChain(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, nil)
	child := newTestChild(t, root, nil)
	grandchild := newTestChild(t, child, nil)

	key := NamedKeyOf[*TService]("missing")
	_, err := grandchild.GetInstance(key)
	require.Error(t, err)

	assert.True(t, IsNotFound(err))
	assert.True(t, IsConfigurationError(err))
	assert.False(t, IsDuplicate(err))

	var searched []string
	for current := err; current != nil; current = errors.Unwrap(current) {
		var nf BindingNotFoundError
		require.True(t, errors.As(current, &nf))
		assert.True(t, nf.Key.Equal(key))
		searched = append(searched, nf.Injector)
	}

	assert.Equal(t, []string{grandchild.String(), child.String(), root.String()}, searched)
}

func TestInjector_DuplicateBinding(t *testing.T) {
	t.Parallel()

	var dupErr error
	first := ValueProvider("first")

	root := newTestRoot(t, ConfiguratorFunc(func(inj *Injector) error {
		require.NoError(t, inj.Register(KeyOf[string](), first))
		dupErr = inj.Register(KeyOf[string](), ValueProvider("second"))
		return nil
	}))

	require.Error(t, dupErr)
	assert.True(t, IsDuplicate(dupErr))
	assert.True(t, IsConfigurationError(dupErr))
	assert.False(t, IsNotFound(dupErr))

	var dup DuplicateBindingError
	require.ErrorAs(t, dupErr, &dup)
	assert.Equal(t, root.String(), dup.Injector)

	p, err := root.GetProvider(KeyOf[string]())
	require.NoError(t, err)
	assert.Equal(t, first, p)
}

func TestInjector_SelfKeyCannotBeRebound(t *testing.T) {
	t.Parallel()

	_, err := CreateRootInjector(configure(bindValue(InjectorKey(), nil)))
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
}

func TestInjector_ConfigureError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	root := newTestRoot(t, nil)

	child, err := root.CreateChild(ConfiguratorFunc(func(inj *Injector) error {
		if err := inj.Register(KeyOf[string](), ValueProvider("partial")); err != nil {
			return err
		}
		return errBoom
	}))

	require.Error(t, err)
	assert.Nil(t, child, "a partially configured injector must not be returned")
	assert.ErrorIs(t, err, errBoom)

	var cfgErr ConfigureError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "boom")

	_, err = root.GetInstance(KeyOf[string]())
	assert.True(t, IsNotFound(err))
}

func TestInjector_Sealed(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, nil)

	err := root.Register(KeyOf[string](), ValueProvider("late"))
	assert.ErrorIs(t, err, ErrInjectorSealed)

	_, err = root.GetInstance(KeyOf[string]())
	assert.True(t, IsNotFound(err))
}

func TestInjector_RegisterArguments(t *testing.T) {
	t.Parallel()

	var errs []error
	newTestRoot(t, ConfiguratorFunc(func(inj *Injector) error {
		errs = append(errs,
			inj.Register(Key{}, ValueProvider(1)),
			inj.Register(KeyOf[int](), nil),
			inj.RegisterType(Type{}, ValueProvider(1)),
		)
		return nil
	}))

	assert.ErrorIs(t, errs[0], ErrKeyZero)
	assert.ErrorIs(t, errs[1], ErrProviderNil)
	assert.ErrorIs(t, errs[2], ErrTypeNil)

	root := newTestRoot(t, nil)
	_, err := root.GetProvider(Key{})
	assert.ErrorIs(t, err, ErrKeyZero)
	_, err = root.GetTypeProvider(Type{})
	assert.ErrorIs(t, err, ErrTypeNil)
}

func TestInjector_KeysAndIdentity(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, configure(
		bindValue(KeyOf[string](), "a"),
		func(inj *Injector) error { return inj.RegisterType(TypeOf[int](), ValueProvider(1)) },
	))
	child := newTestChild(t, root, nil)

	assert.Equal(t, []Key{InjectorKey(), KeyOf[string](), KeyOf[int]()}, root.Keys())
	assert.Equal(t, []Key{InjectorKey()}, child.Keys())

	assert.NotEmpty(t, root.ID())
	assert.NotEqual(t, root.ID(), child.ID())
	assert.Equal(t, "injector "+root.ID(), root.String())
	assert.Same(t, root.Engine(), child.Engine())
}

func TestInjector_Logging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	engine, err := NewEngine(WithLogger(zap.New(core)))
	require.NoError(t, err)

	root, err := engine.CreateInjector(configure(bindValue(KeyOf[string](), "s")))
	require.NoError(t, err)

	_, err = root.CreateChild(ConfiguratorFunc(func(*Injector) error {
		return errors.New("broken module")
	}))
	require.Error(t, err)

	assert.Equal(t, 1, logs.FilterMessage("binding registered").Len())
	assert.Equal(t, 1, logs.FilterMessage("injector created").Len())

	failed := logs.FilterMessage("injector configuration failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, int64(1), failed[0].ContextMap()["depth"])

	created := logs.FilterMessage("injector created").All()[0].ContextMap()
	assert.Equal(t, root.ID(), created["injector"])
	assert.Equal(t, "", created["parent"])
	assert.Equal(t, int64(2), created["bindings"])
}
