package saber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func injectTarget(inj *Injector, target *TTarget) error {
	svc, err := Get[*TService](inj)
	if err != nil {
		return err
	}
	greeting, err := GetNamed[string](inj, "greeting")
	if err != nil {
		return err
	}
	target.Service = svc
	target.Greeting = greeting
	return nil
}

func TestInjectMembers(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, ConfiguratorFunc(func(inj *Injector) error {
		if err := ProvideValue(inj, &TService{ID: "root"}); err != nil {
			return err
		}
		if err := ProvideValue(inj, "hello", WithName("greeting")); err != nil {
			return err
		}
		return BindMembersInjector(inj, injectTarget)
	}))

	t.Run("bound members injector", func(t *testing.T) {
		target := &TTarget{}
		require.NoError(t, root.InjectMembers(target))
		assert.Equal(t, "root", target.Service.ID)
		assert.Equal(t, "hello", target.Greeting)
	})

	t.Run("resolves from the calling injector", func(t *testing.T) {
		child := newTestChild(t, root, configure(bindValue(NamedKeyOf[string]("greeting"), "hi from child")))

		target := &TTarget{}
		require.NoError(t, child.InjectMembers(target))
		assert.Equal(t, "hi from child", target.Greeting)
	})

	t.Run("self injecting target", func(t *testing.T) {
		target := &TSelfInjecting{}
		require.NoError(t, root.InjectMembers(target))
		assert.Same(t, root, target.Injected)
	})

	t.Run("unknown target is left untouched", func(t *testing.T) {
		target := &TService{ID: "untouched"}
		require.NoError(t, root.InjectMembers(target))
		assert.Equal(t, "untouched", target.ID)
	})

	t.Run("nil target", func(t *testing.T) {
		assert.ErrorIs(t, root.InjectMembers(nil), ErrTargetNil)
	})

	t.Run("missing dependency", func(t *testing.T) {
		bare := newTestRoot(t, ConfiguratorFunc(func(inj *Injector) error {
			return BindMembersInjector(inj, injectTarget)
		}))
		err := bare.InjectMembers(&TTarget{})
		assert.True(t, IsNotFound(err))
	})
}

func TestBindMembersInjector_Errors(t *testing.T) {
	t.Parallel()

	_, err := CreateRootInjector(ConfiguratorFunc(func(inj *Injector) error {
		return BindMembersInjector[*TTarget](inj, nil)
	}))
	assert.ErrorIs(t, err, ErrProviderNil)

	_, err = CreateRootInjector(ConfiguratorFunc(func(inj *Injector) error {
		if err := BindMembersInjector(inj, injectTarget); err != nil {
			return err
		}
		return BindMembersInjector(inj, injectTarget)
	}))
	assert.True(t, IsDuplicate(err))

	assert.Equal(t, "github.com/junioryono/saber.MembersInjector[*github.com/junioryono/saber.TTarget]",
		MembersInjectorKey(TypeOf[*TTarget]()).ID())
}
