package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/saber"
)

// AssertResolvable checks that T resolves from inj and returns the instance.
func AssertResolvable[T any](t testing.TB, inj *saber.Injector) T {
	t.Helper()
	v, err := saber.Get[T](inj)
	require.NoError(t, err, "failed to resolve %s", saber.TypeOf[T]())
	return v
}

// AssertResolvableKey checks that key resolves from inj to a T.
func AssertResolvableKey[T any](t testing.TB, inj *saber.Injector, key saber.Key) T {
	t.Helper()
	v, err := saber.Instance[T](inj, key)
	require.NoError(t, err, "failed to resolve %s", key)
	return v
}

// AssertNotFound checks that resolving key fails with a BindingNotFoundError.
func AssertNotFound(t testing.TB, inj *saber.Injector, key saber.Key) {
	t.Helper()
	_, err := inj.GetProvider(key)
	assert.Error(t, err)
	assert.True(t, saber.IsNotFound(err), "expected binding not found error, got: %v", err)
}

// AssertPanicsWithError checks if a function panics with specific error
func AssertPanicsWithError(t testing.TB, expectedError error, f func(), msgAndArgs ...any) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			assert.Fail(t, "function did not panic", msgAndArgs...)
			return
		}

		err, ok := r.(error)
		if !ok {
			assert.Fail(t, "panic value is not an error", "%v", r)
			return
		}

		assert.ErrorIs(t, err, expectedError, msgAndArgs...)
	}()
	f()
}

// AssertErrorType checks if an error is of a specific type
func AssertErrorType[T error](t testing.TB, err error, msgAndArgs ...any) T {
	t.Helper()
	var target T
	assert.ErrorAs(t, err, &target, msgAndArgs...)
	return target
}
