// Package interceptors provides ready-made saber.ProviderInterceptor
// implementations.
//
// Interceptors are installed once per engine:
//
//	engine, err := saber.NewEngine(
//	    saber.WithInterceptors(
//	        interceptors.Logging(logger),
//	        interceptors.Tracing(otel.Tracer("app")),
//	    ),
//	)
//
// The last interceptor passed to WithInterceptors runs first.
package interceptors

import (
	"github.com/junioryono/saber"
)

// Override returns an interceptor that answers every resolution of key with
// provider without consulting the injector tree. Other keys pass through.
func Override(key saber.Key, provider saber.Provider) saber.ProviderInterceptor {
	if key.IsZero() {
		panic(saber.ErrKeyZero)
	}
	if provider == nil {
		panic(saber.ErrProviderNil)
	}

	return saber.InterceptorFunc(func(chain saber.Chain, k saber.Key) (saber.Provider, error) {
		if k.Equal(key) {
			return provider, nil
		}
		return chain.Proceed(k)
	})
}

// Fallback returns an interceptor that recovers from missing bindings. When no
// injector holds the requested key, fn is asked for a substitute; if it
// reports false the original not-found error is returned. Any other failure
// passes through untouched.
func Fallback(fn func(key saber.Key) (saber.Provider, bool)) saber.ProviderInterceptor {
	if fn == nil {
		panic(saber.ErrProviderNil)
	}

	return saber.InterceptorFunc(func(chain saber.Chain, key saber.Key) (saber.Provider, error) {
		p, err := chain.Proceed(key)
		if err == nil || !saber.IsNotFound(err) {
			return p, err
		}
		if substitute, ok := fn(key); ok && substitute != nil {
			return substitute, nil
		}
		return nil, err
	})
}
