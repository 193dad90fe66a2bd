package saber

// ProviderInterceptor can wrap or replace the provider resolved for a key.
//
// An interceptor may short-circuit by returning its own provider without
// calling chain.Proceed, wrap the provider returned by Proceed, or pass the
// result through unchanged. Returning a provider after Proceed failed with a
// BindingNotFoundError is the supported way to recover from a missing binding.
type ProviderInterceptor interface {
	Intercept(chain Chain, key Key) (Provider, error)
}

// InterceptorFunc adapts a function to ProviderInterceptor.
type InterceptorFunc func(chain Chain, key Key) (Provider, error)

// Intercept calls f.
func (f InterceptorFunc) Intercept(chain Chain, key Key) (Provider, error) {
	return f(chain, key)
}

// Chain is the remainder of an interceptor chain for one resolution.
type Chain interface {
	// Injector returns the injector the resolution started from.
	Injector() *Injector

	// Proceed invokes the next interceptor, or the hierarchical lookup once
	// all interceptors have run.
	Proceed(key Key) (Provider, error)
}

// resolutionChain is an immutable cursor over the interceptors still to run.
// Proceed never mutates the receiver, so a chain value may be shared or
// reused freely.
type resolutionChain struct {
	injector  *Injector
	remaining []ProviderInterceptor
}

func (c resolutionChain) Injector() *Injector {
	return c.injector
}

func (c resolutionChain) Proceed(key Key) (Provider, error) {
	if key.IsZero() {
		return nil, ErrKeyZero
	}

	n := len(c.remaining)
	if n == 0 {
		return c.injector.lookup(key)
	}

	next := resolutionChain{injector: c.injector, remaining: c.remaining[:n-1]}
	return c.remaining[n-1].Intercept(next, key)
}
