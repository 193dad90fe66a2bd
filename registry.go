package saber

import "slices"

// bindingRegistry maps key IDs to providers for a single injector.
//
// Registration is write-once per key and happens while the owning injector is
// being configured. After sealing the registry is only read, without locks.
type bindingRegistry struct {
	providers map[string]Provider
	keys      []Key
	sealed    bool
}

func newBindingRegistry() *bindingRegistry {
	return &bindingRegistry{
		providers: make(map[string]Provider),
	}
}

// register stores provider under key. It reports false when key is taken.
func (r *bindingRegistry) register(key Key, provider Provider) bool {
	if _, exists := r.providers[key.id]; exists {
		return false
	}
	r.providers[key.id] = provider
	r.keys = append(r.keys, key)
	return true
}

// lookup finds the provider registered under id in this registry only.
func (r *bindingRegistry) lookup(id string) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

func (r *bindingRegistry) seal() {
	r.sealed = true
}

// registeredKeys returns the keys in registration order.
func (r *bindingRegistry) registeredKeys() []Key {
	return slices.Clone(r.keys)
}

func (r *bindingRegistry) size() int {
	return len(r.providers)
}
