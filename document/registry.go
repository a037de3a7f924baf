package document

import (
	"fmt"
	"sync"
)

// Object is implemented by user types wrapping a Document. Embedding
// *Document satisfies it automatically: the embedded field is named
// Document, so the accessor carries a different name to stay promotable.
type Object interface {
	Doc() *Document
}

// Factory builds a concrete Object around a materialized document.
type Factory func(*Document) Object

// Registry maps discriminator keys to document factories. Each Registry
// instance is an isolated namespace: two hierarchies with separate
// registries never observe each other's keys, even when the key strings
// collide. Registration happens once during start-up, not per call.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry namespace.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register stores factory under key, guarding against duplicates.
func (r *Registry) Register(key string, factory Factory) error {
	if key == "" {
		return fmt.Errorf("docmap: subclass key must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("docmap: factory for %q is nil", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSubclass, key)
	}
	r.factories[key] = factory
	return nil
}

// factory looks up the factory for key. Missing and unknown keys report
// false; the caller falls back to the plain document, so data written
// before a subclass existed still loads.
func (r *Registry) factory(key string) (Factory, bool) {
	if r == nil || key == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[key]
	return f, ok
}

// ProxyObject is implemented by user types wrapping a Proxy. Embedding
// *Proxy satisfies it automatically; as with Object, the accessor name
// must not collide with the embedded field name Proxy.
type ProxyObject interface {
	Subdoc() *Proxy
}

// ProxyFactory builds a concrete ProxyObject around a subdocument proxy.
type ProxyFactory func(*Proxy) ProxyObject

// ProxyRegistry is the subdocument counterpart of Registry, with the same
// namespace isolation and fallback semantics.
type ProxyRegistry struct {
	mu        sync.RWMutex
	factories map[string]ProxyFactory
}

// NewProxyRegistry creates an empty proxy registry namespace.
func NewProxyRegistry() *ProxyRegistry {
	return &ProxyRegistry{factories: make(map[string]ProxyFactory)}
}

// Register stores factory under key, guarding against duplicates.
func (r *ProxyRegistry) Register(key string, factory ProxyFactory) error {
	if key == "" {
		return fmt.Errorf("docmap: subclass key must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("docmap: factory for %q is nil", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSubclass, key)
	}
	r.factories[key] = factory
	return nil
}

func (r *ProxyRegistry) factory(key string) (ProxyFactory, bool) {
	if r == nil || key == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[key]
	return f, ok
}
