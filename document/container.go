package document

import (
	"context"
	"fmt"
	"sort"

	"github.com/lindstrom-j/docmap/docstore"
)

// Kind is the shape of a subdocument container.
type Kind int

const (
	// Keyed containers map opaque string keys to subdocuments.
	Keyed Kind = iota

	// Ordered containers hold subdocuments in a list. Position is not
	// identity: each element carries its own key under FieldSubdocKey and
	// is addressed by that key, never by index.
	Ordered

	// Single containers hold exactly one subdocument at a fixed path.
	Single
)

// Container describes one subdocument region inside a document and gives
// uniform access to it across the three shapes. Containers are declared
// once, typically as package-level values, and listed in Config.Containers.
type Container struct {
	// Name is the payload field holding the container.
	Name string

	// Kind selects the container shape.
	Kind Kind

	// Registry resolves subdocument discriminators for polymorphic
	// containers. Nil for plain containers.
	Registry *ProxyRegistry

	// Children declares containers nested inside this container's
	// subdocuments, for allocator seeding and identifier walking.
	Children []Container
}

// CreateOptions configures Create behavior.
type CreateOptions struct {
	// SkipSave leaves the new subdocument in memory only; the caller
	// saves the root separately. By default Create saves the root.
	SkipSave bool
}

// Get returns a proxy for the subdocument stored under key, or ErrNotFound.
// For Single containers the key is ignored; the fixed path either holds the
// subdocument or it does not.
func (c Container) Get(parent Parent, key string) (*Proxy, error) {
	switch c.Kind {
	case Keyed:
		entries, _ := parent.payloadRef()[c.Name].(map[string]any)
		if _, ok := entries[key]; !ok {
			return nil, fmt.Errorf("%w: key %q in %s", ErrNotFound, key, c.Name)
		}
		return &Proxy{parent: parent, container: c, key: key}, nil

	case Ordered:
		entries, _ := parent.payloadRef()[c.Name].([]any)
		for seq, entry := range entries {
			sub, ok := entry.(map[string]any)
			if ok && elementKey(sub) == key {
				return &Proxy{parent: parent, container: c, key: key, seq: seq}, nil
			}
		}
		return nil, fmt.Errorf("%w: key %q in %s", ErrNotFound, key, c.Name)

	case Single:
		if _, ok := parent.payloadRef()[c.Name].(map[string]any); !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, c.Name)
		}
		return &Proxy{parent: parent, container: c, key: SingleProxyKey}, nil
	}
	return nil, fmt.Errorf("%w: unknown container kind", ErrUnsupported)
}

// GetObject is Get with polymorphic resolution through the container's
// registry.
func (c Container) GetObject(parent Parent, key string) (ProxyObject, error) {
	proxy, err := c.Get(parent, key)
	if err != nil {
		return nil, err
	}
	return c.wrapProxy(proxy), nil
}

// Create inserts data as a new subdocument and returns its proxy. For Keyed
// and Ordered containers a fresh key is allocated from the root document's
// allocator; for Single containers the subdocument is placed at the fixed
// path, overwriting any existing value. Unless opts.SkipSave is set, the
// root document is saved; on save failure the in-memory insertion remains
// and the error is returned.
func (c Container) Create(ctx context.Context, parent Parent, data docstore.Payload, opts CreateOptions) (*Proxy, error) {
	proxy, err := c.insert(parent, data)
	if err != nil {
		return nil, err
	}
	if !opts.SkipSave {
		if err := parent.Root().Save(ctx); err != nil {
			return nil, fmt.Errorf("save after create: %w", err)
		}
	}
	return proxy, nil
}

// CreateObject creates a subdocument under a registered subclass key,
// stamping the discriminator into the data, and returns the proxy wrapped
// by the registered factory.
func (c Container) CreateObject(ctx context.Context, parent Parent, subclassKey string, data docstore.Payload, opts CreateOptions) (ProxyObject, error) {
	factory, ok := c.Registry.factory(subclassKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubclass, subclassKey)
	}
	if data == nil {
		data = docstore.Payload{}
	}
	data[FieldProxySubclass] = subclassKey
	proxy, err := c.Create(ctx, parent, data, opts)
	if err != nil {
		return nil, err
	}
	return factory(proxy), nil
}

func (c Container) insert(parent Parent, data docstore.Payload) (*Proxy, error) {
	payload := parent.payloadRef()
	if payload == nil {
		return nil, fmt.Errorf("%w: parent subdocument is gone", ErrNotFound)
	}
	if data == nil {
		data = docstore.Payload{}
	}

	switch c.Kind {
	case Keyed:
		entries, ok := payload[c.Name].(map[string]any)
		if !ok {
			entries = map[string]any{}
			payload[c.Name] = entries
		}
		key := parent.Root().NextKey()
		entries[key] = data
		return &Proxy{parent: parent, container: c, key: key}, nil

	case Ordered:
		entries, _ := payload[c.Name].([]any)
		key := parent.Root().NextKey()
		data[FieldSubdocKey] = key
		payload[c.Name] = append(entries, any(data))
		return &Proxy{parent: parent, container: c, key: key, seq: len(entries)}, nil

	case Single:
		// Only one may exist: create overwrites.
		payload[c.Name] = data
		return &Proxy{parent: parent, container: c, key: SingleProxyKey}, nil
	}
	return nil, fmt.Errorf("%w: unknown container kind", ErrUnsupported)
}

// Remove deletes the entry stored under key. The key is never reallocated,
// even once the container is empty. For Single containers the key is
// ignored and the fixed path is cleared. Removal is in-memory only; the
// caller (or Proxy.Delete) saves the root.
func (c Container) Remove(parent Parent, key string) error {
	payload := parent.payloadRef()
	if payload == nil {
		return fmt.Errorf("%w: parent subdocument is gone", ErrNotFound)
	}

	switch c.Kind {
	case Keyed:
		entries, _ := payload[c.Name].(map[string]any)
		if _, ok := entries[key]; !ok {
			return fmt.Errorf("%w: key %q in %s", ErrNotFound, key, c.Name)
		}
		delete(entries, key)
		return nil

	case Ordered:
		entries, _ := payload[c.Name].([]any)
		for seq, entry := range entries {
			sub, ok := entry.(map[string]any)
			if ok && elementKey(sub) == key {
				payload[c.Name] = append(entries[:seq], entries[seq+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: key %q in %s", ErrNotFound, key, c.Name)

	case Single:
		if _, ok := payload[c.Name]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, c.Name)
		}
		delete(payload, c.Name)
		return nil
	}
	return fmt.Errorf("%w: unknown container kind", ErrUnsupported)
}

// List returns a proxy per entry: Keyed containers in key order, Ordered
// containers in list order. A single subdocument is not an iterable
// collection, so List on a Single container fails with ErrUnsupported.
func (c Container) List(parent Parent) ([]*Proxy, error) {
	if c.Kind == Single {
		return nil, fmt.Errorf("%w: single containers cannot be listed", ErrUnsupported)
	}
	payload := parent.payloadRef()
	if payload == nil {
		return nil, fmt.Errorf("%w: parent subdocument is gone", ErrNotFound)
	}

	var proxies []*Proxy
	switch c.Kind {
	case Keyed:
		entries, _ := payload[c.Name].(map[string]any)
		keys := make([]string, 0, len(entries))
		for key := range entries {
			keys = append(keys, key)
		}
		sortHexKeys(keys)
		for _, key := range keys {
			proxies = append(proxies, &Proxy{parent: parent, container: c, key: key})
		}

	case Ordered:
		entries, _ := payload[c.Name].([]any)
		for seq, entry := range entries {
			sub, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			proxies = append(proxies, &Proxy{parent: parent, container: c, key: elementKey(sub), seq: seq})
		}
	}
	return proxies, nil
}

// ListObjects is List with polymorphic resolution of every entry.
func (c Container) ListObjects(parent Parent) ([]ProxyObject, error) {
	proxies, err := c.List(parent)
	if err != nil {
		return nil, err
	}
	objects := make([]ProxyObject, len(proxies))
	for i, proxy := range proxies {
		objects[i] = c.wrapProxy(proxy)
	}
	return objects, nil
}

// Exists reports whether key resolves in the container. For Single
// containers the key is ignored.
func (c Container) Exists(parent Parent, key string) bool {
	_, err := c.Get(parent, key)
	return err == nil
}

// wrapProxy resolves a subdocument's discriminator through the container
// registry, falling back to the proxy itself.
func (c Container) wrapProxy(proxy *Proxy) ProxyObject {
	discriminator, _ := proxy.Get(FieldProxySubclass)
	key, _ := discriminator.(string)
	if factory, ok := c.Registry.factory(key); ok {
		return factory(proxy)
	}
	return proxy
}

func elementKey(sub map[string]any) string {
	key, _ := sub[FieldSubdocKey].(string)
	return key
}

// sortHexKeys orders keys by length first and lexically within a length.
// For the hex keys the allocator hands out this equals numeric order;
// caller-assigned keys sort by the same rule.
func sortHexKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
}
