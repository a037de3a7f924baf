package document

import (
	"context"
	"fmt"

	"github.com/lindstrom-j/docmap/docstore"
	"github.com/lindstrom-j/docmap/internal/hexid"
)

// Collection binds one collection's storage to its configuration. All
// documents of a collection share a Store; the Store is shared context and
// is never mutated by this package.
type Collection struct {
	store  docstore.Store
	config Config
}

// NewCollection creates a Collection over store. The store must be
// dedicated to this collection's documents.
func NewCollection(store docstore.Store, config Config) *Collection {
	config.validate()
	return &Collection{store: store, config: config}
}

// FindOptions configures read operations.
type FindOptions struct {
	// Projection limits the returned fields. Documents materialized from
	// a projection default to read-only, since they are incomplete.
	Projection docstore.Projection

	// ReadOnly overrides the projection-based read-only default.
	ReadOnly *bool

	// AnyVersion disables the implicit object-version filter.
	AnyVersion bool

	// Version, when non-zero, filters on this object version instead of
	// the collection's current one.
	Version int
}

func (o FindOptions) readonly() bool {
	if o.ReadOnly != nil {
		return *o.ReadOnly
	}
	return o.Projection != nil
}

// New constructs a new, unsaved document around data. The document takes
// ownership of the map; a nil map starts an empty document.
func (c *Collection) New(data docstore.Payload) (*Document, error) {
	if data == nil {
		data = docstore.Payload{}
	}
	return c.materialize(data, false, "")
}

// NewObject constructs a new document under a registered subclass key and
// returns it wrapped by the registered factory. The discriminator is
// written to the payload on save.
func (c *Collection) NewObject(key string, data docstore.Payload) (Object, error) {
	factory, ok := c.config.Registry.factory(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubclass, key)
	}
	if data == nil {
		data = docstore.Payload{}
	}
	doc, err := c.materialize(data, false, key)
	if err != nil {
		return nil, err
	}
	return factory(doc), nil
}

// Find returns every matching document. The pre-read hook gatekeeps the
// whole query; the per-document read hook silently drops documents it
// refuses.
func (c *Collection) Find(ctx context.Context, filter docstore.Filter, opts FindOptions) ([]*Document, error) {
	if !c.config.Hooks.preRead() {
		return nil, fmt.Errorf("%w: read", ErrAuthorization)
	}
	raws, err := c.store.Find(ctx, c.versionFilter(filter, opts), opts.Projection)
	if err != nil {
		return nil, err
	}

	var docs []*Document
	for _, raw := range raws {
		doc, err := c.load(raw, opts)
		if err != nil {
			return nil, err
		}
		if !c.config.Hooks.read(doc) {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// FindOne returns the first matching document, or ErrNotFound. Only the
// first candidate is inspected: if the read hook suppresses it, no further
// candidate is considered.
func (c *Collection) FindOne(ctx context.Context, filter docstore.Filter, opts FindOptions) (*Document, error) {
	if !c.config.Hooks.preRead() {
		return nil, fmt.Errorf("%w: read", ErrAuthorization)
	}
	raw, err := c.store.FindOne(ctx, c.versionFilter(filter, opts), opts.Projection)
	if err != nil {
		return nil, err
	}
	doc, err := c.load(raw, opts)
	if err != nil {
		return nil, err
	}
	if !c.config.Hooks.read(doc) {
		return nil, ErrNotFound
	}
	return doc, nil
}

// LoadByID returns the document stored under the given primary key.
func (c *Collection) LoadByID(ctx context.Context, id string, opts FindOptions) (*Document, error) {
	if !hexid.Valid(id) {
		return nil, fmt.Errorf("%w: bad primary key %q", ErrMalformedID, id)
	}
	return c.FindOne(ctx, docstore.Filter{FieldID: id}, opts)
}

// FindObjects is Find with polymorphic resolution: each document is wrapped
// by the factory its discriminator resolves to. Documents with a missing or
// unknown discriminator are returned unwrapped.
func (c *Collection) FindObjects(ctx context.Context, filter docstore.Filter, opts FindOptions) ([]Object, error) {
	docs, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	objects := make([]Object, len(docs))
	for i, doc := range docs {
		objects[i] = c.wrap(doc)
	}
	return objects, nil
}

// FindOneObject is FindOne with polymorphic resolution.
func (c *Collection) FindOneObject(ctx context.Context, filter docstore.Filter, opts FindOptions) (Object, error) {
	doc, err := c.FindOne(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return c.wrap(doc), nil
}

// LoadObjectByID is LoadByID with polymorphic resolution.
func (c *Collection) LoadObjectByID(ctx context.Context, id string, opts FindOptions) (Object, error) {
	doc, err := c.LoadByID(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	return c.wrap(doc), nil
}

// LoadProxyByID decodes a composite identifier, loads the root document and
// walks the key chain through the given containers, one per key, returning
// the final proxy. The final container's registry, if any, resolves the
// proxy's concrete type.
func (c *Collection) LoadProxyByID(ctx context.Context, id string, containers ...Container) (ProxyObject, error) {
	pk, keys, err := c.DecodeID(id)
	if err != nil {
		return nil, err
	}
	if len(containers) == 0 || len(keys) != len(containers) {
		return nil, fmt.Errorf("%w: %d keys for %d containers", ErrMalformedID, len(keys), len(containers))
	}

	doc, err := c.LoadByID(ctx, pk, FindOptions{})
	if err != nil {
		return nil, err
	}

	var parent Parent = doc
	var proxy *Proxy
	for i, container := range containers {
		proxy, err = container.Get(parent, keys[i])
		if err != nil {
			return nil, err
		}
		parent = proxy
	}
	return containers[len(containers)-1].wrapProxy(proxy), nil
}

// load materializes one raw payload into a Document.
func (c *Collection) load(raw docstore.Payload, opts FindOptions) (*Document, error) {
	discriminator, _ := raw[FieldSubclass].(string)
	return c.materialize(raw, opts.readonly(), discriminator)
}

func (c *Collection) materialize(data docstore.Payload, readonly bool, discriminator string) (*Document, error) {
	doc := &Document{
		coll:          c,
		data:          data,
		readonly:      readonly,
		discriminator: discriminator,
	}
	doc.seedAllocator()
	if !c.config.Hooks.init(doc) {
		return nil, fmt.Errorf("%w: init", ErrAuthorization)
	}
	return doc, nil
}

// wrap resolves a document's discriminator through the collection registry,
// falling back to the document itself.
func (c *Collection) wrap(doc *Document) Object {
	if factory, ok := c.config.Registry.factory(doc.discriminator); ok {
		return factory(doc)
	}
	return doc
}

// versionFilter merges the implicit object-version equality term into the
// caller's filter, honoring the opt-out and override in opts.
func (c *Collection) versionFilter(filter docstore.Filter, opts FindOptions) docstore.Filter {
	if c.config.ObjectVersion == 0 || opts.AnyVersion {
		return filter
	}
	version := c.config.ObjectVersion
	if opts.Version != 0 {
		version = opts.Version
	}
	merged := make(docstore.Filter, len(filter)+1)
	for k, v := range filter {
		merged[k] = v
	}
	merged[FieldVersion] = version
	return merged
}
