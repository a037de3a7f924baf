package document

// Config describes one collection of documents.
type Config struct {
	// KeySeparator joins the primary key and container keys in composite
	// identifiers. It must never appear in a primary key or container
	// key; since both are hex by default, the default "g" is safe. It
	// must stay fixed for the lifetime of stored identifiers.
	KeySeparator string

	// ObjectVersion, when non-zero, is stamped into each saved document
	// under FieldVersion and added as an implicit equality filter on
	// reads. This drives schema versioning; migration itself is out of
	// scope.
	ObjectVersion int

	// Registry resolves document discriminators for polymorphic
	// collections. Nil for plain collections.
	Registry *Registry

	// Hooks are the authorization call sites. Nil hooks allow everything.
	Hooks Hooks

	// Containers declares the container layout of documents in this
	// collection. The key allocator walks this layout, recursively
	// through Children, to seed itself above keys already in use.
	Containers []Container
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.KeySeparator == "" {
		c.KeySeparator = "g"
	}
}

// Hooks carries the authorization hooks for a collection. Each hook returns
// whether the operation may proceed; a false return surfaces as
// ErrAuthorization, except Read, which silently suppresses the document.
type Hooks struct {
	// Init runs after a document object is constructed, for new documents
	// and for every document materialized by a read.
	Init func(*Document) bool

	// PreRead gatekeeps a whole query before anything is fetched.
	PreRead func() bool

	// Read runs per materialized document; false suppresses it as if it
	// had not matched.
	Read func(*Document) bool

	// Save runs before inserting or replacing a document.
	Save func(*Document) bool

	// Delete runs before deleting a document.
	Delete func(*Document) bool
}

func (h Hooks) init(d *Document) bool {
	return h.Init == nil || h.Init(d)
}

func (h Hooks) preRead() bool {
	return h.PreRead == nil || h.PreRead()
}

func (h Hooks) read(d *Document) bool {
	return h.Read == nil || h.Read(d)
}

func (h Hooks) save(d *Document) bool {
	return h.Save == nil || h.Save(d)
}

func (h Hooks) delete(d *Document) bool {
	return h.Delete == nil || h.Delete(d)
}
