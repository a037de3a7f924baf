package document

import (
	"context"
	"fmt"
	"sort"

	"github.com/lindstrom-j/docmap/docstore"
)

// Document is the root aggregate: it owns the full payload, the primary
// key, the version tag and the save protocol. All mutation happens in
// memory; Save persists the whole payload in one conditional write.
type Document struct {
	coll          *Collection
	data          docstore.Payload
	readonly      bool
	discriminator string
	lastKey       uint64
	seeded        bool
}

var _ Object = (*Document)(nil)

// Doc returns the document itself, satisfying Object.
func (d *Document) Doc() *Document { return d }

// Root returns the document itself, satisfying Parent.
func (d *Document) Root() *Document { return d }

func (d *Document) payloadRef() docstore.Payload { return d.data }

func (d *Document) idKeys() []string { return nil }

// Data returns the live payload. Edits apply directly to the document.
func (d *Document) Data() docstore.Payload { return d.data }

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.data[key]
	return v, ok
}

// Set stores value under key.
func (d *Document) Set(key string, value any) {
	d.data[key] = value
}

// Unset removes key from the payload.
func (d *Document) Unset(key string) {
	delete(d.data, key)
}

// Keys returns the payload's top-level keys in sorted order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.data))
	for k := range d.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ID returns the primary key, or "" if the document has never been saved.
func (d *Document) ID() string {
	id, _ := d.data[FieldID].(string)
	return id
}

// Persisted reports whether the document currently has a primary key.
func (d *Document) Persisted() bool { return d.ID() != "" }

// VersionTag returns the current in-memory version tag, or "" before the
// first save.
func (d *Document) VersionTag() string {
	tag, _ := d.data[FieldUpdated].(string)
	return tag
}

// ReadOnly reports whether Save is blocked for this document.
func (d *Document) ReadOnly() bool { return d.readonly }

// SetReadOnly flags or unflags the document as read-only. Documents
// materialized from a projection are flagged automatically.
func (d *Document) SetReadOnly(readonly bool) { d.readonly = readonly }

// Discriminator returns the subclass key this document saves under, or "".
func (d *Document) Discriminator() string { return d.discriminator }

// Save inserts the document if it has no primary key, otherwise replaces
// the stored document conditional on the version tag. A new version tag is
// stamped before writing and adopted on success; on any failure every
// stamped field is rolled back, so the document stays usable for a retry.
//
// Returns ErrReadOnly for read-only documents, ErrAuthorization when the
// save hook refuses, and ErrDocumentModified when another writer saved the
// document first; in the last case the caller must reload and reapply or
// discard its changes.
func (d *Document) Save(ctx context.Context) error {
	return d.save(ctx, false)
}

// Upsert saves the document regardless of the stored version tag,
// overwriting any concurrent update. Useful when copying documents from
// another deployment. A document without a primary key is inserted as by
// Save.
func (d *Document) Upsert(ctx context.Context) error {
	return d.save(ctx, true)
}

func (d *Document) save(ctx context.Context, force bool) error {
	if d.readonly {
		return fmt.Errorf("%w: refusing to save", ErrReadOnly)
	}
	if !d.coll.config.Hooks.save(d) {
		return fmt.Errorf("%w: save", ErrAuthorization)
	}

	// Stamp metadata, remembering originals for rollback.
	var stamped []stampedField
	stamp := func(field string, value any) {
		old, existed := d.data[field]
		stamped = append(stamped, stampedField{field, old, existed})
		d.data[field] = value
	}
	rollback := func() {
		for i := len(stamped) - 1; i >= 0; i-- {
			s := stamped[i]
			if s.existed {
				d.data[s.field] = s.value
			} else {
				delete(d.data, s.field)
			}
		}
	}

	expectedTag := d.VersionTag()
	if d.discriminator != "" {
		stamp(FieldSubclass, d.discriminator)
	}
	stamp(FieldUpdated, nowTag())
	if _, ok := d.data[FieldCreated]; !ok {
		stamp(FieldCreated, d.data[FieldUpdated])
	}
	if d.coll.config.ObjectVersion != 0 {
		stamp(FieldVersion, d.coll.config.ObjectVersion)
	}

	switch {
	case !d.Persisted():
		id, err := d.coll.store.Insert(ctx, d.data)
		if err != nil {
			// Backends may have assigned the key before failing.
			delete(d.data, FieldID)
			rollback()
			return fmt.Errorf("insert: %w", err)
		}
		d.data[FieldID] = id

	case force:
		if err := d.coll.store.Replace(ctx, d.ID(), d.data); err != nil {
			rollback()
			return fmt.Errorf("upsert: %w", err)
		}

	default:
		replaced, err := d.coll.store.ConditionalReplace(ctx, d.ID(), expectedTag, d.data)
		if err != nil {
			rollback()
			return fmt.Errorf("replace: %w", err)
		}
		if !replaced {
			rollback()
			return fmt.Errorf("document %s: %w", d.ID(), ErrDocumentModified)
		}
	}
	return nil
}

type stampedField struct {
	field   string
	value   any
	existed bool
}

// Delete removes the document from the store by primary key. Delete does
// not re-check the version tag: the last delete wins. On success the
// primary key and version tag are cleared, so a subsequent Save creates a
// new document. Deleting a never-saved document is a no-op.
func (d *Document) Delete(ctx context.Context) error {
	if !d.Persisted() {
		return nil
	}
	if !d.coll.config.Hooks.delete(d) {
		return fmt.Errorf("%w: delete", ErrAuthorization)
	}
	if _, err := d.coll.store.Delete(ctx, d.ID()); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	delete(d.data, FieldID)
	delete(d.data, FieldUpdated)
	return nil
}
