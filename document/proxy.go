package document

import (
	"context"
	"fmt"
	"sort"

	"github.com/lindstrom-j/docmap/docstore"
)

// Parent is a node a proxy can hang off: the root Document or another
// Proxy. The relation is a lookup chain, never ownership; walking Root
// follows the chain to the Document that persists everything.
type Parent interface {
	Root() *Document

	// payloadRef returns the live mapping this node exposes, or nil when
	// the node's own entry no longer exists.
	payloadRef() docstore.Payload

	// idKeys returns the chain of identifier keys from the root down to
	// this node.
	idKeys() []string
}

// Proxy is a live view of one subdocument, bound to (parent, container,
// key). It holds no data of its own: every read and write goes straight to
// the subdocument inside the root document's payload, so mutating the proxy
// mutates the root in place and no copy ever exists.
//
// A proxy whose entry has been removed is invalid: accessors see no data
// and Save/Delete report ErrNotFound where applicable.
type Proxy struct {
	parent    Parent
	container Container
	key       string

	// seq caches the list position for Ordered containers. It is only a
	// hint; the element is always re-identified by its key.
	seq int
}

var _ ProxyObject = (*Proxy)(nil)
var _ Parent = (*Proxy)(nil)

// Subdoc returns the proxy itself, satisfying ProxyObject.
func (p *Proxy) Subdoc() *Proxy { return p }

// Root walks the parent chain to the owning Document.
func (p *Proxy) Root() *Document { return p.parent.Root() }

// Key returns the container key this proxy is bound to.
func (p *Proxy) Key() string { return p.key }

// Container returns the container this proxy reads through.
func (p *Proxy) Container() Container { return p.container }

func (p *Proxy) payloadRef() docstore.Payload {
	parentPayload := p.parent.payloadRef()
	if parentPayload == nil {
		return nil
	}

	switch p.container.Kind {
	case Keyed:
		entries, _ := parentPayload[p.container.Name].(map[string]any)
		sub, _ := entries[p.key].(map[string]any)
		return sub

	case Ordered:
		entries, _ := parentPayload[p.container.Name].([]any)
		if p.seq >= 0 && p.seq < len(entries) {
			if sub, ok := entries[p.seq].(map[string]any); ok && elementKey(sub) == p.key {
				return sub
			}
		}
		// The hint is stale; re-locate by key.
		for seq, entry := range entries {
			if sub, ok := entry.(map[string]any); ok && elementKey(sub) == p.key {
				p.seq = seq
				return sub
			}
		}
		return nil

	case Single:
		sub, _ := parentPayload[p.container.Name].(map[string]any)
		return sub
	}
	return nil
}

func (p *Proxy) idKeys() []string {
	visible := p.key
	if p.container.Kind == Single {
		visible = SingleProxyKey
	}
	return append(p.parent.idKeys(), visible)
}

// ID returns the composite identifier locating this subdocument from the
// root: the root's primary key joined with the chain of container keys.
// The root must have been saved at least once.
func (p *Proxy) ID() (string, error) {
	root := p.Root()
	if !root.Persisted() {
		return "", ErrNotSaved
	}
	return root.coll.EncodeID(root.ID(), p.idKeys()...)
}

// Data returns the live subdocument, or nil if the entry is gone.
func (p *Proxy) Data() docstore.Payload { return p.payloadRef() }

// Get returns the value stored under key in the subdocument.
func (p *Proxy) Get(key string) (any, bool) {
	sub := p.payloadRef()
	if sub == nil {
		return nil, false
	}
	v, ok := sub[key]
	return v, ok
}

// Set stores value under key in the subdocument, writing directly into the
// root document's payload. Setting on an invalid proxy is a no-op.
func (p *Proxy) Set(key string, value any) {
	if sub := p.payloadRef(); sub != nil {
		sub[key] = value
	}
}

// Unset removes key from the subdocument.
func (p *Proxy) Unset(key string) {
	if sub := p.payloadRef(); sub != nil {
		delete(sub, key)
	}
}

// Keys returns the subdocument's keys in sorted order.
func (p *Proxy) Keys() []string {
	sub := p.payloadRef()
	keys := make([]string, 0, len(sub))
	for k := range sub {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Discriminator returns the subdocument's subclass key, or "".
func (p *Proxy) Discriminator() string {
	key, _ := p.Get(FieldProxySubclass)
	s, _ := key.(string)
	return s
}

// Save persists the subdocument by saving the root document: the proxy
// never talks to the store itself, and the one conditional write covers
// every in-memory edit in the whole root payload.
func (p *Proxy) Save(ctx context.Context) error {
	return p.Root().Save(ctx)
}

// DeleteOptions configures Proxy.Delete behavior.
type DeleteOptions struct {
	// SkipSave removes the entry in memory only; the caller saves the
	// root separately. By default the root is saved immediately.
	SkipSave bool
}

// Delete removes this subdocument from its container and, unless
// opts.SkipSave is set, saves the root. The proxy is invalid afterwards.
func (p *Proxy) Delete(ctx context.Context, opts DeleteOptions) error {
	if err := p.container.Remove(p.parent, p.key); err != nil {
		return err
	}
	p.key = ""
	p.seq = -1
	if !opts.SkipSave {
		if err := p.Root().Save(ctx); err != nil {
			return fmt.Errorf("save after delete: %w", err)
		}
	}
	return nil
}
