package document

import (
	"strconv"

	"github.com/lindstrom-j/docmap/docstore"
)

// NextKey returns a container key that has never been returned before for
// this document instance, formatted as lowercase hex. Allocation is a pure
// counter and cannot fail; keys are never reused, even after the entry they
// named is removed.
//
// The counter is not persisted. It is seeded when the document is
// constructed by scanning every container declared in the collection
// Config, recursively through nested containers, so keys allocated after a
// reload never collide with keys already in the document. Keys start at 1;
// "0" is reserved for single-container proxies.
func (d *Document) NextKey() string {
	if !d.seeded {
		d.seedAllocator()
	}
	d.lastKey++
	return strconv.FormatUint(d.lastKey, 16)
}

func (d *Document) seedAllocator() {
	d.lastKey = maxContainerKey(d.data, d.coll.config.Containers)
	d.seeded = true
}

// maxContainerKey walks the declared container layout and returns the
// largest hex key in use. Caller-assigned keys that do not parse as hex are
// outside the allocator's number space and are ignored.
func maxContainerKey(payload docstore.Payload, containers []Container) uint64 {
	var max uint64
	note := func(n uint64) {
		if n > max {
			max = n
		}
	}
	noteKey := func(key string) {
		if n, err := strconv.ParseUint(key, 16, 64); err == nil {
			note(n)
		}
	}

	for _, c := range containers {
		switch c.Kind {
		case Keyed:
			entries, _ := payload[c.Name].(map[string]any)
			for key, value := range entries {
				noteKey(key)
				if sub, ok := value.(map[string]any); ok {
					note(maxContainerKey(sub, c.Children))
				}
			}
		case Ordered:
			entries, _ := payload[c.Name].([]any)
			for _, value := range entries {
				sub, ok := value.(map[string]any)
				if !ok {
					continue
				}
				if key, ok := sub[FieldSubdocKey].(string); ok {
					noteKey(key)
				}
				note(maxContainerKey(sub, c.Children))
			}
		case Single:
			if sub, ok := payload[c.Name].(map[string]any); ok {
				note(maxContainerKey(sub, c.Children))
			}
		}
	}
	return max
}
