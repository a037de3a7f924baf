package document

import (
	"fmt"
	"strings"

	"github.com/lindstrom-j/docmap/internal/hexid"
)

// EncodeID joins a primary key and a chain of container keys into one
// composite identifier using the collection's key separator. Keys must be
// non-empty and must not contain the separator. Single-container proxies
// contribute the SingleProxyKey sentinel, never their payload field name.
func (c *Collection) EncodeID(pk string, keys ...string) (string, error) {
	if !hexid.Valid(pk) {
		return "", fmt.Errorf("%w: bad primary key %q", ErrMalformedID, pk)
	}
	sep := c.config.KeySeparator
	for _, key := range keys {
		if key == "" || strings.Contains(key, sep) {
			return "", fmt.Errorf("%w: bad container key %q", ErrMalformedID, key)
		}
	}
	if len(keys) == 0 {
		return pk, nil
	}
	return pk + sep + strings.Join(keys, sep), nil
}

// DecodeID is the strict inverse of EncodeID: it splits id on the
// separator, validates the first segment as a primary key and returns the
// remaining segments as container keys in order. Depth is uniform: any
// number of segments decodes the same way.
func (c *Collection) DecodeID(id string) (pk string, keys []string, err error) {
	if id == "" {
		return "", nil, fmt.Errorf("%w: empty identifier", ErrMalformedID)
	}
	parts := strings.Split(id, c.config.KeySeparator)
	if !hexid.Valid(parts[0]) {
		return "", nil, fmt.Errorf("%w: bad primary key %q", ErrMalformedID, parts[0])
	}
	for _, key := range parts[1:] {
		if key == "" {
			return "", nil, fmt.Errorf("%w: empty container key in %q", ErrMalformedID, id)
		}
	}
	return parts[0], parts[1:], nil
}
