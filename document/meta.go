package document

import (
	"time"

	"github.com/lindstrom-j/docmap/docstore"
)

// Reserved payload fields managed by this package.
const (
	// FieldID holds the primary key.
	FieldID = docstore.FieldID

	// FieldUpdated holds the version tag: the last-modified timestamp
	// compared on conditional replace.
	FieldUpdated = docstore.FieldUpdated

	// FieldCreated holds the creation timestamp, stamped on first save.
	FieldCreated = "_created"

	// FieldVersion holds the object schema version when the collection
	// declares one.
	FieldVersion = "_objver"

	// FieldSubclass holds the document discriminator key.
	FieldSubclass = "_sckey"

	// FieldProxySubclass holds the subdocument discriminator key.
	FieldProxySubclass = "_psckey"

	// FieldSubdocKey holds an ordered-container element's own key.
	FieldSubdocKey = "_sdkey"
)

// SingleProxyKey is the sentinel key a single container contributes to
// composite identifiers. The real payload field name is never encoded so it
// cannot leak through a user-visible identifier. Allocated keys start at 1,
// so the sentinel never collides.
const SingleProxyKey = "0"

// nowTag returns a fresh version tag. Tags are compared as strings, so
// nanosecond precision keeps back-to-back saves distinguishable.
func nowTag() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
