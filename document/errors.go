package document

import (
	"errors"

	"github.com/lindstrom-j/docmap/docstore"
)

var (
	// ErrNotFound is returned when a key or identifier does not resolve to
	// a document or subdocument.
	ErrNotFound = docstore.ErrNotFound

	// ErrMalformedID is returned when a composite identifier cannot be
	// decoded.
	ErrMalformedID = errors.New("docmap: malformed identifier")

	// ErrReadOnly is returned when saving a read-only document.
	ErrReadOnly = errors.New("docmap: document is read-only")

	// ErrAuthorization is returned when an authorization hook refuses an
	// operation.
	ErrAuthorization = errors.New("docmap: authorization failed")

	// ErrDocumentModified is returned when the conditional replace matched
	// no document: another writer saved the document first.
	ErrDocumentModified = errors.New("docmap: document was modified concurrently")

	// ErrUnsupported is returned for operations a container shape cannot
	// perform, such as listing a single container.
	ErrUnsupported = errors.New("docmap: operation not supported")

	// ErrDuplicateSubclass is returned when registering a subclass key
	// twice in the same namespace.
	ErrDuplicateSubclass = errors.New("docmap: duplicate subclass key")

	// ErrUnknownSubclass is returned when creating an instance for a
	// subclass key that was never registered.
	ErrUnknownSubclass = errors.New("docmap: unknown subclass key")

	// ErrNotSaved is returned when an operation needs a primary key but
	// the document has never been saved.
	ErrNotSaved = errors.New("docmap: document has never been saved")
)
