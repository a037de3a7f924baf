// Package document maps whole documents and nested subdocuments in a
// schemaless document store onto addressable, independently loadable and
// saveable objects.
//
// A [Collection] binds a [docstore.Store] to a [Config] describing key
// separator, object version and container layout. Documents are wrapped in
// [Document]; nested subdocuments are reached through [Container] accessors
// that hand out live [Proxy] views. A proxy never copies data: reading or
// writing through it touches the parent payload in place, and saving it
// persists the whole root document in one conditional write.
//
// # Concurrency
//
// A Document instance is not safe for concurrent use; callers share one
// across goroutines at their own risk. Cross-process concurrency is handled
// by the optimistic version tag: of two writers racing to save the same
// document, exactly one succeeds and the other receives
// [ErrDocumentModified] and must reload.
//
// # Identifiers
//
// Every subdocument is addressable by a composite identifier: the root
// document's hex primary key joined with a chain of container keys by
// [Config.KeySeparator]. Keys allocated by [Document.NextKey] are hex, so
// the default separator "g" cannot appear in them.
//
// # Polymorphism
//
// A [Registry] (documents) or [ProxyRegistry] (subdocuments) maps a stored
// discriminator to a factory producing the concrete wrapper type. Each
// registry instance is its own namespace; resolution of an unknown or
// missing discriminator falls back to the plain wrapper so data written
// before a subclass existed still loads.
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrNotFound] - key or identifier does not resolve
//   - [ErrMalformedID] - identifier failed to decode
//   - [ErrReadOnly] - save attempted on a read-only document
//   - [ErrAuthorization] - an authorization hook returned false
//   - [ErrDocumentModified] - conditional replace matched no document
//   - [ErrUnsupported] - operation not valid for the container shape
package document
