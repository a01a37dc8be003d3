// Package license implements the core license-document model: a
// schema-governed, field-keyed record with validated writes and
// tamper-evident file hashing.
//
// # Architecture Overview
//
// The package consists of several components:
//
//	- Document: case-insensitive field container with validated writes
//	- Schema: immutable declaration of allowed fields, types, defaults
//	- Field validators: fail-fast per-field checks applied on write
//	- Field processors: derive field values at construction time
//	  (file hashes, GUIDs, timestamps)
//	- Serializers: format field values for the external text encoding
//	- Manager: bundles the registries and drives document construction
//	  and whole-document validation
//
// # Validation Model
//
// Validation runs at two tiers. Writing a field runs that field's
// validator and fails fast: a rejected value leaves the document
// untouched. Whole-document validation against a schema is fail-slow:
// every structural problem is collected before the batch is reported, so
// a user sees the complete list in one pass.
//
// # Extension Points
//
// Processors, validators, and serializers live in case-insensitive
// registries with last-registration-wins semantics. Registering under a
// built-in name silently replaces the built-in; this is the intended
// customization mechanism.
//
// # Signing
//
// Cryptographic signing is an external collaborator. The package only
// produces the canonical byte representation of a document's signed
// fields and hands it to a Signer or Verifier implementation.
package license
