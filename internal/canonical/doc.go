// Package canonical implements the file canonicalization engine that
// normalizes text before hashing, so cosmetic edits do not change a
// stored tamper-detection hash.
//
// # Architecture Overview
//
// An Engine holds two registries: canonicalizers by name and by claimed
// file extension. Hashing a file resolves a canonicalizer from the
// file's extension; when one is found the SHA-256 digest is computed
// over the canonical text, otherwise over the raw bytes.
//
// # Canonicalizers
//
// Two built-ins ship with the engine:
//
//	- text: strips comment lines and blank lines and collapses
//	  whitespace runs, for config-like files
//	- section: normalizes bracketed section files, dropping [TITLE]
//	  sections and inline ";" comments entirely
//
// Both are deterministic and idempotent: canonicalizing canonical text
// returns it unchanged. Custom canonicalizers register by name and
// extension with last-registration-wins semantics, and an extension map
// file can rebind extensions at startup.
package canonical
