// Package dedup provides the content-addressed deduplication store
// used during a meld session.
//
// Every material definition, texture image and binary segment is
// reduced to a SlotID: a blake3 digest over its raw bytes plus any
// metadata that changes their interpretation. Interning is idempotent:
// byte-identical content of the same kind and metadata always maps to
// the same slot, and only one copy is ever kept.
//
// The store also tracks which variant tags reference each slot; that
// set drives the tag-dependent size statistics reported after every
// fold step. A store lives exactly as long as one session.
package dedup
