// Package meld implements the variant meld engine: folding several
// structurally identical source assets, each tagged as one visual
// variant, into a single combined document that switches materials at
// runtime without reloading geometry.
//
// A Session folds sources left to right. The first source becomes the
// baseline; every later source must pass the structural equivalence
// gate (bit-exact geometry, materials excluded) before any of its
// content is interned. Materials, textures, images and samplers are
// deduplicated through a content-addressed store, so byte-identical
// content collapses to one copy even across tags. Each fold step is
// atomic: it either fully commits or returns an error leaving the
// session untouched.
//
// The engine never logs and holds no external resources; all errors
// are plain values carrying enough context for the caller to render a
// diagnostic.
package meld
