// Package glb implements the binary-container codec: a 12-byte header
// (magic, version, total length) followed by one mandatory structural
// chunk and at most one binary payload chunk, each length-prefixed
// and padded to a 4-byte boundary.
//
// Decode classifies every failure as one of four sentinel errors
// (ErrInvalidMagic, ErrTruncatedContainer, ErrUnexpectedChunkOrder,
// ErrMalformedStructure); Encode recomputes all lengths and
// normalizes buffer references, so decode(encode(d)) == d holds for
// any internally consistent document.
package glb
