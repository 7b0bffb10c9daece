package glb

import "errors"

// Decode failure classes. Decode errors wrap exactly one of these
// sentinels, so callers classify with errors.Is and still get the
// positional detail from the wrapped message.
var (
	// ErrInvalidMagic: the input does not begin with the container magic.
	ErrInvalidMagic = errors.New("invalid container magic")

	// ErrTruncatedContainer: a declared length exceeds the buffer.
	ErrTruncatedContainer = errors.New("truncated container")

	// ErrUnexpectedChunkOrder: chunks are missing, repeated or misordered.
	ErrUnexpectedChunkOrder = errors.New("unexpected chunk order")

	// ErrMalformedStructure: the structural chunk is not a valid document graph.
	ErrMalformedStructure = errors.New("malformed structure")
)
