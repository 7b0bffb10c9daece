package glb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"variant-meld/core/gltf"
)

const (
	// Magic is the fixed 4-byte constant identifying the container,
	// ASCII "glTF" read as a little-endian uint32.
	Magic uint32 = 0x46546C67

	// Version is the container format version this codec speaks.
	Version uint32 = 2

	chunkStructural uint32 = 0x4E4F534A // "JSON"
	chunkBinary     uint32 = 0x004E4942 // "BIN\0"

	headerSize      = 12
	chunkHeaderSize = 8
)

// Decode parses a binary container into a Document. The magic is
// checked before anything else in the buffer is touched. Bytes past
// the declared total length are ignored, so a container can be read
// from the front of a larger buffer.
func Decode(data []byte) (*gltf.Document, error) {
	if len(data) < 4 || binary.LittleEndian.Uint32(data[0:4]) != Magic {
		return nil, fmt.Errorf("%w: input does not start with 0x%08X", ErrInvalidMagic, Magic)
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the 12-byte header", ErrTruncatedContainer, len(data))
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported container version %d", ErrMalformedStructure, version)
	}
	total := int(binary.LittleEndian.Uint32(data[8:12]))
	if total < headerSize || total > len(data) {
		return nil, fmt.Errorf("%w: declared length %d exceeds buffer of %d bytes", ErrTruncatedContainer, total, len(data))
	}

	var structural, payload []byte
	offset := headerSize
	for chunkIx := 0; offset < total; chunkIx++ {
		if total-offset < chunkHeaderSize {
			return nil, fmt.Errorf("%w: %d trailing bytes cannot hold a chunk header", ErrTruncatedContainer, total-offset)
		}
		length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		kind := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		body := offset + chunkHeaderSize
		if body+length > total {
			return nil, fmt.Errorf("%w: chunk %d declares %d bytes beyond container end", ErrTruncatedContainer, chunkIx, length)
		}

		switch {
		case chunkIx == 0 && kind == chunkStructural:
			structural = data[body : body+length]
		case chunkIx == 0:
			return nil, fmt.Errorf("%w: first chunk must be structural, found type 0x%08X", ErrUnexpectedChunkOrder, kind)
		case chunkIx == 1 && kind == chunkBinary:
			payload = data[body : body+length]
		case chunkIx == 1:
			return nil, fmt.Errorf("%w: second chunk must be binary, found type 0x%08X", ErrUnexpectedChunkOrder, kind)
		default:
			return nil, fmt.Errorf("%w: at most two chunks allowed, found chunk %d", ErrUnexpectedChunkOrder, chunkIx+1)
		}

		offset = body + pad4(length)
	}
	if structural == nil {
		return nil, fmt.Errorf("%w: container holds no structural chunk", ErrUnexpectedChunkOrder)
	}

	var root gltf.Root
	if err := json.Unmarshal(structural, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}
	doc := &gltf.Document{Root: root, Blob: append([]byte(nil), payload...)}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}
	return doc, nil
}

// Encode serializes a Document into container bytes. References are
// normalized rather than trusted: the buffer sequence is rebuilt from
// the actual payload and every length field is recomputed, so the
// Document need not have been produced by this codec.
func Encode(doc *gltf.Document) ([]byte, error) {
	root := doc.Root
	if len(doc.Blob) > 0 {
		root.Buffers = []gltf.Buffer{{ByteLength: len(doc.Blob)}}
	} else {
		root.Buffers = nil
	}
	normalized := &gltf.Document{Root: root, Blob: doc.Blob}
	if err := normalized.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to encode inconsistent document: %w", err)
	}

	structural, err := json.Marshal(&root)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize structural chunk: %w", err)
	}

	var out bytes.Buffer
	writeU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		out.Write(b[:])
	}

	writeU32(Magic)
	writeU32(Version)
	writeU32(0) // total length, patched below

	writeChunk := func(kind uint32, data []byte, filler byte) {
		writeU32(uint32(len(data)))
		writeU32(kind)
		out.Write(data)
		for i := len(data); i%4 != 0; i++ {
			out.WriteByte(filler)
		}
	}

	writeChunk(chunkStructural, structural, 0x20)
	if len(doc.Blob) > 0 {
		writeChunk(chunkBinary, doc.Blob, 0x00)
	}

	final := out.Bytes()
	binary.LittleEndian.PutUint32(final[8:12], uint32(len(final)))
	return final, nil
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
