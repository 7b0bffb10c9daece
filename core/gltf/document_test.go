package gltf_test

import (
	"math"
	"testing"

	"variant-meld/core/gltf"
	"variant-meld/core/gltf/gltftest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestClone(t *testing.T) {
	src := gltftest.Triangle(gltftest.WithBaseColor(0, 0, 1, 1))

	clone, err := src.Clone()
	require.NoError(t, err)

	// mutating the clone leaves the source untouched
	clone.Root.Materials[0].PBRMetallicRoughness.BaseColorFactor[0] = 1
	clone.Blob[0] ^= 0xFF
	*clone.Root.Meshes[0].Primitives[0].Material = 7

	assert.Equal(t, 0.0, src.Root.Materials[0].PBRMetallicRoughness.BaseColorFactor[0])
	assert.NotEqual(t, src.Blob[0], clone.Blob[0])
	assert.Equal(t, 0, *src.Root.Meshes[0].Primitives[0].Material)
}

func TestValidate(t *testing.T) {
	t.Run("Fixture", func(t *testing.T) {
		assert.NoError(t, gltftest.Triangle().Validate())
	})

	t.Run("MaterialOutOfRange", func(t *testing.T) {
		doc := gltftest.Triangle()
		doc.Root.Meshes[0].Primitives[0].Material = intPtr(3)

		err := doc.Validate()
		assert.ErrorContains(t, err, "material 3 out of range")
	})

	t.Run("ViewBeyondPayload", func(t *testing.T) {
		doc := gltftest.Triangle()
		doc.Root.BufferViews[0].ByteLength = len(doc.Blob) + 16

		err := doc.Validate()
		assert.ErrorContains(t, err, "payload holds")
	})

	t.Run("TwoBuffers", func(t *testing.T) {
		doc := gltftest.Triangle()
		doc.Root.Buffers = append(doc.Root.Buffers, gltf.Buffer{ByteLength: 4})

		err := doc.Validate()
		assert.ErrorContains(t, err, "at most one")
	})

	t.Run("UnknownAccessorType", func(t *testing.T) {
		doc := gltftest.Triangle()
		doc.Root.Accessors[0].Type = "VEC7"

		assert.Error(t, doc.Validate())
	})

	t.Run("OverflowingBufferView", func(t *testing.T) {
		// offset+length would wrap negative and slip past a plain sum
		doc := gltftest.Triangle()
		const huge = 1 << 62
		doc.Root.BufferViews[0].ByteOffset = huge
		doc.Root.BufferViews[0].ByteLength = huge

		err := doc.Validate()
		assert.ErrorContains(t, err, "payload holds")
	})

	t.Run("OverflowingAccessorCount", func(t *testing.T) {
		doc := gltftest.Triangle()
		doc.Root.Accessors[1].Count = math.MaxInt / 2

		err := doc.Validate()
		assert.ErrorContains(t, err, "overflows")
	})

	t.Run("OverflowingAccessorOffset", func(t *testing.T) {
		doc := gltftest.Triangle()
		doc.Root.Accessors[1].ByteOffset = math.MaxInt - 8

		err := doc.Validate()
		assert.ErrorContains(t, err, "needs")
	})

	t.Run("AccessorBeyondView", func(t *testing.T) {
		doc := gltftest.Triangle()
		doc.Root.Accessors[1].Count = 4 // view holds 3 vertices

		err := doc.Validate()
		assert.ErrorContains(t, err, "needs 48 bytes")
	})
}

func TestSelfContained(t *testing.T) {
	t.Run("Fixture", func(t *testing.T) {
		assert.NoError(t, gltftest.Triangle().SelfContained())
	})

	t.Run("ExternalImage", func(t *testing.T) {
		doc := gltftest.Triangle()
		doc.Root.Images[0].BufferView = nil
		doc.Root.Images[0].URI = "textures/wood.png"

		assert.Error(t, doc.SelfContained())
	})

	t.Run("ExternalBuffer", func(t *testing.T) {
		doc := gltftest.Triangle()
		doc.Root.Buffers[0].URI = "mesh.bin"

		assert.Error(t, doc.SelfContained())
	})
}

func TestAccessorBytes(t *testing.T) {
	t.Run("Indices", func(t *testing.T) {
		doc := gltftest.Triangle(gltftest.WithIndices([]uint16{2, 1, 0}))

		data, err := doc.AccessorBytes(0)
		require.NoError(t, err)
		assert.Equal(t, []byte{2, 0, 1, 0, 0, 0}, data)
	})

	t.Run("Positions", func(t *testing.T) {
		doc := gltftest.Triangle()

		data, err := doc.AccessorBytes(1)
		require.NoError(t, err)
		// 3 vertices, VEC3 of float32
		assert.Len(t, data, 36)
	})

	t.Run("InterleavedStride", func(t *testing.T) {
		doc := gltftest.Triangle()
		// widen the position view to a 16-byte stride layout:
		// 3 elements of 12 bytes each, 4 bytes of padding between
		viewIx := *doc.Root.Accessors[1].BufferView
		doc.Root.BufferViews[viewIx].ByteStride = intPtr(16)
		doc.Root.BufferViews[viewIx].ByteLength = 2*16 + 12
		// grow the payload so the widened view stays in bounds
		doc.Blob = append(doc.Blob, make([]byte, 16)...)
		doc.Root.Buffers[0].ByteLength = len(doc.Blob)

		data, err := doc.AccessorBytes(1)
		require.NoError(t, err)
		assert.Len(t, data, 2*16+12)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		doc := gltftest.Triangle()
		_, err := doc.AccessorBytes(9)
		assert.Error(t, err)
	})

	t.Run("OverflowingCount", func(t *testing.T) {
		doc := gltftest.Triangle()
		doc.Root.Accessors[1].Count = math.MaxInt / 2

		_, err := doc.AccessorBytes(1)
		assert.ErrorContains(t, err, "overflows")
	})

	t.Run("OverflowingStride", func(t *testing.T) {
		doc := gltftest.Triangle()
		viewIx := *doc.Root.Accessors[1].BufferView
		doc.Root.BufferViews[viewIx].ByteStride = intPtr(math.MaxInt / 2)

		_, err := doc.AccessorBytes(1)
		assert.ErrorContains(t, err, "overflows")
	})
}

func TestBufferViewBytesOverflow(t *testing.T) {
	// huge offset+length pairs must error, not panic on inverted bounds
	doc := gltftest.Triangle()
	const huge = 1 << 62
	doc.Root.BufferViews[0].ByteOffset = huge
	doc.Root.BufferViews[0].ByteLength = huge

	_, err := doc.BufferViewBytes(0)
	assert.ErrorContains(t, err, "payload holds")
}

func TestImageBytes(t *testing.T) {
	doc := gltftest.Triangle(gltftest.WithImageBytes([]byte("png:oak-grain")))

	data, err := doc.ImageBytes(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("png:oak-grain"), data)
}

func TestAppendBufferView(t *testing.T) {
	doc := gltftest.Triangle()
	before := len(doc.Blob)

	ix := doc.AppendBufferView([]byte{1, 2, 3, 4, 5})

	view := doc.Root.BufferViews[ix]
	assert.Equal(t, 5, view.ByteLength)
	assert.Equal(t, 0, view.ByteOffset%4)
	assert.GreaterOrEqual(t, view.ByteOffset, before)
	assert.Equal(t, len(doc.Blob), doc.Root.Buffers[0].ByteLength)

	got, err := doc.BufferViewBytes(ix)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, got)
}
